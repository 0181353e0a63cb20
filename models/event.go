package models

type EventType string

const (
	EventMatchCreated   EventType = "MATCH_CREATED"
	EventMatchUpdated   EventType = "MATCH_UPDATED"
	EventMatchDeleted   EventType = "MATCH_DELETED"
	EventScoreUpdated   EventType = "SCORE_UPDATED"
	EventMatchCompleted EventType = "MATCH_COMPLETED"
	EventSlidesUpdated  EventType = "SLIDES_UPDATED"
)

// Event is a change notification pushed to spectators.
type Event struct {
	Type    EventType `json:"type"`
	MatchID int       `json:"match_id,omitempty"`
	Payload any       `json:"payload,omitempty"`
}
