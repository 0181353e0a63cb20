package events

import (
	"context"

	"github.com/Dosada05/scoreboard/brackets"
	"github.com/Dosada05/scoreboard/models"
)

// Publisher delivers change notifications to spectators.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// Broadcaster is the part of brackets.Hub publishers need.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// HubPublisher pushes events straight into the local websocket hub: to the
// match room when the event names a match, and always to the scoreboard room.
type HubPublisher struct {
	hub Broadcaster
}

func NewHubPublisher(hub Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, event models.Event) error {
	msg := brackets.WebSocketMessage{Type: string(event.Type), Payload: event}
	if event.MatchID > 0 {
		room := brackets.MatchRoom(event.MatchID)
		msg.RoomID = room
		p.hub.BroadcastToRoom(room, msg)
	}
	msg.RoomID = brackets.ScoreboardRoom
	p.hub.BroadcastToRoom(brackets.ScoreboardRoom, msg)
	return nil
}

// Nop discards events. Used by tools that write without spectators.
type Nop struct{}

func (Nop) Publish(context.Context, models.Event) error { return nil }
