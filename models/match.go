package models

import (
	"strings"
	"time"
)

// RallySlots is the fixed length of every per-player rally array.
const RallySlots = 16

type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"

	// Pseudostates accepted from clients; never stored.
	MatchStatusToday    MatchStatus = "today"
	MatchStatusTomorrow MatchStatus = "tomorrow"
)

// Stored reports whether s is one of the three values the matches table accepts.
func (s MatchStatus) Stored() bool {
	switch s {
	case MatchStatusUpcoming, MatchStatusLive, MatchStatusCompleted:
		return true
	}
	return false
}

// ForStorage maps the today/tomorrow date filters back to upcoming.
func (s MatchStatus) ForStorage() MatchStatus {
	switch s {
	case MatchStatusToday, MatchStatusTomorrow:
		return MatchStatusUpcoming
	}
	return s
}

func (s MatchStatus) Valid() bool {
	return s.Stored() || s == MatchStatusToday || s == MatchStatusTomorrow
}

type PlayerEntry struct {
	Name       string  `json:"name"`
	Department *string `json:"department,omitempty"`
	Unit       *string `json:"unit,omitempty"`
	Scores     []int   `json:"scores"`
	Total      int     `json:"total"`
}

type TeamEntry struct {
	Name     string         `json:"name"`
	Leader   string         `json:"leader"`
	Players  [2]PlayerEntry `json:"players"`
	PhotoKey *string        `json:"-"`
	PhotoURL *string        `json:"photo_url,omitempty"`
	Score    int            `json:"score"`
}

// Match is one contest between two teams. Team1 and Team2 are flattened into
// columns by the repository.
type Match struct {
	ID          int         `json:"id"`
	MatchNumber int         `json:"match_number"`
	Date        time.Time   `json:"date"`
	DayLabel    string      `json:"day_label"`
	Venue       string      `json:"venue"`
	Time        *string     `json:"time,omitempty"`
	Group       string      `json:"group"`
	Team1       TeamEntry   `json:"team1"`
	Team2       TeamEntry   `json:"team2"`
	Status      MatchStatus `json:"status"`
	Winner      *string     `json:"winner,omitempty"`
	Version     int         `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Team returns the entry for side 1 or 2, nil for anything else.
func (m *Match) Team(side int) *TeamEntry {
	switch side {
	case 1:
		return &m.Team1
	case 2:
		return &m.Team2
	}
	return nil
}

// HasWinner reports whether the match is decided: completed with a winner set.
func (m *Match) HasWinner() bool {
	return m.Status == MatchStatusCompleted && m.Winner != nil && strings.TrimSpace(*m.Winner) != ""
}

// EmptyScores returns a zeroed rally array.
func EmptyScores() []int {
	return make([]int, RallySlots)
}

type MatchFilter struct {
	Status *MatchStatus
	Group  *string
	Date   *time.Time
}
