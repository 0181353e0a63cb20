package models

import "time"

// Player is the cached aggregate profile keyed by normalized name.
type Player struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	NameKey       string    `json:"-" db:"name_key"`
	PhotoKey      *string   `json:"-" db:"photo_key"`
	PhotoURL      *string   `json:"photo_url,omitempty" db:"-"`
	Department    *string   `json:"department,omitempty" db:"department"`
	Unit          *string   `json:"unit,omitempty" db:"unit"`
	MatchesPlayed int       `json:"matches_played" db:"matches_played"`
	MatchesWon    int       `json:"matches_won" db:"matches_won"`
	MatchesLost   int       `json:"matches_lost" db:"matches_lost"`
	TotalScore    int       `json:"total_score" db:"total_score"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type PlayerMatchLine struct {
	MatchID     int         `json:"match_id"`
	MatchNumber int         `json:"match_number"`
	Date        string      `json:"date"`
	Group       string      `json:"group"`
	Team        string      `json:"team"`
	Opponent    string      `json:"opponent"`
	Score       int         `json:"score"`
	Status      MatchStatus `json:"status"`
	Won         *bool       `json:"won,omitempty"`
}

// PlayerProfile combines the cached row with history recomputed from matches.
type PlayerProfile struct {
	Player  *Player           `json:"player"`
	Played  int               `json:"played"`
	Won     int               `json:"won"`
	Lost    int               `json:"lost"`
	Score   int               `json:"score"`
	History []PlayerMatchLine `json:"history"`
}
