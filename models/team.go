package models

// TeamDetail is everything known about a team, derived from the matches that
// mention its name.
type TeamDetail struct {
	Name          string   `json:"name"`
	Group         string   `json:"group,omitempty"`
	Leader        string   `json:"leader,omitempty"`
	Players       []string `json:"players"`
	PhotoURL      *string  `json:"photo_url,omitempty"`
	Played        int      `json:"played"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	PointsFor     int      `json:"points_for"`
	PointsAgainst int      `json:"points_against"`
	Matches       []Match  `json:"matches"`
}
