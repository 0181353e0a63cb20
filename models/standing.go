package models

// Standing is one row of a ranked group table. It is derived from matches on
// every read and never stored.
type Standing struct {
	Rank        int     `json:"rank"`
	Team        string  `json:"team"`
	Group       string  `json:"group,omitempty"`
	Played      int     `json:"played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	ScoreTotal  int     `json:"score_total"`
	WinScore    int     `json:"win_score"`
	LoseScore   int     `json:"lose_score"`
	WinRate     string  `json:"win_rate"`
	AvgWinScore float64 `json:"avg_win_score"`
}

type GroupStandings struct {
	Group     string     `json:"group"`
	Standings []Standing `json:"standings"`
}
