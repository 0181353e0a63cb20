package models

// HomeOverview is what the public home page renders in one request.
type HomeOverview struct {
	Live      []Match          `json:"live"`
	Today     []Match          `json:"today"`
	Slides    []Slide          `json:"slides"`
	Standings []GroupStandings `json:"standings"`
}
