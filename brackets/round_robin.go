package brackets

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/scoring"
)

var (
	ErrNotEnoughTeams = errors.New("round robin needs at least two teams")
	ErrDuplicateTeam  = errors.New("team appears twice in the group")
)

// Roster is what a team brings to every fixture it plays.
type Roster struct {
	Name     string                `json:"name"`
	Leader   string                `json:"leader"`
	Players  [2]models.PlayerEntry `json:"players"`
	PhotoKey *string               `json:"-"`
}

type RoundRobinParams struct {
	Group         string
	Teams         []Roster
	StartDate     time.Time
	Venue         string
	MatchesPerDay int
	// Legs is 1 for a single round robin, 2 to play every pairing twice.
	Legs int
}

// GenerateRoundRobin pairs every team with every other team round by round,
// scheduling MatchesPerDay fixtures per calendar day starting at StartDate.
// The second leg repeats the rounds with sides swapped.
func GenerateRoundRobin(params RoundRobinParams) ([]models.Match, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughTeams, len(teams))
	}
	seen := make(map[string]bool, len(teams))
	for _, t := range teams {
		key := scoring.NameKey(t.Name)
		if key == "" {
			return nil, fmt.Errorf("team name is required")
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTeam, t.Name)
		}
		seen[key] = true
	}

	legs := params.Legs
	if legs != 2 {
		legs = 1
	}
	perDay := params.MatchesPerDay
	if perDay <= 0 {
		perDay = 1
	}

	pairings := make([]pairing, 0, len(teams)*(len(teams)-1)/2*legs)
	rounds := circleRounds(len(teams))
	for leg := 0; leg < legs; leg++ {
		for _, round := range rounds {
			for _, p := range round {
				if leg == 1 {
					p.home, p.away = p.away, p.home
				}
				pairings = append(pairings, p)
			}
		}
	}

	start := time.Date(params.StartDate.Year(), params.StartDate.Month(), params.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	matches := make([]models.Match, 0, len(pairings))
	for n, p := range pairings {
		day := n / perDay
		date := start.AddDate(0, 0, day)
		matches = append(matches, models.Match{
			Date:     date,
			DayLabel: fmt.Sprintf("Day %d", day+1),
			Venue:    params.Venue,
			Group:    scoring.GroupKey(params.Group),
			Team1:    teamEntry(teams[p.home]),
			Team2:    teamEntry(teams[p.away]),
			Status:   models.MatchStatusUpcoming,
		})
	}
	return matches, nil
}

type pairing struct{ home, away int }

const bye = -1

// circleRounds splits all pairings of n teams into rounds where every team
// plays at most once. Team 0 stays fixed while the others rotate one place
// per round; an odd field gets a bye slot.
func circleRounds(n int) [][]pairing {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if n%2 == 1 {
		order = append(order, bye)
	}
	size := len(order)

	rounds := make([][]pairing, 0, size-1)
	for r := 0; r < size-1; r++ {
		round := make([]pairing, 0, size/2)
		for i := 0; i < size/2; i++ {
			home, away := order[i], order[size-1-i]
			if home == bye || away == bye {
				continue
			}
			// команда 0 чередует дом и выезд
			if i == 0 && r%2 == 1 {
				home, away = away, home
			}
			round = append(round, pairing{home, away})
		}
		rounds = append(rounds, round)

		last := order[size-1]
		copy(order[2:], order[1:size-1])
		order[1] = last
	}
	return rounds
}

func teamEntry(r Roster) models.TeamEntry {
	entry := models.TeamEntry{
		Name:     scoring.DisplayName(r.Name),
		Leader:   scoring.DisplayName(r.Leader),
		PhotoKey: r.PhotoKey,
	}
	for i, p := range r.Players {
		entry.Players[i] = models.PlayerEntry{
			Name:       scoring.DisplayName(p.Name),
			Department: p.Department,
			Unit:       p.Unit,
			Scores:     models.EmptyScores(),
		}
	}
	if entry.Leader == "" {
		entry.Leader = entry.Players[0].Name
	}
	return entry
}
