package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/scoreboard/brackets"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/scoring"
)

type FixtureService interface {
	GenerateGroupFixtures(ctx context.Context, group string, input FixturesInput) ([]models.Match, error)
}

type FixturesInput struct {
	Teams         []brackets.Roster `json:"teams"`
	StartDate     string            `json:"start_date"`
	Venue         string            `json:"venue,omitempty"`
	MatchesPerDay int               `json:"matches_per_day,omitempty"`
	Legs          int               `json:"legs,omitempty"`
}

type FixtureDefaults struct {
	Venue         string
	MatchesPerDay int
}

type fixtureService struct {
	matches  MatchService
	defaults FixtureDefaults
}

func NewFixtureService(matches MatchService, defaults FixtureDefaults) FixtureService {
	return &fixtureService{matches: matches, defaults: defaults}
}

func (s *fixtureService) GenerateGroupFixtures(ctx context.Context, group string, input FixturesInput) ([]models.Match, error) {
	v := newValidationError()
	v.Check(strings.TrimSpace(group) != "", "group", "must be provided")
	start, err := time.Parse(dateLayout, strings.TrimSpace(input.StartDate))
	v.Check(err == nil, "start_date", "must be YYYY-MM-DD")
	v.Check(input.Legs == 0 || input.Legs == 1 || input.Legs == 2, "legs", "must be 1 or 2")
	v.Check(input.MatchesPerDay >= 0, "matches_per_day", "must not be negative")
	teams := make([]brackets.Roster, len(input.Teams))
	owner := map[string]int{}
	for i, team := range input.Teams {
		team.Name = scoring.DisplayName(team.Name)
		team.Leader = scoring.DisplayName(team.Leader)
		for p, player := range team.Players {
			field := "teams[" + strconv.Itoa(i) + "].players[" + strconv.Itoa(p) + "].name"
			team.Players[p] = models.PlayerEntry{
				Name:       scoring.DisplayName(player.Name),
				Department: trimmedOrNil(player.Department),
				Unit:       trimmedOrNil(player.Unit),
			}
			key := scoring.NameKey(player.Name)
			if key == "" {
				v.Add(field, "must be provided")
				continue
			}
			// a player belongs to exactly one roster
			if first, ok := owner[key]; ok {
				if first == i {
					v.Add(field, "player already appears in this team")
				} else {
					v.Add(field, "player already appears in teams["+strconv.Itoa(first)+"]")
				}
				continue
			}
			owner[key] = i
		}
		if team.Leader == "" {
			team.Leader = team.Players[0].Name
		}
		teams[i] = team
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	venue := strings.TrimSpace(input.Venue)
	if venue == "" {
		venue = s.defaults.Venue
	}
	perDay := input.MatchesPerDay
	if perDay == 0 {
		perDay = s.defaults.MatchesPerDay
	}

	fixtures, err := brackets.GenerateRoundRobin(brackets.RoundRobinParams{
		Group:         group,
		Teams:         teams,
		StartDate:     start,
		Venue:         venue,
		MatchesPerDay: perDay,
		Legs:          input.Legs,
	})
	if err != nil {
		// every generator error is about the submitted rosters
		return nil, &ValidationError{Fields: map[string]string{"teams": err.Error()}}
	}
	return s.matches.CreateMatches(ctx, fixtures)
}
