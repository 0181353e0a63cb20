package scoring

import (
	"errors"
	"fmt"

	"github.com/Dosada05/scoreboard/models"
)

var (
	ErrInvalidTeam   = errors.New("team must be 1 or 2")
	ErrInvalidPlayer = errors.New("player must be 1 or 2")
	ErrInvalidRally  = fmt.Errorf("rally index must be between 0 and %d", models.RallySlots-1)
	ErrInvalidScores = errors.New("invalid rally scores")
)

// Totals are the derived sums of a ledger.
type Totals struct {
	Players [2][2]int `json:"players"`
	Teams   [2]int    `json:"teams"`
}

// Ledger holds the four rally arrays of a match, indexed [team-1][player-1].
type Ledger struct {
	slots [2][2][models.RallySlots]int
}

// NewLedger loads the arrays of m. Short arrays are padded with zeros; long
// arrays and values other than 0/1 are rejected.
func NewLedger(m *models.Match) (*Ledger, error) {
	l := &Ledger{}
	for t := 1; t <= 2; t++ {
		team := m.Team(t)
		for p := 0; p < 2; p++ {
			scores := team.Players[p].Scores
			if len(scores) > models.RallySlots {
				return nil, fmt.Errorf("%w: team %d player %d has %d slots", ErrInvalidScores, t, p+1, len(scores))
			}
			for i, v := range scores {
				if v != 0 && v != 1 {
					return nil, fmt.Errorf("%w: team %d player %d slot %d is %d", ErrInvalidScores, t, p+1, i, v)
				}
				l.slots[t-1][p][i] = v
			}
		}
	}
	return l, nil
}

// Toggle flips one rally slot between 0 and 1 and returns the new totals.
func (l *Ledger) Toggle(team, player, rally int) (Totals, error) {
	if team != 1 && team != 2 {
		return Totals{}, ErrInvalidTeam
	}
	if player != 1 && player != 2 {
		return Totals{}, ErrInvalidPlayer
	}
	if rally < 0 || rally >= models.RallySlots {
		return Totals{}, ErrInvalidRally
	}
	slot := &l.slots[team-1][player-1][rally]
	*slot = 1 - *slot
	return l.Totals(), nil
}

// Slot returns the stored value at one position; out-of-range positions read as 0.
func (l *Ledger) Slot(team, player, rally int) int {
	if team < 1 || team > 2 || player < 1 || player > 2 || rally < 0 || rally >= models.RallySlots {
		return 0
	}
	return l.slots[team-1][player-1][rally]
}

func (l *Ledger) Totals() Totals {
	var t Totals
	for team := 0; team < 2; team++ {
		for p := 0; p < 2; p++ {
			sum := 0
			for _, v := range l.slots[team][p] {
				sum += v
			}
			t.Players[team][p] = sum
			t.Teams[team] += sum
		}
	}
	return t
}

// Apply writes the arrays and every derived total onto m.
func (l *Ledger) Apply(m *models.Match) Totals {
	totals := l.Totals()
	for t := 1; t <= 2; t++ {
		team := m.Team(t)
		for p := 0; p < 2; p++ {
			scores := make([]int, models.RallySlots)
			copy(scores, l.slots[t-1][p][:])
			team.Players[p].Scores = scores
			team.Players[p].Total = totals.Players[t-1][p]
		}
		team.Score = totals.Teams[t-1]
	}
	return totals
}

// Recompute normalizes m in place so its totals agree with its arrays.
func Recompute(m *models.Match) (Totals, error) {
	l, err := NewLedger(m)
	if err != nil {
		return Totals{}, err
	}
	return l.Apply(m), nil
}
