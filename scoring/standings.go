package scoring

import (
	"fmt"
	"sort"

	"github.com/Dosada05/scoreboard/models"
)

type accumulator struct {
	name        string
	group       string
	played      int
	scoreTotal  int
	winScores   []int
	loseScores  []int
	firstSeenAt int
}

// WinnerSide resolves the winner name of a decided match to 1 or 2. It returns
// 0 when the match is undecided or the winner names neither team.
func WinnerSide(m *models.Match) int {
	if !m.HasWinner() {
		return 0
	}
	switch {
	case SameName(*m.Winner, m.Team1.Name):
		return 1
	case SameName(*m.Winner, m.Team2.Name):
		return 2
	}
	return 0
}

// Standings ranks every team mentioned in matches. Ties beyond wins, loseScore
// and scoreTotal keep the order in which teams first appear.
func Standings(matches []models.Match) []models.Standing {
	index := make(map[string]*accumulator)
	order := make([]*accumulator, 0)

	entry := func(name, group string) *accumulator {
		key := NameKey(name)
		if acc, ok := index[key]; ok {
			return acc
		}
		acc := &accumulator{name: DisplayName(name), group: group, firstSeenAt: len(order)}
		index[key] = acc
		order = append(order, acc)
		return acc
	}

	for i := range matches {
		m := &matches[i]
		t1 := entry(m.Team1.Name, GroupKey(m.Group))
		t2 := entry(m.Team2.Name, GroupKey(m.Group))

		t1.played++
		t2.played++
		t1.scoreTotal += m.Team1.Score
		t2.scoreTotal += m.Team2.Score

		switch WinnerSide(m) {
		case 1:
			t1.winScores = append(t1.winScores, m.Team1.Score)
			t2.loseScores = append(t2.loseScores, m.Team2.Score)
		case 2:
			t2.winScores = append(t2.winScores, m.Team2.Score)
			t1.loseScores = append(t1.loseScores, m.Team1.Score)
		}
	}

	standings := make([]models.Standing, 0, len(order))
	for _, acc := range order {
		standings = append(standings, acc.standing())
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.LoseScore != b.LoseScore {
			return a.LoseScore > b.LoseScore
		}
		return a.ScoreTotal > b.ScoreTotal
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func (a *accumulator) standing() models.Standing {
	wins, losses := len(a.winScores), len(a.loseScores)
	s := models.Standing{
		Team:       a.name,
		Group:      a.group,
		Played:     a.played,
		Wins:       wins,
		Losses:     losses,
		ScoreTotal: a.scoreTotal,
		WinScore:   sum(a.winScores),
		LoseScore:  sum(a.loseScores),
		WinRate:    WinRate(wins, losses),
	}
	if wins > 0 {
		s.AvgWinScore = float64(s.WinScore) / float64(wins)
	}
	return s
}

// WinRate formats wins/(wins+losses) as a percentage with one decimal.
func WinRate(wins, losses int) string {
	decided := wins + losses
	if decided == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(wins)*100/float64(decided))
}

// GroupStandings partitions matches by group label and ranks each group.
// Groups are returned in lexical order.
func GroupStandings(matches []models.Match) []models.GroupStandings {
	byGroup := make(map[string][]models.Match)
	for _, m := range matches {
		key := GroupKey(m.Group)
		byGroup[key] = append(byGroup[key], m)
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	result := make([]models.GroupStandings, 0, len(groups))
	for _, g := range groups {
		result = append(result, models.GroupStandings{Group: g, Standings: Standings(byGroup[g])})
	}
	return result
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
