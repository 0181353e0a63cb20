package scoring

import (
	"strconv"

	"github.com/Dosada05/scoreboard/models"
)

// TeamDetail collects the matches mentioning name. ok is false when no match does.
// matches are expected in chronological order; the roster comes from the last one.
func TeamDetail(matches []models.Match, name string) (detail models.TeamDetail, ok bool) {
	key := NameKey(name)
	detail.Matches = make([]models.Match, 0)
	detail.Players = make([]string, 0)

	for i := range matches {
		m := &matches[i]
		var own, other *models.TeamEntry
		side := 0
		switch key {
		case NameKey(m.Team1.Name):
			own, other, side = &m.Team1, &m.Team2, 1
		case NameKey(m.Team2.Name):
			own, other, side = &m.Team2, &m.Team1, 2
		default:
			continue
		}
		ok = true

		if detail.Name == "" {
			detail.Name = DisplayName(own.Name)
		}
		detail.Group = GroupKey(m.Group)
		detail.Leader = own.Leader
		detail.Players = []string{own.Players[0].Name, own.Players[1].Name}
		if own.PhotoURL != nil {
			detail.PhotoURL = own.PhotoURL
		}

		detail.Played++
		detail.PointsFor += own.Score
		detail.PointsAgainst += other.Score
		switch WinnerSide(m) {
		case side:
			detail.Wins++
		case 0:
		default:
			detail.Losses++
		}
		detail.Matches = append(detail.Matches, *m)
	}
	return detail, ok
}

// PlayerHistory recomputes a player's record from matches.
func PlayerHistory(matches []models.Match, name string) models.PlayerProfile {
	key := NameKey(name)
	profile := models.PlayerProfile{History: make([]models.PlayerMatchLine, 0)}

	for i := range matches {
		m := &matches[i]
		for side := 1; side <= 2; side++ {
			team := m.Team(side)
			opponent := m.Team(3 - side)
			for p := range team.Players {
				if NameKey(team.Players[p].Name) != key {
					continue
				}
				line := models.PlayerMatchLine{
					MatchID:     m.ID,
					MatchNumber: m.MatchNumber,
					Date:        m.Date.Format("2006-01-02"),
					Group:       GroupKey(m.Group),
					Team:        team.Name,
					Opponent:    opponent.Name,
					Score:       team.Players[p].Total,
					Status:      m.Status,
				}
				profile.Played++
				profile.Score += team.Players[p].Total
				if winner := WinnerSide(m); winner != 0 {
					won := winner == side
					line.Won = &won
					if won {
						profile.Won++
					} else {
						profile.Lost++
					}
				}
				profile.History = append(profile.History, line)
			}
		}
	}
	return profile
}

// MatchTitle is the label used for companion slides and logs.
func MatchTitle(m *models.Match) string {
	title := m.Team1.Name + " vs " + m.Team2.Name
	if g := GroupKey(m.Group); g != "" {
		title = "Group " + g + ": " + title
	}
	if m.MatchNumber > 0 {
		title = "#" + strconv.Itoa(m.MatchNumber) + " " + title
	}
	return title
}
