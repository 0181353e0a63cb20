package scoring

import "errors"

// DefaultWinThreshold is the score at which a match is decided.
const DefaultWinThreshold = 15

// ErrAmbiguousWinner is returned when both teams are at or above the threshold.
var ErrAmbiguousWinner = errors.New("both teams reached the win threshold")

// DetectWinner returns 1 or 2 for the team that reached threshold, or 0 when
// the match is still open.
func DetectWinner(team1, team2, threshold int) (int, error) {
	if threshold <= 0 {
		threshold = DefaultWinThreshold
	}
	t1, t2 := team1 >= threshold, team2 >= threshold
	switch {
	case t1 && t2:
		return 0, ErrAmbiguousWinner
	case t1:
		return 1, nil
	case t2:
		return 2, nil
	}
	return 0, nil
}

// Leader returns the side with the higher score, or 0 on a tie.
func Leader(team1, team2 int) int {
	switch {
	case team1 > team2:
		return 1
	case team2 > team1:
		return 2
	}
	return 0
}
