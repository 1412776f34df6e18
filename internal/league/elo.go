package league

import "math"

// WinProbability returns the expected score of a team rated a against a team
// rated b.
func WinProbability(a, b, scaling float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/scaling))
}

// UpdateElo returns both ratings after a match. result is A's actual score:
// 1 for a win, 0.5 for a draw, 0 for a loss. Ratings are not clamped.
func UpdateElo(a, b, result, k, scaling float64) (newA, newB float64) {
	expA := WinProbability(a, b, scaling)
	expB := 1 - expA

	newA = a + k*(result-expA)
	newB = b + k*((1-result)-expB)
	return newA, newB
}

// MatchResult converts a scoreline into the home side's actual score.
func MatchResult(homeScore, awayScore int) float64 {
	switch {
	case homeScore > awayScore:
		return 1
	case homeScore == awayScore:
		return 0.5
	default:
		return 0
	}
}
