// Package mmr implements the points-share Elo rating update.
//
// Unlike classic win/lose Elo, the actual score is the fraction of total
// rally points a team took, so an 21-19 21-19 squeaker moves ratings far
// less than a 21-5 21-7 blowout.
package mmr

import "math"

const (
	// DefaultK is the rating volatility factor.
	DefaultK = 32.0

	// BaseRating is the rating every new player starts at.
	BaseRating = 1200.0
)

// Expected returns the logistic Elo expectation of side a against side b.
func Expected(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, -(ra-rb)/400.0))
}

// TeamRating is the arithmetic mean of a roster's ratings. An empty roster
// counts as a team of base-rated players.
func TeamRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return BaseRating
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// PointsUpdate computes the zero-sum rating deltas for two sides where
// shareA is the fraction of total points side a scored.
func PointsUpdate(ra, rb, shareA, k float64) (deltaA, deltaB float64) {
	deltaA = k * (shareA - Expected(ra, rb))
	return deltaA, -deltaA
}

// Share returns a's fraction of the combined points, guarding the degenerate
// zero-total case.
func Share(ptsA, ptsB int) float64 {
	total := ptsA + ptsB
	if total < 1 {
		total = 1
	}
	return float64(ptsA) / float64(total)
}

// TeamPointsUpdate applies a points-share update between two rosters. The
// delta is computed once on the team mean ratings and every member of a team
// shifts by the full team delta, keeping the exchange zero-sum at team level.
func TeamPointsUpdate(ratingsA, ratingsB []float64, shareA, k float64) (newA, newB []float64) {
	deltaA, deltaB := PointsUpdate(TeamRating(ratingsA), TeamRating(ratingsB), shareA, k)
	newA = make([]float64, len(ratingsA))
	for i, r := range ratingsA {
		newA[i] = r + deltaA
	}
	newB = make([]float64, len(ratingsB))
	for i, r := range ratingsB {
		newB[i] = r + deltaB
	}
	return newA, newB
}
