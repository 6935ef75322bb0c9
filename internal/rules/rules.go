// Package rules implements badminton set and match scoring validation.
//
// A set is played to a target (11 or 21 rally points), must normally be won
// by a margin, and is hard-capped so deuce cannot run forever. A match is
// best of three sets.
package rules

import (
	"errors"
	"fmt"

	"featherrank/internal/models"
)

const (
	// DefaultWinBy is the standard two-point deuce margin.
	DefaultWinBy = 2

	// SetsToWin is how many sets take a best-of-three match.
	SetsToWin = 2
)

// ErrIndeterminate is returned when the reported sets are each individually
// valid but neither side reaches two set wins, so no winner can be named.
var ErrIndeterminate = errors.New("no side won enough sets to decide the match")

// InvalidSetError names the first reported set that cannot be a finished set.
type InvalidSetError struct {
	Index  int
	A, B   int
	Target int
}

func (e *InvalidSetError) Error() string {
	return fmt.Sprintf("set %d: %d-%d is not a finished set to %d", e.Index+1, e.A, e.B, e.Target)
}

// DeriveCap returns the hard point cap for a given set target: 30 for
// 21-point sets, 15 for 11-point sets.
func DeriveCap(target int) int {
	if target >= 21 {
		return 30
	}
	return 15
}

// ValidSet reports whether a-b is a plausible final score of a finished set.
//
// Scores must be non-negative, the higher side must have at least target
// points and at most cap. Reaching the cap finishes the set regardless of
// margin; below the cap the winner needs the winBy margin.
func ValidSet(a, b, target, winBy, cap int) bool {
	if a < 0 || b < 0 {
		return false
	}
	hi, lo := a, b
	if b > a {
		hi, lo = b, a
	}
	if hi > cap || hi < target {
		return false
	}
	if hi == cap {
		return true
	}
	return hi-lo >= winBy
}

// SetFinished reports whether a live set at score a-b is over, and if so
// which team won it.
func SetFinished(a, b, target, winBy, cap int) (bool, models.Team) {
	if !ValidSet(a, b, target, winBy, cap) {
		return false, ""
	}
	if a > b {
		return true, models.TeamA
	}
	return true, models.TeamB
}

// MatchWinner validates the reported sets in order and decides the match.
//
// Every counted set must be a valid finished set; the first invalid one is
// reported via *InvalidSetError. Iteration stops as soon as a side reaches
// two set wins, so a trailing garbage third set after a straight-sets win is
// never inspected. Point totals accumulate only over counted sets. If the
// sets run out with no side at two wins, ErrIndeterminate is returned.
func MatchWinner(sets []models.SetScore, target, winBy, cap int) (winner models.Team, setsA, setsB, ptsA, ptsB int, err error) {
	for i, s := range sets {
		if !ValidSet(s.A, s.B, target, winBy, cap) {
			return "", 0, 0, 0, 0, &InvalidSetError{Index: i, A: s.A, B: s.B, Target: target}
		}
		ptsA += s.A
		ptsB += s.B
		if s.A > s.B {
			setsA++
		} else {
			setsB++
		}
		if setsA == SetsToWin {
			return models.TeamA, setsA, setsB, ptsA, ptsB, nil
		}
		if setsB == SetsToWin {
			return models.TeamB, setsA, setsB, ptsA, ptsB, nil
		}
	}
	return "", setsA, setsB, ptsA, ptsB, ErrIndeterminate
}
