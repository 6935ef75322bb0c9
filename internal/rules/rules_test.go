package rules

import (
	"errors"
	"testing"

	"featherrank/internal/models"
)

func TestValidSet(t *testing.T) {
	cases := []struct {
		name                    string
		a, b, target, winBy, cap int
		want                    bool
	}{
		{"regulation win", 21, 15, 21, 2, 30, true},
		{"minimal margin", 21, 19, 21, 2, 30, true},
		{"deuce not settled", 21, 20, 21, 2, 30, false},
		{"deuce settled", 25, 23, 21, 2, 30, true},
		{"cap reached one apart", 30, 29, 21, 2, 30, true},
		{"cap reached big margin", 30, 10, 21, 2, 30, true},
		{"over cap", 31, 29, 21, 2, 30, false},
		{"short of target", 20, 10, 21, 2, 30, false},
		{"negative score", -1, 21, 21, 2, 30, false},
		{"both zero", 0, 0, 21, 2, 30, false},
		{"short game win", 11, 7, 11, 2, 15, true},
		{"short game cap", 15, 14, 11, 2, 15, true},
		{"short game unsettled deuce", 12, 11, 11, 2, 15, false},
		{"mirrored b side win", 15, 21, 21, 2, 30, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ValidSet(c.a, c.b, c.target, c.winBy, c.cap); got != c.want {
				t.Errorf("ValidSet(%d, %d, %d, %d, %d) = %v, want %v",
					c.a, c.b, c.target, c.winBy, c.cap, got, c.want)
			}
		})
	}
}

func TestDeriveCap(t *testing.T) {
	if got := DeriveCap(21); got != 30 {
		t.Errorf("DeriveCap(21) = %d, want 30", got)
	}
	if got := DeriveCap(11); got != 15 {
		t.Errorf("DeriveCap(11) = %d, want 15", got)
	}
}

func TestMatchWinnerStraightSets(t *testing.T) {
	sets := []models.SetScore{{A: 21, B: 15}, {A: 21, B: 18}}
	winner, sa, sb, pa, pb, err := MatchWinner(sets, 21, 2, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if winner != models.TeamA || sa != 2 || sb != 0 {
		t.Errorf("got winner=%s sets %d-%d, want A 2-0", winner, sa, sb)
	}
	if pa != 42 || pb != 33 {
		t.Errorf("got points %d-%d, want 42-33", pa, pb)
	}
}

func TestMatchWinnerDecidingThirdSet(t *testing.T) {
	sets := []models.SetScore{{A: 21, B: 15}, {A: 18, B: 21}, {A: 21, B: 19}}
	winner, sa, sb, pa, pb, err := MatchWinner(sets, 21, 2, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if winner != models.TeamA || sa != 2 || sb != 1 {
		t.Errorf("got winner=%s sets %d-%d, want A 2-1", winner, sa, sb)
	}
	if pa != 60 || pb != 55 {
		t.Errorf("got points %d-%d, want 60-55", pa, pb)
	}
}

func TestMatchWinnerThreeSets(t *testing.T) {
	sets := []models.SetScore{{A: 21, B: 15}, {A: 17, B: 21}, {A: 19, B: 21}}
	winner, sa, sb, _, _, err := MatchWinner(sets, 21, 2, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if winner != models.TeamB || sa != 1 || sb != 2 {
		t.Errorf("got winner=%s sets %d-%d, want B 1-2", winner, sa, sb)
	}
}

// A third set after a straight-sets win must never be inspected or counted.
func TestMatchWinnerIgnoresTrailingSet(t *testing.T) {
	sets := []models.SetScore{{A: 21, B: 10}, {A: 21, B: 12}, {A: -5, B: 999}}
	winner, _, _, pa, pb, err := MatchWinner(sets, 21, 2, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if winner != models.TeamA {
		t.Errorf("winner = %s, want A", winner)
	}
	if pa != 42 || pb != 22 {
		t.Errorf("points %d-%d include the uncounted set", pa, pb)
	}
}

func TestMatchWinnerInvalidSet(t *testing.T) {
	sets := []models.SetScore{{A: 21, B: 15}, {A: 21, B: 20}}
	_, _, _, _, _, err := MatchWinner(sets, 21, 2, 30)
	var ise *InvalidSetError
	if !errors.As(err, &ise) {
		t.Fatalf("error = %v, want *InvalidSetError", err)
	}
	if ise.Index != 1 {
		t.Errorf("offending set index = %d, want 1", ise.Index)
	}
}

func TestMatchWinnerIndeterminate(t *testing.T) {
	sets := []models.SetScore{{A: 21, B: 15}, {A: 15, B: 21}}
	_, sa, sb, _, _, err := MatchWinner(sets, 21, 2, 30)
	if !errors.Is(err, ErrIndeterminate) {
		t.Fatalf("error = %v, want ErrIndeterminate", err)
	}
	if sa != 1 || sb != 1 {
		t.Errorf("sets = %d-%d, want 1-1", sa, sb)
	}
}

func TestSetFinished(t *testing.T) {
	if done, _ := SetFinished(20, 19, 21, 2, 30); done {
		t.Error("20-19 should still be live")
	}
	if done, w := SetFinished(19, 21, 21, 2, 30); !done || w != models.TeamB {
		t.Errorf("19-21 should be finished for B, got done=%v winner=%s", done, w)
	}
	if done, w := SetFinished(30, 29, 21, 2, 30); !done || w != models.TeamA {
		t.Errorf("30-29 should be finished at the cap, got done=%v winner=%s", done, w)
	}
}
