package mmr

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestExpected(t *testing.T) {
	if got := Expected(1200, 1200); math.Abs(got-0.5) > eps {
		t.Errorf("equal ratings: expected = %f, want 0.5", got)
	}
	if got := Expected(1600, 1200); math.Abs(got-(1.0/(1.0+math.Pow(10, -1.0)))) > eps {
		t.Errorf("400-point gap: expected = %f", got)
	}
	// symmetry
	if e := Expected(1350, 1100) + Expected(1100, 1350); math.Abs(e-1.0) > eps {
		t.Errorf("expectations should sum to 1, got %f", e)
	}
}

func TestTeamRating(t *testing.T) {
	if got := TeamRating(nil); got != BaseRating {
		t.Errorf("empty roster rating = %f, want %f", got, BaseRating)
	}
	if got := TeamRating([]float64{1200, 1300}); math.Abs(got-1250) > eps {
		t.Errorf("mean = %f, want 1250", got)
	}
}

func TestPointsUpdateZeroSum(t *testing.T) {
	da, db := PointsUpdate(1280, 1170, 0.6, DefaultK)
	if math.Abs(da+db) > eps {
		t.Errorf("deltas not zero-sum: %f + %f", da, db)
	}
}

func TestPointsUpdateDirection(t *testing.T) {
	// Equal ratings, a takes the majority of points, so a must gain.
	da, _ := PointsUpdate(1200, 1200, 0.65, DefaultK)
	if da <= 0 {
		t.Errorf("dominant side delta = %f, want > 0", da)
	}
	// A strong favourite who only barely outscores a weak side loses ground.
	da, _ = PointsUpdate(1600, 1200, 0.55, DefaultK)
	if da >= 0 {
		t.Errorf("underperforming favourite delta = %f, want < 0", da)
	}
}

func TestShare(t *testing.T) {
	if got := Share(42, 45); math.Abs(got-42.0/87.0) > eps {
		t.Errorf("Share(42, 45) = %f", got)
	}
	if got := Share(0, 0); got != 0 {
		t.Errorf("Share(0, 0) = %f, want 0", got)
	}
}

func TestTeamPointsUpdateBroadcast(t *testing.T) {
	a := []float64{1300, 1100}
	b := []float64{1250, 1150}
	newA, newB := TeamPointsUpdate(a, b, 0.58, DefaultK)

	deltaA := newA[0] - a[0]
	if math.Abs((newA[1]-a[1])-deltaA) > eps {
		t.Error("team members should shift by the same delta")
	}
	deltaB := newB[0] - b[0]
	if math.Abs(deltaA+deltaB) > eps {
		t.Errorf("team deltas not zero-sum: %f + %f", deltaA, deltaB)
	}
	// Equal team means with a points majority for a.
	if deltaA <= 0 {
		t.Errorf("team a delta = %f, want > 0", deltaA)
	}
}

func TestTeamPointsUpdateUnevenRosters(t *testing.T) {
	// A solo player against a pair still exchanges one team-level delta.
	newA, newB := TeamPointsUpdate([]float64{1400}, []float64{1200, 1200}, 0.5, DefaultK)
	deltaA := newA[0] - 1400
	if deltaA >= 0 {
		t.Errorf("favourite splitting points evenly should lose rating, delta = %f", deltaA)
	}
	if math.Abs((newB[0]-1200)+deltaA) > eps {
		t.Error("opposing delta should mirror the team delta")
	}
}
