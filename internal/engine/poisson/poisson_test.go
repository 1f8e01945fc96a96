package poisson

import (
	"math"
	"testing"

	"OddsEngine/internal/domain/models"
)

func TestGridMassIsOne(t *testing.T) {
	m := New(1.48, 1.18)
	for _, tc := range []struct{ lh, la float64 }{
		{0.6, 0.5},
		{1.8, 1.1},
		{3.4, 2.9},
		{5.0, 4.5},
	} {
		r := m.Run(tc.lh, tc.la)
		if mass := r.TotalMass(); math.Abs(mass-1) > 1e-6 {
			t.Fatalf("lambda %v/%v: total mass = %v, want 1", tc.lh, tc.la, mass)
		}
	}
}

func TestOutcomeRangesForKnownLambdas(t *testing.T) {
	r := New(1.48, 1.18).Run(1.8, 1.1)

	if r.HomeWin < 0.48 || r.HomeWin > 0.55 {
		t.Fatalf("home win = %v, want in [0.48, 0.55]", r.HomeWin)
	}
	if r.Draw < 0.23 || r.Draw > 0.28 {
		t.Fatalf("draw = %v, want in [0.23, 0.28]", r.Draw)
	}
	if r.AwayWin < 0.20 || r.AwayWin > 0.26 {
		t.Fatalf("away win = %v, want in [0.20, 0.26]", r.AwayWin)
	}
	if sum := r.HomeWin + r.Draw + r.AwayWin; math.Abs(sum-1) > 1e-6 {
		t.Fatalf("1X2 sum = %v, want 1", sum)
	}
}

func TestExpectedGoalsFromRatings(t *testing.T) {
	m := New(1.5, 1.2)
	lh, la := m.ExpectedGoals(models.GoalRatings{
		HomeAttack: 120, HomeDefense: 90,
		AwayAttack: 80, AwayDefense: 110,
	})
	if want := 1.5 * 1.2 * 1.1; math.Abs(lh-want) > 1e-9 {
		t.Fatalf("lambda home = %v, want %v", lh, want)
	}
	if want := 1.2 * 0.8 * 0.9; math.Abs(la-want) > 1e-9 {
		t.Fatalf("lambda away = %v, want %v", la, want)
	}
}

func TestFallbackOnInvalidLambda(t *testing.T) {
	r := New(1.48, 1.18).Run(-1, math.NaN())
	if !r.LowConfidence {
		t.Fatal("invalid lambdas should flag low confidence")
	}
	if r.LambdaHome != 1.48 || r.LambdaAway != 1.18 {
		t.Fatalf("fallback lambdas = %v/%v, want league averages", r.LambdaHome, r.LambdaAway)
	}
	if mass := r.TotalMass(); math.Abs(mass-1) > 1e-6 {
		t.Fatalf("fallback mass = %v, want 1", mass)
	}
}

func TestOverUnderConsistency(t *testing.T) {
	r := New(1.48, 1.18).Run(1.6, 1.2)
	over, under := r.OverUnder(2.5)
	if math.Abs(over+under-1) > 1e-6 {
		t.Fatalf("over+under = %v, want 1", over+under)
	}
	o35, _ := r.OverUnder(3.5)
	if o35 >= over {
		t.Fatalf("over 3.5 (%v) should be below over 2.5 (%v)", o35, over)
	}
}

func TestGoalRangeMatchesOverUnder(t *testing.T) {
	r := New(1.48, 1.18).Run(1.6, 1.2)
	_, under := r.OverUnder(2.5)
	if in := r.GoalRange(0, 2); math.Abs(in-under) > 1e-9 {
		t.Fatalf("goal range 0-2 = %v, want under 2.5 = %v", in, under)
	}
}

func TestBTTSMatchesGrid(t *testing.T) {
	r := New(1.48, 1.18).Run(1.5, 1.3)
	var yes float64
	for i := 1; i < len(r.Grid); i++ {
		for j := 1; j < len(r.Grid); j++ {
			yes += r.Grid[i][j]
		}
	}
	if math.Abs(yes-r.BTTSYes) > 1e-9 {
		t.Fatalf("btts from grid = %v, field = %v", yes, r.BTTSYes)
	}
}

func TestTopScorelinesOrdering(t *testing.T) {
	r := New(1.48, 1.18).Run(1.4, 1.1)
	top := r.TopScorelines(5)
	if len(top) != 5 {
		t.Fatalf("want 5 scorelines, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Probability > top[i-1].Probability {
			t.Fatalf("scorelines not sorted at %d: %v > %v", i, top[i].Probability, top[i-1].Probability)
		}
		if top[i].Probability == top[i-1].Probability {
			prev := top[i-1].Home + top[i-1].Away
			cur := top[i].Home + top[i].Away
			if cur < prev {
				t.Fatalf("tie at %d should prefer fewer total goals first", i)
			}
		}
	}
}

func TestHalfTimeLowerThanFullTime(t *testing.T) {
	m := New(1.48, 1.18)
	ft := m.Run(1.8, 1.1)
	ht := m.HalfTime(1.8, 1.1)
	if ht.LambdaHome >= ft.LambdaHome {
		t.Fatalf("half-time lambda %v should be below full-time %v", ht.LambdaHome, ft.LambdaHome)
	}
	if mass := ht.TotalMass(); math.Abs(mass-1) > 1e-6 {
		t.Fatalf("half-time mass = %v, want 1", mass)
	}
}
