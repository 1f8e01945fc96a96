package simulate

import (
	"math"
	"testing"

	"OddsEngine/internal/engine/poisson"
)

func TestRunReproducibleUnderSeed(t *testing.T) {
	res := poisson.New(1.48, 1.18).Run(1.8, 1.1)

	a, err := New(42).Run(res, 10000)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := New(42).Run(res, 10000)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if *a != *b {
		t.Fatalf("same seed diverged: %+v vs %+v", a, b)
	}
}

func TestRunTracksAnalyticMarginals(t *testing.T) {
	res := poisson.New(1.48, 1.18).Run(1.8, 1.1)
	sum, err := New(7).Run(res, 50000)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// 50k draws put the sampled rates within a percent or two of the
	// analytic values.
	if math.Abs(sum.HomeWinRate-res.HomeWin) > 0.02 {
		t.Fatalf("home rate %v too far from analytic %v", sum.HomeWinRate, res.HomeWin)
	}
	if math.Abs(sum.DrawRate-res.Draw) > 0.02 {
		t.Fatalf("draw rate %v too far from analytic %v", sum.DrawRate, res.Draw)
	}
	if math.Abs(sum.BTTSRate-res.BTTSYes) > 0.02 {
		t.Fatalf("btts rate %v too far from analytic %v", sum.BTTSRate, res.BTTSYes)
	}
	if math.Abs(sum.AvgTotalGoals-(1.8+1.1)) > 0.1 {
		t.Fatalf("avg goals %v too far from lambda sum 2.9", sum.AvgTotalGoals)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	res := poisson.New(1.48, 1.18).Run(1.5, 1.2)
	if _, err := New(1).Run(res, 0); err == nil {
		t.Fatal("zero runs should be rejected")
	}
	if _, err := New(1).Run(nil, 100); err == nil {
		t.Fatal("nil result should be rejected")
	}
}
