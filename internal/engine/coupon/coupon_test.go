package coupon

import (
	"math"
	"testing"

	"OddsEngine/internal/domain/models"
)

func selections(odds ...float64) []models.Selection {
	out := make([]models.Selection, len(odds))
	for i, o := range odds {
		out[i] = models.Selection{FixtureID: string(rune('a' + i)), Odds: o}
	}
	return out
}

func TestSingleSystem(t *testing.T) {
	res, err := New().Price(models.SystemSingle, selections(2.5), 10)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if res.TotalCombinations != 1 || res.TotalStake != 10 {
		t.Fatalf("got %d combos / %v stake, want 1 / 10", res.TotalCombinations, res.TotalStake)
	}
	if math.Abs(res.PotentialWin-25) > 1e-9 {
		t.Fatalf("potential win = %v, want 25", res.PotentialWin)
	}
}

func TestFullCombinationMultipliesAllLegs(t *testing.T) {
	res, err := New().Price(models.SystemFull, selections(2.0, 3.0, 1.5), 10)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if res.TotalCombinations != 1 {
		t.Fatalf("full system combos = %d, want 1", res.TotalCombinations)
	}
	if math.Abs(res.PotentialWin-90) > 1e-9 {
		t.Fatalf("potential win = %v, want 2*3*1.5*10 = 90", res.PotentialWin)
	}
}

func TestThreeOfFourLayout(t *testing.T) {
	res, err := New().Price(models.System3of4, selections(2.0, 2.0, 2.0, 2.0), 10)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if res.TotalCombinations != 4 {
		t.Fatalf("3/4 combos = %d, want 4", res.TotalCombinations)
	}
	if math.Abs(res.TotalStake-40) > 1e-9 {
		t.Fatalf("total stake = %v, want 40", res.TotalStake)
	}
	// Each triple pays 2^3 * 10 = 80, four triples in total.
	if math.Abs(res.PotentialWin-320) > 1e-9 {
		t.Fatalf("potential win = %v, want 320", res.PotentialWin)
	}
}

func TestSelectionCountMismatchRejected(t *testing.T) {
	if _, err := New().Price(models.System2of3, selections(2.0, 2.0, 2.0, 2.0), 10); err == nil {
		t.Fatal("2/3 with 4 selections should be rejected")
	}
	if _, err := New().Price(models.SystemSingle, selections(2.0, 2.0), 10); err == nil {
		t.Fatal("single with 2 selections should be rejected")
	}
	if _, err := New().Price(models.SystemFull, selections(2.0), 10); err == nil {
		t.Fatal("full combination with 1 selection should be rejected")
	}
}

func TestInvalidInputsRejected(t *testing.T) {
	if _, err := New().Price(models.SystemSingle, selections(0.95), 10); err == nil {
		t.Fatal("odds below 1 should be rejected")
	}
	if _, err := New().Price(models.SystemSingle, selections(2.0), 0); err == nil {
		t.Fatal("zero stake should be rejected")
	}
	if _, err := New().Price(models.SystemType("4/5"), selections(2.0), 10); err == nil {
		t.Fatal("unknown system should be rejected")
	}
}

func TestSettlePartialHit(t *testing.T) {
	won, lost := true, false
	sel := []models.Selection{
		{FixtureID: "a", Odds: 2.0, Won: &won},
		{FixtureID: "b", Odds: 2.0, Won: &won},
		{FixtureID: "c", Odds: 2.0, Won: &won},
		{FixtureID: "d", Odds: 2.0, Won: &lost},
	}
	// Only the triple a-b-c of the four 3/4 lines survives the miss on d.
	payout, err := New().Settle(models.System3of4, sel, 10)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if math.Abs(payout-80) > 1e-9 {
		t.Fatalf("payout = %v, want 80", payout)
	}
}

func TestSettleRequiresResults(t *testing.T) {
	won := true
	sel := []models.Selection{
		{FixtureID: "a", Odds: 2.0, Won: &won},
		{FixtureID: "b", Odds: 2.0},
	}
	if _, err := New().Settle(models.SystemFull, sel, 10); err == nil {
		t.Fatal("settlement without full results should be rejected")
	}
}

func TestTwoOfFourEnumeratesSixPairs(t *testing.T) {
	res, err := New().Price(models.System2of4, selections(1.5, 1.6, 1.7, 1.8), 5)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if res.TotalCombinations != 6 {
		t.Fatalf("2/4 combos = %d, want 6", res.TotalCombinations)
	}
}
