package value

import (
	"math"
	"testing"

	"OddsEngine/internal/domain/models"
)

func TestKellyQuarterStake(t *testing.T) {
	res, err := Kelly(DefaultKellyConfig(), 1000, 2.0, 0.60)
	if err != nil {
		t.Fatalf("kelly: %v", err)
	}
	if math.Abs(res.FullKelly-0.20) > 1e-9 {
		t.Fatalf("full kelly = %v, want 0.20", res.FullKelly)
	}
	if math.Abs(res.SuggestedAmount-50) > 1e-9 {
		t.Fatalf("suggested stake = %v, want 50", res.SuggestedAmount)
	}
	if res.ExpectedValue <= 0 {
		t.Fatalf("expected value = %v, want positive", res.ExpectedValue)
	}
}

func TestKellyNegativeExpectation(t *testing.T) {
	res, err := Kelly(DefaultKellyConfig(), 1000, 2.0, 0.40)
	if err != nil {
		t.Fatalf("kelly: %v", err)
	}
	if res.FullKelly >= 0 {
		t.Fatalf("full kelly = %v, want negative", res.FullKelly)
	}
	if res.SuggestedAmount != 0 {
		t.Fatalf("suggested stake = %v, want 0 for negative edge", res.SuggestedAmount)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("negative expectation should carry a warning")
	}
}

func TestKellyExposureCap(t *testing.T) {
	cfg := DefaultKellyConfig()
	cfg.Fraction = 1 // full Kelly would stake 20% of bankroll
	res, err := Kelly(cfg, 1000, 2.0, 0.60)
	if err != nil {
		t.Fatalf("kelly: %v", err)
	}
	if math.Abs(res.SuggestedAmount-50) > 1e-9 {
		t.Fatalf("stake = %v, want clamped to 5%% cap = 50", res.SuggestedAmount)
	}
	clamped := false
	for _, w := range res.Warnings {
		if w == "stake clamped by exposure cap" {
			clamped = true
		}
	}
	if !clamped {
		t.Fatal("expected clamp warning")
	}
}

func TestKellyAbsoluteCapTightens(t *testing.T) {
	cfg := DefaultKellyConfig()
	cfg.Fraction = 1
	cfg.MaxSingleBet = 25
	res, err := Kelly(cfg, 1000, 2.0, 0.60)
	if err != nil {
		t.Fatalf("kelly: %v", err)
	}
	if math.Abs(res.SuggestedAmount-25) > 1e-9 {
		t.Fatalf("stake = %v, want absolute cap 25", res.SuggestedAmount)
	}
}

func TestKellyAbsoluteCapWithoutPercentageCap(t *testing.T) {
	cfg := DefaultKellyConfig()
	cfg.Fraction = 1
	cfg.MaxBetPercentage = 0 // only the absolute cap in force
	cfg.MaxSingleBet = 25
	res, err := Kelly(cfg, 1000, 2.0, 0.60)
	if err != nil {
		t.Fatalf("kelly: %v", err)
	}
	if math.Abs(res.SuggestedAmount-25) > 1e-9 {
		t.Fatalf("stake = %v, want absolute cap 25", res.SuggestedAmount)
	}
	clamped := false
	for _, w := range res.Warnings {
		if w == "stake clamped by exposure cap" {
			clamped = true
		}
	}
	if !clamped {
		t.Fatal("expected clamp warning")
	}
}

func TestKellyImplausibleEdgeWarning(t *testing.T) {
	res, err := Kelly(DefaultKellyConfig(), 1000, 4.0, 0.60)
	if err != nil {
		t.Fatalf("kelly: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if w == "edge exceeds plausible range, verify inputs" {
			found = true
		}
	}
	if !found {
		t.Fatalf("edge %v should trigger plausibility warning", res.Edge)
	}
}

func TestKellyInputValidation(t *testing.T) {
	if _, err := Kelly(DefaultKellyConfig(), 1000, 1.0, 0.5); err == nil {
		t.Fatal("odds of 1.0 should be rejected")
	}
	if _, err := Kelly(DefaultKellyConfig(), 1000, 2.0, 1.2); err == nil {
		t.Fatal("probability above 1 should be rejected")
	}
	if _, err := Kelly(DefaultKellyConfig(), -5, 2.0, 0.5); err == nil {
		t.Fatal("negative bankroll should be rejected")
	}
}

func TestKellyRiskLevels(t *testing.T) {
	low, _ := Kelly(DefaultKellyConfig(), 1000, 2.0, 0.53) // full kelly 0.06
	if low.RiskLevel != models.RiskLow {
		t.Fatalf("risk = %s, want low", low.RiskLevel)
	}
	high, _ := Kelly(DefaultKellyConfig(), 1000, 2.0, 0.62) // full kelly 0.24
	if high.RiskLevel != models.RiskHigh {
		t.Fatalf("risk = %s, want high", high.RiskLevel)
	}
}
