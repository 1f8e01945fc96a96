package value

import (
	"fmt"

	"OddsEngine/internal/domain/models"
)

// KellyConfig bounds the stake sizing.
type KellyConfig struct {
	// Fraction scales the full Kelly stake down; 0.25 is quarter Kelly.
	Fraction float64
	// MaxBetPercentage caps a single stake as a share of bankroll.
	MaxBetPercentage float64
	// MaxSingleBet caps a single stake in absolute currency units;
	// 0 disables the absolute cap.
	MaxSingleBet float64
	// MaxPlausibleEdge flags suspiciously large edges, in percent.
	MaxPlausibleEdge float64
}

// DefaultKellyConfig returns quarter Kelly with a 5% bankroll cap.
func DefaultKellyConfig() KellyConfig {
	return KellyConfig{
		Fraction:         0.25,
		MaxBetPercentage: 0.05,
		MaxSingleBet:     0,
		MaxPlausibleEdge: 50,
	}
}

// Kelly sizes a stake for a bet at decimal odds with model win probability p
// against the given bankroll. A negative full Kelly means the bet has no
// edge; the suggested amount is then zero and a warning explains it.
func Kelly(cfg KellyConfig, bankroll, odds, p float64) (models.KellyResult, error) {
	if odds <= 1 {
		return models.KellyResult{}, fmt.Errorf("odds must exceed 1, got %v", odds)
	}
	if p < 0 || p > 1 {
		return models.KellyResult{}, fmt.Errorf("probability must be in [0,1], got %v", p)
	}
	if bankroll < 0 {
		return models.KellyResult{}, fmt.Errorf("bankroll must be non-negative, got %v", bankroll)
	}

	b := odds - 1
	q := 1 - p
	full := (b*p - q) / b
	ev := p*b - q
	implied := 1 / odds
	edge := Edge(p, implied)

	res := models.KellyResult{
		FullKelly:     full,
		Edge:          edge,
		ExpectedValue: ev,
	}

	if full <= 0 {
		res.FullKelly = full
		res.SuggestedAmount = 0
		res.RiskLevel = models.RiskHigh
		res.Warnings = append(res.Warnings, "negative expectation, do not bet")
		return res, nil
	}

	// The percentage cap and the absolute cap each apply on their own, so
	// a zero MaxBetPercentage still leaves MaxSingleBet in force.
	stake := bankroll * full * cfg.Fraction
	capAmount := stake
	if cfg.MaxBetPercentage > 0 && bankroll*cfg.MaxBetPercentage < capAmount {
		capAmount = bankroll * cfg.MaxBetPercentage
	}
	if cfg.MaxSingleBet > 0 && cfg.MaxSingleBet < capAmount {
		capAmount = cfg.MaxSingleBet
	}
	if capAmount < stake {
		stake = capAmount
		res.Warnings = append(res.Warnings, "stake clamped by exposure cap")
	}
	res.SuggestedAmount = stake

	switch {
	case full >= 0.20:
		res.RiskLevel = models.RiskHigh
	case full >= 0.10:
		res.RiskLevel = models.RiskMedium
	default:
		res.RiskLevel = models.RiskLow
	}

	if cfg.MaxPlausibleEdge > 0 && edge > cfg.MaxPlausibleEdge {
		res.Warnings = append(res.Warnings, "edge exceeds plausible range, verify inputs")
	}
	return res, nil
}
