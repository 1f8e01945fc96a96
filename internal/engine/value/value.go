// Package value compares model probabilities against bookmaker prices to
// surface positive-expectation bets and size them.
package value

import (
	"fmt"
	"sort"

	"OddsEngine/internal/domain/models"
)

// Tier labels a value bet by edge size.
type Tier string

const (
	TierValue  Tier = "value"
	TierHigh   Tier = "high"
	TierStrong Tier = "strong"
)

// Config holds the edge thresholds, in percent.
type Config struct {
	MinValueThreshold   float64
	HighEdgeThreshold   float64
	StrongEdgeThreshold float64
	MaxPlausibleEdge    float64
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MinValueThreshold:   5,
		HighEdgeThreshold:   15,
		StrongEdgeThreshold: 20,
		MaxPlausibleEdge:    50,
	}
}

// ValueBet is one positive-edge opportunity in a priced market.
type ValueBet struct {
	Market      models.Market `json:"market"`
	Pick        models.Pick   `json:"pick"`
	ModelProb   float64       `json:"modelProb"`
	ImpliedProb float64       `json:"impliedProb"`
	Odds        float64       `json:"odds"`
	FairOdds    float64       `json:"fairOdds"`
	Edge        float64       `json:"edge"`
	Tier        Tier          `json:"tier"`
	Confidence  float64       `json:"confidence"`
	Implausible bool          `json:"implausible,omitempty"`
}

// Detector finds value bets.
type Detector struct {
	cfg Config
}

// New creates a Detector.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// ImpliedProbabilities strips the bookmaker overround from a price set by
// normalizing the raw inverse odds. Non-positive odds are rejected.
func ImpliedProbabilities(prices map[models.Pick]float64) (map[models.Pick]float64, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("no prices supplied")
	}
	raw := make(map[models.Pick]float64, len(prices))
	var sum float64
	for pick, odds := range prices {
		if odds <= 1 {
			return nil, fmt.Errorf("odds for %s must exceed 1, got %v", pick, odds)
		}
		raw[pick] = 1 / odds
		sum += 1 / odds
	}
	out := make(map[models.Pick]float64, len(prices))
	for pick, r := range raw {
		out[pick] = r / sum
	}
	return out, nil
}

// Edge returns the relative edge in percent of a model probability over the
// overround-free implied probability.
func Edge(modelProb, impliedProb float64) float64 {
	if impliedProb <= 0 {
		return 0
	}
	return (modelProb - impliedProb) / impliedProb * 100
}

// tier maps an edge to its label; edges below the minimum threshold have no
// tier and the caller drops them.
func (d *Detector) tier(edge float64) (Tier, bool) {
	switch {
	case edge >= d.cfg.StrongEdgeThreshold:
		return TierStrong, true
	case edge >= d.cfg.HighEdgeThreshold:
		return TierHigh, true
	case edge >= d.cfg.MinValueThreshold:
		return TierValue, true
	default:
		return "", false
	}
}

// Scan compares every priced market in the snapshot against the prediction
// and returns qualifying value bets, strongest edge first. Markets the
// prediction does not cover, and picks without a price, are skipped rather
// than treated as errors.
func (d *Detector) Scan(pred *models.PredictionResult, snapshot *models.OddsSnapshot) []ValueBet {
	if pred == nil || snapshot == nil {
		return nil
	}
	var bets []ValueBet
	for _, mp := range pred.Markets {
		mo, ok := snapshot.Find(mp.Market)
		if !ok {
			continue
		}
		implied, err := ImpliedProbabilities(mo.Prices)
		if err != nil {
			continue
		}
		for pick, outcome := range mp.Outcomes {
			odds, priced := mo.Prices[pick]
			if !priced {
				continue
			}
			edge := Edge(outcome.Probability, implied[pick])
			tier, ok := d.tier(edge)
			if !ok {
				continue
			}
			vb := ValueBet{
				Market:      mp.Market,
				Pick:        pick,
				ModelProb:   outcome.Probability,
				ImpliedProb: implied[pick],
				Odds:        odds,
				FairOdds:    fairOdds(implied[pick]),
				Edge:        edge,
				Tier:        tier,
				Confidence:  mp.Confidence,
			}
			if edge > d.cfg.MaxPlausibleEdge {
				// Edges this large usually mean a stale price or a bad
				// input, not free money.
				vb.Implausible = true
			}
			bets = append(bets, vb)
		}
	}
	sort.Slice(bets, func(i, j int) bool { return bets[i].Edge > bets[j].Edge })
	return bets
}

// Suggest converts the strongest non-implausible value bet into a staking
// suggestion, or nil when nothing qualifies.
func (d *Detector) Suggest(fixtureID string, bets []ValueBet) *models.BetSuggestion {
	for _, vb := range bets {
		if vb.Implausible {
			continue
		}
		level := models.StakeLow
		switch vb.Tier {
		case TierHigh:
			level = models.StakeMedium
		case TierStrong:
			level = models.StakeHigh
		}
		return &models.BetSuggestion{
			FixtureID:   fixtureID,
			Market:      vb.Market,
			Pick:        vb.Pick,
			Probability: vb.ModelProb,
			Confidence:  vb.Confidence,
			Edge:        vb.Edge,
			Odds:        vb.Odds,
			Stake:       level,
			Reasoning: []string{
				fmt.Sprintf("%s edge of %.1f%% over implied %.1f%%",
					vb.Tier, vb.Edge, vb.ImpliedProb*100),
			},
		}
	}
	return nil
}

// fairOdds inverts the overround-free implied probability. Recomputing the
// implied probability from it must reproduce the flagged edge exactly.
func fairOdds(implied float64) float64 {
	if implied <= 0 {
		return 0
	}
	return 1 / implied
}
