// Package ensemble blends the heuristic factor signal and the Poisson model
// into calibrated per-market probabilities and a recommended pick.
package ensemble

import (
	"fmt"
	"math"

	"OddsEngine/internal/domain/models"
	"OddsEngine/internal/engine/poisson"
)

// Config carries the blend weights and thresholds. Weights must be
// non-negative and sum to 1; that is enforced at configuration-load time,
// not here.
type Config struct {
	FormWeight       float64
	H2HWeight        float64
	StatsWeight      float64
	StandingsWeight  float64
	MotivationWeight float64

	// PoissonWeight is the share of the final blend taken by the Poisson
	// marginal; the rest comes from the weighted factor heuristic.
	PoissonWeight float64

	// MinConfidenceThreshold gates pick recommendation. Below it the market
	// returns no pick, which is a legitimate non-error outcome.
	MinConfidenceThreshold float64

	// MinH2HMatches suppresses H2H contributions below this sample size.
	MinH2HMatches int
}

// DefaultConfig returns the stock blend.
func DefaultConfig() Config {
	return Config{
		FormWeight:             0.30,
		H2HWeight:              0.20,
		StatsWeight:            0.25,
		StandingsWeight:        0.15,
		MotivationWeight:       0.10,
		PoissonWeight:          0.5,
		MinConfidenceThreshold: 55,
		MinH2HMatches:          3,
	}
}

// Validate rejects malformed weight sets.
func (c Config) Validate() error {
	ws := []float64{c.FormWeight, c.H2HWeight, c.StatsWeight, c.StandingsWeight, c.MotivationWeight}
	var sum float64
	for _, w := range ws {
		if w < 0 {
			return fmt.Errorf("ensemble weights must be non-negative")
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("ensemble weights must sum to 1, got %v", sum)
	}
	if c.PoissonWeight < 0 || c.PoissonWeight > 1 {
		return fmt.Errorf("poisson weight must be in [0,1]")
	}
	return nil
}

// Scorer produces MarketPredictions.
type Scorer struct {
	cfg Config
}

// New creates a Scorer; invalid configs are rejected.
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// MatchResult blends the heuristic 1X2 signal with the Poisson marginals.
func (s *Scorer) MatchResult(f models.PredictionFactors, pr *poisson.Result) models.MarketPrediction {
	heur := s.heuristic1X2(f, pr)
	pois := [3]float64{pr.HomeWin, pr.Draw, pr.AwayWin}

	var blend [3]float64
	pw := s.cfg.PoissonWeight
	for i := range blend {
		blend[i] = (1-pw)*heur[i] + pw*pois[i]
	}
	normalize(blend[:])

	agreement := 1 - tvDistance(heur[:], pois[:])
	picks := []models.Pick{models.PickHome, models.PickDraw, models.PickAway}
	mp := s.buildPrediction(models.MatchResult(), picks, blend[:], agreement, f, pr)

	if agreement < 0.8 {
		mp.Reasoning = append(mp.Reasoning, "factor and Poisson signals disagree; confidence reduced")
	}
	if f.H2H.TotalMatches > 0 && f.H2H.TotalMatches < s.cfg.MinH2HMatches {
		mp.Reasoning = append(mp.Reasoning, "h2h sample too small, contribution suppressed")
	}
	return mp
}

// OverUnder scores a total-goals market straight from the Poisson grid.
func (s *Scorer) OverUnder(f models.PredictionFactors, pr *poisson.Result, line float64) models.MarketPrediction {
	over, under := pr.OverUnder(line)
	probs := []float64{over, under}
	normalize(probs)
	return s.buildPrediction(models.OverUnder(line),
		[]models.Pick{models.PickOver, models.PickUnder}, probs, 1, f, pr)
}

// BTTS blends the Poisson both-teams-score probability with the H2H BTTS
// rate when the sample is large enough.
func (s *Scorer) BTTS(f models.PredictionFactors, pr *poisson.Result) models.MarketPrediction {
	yes := pr.BTTSYes
	agreement := 1.0
	if f.H2H.TotalMatches >= s.cfg.MinH2HMatches {
		h2hYes := f.H2H.BTTSPercentage / 100
		agreement = 1 - math.Abs(yes-h2hYes)
		yes = 0.8*yes + 0.2*h2hYes
	}
	probs := []float64{yes, 1 - yes}
	return s.buildPrediction(models.BTTS(),
		[]models.Pick{models.PickYes, models.PickNo}, probs, agreement, f, pr)
}

// DoubleChance derives 1X/X2/12 from an already-blended 1X2 prediction.
// Note the outcome set is not mutually exclusive, so probabilities do not
// sum to 1 here; each is the chance of that covered pair.
func (s *Scorer) DoubleChance(oneXTwo models.MarketPrediction, f models.PredictionFactors, pr *poisson.Result) models.MarketPrediction {
	home := oneXTwo.Outcomes[models.PickHome].Probability
	draw := oneXTwo.Outcomes[models.PickDraw].Probability
	away := oneXTwo.Outcomes[models.PickAway].Probability

	mp := models.MarketPrediction{
		Market: models.DoubleChance(),
		Outcomes: map[models.Pick]models.MarketProbability{
			models.Pick1X: {Probability: home + draw, Confidence: oneXTwo.Confidence},
			models.PickX2: {Probability: draw + away, Confidence: oneXTwo.Confidence},
			models.Pick12: {Probability: home + away, Confidence: oneXTwo.Confidence},
		},
		Confidence:    oneXTwo.Confidence,
		LowConfidence: oneXTwo.LowConfidence,
	}
	best, bestP := bestOutcome(mp.Outcomes)
	if mp.Confidence >= s.cfg.MinConfidenceThreshold && bestP > 0 {
		mp.Pick = &best
	}
	return mp
}

// HalfTimeResult scores the half-time 1X2 from a half-time Poisson run.
func (s *Scorer) HalfTimeResult(f models.PredictionFactors, prHT *poisson.Result) models.MarketPrediction {
	probs := []float64{prHT.HomeWin, prHT.Draw, prHT.AwayWin}
	normalize(probs)
	return s.buildPrediction(models.HalfTimeResult(),
		[]models.Pick{models.PickHome, models.PickDraw, models.PickAway}, probs, 1, f, prHT)
}

// GoalRange scores an inclusive total-goals band.
func (s *Scorer) GoalRange(f models.PredictionFactors, pr *poisson.Result, min, max int) models.MarketPrediction {
	in := pr.GoalRange(min, max)
	probs := []float64{in, 1 - in}
	return s.buildPrediction(models.GoalRange(min, max),
		[]models.Pick{models.PickIn, models.PickOut}, probs, 1, f, pr)
}

// heuristic1X2 computes the weighted factor score per outcome and converts
// scores into probabilities. The stats channel is fed by the Poisson
// marginals per the blend design.
func (s *Scorer) heuristic1X2(f models.PredictionFactors, pr *poisson.Result) [3]float64 {
	effHome := 0.6*f.Form.HomeForm + 0.4*f.Form.HomeHomeForm
	effAway := 0.6*f.Form.AwayForm + 0.4*f.Form.AwayAwayForm
	formH, formD, formA := channelScores(effHome, effAway)

	// H2H channel: win rates when the sample is big enough, neutral
	// otherwise.
	h2hH, h2hD, h2hA := 50.0, 50.0, 50.0
	if f.H2H.TotalMatches >= s.cfg.MinH2HMatches {
		total := float64(f.H2H.TotalMatches)
		h2hH = float64(f.H2H.HomeWins) / total * 100
		h2hD = float64(f.H2H.Draws) / total * 100
		h2hA = float64(f.H2H.AwayWins) / total * 100
	}

	statsH := pr.HomeWin * 100
	statsD := pr.Draw * 100
	statsA := pr.AwayWin * 100

	standH, standD, standA := 50.0, 50.0, 50.0
	if f.Standings.HomePosition > 0 && f.Standings.AwayPosition > 0 {
		adv := clampRange(float64(f.Standings.AwayPosition-f.Standings.HomePosition)*2.5, -40, 40)
		standH, standD, standA = 50+adv, 50-math.Abs(adv)/2, 50-adv
	}

	motAdv := (f.Motivation.HomeMotivation - f.Motivation.AwayMotivation) / 2
	motH, motD, motA := 50+motAdv, 50-math.Abs(motAdv)/2, 50-motAdv

	c := s.cfg
	scores := [3]float64{
		c.FormWeight*formH + c.H2HWeight*h2hH + c.StatsWeight*statsH + c.StandingsWeight*standH + c.MotivationWeight*motH,
		c.FormWeight*formD + c.H2HWeight*h2hD + c.StatsWeight*statsD + c.StandingsWeight*standD + c.MotivationWeight*motD,
		c.FormWeight*formA + c.H2HWeight*h2hA + c.StatsWeight*statsA + c.StandingsWeight*standA + c.MotivationWeight*motA,
	}
	normalize(scores[:])
	return scores
}

func (s *Scorer) buildPrediction(
	market models.Market,
	picks []models.Pick,
	probs []float64,
	agreement float64,
	f models.PredictionFactors,
	pr *poisson.Result,
) models.MarketPrediction {
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}

	// Confidence grows with the winning probability and with agreement
	// between the two signal families, and shrinks for every degraded input
	// section and for a fallback Poisson run.
	conf := 100 * (0.6*probs[best] + 0.4*agreement)
	conf -= 5 * float64(len(f.Degraded))
	if pr != nil && pr.LowConfidence {
		conf -= 10
	}
	conf = clampRange(conf, 0, 100)

	mp := models.MarketPrediction{
		Market:        market,
		Outcomes:      make(map[models.Pick]models.MarketProbability, len(picks)),
		Confidence:    conf,
		LowConfidence: pr != nil && pr.LowConfidence,
	}
	for i, p := range picks {
		mp.Outcomes[p] = models.MarketProbability{Probability: probs[i], Confidence: conf}
	}
	for _, section := range f.Degraded {
		mp.Reasoning = append(mp.Reasoning, "missing "+section+" input, neutral default used")
	}
	if conf >= s.cfg.MinConfidenceThreshold {
		pick := picks[best]
		mp.Pick = &pick
	}
	return mp
}

// channelScores maps a pair of 0-100 team scores into home/draw/away channel
// scores. Draw likelihood peaks when the sides are even.
func channelScores(home, away float64) (h, d, a float64) {
	return home, clampRange(70-math.Abs(home-away)/2, 0, 100), away
}

func bestOutcome(outcomes map[models.Pick]models.MarketProbability) (models.Pick, float64) {
	var best models.Pick
	bestP := -1.0
	for p, mp := range outcomes {
		if mp.Probability > bestP {
			best, bestP = p, mp.Probability
		}
	}
	return best, bestP
}

func normalize(xs []float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	if sum <= 0 {
		for i := range xs {
			xs[i] = 1 / float64(len(xs))
		}
		return
	}
	for i := range xs {
		xs[i] /= sum
	}
}

func tvDistance(a, b []float64) float64 {
	var d float64
	for i := range a {
		d += math.Abs(a[i] - b[i])
	}
	return d / 2
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
