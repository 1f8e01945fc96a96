package usecase

import (
	"context"
	"fmt"
	"time"

	"OddsEngine/internal/domain/models"
	domrepo "OddsEngine/internal/domain/repository"
	"OddsEngine/internal/engine/ensemble"
	"OddsEngine/internal/engine/factors"
	"OddsEngine/internal/engine/poisson"
	"OddsEngine/internal/engine/value"
	"OddsEngine/pkg/logger"
)

// standard total-goals lines priced on every fixture
var overUnderLines = []float64{1.5, 2.5, 3.5}

// Predictor runs the full pre-match pipeline for one fixture: factor
// aggregation, the Poisson model, the ensemble blend, and value detection
// against bookmaker odds when they are supplied.
type Predictor struct {
	agg      *factors.Aggregator
	model    *poisson.Model
	scorer   *ensemble.Scorer
	detector *value.Detector
	history  domrepo.HistoryStore
	metrics  domrepo.Metrics
	log      *logger.Logger
}

// NewPredictor wires the engine stages together. The history store is
// optional; a nil store disables persistence.
func NewPredictor(
	agg *factors.Aggregator,
	model *poisson.Model,
	scorer *ensemble.Scorer,
	detector *value.Detector,
	history domrepo.HistoryStore,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *Predictor {
	return &Predictor{
		agg:      agg,
		model:    model,
		scorer:   scorer,
		detector: detector,
		history:  history,
		metrics:  metrics,
		log:      log,
	}
}

// Predict produces the full market sheet for one fixture. Odds may be nil,
// in which case no value bets are attached.
func (p *Predictor) Predict(ctx context.Context, in *models.FixtureInput, odds *models.OddsSnapshot) (*models.PredictionResult, error) {
	start := time.Now()

	f, err := p.agg.Aggregate(in)
	if err != nil {
		p.metrics.RecordError("aggregate")
		return nil, fmt.Errorf("aggregate factors: %w", err)
	}

	lambdaHome, lambdaAway := p.model.ExpectedGoals(f.Ratings)
	pr := p.model.Run(lambdaHome, lambdaAway)
	prHT := p.model.HalfTime(lambdaHome, lambdaAway)

	oneXTwo := p.scorer.MatchResult(f, pr)
	markets := []models.MarketPrediction{oneXTwo}
	for _, line := range overUnderLines {
		markets = append(markets, p.scorer.OverUnder(f, pr, line))
	}
	markets = append(markets,
		p.scorer.BTTS(f, pr),
		p.scorer.DoubleChance(oneXTwo, f, pr),
		p.scorer.HalfTimeResult(f, prHT),
		p.scorer.GoalRange(f, pr, 2, 3),
	)

	res := &models.PredictionResult{
		FixtureID:         in.FixtureID,
		GeneratedAt:       time.Now(),
		Factors:           f,
		ExpectedHomeGoals: pr.LambdaHome,
		ExpectedAwayGoals: pr.LambdaAway,
		Markets:           markets,
		TopScorelines:     pr.TopScorelines(5),
	}

	var confSum float64
	for _, m := range res.Markets {
		confSum += m.Confidence
		p.metrics.RecordPrediction(string(m.Market.Type))
	}
	res.OverallConfidence = confSum / float64(len(res.Markets))

	if odds != nil {
		p.attachValueBets(res, odds)
	}

	if p.history != nil {
		if err := p.history.StorePrediction(ctx, res); err != nil {
			p.metrics.RecordError("history_store")
			p.log.Warn("prediction not persisted",
				logger.String("fixture", in.FixtureID),
				logger.Error(err),
			)
		}
	}

	p.metrics.RecordLatency("predict", time.Since(start).Seconds())
	p.log.Info("prediction generated",
		logger.String("fixture", in.FixtureID),
		logger.Float64("lambda_home", res.ExpectedHomeGoals),
		logger.Float64("lambda_away", res.ExpectedAwayGoals),
		logger.Float64("confidence", res.OverallConfidence),
		logger.Int("value_bets", len(res.ValueBets)),
	)
	return res, nil
}

// attachValueBets annotates priced outcomes with bookmaker and fair odds
// and fills ValueBets and BestBet from the detector.
func (p *Predictor) attachValueBets(res *models.PredictionResult, odds *models.OddsSnapshot) {
	for i := range res.Markets {
		mo, ok := odds.Find(res.Markets[i].Market)
		if !ok {
			continue
		}
		implied, err := value.ImpliedProbabilities(mo.Prices)
		if err != nil {
			continue
		}
		for pick, quoted := range mo.Prices {
			out, ok := res.Markets[i].Outcomes[pick]
			if !ok {
				continue
			}
			out.BookmakerOdds = quoted
			if ip := implied[pick]; ip > 0 {
				out.FairOdds = 1 / ip
			}
			res.Markets[i].Outcomes[pick] = out
		}
	}

	bets := p.detector.Scan(res, odds)
	for _, vb := range bets {
		if vb.Implausible {
			continue
		}
		level := models.StakeLow
		switch vb.Tier {
		case value.TierHigh:
			level = models.StakeMedium
		case value.TierStrong:
			level = models.StakeHigh
		}
		res.ValueBets = append(res.ValueBets, models.BetSuggestion{
			FixtureID:   res.FixtureID,
			Market:      vb.Market,
			Pick:        vb.Pick,
			Probability: vb.ModelProb,
			Confidence:  vb.Confidence,
			Edge:        vb.Edge,
			Odds:        vb.Odds,
			Stake:       level,
			Reasoning: []string{
				fmt.Sprintf("%s edge of %.1f%% over implied %.1f%%", vb.Tier, vb.Edge, vb.ImpliedProb*100),
			},
		})
		p.metrics.RecordValueBet(string(vb.Tier))
	}
	res.BestBet = p.detector.Suggest(res.FixtureID, bets)
}
