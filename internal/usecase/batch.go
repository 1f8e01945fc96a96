package usecase

import (
	"context"
	"sync"
	"time"

	"OddsEngine/internal/domain/models"
	"OddsEngine/internal/service/ratelimit"
	"OddsEngine/pkg/logger"
)

// BatchRequest pairs one fixture with its quoted odds, if any.
type BatchRequest struct {
	Fixture *models.FixtureInput
	Odds    *models.OddsSnapshot
}

// BatchResult carries the per-fixture outcome; one fixture failing never
// aborts the rest of the batch.
type BatchResult struct {
	FixtureID string
	Result    *models.PredictionResult
	Err       error
}

// BatchScorer scores many fixtures with bounded concurrency and a pause
// between waves so the upstream data source is not hammered.
type BatchScorer struct {
	pred        *Predictor
	concurrency int
	delay       time.Duration
	limiter     *ratelimit.Limiter
	sourceRPS   float64
	log         *logger.Logger
}

// NewBatchScorer creates a scorer; concurrency below 1 is raised to 1.
func NewBatchScorer(pred *Predictor, concurrency int, delay time.Duration, sourceRPS float64, log *logger.Logger) *BatchScorer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchScorer{
		pred:        pred,
		concurrency: concurrency,
		delay:       delay,
		limiter:     ratelimit.New(),
		sourceRPS:   sourceRPS,
		log:         log,
	}
}

// ScoreAll processes the requests in waves of the configured concurrency.
// Results come back in input order. Cancelling the context stops new work;
// in-flight fixtures finish.
func (b *BatchScorer) ScoreAll(ctx context.Context, reqs []BatchRequest) []BatchResult {
	out := make([]BatchResult, len(reqs))
	for start := 0; start < len(reqs); start += b.concurrency {
		if ctx.Err() != nil {
			for i := start; i < len(reqs); i++ {
				out[i] = BatchResult{FixtureID: reqs[i].Fixture.FixtureID, Err: ctx.Err()}
			}
			break
		}

		end := start + b.concurrency
		if end > len(reqs) {
			end = len(reqs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				out[i] = b.scoreOne(ctx, reqs[i])
			}(i)
		}
		wg.Wait()

		if end < len(reqs) && b.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(b.delay):
			}
		}
	}
	return out
}

func (b *BatchScorer) scoreOne(ctx context.Context, req BatchRequest) BatchResult {
	res := BatchResult{FixtureID: req.Fixture.FixtureID}
	if err := b.waitForSource(ctx); err != nil {
		res.Err = err
		return res
	}
	res.Result, res.Err = b.pred.Predict(ctx, req.Fixture, req.Odds)
	if res.Err != nil {
		b.log.Warn("fixture skipped in batch",
			logger.String("fixture", req.Fixture.FixtureID),
			logger.Error(res.Err),
		)
	}
	return res
}

// waitForSource blocks until the shared source budget allows another call.
func (b *BatchScorer) waitForSource(ctx context.Context) error {
	if b.sourceRPS <= 0 {
		return nil
	}
	for !b.limiter.Allow("source", b.sourceRPS, b.sourceRPS) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}
	return nil
}
