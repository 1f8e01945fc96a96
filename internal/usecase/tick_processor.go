package usecase

import (
	"context"
	"fmt"
	"time"

	"OddsEngine/internal/domain/models"
	domrepo "OddsEngine/internal/domain/repository"
	"OddsEngine/internal/engine/live"
	"OddsEngine/pkg/logger"
)

// TickProcessor runs the live scanner on each tick and routes detected
// opportunities to the publisher and the history store.
type TickProcessor struct {
	scanner *live.Scanner
	pub     domrepo.OpportunityPublisher
	history domrepo.HistoryStore
	metrics domrepo.Metrics
	log     *logger.Logger
}

// NewTickProcessor creates a TickProcessor. Publisher and history store are
// optional.
func NewTickProcessor(
	scanner *live.Scanner,
	pub domrepo.OpportunityPublisher,
	history domrepo.HistoryStore,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *TickProcessor {
	return &TickProcessor{
		scanner: scanner,
		pub:     pub,
		history: history,
		metrics: metrics,
		log:     log,
	}
}

// Process scans one tick. Publishing failure is an error so the pipeline
// can buffer and retry the tick; history failure is only logged.
func (p *TickProcessor) Process(ctx context.Context, t *models.LiveStats) error {
	start := time.Now()
	ops, err := p.scanner.Scan(ctx, t)
	if err != nil {
		p.metrics.RecordError("scan")
		return fmt.Errorf("scan tick: %w", err)
	}

	for i := range ops {
		op := &ops[i]
		p.metrics.RecordOpportunity(string(op.Type), string(op.Urgency))

		if p.pub != nil {
			if err := p.pub.Publish(ctx, op); err != nil {
				p.metrics.RecordError("publish")
				return fmt.Errorf("publish opportunity: %w", err)
			}
		}
		if p.history != nil {
			if err := p.history.StoreOpportunity(ctx, op); err != nil {
				p.metrics.RecordError("history_store")
				p.log.Warn("opportunity not persisted",
					logger.String("fixture", op.FixtureID),
					logger.Error(err),
				)
			}
		}
	}

	p.metrics.RecordLatency("tick_process", time.Since(start).Seconds())
	return nil
}

// Close releases the downstream resources.
func (p *TickProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.history != nil {
		_ = p.history.Close()
	}
}
