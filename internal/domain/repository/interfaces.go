package repository

import (
	"context"
	"time"

	"OddsEngine/internal/domain/models"
)

// LiveStream is a source of in-play statistics ticks.
type LiveStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.LiveStats, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// OpportunityPublisher pushes detected live opportunities downstream.
type OpportunityPublisher interface {
	Publish(ctx context.Context, o *models.LiveOpportunity) error
	Close() error
}

// HistoryStore persists engine output for later calibration queries.
type HistoryStore interface {
	Init(ctx context.Context) error
	StorePrediction(ctx context.Context, r *models.PredictionResult) error
	StoreOpportunity(ctx context.Context, o *models.LiveOpportunity) error
	// RecentPredictions returns stored predictions in the window, newest
	// first. Empty fixtureID matches all fixtures.
	RecentPredictions(ctx context.Context, fixtureID string, from, to time.Time, limit int) ([]models.PredictionResult, error)
	// RecentOpportunities returns stored live opportunities in the window,
	// newest first. Empty fixtureID matches all fixtures.
	RecentOpportunities(ctx context.Context, fixtureID string, from, to time.Time, limit int) ([]models.OpportunityRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// DedupStore remembers emitted live-opportunity fingerprints for the
// cooldown window.
type DedupStore interface {
	// Seen reports whether the fingerprint was emitted within the cooldown
	// and records it when it was not.
	Seen(ctx context.Context, fingerprint string, cooldown time.Duration) (bool, error)
}

// LedgerStore owns the bankroll. Implementations must serialize mutation;
// callers never reach into balances directly.
type LedgerStore interface {
	PlaceBet(ctx context.Context, bet *models.Bet) error
	SettleBet(ctx context.Context, betID string, fullTime, halfTime models.Score) (*models.Bet, error)
	VoidBet(ctx context.Context, betID string) (*models.Bet, error)
	Deposit(ctx context.Context, amount float64) error
	Withdraw(ctx context.Context, amount float64) error
	Snapshot(ctx context.Context) (models.LedgerSnapshot, error)
	Balance(ctx context.Context) (float64, error)
}

// Metrics is the engine's instrumentation seam.
type Metrics interface {
	RecordPrediction(market string)
	RecordValueBet(tier string)
	RecordOpportunity(signal, urgency string)
	RecordError(kind string)
	RecordBankroll(balance float64)
	RecordLatency(op string, seconds float64)
}
