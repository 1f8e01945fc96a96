package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"OddsEngine/internal/domain/models"
	pkgch "OddsEngine/pkg/clickhouse"
	applogger "OddsEngine/pkg/logger"
)

// ClickHouseHistoryStore persists predictions and live opportunities for
// later calibration queries.
type ClickHouseHistoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

// NewClickHouseHistoryStore wraps an existing ClickHouse client.
func NewClickHouseHistoryStore(ch *pkgch.Client) *ClickHouseHistoryStore {
	return &ClickHouseHistoryStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *ClickHouseHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

var historySchema = []string{
	`CREATE TABLE IF NOT EXISTS predictions (
        generated_at    DateTime,
        fixture_id      String,
        lambda_home     Float64,
        lambda_away     Float64,
        confidence      Float64,
        markets         String,
        value_bets      String
    ) ENGINE = MergeTree()
    ORDER BY (fixture_id, generated_at)`,
	`CREATE TABLE IF NOT EXISTS live_opportunities (
        detected_at     DateTime,
        fixture_id      String,
        minute          Int32,
        signal          String,
        market          String,
        pick            String,
        confidence      Float64,
        urgency         String,
        reasoning       String
    ) ENGINE = MergeTree()
    ORDER BY (fixture_id, detected_at)`,
}

// Init creates the history tables; idempotent.
func (s *ClickHouseHistoryStore) Init(ctx context.Context) error {
	for _, stmt := range historySchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("history schema: %w", err)
		}
	}
	return nil
}

// StorePrediction writes one prediction row. Market and value-bet details
// go in as JSON blobs; the calibration jobs only filter on the scalar
// columns.
func (s *ClickHouseHistoryStore) StorePrediction(ctx context.Context, r *models.PredictionResult) error {
	markets, err := json.Marshal(r.Markets)
	if err != nil {
		return fmt.Errorf("marshal markets: %w", err)
	}
	valueBets, err := json.Marshal(r.ValueBets)
	if err != nil {
		return fmt.Errorf("marshal value bets: %w", err)
	}

	const q = `INSERT INTO predictions
        (generated_at, fixture_id, lambda_home, lambda_away, confidence, markets, value_bets)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		r.GeneratedAt,
		r.FixtureID,
		r.ExpectedHomeGoals,
		r.ExpectedAwayGoals,
		r.OverallConfidence,
		string(markets),
		string(valueBets),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse prediction insert error",
				applogger.String("fixture", r.FixtureID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store prediction: %w", err)
	}
	return nil
}

// StoreOpportunity writes one live-opportunity row.
func (s *ClickHouseHistoryStore) StoreOpportunity(ctx context.Context, o *models.LiveOpportunity) error {
	const q = `INSERT INTO live_opportunities
        (detected_at, fixture_id, minute, signal, market, pick, confidence, urgency, reasoning)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	detectedAt := o.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, q,
		detectedAt,
		o.FixtureID,
		int32(o.Minute),
		string(o.Type),
		o.Market.Key(),
		string(o.Pick),
		o.Confidence,
		string(o.Urgency),
		o.Reasoning,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse opportunity insert error",
				applogger.String("fixture", o.FixtureID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store opportunity: %w", err)
	}
	return nil
}

// RecentPredictions reads stored predictions back out, newest first. The
// JSON blob columns rebuild the market sheet; factors and scorelines are
// not persisted and come back empty.
func (s *ClickHouseHistoryStore) RecentPredictions(ctx context.Context, fixtureID string, from, to time.Time, limit int) ([]models.PredictionResult, error) {
	q := `SELECT generated_at, fixture_id, lambda_home, lambda_away, confidence, markets, value_bets
        FROM predictions
        WHERE generated_at >= ? AND generated_at <= ?`
	args := []any{from, to}
	if fixtureID != "" {
		q += ` AND fixture_id = ?`
		args = append(args, fixtureID)
	}
	q += ` ORDER BY generated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []models.PredictionResult
	for rows.Next() {
		var (
			r         models.PredictionResult
			markets   string
			valueBets string
		)
		if err := rows.Scan(&r.GeneratedAt, &r.FixtureID, &r.ExpectedHomeGoals, &r.ExpectedAwayGoals, &r.OverallConfidence, &markets, &valueBets); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(markets), &r.Markets); err != nil {
			if s.l != nil {
				s.l.Warn("malformed markets blob", applogger.String("fixture", r.FixtureID), applogger.Error(err))
			}
		}
		if valueBets != "" && valueBets != "null" {
			if err := json.Unmarshal([]byte(valueBets), &r.ValueBets); err != nil {
				if s.l != nil {
					s.l.Warn("malformed value bets blob", applogger.String("fixture", r.FixtureID), applogger.Error(err))
				}
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentOpportunities reads stored live opportunities back out, newest
// first.
func (s *ClickHouseHistoryStore) RecentOpportunities(ctx context.Context, fixtureID string, from, to time.Time, limit int) ([]models.OpportunityRecord, error) {
	q := `SELECT detected_at, fixture_id, minute, signal, market, pick, confidence, urgency, reasoning
        FROM live_opportunities
        WHERE detected_at >= ? AND detected_at <= ?`
	args := []any{from, to}
	if fixtureID != "" {
		q += ` AND fixture_id = ?`
		args = append(args, fixtureID)
	}
	q += ` ORDER BY detected_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	var out []models.OpportunityRecord
	for rows.Next() {
		var (
			r      models.OpportunityRecord
			minute int32
		)
		if err := rows.Scan(&r.DetectedAt, &r.FixtureID, &minute, &r.Type, &r.MarketKey, &r.Pick, &r.Confidence, &r.Urgency, &r.Reasoning); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		r.Minute = int(minute)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Health pings the pool.
func (s *ClickHouseHistoryStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the pool.
func (s *ClickHouseHistoryStore) Close() error {
	return s.db.Close()
}
