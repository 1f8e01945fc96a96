// Package live turns in-play statistics ticks into betting signals.
//
// Every detector is evaluated on each tick; findings that point at the same
// market and pick merge into one opportunity, and a fingerprint cooldown
// stops the same signal from re-firing while the score stands.
package live

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"OddsEngine/internal/domain/models"
	"OddsEngine/internal/domain/repository"
	"OddsEngine/pkg/logger"
)

// Config carries the detector thresholds.
type Config struct {
	// MinMinute suppresses all signals before the match settles down.
	MinMinute int
	// ShotPressureDiff is the on-target shot gap that fires shot pressure.
	ShotPressureDiff int
	// PossessionShare is the ball-control share that fires dominance, 0..1.
	PossessionShare float64
	// AggressionCards is the card-point count that fires aggressiveness
	// (yellow 1, red 2).
	AggressionCards int
	// CornerPressure is the combined corner count that fires pressure.
	CornerPressure int
	// MomentumShots is the inter-tick shot delta that fires a swing.
	MomentumShots int
	// GoalExpectancy is the projected remaining goals that fires an over.
	GoalExpectancy float64
	// DedupeCooldown is how long a fingerprint suppresses re-emission.
	DedupeCooldown time.Duration
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MinMinute:        15,
		ShotPressureDiff: 4,
		PossessionShare:  0.58,
		AggressionCards:  3,
		CornerPressure:   6,
		MomentumShots:    3,
		GoalExpectancy:   1.4,
		DedupeCooldown:   15 * time.Minute,
	}
}

// Scanner evaluates ticks. Safe for concurrent use across fixtures; ticks
// for the same fixture must arrive in order, which the ingest pipeline
// guarantees by partitioning on fixture id.
type Scanner struct {
	cfg   Config
	dedup repository.DedupStore
	log   *logger.Logger
	now   func() time.Time

	mu   sync.Mutex
	prev map[string]prevTick
}

// prevTick remembers a fixture's last stats plus when they were stored, so
// stale fixtures can be evicted after the match is long over.
type prevTick struct {
	stats  *models.LiveStats
	seenAt time.Time
}

// prevStaleAfter is how long a fixture's last tick is kept around for
// momentum comparison. Matches never run this long.
const prevStaleAfter = 2 * time.Hour

// NewScanner creates a Scanner. The dedup store may be memory or Redis
// backed; the scanner does not care.
func NewScanner(cfg Config, dedup repository.DedupStore, log *logger.Logger) *Scanner {
	return &Scanner{
		cfg:   cfg,
		dedup: dedup,
		log:   log,
		now:   time.Now,
		prev:  make(map[string]prevTick),
	}
}

// Scan evaluates one tick and returns the new opportunities it produces,
// strongest first. Distinct market/pick groups each yield their own entry,
// so one tick can surface an over signal and a match-result signal side by
// side; callers that want a single headline take the first element. An
// empty result is the common case, not an error.
func (s *Scanner) Scan(ctx context.Context, tick *models.LiveStats) ([]models.LiveOpportunity, error) {
	if err := tick.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	s.mu.Lock()
	prev := s.prev[tick.FixtureID].stats
	s.prev[tick.FixtureID] = prevTick{stats: tick, seenAt: now}
	// Opportunistic prune so finished fixtures do not accumulate forever.
	if len(s.prev) > 1024 {
		for id, pt := range s.prev {
			if now.Sub(pt.seenAt) >= prevStaleAfter {
				delete(s.prev, id)
			}
		}
	}
	s.mu.Unlock()

	if tick.Minute < s.cfg.MinMinute {
		return nil, nil
	}

	var cands []*candidate
	for _, c := range []*candidate{
		s.shotPressure(tick),
		s.possessionDominance(tick),
		s.aggressiveness(tick),
		s.cornerPressure(tick),
		s.momentumSwing(tick, prev),
		s.goalExpectancy(tick),
	} {
		if c != nil {
			cands = append(cands, c)
		}
	}
	if len(cands) == 0 {
		return nil, nil
	}

	merged := mergeCandidates(cands)
	score := models.Score{Home: tick.Home.Goals, Away: tick.Away.Goals}

	var out []models.LiveOpportunity
	for _, m := range merged {
		op := s.buildOpportunity(tick, m)
		seen, err := s.dedup.Seen(ctx, op.Fingerprint(score), s.cfg.DedupeCooldown)
		if err != nil {
			return nil, err
		}
		if seen {
			continue
		}
		s.log.Info("live opportunity detected",
			logger.String("fixture", op.FixtureID),
			logger.String("signal", string(op.Type)),
			logger.String("pick", string(op.Pick)),
			logger.String("urgency", string(op.Urgency)),
			logger.Int("minute", op.Minute),
		)
		out = append(out, op)
	}
	return out, nil
}

// mergedSignal is a group of candidates agreeing on market and pick.
type mergedSignal struct {
	primary *candidate
	extras  []*candidate
}

// mergeCandidates groups findings by market and pick. The strongest finding
// leads; companions raise confidence and extend the reasoning.
func mergeCandidates(cands []*candidate) []mergedSignal {
	groups := make(map[string]*mergedSignal)
	var order []string
	for _, c := range cands {
		key := c.market.Key() + "|" + string(c.pick)
		g, ok := groups[key]
		if !ok {
			groups[key] = &mergedSignal{primary: c}
			order = append(order, key)
			continue
		}
		if c.confidence > g.primary.confidence {
			g.extras = append(g.extras, g.primary)
			g.primary = c
		} else {
			g.extras = append(g.extras, c)
		}
	}

	out := make([]mergedSignal, 0, len(groups))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].primary.confidence > out[j].primary.confidence
	})
	return out
}

func (s *Scanner) buildOpportunity(tick *models.LiveStats, m mergedSignal) models.LiveOpportunity {
	conf := m.primary.confidence
	reasons := []string{m.primary.reasoning}
	critical := m.primary.critical
	for _, e := range m.extras {
		conf = clampConf(conf + 5)
		reasons = append(reasons, e.reasoning)
		critical = critical || e.critical
	}

	urgency := models.UrgencyMedium
	switch {
	case critical || tick.Minute >= 75:
		urgency = models.UrgencyCritical
	case len(m.extras) > 0 || conf >= 75:
		urgency = models.UrgencyHigh
	}

	return models.LiveOpportunity{
		FixtureID:     tick.FixtureID,
		Minute:        tick.Minute,
		Type:          m.primary.signal,
		Market:        m.primary.market,
		Pick:          m.primary.pick,
		EstimatedOdds: estimatedOdds(conf),
		Confidence:    conf,
		Urgency:       urgency,
		Reasoning:     strings.Join(reasons, "; "),
		DetectedAt:    tick.Timestamp,
	}
}

// estimatedOdds is the fair price for the signal's confidence; bookmaker
// in-play prices will differ, this is only a sanity anchor.
func estimatedOdds(confidence float64) float64 {
	if confidence <= 0 {
		return 0
	}
	return 100 / confidence
}
