package models

import (
	"fmt"
	"time"
)

// TeamLiveStats is one side of an in-play statistics snapshot.
type TeamLiveStats struct {
	Goals         int     `json:"goals"`
	ShotsOnTarget int     `json:"shots_on_target"`
	ShotsTotal    int     `json:"shots_total"`
	Possession    float64 `json:"possession"` // share, 0..1
	Corners       int     `json:"corners"`
	Fouls         int     `json:"fouls"`
	YellowCards   int     `json:"yellow_cards"`
	RedCards      int     `json:"red_cards"`
}

// LiveStats is the in-play snapshot for one fixture at one polling tick.
type LiveStats struct {
	FixtureID string        `json:"fixture_id"`
	Minute    int           `json:"minute"`
	Home      TeamLiveStats `json:"home"`
	Away      TeamLiveStats `json:"away"`
	Timestamp time.Time     `json:"timestamp"`
}

// Validate rejects malformed ticks.
func (s *LiveStats) Validate() error {
	if s.FixtureID == "" {
		return &InvalidInputError{Field: "fixture_id", Reason: "empty"}
	}
	if s.Minute < 0 || s.Minute > 130 {
		return &InvalidInputError{Field: "minute", Reason: "out of range"}
	}
	if s.Home.Goals < 0 || s.Away.Goals < 0 {
		return &InvalidInputError{Field: "goals", Reason: "negative"}
	}
	return nil
}

// SignalType names a live detector.
type SignalType string

const (
	SignalShotPressure        SignalType = "shot_pressure"
	SignalPossessionDominance SignalType = "possession_dominance"
	SignalAggressiveness      SignalType = "aggressiveness"
	SignalCornerPressure      SignalType = "corner_pressure"
	SignalMomentumSwing       SignalType = "momentum_swing"
	SignalGoalExpectancy      SignalType = "goal_expectancy"
)

// Urgency tiers a live opportunity by time sensitivity.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
)

// LiveOpportunity is an in-play betting signal. A later tick supersedes an
// earlier one for the same fixture; instances are never mutated.
type LiveOpportunity struct {
	FixtureID     string     `json:"fixture_id"`
	Minute        int        `json:"minute"`
	Type          SignalType `json:"type"`
	Market        Market     `json:"market"`
	Pick          Pick       `json:"pick"`
	EstimatedOdds float64    `json:"estimated_odds"`
	Confidence    float64    `json:"confidence"`
	Urgency       Urgency    `json:"urgency"`
	Reasoning     string     `json:"reasoning"`
	DetectedAt    time.Time  `json:"detected_at"`
}

// Fingerprint keys dedup state: fixture + signal type + score state. A goal
// changes the fingerprint, so the same signal may legitimately re-fire after
// the score moves.
func (o *LiveOpportunity) Fingerprint(score Score) string {
	return fmt.Sprintf("%s:%s:%d-%d", o.FixtureID, o.Type, score.Home, score.Away)
}

// OpportunityRecord is the flat readback row for stored opportunities.
// The market comes back as its stored key; it is display data, never
// re-parsed into a Market.
type OpportunityRecord struct {
	DetectedAt time.Time  `json:"detected_at"`
	FixtureID  string     `json:"fixture_id"`
	Minute     int        `json:"minute"`
	Type       SignalType `json:"type"`
	MarketKey  string     `json:"market"`
	Pick       Pick       `json:"pick"`
	Confidence float64    `json:"confidence"`
	Urgency    Urgency    `json:"urgency"`
	Reasoning  string     `json:"reasoning"`
}
