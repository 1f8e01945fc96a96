package models

import "time"

// MarketProbability is the calibrated probability for one outcome of a
// market. Probabilities across a market's outcome set sum to 1.
type MarketProbability struct {
	Probability   float64 `json:"probability"`               // [0,1]
	Confidence    float64 `json:"confidence"`                // [0,100]
	BookmakerOdds float64 `json:"bookmaker_odds,omitempty"`  // > 1 when quoted
	FairOdds      float64 `json:"fair_odds,omitempty"`       // 1/implied, > 1
}

// MarketPrediction is the ensemble output for one market of a fixture.
// Pick is nil when no outcome clears the confidence threshold; callers must
// treat that as a legitimate non-error result.
type MarketPrediction struct {
	Market        Market                 `json:"market"`
	Outcomes      map[Pick]MarketProbability `json:"outcomes"`
	Pick          *Pick                  `json:"pick,omitempty"`
	Confidence    float64                `json:"confidence"`
	LowConfidence bool                   `json:"low_confidence,omitempty"`
	Reasoning     []string               `json:"reasoning,omitempty"`
}

// StakeLevel is the coarse stake suggestion attached to a bet.
type StakeLevel string

const (
	StakeLow    StakeLevel = "low"
	StakeMedium StakeLevel = "medium"
	StakeHigh   StakeLevel = "high"
)

// BetSuggestion is an immutable value-bet recommendation.
type BetSuggestion struct {
	FixtureID   string     `json:"fixture_id"`
	Market      Market     `json:"market"`
	Pick        Pick       `json:"pick"`
	Probability float64    `json:"probability"`
	Confidence  float64    `json:"confidence"`
	Edge        float64    `json:"edge"` // percent vs implied probability
	Odds        float64    `json:"odds"`
	Stake       StakeLevel `json:"stake"`
	Reasoning   []string   `json:"reasoning"`
}

// Scoreline is one exact-score cell of the Poisson grid.
type Scoreline struct {
	Home        int     `json:"home"`
	Away        int     `json:"away"`
	Probability float64 `json:"probability"`
}

// PredictionResult is the per-fixture bundle handed to presentation layers.
type PredictionResult struct {
	FixtureID         string             `json:"fixture_id"`
	GeneratedAt       time.Time          `json:"generated_at"`
	Factors           PredictionFactors  `json:"factors"`
	ExpectedHomeGoals float64            `json:"expected_home_goals"`
	ExpectedAwayGoals float64            `json:"expected_away_goals"`
	Markets           []MarketPrediction `json:"markets"`
	TopScorelines     []Scoreline        `json:"top_scorelines"`
	BestBet           *BetSuggestion     `json:"best_bet,omitempty"`
	ValueBets         []BetSuggestion    `json:"value_bets,omitempty"`
	OverallConfidence float64            `json:"overall_confidence"`
}

// RiskLevel classifies a Kelly stake suggestion.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// KellyResult is a purely derived stake suggestion; recomputed on every call,
// never persisted.
type KellyResult struct {
	FullKelly       float64   `json:"full_kelly"` // fraction of bankroll, [0,1]
	SuggestedAmount float64   `json:"suggested_amount"`
	Edge            float64   `json:"edge"` // percent
	ExpectedValue   float64   `json:"expected_value"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Warnings        []string  `json:"warnings,omitempty"`
}

// SystemType identifies a coupon betting system.
type SystemType string

const (
	SystemSingle SystemType = "single"
	SystemFull   SystemType = "full"
	System2of3   SystemType = "2/3"
	System3of4   SystemType = "3/4"
	System2of4   SystemType = "2/4"
)

// Selection is one leg of a coupon.
type Selection struct {
	FixtureID string  `json:"fixture_id"`
	Odds      float64 `json:"odds"`
	Won       *bool   `json:"won,omitempty"` // set at settlement time
}

// CouponSystemResult summarizes a combination bet.
type CouponSystemResult struct {
	System              SystemType `json:"system"`
	TotalCombinations   int        `json:"total_combinations"`
	StakePerCombination float64    `json:"stake_per_combination"`
	TotalStake          float64    `json:"total_stake"`
	PotentialWin        float64    `json:"potential_win"`
}
