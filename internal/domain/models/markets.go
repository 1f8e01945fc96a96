package models

import "fmt"

// MarketType identifies a betting market family.
type MarketType string

const (
	MarketMatchResult    MarketType = "match_result"
	MarketOverUnder      MarketType = "over_under"
	MarketBTTS           MarketType = "btts"
	MarketDoubleChance   MarketType = "double_chance"
	MarketHalfTimeResult MarketType = "half_time_result"
	MarketGoalRange      MarketType = "goal_range"
)

// Pick identifies an outcome within a market.
type Pick string

const (
	PickHome  Pick = "1"
	PickDraw  Pick = "X"
	PickAway  Pick = "2"
	PickOver  Pick = "over"
	PickUnder Pick = "under"
	PickYes   Pick = "yes"
	PickNo    Pick = "no"
	Pick1X    Pick = "1X"
	PickX2    Pick = "X2"
	Pick12    Pick = "12"
	PickIn    Pick = "in"
	PickOut   Pick = "out"
)

// Market is a tagged union of market types with structured parameters.
// Settlement works off the parameters, never off free-text pick labels.
type Market struct {
	Type     MarketType `json:"type"`
	Line     float64    `json:"line,omitempty"`      // over_under: 0.5, 1.5, 2.5 ...
	MinGoals int        `json:"min_goals,omitempty"` // goal_range
	MaxGoals int        `json:"max_goals,omitempty"` // goal_range
}

// MatchResult builds the 1X2 market.
func MatchResult() Market { return Market{Type: MarketMatchResult} }

// OverUnder builds a total-goals market at the given line.
func OverUnder(line float64) Market { return Market{Type: MarketOverUnder, Line: line} }

// BTTS builds the both-teams-to-score market.
func BTTS() Market { return Market{Type: MarketBTTS} }

// DoubleChance builds the double-chance market.
func DoubleChance() Market { return Market{Type: MarketDoubleChance} }

// HalfTimeResult builds the half-time 1X2 market.
func HalfTimeResult() Market { return Market{Type: MarketHalfTimeResult} }

// GoalRange builds an inclusive total-goals band market.
func GoalRange(min, max int) Market {
	return Market{Type: MarketGoalRange, MinGoals: min, MaxGoals: max}
}

// Key returns a stable identifier usable as a map or fingerprint key.
func (m Market) Key() string {
	switch m.Type {
	case MarketOverUnder:
		return fmt.Sprintf("%s_%.1f", m.Type, m.Line)
	case MarketGoalRange:
		return fmt.Sprintf("%s_%d_%d", m.Type, m.MinGoals, m.MaxGoals)
	default:
		return string(m.Type)
	}
}

// Picks returns the mutually-exclusive-and-exhaustive outcome set of the
// market.
func (m Market) Picks() []Pick {
	switch m.Type {
	case MarketMatchResult, MarketHalfTimeResult:
		return []Pick{PickHome, PickDraw, PickAway}
	case MarketOverUnder:
		return []Pick{PickOver, PickUnder}
	case MarketBTTS:
		return []Pick{PickYes, PickNo}
	case MarketDoubleChance:
		return []Pick{Pick1X, PickX2, Pick12}
	case MarketGoalRange:
		return []Pick{PickIn, PickOut}
	default:
		return nil
	}
}

// Score is a match score state used for settlement.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Settle evaluates whether the pick won given full-time and half-time
// scores. Double chance settles as won when either covered outcome occurs.
func (m Market) Settle(pick Pick, fullTime, halfTime Score) (bool, error) {
	switch m.Type {
	case MarketMatchResult:
		return settle1X2(pick, fullTime)
	case MarketHalfTimeResult:
		return settle1X2(pick, halfTime)
	case MarketOverUnder:
		total := float64(fullTime.Home + fullTime.Away)
		switch pick {
		case PickOver:
			return total > m.Line, nil
		case PickUnder:
			return total < m.Line, nil
		}
	case MarketBTTS:
		both := fullTime.Home > 0 && fullTime.Away > 0
		switch pick {
		case PickYes:
			return both, nil
		case PickNo:
			return !both, nil
		}
	case MarketDoubleChance:
		switch pick {
		case Pick1X:
			return fullTime.Home >= fullTime.Away, nil
		case PickX2:
			return fullTime.Away >= fullTime.Home, nil
		case Pick12:
			return fullTime.Home != fullTime.Away, nil
		}
	case MarketGoalRange:
		total := fullTime.Home + fullTime.Away
		in := total >= m.MinGoals && total <= m.MaxGoals
		switch pick {
		case PickIn:
			return in, nil
		case PickOut:
			return !in, nil
		}
	}
	return false, fmt.Errorf("pick %q not valid for market %s", pick, m.Key())
}

func settle1X2(pick Pick, s Score) (bool, error) {
	switch pick {
	case PickHome:
		return s.Home > s.Away, nil
	case PickDraw:
		return s.Home == s.Away, nil
	case PickAway:
		return s.Away > s.Home, nil
	}
	return false, fmt.Errorf("pick %q not valid for 1X2", pick)
}

// MarketOdds is one market's bookmaker prices keyed by outcome.
type MarketOdds struct {
	Market Market           `json:"market"`
	Prices map[Pick]float64 `json:"prices"`
}

// OddsSnapshot is the bookmaker's quoted odds for one fixture at one moment.
type OddsSnapshot struct {
	FixtureID string       `json:"fixture_id"`
	Bookmaker string       `json:"bookmaker,omitempty"`
	Markets   []MarketOdds `json:"markets"`
}

// Find returns the odds for a market, if quoted.
func (s *OddsSnapshot) Find(m Market) (MarketOdds, bool) {
	for _, mo := range s.Markets {
		if mo.Market.Key() == m.Key() {
			return mo, true
		}
	}
	return MarketOdds{}, false
}
