package models

import "time"

// BetStatus is the lifecycle state of a placed bet.
type BetStatus string

const (
	BetOpen BetStatus = "open"
	BetWon  BetStatus = "won"
	BetLost BetStatus = "lost"
	BetVoid BetStatus = "void"
)

// Bet is one entry in the bankroll ledger.
type Bet struct {
	ID        string    `json:"id"`
	FixtureID string    `json:"fixture_id"`
	Market    Market    `json:"market"`
	Pick      Pick      `json:"pick"`
	Odds      float64   `json:"odds"`
	Stake     float64   `json:"stake"`
	Status    BetStatus `json:"status"`
	Payout    float64   `json:"payout"`
	PlacedAt  time.Time `json:"placed_at"`
	SettledAt time.Time `json:"settled_at,omitempty"`
}

// LedgerSnapshot is a read-only view of the bankroll state.
type LedgerSnapshot struct {
	Balance      float64 `json:"balance"`
	OpenStake    float64 `json:"open_stake"`
	OpenBets     int     `json:"open_bets"`
	StakedToday  float64 `json:"staked_today"`
	TotalStaked  float64 `json:"total_staked"`
	TotalReturns float64 `json:"total_returns"`
	BetCount     int     `json:"bet_count"`
}
