// Package bankroll owns the betting ledger. All mutation goes through
// PlaceBet, SettleBet, Deposit, and Withdraw under a single writer lock;
// nothing else touches the balance.
package bankroll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"OddsEngine/internal/domain/models"
	"OddsEngine/pkg/logger"
	"OddsEngine/pkg/util"
)

// Config bounds the ledger's exposure.
type Config struct {
	InitialBalance float64
	// DailyStakeCap limits the total stake placed per calendar day;
	// 0 disables the cap.
	DailyStakeCap float64
	// MaxOpenBets limits concurrent open positions; 0 disables the limit.
	MaxOpenBets int
}

// Ledger is the in-memory LedgerStore. State lives for the process; the
// history store keeps the durable record.
type Ledger struct {
	mu  sync.Mutex
	cfg Config
	log *logger.Logger

	balance   float64
	bets      map[string]*models.Bet
	stakedOn  map[string]float64 // yyyy-mm-dd -> total stake
	total     float64
	returns   float64
	seq       int
	now       func() time.Time
}

// New creates a Ledger funded with the configured initial balance.
func New(cfg Config, log *logger.Logger) *Ledger {
	return &Ledger{
		cfg:      cfg,
		log:      log,
		balance:  cfg.InitialBalance,
		bets:     make(map[string]*models.Bet),
		stakedOn: make(map[string]float64),
		now:      time.Now,
	}
}

// PlaceBet debits the stake and opens the position. The bet's ID is
// assigned here; callers read it back from the passed struct.
func (l *Ledger) PlaceBet(_ context.Context, bet *models.Bet) error {
	if bet == nil {
		return fmt.Errorf("no bet supplied")
	}
	if bet.Stake <= 0 {
		return fmt.Errorf("stake must be positive, got %v", bet.Stake)
	}
	if bet.Odds <= 1 {
		return fmt.Errorf("odds must exceed 1, got %v", bet.Odds)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if bet.Stake > l.balance {
		return fmt.Errorf("stake %v exceeds balance %v", bet.Stake, l.balance)
	}
	if l.cfg.MaxOpenBets > 0 && l.openCount() >= l.cfg.MaxOpenBets {
		return fmt.Errorf("open bet limit of %d reached", l.cfg.MaxOpenBets)
	}
	day := util.DayKey(l.now())
	if l.cfg.DailyStakeCap > 0 && l.stakedOn[day]+bet.Stake > l.cfg.DailyStakeCap {
		return fmt.Errorf("daily stake cap of %v reached", l.cfg.DailyStakeCap)
	}

	l.seq++
	bet.ID = fmt.Sprintf("bet-%d", l.seq)
	bet.Status = models.BetOpen
	bet.PlacedAt = l.now()
	bet.Payout = 0

	l.balance -= bet.Stake
	l.stakedOn[day] += bet.Stake
	l.total += bet.Stake
	l.bets[bet.ID] = bet

	l.log.Info("bet placed",
		logger.String("bet", bet.ID),
		logger.String("fixture", bet.FixtureID),
		logger.String("pick", string(bet.Pick)),
		logger.Float64("stake", bet.Stake),
		logger.Float64("balance", l.balance),
	)
	return nil
}

// SettleBet resolves an open bet against the final scores. Winning bets
// credit stake times odds; a void bet refunds the stake.
func (l *Ledger) SettleBet(_ context.Context, betID string, fullTime, halfTime models.Score) (*models.Bet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bet, ok := l.bets[betID]
	if !ok {
		return nil, fmt.Errorf("unknown bet %q", betID)
	}
	if bet.Status != models.BetOpen {
		return nil, fmt.Errorf("bet %q already settled as %s", betID, bet.Status)
	}

	won, err := bet.Market.Settle(bet.Pick, fullTime, halfTime)
	if err != nil {
		return nil, err
	}

	bet.SettledAt = l.now()
	if won {
		bet.Status = models.BetWon
		bet.Payout = bet.Stake * bet.Odds
		l.balance += bet.Payout
		l.returns += bet.Payout
	} else {
		bet.Status = models.BetLost
	}

	l.log.Info("bet settled",
		logger.String("bet", bet.ID),
		logger.String("status", string(bet.Status)),
		logger.Float64("payout", bet.Payout),
		logger.Float64("balance", l.balance),
	)
	out := *bet
	return &out, nil
}

// VoidBet refunds an open bet's stake, for abandoned fixtures.
func (l *Ledger) VoidBet(_ context.Context, betID string) (*models.Bet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bet, ok := l.bets[betID]
	if !ok {
		return nil, fmt.Errorf("unknown bet %q", betID)
	}
	if bet.Status != models.BetOpen {
		return nil, fmt.Errorf("bet %q already settled as %s", betID, bet.Status)
	}

	bet.Status = models.BetVoid
	bet.SettledAt = l.now()
	bet.Payout = bet.Stake
	l.balance += bet.Stake
	l.returns += bet.Stake

	out := *bet
	return &out, nil
}

// Deposit credits the bankroll.
func (l *Ledger) Deposit(_ context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit must be positive, got %v", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance += amount
	return nil
}

// Withdraw debits the bankroll; stakes tied up in open bets cannot be
// withdrawn.
func (l *Ledger) Withdraw(_ context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("withdrawal must be positive, got %v", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount > l.balance {
		return fmt.Errorf("withdrawal %v exceeds balance %v", amount, l.balance)
	}
	l.balance -= amount
	return nil
}

// Snapshot returns a consistent view of the ledger.
func (l *Ledger) Snapshot(_ context.Context) (models.LedgerSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := models.LedgerSnapshot{
		Balance:      l.balance,
		StakedToday:  l.stakedOn[util.DayKey(l.now())],
		TotalStaked:  l.total,
		TotalReturns: l.returns,
		BetCount:     len(l.bets),
	}
	for _, b := range l.bets {
		if b.Status == models.BetOpen {
			snap.OpenBets++
			snap.OpenStake += b.Stake
		}
	}
	return snap, nil
}

// Balance returns the free balance.
func (l *Ledger) Balance(_ context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}

// openCount is called with the lock held.
func (l *Ledger) openCount() int {
	n := 0
	for _, b := range l.bets {
		if b.Status == models.BetOpen {
			n++
		}
	}
	return n
}
