package bankroll

import (
	"context"
	"math"
	"sync"
	"testing"

	"OddsEngine/internal/domain/models"
	"OddsEngine/pkg/logger"
)

func newTestLedger(t *testing.T, cfg Config) *Ledger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(cfg, log)
}

func homeBet(stake, odds float64) *models.Bet {
	return &models.Bet{
		FixtureID: "fx-1",
		Market:    models.MatchResult(),
		Pick:      models.PickHome,
		Odds:      odds,
		Stake:     stake,
	}
}

func TestPlaceAndSettleWinningBet(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 1000})
	ctx := context.Background()

	bet := homeBet(50, 2.1)
	if err := l.PlaceBet(ctx, bet); err != nil {
		t.Fatalf("place: %v", err)
	}
	if bet.ID == "" || bet.Status != models.BetOpen {
		t.Fatalf("bet not opened: %+v", bet)
	}
	if bal, _ := l.Balance(ctx); math.Abs(bal-950) > 1e-9 {
		t.Fatalf("balance after stake = %v, want 950", bal)
	}

	settled, err := l.SettleBet(ctx, bet.ID, models.Score{Home: 2, Away: 0}, models.Score{Home: 1, Away: 0})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Status != models.BetWon {
		t.Fatalf("status = %s, want won", settled.Status)
	}
	if math.Abs(settled.Payout-105) > 1e-9 {
		t.Fatalf("payout = %v, want 105", settled.Payout)
	}
	if bal, _ := l.Balance(ctx); math.Abs(bal-1055) > 1e-9 {
		t.Fatalf("final balance = %v, want 1055", bal)
	}
}

func TestLosingBetPaysNothing(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 100})
	ctx := context.Background()

	bet := homeBet(20, 3.0)
	if err := l.PlaceBet(ctx, bet); err != nil {
		t.Fatalf("place: %v", err)
	}
	settled, err := l.SettleBet(ctx, bet.ID, models.Score{Home: 0, Away: 1}, models.Score{})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Status != models.BetLost || settled.Payout != 0 {
		t.Fatalf("got %s payout %v, want lost with 0", settled.Status, settled.Payout)
	}
	if bal, _ := l.Balance(ctx); math.Abs(bal-80) > 1e-9 {
		t.Fatalf("balance = %v, want 80", bal)
	}
}

func TestDoubleSettlementRejected(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 100})
	ctx := context.Background()
	bet := homeBet(10, 2.0)
	if err := l.PlaceBet(ctx, bet); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := l.SettleBet(ctx, bet.ID, models.Score{Home: 1}, models.Score{}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := l.SettleBet(ctx, bet.ID, models.Score{Home: 1}, models.Score{}); err == nil {
		t.Fatal("second settlement should be rejected")
	}
}

func TestInsufficientBalanceRejected(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 30})
	if err := l.PlaceBet(context.Background(), homeBet(50, 2.0)); err == nil {
		t.Fatal("stake above balance should be rejected")
	}
}

func TestDailyStakeCap(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 1000, DailyStakeCap: 60})
	ctx := context.Background()
	if err := l.PlaceBet(ctx, homeBet(40, 2.0)); err != nil {
		t.Fatalf("first bet: %v", err)
	}
	if err := l.PlaceBet(ctx, homeBet(30, 2.0)); err == nil {
		t.Fatal("bet breaking the daily cap should be rejected")
	}
	if err := l.PlaceBet(ctx, homeBet(20, 2.0)); err != nil {
		t.Fatalf("bet inside the cap: %v", err)
	}
}

func TestMaxOpenBets(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 1000, MaxOpenBets: 2})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := l.PlaceBet(ctx, homeBet(10, 2.0)); err != nil {
			t.Fatalf("bet %d: %v", i, err)
		}
	}
	if err := l.PlaceBet(ctx, homeBet(10, 2.0)); err == nil {
		t.Fatal("third open bet should be rejected")
	}
}

func TestVoidRefundsStake(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 100})
	ctx := context.Background()
	bet := homeBet(25, 2.0)
	if err := l.PlaceBet(ctx, bet); err != nil {
		t.Fatalf("place: %v", err)
	}
	voided, err := l.VoidBet(ctx, bet.ID)
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != models.BetVoid {
		t.Fatalf("status = %s, want void", voided.Status)
	}
	if bal, _ := l.Balance(ctx); math.Abs(bal-100) > 1e-9 {
		t.Fatalf("balance = %v, want full refund to 100", bal)
	}
}

func TestDepositWithdraw(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 100})
	ctx := context.Background()
	if err := l.Deposit(ctx, 50); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := l.Withdraw(ctx, 120); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := l.Withdraw(ctx, 40); err == nil {
		t.Fatal("overdraw should be rejected")
	}
	if bal, _ := l.Balance(ctx); math.Abs(bal-30) > 1e-9 {
		t.Fatalf("balance = %v, want 30", bal)
	}
}

func TestSnapshotCountsOpenPositions(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 500})
	ctx := context.Background()

	a := homeBet(40, 2.0)
	b := homeBet(60, 3.0)
	if err := l.PlaceBet(ctx, a); err != nil {
		t.Fatalf("place a: %v", err)
	}
	if err := l.PlaceBet(ctx, b); err != nil {
		t.Fatalf("place b: %v", err)
	}
	if _, err := l.SettleBet(ctx, a.ID, models.Score{Home: 1}, models.Score{}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	snap, err := l.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.OpenBets != 1 || math.Abs(snap.OpenStake-60) > 1e-9 {
		t.Fatalf("open = %d/%v, want 1/60", snap.OpenBets, snap.OpenStake)
	}
	if math.Abs(snap.TotalStaked-100) > 1e-9 {
		t.Fatalf("total staked = %v, want 100", snap.TotalStaked)
	}
	if snap.BetCount != 2 {
		t.Fatalf("bet count = %d, want 2", snap.BetCount)
	}
}

func TestConcurrentPlacementStaysConsistent(t *testing.T) {
	l := newTestLedger(t, Config{InitialBalance: 1000})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.PlaceBet(ctx, homeBet(10, 2.0))
		}()
	}
	wg.Wait()

	snap, _ := l.Snapshot(ctx)
	if bal, _ := l.Balance(ctx); math.Abs(bal+snap.OpenStake-1000) > 1e-9 {
		t.Fatalf("balance %v + open stake %v should equal 1000", bal, snap.OpenStake)
	}
}
