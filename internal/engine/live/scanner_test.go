package live

import (
	"context"
	"strconv"
	"testing"
	"time"

	"OddsEngine/internal/domain/models"
	"OddsEngine/internal/repository"
	"OddsEngine/pkg/logger"
)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewScanner(DefaultConfig(), repository.NewMemoryDedupStore(), log)
}

func pressureTick(minute int) *models.LiveStats {
	return &models.LiveStats{
		FixtureID: "fx-9",
		Minute:    minute,
		Home: models.TeamLiveStats{
			ShotsOnTarget: 6, ShotsTotal: 11, Possession: 0.58, Corners: 3,
		},
		Away: models.TeamLiveStats{
			ShotsOnTarget: 1, ShotsTotal: 3, Possession: 0.42, Corners: 1,
		},
		Timestamp: time.Now(),
	}
}

func TestScanMergesAgreeingSignals(t *testing.T) {
	s := newTestScanner(t)
	ops, err := s.Scan(context.Background(), pressureTick(20))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	// Shot pressure and possession dominance both point at the home side of
	// the match-result market, so they must come back as one opportunity.
	var matchResult []models.LiveOpportunity
	for _, op := range ops {
		if op.Market.Type == models.MarketMatchResult {
			matchResult = append(matchResult, op)
		}
	}
	if len(matchResult) != 1 {
		t.Fatalf("want 1 merged match-result opportunity, got %d (%v)", len(matchResult), matchResult)
	}

	op := matchResult[0]
	if op.Pick != models.PickHome {
		t.Fatalf("pick = %s, want home", op.Pick)
	}
	if op.Type != models.SignalShotPressure {
		t.Fatalf("primary signal = %s, want shot_pressure", op.Type)
	}
	if op.Urgency != models.UrgencyHigh {
		t.Fatalf("urgency = %s, want high for merged signals at minute 20", op.Urgency)
	}
}

func TestScanCooldownSuppressesRepeat(t *testing.T) {
	s := newTestScanner(t)
	ctx := context.Background()

	first, err := s.Scan(ctx, pressureTick(20))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("first tick should emit")
	}

	again, err := s.Scan(ctx, pressureTick(24))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, op := range again {
		if op.Type == models.SignalShotPressure {
			t.Fatal("shot pressure re-emitted inside the cooldown window")
		}
	}
}

func TestScanRefiresAfterScoreChange(t *testing.T) {
	s := newTestScanner(t)
	ctx := context.Background()

	if _, err := s.Scan(ctx, pressureTick(20)); err != nil {
		t.Fatalf("scan: %v", err)
	}

	// A goal changes the fingerprint, so the same signal may fire again.
	scored := pressureTick(30)
	scored.Home.Goals = 1
	ops, err := s.Scan(ctx, scored)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	found := false
	for _, op := range ops {
		if op.Type == models.SignalShotPressure {
			found = true
		}
	}
	if !found {
		t.Fatal("expected shot pressure to re-fire after the score moved")
	}
}

func TestScanGatesEarlyMinutes(t *testing.T) {
	s := newTestScanner(t)
	ops, err := s.Scan(context.Background(), pressureTick(10))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("minute 10 should emit nothing, got %v", ops)
	}
}

func TestScanRejectsInvalidTick(t *testing.T) {
	s := newTestScanner(t)
	bad := pressureTick(20)
	bad.FixtureID = ""
	if _, err := s.Scan(context.Background(), bad); err == nil {
		t.Fatal("empty fixture id should be rejected")
	}
}

func TestMomentumSwingNeedsPreviousTick(t *testing.T) {
	s := newTestScanner(t)
	ctx := context.Background()

	quiet := &models.LiveStats{
		FixtureID: "fx-m", Minute: 30,
		Home:      models.TeamLiveStats{ShotsTotal: 2, Possession: 0.5},
		Away:      models.TeamLiveStats{ShotsTotal: 2, Possession: 0.5},
		Timestamp: time.Now(),
	}
	ops, err := s.Scan(ctx, quiet)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("first quiet tick should emit nothing, got %v", ops)
	}

	surge := &models.LiveStats{
		FixtureID: "fx-m", Minute: 35,
		Home:      models.TeamLiveStats{ShotsTotal: 7, Possession: 0.5},
		Away:      models.TeamLiveStats{ShotsTotal: 2, Possession: 0.5},
		Timestamp: time.Now(),
	}
	ops, err = s.Scan(ctx, surge)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	found := false
	for _, op := range ops {
		if op.Type == models.SignalMomentumSwing && op.Pick == models.PickHome {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a home momentum swing, got %v", ops)
	}
}

func TestScanEvictsStaleFixtureState(t *testing.T) {
	s := newTestScanner(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	for i := 0; i < 1100; i++ {
		tick := pressureTick(20)
		tick.FixtureID = "fx-old-" + strconv.Itoa(i)
		if _, err := s.Scan(ctx, tick); err != nil {
			t.Fatalf("scan: %v", err)
		}
	}

	// Hours later every one of those matches is over; the next tick must
	// sweep their per-fixture state away.
	s.now = func() time.Time { return base.Add(3 * time.Hour) }
	if _, err := s.Scan(ctx, pressureTick(20)); err != nil {
		t.Fatalf("scan: %v", err)
	}

	s.mu.Lock()
	kept := len(s.prev)
	s.mu.Unlock()
	if kept != 1 {
		t.Fatalf("retained %d fixture states, want only the live one", kept)
	}
}

func TestRedCardIsCritical(t *testing.T) {
	s := newTestScanner(t)
	tick := &models.LiveStats{
		FixtureID: "fx-r", Minute: 40,
		Home:      models.TeamLiveStats{YellowCards: 2, RedCards: 1, Possession: 0.5},
		Away:      models.TeamLiveStats{Possession: 0.5},
		Timestamp: time.Now(),
	}
	ops, err := s.Scan(context.Background(), tick)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var agg *models.LiveOpportunity
	for i := range ops {
		if ops[i].Type == models.SignalAggressiveness {
			agg = &ops[i]
		}
	}
	if agg == nil {
		t.Fatalf("expected an aggressiveness signal, got %v", ops)
	}
	if agg.Pick != models.PickAway {
		t.Fatalf("pick = %s, want away against the carded side", agg.Pick)
	}
	if agg.Urgency != models.UrgencyCritical {
		t.Fatalf("urgency = %s, want critical after a red card", agg.Urgency)
	}
}
