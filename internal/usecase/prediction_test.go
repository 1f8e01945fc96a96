package usecase

import (
	"context"
	"math"
	"sync"
	"testing"

	"OddsEngine/internal/domain/models"
	"OddsEngine/internal/engine/ensemble"
	"OddsEngine/internal/engine/factors"
	"OddsEngine/internal/engine/poisson"
	"OddsEngine/internal/engine/value"
	"OddsEngine/pkg/logger"
)

// stubMetrics counts recorder calls without touching Prometheus.
type stubMetrics struct {
	mu            sync.Mutex
	predictions   int
	valueBets     int
	opportunities int
	errors        map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{errors: make(map[string]int)}
}

func (m *stubMetrics) RecordPrediction(string) { m.mu.Lock(); m.predictions++; m.mu.Unlock() }
func (m *stubMetrics) RecordValueBet(string)   { m.mu.Lock(); m.valueBets++; m.mu.Unlock() }
func (m *stubMetrics) RecordOpportunity(string, string) {
	m.mu.Lock()
	m.opportunities++
	m.mu.Unlock()
}
func (m *stubMetrics) RecordError(kind string) { m.mu.Lock(); m.errors[kind]++; m.mu.Unlock() }
func (m *stubMetrics) RecordBankroll(float64)  {}
func (m *stubMetrics) RecordLatency(string, float64) {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestPredictor(t *testing.T, metrics *stubMetrics) *Predictor {
	t.Helper()
	scorer, err := ensemble.New(ensemble.DefaultConfig())
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}
	return NewPredictor(
		factors.New(1.48, 1.18),
		poisson.New(1.48, 1.18),
		scorer,
		value.New(value.DefaultConfig()),
		nil,
		metrics,
		testLogger(t),
	)
}

func fixture(id string) *models.FixtureInput {
	return &models.FixtureInput{
		FixtureID: id,
		League:    "premier-league",
		Home: models.TeamInput{
			Name: "Arsenal", Played: 12, Wins: 8, Draws: 2, Losses: 2,
			GoalsScored: 26, GoalsConceded: 10,
			Recent: []models.MatchOutcome{
				models.OutcomeWin, models.OutcomeWin, models.OutcomeWin,
				models.OutcomeDraw, models.OutcomeWin,
			},
		},
		Away: models.TeamInput{
			Name: "Fulham", Played: 12, Wins: 3, Draws: 4, Losses: 5,
			GoalsScored: 12, GoalsConceded: 18,
			Recent: []models.MatchOutcome{
				models.OutcomeLoss, models.OutcomeDraw, models.OutcomeLoss,
				models.OutcomeWin, models.OutcomeLoss,
			},
		},
		H2H: &models.H2HInput{
			TotalMatches: 6, HomeWins: 4, Draws: 1, AwayWins: 1,
			TotalGoals: 17, BTTSCount: 3,
		},
		HomeTable:   &models.TableRow{Position: 2, Points: 26, TeamCount: 20},
		AwayTable:   &models.TableRow{Position: 14, Points: 13, TeamCount: 20},
		SeasonPhase: 0.3,
		Importance:  1,
	}
}

func TestPredictBuildsFullMarketSheet(t *testing.T) {
	metrics := newStubMetrics()
	p := newTestPredictor(t, metrics)

	res, err := p.Predict(context.Background(), fixture("fx-1"), nil)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if res.ExpectedHomeGoals <= res.ExpectedAwayGoals {
		t.Fatalf("lambda home %v should exceed away %v for the stronger side",
			res.ExpectedHomeGoals, res.ExpectedAwayGoals)
	}
	if len(res.TopScorelines) != 5 {
		t.Fatalf("top scorelines = %d, want 5", len(res.TopScorelines))
	}

	want := map[models.MarketType]bool{
		models.MarketMatchResult:    true,
		models.MarketOverUnder:      true,
		models.MarketBTTS:           true,
		models.MarketDoubleChance:   true,
		models.MarketHalfTimeResult: true,
		models.MarketGoalRange:      true,
	}
	for _, m := range res.Markets {
		delete(want, m.Market.Type)
	}
	if len(want) != 0 {
		t.Fatalf("market sheet missing %v", want)
	}
	if metrics.predictions != len(res.Markets) {
		t.Fatalf("recorded %d predictions for %d markets", metrics.predictions, len(res.Markets))
	}
	if res.ValueBets != nil || res.BestBet != nil {
		t.Fatal("no odds supplied, no value bets expected")
	}
}

func TestPredictAttachesValueBets(t *testing.T) {
	metrics := newStubMetrics()
	p := newTestPredictor(t, metrics)

	// Generous home price against a fixture the model likes for the home
	// side.
	odds := &models.OddsSnapshot{
		FixtureID: "fx-1",
		Markets: []models.MarketOdds{{
			Market: models.MatchResult(),
			Prices: map[models.Pick]float64{
				models.PickHome: 1.80,
				models.PickDraw: 3.80,
				models.PickAway: 5.50,
			},
		}},
	}
	res, err := p.Predict(context.Background(), fixture("fx-1"), odds)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(res.ValueBets) == 0 {
		t.Fatal("expected value bets at a generous home price")
	}
	if res.BestBet == nil || res.BestBet.Pick != models.PickHome {
		t.Fatalf("best bet = %+v, want home pick", res.BestBet)
	}
	if metrics.valueBets != len(res.ValueBets) {
		t.Fatalf("recorded %d value bets for %d found", metrics.valueBets, len(res.ValueBets))
	}

	for _, m := range res.Markets {
		if m.Market.Type != models.MarketMatchResult {
			continue
		}
		home := m.Outcomes[models.PickHome]
		if home.BookmakerOdds != 1.80 {
			t.Fatalf("bookmaker odds = %v, want 1.80", home.BookmakerOdds)
		}
		if home.FairOdds <= 1 {
			t.Fatalf("fair odds = %v, want above 1", home.FairOdds)
		}
		implied, err := value.ImpliedProbabilities(odds.Markets[0].Prices)
		if err != nil {
			t.Fatalf("implied: %v", err)
		}
		if math.Abs(home.FairOdds-1/implied[models.PickHome]) > 1e-9 {
			t.Fatalf("fair odds = %v, want overround-free 1/implied = %v",
				home.FairOdds, 1/implied[models.PickHome])
		}
	}
}

func TestPredictRejectsInvalidFixture(t *testing.T) {
	metrics := newStubMetrics()
	p := newTestPredictor(t, metrics)

	bad := fixture("fx-bad")
	bad.Home.Wins = 99
	if _, err := p.Predict(context.Background(), bad, nil); err == nil {
		t.Fatal("results above matches played should be rejected")
	}
	if metrics.errors["aggregate"] != 1 {
		t.Fatalf("aggregate error not recorded: %v", metrics.errors)
	}
}
