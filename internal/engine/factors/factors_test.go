package factors

import (
	"math"
	"testing"

	"OddsEngine/internal/domain/models"
)

func baseInput() *models.FixtureInput {
	return &models.FixtureInput{
		FixtureID: "1001",
		League:    "premier-league",
		Home: models.TeamInput{
			Name: "Arsenal", Played: 10, Wins: 6, Draws: 2, Losses: 2,
			GoalsScored: 20, GoalsConceded: 9,
			Recent: []models.MatchOutcome{
				models.OutcomeWin, models.OutcomeWin, models.OutcomeDraw,
				models.OutcomeWin, models.OutcomeLoss,
			},
		},
		Away: models.TeamInput{
			Name: "Fulham", Played: 10, Wins: 3, Draws: 3, Losses: 4,
			GoalsScored: 11, GoalsConceded: 15,
			Recent: []models.MatchOutcome{
				models.OutcomeLoss, models.OutcomeDraw, models.OutcomeWin,
				models.OutcomeLoss, models.OutcomeDraw,
			},
		},
		H2H: &models.H2HInput{
			TotalMatches: 5, HomeWins: 3, Draws: 1, AwayWins: 1,
			TotalGoals: 14, BTTSCount: 3,
		},
		HomeTable: &models.TableRow{Position: 3, Points: 20, TeamCount: 20},
		AwayTable: &models.TableRow{Position: 12, Points: 12, TeamCount: 20},
		SeasonPhase: 0.4,
		Importance:  1,
	}
}

func TestAggregateRejectsInvalidInput(t *testing.T) {
	in := baseInput()
	in.Home.GoalsScored = -3
	if _, err := New(1.48, 1.18).Aggregate(in); err == nil {
		t.Fatal("negative goal count should be rejected")
	}
}

func TestFormScoreRecencyWeighting(t *testing.T) {
	// A recent win counts for more than an old one.
	recentWin := []models.MatchOutcome{
		models.OutcomeWin, models.OutcomeLoss, models.OutcomeLoss,
		models.OutcomeLoss, models.OutcomeLoss,
	}
	oldWin := []models.MatchOutcome{
		models.OutcomeLoss, models.OutcomeLoss, models.OutcomeLoss,
		models.OutcomeLoss, models.OutcomeWin,
	}
	if formScore(recentWin) <= formScore(oldWin) {
		t.Fatalf("recent win score %v should exceed old win score %v",
			formScore(recentWin), formScore(oldWin))
	}
	if got := formScore(nil); got != 50 {
		t.Fatalf("empty history score = %v, want neutral 50", got)
	}
	allWins := []models.MatchOutcome{
		models.OutcomeWin, models.OutcomeWin, models.OutcomeWin,
		models.OutcomeWin, models.OutcomeWin,
	}
	if got := formScore(allWins); got != 100 {
		t.Fatalf("all wins score = %v, want 100", got)
	}
}

func TestH2HFactorsDerived(t *testing.T) {
	f, err := New(1.48, 1.18).Aggregate(baseInput())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if f.H2H.TotalMatches != 5 {
		t.Fatalf("h2h matches = %d, want 5", f.H2H.TotalMatches)
	}
	if math.Abs(f.H2H.AvgGoals-2.8) > 1e-9 {
		t.Fatalf("h2h avg goals = %v, want 2.8", f.H2H.AvgGoals)
	}
	if math.Abs(f.H2H.BTTSPercentage-60) > 1e-9 {
		t.Fatalf("h2h btts = %v, want 60", f.H2H.BTTSPercentage)
	}
}

func TestGoalRatingsRelativeToLeagueAverage(t *testing.T) {
	f, err := New(1.48, 1.18).Aggregate(baseInput())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	// Arsenal scores 2.0 per match against a 1.33 league average, so the
	// attack rating must sit above 100; Fulham's 1.1 lands below it.
	if f.Ratings.HomeAttack <= 100 {
		t.Fatalf("home attack rating = %v, want above 100", f.Ratings.HomeAttack)
	}
	if f.Ratings.AwayAttack >= 100 {
		t.Fatalf("away attack rating = %v, want below 100", f.Ratings.AwayAttack)
	}
	for _, r := range []float64{f.Ratings.HomeAttack, f.Ratings.HomeDefense, f.Ratings.AwayAttack, f.Ratings.AwayDefense} {
		if r < 25 || r > 250 {
			t.Fatalf("rating %v outside clamp [25, 250]", r)
		}
	}
}

func TestMissingSectionsDegradeNotError(t *testing.T) {
	in := baseInput()
	in.H2H = nil
	in.HomeTable = nil
	in.AwayTable = nil
	f, err := New(1.48, 1.18).Aggregate(in)
	if err != nil {
		t.Fatalf("missing optional sections must not error: %v", err)
	}

	want := map[string]bool{"h2h": true, "standings": true}
	for _, d := range f.Degraded {
		delete(want, d)
	}
	if len(want) != 0 {
		t.Fatalf("degraded list missing %v, got %v", want, f.Degraded)
	}
	if f.Standings.HomePosition != 0 {
		t.Fatalf("missing table should leave zero position, got %d", f.Standings.HomePosition)
	}
}

func TestNewlyPromotedTeamFallsBackToAverages(t *testing.T) {
	in := baseInput()
	in.Away = models.TeamInput{Name: "Promoted FC"}
	f, err := New(1.48, 1.18).Aggregate(in)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if f.Ratings.AwayAttack != 100 || f.Ratings.AwayDefense != 100 {
		t.Fatalf("zero-played team ratings = %v/%v, want 100/100",
			f.Ratings.AwayAttack, f.Ratings.AwayDefense)
	}
	found := false
	for _, d := range f.Degraded {
		if d == "stats" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected stats degradation, got %v", f.Degraded)
	}
}

func TestMotivationPositionPressure(t *testing.T) {
	a := New(1.48, 1.18)

	title := baseInput()
	title.HomeTable = &models.TableRow{Position: 1, Points: 30, TeamCount: 20}
	mid := baseInput()
	mid.HomeTable = &models.TableRow{Position: 10, Points: 15, TeamCount: 20}

	ft, _ := a.Aggregate(title)
	fm, _ := a.Aggregate(mid)
	if ft.Motivation.HomeMotivation <= fm.Motivation.HomeMotivation {
		t.Fatalf("title race motivation %v should exceed mid-table %v",
			ft.Motivation.HomeMotivation, fm.Motivation.HomeMotivation)
	}

	releg := baseInput()
	releg.HomeTable = &models.TableRow{Position: 19, Points: 6, TeamCount: 20}
	fr, _ := a.Aggregate(releg)
	if fr.Motivation.HomeMotivation <= fm.Motivation.HomeMotivation {
		t.Fatalf("relegation battle motivation %v should exceed mid-table %v",
			fr.Motivation.HomeMotivation, fm.Motivation.HomeMotivation)
	}
}
