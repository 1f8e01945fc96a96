// Package factors normalizes raw team and match inputs into the common
// 0-100 factor scales consumed by the ensemble scorer and the Poisson goal
// model. All transformations are pure; missing sections degrade to neutral
// midpoints instead of erroring.
package factors

import (
	"OddsEngine/internal/domain/models"
)

const (
	neutral = 50.0

	// formWindow caps how many recent results feed the form score.
	formWindow = 5

	// Ratings are clamped so a handful of freak results cannot push the
	// Poisson model into absurd expected-goal territory.
	minRating = 25.0
	maxRating = 250.0
)

// Aggregator converts fixture inputs into PredictionFactors.
type Aggregator struct {
	leagueAvgHomeGoals float64
	leagueAvgAwayGoals float64
}

// New creates an Aggregator calibrated to the league's average goals per
// match for home and away sides.
func New(leagueAvgHomeGoals, leagueAvgAwayGoals float64) *Aggregator {
	if leagueAvgHomeGoals <= 0 {
		leagueAvgHomeGoals = 1.48
	}
	if leagueAvgAwayGoals <= 0 {
		leagueAvgAwayGoals = 1.18
	}
	return &Aggregator{
		leagueAvgHomeGoals: leagueAvgHomeGoals,
		leagueAvgAwayGoals: leagueAvgAwayGoals,
	}
}

// Aggregate validates the input and builds the normalized factor record.
func (a *Aggregator) Aggregate(in *models.FixtureInput) (models.PredictionFactors, error) {
	var f models.PredictionFactors
	if err := in.Validate(); err != nil {
		return f, err
	}

	f.Form = a.formFactors(in)
	f.H2H = a.h2hFactors(in)
	f.Stats, f.Ratings = a.statFactors(in)
	f.Standings = a.standingFactors(in)
	f.Motivation = a.motivationFactors(in)

	if len(in.Home.Recent) == 0 && len(in.Away.Recent) == 0 {
		f.Degraded = append(f.Degraded, "form")
	}
	if in.H2H == nil || in.H2H.TotalMatches == 0 {
		f.Degraded = append(f.Degraded, "h2h")
	}
	if in.Home.Played == 0 || in.Away.Played == 0 {
		f.Degraded = append(f.Degraded, "stats")
	}
	if in.HomeTable == nil || in.AwayTable == nil {
		f.Degraded = append(f.Degraded, "standings")
	}
	return f, nil
}

// formScore computes a recency-weighted win/draw/loss score over the last
// formWindow results (newest first): win 100, draw 50, loss 0, weighted
// linearly so the newest match counts formWindow times as much as the
// oldest. Empty history scores the neutral midpoint.
func formScore(results []models.MatchOutcome) float64 {
	if len(results) == 0 {
		return neutral
	}
	n := len(results)
	if n > formWindow {
		n = formWindow
	}
	var sum, weightSum float64
	for i := 0; i < n; i++ {
		w := float64(formWindow - i)
		var s float64
		switch results[i] {
		case models.OutcomeWin:
			s = 100
		case models.OutcomeDraw:
			s = 50
		case models.OutcomeLoss:
			s = 0
		default:
			continue
		}
		sum += s * w
		weightSum += w
	}
	if weightSum == 0 {
		return neutral
	}
	return clamp(sum / weightSum)
}

func (a *Aggregator) formFactors(in *models.FixtureInput) models.FormFactors {
	ff := models.FormFactors{
		HomeForm:     formScore(in.Home.Recent),
		AwayForm:     formScore(in.Away.Recent),
		HomeHomeForm: formScore(in.Home.VenueRecent),
		AwayAwayForm: formScore(in.Away.VenueRecent),
	}
	ff.FormDifference = ff.HomeForm - ff.AwayForm
	return ff
}

func (a *Aggregator) h2hFactors(in *models.FixtureInput) models.H2HFactors {
	if in.H2H == nil || in.H2H.TotalMatches == 0 {
		return models.H2HFactors{}
	}
	h := in.H2H
	total := float64(h.TotalMatches)
	return models.H2HFactors{
		TotalMatches:   h.TotalMatches,
		HomeWins:       h.HomeWins,
		Draws:          h.Draws,
		AwayWins:       h.AwayWins,
		AvgGoals:       float64(h.TotalGoals) / total,
		BTTSPercentage: float64(h.BTTSCount) / total * 100,
	}
}

// statFactors derives per-match goal averages, goal ratings as a percentage
// of the league average (100 = average), and 0-100 attack/defense scores
// where 50 is league average. A defense score above 50 means the team
// concedes less than average.
func (a *Aggregator) statFactors(in *models.FixtureInput) (models.StatFactors, models.GoalRatings) {
	leagueAvg := (a.leagueAvgHomeGoals + a.leagueAvgAwayGoals) / 2

	homeScored := perMatch(in.Home.GoalsScored, in.Home.Played, leagueAvg)
	homeConceded := perMatch(in.Home.GoalsConceded, in.Home.Played, leagueAvg)
	awayScored := perMatch(in.Away.GoalsScored, in.Away.Played, leagueAvg)
	awayConceded := perMatch(in.Away.GoalsConceded, in.Away.Played, leagueAvg)

	r := models.GoalRatings{
		HomeAttack:  clampRange(homeScored/leagueAvg*100, minRating, maxRating),
		HomeDefense: clampRange(homeConceded/leagueAvg*100, minRating, maxRating),
		AwayAttack:  clampRange(awayScored/leagueAvg*100, minRating, maxRating),
		AwayDefense: clampRange(awayConceded/leagueAvg*100, minRating, maxRating),
	}

	s := models.StatFactors{
		HomeAttack:        clamp(r.HomeAttack / 2),
		HomeDefense:       clamp(100 - r.HomeDefense/2),
		AwayAttack:        clamp(r.AwayAttack / 2),
		AwayDefense:       clamp(100 - r.AwayDefense/2),
		HomeGoalsScored:   homeScored,
		HomeGoalsConceded: homeConceded,
		AwayGoalsScored:   awayScored,
		AwayGoalsConceded: awayConceded,
	}
	return s, r
}

func (a *Aggregator) standingFactors(in *models.FixtureInput) models.StandingFactors {
	var sf models.StandingFactors
	if in.HomeTable != nil {
		sf.HomePosition = in.HomeTable.Position
		sf.HomePoints = in.HomeTable.Points
	}
	if in.AwayTable != nil {
		sf.AwayPosition = in.AwayTable.Position
		sf.AwayPoints = in.AwayTable.Points
	}
	if in.HomeTable != nil && in.AwayTable != nil {
		sf.PositionDifference = sf.HomePosition - sf.AwayPosition
	}
	return sf
}

// motivationFactors scores how much the match matters: a base of 40, a
// pressure term when the team sits in a title or relegation zone scaled by
// how deep into the season we are, and an importance bump supplied by the
// caller (cup decider, derby). Without a table the midpoint is used.
func (a *Aggregator) motivationFactors(in *models.FixtureInput) models.MotivationFactors {
	importance := in.Importance
	if importance < 1 {
		importance = 1
	}
	if importance > 3 {
		importance = 3
	}

	mf := models.MotivationFactors{
		HomeMotivation:  neutral,
		AwayMotivation:  neutral,
		ImportanceLevel: importance,
	}
	if in.HomeTable != nil {
		mf.HomeMotivation = motivationScore(in.HomeTable, in.SeasonPhase, importance)
	}
	if in.AwayTable != nil {
		mf.AwayMotivation = motivationScore(in.AwayTable, in.SeasonPhase, importance)
	}
	return mf
}

func motivationScore(row *models.TableRow, phase float64, importance int) float64 {
	if row.TeamCount <= 1 {
		return neutral
	}
	if phase < 0 {
		phase = 0
	}
	if phase > 1 {
		phase = 1
	}

	var pressure float64
	switch {
	case row.Position <= 4:
		pressure = 25 // title race / qualification spots
	case row.Position >= row.TeamCount-3:
		pressure = 30 // relegation fight
	default:
		pressure = 10
	}
	return clamp(40 + pressure*phase + 10*float64(importance-1))
}

func perMatch(goals, played int, fallback float64) float64 {
	if played == 0 {
		return fallback
	}
	return float64(goals) / float64(played)
}

func clamp(v float64) float64 {
	return clampRange(v, 0, 100)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
