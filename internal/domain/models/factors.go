package models

// FormFactors are recency-weighted form scores on a 0-100 scale.
type FormFactors struct {
	HomeForm       float64 `json:"home_form"`
	AwayForm       float64 `json:"away_form"`
	HomeHomeForm   float64 `json:"home_home_form"`
	AwayAwayForm   float64 `json:"away_away_form"`
	FormDifference float64 `json:"form_difference"` // HomeForm - AwayForm
}

// H2HFactors summarize the head-to-head history.
type H2HFactors struct {
	TotalMatches   int     `json:"total_matches"`
	HomeWins       int     `json:"home_wins"`
	Draws          int     `json:"draws"`
	AwayWins       int     `json:"away_wins"`
	AvgGoals       float64 `json:"avg_goals"`
	BTTSPercentage float64 `json:"btts_percentage"`
}

// StatFactors hold attack/defense scores on a 0-100 scale (50 = league
// average) plus per-match goal averages.
type StatFactors struct {
	HomeAttack        float64 `json:"home_attack"`
	HomeDefense       float64 `json:"home_defense"`
	AwayAttack        float64 `json:"away_attack"`
	AwayDefense       float64 `json:"away_defense"`
	HomeGoalsScored   float64 `json:"home_goals_scored"`
	HomeGoalsConceded float64 `json:"home_goals_conceded"`
	AwayGoalsScored   float64 `json:"away_goals_scored"`
	AwayGoalsConceded float64 `json:"away_goals_conceded"`
}

// StandingFactors carry the league table context.
type StandingFactors struct {
	HomePosition       int `json:"home_position"`
	AwayPosition       int `json:"away_position"`
	PositionDifference int `json:"position_difference"`
	HomePoints         int `json:"home_points"`
	AwayPoints         int `json:"away_points"`
}

// MotivationFactors score how much the match matters to each side.
type MotivationFactors struct {
	HomeMotivation  float64 `json:"home_motivation"`
	AwayMotivation  float64 `json:"away_motivation"`
	ImportanceLevel int     `json:"importance_level"`
}

// GoalRatings express scoring strength as a percentage of the league average
// (100 = average). Input to the Poisson goal model. A defense rating above
// 100 means the team concedes more than average.
type GoalRatings struct {
	HomeAttack  float64 `json:"home_attack"`
	HomeDefense float64 `json:"home_defense"`
	AwayAttack  float64 `json:"away_attack"`
	AwayDefense float64 `json:"away_defense"`
}

// PredictionFactors is the immutable normalized output of the factor
// aggregator. All 0-100 fields are clamped; missing inputs degrade to the
// neutral midpoint 50 and set Degraded.
type PredictionFactors struct {
	Form       FormFactors       `json:"form"`
	H2H        H2HFactors        `json:"h2h"`
	Stats      StatFactors       `json:"stats"`
	Standings  StandingFactors   `json:"standings"`
	Motivation MotivationFactors `json:"motivation"`
	Ratings    GoalRatings       `json:"ratings"`
	Degraded   []string          `json:"degraded,omitempty"` // sections filled with neutral defaults
}
