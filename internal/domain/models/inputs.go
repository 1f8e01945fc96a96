package models

import (
	"fmt"
	"time"
)

// MatchOutcome is the result of a past match from one team's perspective.
type MatchOutcome string

const (
	OutcomeWin  MatchOutcome = "W"
	OutcomeDraw MatchOutcome = "D"
	OutcomeLoss MatchOutcome = "L"
)

// InvalidInputError marks a malformed input record. Degraded or missing
// inputs are handled with neutral defaults instead; this error is reserved
// for records that are wrong, not absent.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// TeamInput carries one team's season and recent-form records as supplied by
// the upstream statistics source.
type TeamInput struct {
	Name          string         `json:"name"`
	Played        int            `json:"played"`
	Wins          int            `json:"wins"`
	Draws         int            `json:"draws"`
	Losses        int            `json:"losses"`
	GoalsScored   int            `json:"goals_scored"`
	GoalsConceded int            `json:"goals_conceded"`
	Recent        []MatchOutcome `json:"recent"`       // newest first
	VenueRecent   []MatchOutcome `json:"venue_recent"` // home matches for the home team, away for the away team
}

// H2HInput is the head-to-head history between the two teams, counted from
// the home team's perspective.
type H2HInput struct {
	TotalMatches int `json:"total_matches"`
	HomeWins     int `json:"home_wins"`
	Draws        int `json:"draws"`
	AwayWins     int `json:"away_wins"`
	TotalGoals   int `json:"total_goals"`
	BTTSCount    int `json:"btts_count"`
}

// TableRow is one team's league table position.
type TableRow struct {
	Position  int `json:"position"`
	Points    int `json:"points"`
	TeamCount int `json:"team_count"`
}

// FixtureInput bundles everything the pre-match pipeline needs for one
// fixture. H2H and table rows may be nil; the aggregator degrades to neutral
// midpoints.
type FixtureInput struct {
	FixtureID   string     `json:"fixture_id"`
	League      string     `json:"league"`
	Kickoff     time.Time  `json:"kickoff"`
	Home        TeamInput  `json:"home"`
	Away        TeamInput  `json:"away"`
	H2H         *H2HInput  `json:"h2h,omitempty"`
	HomeTable   *TableRow  `json:"home_table,omitempty"`
	AwayTable   *TableRow  `json:"away_table,omitempty"`
	SeasonPhase float64    `json:"season_phase"` // 0 early season .. 1 final round
	Importance  int        `json:"importance"`   // 1 routine, 2 elevated, 3 decider
}

// Validate rejects genuinely malformed records. Missing optional sections are
// fine; negative counters are not.
func (f *FixtureInput) Validate() error {
	if f.FixtureID == "" {
		return &InvalidInputError{Field: "fixture_id", Reason: "empty"}
	}
	for side, t := range map[string]*TeamInput{"home": &f.Home, "away": &f.Away} {
		if t.Played < 0 || t.Wins < 0 || t.Draws < 0 || t.Losses < 0 {
			return &InvalidInputError{Field: side, Reason: "negative match counts"}
		}
		if t.GoalsScored < 0 || t.GoalsConceded < 0 {
			return &InvalidInputError{Field: side, Reason: "negative goals"}
		}
		if t.Wins+t.Draws+t.Losses > t.Played {
			return &InvalidInputError{Field: side, Reason: "results exceed matches played"}
		}
	}
	if f.H2H != nil {
		h := f.H2H
		if h.TotalMatches < 0 || h.TotalGoals < 0 || h.BTTSCount < 0 {
			return &InvalidInputError{Field: "h2h", Reason: "negative counters"}
		}
		if h.HomeWins+h.Draws+h.AwayWins > h.TotalMatches {
			return &InvalidInputError{Field: "h2h", Reason: "results exceed total matches"}
		}
	}
	return nil
}
