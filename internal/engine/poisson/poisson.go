// Package poisson turns expected-goal estimates into a full scoreline
// probability grid and the market marginals derived from it.
package poisson

import (
	"math"
	"sort"

	"OddsEngine/internal/domain/models"
)

// gridCap is the highest exact goal count modelled per side; everything
// above lands in a remainder bucket so total probability mass stays 1.
const gridCap = 8

// Model computes scoreline grids from attack/defense ratings.
type Model struct {
	leagueAvgHomeGoals float64
	leagueAvgAwayGoals float64
}

// Result is the full output of one model run.
type Result struct {
	LambdaHome    float64
	LambdaAway    float64
	// Grid[i][j] = P(home scores i, away scores j) for i,j in [0,gridCap].
	// The last row/column index (gridCap+1) is the remainder bucket for
	// scores above gridCap.
	Grid          [gridCap + 2][gridCap + 2]float64
	HomeWin       float64
	Draw          float64
	AwayWin       float64
	BTTSYes       float64
	LowConfidence bool
}

// New creates a Model with the league's average home/away goals per match.
func New(leagueAvgHomeGoals, leagueAvgAwayGoals float64) *Model {
	if leagueAvgHomeGoals <= 0 {
		leagueAvgHomeGoals = 1.48
	}
	if leagueAvgAwayGoals <= 0 {
		leagueAvgAwayGoals = 1.18
	}
	return &Model{
		leagueAvgHomeGoals: leagueAvgHomeGoals,
		leagueAvgAwayGoals: leagueAvgAwayGoals,
	}
}

// ExpectedGoals converts goal ratings (100 = league average) into expected
// goals for each side.
func (m *Model) ExpectedGoals(r models.GoalRatings) (lambdaHome, lambdaAway float64) {
	lambdaHome = m.leagueAvgHomeGoals * r.HomeAttack / 100 * r.AwayDefense / 100
	lambdaAway = m.leagueAvgAwayGoals * r.AwayAttack / 100 * r.HomeDefense / 100
	return lambdaHome, lambdaAway
}

// Run builds the scoreline grid and outcome marginals for the given expected
// goals. Non-positive lambdas fall back to league averages and flag low
// confidence.
func (m *Model) Run(lambdaHome, lambdaAway float64) *Result {
	res := &Result{LambdaHome: lambdaHome, LambdaAway: lambdaAway}
	if lambdaHome <= 0 || lambdaAway <= 0 || math.IsNaN(lambdaHome) || math.IsNaN(lambdaAway) {
		res.LambdaHome = m.leagueAvgHomeGoals
		res.LambdaAway = m.leagueAvgAwayGoals
		res.LowConfidence = true
	}

	home := pmfVector(res.LambdaHome)
	away := pmfVector(res.LambdaAway)

	for i := range home {
		for j := range away {
			res.Grid[i][j] = home[i] * away[j]
		}
	}

	// Remainder buckets represent "gridCap+1 or more" goals; for outcome
	// sums they are treated as that goal count, which is exact for every
	// comparison except bucket-vs-bucket (negligible mass).
	for i := 0; i < gridCap+2; i++ {
		for j := 0; j < gridCap+2; j++ {
			p := res.Grid[i][j]
			switch {
			case i > j:
				res.HomeWin += p
			case i == j:
				res.Draw += p
			default:
				res.AwayWin += p
			}
		}
	}

	p0h := home[0]
	p0a := away[0]
	res.BTTSYes = 1 - p0h - p0a + p0h*p0a
	return res
}

// OverUnder returns P(total goals > line) and P(total goals < line) for a
// half-goal line. Totals involving a remainder bucket count as above any
// line up to 2*gridCap+0.5.
func (r *Result) OverUnder(line float64) (over, under float64) {
	for i := 0; i < gridCap+2; i++ {
		for j := 0; j < gridCap+2; j++ {
			total := float64(goalCount(i) + goalCount(j))
			if total > line {
				over += r.Grid[i][j]
			} else {
				under += r.Grid[i][j]
			}
		}
	}
	return over, under
}

// GoalRange returns P(min <= total goals <= max).
func (r *Result) GoalRange(min, max int) float64 {
	var p float64
	for i := 0; i < gridCap+2; i++ {
		for j := 0; j < gridCap+2; j++ {
			total := goalCount(i) + goalCount(j)
			if total >= min && total <= max {
				p += r.Grid[i][j]
			}
		}
	}
	return p
}

// DoubleChance returns the probabilities for 1X, X2 and 12.
func (r *Result) DoubleChance() (oneX, xTwo, oneTwo float64) {
	return r.HomeWin + r.Draw, r.Draw + r.AwayWin, r.HomeWin + r.AwayWin
}

// HalfTime approximates the half-time 1X2 by re-running the model at a
// fraction of the expected goals. Goals are not uniform across halves;
// roughly 45% arrive before the break.
func (m *Model) HalfTime(lambdaHome, lambdaAway float64) *Result {
	const firstHalfShare = 0.45
	return m.Run(lambdaHome*firstHalfShare, lambdaAway*firstHalfShare)
}

// TopScorelines returns the n most likely exact scores, sorted by
// probability descending; ties break toward fewer total goals.
func (r *Result) TopScorelines(n int) []models.Scoreline {
	lines := make([]models.Scoreline, 0, (gridCap+1)*(gridCap+1))
	for i := 0; i <= gridCap; i++ {
		for j := 0; j <= gridCap; j++ {
			lines = append(lines, models.Scoreline{Home: i, Away: j, Probability: r.Grid[i][j]})
		}
	}
	sort.Slice(lines, func(a, b int) bool {
		if lines[a].Probability != lines[b].Probability {
			return lines[a].Probability > lines[b].Probability
		}
		return lines[a].Home+lines[a].Away < lines[b].Home+lines[b].Away
	})
	if n > len(lines) {
		n = len(lines)
	}
	return lines[:n]
}

// TotalMass sums the entire grid; used by tests to verify mass conservation.
func (r *Result) TotalMass() float64 {
	var sum float64
	for i := range r.Grid {
		for j := range r.Grid[i] {
			sum += r.Grid[i][j]
		}
	}
	return sum
}

// pmfVector returns P(X = k) for k in [0, gridCap] plus the remainder mass
// P(X > gridCap) in the final slot.
func pmfVector(lambda float64) [gridCap + 2]float64 {
	var v [gridCap + 2]float64
	var cum float64
	for k := 0; k <= gridCap; k++ {
		p := pmf(k, lambda)
		v[k] = p
		cum += p
	}
	v[gridCap+1] = 1 - cum
	if v[gridCap+1] < 0 {
		v[gridCap+1] = 0
	}
	return v
}

// pmf is the Poisson probability mass function, computed iteratively to
// avoid factorial overflow.
func pmf(k int, lambda float64) float64 {
	p := math.Exp(-lambda)
	for i := 1; i <= k; i++ {
		p *= lambda / float64(i)
	}
	return p
}

func goalCount(idx int) int {
	// The remainder bucket stands in for "gridCap+1 or more".
	if idx > gridCap {
		return gridCap + 1
	}
	return idx
}
