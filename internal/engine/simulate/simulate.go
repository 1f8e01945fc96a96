// Package simulate samples match scenarios from a fitted scoreline grid.
// It complements the analytic marginals with quantities that are awkward to
// derive in closed form, like comeback rates or coupon hit distributions.
package simulate

import (
	"fmt"
	"math/rand"

	"OddsEngine/internal/engine/poisson"
)

// Summary aggregates the sampled scenarios.
type Summary struct {
	Runs          int     `json:"runs"`
	HomeWinRate   float64 `json:"home_win_rate"`
	DrawRate      float64 `json:"draw_rate"`
	AwayWinRate   float64 `json:"away_win_rate"`
	AvgTotalGoals float64 `json:"avg_total_goals"`
	BTTSRate      float64 `json:"btts_rate"`
	// ModeHome/ModeAway is the most frequently sampled exact score.
	ModeHome int `json:"mode_home"`
	ModeAway int `json:"mode_away"`
}

// Simulator draws scorelines from a grid. The random source is injected so
// runs are reproducible under a fixed seed.
type Simulator struct {
	rng *rand.Rand
}

// New creates a Simulator with the given seed.
func New(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Run samples n scenarios from the grid and summarizes them.
func (s *Simulator) Run(res *poisson.Result, n int) (*Summary, error) {
	if n <= 0 {
		return nil, fmt.Errorf("run count must be positive, got %d", n)
	}
	if res == nil {
		return nil, fmt.Errorf("no poisson result supplied")
	}

	size := len(res.Grid)
	counts := make(map[[2]int]int, 64)
	var sum Summary
	var totalGoals int

	for i := 0; i < n; i++ {
		h, a := s.sample(res)
		switch {
		case h > a:
			sum.HomeWinRate++
		case h == a:
			sum.DrawRate++
		default:
			sum.AwayWinRate++
		}
		if h > 0 && a > 0 {
			sum.BTTSRate++
		}
		totalGoals += h + a
		if h < size-1 && a < size-1 {
			counts[[2]int{h, a}]++
		}
	}

	sum.Runs = n
	sum.HomeWinRate /= float64(n)
	sum.DrawRate /= float64(n)
	sum.AwayWinRate /= float64(n)
	sum.BTTSRate /= float64(n)
	sum.AvgTotalGoals = float64(totalGoals) / float64(n)

	best := -1
	for score, c := range counts {
		if c > best || (c == best && score[0]+score[1] < sum.ModeHome+sum.ModeAway) {
			best = c
			sum.ModeHome, sum.ModeAway = score[0], score[1]
		}
	}
	return &sum, nil
}

// sample draws one scoreline by inverse transform over the flattened grid.
// Remainder-bucket hits collapse to the bucket's first goal count.
func (s *Simulator) sample(res *poisson.Result) (home, away int) {
	u := s.rng.Float64()
	var cum float64
	size := len(res.Grid)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			cum += res.Grid[i][j]
			if u < cum {
				return goalsForIndex(i, size), goalsForIndex(j, size)
			}
		}
	}
	return size - 1, size - 1
}

// goalsForIndex maps a grid index to a goal count; the final index is the
// overflow bucket and counts as one past the exact range.
func goalsForIndex(idx, size int) int {
	if idx == size-1 {
		return size - 1
	}
	return idx
}
