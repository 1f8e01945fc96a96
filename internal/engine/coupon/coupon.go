// Package coupon prices combination bets over a set of selections.
package coupon

import (
	"fmt"

	"OddsEngine/internal/domain/models"
)

// systemShape is the (k out of n) layout of each supported system. Single
// and full are special-cased on the selection count itself.
var systemShape = map[models.SystemType]struct{ k, n int }{
	models.System2of3: {2, 3},
	models.System3of4: {3, 4},
	models.System2of4: {2, 4},
}

// Combiner prices coupons.
type Combiner struct{}

// New creates a Combiner.
func New() *Combiner {
	return &Combiner{}
}

// Price computes the layout and theoretical payout of a system over the
// given selections with the given stake per combination. The per-selection
// odds must all exceed 1, and the selection count must match the system's
// required legs exactly.
func (c *Combiner) Price(system models.SystemType, selections []models.Selection, stakePerCombination float64) (*models.CouponSystemResult, error) {
	if stakePerCombination <= 0 {
		return nil, fmt.Errorf("stake per combination must be positive, got %v", stakePerCombination)
	}
	for _, s := range selections {
		if s.Odds <= 1 {
			return nil, fmt.Errorf("selection %s odds must exceed 1, got %v", s.FixtureID, s.Odds)
		}
	}

	var k int
	switch system {
	case models.SystemSingle:
		if len(selections) != 1 {
			return nil, fmt.Errorf("single system needs exactly 1 selection, got %d", len(selections))
		}
		k = 1
	case models.SystemFull:
		if len(selections) < 2 {
			return nil, fmt.Errorf("full combination needs at least 2 selections, got %d", len(selections))
		}
		k = len(selections)
	default:
		shape, ok := systemShape[system]
		if !ok {
			return nil, fmt.Errorf("unknown system %q", system)
		}
		if len(selections) != shape.n {
			return nil, fmt.Errorf("system %s needs exactly %d selections, got %d", system, shape.n, len(selections))
		}
		k = shape.k
	}

	combos := combinations(len(selections), k)
	var potential float64
	for _, combo := range combos {
		payout := stakePerCombination
		for _, idx := range combo {
			payout *= selections[idx].Odds
		}
		potential += payout
	}

	return &models.CouponSystemResult{
		System:              system,
		TotalCombinations:   len(combos),
		StakePerCombination: stakePerCombination,
		TotalStake:          stakePerCombination * float64(len(combos)),
		PotentialWin:        potential,
	}, nil
}

// Settle computes the actual payout of a priced coupon once every selection
// carries a result.
func (c *Combiner) Settle(system models.SystemType, selections []models.Selection, stakePerCombination float64) (float64, error) {
	if _, err := c.Price(system, selections, stakePerCombination); err != nil {
		return 0, err
	}
	for _, s := range selections {
		if s.Won == nil {
			return 0, fmt.Errorf("selection %s has no result yet", s.FixtureID)
		}
	}

	k := kFor(system, len(selections))
	var payout float64
	for _, combo := range combinations(len(selections), k) {
		line := stakePerCombination
		for _, idx := range combo {
			if !*selections[idx].Won {
				line = 0
				break
			}
			line *= selections[idx].Odds
		}
		payout += line
	}
	return payout, nil
}

func kFor(system models.SystemType, n int) int {
	switch system {
	case models.SystemSingle:
		return 1
	case models.SystemFull:
		return n
	default:
		return systemShape[system].k
	}
}

// combinations enumerates all k-element index subsets of [0, n) in
// lexicographic order.
func combinations(n, k int) [][]int {
	var out [][]int
	combo := make([]int, k)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			out = append(out, append([]int(nil), combo...))
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			combo[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return out
}
