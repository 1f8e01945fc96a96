package live

import (
	"fmt"

	"OddsEngine/internal/domain/models"
)

// candidate is one detector's raw finding before merging and dedup.
type candidate struct {
	signal     models.SignalType
	market     models.Market
	pick       models.Pick
	confidence float64
	reasoning  string
	critical   bool
}

// shotPressure fires when one side out-shoots the other on target by the
// configured margin and is not already cruising.
func (s *Scanner) shotPressure(t *models.LiveStats) *candidate {
	diff := t.Home.ShotsOnTarget - t.Away.ShotsOnTarget
	pick, lead := models.PickHome, t.Home.Goals-t.Away.Goals
	side := "home"
	if diff < 0 {
		diff, pick, lead, side = -diff, models.PickAway, -lead, "away"
	}
	if diff < s.cfg.ShotPressureDiff || lead >= 2 {
		return nil
	}
	return &candidate{
		signal:     models.SignalShotPressure,
		market:     models.MatchResult(),
		pick:       pick,
		confidence: clampConf(60 + 2*float64(diff-s.cfg.ShotPressureDiff)),
		reasoning:  fmt.Sprintf("%s side leads shots on target by %d", side, diff),
	}
}

// possessionDominance fires when one side holds the ball past the configured
// share.
func (s *Scanner) possessionDominance(t *models.LiveStats) *candidate {
	share, pick, side := t.Home.Possession, models.PickHome, "home"
	if t.Away.Possession > share {
		share, pick, side = t.Away.Possession, models.PickAway, "away"
	}
	if share < s.cfg.PossessionShare {
		return nil
	}
	return &candidate{
		signal:     models.SignalPossessionDominance,
		market:     models.MatchResult(),
		pick:       pick,
		confidence: clampConf(55 + (share-s.cfg.PossessionShare)*150),
		reasoning:  fmt.Sprintf("%s side controls %.0f%% possession", side, share*100),
	}
}

// aggressiveness fires when one side racks up cards; a struggling, carded
// team favours the opponent, and a red card makes it time critical.
func (s *Scanner) aggressiveness(t *models.LiveStats) *candidate {
	homeCards := t.Home.YellowCards + 2*t.Home.RedCards
	awayCards := t.Away.YellowCards + 2*t.Away.RedCards

	cards, pick, red, side := homeCards, models.PickAway, t.Home.RedCards > 0, "home"
	if awayCards > homeCards {
		cards, pick, red, side = awayCards, models.PickHome, t.Away.RedCards > 0, "away"
	}
	if cards < s.cfg.AggressionCards {
		return nil
	}
	conf := clampConf(55 + 3*float64(cards-s.cfg.AggressionCards))
	if red {
		conf = clampConf(conf + 10)
	}
	return &candidate{
		signal:     models.SignalAggressiveness,
		market:     models.MatchResult(),
		pick:       pick,
		confidence: conf,
		reasoning:  fmt.Sprintf("%s side under discipline pressure with %d card points", side, cards),
		critical:   red,
	}
}

// cornerPressure fires on sustained territorial pressure measured in
// corners.
func (s *Scanner) cornerPressure(t *models.LiveStats) *candidate {
	total := t.Home.Corners + t.Away.Corners
	if total < s.cfg.CornerPressure {
		return nil
	}
	pick, side := models.PickHome, "home"
	if t.Away.Corners > t.Home.Corners {
		pick, side = models.PickAway, "away"
	}
	return &candidate{
		signal:     models.SignalCornerPressure,
		market:     models.MatchResult(),
		pick:       pick,
		confidence: clampConf(55 + 2*float64(total-s.cfg.CornerPressure)),
		reasoning:  fmt.Sprintf("%d corners with the %s side ahead on count", total, side),
	}
}

// momentumSwing compares against the previous tick for the same fixture and
// fires when one side's shot volume jumps. First tick for a fixture never
// fires.
func (s *Scanner) momentumSwing(t, prev *models.LiveStats) *candidate {
	if prev == nil {
		return nil
	}
	homeDelta := t.Home.ShotsTotal - prev.Home.ShotsTotal
	awayDelta := t.Away.ShotsTotal - prev.Away.ShotsTotal

	delta, pick, side := homeDelta-awayDelta, models.PickHome, "home"
	if delta < 0 {
		delta, pick, side = -delta, models.PickAway, "away"
	}
	if delta < s.cfg.MomentumShots {
		return nil
	}
	return &candidate{
		signal:     models.SignalMomentumSwing,
		market:     models.MatchResult(),
		pick:       pick,
		confidence: clampConf(55 + 4*float64(delta-s.cfg.MomentumShots)),
		reasoning:  fmt.Sprintf("%s side added %d more shots than the opponent since last tick", side, delta),
	}
}

// goalExpectancy projects remaining goals from the shot rate so far and
// fires an over signal on the next total-goals line when the projection
// clears the threshold.
func (s *Scanner) goalExpectancy(t *models.LiveStats) *candidate {
	if t.Minute <= 0 || t.Minute >= 90 {
		return nil
	}
	totalSoT := float64(t.Home.ShotsOnTarget + t.Away.ShotsOnTarget)
	// Roughly three on-target shots per goal.
	rate := totalSoT / 3 / float64(t.Minute)
	projected := rate * float64(90-t.Minute)
	if projected < s.cfg.GoalExpectancy {
		return nil
	}
	total := t.Home.Goals + t.Away.Goals
	return &candidate{
		signal:     models.SignalGoalExpectancy,
		market:     models.OverUnder(float64(total) + 0.5),
		pick:       models.PickOver,
		confidence: clampConf(55 + 10*(projected-s.cfg.GoalExpectancy)),
		reasoning:  fmt.Sprintf("shot rate projects %.1f more goals", projected),
	}
}

func clampConf(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 95 {
		return 95
	}
	return v
}
