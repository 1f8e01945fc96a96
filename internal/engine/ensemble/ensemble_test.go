package ensemble

import (
	"math"
	"testing"

	"OddsEngine/internal/domain/models"
	"OddsEngine/internal/engine/poisson"
)

func runPoisson(t *testing.T, lh, la float64) *poisson.Result {
	t.Helper()
	return poisson.New(1.48, 1.18).Run(lh, la)
}

func evenFactors() models.PredictionFactors {
	return models.PredictionFactors{
		Form: models.FormFactors{
			HomeForm: 50, AwayForm: 50, HomeHomeForm: 50, AwayAwayForm: 50,
		},
		H2H: models.H2HFactors{TotalMatches: 4, HomeWins: 1, Draws: 2, AwayWins: 1, BTTSPercentage: 50},
		Stats: models.StatFactors{
			HomeAttack: 50, HomeDefense: 50,
			AwayAttack: 50, AwayDefense: 50,
		},
		Standings:  models.StandingFactors{HomePosition: 10, AwayPosition: 10},
		Motivation: models.MotivationFactors{HomeMotivation: 50, AwayMotivation: 50},
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := cfg
	bad.FormWeight = 0.5
	if err := bad.Validate(); err == nil {
		t.Fatal("weights not summing to 1 should be rejected")
	}

	bad = cfg
	bad.PoissonWeight = 1.5
	if err := bad.Validate(); err == nil {
		t.Fatal("poisson weight above 1 should be rejected")
	}
}

func TestMatchResultProbabilitiesSumToOne(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	pr := runPoisson(t, 1.8, 1.1)
	mp := s.MatchResult(evenFactors(), pr)

	var sum float64
	for _, o := range mp.Outcomes {
		sum += o.Probability
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("1X2 probabilities sum = %v, want 1", sum)
	}
	if len(mp.Outcomes) != 3 {
		t.Fatalf("want 3 outcomes, got %d", len(mp.Outcomes))
	}
}

func TestMatchResultFavorsStrongerSide(t *testing.T) {
	s, _ := New(DefaultConfig())
	pr := runPoisson(t, 2.2, 0.8)

	f := evenFactors()
	f.Form.HomeForm = 85
	f.Form.HomeHomeForm = 90
	f.Form.AwayForm = 25
	f.Form.AwayAwayForm = 20
	f.Standings.HomePosition = 2
	f.Standings.AwayPosition = 17

	mp := s.MatchResult(f, pr)
	home := mp.Outcomes[models.PickHome].Probability
	away := mp.Outcomes[models.PickAway].Probability
	if home <= away {
		t.Fatalf("home %v should exceed away %v", home, away)
	}
	if mp.Pick == nil || *mp.Pick != models.PickHome {
		t.Fatalf("expected home pick, got %v", mp.Pick)
	}
}

func TestNoPickBelowConfidenceThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidenceThreshold = 99
	s, _ := New(cfg)
	mp := s.MatchResult(evenFactors(), runPoisson(t, 1.3, 1.3))
	if mp.Pick != nil {
		t.Fatalf("expected no pick at threshold 99, got %v", *mp.Pick)
	}
}

func TestSmallH2HSampleSuppressed(t *testing.T) {
	s, _ := New(DefaultConfig())
	pr := runPoisson(t, 1.5, 1.2)

	f := evenFactors()
	// One lopsided h2h match must not swing the outcome when below the
	// sample threshold.
	f.H2H = models.H2HFactors{TotalMatches: 1, AwayWins: 1}
	withSmall := s.MatchResult(f, pr)

	f.H2H = models.H2HFactors{}
	withNone := s.MatchResult(f, pr)

	delta := math.Abs(withSmall.Outcomes[models.PickAway].Probability - withNone.Outcomes[models.PickAway].Probability)
	if delta > 1e-9 {
		t.Fatalf("small h2h sample changed probabilities by %v", delta)
	}

	found := false
	for _, r := range withSmall.Reasoning {
		if r == "h2h sample too small, contribution suppressed" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected suppression note in reasoning")
	}
}

func TestDegradedInputsLowerConfidence(t *testing.T) {
	s, _ := New(DefaultConfig())
	pr := runPoisson(t, 1.5, 1.2)

	clean := s.MatchResult(evenFactors(), pr)

	f := evenFactors()
	f.Degraded = []string{"form", "standings"}
	degraded := s.MatchResult(f, pr)

	if degraded.Confidence >= clean.Confidence {
		t.Fatalf("degraded confidence %v should be below clean %v", degraded.Confidence, clean.Confidence)
	}
}

func TestOverUnderComplement(t *testing.T) {
	s, _ := New(DefaultConfig())
	pr := runPoisson(t, 1.8, 1.1)
	mp := s.OverUnder(evenFactors(), pr, 2.5)

	over := mp.Outcomes[models.PickOver].Probability
	under := mp.Outcomes[models.PickUnder].Probability
	if math.Abs(over+under-1) > 1e-9 {
		t.Fatalf("over+under = %v, want 1", over+under)
	}
}

func TestBTTSBlendsH2HRate(t *testing.T) {
	s, _ := New(DefaultConfig())
	pr := runPoisson(t, 1.5, 1.3)

	f := evenFactors()
	f.H2H.TotalMatches = 10
	f.H2H.BTTSPercentage = 100
	high := s.BTTS(f, pr).Outcomes[models.PickYes].Probability

	f.H2H.BTTSPercentage = 0
	low := s.BTTS(f, pr).Outcomes[models.PickYes].Probability

	if high <= low {
		t.Fatalf("btts yes with 100%% h2h rate (%v) should exceed 0%% rate (%v)", high, low)
	}
}

func TestDoubleChanceCoversPairs(t *testing.T) {
	s, _ := New(DefaultConfig())
	pr := runPoisson(t, 1.8, 1.1)
	oneXTwo := s.MatchResult(evenFactors(), pr)
	dc := s.DoubleChance(oneXTwo, evenFactors(), pr)

	home := oneXTwo.Outcomes[models.PickHome].Probability
	draw := oneXTwo.Outcomes[models.PickDraw].Probability
	got := dc.Outcomes[models.Pick1X].Probability
	if math.Abs(got-(home+draw)) > 1e-9 {
		t.Fatalf("1X = %v, want home+draw = %v", got, home+draw)
	}
}
