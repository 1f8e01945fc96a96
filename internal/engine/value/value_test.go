package value

import (
	"math"
	"testing"

	"OddsEngine/internal/domain/models"
)

func TestImpliedProbabilitiesRemoveOverround(t *testing.T) {
	implied, err := ImpliedProbabilities(map[models.Pick]float64{
		models.PickHome: 1.90,
		models.PickDraw: 3.40,
		models.PickAway: 4.20,
	})
	if err != nil {
		t.Fatalf("implied: %v", err)
	}
	var sum float64
	for _, p := range implied {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("implied probabilities sum = %v, want 1", sum)
	}
	if implied[models.PickHome] >= 1/1.90 {
		t.Fatalf("overround not removed: %v >= raw %v", implied[models.PickHome], 1/1.90)
	}

	if _, err := ImpliedProbabilities(map[models.Pick]float64{models.PickHome: 0.9}); err == nil {
		t.Fatal("odds below 1 should be rejected")
	}
	if _, err := ImpliedProbabilities(nil); err == nil {
		t.Fatal("empty price set should be rejected")
	}
}

func TestEdgeAgainstBookmakerPrices(t *testing.T) {
	implied, _ := ImpliedProbabilities(map[models.Pick]float64{
		models.PickHome: 1.90,
		models.PickDraw: 3.40,
		models.PickAway: 4.20,
	})
	edge := Edge(0.58, implied[models.PickHome])
	if edge < 15.5 || edge > 17.5 {
		t.Fatalf("edge = %v, want about +16%%", edge)
	}
}

func scanFixture(modelHome float64) ([]ValueBet, *models.PredictionResult) {
	pick := models.PickHome
	pred := &models.PredictionResult{
		FixtureID: "fx-1",
		Markets: []models.MarketPrediction{{
			Market: models.MatchResult(),
			Outcomes: map[models.Pick]models.MarketProbability{
				models.PickHome: {Probability: modelHome},
				models.PickDraw: {Probability: (1 - modelHome) * 0.55},
				models.PickAway: {Probability: (1 - modelHome) * 0.45},
			},
			Pick:       &pick,
			Confidence: 70,
		}},
	}
	snapshot := &models.OddsSnapshot{
		FixtureID: "fx-1",
		Markets: []models.MarketOdds{{
			Market: models.MatchResult(),
			Prices: map[models.Pick]float64{
				models.PickHome: 1.90,
				models.PickDraw: 3.40,
				models.PickAway: 4.20,
			},
		}},
	}
	return New(DefaultConfig()).Scan(pred, snapshot), pred
}

func TestScanFindsHighTierValue(t *testing.T) {
	bets, _ := scanFixture(0.58)

	var home *ValueBet
	for i := range bets {
		if bets[i].Pick == models.PickHome {
			home = &bets[i]
		}
	}
	if home == nil {
		t.Fatal("expected a home value bet")
	}
	if home.Tier != TierHigh {
		t.Fatalf("tier = %s, want high for a ~16%% edge", home.Tier)
	}
	if home.Implausible {
		t.Fatal("16% edge should not be flagged implausible")
	}
}

func TestFairOddsReproduceEdge(t *testing.T) {
	bets, _ := scanFixture(0.58)

	var home *ValueBet
	for i := range bets {
		if bets[i].Pick == models.PickHome {
			home = &bets[i]
		}
	}
	if home == nil {
		t.Fatal("expected a home value bet")
	}
	if home.FairOdds <= 1 {
		t.Fatalf("fair odds = %v, want > 1", home.FairOdds)
	}
	if math.Abs(home.FairOdds-1/home.ImpliedProb) > 1e-9 {
		t.Fatalf("fair odds = %v, want 1/implied = %v", home.FairOdds, 1/home.ImpliedProb)
	}
	// Inverting the fair odds must give back the overround-free implied
	// probability, so the edge is reproducible from the published fields.
	implied := 1 / home.FairOdds
	recomputed := (home.ModelProb - implied) / implied * 100
	if math.Abs(recomputed-home.Edge) > 1e-9 {
		t.Fatalf("edge recomputed from fair odds = %v, want %v", recomputed, home.Edge)
	}
}

func TestScanSkipsThinEdges(t *testing.T) {
	// Model barely above implied: below the 5% floor, no home entry.
	bets, _ := scanFixture(0.51)
	for _, vb := range bets {
		if vb.Pick == models.PickHome {
			t.Fatalf("thin edge should be dropped, got %+v", vb)
		}
	}
}

func TestScanFlagsImplausibleEdge(t *testing.T) {
	bets, _ := scanFixture(0.90)
	for _, vb := range bets {
		if vb.Pick == models.PickHome && !vb.Implausible {
			t.Fatalf("80%%+ edge should be flagged implausible: %+v", vb)
		}
	}
}

func TestScanSkipsUnpricedMarkets(t *testing.T) {
	pred := &models.PredictionResult{
		Markets: []models.MarketPrediction{{
			Market: models.OverUnder(2.5),
			Outcomes: map[models.Pick]models.MarketProbability{
				models.PickOver: {Probability: 0.7},
			},
		}},
	}
	snapshot := &models.OddsSnapshot{Markets: []models.MarketOdds{{
		Market: models.MatchResult(),
		Prices: map[models.Pick]float64{models.PickHome: 2.0, models.PickDraw: 3.2, models.PickAway: 3.8},
	}}}
	if bets := New(DefaultConfig()).Scan(pred, snapshot); bets != nil {
		t.Fatalf("unpriced market should yield nothing, got %v", bets)
	}
}

func TestSuggestPrefersStrongestPlausibleEdge(t *testing.T) {
	bets, pred := scanFixture(0.58)
	sug := New(DefaultConfig()).Suggest(pred.FixtureID, bets)
	if sug == nil {
		t.Fatal("expected a suggestion")
	}
	if sug.Pick != models.PickHome {
		t.Fatalf("suggestion pick = %s, want home", sug.Pick)
	}
	if sug.Stake != models.StakeMedium {
		t.Fatalf("stake level = %s, want medium for high tier", sug.Stake)
	}

	implausible, pred2 := scanFixture(0.90)
	if sug := New(DefaultConfig()).Suggest(pred2.FixtureID, implausible); sug != nil && sug.Pick == models.PickHome {
		t.Fatal("implausible edge should not drive the suggestion")
	}
}
