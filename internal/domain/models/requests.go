package models

// Requests for the engine's HTTP endpoints. Defined in domain for
// consistency and reuse.

type PredictRequest struct {
	Fixture FixtureInput  `json:"fixture" validate:"required"`
	Odds    *OddsSnapshot `json:"odds,omitempty"`
}

type BatchPredictRequest struct {
	Fixtures []PredictRequest `json:"fixtures" validate:"required,min=1,max=200,dive"`
}

type KellyRequest struct {
	Odds        float64 `query:"odds" json:"odds" validate:"required,gt=1"`
	Probability float64 `query:"probability" json:"probability" validate:"required,gt=0,lt=1"`
	Bankroll    float64 `query:"bankroll" json:"bankroll" validate:"gte=0"`
}

type CouponRequest struct {
	System              string      `json:"system" validate:"required,oneof=single full 2/3 3/4 2/4"`
	Selections          []Selection `json:"selections" validate:"required,min=1,max=20,dive"`
	StakePerCombination float64     `json:"stake_per_combination" default:"10" validate:"gt=0"`
}

type SimulateRequest struct {
	LambdaHome float64 `query:"lambda_home" json:"lambda_home" validate:"required,gt=0"`
	LambdaAway float64 `query:"lambda_away" json:"lambda_away" validate:"required,gt=0"`
	Runs       int     `query:"runs" json:"runs" default:"10000" validate:"gte=100,lte=1000000"`
	Seed       int64   `query:"seed" json:"seed" default:"1"`
}

type PlaceBetRequest struct {
	FixtureID string  `json:"fixture_id" validate:"required"`
	Market    Market  `json:"market" validate:"required"`
	Pick      string  `json:"pick" validate:"required"`
	Odds      float64 `json:"odds" validate:"required,gt=1"`
	Stake     float64 `json:"stake" validate:"required,gt=0"`
}

type SettleBetRequest struct {
	BetID    string `json:"bet_id" validate:"required"`
	FullTime Score  `json:"full_time"`
	HalfTime Score  `json:"half_time"`
	Void     bool   `json:"void"`
}

type BankrollMoveRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}
