package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	models "OddsEngine/internal/domain/models"
	domrepo "OddsEngine/internal/domain/repository"
	"OddsEngine/internal/engine/coupon"
	"OddsEngine/internal/engine/poisson"
	"OddsEngine/internal/engine/simulate"
	"OddsEngine/internal/engine/value"
	"OddsEngine/internal/usecase"
	pkgcache "OddsEngine/pkg/cache"
	xhttp "OddsEngine/pkg/http"
	xlogger "OddsEngine/pkg/logger"

	"github.com/labstack/echo/v4"
)

// predictCacheTTL bounds staleness of cached market sheets. Odds belong to
// the cache key, so a line move always misses.
const predictCacheTTL = time.Minute

// EngineEchoHandler exposes the prediction engine over HTTP.
type EngineEchoHandler struct {
	logger   *xlogger.Logger
	pred     *usecase.Predictor
	batch    *usecase.BatchScorer
	model    *poisson.Model
	combiner *coupon.Combiner
	kellyCfg value.KellyConfig
	ledger   domrepo.LedgerStore

	// collector is nil when the live feed is disabled.
	collector *usecase.LiveCollector
	// history is nil when ClickHouse persistence is disabled.
	history domrepo.HistoryStore
	// cache is nil when response caching is disabled.
	cache pkgcache.Service
}

func NewEngineEchoHandler(
	logger *xlogger.Logger,
	pred *usecase.Predictor,
	batch *usecase.BatchScorer,
	model *poisson.Model,
	kellyCfg value.KellyConfig,
	ledger domrepo.LedgerStore,
) *EngineEchoHandler {
	return &EngineEchoHandler{
		logger:   logger,
		pred:     pred,
		batch:    batch,
		model:    model,
		combiner: coupon.New(),
		kellyCfg: kellyCfg,
		ledger:   ledger,
	}
}

// SetCollector attaches the live collector for the status endpoint.
func (h *EngineEchoHandler) SetCollector(c *usecase.LiveCollector) { h.collector = c }

// SetHistory attaches the history store for the history endpoint.
func (h *EngineEchoHandler) SetHistory(s domrepo.HistoryStore) { h.history = s }

// SetCache attaches a response cache for Predict.
func (h *EngineEchoHandler) SetCache(c pkgcache.Service) { h.cache = c }

func (h *EngineEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/predict", h.Predict)
	g.POST("/predict/batch", h.PredictBatch)
	g.GET("/kelly", h.Kelly)
	g.POST("/coupon", h.Coupon)
	g.GET("/simulate", h.Simulate)
	g.GET("/bankroll", h.Bankroll)
	g.POST("/bankroll/bets", h.PlaceBet)
	g.POST("/bankroll/settle", h.SettleBet)
	g.POST("/bankroll/deposit", h.Deposit)
	g.POST("/bankroll/withdraw", h.Withdraw)
	g.POST("/value-bets", h.ValueBets)
	g.GET("/live/status", h.LiveStatus)
	g.GET("/live/opportunities", h.LiveOpportunities)
	g.GET("/history/predictions", h.History)
}

func (h *EngineEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	var cacheKey string
	if h.cache != nil {
		if b, err := json.Marshal(req); err == nil {
			cacheKey = pkgcache.GenerateKey("predict", pkgcache.HashKey(string(b)))
			var cached models.PredictionResult
			if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	res, err := h.pred.Predict(ctx, &req.Fixture, req.Odds)
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	if h.cache != nil && cacheKey != "" {
		if err := h.cache.Set(ctx, cacheKey, res, predictCacheTTL); err != nil {
			h.logger.Warn("predict cache set error", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// ValueBets runs a prediction against the supplied odds and returns only
// the value side of the result.
func (h *EngineEchoHandler) ValueBets(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Odds == nil || len(req.Odds.Markets) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("odds are required for value detection"))
	}

	res, err := h.pred.Predict(c.Request().Context(), &req.Fixture, req.Odds)
	if err != nil {
		h.logger.Error("value bets usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, map[string]any{
		"fixture_id": res.FixtureID,
		"value_bets": res.ValueBets,
		"best_bet":   res.BestBet,
	})
}

// LiveOpportunities serves stored live opportunities from ClickHouse.
// Window defaults to the last 6 hours.
func (h *EngineEchoHandler) LiveOpportunities(c echo.Context) error {
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("history_disabled", "", "opportunity history is not enabled", 503))
	}

	now := time.Now()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-6*time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	rows, err := h.history.RecentOpportunities(c.Request().Context(), c.QueryParam("fixture_id"), from, to, limit)
	if err != nil {
		h.logger.Error("opportunity query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, rows)
}

// History serves stored predictions from ClickHouse. Window defaults to
// the last 24 hours, capped at 500 rows.
func (h *EngineEchoHandler) History(c echo.Context) error {
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("history_disabled", "", "prediction history is not enabled", 503))
	}

	now := time.Now()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	rows, err := h.history.RecentPredictions(c.Request().Context(), c.QueryParam("fixture_id"), from, to, limit)
	if err != nil {
		h.logger.Error("history query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, rows)
}

func (h *EngineEchoHandler) PredictBatch(c echo.Context) error {
	req := &models.BatchPredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	reqs := make([]usecase.BatchRequest, len(req.Fixtures))
	for i := range req.Fixtures {
		reqs[i] = usecase.BatchRequest{
			Fixture: &req.Fixtures[i].Fixture,
			Odds:    req.Fixtures[i].Odds,
		}
	}
	return xhttp.SuccessResponse(c, h.batch.ScoreAll(c.Request().Context(), reqs))
}

func (h *EngineEchoHandler) Kelly(c echo.Context) error {
	req := &models.KellyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bankroll := req.Bankroll
	if bankroll == 0 {
		bal, err := h.ledger.Balance(c.Request().Context())
		if err != nil {
			h.logger.Error("kelly balance error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, toAppError(err))
		}
		bankroll = bal
	}

	res, err := value.Kelly(h.kellyCfg, bankroll, req.Odds, req.Probability)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, res)
}

// couponResponse augments the priced layout with the settled payout when
// every selection already has a result.
type couponResponse struct {
	*models.CouponSystemResult
	Payout *float64 `json:"payout,omitempty"`
}

func (h *EngineEchoHandler) Coupon(c echo.Context) error {
	req := &models.CouponRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	system := models.SystemType(req.System)
	res, err := h.combiner.Price(system, req.Selections, req.StakePerCombination)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	out := couponResponse{CouponSystemResult: res}
	settled := len(req.Selections) > 0
	for _, s := range req.Selections {
		if s.Won == nil {
			settled = false
		}
	}
	if settled {
		payout, err := h.combiner.Settle(system, req.Selections, req.StakePerCombination)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		out.Payout = &payout
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *EngineEchoHandler) Simulate(c echo.Context) error {
	req := &models.SimulateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	grid := h.model.Run(req.LambdaHome, req.LambdaAway)
	sum, err := simulate.New(req.Seed).Run(grid, req.Runs)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, sum)
}

func (h *EngineEchoHandler) Bankroll(c echo.Context) error {
	snap, err := h.ledger.Snapshot(c.Request().Context())
	if err != nil {
		h.logger.Error("bankroll snapshot error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *EngineEchoHandler) PlaceBet(c echo.Context) error {
	req := &models.PlaceBetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bet := &models.Bet{
		FixtureID: req.FixtureID,
		Market:    req.Market,
		Pick:      models.Pick(req.Pick),
		Odds:      req.Odds,
		Stake:     req.Stake,
	}
	if err := h.ledger.PlaceBet(c.Request().Context(), bet); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.CreatedResponse(c, bet)
}

func (h *EngineEchoHandler) SettleBet(c echo.Context) error {
	req := &models.SettleBetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		bet *models.Bet
		err error
	)
	if req.Void {
		bet, err = h.ledger.VoidBet(c.Request().Context(), req.BetID)
	} else {
		bet, err = h.ledger.SettleBet(c.Request().Context(), req.BetID, req.FullTime, req.HalfTime)
	}
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, bet)
}

func (h *EngineEchoHandler) Deposit(c echo.Context) error {
	return h.move(c, h.ledger.Deposit)
}

func (h *EngineEchoHandler) Withdraw(c echo.Context) error {
	return h.move(c, h.ledger.Withdraw)
}

func (h *EngineEchoHandler) move(c echo.Context, fn func(ctx context.Context, amount float64) error) error {
	req := &models.BankrollMoveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := fn(c.Request().Context(), req.Amount); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	snap, err := h.ledger.Snapshot(c.Request().Context())
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *EngineEchoHandler) LiveStatus(c echo.Context) error {
	status := map[string]interface{}{"enabled": h.collector != nil}
	if h.collector != nil {
		status["connected"] = h.collector.IsConnected()
	}
	return xhttp.SuccessResponse(c, status)
}

// toAppError keeps input problems as 400s and everything else as 500s.
func toAppError(err error) error {
	var inv *models.InvalidInputError
	if errors.As(err, &inv) {
		return xhttp.BadRequestError(inv.Error())
	}
	return xhttp.InternalError(err.Error())
}
