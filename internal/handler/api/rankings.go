package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	domsvc "SwingRank/internal/domain/service"
	"SwingRank/internal/repository"
	"SwingRank/internal/service/metrics"
	"SwingRank/internal/service/ratelimit"
	"SwingRank/internal/usecase"
	xhttp "SwingRank/pkg/http"
	xlogger "SwingRank/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunService runs and serves daily rankings.
type RunService interface {
	Run(ctx context.Context, topN int) (*models.RankingRun, error)
	Latest(ctx context.Context) (*models.RankingRun, error)
}

// SymbolService scores one symbol on demand.
type SymbolService interface {
	EvaluateOne(ctx context.Context, symbol string, period domrepo.Period) (*models.Evaluation, error)
}

// BacktestService replays the rule-only entry logic.
type BacktestService interface {
	Backtest(ctx context.Context, symbol string, days int) (*models.BacktestResult, error)
}

// RankingsHandler exposes rankings, single-symbol evaluation and backtests.
type RankingsHandler struct {
	runs     RunService
	symbols  SymbolService
	backtest BacktestService
	hub      *Hub
	rl       *ratelimit.Limiter
	logger   *xlogger.Logger
}

func NewRankingsHandler(logger *xlogger.Logger, runs RunService, symbols SymbolService, backtest BacktestService, hub *Hub) *RankingsHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &RankingsHandler{runs: runs, symbols: symbols, backtest: backtest, hub: hub, logger: logger}
}

// SetRunLimiter throttles manual runs per client address.
func (h *RankingsHandler) SetRunLimiter(rl *ratelimit.Limiter) { h.rl = rl }

func (h *RankingsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/rankings/latest", h.Latest)
	g.POST("/rankings/run", h.Run)
	g.GET("/symbols/:symbol/evaluation", h.Evaluation)
	g.GET("/backtest", h.Backtest)
	if h.hub != nil {
		e.GET("/ws/rankings", h.hub.ServeWS)
	}
}

func (h *RankingsHandler) Latest(c echo.Context) error {
	defer observe("rankings_latest", time.Now())
	run, err := h.runs.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, "rankings_latest", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, run)
}

func (h *RankingsHandler) Run(c echo.Context) error {
	defer observe("rankings_run", time.Now())
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.rl != nil && !h.rl.Allow(c.RealIP()+":run") {
		h.logger.Warn("rankings.run rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many run requests"))
	}
	run, err := h.runs.Run(c.Request().Context(), req.TopN)
	if err != nil {
		return h.fail(c, "rankings_run", err)
	}
	return xhttp.CreatedResponse(c, run)
}

func (h *RankingsHandler) Evaluation(c echo.Context) error {
	defer observe("symbol_evaluation", time.Now())
	req := &models.EvaluationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ev, err := h.symbols.EvaluateOne(c.Request().Context(), req.Symbol, domrepo.Period(req.Period))
	if err != nil {
		return h.fail(c, "symbol_evaluation", err)
	}
	return xhttp.SuccessResponse(c, ev)
}

func (h *RankingsHandler) Backtest(c echo.Context) error {
	defer observe("backtest", time.Now())
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.backtest.Backtest(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		return h.fail(c, "backtest", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *RankingsHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.APIErrors.WithLabelValues(endpoint).Inc()
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNoRun), errors.Is(err, models.ErrNoData):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrRunInProgress):
		return xhttp.ConflictError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrNotEnoughHistory):
		return xhttp.UnprocessableError("ERR_NOT_ENOUGH_HISTORY", "days", err.Error()).WithError(err)
	case errors.Is(err, domsvc.ErrFeatureContract):
		return xhttp.NewAppError("ERR_FEATURE_CONTRACT", "", "model contract violated", http.StatusInternalServerError).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
