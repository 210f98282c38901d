package api

import (
	"encoding/json"
	"strconv"
	"time"

	models "BotBourse/internal/domain/models"
	domrepo "BotBourse/internal/domain/repository"
	icache "BotBourse/internal/service/cache"
	"BotBourse/internal/service/metrics"
	"BotBourse/internal/service/ratelimit"
	"BotBourse/internal/usecase"
	xhttp "BotBourse/pkg/http"
	xlogger "BotBourse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyticsEchoHandler exposes the analytics engine over Echo.
type AnalyticsEchoHandler struct {
	logger  *xlogger.Logger
	uc      *usecase.AnalyticsUseCase
	candles *usecase.CandlesUseCase
	quotes  domrepo.Storage
	cache   icache.BytesCache
	rl      *ratelimit.Limiter
}

func NewAnalyticsEchoHandler(logger *xlogger.Logger, uc *usecase.AnalyticsUseCase, candles *usecase.CandlesUseCase) *AnalyticsEchoHandler {
	metrics.Register()
	return &AnalyticsEchoHandler{logger: logger, uc: uc, candles: candles, rl: ratelimit.New()}
}

// SetCache injects an optional response byte cache (Redis in production).
func (h *AnalyticsEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetQuoteStore enables the raw quotes endpoint backed by stream storage.
func (h *AnalyticsEchoHandler) SetQuoteStore(s domrepo.Storage) { h.quotes = s }

func (h *AnalyticsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/screener", h.Screener)
	g.GET("/sectors", h.Sectors)
	g.GET("/watchlist", h.Watchlist)
	g.GET("/candles", h.Candles)
	g.GET("/quotes", h.Quotes)
	g.POST("/portfolio/metrics", h.PortfolioMetrics)
	g.POST("/portfolio/resolve", h.PortfolioResolve)
}

func (h *AnalyticsEchoHandler) Screener(c echo.Context) error {
	start := time.Now()
	endpoint := "screener"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":screener", 10, 4) {
		return xhttp.TooManyRequestsResponse(c, "rate limited")
	}
	req := &models.ScreenerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Screen(c.Request().Context(), *req)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("screener usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Sectors(c echo.Context) error {
	start := time.Now()
	endpoint := "sectors"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":sectors", 10, 4) {
		return xhttp.TooManyRequestsResponse(c, "rate limited")
	}
	res, err := h.uc.Sectors(c.Request().Context())
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("sectors usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Watchlist(c echo.Context) error {
	start := time.Now()
	endpoint := "watchlist"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":watchlist", 10, 4) {
		return xhttp.TooManyRequestsResponse(c, "rate limited")
	}
	req := &models.WatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Watchlist(c.Request().Context(), *req)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("watchlist usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Candles(c echo.Context) error {
	start := time.Now()
	endpoint := "candles"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":candles", 5, 2) {
		return xhttp.TooManyRequestsResponse(c, "rate limited")
	}
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := "candles:" + req.Ticker + ":" + strconv.Itoa(req.Days)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("candles cache_get_error", xlogger.Error(err))
		} else if ok {
			var cached usecase.GetCandlesResult
			if err := json.Unmarshal(b, &cached); err == nil {
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{Ticker: req.Ticker, Days: req.Days})
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if h.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 60*time.Second); err != nil {
				h.logger.Warn("candles cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// Quotes returns recent streamed quotes for a ticker from storage.
func (h *AnalyticsEchoHandler) Quotes(c echo.Context) error {
	start := time.Now()
	endpoint := "quotes"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if h.quotes == nil {
		return xhttp.NotFoundResponse(c, "quotes storage not configured")
	}
	if !h.rl.Allow(c.RealIP()+":quotes", 5, 2) {
		return xhttp.TooManyRequestsResponse(c, "rate limited")
	}
	ticker := c.QueryParam("ticker")
	if ticker == "" {
		return xhttp.BadRequestResponse(c, "ticker required")
	}
	now := time.Now()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 500)

	res, err := h.quotes.Query(c.Request().Context(), ticker, from, to, limit)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("quotes query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) PortfolioMetrics(c echo.Context) error {
	start := time.Now()
	endpoint := "portfolio_metrics"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":pmetrics", 5, 2) {
		return xhttp.TooManyRequestsResponse(c, "rate limited")
	}
	req := &models.PortfolioMetricsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.PortfolioMetrics(c.Request().Context(), *req)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("portfolio metrics usecase error", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) PortfolioResolve(c echo.Context) error {
	start := time.Now()
	endpoint := "portfolio_resolve"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":presolve", 5, 2) {
		return xhttp.TooManyRequestsResponse(c, "rate limited")
	}
	req := &models.PortfolioResolveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.PortfolioResolve(c.Request().Context(), *req)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("portfolio resolve usecase error", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, res)
}
