package api

import (
	"strconv"
	"strings"

	models "AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
	"AlbionPulse/internal/usecase"
	xhttp "AlbionPulse/pkg/http"
	xlogger "AlbionPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler exposes the pipeline's read surface over HTTP. Every
// endpoint returns a complete result or an empty one plus a logged
// diagnostic; raw faults never reach the client.
type MarketEchoHandler struct {
	logger *xlogger.Logger
	market *usecase.MarketService
	flips  *usecase.FlipFinder
	store  drepo.MarketStore
}

func NewMarketEchoHandler(logger *xlogger.Logger, market *usecase.MarketService, flips *usecase.FlipFinder, store drepo.MarketStore) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, market: market, flips: flips, store: store}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/flips", h.Flips)
	g.GET("/prices", h.Prices)
	g.GET("/gold", h.Gold)
	g.GET("/builds", h.Builds)
	e.GET("/healthz", h.Health)
}

func (h *MarketEchoHandler) Flips(c echo.Context) error {
	req := &models.FlipsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	opps, err := h.flips.FindFlips(
		c.Request().Context(),
		splitList(req.Items),
		splitList(req.Cities),
		splitInts(req.Qualities),
		req.MinROI,
		req.Max,
	)
	if err != nil {
		h.logger.Error("flips usecase error", xlogger.Error(err))
		opps = []models.ArbitrageOpportunity{}
	}
	return xhttp.ListResponse(c, opps, int64(len(opps)))
}

func (h *MarketEchoHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	quotes, err := h.market.GetPrices(
		c.Request().Context(),
		splitList(req.Items),
		splitList(req.Cities),
		splitInts(req.Qualities),
	)
	if err != nil {
		h.logger.Error("prices usecase error", xlogger.Error(err))
		quotes = []*models.PriceQuote{}
	}
	return xhttp.ListResponse(c, quotes, int64(len(quotes)))
}

func (h *MarketEchoHandler) Gold(c echo.Context) error {
	req := &models.GoldRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	golds, err := h.market.GoldHistory(c.Request().Context(), req.Hours)
	if err != nil {
		h.logger.Error("gold usecase error", xlogger.Error(err))
		golds = []*models.GoldQuote{}
	}
	return xhttp.ListResponse(c, golds, int64(len(golds)))
}

func (h *MarketEchoHandler) Builds(c echo.Context) error {
	req := &models.BuildsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	aggs, err := h.store.QueryAggregates(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("builds query error", xlogger.Error(err))
		aggs = []*models.BuildAggregate{}
	}
	return xhttp.ListResponse(c, aggs, int64(len(aggs)))
}

func (h *MarketEchoHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return xhttp.DataResponse(c, 503, map[string]string{"status": "degraded"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitInts(s string) []int {
	var out []int
	for _, p := range splitList(s) {
		if v, err := strconv.Atoi(p); err == nil {
			out = append(out, v)
		}
	}
	return out
}
