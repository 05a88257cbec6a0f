package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightquery/internal/logger"
	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/options"
	"github.com/dharmasatrya/flightquery/internal/search"
)

type SearchResponse struct {
	Token    string                 `json:"token"`
	Session  models.SessionToken    `json:"session,omitempty"`
	Attempts int                    `json:"attempts"`
	Metadata models.DecodeMetadata  `json:"metadata"`
	Best     []models.Itinerary     `json:"best"`
	Other    []models.Itinerary     `json:"other"`
	Drops    []models.Drop          `json:"drops,omitempty"`
	Options  []options.ReturnOption `json:"options"`
}

func searchResponse(res *search.Result, startTime time.Time) SearchResponse {
	return SearchResponse{
		Token:    res.Token.String(),
		Session:  res.Session,
		Attempts: res.Attempts,
		Metadata: metadata(res.Decoded, startTime),
		Best:     res.Decoded.Best,
		Other:    res.Decoded.Other,
		Drops:    res.Decoded.Drops,
		Options:  options.FromResult(res.Decoded),
	}
}

// Search encodes the query and fetches its first result page.
func (h *Handler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx, span := startSpan(c, "Search")
	defer span.End()

	var req models.TokenRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, span, err)
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, span, err)
	}
	q, err := req.ToQuery()
	if err != nil {
		return errorJSON(c, span, err)
	}

	res, err := h.search.Search(ctx, q, req.Session)
	if err != nil {
		logger.WithTrace(ctx).Warn("search failed", zap.Error(err))
		return errorJSON(c, span, err)
	}
	return c.JSON(http.StatusOK, searchResponse(res, startTime))
}

// SearchReturn fetches the return flights for a chosen outbound itinerary.
func (h *Handler) SearchReturn(c echo.Context) error {
	startTime := time.Now()
	ctx, span := startSpan(c, "SearchReturn")
	defer span.End()

	var req ReturnQueryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, span, err)
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, span, err)
	}
	if req.Itinerary == nil {
		return errorJSON(c, span, models.ErrMissingItinerary)
	}
	opts, err := h.returnOptions(req)
	if err != nil {
		return errorJSON(c, span, err)
	}

	outbound := *req.Itinerary
	if outbound.Session == "" {
		outbound.Session = req.Session
	}
	res, err := h.search.SearchReturn(ctx, outbound, req.ReturnDate, opts)
	if err != nil {
		logger.WithTrace(ctx).Warn("return search failed", zap.Error(err))
		return errorJSON(c, span, err)
	}
	return c.JSON(http.StatusOK, searchResponse(res, startTime))
}
