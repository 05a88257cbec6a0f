package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightquery/internal/diagnostics"
	"github.com/dharmasatrya/flightquery/internal/filter"
	"github.com/dharmasatrya/flightquery/internal/logger"
	"github.com/dharmasatrya/flightquery/internal/models"
)

func (h *Handler) DecodeResult(c echo.Context) error {
	startTime := time.Now()
	ctx, span := startSpan(c, "DecodeResult")
	defer span.End()

	res, req, err := h.decodeRequest(ctx, c, span)
	if res == nil {
		return err
	}
	return c.JSON(http.StatusOK, filteredResponse(res, req.Filters, req.SortBy, req.SortOrder, startTime))
}

// decodeRequest binds and decodes a DecodeResultRequest. A nil result means
// the error response has already been written; return the error as is.
func (h *Handler) decodeRequest(ctx context.Context, c echo.Context, span trace.Span) (*models.DecodedResult, models.DecodeResultRequest, error) {
	var req models.DecodeResultRequest
	if err := c.Bind(&req); err != nil {
		return nil, req, badRequest(c, span, err)
	}
	if err := req.Validate(); err != nil {
		return nil, req, errorJSON(c, span, err)
	}
	body, err := req.Body()
	if err != nil {
		return nil, req, badRequest(c, span, err)
	}

	res, err := h.decoder.DecodeBody(body, req.Session)
	if err != nil {
		logger.WithTrace(ctx).Warn("result payload rejected", zap.Error(err))
		return nil, req, errorJSON(c, span, err)
	}
	h.recordDecode(ctx, span, res, req.Session)
	return res, req, nil
}

func (h *Handler) recordDecode(ctx context.Context, span trace.Span, res *models.DecodedResult, session models.SessionToken) {
	if loss := res.Loss(); loss != nil {
		logger.WithTrace(ctx).Warn("partial decode", zap.Error(loss))
		span.AddEvent(loss.Error())
	}
	if err := h.store.RecordDecode(ctx, diagnostics.ReportFor(res, session)); err != nil {
		logger.WithTrace(ctx).Warn("record decode failed", zap.Error(err))
	}
}

// filterResult applies filters and sorting to each bucket separately.
func filterResult(res *models.DecodedResult, filters *models.SearchFilters, sortBy, sortOrder string) *models.DecodedResult {
	return &models.DecodedResult{
		Best:    filter.Apply(res.Best, filters, sortBy, sortOrder),
		Other:   filter.Apply(res.Other, filters, sortBy, sortOrder),
		Dropped: res.Dropped,
		Drops:   res.Drops,
	}
}

func filteredResponse(res *models.DecodedResult, filters *models.SearchFilters, sortBy, sortOrder string, startTime time.Time) models.DecodeResultResponse {
	out := filterResult(res, filters, sortBy, sortOrder)
	return models.DecodeResultResponse{
		Metadata: metadata(out, startTime),
		Best:     out.Best,
		Other:    out.Other,
		Drops:    out.Drops,
	}
}

func metadata(res *models.DecodedResult, startTime time.Time) models.DecodeMetadata {
	return models.DecodeMetadata{
		TotalResults: len(res.Best) + len(res.Other),
		Best:         len(res.Best),
		Other:        len(res.Other),
		Dropped:      res.Dropped,
		DecodeTimeMs: time.Since(startTime).Milliseconds(),
	}
}
