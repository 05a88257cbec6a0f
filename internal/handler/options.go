package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/options"
)

type ReturnOptionsResponse struct {
	Metadata models.DecodeMetadata  `json:"metadata"`
	Options  []options.ReturnOption `json:"options"`
}

// ReturnOptions decodes a result page into flat option rows, best first.
func (h *Handler) ReturnOptions(c echo.Context) error {
	startTime := time.Now()
	ctx, span := startSpan(c, "ReturnOptions")
	defer span.End()

	res, req, err := h.decodeRequest(ctx, c, span)
	if res == nil {
		return err
	}
	out := filterResult(res, req.Filters, req.SortBy, req.SortOrder)

	return c.JSON(http.StatusOK, ReturnOptionsResponse{
		Metadata: metadata(out, startTime),
		Options:  options.FromResult(out),
	})
}
