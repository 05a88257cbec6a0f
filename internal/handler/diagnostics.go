package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Diagnostics(c echo.Context) error {
	ctx, span := startSpan(c, "Diagnostics")
	defer span.End()

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return errorJSON(c, span, err)
	}
	return c.JSON(http.StatusOK, snap)
}
