package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightquery/internal/diagnostics"
	"github.com/dharmasatrya/flightquery/internal/logger"
	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

func (h *Handler) CreateToken(c echo.Context) error {
	ctx, span := startSpan(c, "CreateToken")
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

	token, err := tfs.Encode(q)
	if err != nil {
		logger.WithTrace(ctx).Info("query rejected", zap.Error(err))
		h.incr(ctx, diagnostics.CounterTokenErrors)
		return errorJSON(c, span, err)
	}
	h.incr(ctx, diagnostics.CounterTokensIssued)

	normalized := tfs.Normalize(q)
	params := tfs.RequestParams(token, req.Session, h.language(req.Language), h.currency(req.Currency))

	span.AddEvent("token encoded")
	return c.JSON(http.StatusCreated, models.TokenResponse{
		Token:  token.String(),
		Params: flatten(params),
		Query:  normalized,
	})
}

// DescribeToken decodes a token taken from a service URL back into a query.
func (h *Handler) DescribeToken(c echo.Context) error {
	ctx, span := startSpan(c, "DescribeToken")
	defer span.End()

	token := tfs.Token(c.Param("token"))
	q, err := tfs.Decode(token)
	if err != nil {
		logger.WithTrace(ctx).Info("token rejected", zap.String("token", token.String()), zap.Error(err))
		h.incr(ctx, diagnostics.CounterTokenErrors)
		return errorJSON(c, span, err)
	}
	h.incr(ctx, diagnostics.CounterTokensRead)

	session := models.SessionToken(c.QueryParam("session"))
	params := tfs.RequestParams(token, session, h.language(c.QueryParam("language")), h.currency(c.QueryParam("currency")))

	return c.JSON(http.StatusOK, models.TokenResponse{
		Token:  token.String(),
		Params: flatten(params),
		Query:  q,
	})
}
