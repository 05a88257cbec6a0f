package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightquery/internal/decoder"
	"github.com/dharmasatrya/flightquery/internal/diagnostics"
	"github.com/dharmasatrya/flightquery/internal/logger"
	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/search"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

const tracerName = "flightquery/handler"

// Defaults fill currency and language when a request leaves them empty.
type Defaults struct {
	Currency string
	Language string
}

type Handler struct {
	decoder  *decoder.Decoder
	store    diagnostics.Store
	defaults Defaults
	search   *search.Client
}

type Option func(*Handler)

// WithSearch enables the routes that fetch result pages through c.
func WithSearch(c *search.Client) Option {
	return func(h *Handler) {
		h.search = c
	}
}

func NewHandler(dec *decoder.Decoder, store diagnostics.Store, defaults Defaults, opts ...Option) *Handler {
	if dec == nil {
		dec = decoder.New()
	}
	if store == nil {
		store = diagnostics.NewNoOpStore()
	}
	h := &Handler{
		decoder:  dec,
		store:    store,
		defaults: defaults,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/tokens", h.CreateToken)
	api.GET("/tokens/:token", h.DescribeToken)
	api.POST("/results/decode", h.DecodeResult)
	api.POST("/return-options", h.ReturnOptions)
	api.POST("/return-queries", h.CreateReturnQuery)
	api.GET("/return-queries/:token", h.DescribeReturnQuery)
	api.GET("/diagnostics", h.Diagnostics)
	if h.search != nil {
		api.POST("/searches", h.Search)
		api.POST("/searches/return", h.SearchReturn)
	}
	e.GET("/health", HealthHandler)
}

func startSpan(c echo.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(c.Request().Context(), name)
}

func (h *Handler) currency(code string) string {
	if code != "" {
		return code
	}
	return h.defaults.Currency
}

func (h *Handler) language(lang string) string {
	if lang != "" {
		return lang
	}
	return h.defaults.Language
}

func (h *Handler) incr(ctx context.Context, counter string) {
	if err := h.store.Incr(ctx, counter); err != nil {
		logger.WithTrace(ctx).Warn("diagnostics counter failed", zap.String("counter", counter), zap.Error(err))
	}
}

func flatten(v url.Values) map[string]string {
	out := make(map[string]string, len(v))
	for k := range v {
		out[k] = v.Get(k)
	}
	return out
}

// errorJSON maps codec and decoder errors onto the API's error responses.
func errorJSON(c echo.Context, span trace.Span, err error) error {
	span.RecordError(err)

	resp := models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	}

	var verr models.ValidationError
	var ferr *search.FetchError
	switch {
	case errors.As(err, &verr):
		resp.Error, resp.Code = "validation_error", http.StatusBadRequest
	case errors.Is(err, tfs.ErrInvalidQuery):
		resp.Error, resp.Code = "invalid_query", http.StatusBadRequest
	case errors.Is(err, tfs.ErrMalformedToken), errors.Is(err, tfs.ErrTruncatedToken):
		resp.Error, resp.Code = "invalid_token", http.StatusBadRequest
	case errors.Is(err, decoder.ErrUnrecognizedPayloadShape):
		resp.Error, resp.Code = "unrecognized_payload", http.StatusUnprocessableEntity
	case errors.As(err, &ferr):
		resp.Error, resp.Code = "fetch_error", http.StatusBadGateway
	}

	return c.JSON(resp.Code, resp)
}

func badRequest(c echo.Context, span trace.Span, err error) error {
	span.RecordError(err)
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: "Failed to parse request body: " + err.Error(),
		Code:    http.StatusBadRequest,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
