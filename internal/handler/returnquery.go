package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightquery/internal/diagnostics"
	"github.com/dharmasatrya/flightquery/internal/logger"
	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/returnflow"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

// ReturnQueryRequest selects an outbound flight, either as a decoded
// itinerary or as an explicit selection, and asks for its return search.
type ReturnQueryRequest struct {
	Itinerary           *models.Itinerary    `json:"itinerary,omitempty"`
	Outbound            *returnflow.Outbound `json:"outbound,omitempty"`
	Session             models.SessionToken  `json:"session,omitempty"`
	ReturnDate          models.Date          `json:"return_date"`
	CabinClass          string               `json:"cabin_class"`
	Passengers          *models.Passengers   `json:"passengers,omitempty"`
	ExcludeBasicEconomy bool                 `json:"exclude_basic_economy"`
	MaxStops            *int                 `json:"max_stops,omitempty"`
	Currency            string               `json:"currency,omitempty"`
	Language            string               `json:"language,omitempty"`
}

func (r *ReturnQueryRequest) Validate() error {
	if r.Itinerary == nil && r.Outbound == nil {
		return models.ErrMissingItinerary
	}
	if r.ReturnDate.IsZero() {
		return models.ErrMissingReturnDate
	}
	if r.Passengers == nil {
		r.Passengers = &models.Passengers{Adults: 1}
	}
	return nil
}

// returnOptions expects a validated request.
func (h *Handler) returnOptions(req ReturnQueryRequest) (returnflow.Options, error) {
	cabin, err := models.ParseCabinClass(req.CabinClass)
	if err != nil {
		return returnflow.Options{}, models.ValidationError(err.Error())
	}
	return returnflow.Options{
		Cabin:               cabin,
		Passengers:          *req.Passengers,
		ExcludeBasicEconomy: req.ExcludeBasicEconomy,
		MaxStops:            req.MaxStops,
		Currency:            h.currency(req.Currency),
		Language:            h.language(req.Language),
	}, nil
}

type ReturnQueryResponse struct {
	Token   string              `json:"token"`
	Session models.SessionToken `json:"session,omitempty"`
	Params  map[string]string   `json:"params"`
	Route   string              `json:"route"`
	Summary *returnflow.Summary `json:"summary"`
}

func (h *Handler) CreateReturnQuery(c echo.Context) error {
	ctx, span := startSpan(c, "CreateReturnQuery")
	defer span.End()

	var req ReturnQueryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, span, err)
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, span, err)
	}
	opts, err := h.returnOptions(req)
	if err != nil {
		return errorJSON(c, span, err)
	}

	var next returnflow.Request
	if req.Itinerary != nil {
		next, err = returnflow.Continue(*req.Itinerary, req.ReturnDate, opts)
		if next.Session == "" {
			next.Session = req.Session
		}
	} else {
		next.Token, err = returnflow.BuildReturnQuery(*req.Outbound, req.ReturnDate, opts)
		next.Session, next.Language, next.Currency = req.Session, opts.Language, opts.Currency
	}
	if err != nil {
		logger.WithTrace(ctx).Info("return query rejected", zap.Error(err))
		h.incr(ctx, diagnostics.CounterTokenErrors)
		return errorJSON(c, span, err)
	}
	h.incr(ctx, diagnostics.CounterTokensIssued)

	summary, err := returnflow.Describe(next.Token)
	if err != nil {
		return errorJSON(c, span, err)
	}

	return c.JSON(http.StatusCreated, ReturnQueryResponse{
		Token:   next.Token.String(),
		Session: next.Session,
		Params:  flatten(next.Params()),
		Route:   summary.Route(),
		Summary: summary,
	})
}

func (h *Handler) DescribeReturnQuery(c echo.Context) error {
	ctx, span := startSpan(c, "DescribeReturnQuery")
	defer span.End()

	token := tfs.Token(c.Param("token"))
	summary, err := returnflow.Describe(token)
	if err != nil {
		h.incr(ctx, diagnostics.CounterTokenErrors)
		return errorJSON(c, span, err)
	}
	h.incr(ctx, diagnostics.CounterTokensRead)

	session := models.SessionToken(c.QueryParam("session"))
	return c.JSON(http.StatusOK, ReturnQueryResponse{
		Token:   token.String(),
		Session: session,
		Params:  flatten(tfs.RequestParams(token, session, h.language(c.QueryParam("language")), h.currency(c.QueryParam("currency")))),
		Route:   summary.Route(),
		Summary: summary,
	})
}
