// Package returnflow turns a chosen outbound itinerary into the query that
// searches its return flights.
package returnflow

import (
	"errors"
	"net/url"

	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

var ErrNoSelection = errors.New("itinerary has no selectable flight")

// Segment is one flight of the outbound itinerary after the first.
// Destination and Date may be left empty and are inferred.
type Segment struct {
	Airline      string      `json:"airline"`
	FlightNumber string      `json:"flight_number"`
	Origin       string      `json:"origin"`
	Destination  string      `json:"destination,omitempty"`
	Date         models.Date `json:"date,omitempty"`
}

// Outbound describes the chosen outbound flight. Origin and Destination are
// the airports flown. SearchOrigin and SearchDestination are the places the
// outbound search used, when those were city ids rather than airports.
type Outbound struct {
	Date         models.Date `json:"date"`
	Origin       string      `json:"origin"`
	Destination  string      `json:"destination"`
	Airline      string      `json:"airline"`
	FlightNumber string      `json:"flight_number"`
	Connecting   []Segment   `json:"connecting,omitempty"`

	SearchOrigin      string `json:"search_origin,omitempty"`
	SearchDestination string `json:"search_destination,omitempty"`
}

// Options repeats the settings of the outbound search. Keeping them equal to
// the outbound search is up to the caller.
type Options struct {
	Cabin               models.CabinClass
	Passengers          models.Passengers
	ExcludeBasicEconomy bool
	MaxStops            *int
	Currency            string
	Language            string
	Limits              *models.Limits
}

// Query builds the two-leg round-trip query: leg 1 carries the selection,
// leg 2 is an open search back on returnDate.
func Query(out Outbound, returnDate models.Date, opts Options) (models.SearchQuery, error) {
	if !out.Date.IsZero() && !returnDate.IsZero() && returnDate.Time().Before(out.Date.Time()) {
		return models.SearchQuery{}, &tfs.QueryError{Field: "return_date", Msg: returnDate.String() + " is before the outbound flight on " + out.Date.String()}
	}

	from, to := out.SearchOrigin, out.SearchDestination
	if from == "" {
		from = out.Origin
	}
	if to == "" {
		to = out.Destination
	}

	selected := &models.SelectedFlight{
		Airline:      out.Airline,
		FlightNumber: out.FlightNumber,
		Origin:       out.Origin,
		Destination:  out.Destination,
		Date:         out.Date,
	}
	if len(out.Connecting) > 0 && out.Connecting[0].Origin != "" {
		selected.Destination = out.Connecting[0].Origin
	}

	outbound := models.Leg{
		Date:        out.Date,
		Origin:      from,
		Destination: to,
		Selected:    selected,
		Connecting:  connecting(out),
	}
	inbound := models.Leg{
		Date:        returnDate,
		Origin:      to,
		Destination: from,
	}

	return models.SearchQuery{
		Trip:                models.TripRoundTrip,
		Legs:                []models.Leg{outbound, inbound},
		Passengers:          opts.Passengers,
		Cabin:               opts.Cabin,
		MaxStops:            opts.MaxStops,
		ExcludeBasicEconomy: opts.ExcludeBasicEconomy,
		Currency:            opts.Currency,
		Language:            opts.Language,
		Limits:              opts.Limits,
	}, nil
}

// connecting fills each segment's destination from the next segment's origin,
// and the last one from the outbound destination.
func connecting(out Outbound) []models.ConnectingSegment {
	if len(out.Connecting) == 0 {
		return nil
	}
	segs := make([]models.ConnectingSegment, len(out.Connecting))
	for i, s := range out.Connecting {
		dest := s.Destination
		if dest == "" {
			if i+1 < len(out.Connecting) {
				dest = out.Connecting[i+1].Origin
			} else {
				dest = out.Destination
			}
		}
		date := s.Date
		if date.IsZero() {
			date = out.Date
		}
		segs[i] = models.ConnectingSegment{
			Airline:      s.Airline,
			FlightNumber: s.FlightNumber,
			Origin:       s.Origin,
			Destination:  dest,
			Date:         date,
		}
	}
	return segs
}

func BuildReturnQuery(out Outbound, returnDate models.Date, opts Options) (tfs.Token, error) {
	q, err := Query(out, returnDate, opts)
	if err != nil {
		return "", err
	}
	return tfs.Encode(q)
}

// OutboundFromItinerary selects the itinerary's first flight and turns the
// rest into connecting segments.
func OutboundFromItinerary(it models.Itinerary) (Outbound, error) {
	if len(it.Flights) == 0 {
		return Outbound{}, ErrNoSelection
	}
	first := it.Flights[0]
	if first.Airline == "" || first.FlightNumber == "" {
		return Outbound{}, ErrNoSelection
	}

	date := it.DepartureDate
	if first.DepartureDate != nil {
		date = first.DepartureDate
	}
	if date == nil {
		return Outbound{}, &tfs.QueryError{Field: "date", Msg: "itinerary has no departure date"}
	}

	last := it.Flights[len(it.Flights)-1]
	out := Outbound{
		Date:         *date,
		Origin:       firstNonEmpty(first.DepartureAirport, it.DepartureAirport),
		Destination:  firstNonEmpty(last.ArrivalAirport, it.ArrivalAirport),
		Airline:      first.Airline,
		FlightNumber: first.FlightNumber,
	}
	for i, f := range it.Flights[1:] {
		if f.Airline == "" || f.FlightNumber == "" {
			return Outbound{}, &tfs.QueryError{Field: "flights", Msg: "connecting flight has no designator"}
		}
		seg := Segment{
			Airline:      f.Airline,
			FlightNumber: f.FlightNumber,
			Origin:       f.DepartureAirport,
			Destination:  f.ArrivalAirport,
			Date:         out.Date,
		}
		if f.DepartureDate != nil {
			seg.Date = *f.DepartureDate
		}
		if seg.Origin == "" && i < len(it.Layovers) {
			seg.Origin = it.Layovers[i].Airport
		}
		out.Connecting = append(out.Connecting, seg)
	}
	return out, nil
}

// Request is the next call in a search session.
type Request struct {
	Token    tfs.Token
	Session  models.SessionToken
	Language string
	Currency string
}

func (r Request) Params() url.Values {
	return tfs.RequestParams(r.Token, r.Session, r.Language, r.Currency)
}

// Continue builds the return search for a decoded itinerary. The session the
// itinerary was decoded under is carried forward unchanged.
func Continue(it models.Itinerary, returnDate models.Date, opts Options) (Request, error) {
	out, err := OutboundFromItinerary(it)
	if err != nil {
		return Request{}, err
	}
	tok, err := BuildReturnQuery(out, returnDate, opts)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Token:    tok,
		Session:  it.Session,
		Language: opts.Language,
		Currency: opts.Currency,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
