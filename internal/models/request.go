package models

import (
	"encoding/json"
	"strings"
)

type SearchFilters struct {
	PriceMin         *float64 `json:"price_min,omitempty"`
	PriceMax         *float64 `json:"price_max,omitempty"`
	MaxStops         *int     `json:"max_stops,omitempty"`
	Airlines         []string `json:"airlines,omitempty"`
	DepartureTimeMin *string  `json:"departure_time_min,omitempty"`
	DepartureTimeMax *string  `json:"departure_time_max,omitempty"`
	ArrivalTimeMin   *string  `json:"arrival_time_min,omitempty"`
	ArrivalTimeMax   *string  `json:"arrival_time_max,omitempty"`
	MaxDuration      *int     `json:"max_duration,omitempty"`
}

// TokenRequest is a query as sent by API clients, with trip and cabin
// spelled out ("round-trip", "business").
type TokenRequest struct {
	Trip                string       `json:"trip"`
	Legs                []Leg        `json:"legs"`
	Passengers          *Passengers  `json:"passengers,omitempty"`
	CabinClass          string       `json:"cabin_class"`
	MaxStops            *int         `json:"max_stops,omitempty"`
	ExcludeBasicEconomy bool         `json:"exclude_basic_economy"`
	Currency            string       `json:"currency,omitempty"`
	Language            string       `json:"language,omitempty"`
	Session             SessionToken `json:"session,omitempty"`
}

func (r *TokenRequest) Validate() error {
	if strings.TrimSpace(r.Trip) == "" {
		return ErrMissingTrip
	}
	if len(r.Legs) == 0 {
		return ErrMissingLegs
	}
	if r.Passengers == nil {
		r.Passengers = &Passengers{Adults: 1}
	}
	return nil
}

func (r *TokenRequest) ToQuery() (SearchQuery, error) {
	trip, err := ParseTripType(r.Trip)
	if err != nil {
		return SearchQuery{}, ValidationError(err.Error())
	}
	cabin, err := ParseCabinClass(r.CabinClass)
	if err != nil {
		return SearchQuery{}, ValidationError(err.Error())
	}
	q := SearchQuery{
		Trip:                trip,
		Legs:                r.Legs,
		Cabin:               cabin,
		MaxStops:            r.MaxStops,
		ExcludeBasicEconomy: r.ExcludeBasicEconomy,
		Currency:            r.Currency,
		Language:            r.Language,
	}
	if r.Passengers != nil {
		q.Passengers = *r.Passengers
	}
	return q, nil
}

// DecodeResultRequest carries a raw result payload, either the JSON array
// itself or a string holding the response body.
type DecodeResultRequest struct {
	Payload   json.RawMessage `json:"payload"`
	Session   SessionToken    `json:"session,omitempty"`
	Filters   *SearchFilters  `json:"filters,omitempty"`
	SortBy    string          `json:"sort_by,omitempty"`
	SortOrder string          `json:"sort_order,omitempty"`
}

func (r *DecodeResultRequest) Validate() error {
	if len(r.Payload) == 0 || string(r.Payload) == "null" {
		return ErrMissingPayload
	}
	if r.SortBy == "" {
		r.SortBy = "price"
	}
	if r.SortOrder == "" {
		r.SortOrder = "asc"
	}
	return nil
}

// Body returns the payload bytes to decode. A JSON string is unwrapped so a
// guarded body (")]}'" prefix) can be sent verbatim.
func (r *DecodeResultRequest) Body() ([]byte, error) {
	if len(r.Payload) > 0 && r.Payload[0] == '"' {
		var s string
		if err := json.Unmarshal(r.Payload, &s); err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	return r.Payload, nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingTrip       ValidationError = "trip is required"
	ErrMissingLegs       ValidationError = "at least one leg is required"
	ErrMissingPayload    ValidationError = "payload is required"
	ErrMissingItinerary  ValidationError = "outbound itinerary or selection is required"
	ErrMissingReturnDate ValidationError = "return_date is required"
)
