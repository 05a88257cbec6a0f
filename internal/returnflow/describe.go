package returnflow

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

type Stage string

const (
	// StageOutbound: nothing chosen yet.
	StageOutbound Stage = "outbound"
	// StageReturn: outbound chosen, searching returns.
	StageReturn Stage = "return"
	// StageComplete: both directions chosen.
	StageComplete Stage = "complete"
)

// Summary is a readable view of a round-trip token.
type Summary struct {
	Stage               Stage                      `json:"stage"`
	Origin              string                     `json:"origin"`
	Destination         string                     `json:"destination"`
	OutboundDate        models.Date                `json:"outbound_date"`
	ReturnDate          models.Date                `json:"return_date"`
	Outbound            *models.SelectedFlight     `json:"outbound,omitempty"`
	Connecting          []models.ConnectingSegment `json:"connecting,omitempty"`
	Return              *models.SelectedFlight     `json:"return,omitempty"`
	Cabin               string                     `json:"cabin"`
	Passengers          models.Passengers          `json:"passengers"`
	ExcludeBasicEconomy bool                       `json:"exclude_basic_economy"`
}

// Route renders the outbound selection as "UA 2230 SFO-MCO" or
// "F9 4158 SFO-LAS, F9 1876 LAS-MCO".
func (s *Summary) Route() string {
	if s.Outbound == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("%s %s-%s", s.Outbound.Designator(), s.Outbound.Origin, s.Outbound.Destination)}
	for _, c := range s.Connecting {
		parts = append(parts, fmt.Sprintf("%s %s %s-%s", c.Airline, c.FlightNumber, c.Origin, c.Destination))
	}
	return strings.Join(parts, ", ")
}

// Describe decodes a round-trip token and reports how far the selection has
// progressed.
func Describe(token tfs.Token) (*Summary, error) {
	q, err := tfs.Decode(token)
	if err != nil {
		return nil, err
	}
	if q.Trip != models.TripRoundTrip || len(q.Legs) != 2 {
		return nil, &tfs.QueryError{Field: "trip", Msg: fmt.Sprintf("%s token with %d legs is not a round trip", q.Trip, len(q.Legs))}
	}

	out, back := q.Legs[0], q.Legs[1]
	s := &Summary{
		Stage:               StageOutbound,
		Origin:              out.Origin,
		Destination:         out.Destination,
		OutboundDate:        out.Date,
		ReturnDate:          back.Date,
		Outbound:            out.Selected,
		Connecting:          out.Connecting,
		Return:              back.Selected,
		Cabin:               q.Cabin.String(),
		Passengers:          q.Passengers,
		ExcludeBasicEconomy: q.ExcludeBasicEconomy,
	}
	switch {
	case out.Selected != nil && back.Selected != nil:
		s.Stage = StageComplete
	case out.Selected != nil:
		s.Stage = StageReturn
	}
	return s, nil
}
