package tfs

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/flightquery/internal/models"
)

// Normalize fills envelope defaults and derived fields without touching the
// caller's query. The result is what Encode writes.
func Normalize(q models.SearchQuery) models.SearchQuery {
	n := q
	if n.QueryType == 0 {
		n.QueryType = defaultQueryType
	}
	if n.Step == 0 {
		n.Step = defaultStep
	}
	if n.Layout == 0 {
		n.Layout = defaultLayout
	}
	if n.Limits == nil {
		n.Limits = &models.Limits{Max: -1}
	} else {
		l := *n.Limits
		n.Limits = &l
	}
	if n.Cabin == models.CabinUnknown {
		n.Cabin = models.CabinEconomy
	}
	if n.Passengers.Total() == 0 {
		n.Passengers.Adults = 1
	}

	n.Legs = make([]models.Leg, len(q.Legs))
	for i, leg := range q.Legs {
		n.Legs[i] = normalizeLeg(leg, q.MaxStops)
	}

	if n.Trip == models.TripRoundTrip && len(n.Legs) == 2 {
		first, second := n.Legs[0], &n.Legs[1]
		if second.Origin == "" {
			second.Origin = first.Destination
		}
		if second.Destination == "" {
			second.Destination = first.Origin
		}
	}
	if n.MaxStops == nil {
		n.MaxStops = sharedMaxStops(n.Legs)
	} else {
		v := *n.MaxStops
		n.MaxStops = &v
	}
	return n
}

func normalizeLeg(leg models.Leg, queryMaxStops *int) models.Leg {
	out := leg
	out.Origin = normalizeCode(leg.Origin)
	out.Destination = normalizeCode(leg.Destination)

	if out.MaxStops == nil && queryMaxStops != nil {
		v := *queryMaxStops
		out.MaxStops = &v
	}
	out.Airlines, out.Connecting = nil, nil
	if len(leg.Airlines) > 0 {
		out.Airlines = make([]string, len(leg.Airlines))
		for i, a := range leg.Airlines {
			out.Airlines[i] = strings.ToUpper(strings.TrimSpace(a))
		}
	}

	if leg.Selected != nil {
		s := *leg.Selected
		s.Airline = strings.ToUpper(strings.TrimSpace(s.Airline))
		s.FlightNumber = strings.TrimSpace(s.FlightNumber)
		s.Origin = normalizeCode(s.Origin)
		s.Destination = normalizeCode(s.Destination)
		if s.Date.IsZero() {
			s.Date = leg.Date
		}
		out.Selected = &s
	}

	if len(leg.Connecting) > 0 {
		out.Connecting = make([]models.ConnectingSegment, len(leg.Connecting))
		for i, c := range leg.Connecting {
			c.Airline = strings.ToUpper(strings.TrimSpace(c.Airline))
			c.FlightNumber = strings.TrimSpace(c.FlightNumber)
			c.Origin = normalizeCode(c.Origin)
			c.Destination = normalizeCode(c.Destination)
			if c.Date.IsZero() {
				c.Date = leg.Date
			}
			out.Connecting[i] = c
		}
	}
	return out
}

// City ids are case sensitive; airport codes are not.
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if kindOf(code) == placeCity {
		return code
	}
	return strings.ToUpper(code)
}

// Validate checks the schema invariants Encode relies on. It expects a
// normalized query.
func Validate(q models.SearchQuery) error {
	switch q.Trip {
	case models.TripOneWay:
		if len(q.Legs) != 1 {
			return invalid("legs", "one-way trip needs exactly 1 leg, got %d", len(q.Legs))
		}
		if q.Legs[0].Selected != nil {
			return invalid("legs[0].selected", "one-way trip cannot carry a selected flight")
		}
	case models.TripRoundTrip:
		if len(q.Legs) != 2 {
			return invalid("legs", "round-trip needs exactly 2 legs, got %d", len(q.Legs))
		}
	case models.TripMultiCity:
		if len(q.Legs) < 2 {
			return invalid("legs", "multi-city trip needs at least 2 legs, got %d", len(q.Legs))
		}
	default:
		return invalid("trip", "unknown trip type %d", int(q.Trip))
	}

	if q.Cabin < models.CabinEconomy || q.Cabin > models.CabinFirst {
		return invalid("cabin", "unknown cabin class %d", int(q.Cabin))
	}

	p := q.Passengers
	if p.Adults < 0 || p.Children < 0 || p.InfantsInSeat < 0 || p.InfantsOnLap < 0 {
		return invalid("passengers", "counts cannot be negative")
	}
	if total := p.Total(); total > maxPassengers {
		return invalid("passengers", "%d travellers, at most %d allowed", total, maxPassengers)
	}
	if p.InfantsOnLap > p.Adults {
		return invalid("passengers", "%d infants on lap but only %d adults", p.InfantsOnLap, p.Adults)
	}
	if q.MaxStops != nil && *q.MaxStops < 0 {
		return invalid("max_stops", "cannot be negative")
	}
	// Tokens only carry per-leg limits, so a query limit has to agree with
	// every leg to survive decoding.
	if q.MaxStops != nil {
		if shared := sharedMaxStops(q.Legs); shared == nil || *shared != *q.MaxStops {
			return invalid("max_stops", "query limit %d conflicts with a leg's own limit", *q.MaxStops)
		}
	}

	for i, leg := range q.Legs {
		if err := validateLeg(fmt.Sprintf("legs[%d]", i), leg); err != nil {
			return err
		}
	}
	return nil
}

func validateLeg(path string, leg models.Leg) error {
	if !leg.Date.Valid() {
		return invalid(path+".date", "%s is not a calendar date", leg.Date)
	}
	if leg.Origin == "" {
		return invalid(path+".origin", "required")
	}
	if leg.Destination == "" {
		return invalid(path+".destination", "required")
	}
	if leg.Origin == leg.Destination {
		return invalid(path, "origin and destination are both %s", leg.Origin)
	}
	if leg.MaxStops != nil && *leg.MaxStops < 0 {
		return invalid(path+".max_stops", "cannot be negative")
	}

	if leg.Selected == nil {
		if len(leg.Connecting) > 0 {
			return invalid(path+".connecting", "connecting segments need a selected flight")
		}
		return nil
	}

	s := leg.Selected
	if err := validateSegment(path+".selected", s.Airline, s.FlightNumber, s.Origin, s.Destination, s.Date); err != nil {
		return err
	}
	for i, c := range leg.Connecting {
		if err := validateSegment(fmt.Sprintf("%s.connecting[%d]", path, i), c.Airline, c.FlightNumber, c.Origin, c.Destination, c.Date); err != nil {
			return err
		}
	}

	// A selection that stops short of an airport destination needs the rest of
	// the route spelled out.
	if kindOf(leg.Destination) != placeAirport {
		return nil
	}
	final := s.Destination
	if n := len(leg.Connecting); n > 0 {
		final = leg.Connecting[n-1].Destination
	}
	if final != leg.Destination {
		if len(leg.Connecting) == 0 {
			return invalid(path+".connecting", "selected flight ends at %s but the leg ends at %s", final, leg.Destination)
		}
		return invalid(path+".connecting", "last segment ends at %s but the leg ends at %s", final, leg.Destination)
	}
	return nil
}

func validateSegment(path, airline, number, origin, destination string, date models.Date) error {
	switch {
	case airline == "":
		return invalid(path+".airline", "required")
	case number == "":
		return invalid(path+".flight_number", "required")
	case origin == "":
		return invalid(path+".origin", "required")
	case destination == "":
		return invalid(path+".destination", "required")
	case !date.Valid():
		return invalid(path+".date", "%s is not a calendar date", date)
	}
	return nil
}
