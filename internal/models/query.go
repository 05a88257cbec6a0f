package models

import (
	"fmt"
	"strings"
)

type TripType int

const (
	TripUnknown   TripType = 0
	TripRoundTrip TripType = 1
	TripOneWay    TripType = 2
	TripMultiCity TripType = 3
)

func (t TripType) String() string {
	switch t {
	case TripRoundTrip:
		return "round-trip"
	case TripOneWay:
		return "one-way"
	case TripMultiCity:
		return "multi-city"
	default:
		return "unknown"
	}
}

func ParseTripType(s string) (TripType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round-trip", "roundtrip", "round_trip":
		return TripRoundTrip, nil
	case "one-way", "oneway", "one_way":
		return TripOneWay, nil
	case "multi-city", "multicity", "multi_city":
		return TripMultiCity, nil
	}
	return TripUnknown, fmt.Errorf("unknown trip type %q", s)
}

type CabinClass int

const (
	CabinUnknown        CabinClass = 0
	CabinEconomy        CabinClass = 1
	CabinPremiumEconomy CabinClass = 2
	CabinBusiness       CabinClass = 3
	CabinFirst          CabinClass = 4
)

func (c CabinClass) String() string {
	switch c {
	case CabinEconomy:
		return "economy"
	case CabinPremiumEconomy:
		return "premium-economy"
	case CabinBusiness:
		return "business"
	case CabinFirst:
		return "first"
	default:
		return "unknown"
	}
}

func ParseCabinClass(s string) (CabinClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "economy":
		return CabinEconomy, nil
	case "premium-economy", "premium_economy", "premium economy":
		return CabinPremiumEconomy, nil
	case "business":
		return CabinBusiness, nil
	case "first":
		return CabinFirst, nil
	}
	return CabinUnknown, fmt.Errorf("unknown cabin class %q", s)
}

type Passengers struct {
	Adults        int `json:"adults"`
	Children      int `json:"children,omitempty"`
	InfantsInSeat int `json:"infants_in_seat,omitempty"`
	InfantsOnLap  int `json:"infants_on_lap,omitempty"`
}

func (p Passengers) Total() int {
	return p.Adults + p.Children + p.InfantsInSeat + p.InfantsOnLap
}

// SessionToken is the opaque "tfu" value issued by the flight service. It is
// forwarded as-is and never parsed.
type SessionToken string

type SelectedFlight struct {
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Date         Date   `json:"date"`
}

func (s SelectedFlight) Designator() string {
	return s.Airline + " " + s.FlightNumber
}

// ConnectingSegment is a later flight in the same leg as a SelectedFlight.
type ConnectingSegment struct {
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Date         Date   `json:"date"`
}

type Leg struct {
	Date        Date                `json:"date"`
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	Selected    *SelectedFlight     `json:"selected,omitempty"`
	Connecting  []ConnectingSegment `json:"connecting,omitempty"`
	MaxStops    *int                `json:"max_stops,omitempty"`
	Airlines    []string            `json:"airlines,omitempty"`
}

// Limits mirrors the service's result-limit envelope. Max of -1 means unlimited.
type Limits struct {
	Max int64 `json:"max"`
	Aux int64 `json:"aux,omitempty"`
}

type SearchQuery struct {
	Trip                TripType   `json:"trip"`
	Legs                []Leg      `json:"legs"`
	Passengers          Passengers `json:"passengers"`
	Cabin               CabinClass `json:"cabin"`
	MaxStops            *int       `json:"max_stops,omitempty"`
	ExcludeBasicEconomy bool       `json:"exclude_basic_economy"`
	Currency            string     `json:"currency,omitempty"`
	Language            string     `json:"language,omitempty"`

	QueryType int     `json:"query_type,omitempty"`
	Step      int     `json:"step,omitempty"`
	Layout    int     `json:"layout,omitempty"`
	Limits    *Limits `json:"limits,omitempty"`
}

func IntPtr(v int) *int {
	return &v
}
