package options

import (
	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/pkg/currency"
)

// ReturnOption is one selectable itinerary flattened to a single row.
type ReturnOption struct {
	Airline          string              `json:"airline"`
	FlightNumber     string              `json:"flight_number"`
	DepartureAirport string              `json:"departure_airport"`
	ArrivalAirport   string              `json:"arrival_airport"`
	DepartureDate    *models.Date        `json:"departure_date,omitempty"`
	DepartureTime    *models.ClockTime   `json:"departure_time,omitempty"`
	ArrivalTime      *models.ClockTime   `json:"arrival_time,omitempty"`
	DurationMinutes  int                 `json:"duration_minutes"`
	Stops            int                 `json:"stops"`
	Aircraft         string              `json:"aircraft,omitempty"`
	TotalPrice       *float64            `json:"total_price,omitempty"`
	Currency         string              `json:"currency,omitempty"`
	FormattedPrice   string              `json:"formatted_price,omitempty"`
	Bucket           models.Bucket       `json:"bucket"`
	Session          models.SessionToken `json:"session,omitempty"`
}

// FromResult flattens best then other itineraries. The designator comes from
// the first flight; entries without one keep the itinerary's airline code.
func FromResult(res *models.DecodedResult) []ReturnOption {
	if res == nil {
		return []ReturnOption{}
	}
	all := res.All()
	opts := make([]ReturnOption, 0, len(all))
	for _, it := range all {
		opts = append(opts, FromItinerary(it))
	}
	return opts
}

func FromItinerary(it models.Itinerary) ReturnOption {
	opt := ReturnOption{
		Airline:          it.AirlineCode,
		DepartureAirport: it.DepartureAirport,
		ArrivalAirport:   it.ArrivalAirport,
		DepartureDate:    it.DepartureDate,
		DepartureTime:    it.DepartureTime,
		ArrivalTime:      it.ArrivalTime,
		DurationMinutes:  it.TravelTime,
		Stops:            it.Stops(),
		Bucket:           it.Bucket,
		Session:          it.Session,
	}

	if len(it.Flights) > 0 {
		first := it.Flights[0]
		if first.Designator() != "" {
			opt.Airline = first.Airline
			opt.FlightNumber = first.FlightNumber
		}
		if first.Aircraft != nil {
			opt.Aircraft = *first.Aircraft
		}
	}

	if price, ok := it.Price(); ok {
		opt.TotalPrice = &price
		opt.Currency = it.Summary.Currency
		opt.FormattedPrice = it.Summary.Formatted
		if opt.FormattedPrice == "" {
			opt.FormattedPrice = currency.Format(price, opt.Currency)
		}
	}

	return opt
}
