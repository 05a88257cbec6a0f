package models

type Bucket string

const (
	BucketBest  Bucket = "best"
	BucketOther Bucket = "other"
)

type Flight struct {
	Airline              string     `json:"airline,omitempty"`
	AirlineName          string     `json:"airline_name,omitempty"`
	FlightNumber         string     `json:"flight_number,omitempty"`
	Operator             string     `json:"operator,omitempty"`
	DepartureAirport     string     `json:"departure_airport"`
	DepartureAirportName string     `json:"departure_airport_name,omitempty"`
	ArrivalAirport       string     `json:"arrival_airport"`
	ArrivalAirportName   string     `json:"arrival_airport_name,omitempty"`
	DepartureDate        *Date      `json:"departure_date,omitempty"`
	DepartureTime        *ClockTime `json:"departure_time,omitempty"`
	ArrivalDate          *Date      `json:"arrival_date,omitempty"`
	ArrivalTime          *ClockTime `json:"arrival_time,omitempty"`
	Aircraft             *string    `json:"aircraft,omitempty"`
	TravelTime           int        `json:"travel_time_minutes"`
}

// Designator returns "UA 2230", or "" when the flight has no airline/number pair.
func (f Flight) Designator() string {
	if f.Airline == "" || f.FlightNumber == "" {
		return ""
	}
	return f.Airline + " " + f.FlightNumber
}

type Layover struct {
	Airport     string `json:"airport"`
	AirportName string `json:"airport_name,omitempty"`
	City        string `json:"city,omitempty"`
	Duration    int    `json:"duration_minutes"`
}

type ItinerarySummary struct {
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	Formatted    string  `json:"formatted,omitempty"`
	BookingToken string  `json:"booking_token,omitempty"`
}

type Itinerary struct {
	AirlineCode      string            `json:"airline_code,omitempty"`
	AirlineNames     []string          `json:"airline_names,omitempty"`
	DepartureAirport string            `json:"departure_airport"`
	ArrivalAirport   string            `json:"arrival_airport"`
	DepartureDate    *Date             `json:"departure_date,omitempty"`
	DepartureTime    *ClockTime        `json:"departure_time,omitempty"`
	ArrivalDate      *Date             `json:"arrival_date,omitempty"`
	ArrivalTime      *ClockTime        `json:"arrival_time,omitempty"`
	TravelTime       int               `json:"travel_time_minutes"`
	Flights          []Flight          `json:"flights"`
	Layovers         []Layover         `json:"layovers,omitempty"`
	Summary          *ItinerarySummary `json:"summary,omitempty"`
	Session          SessionToken      `json:"session,omitempty"`
	Bucket           Bucket            `json:"bucket"`
	BestValueScore   float64           `json:"best_value_score,omitempty"`
}

func (it Itinerary) Stops() int {
	if len(it.Flights) == 0 {
		return 0
	}
	return len(it.Flights) - 1
}

func (it Itinerary) Price() (float64, bool) {
	if it.Summary == nil {
		return 0, false
	}
	return it.Summary.Price, true
}
