package returnflow_test

import (
	"errors"
	"testing"

	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/returnflow"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

const (
	unitedReturn   = "CBwQAhpFEgoyMDI1LTExLTE4IiAKA1NGTxIKMjAyNS0xMS0xOBoDTUNPKgJVQTIEMjIzMGoMCAISCC9tLzBkNmxwcgcIARIDTUNPGiMSCjIwMjUtMTEtMjVqBwgBEgNNQ09yDAgCEggvbS8wZDZscEABSAFwAYIBBAgBEAKYAQE"
	frontierReturn = "CBwQAhpnEgoyMDI1LTExLTE4IiAKA1NGTxIKMjAyNS0xMS0xOBoDTEFTKgJGOTIENDE1OCIgCgNMQVMSCjIwMjUtMTEtMTgaA01DTyoCRjkyBDE4NzZqDAgCEggvbS8wZDZscHIHCAESA01DTxojEgoyMDI1LTExLTI1agcIARIDTUNPcgwIAhIIL20vMGQ2bHBAAUgBcAGCAQsI____________AZgBAQ"

	sanFrancisco = "/m/0d6lp"
)

var (
	outboundDate = models.MustParseDate("2025-11-18")
	returnDate   = models.MustParseDate("2025-11-25")
	economy      = returnflow.Options{Cabin: models.CabinEconomy, Passengers: models.Passengers{Adults: 1}}
)

func TestBuildReturnQueryDirectFlight(t *testing.T) {
	out := returnflow.Outbound{
		Date:         outboundDate,
		Origin:       "SFO",
		Destination:  "MCO",
		Airline:      "UA",
		FlightNumber: "2230",
		SearchOrigin: sanFrancisco,
	}
	opts := economy
	opts.Limits = &models.Limits{Max: 1, Aux: 2}

	tok, err := returnflow.BuildReturnQuery(out, returnDate, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tok != unitedReturn {
		t.Fatalf("token mismatch\n got: %s\nwant: %s", tok, unitedReturn)
	}
}

func TestBuildReturnQueryInfersConnection(t *testing.T) {
	out := returnflow.Outbound{
		Date:         outboundDate,
		Origin:       "SFO",
		Destination:  "MCO",
		Airline:      "F9",
		FlightNumber: "4158",
		Connecting:   []returnflow.Segment{{Airline: "F9", FlightNumber: "1876", Origin: "LAS"}},
		SearchOrigin: sanFrancisco,
	}
	tok, err := returnflow.BuildReturnQuery(out, returnDate, economy)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tok != frontierReturn {
		t.Fatalf("token mismatch\n got: %s\nwant: %s", tok, frontierReturn)
	}
}

func TestConnectingSegmentsArePaired(t *testing.T) {
	out := returnflow.Outbound{
		Date:         outboundDate,
		Origin:       "BOS",
		Destination:  "HNL",
		Airline:      "AA",
		FlightNumber: "100",
		Connecting: []returnflow.Segment{
			{Airline: "AA", FlightNumber: "200", Origin: "ORD"},
			{Airline: "HA", FlightNumber: "11", Origin: "LAX", Date: models.MustParseDate("2025-11-19")},
		},
	}
	q, err := returnflow.Query(out, returnDate, economy)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	leg := q.Legs[0]
	if leg.Selected.Origin != "BOS" || leg.Selected.Destination != "ORD" {
		t.Fatalf("selected: %+v", leg.Selected)
	}
	if len(leg.Connecting) != 2 {
		t.Fatalf("want 2 connecting segments, got %d", len(leg.Connecting))
	}
	first, second := leg.Connecting[0], leg.Connecting[1]
	if first.Origin != "ORD" || first.Destination != "LAX" || first.Date != outboundDate {
		t.Fatalf("first connection: %+v", first)
	}
	if second.Origin != "LAX" || second.Destination != "HNL" || second.Date.String() != "2025-11-19" {
		t.Fatalf("second connection: %+v", second)
	}
	if ret := q.Legs[1]; ret.Origin != "HNL" || ret.Destination != "BOS" || ret.Selected != nil {
		t.Fatalf("return leg: %+v", ret)
	}

	tok, err := tfs.Encode(q)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := tfs.Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back.Legs[0].Connecting) != 2 || back.Legs[0].Connecting[1].FlightNumber != "11" {
		t.Fatalf("connections lost in round trip: %+v", back.Legs[0])
	}
}

func TestSettingsAreCarriedNotChecked(t *testing.T) {
	out := returnflow.Outbound{Date: outboundDate, Origin: "SFO", Destination: "MCO", Airline: "UA", FlightNumber: "2230"}
	opts := returnflow.Options{
		Cabin:               models.CabinBusiness,
		Passengers:          models.Passengers{Adults: 2, Children: 1},
		ExcludeBasicEconomy: true,
		MaxStops:            models.IntPtr(0),
	}
	q, err := returnflow.Query(out, returnDate, opts)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if q.Cabin != models.CabinBusiness || !q.ExcludeBasicEconomy || *q.MaxStops != 0 || q.Passengers.Children != 1 {
		t.Fatalf("settings not carried: %+v", q)
	}
}

func TestReturnBeforeOutboundIsRejected(t *testing.T) {
	out := returnflow.Outbound{Date: returnDate, Origin: "SFO", Destination: "MCO", Airline: "UA", FlightNumber: "2230"}
	_, err := returnflow.BuildReturnQuery(out, outboundDate, economy)
	if !errors.Is(err, tfs.ErrInvalidQuery) {
		t.Fatalf("want ErrInvalidQuery, got %v", err)
	}
}

func itinerary() models.Itinerary {
	d := outboundDate
	return models.Itinerary{
		DepartureAirport: "SFO",
		ArrivalAirport:   "MCO",
		DepartureDate:    &d,
		Flights: []models.Flight{
			{Airline: "F9", FlightNumber: "4158", DepartureAirport: "SFO", ArrivalAirport: "LAS", DepartureDate: &d},
			{Airline: "F9", FlightNumber: "1876", DepartureAirport: "LAS", ArrivalAirport: "MCO", DepartureDate: &d},
		},
		Layovers: []models.Layover{{Airport: "LAS", Duration: 55}},
		Session:  "CjRIa2dTa0FzZTBXdVVBRFpLa0FCRy0tLS0tLS0tLXBqYmtrNkFBQUFBR2ZFUlN3",
		Bucket:   models.BucketBest,
	}
}

func TestOutboundFromItinerary(t *testing.T) {
	out, err := returnflow.OutboundFromItinerary(itinerary())
	if err != nil {
		t.Fatalf("outbound: %v", err)
	}
	if out.Airline != "F9" || out.FlightNumber != "4158" || out.Origin != "SFO" || out.Destination != "MCO" {
		t.Fatalf("outbound: %+v", out)
	}
	if len(out.Connecting) != 1 || out.Connecting[0].Origin != "LAS" || out.Connecting[0].FlightNumber != "1876" {
		t.Fatalf("connecting: %+v", out.Connecting)
	}
}

func TestOutboundFromItineraryNeedsDesignator(t *testing.T) {
	it := itinerary()
	it.Flights[0].Airline, it.Flights[0].FlightNumber = "", ""
	if _, err := returnflow.OutboundFromItinerary(it); !errors.Is(err, returnflow.ErrNoSelection) {
		t.Fatalf("want ErrNoSelection, got %v", err)
	}
	if _, err := returnflow.OutboundFromItinerary(models.Itinerary{}); !errors.Is(err, returnflow.ErrNoSelection) {
		t.Fatalf("empty itinerary: %v", err)
	}
}

func TestContinueCarriesSession(t *testing.T) {
	it := itinerary()
	opts := economy
	opts.Currency, opts.Language = "USD", "en"

	req, err := returnflow.Continue(it, returnDate, opts)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if req.Session != it.Session {
		t.Fatalf("session changed: %q", req.Session)
	}
	p := req.Params()
	if p.Get("tfu") != string(it.Session) || p.Get("tfs") != req.Token.String() || p.Get("curr") != "USD" {
		t.Fatalf("params: %v", p)
	}

	sum, err := returnflow.Describe(req.Token)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if sum.Stage != returnflow.StageReturn || sum.Route() != "F9 4158 SFO-LAS, F9 1876 LAS-MCO" {
		t.Fatalf("summary: %s %q", sum.Stage, sum.Route())
	}
	if sum.ReturnDate != returnDate || sum.Origin != "SFO" || sum.Destination != "MCO" {
		t.Fatalf("summary: %+v", sum)
	}
}

func TestDescribe(t *testing.T) {
	sum, err := returnflow.Describe(unitedReturn)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if sum.Stage != returnflow.StageReturn || sum.Route() != "UA 2230 SFO-MCO" {
		t.Fatalf("summary: %s %q", sum.Stage, sum.Route())
	}
	if sum.Origin != sanFrancisco || sum.Cabin != "economy" {
		t.Fatalf("summary: %+v", sum)
	}

	fresh, err := tfs.Encode(models.SearchQuery{
		Trip: models.TripRoundTrip,
		Legs: []models.Leg{
			{Date: outboundDate, Origin: "SFO", Destination: "MCO"},
			{Date: returnDate},
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	sum, err = returnflow.Describe(fresh)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if sum.Stage != returnflow.StageOutbound || sum.Route() != "" {
		t.Fatalf("fresh search summary: %+v", sum)
	}

	oneWay := "CBwQAhoeEgoyMDI1LTEyLTEwagcIARIDU0ZPcgcIARIDTUNPQAFIAXABggELCP___________wGYAQLIAQE"
	if _, err := returnflow.Describe(tfs.Token(oneWay)); !errors.Is(err, tfs.ErrInvalidQuery) {
		t.Fatalf("one-way token: %v", err)
	}
}
