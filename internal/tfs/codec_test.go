package tfs_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

const (
	oneWayExclude   = "CBwQAhoeEgoyMDI1LTEyLTEwagcIARIDU0ZPcgcIARIDTUNPQAFIAXABggELCP___________wGYAQLIAQE"
	oneWayNoExclude = "CBwQAhoeEgoyMDI1LTEyLTEwagcIARIDU0ZPcgcIARIDTUNPQAFIAXABggELCP___________wGYAQLIAQA"
	roundTrip       = "CBwQAhoeEgoyMDI1LTEyLTEwagcIARIDU0ZPcgcIARIDTUNPGh4SCjIwMjUtMTItMTRqBwgBEgNNQ09yBwgBEgNTRk9AAUgBcAGCAQsI____________AZgBAQ"
	roundTripNoBE   = "CBwQAhoeEgoyMDI1LTEyLTEwagcIARIDU0ZPcgcIARIDTUNPGh4SCjIwMjUtMTItMTRqBwgBEgNNQ09yBwgBEgNTRk9AAUgBcAGCAQsI____________AZgBAcgBAQ"
	oakMaxStops     = "CBwQAhogEgoyMDI1LTEyLTMwKAJqBwgBEgNPQUtyBwgBEgNMQVNAAUgBcAGCAQsI____________AZgBAg"
	serviceReturn   = "CBwQAhpFEgoyMDI1LTExLTE4IiAKA1NGTxIKMjAyNS0xMS0xOBoDTUNPKgJVQTIEMjIzMGoMCAISCC9tLzBkNmxwcgcIARIDTUNPGiMSCjIwMjUtMTEtMjVqBwgBEgNNQ09yDAgCEggvbS8wZDZscEABSAFwAYIBBAgBEAKYAQE"
	frontierReturn  = "CBwQAhpnEgoyMDI1LTExLTE4IiAKA1NGTxIKMjAyNS0xMS0xOBoDTEFTKgJGOTIENDE1OCIgCgNMQVMSCjIwMjUtMTEtMTgaA01DTyoCRjkyBDE4NzZqDAgCEggvbS8wZDZscHIHCAESA01DTxojEgoyMDI1LTExLTI1agcIARIDTUNPcgwIAhIIL20vMGQ2bHBAAUgBcAGCAQsI____________AZgBAQ"
)

func oneWay(exclude bool) models.SearchQuery {
	return models.SearchQuery{
		Trip: models.TripOneWay,
		Legs: []models.Leg{
			{Date: models.MustParseDate("2025-12-10"), Origin: "SFO", Destination: "MCO"},
		},
		Passengers:          models.Passengers{Adults: 1},
		Cabin:               models.CabinEconomy,
		ExcludeBasicEconomy: exclude,
	}
}

func sfoMcoRoundTrip(exclude bool) models.SearchQuery {
	return models.SearchQuery{
		Trip: models.TripRoundTrip,
		Legs: []models.Leg{
			{Date: models.MustParseDate("2025-12-10"), Origin: "SFO", Destination: "MCO"},
			{Date: models.MustParseDate("2025-12-14"), Origin: "MCO", Destination: "SFO"},
		},
		Passengers:          models.Passengers{Adults: 1},
		Cabin:               models.CabinEconomy,
		ExcludeBasicEconomy: exclude,
	}
}

func TestEncodeKnownTokens(t *testing.T) {
	cases := []struct {
		name  string
		query models.SearchQuery
		want  string
	}{
		{"one-way exclude basic", oneWay(true), oneWayExclude},
		{"one-way keep basic", oneWay(false), oneWayNoExclude},
		{"round-trip keep basic", sfoMcoRoundTrip(false), roundTrip},
		{"round-trip exclude basic", sfoMcoRoundTrip(true), roundTripNoBE},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tfs.Encode(tc.query)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("token mismatch\n got: %s\nwant: %s", got, tc.want)
			}
		})
	}
}

func TestEncodeDerivesReturnLeg(t *testing.T) {
	q := sfoMcoRoundTrip(false)
	q.Legs[1].Origin = ""
	q.Legs[1].Destination = ""

	got, err := tfs.Encode(q)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got.String() != roundTrip {
		t.Fatalf("derived return leg should match explicit one, got %s", got)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a, err := tfs.Encode(sfoMcoRoundTrip(true))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, _ := tfs.Encode(sfoMcoRoundTrip(true))
	if a != b {
		t.Fatalf("same query produced %s and %s", a, b)
	}
}

func TestEncodeDoesNotMutateInput(t *testing.T) {
	q := sfoMcoRoundTrip(false)
	q.Legs[0].Origin = "sfo"
	q.Legs[1].Origin = ""
	before := q.Legs[1]

	if _, err := tfs.Encode(q); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if q.Limits != nil || q.QueryType != 0 || q.Legs[0].Origin != "sfo" {
		t.Fatalf("input was modified: %+v", q)
	}
	if !reflect.DeepEqual(q.Legs[1], before) {
		t.Fatalf("return leg was modified: %+v", q.Legs[1])
	}
}

func TestDecodeOneWay(t *testing.T) {
	q, err := tfs.Decode(oneWayExclude)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Trip != models.TripOneWay || len(q.Legs) != 1 {
		t.Fatalf("unexpected shape: %+v", q)
	}
	leg := q.Legs[0]
	if leg.Origin != "SFO" || leg.Destination != "MCO" || leg.Date.String() != "2025-12-10" {
		t.Fatalf("unexpected leg: %+v", leg)
	}
	if !q.ExcludeBasicEconomy {
		t.Fatal("exclude basic economy lost")
	}
	if q.Passengers != (models.Passengers{Adults: 1}) || q.Cabin != models.CabinEconomy {
		t.Fatalf("unexpected passengers/cabin: %+v %v", q.Passengers, q.Cabin)
	}
	if q.Limits == nil || q.Limits.Max != -1 {
		t.Fatalf("expected unlimited limits, got %+v", q.Limits)
	}
	if q.QueryType != 28 || q.Step != 2 || q.Layout != 1 {
		t.Fatalf("unexpected envelope: %d %d %d", q.QueryType, q.Step, q.Layout)
	}
}

func TestDecodeMaxStops(t *testing.T) {
	q, err := tfs.Decode(oakMaxStops)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Legs[0].MaxStops == nil || *q.Legs[0].MaxStops != 2 {
		t.Fatalf("leg max stops: %v", q.Legs[0].MaxStops)
	}
	if q.MaxStops == nil || *q.MaxStops != 2 {
		t.Fatalf("query max stops: %v", q.MaxStops)
	}
	if q.ExcludeBasicEconomy {
		t.Fatal("absent field must decode as false")
	}
}

func TestMaxStopsIsEncoded(t *testing.T) {
	q := oneWay(false)
	q.Legs[0].Date = models.MustParseDate("2025-12-30")
	q.Legs[0].Origin, q.Legs[0].Destination = "OAK", "LAS"
	q.MaxStops = models.IntPtr(2)

	got, err := tfs.Encode(q)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// The service token plus the explicit one-way false.
	want := "CBwQAhogEgoyMDI1LTEyLTMwKAJqBwgBEgNPQUtyBwgBEgNMQVNAAUgBcAGCAQsI____________AZgBAsgBAA"
	if got.String() != want {
		t.Fatalf("got %s", got)
	}
}

func TestDecodeServiceReturnToken(t *testing.T) {
	q, err := tfs.Decode(serviceReturn)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Trip != models.TripRoundTrip || len(q.Legs) != 2 {
		t.Fatalf("unexpected shape: %+v", q)
	}
	out := q.Legs[0]
	if out.Origin != "/m/0d6lp" || out.Destination != "MCO" {
		t.Fatalf("outbound endpoints: %s -> %s", out.Origin, out.Destination)
	}
	want := models.SelectedFlight{
		Airline:      "UA",
		FlightNumber: "2230",
		Origin:       "SFO",
		Destination:  "MCO",
		Date:         models.MustParseDate("2025-11-18"),
	}
	if out.Selected == nil || *out.Selected != want {
		t.Fatalf("selected flight: %+v", out.Selected)
	}
	if len(out.Connecting) != 0 {
		t.Fatalf("unexpected connecting segments: %+v", out.Connecting)
	}
	if q.Limits == nil || *q.Limits != (models.Limits{Max: 1, Aux: 2}) {
		t.Fatalf("limits: %+v", q.Limits)
	}
	ret := q.Legs[1]
	if ret.Date.String() != "2025-11-25" || ret.Selected != nil {
		t.Fatalf("return leg: %+v", ret)
	}
}

func TestDecodeConnectingSegments(t *testing.T) {
	q, err := tfs.Decode(frontierReturn)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := q.Legs[0]
	if out.Selected == nil || out.Selected.Designator() != "F9 4158" {
		t.Fatalf("selected: %+v", out.Selected)
	}
	if len(out.Connecting) != 1 {
		t.Fatalf("want 1 connecting segment, got %d", len(out.Connecting))
	}
	c := out.Connecting[0]
	if c.Origin != "LAS" || c.Destination != "MCO" || c.Airline != "F9" || c.FlightNumber != "1876" {
		t.Fatalf("connecting: %+v", c)
	}
}

func TestServiceTokensReencodeIdentically(t *testing.T) {
	for _, tok := range []string{oneWayExclude, oneWayNoExclude, roundTrip, roundTripNoBE, serviceReturn, frontierReturn} {
		q, err := tfs.Decode(tfs.Token(tok))
		if err != nil {
			t.Fatalf("decode %s: %v", tok, err)
		}
		got, err := tfs.Encode(q)
		if err != nil {
			t.Fatalf("encode %s: %v", tok, err)
		}
		if got.String() != tok {
			t.Fatalf("re-encode mismatch\n got: %s\nwant: %s", got, tok)
		}
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	queries := []models.SearchQuery{
		oneWay(true),
		sfoMcoRoundTrip(false),
		{
			Trip: models.TripMultiCity,
			Legs: []models.Leg{
				{Date: models.MustParseDate("2026-03-01"), Origin: "JFK", Destination: "LHR", Airlines: []string{"BA", "AA"}},
				{Date: models.MustParseDate("2026-03-08"), Origin: "LHR", Destination: "CDG"},
				{Date: models.MustParseDate("2026-03-12"), Origin: "CDG", Destination: "JFK"},
			},
			Passengers: models.Passengers{Adults: 2, Children: 1, InfantsOnLap: 1},
			Cabin:      models.CabinBusiness,
		},
		{
			Trip: models.TripRoundTrip,
			Legs: []models.Leg{
				{
					Date: models.MustParseDate("2025-11-18"), Origin: "/m/0d6lp", Destination: "MCO",
					Selected: &models.SelectedFlight{Airline: "F9", FlightNumber: "4158", Origin: "SFO", Destination: "LAS"},
					Connecting: []models.ConnectingSegment{
						{Airline: "F9", FlightNumber: "1876", Origin: "LAS", Destination: "MCO"},
					},
				},
				{Date: models.MustParseDate("2025-11-25"), Origin: "MCO", Destination: "/m/0d6lp"},
			},
			MaxStops:            models.IntPtr(1),
			ExcludeBasicEconomy: true,
			Cabin:               models.CabinPremiumEconomy,
		},
		{
			Trip: models.TripRoundTrip,
			Legs: []models.Leg{
				{Date: models.MustParseDate("2025-12-30"), Origin: "OAK", Destination: "LAS", MaxStops: models.IntPtr(1)},
				{Date: models.MustParseDate("2026-01-04"), Origin: "LAS", Destination: "OAK"},
			},
			MaxStops: models.IntPtr(1),
		},
		{
			Trip: models.TripMultiCity,
			Legs: []models.Leg{
				{Date: models.MustParseDate("2026-03-01"), Origin: "JFK", Destination: "LHR", MaxStops: models.IntPtr(0)},
				{Date: models.MustParseDate("2026-03-08"), Origin: "LHR", Destination: "JFK", MaxStops: models.IntPtr(0)},
			},
		},
	}

	for i, q := range queries {
		tok, err := tfs.Encode(q)
		if err != nil {
			t.Fatalf("query %d: encode: %v", i, err)
		}
		got, err := tfs.Decode(tok)
		if err != nil {
			t.Fatalf("query %d: decode: %v", i, err)
		}
		want := tfs.Normalize(q)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("query %d: round trip mismatch\n got: %+v\nwant: %+v", i, got, want)
		}
	}
}

func TestQueryStopLimitMustMatchLegs(t *testing.T) {
	q := sfoMcoRoundTrip(false)
	q.MaxStops = models.IntPtr(1)
	q.Legs[0].MaxStops = models.IntPtr(0)

	_, err := tfs.Encode(q)
	var qe *tfs.QueryError
	if !errors.As(err, &qe) || qe.Field != "max_stops" {
		t.Fatalf("want max_stops QueryError, got %v", err)
	}

	q.Legs[0].MaxStops = models.IntPtr(1)
	tok, err := tfs.Encode(q)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := tfs.Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MaxStops == nil || *got.MaxStops != 1 {
		t.Fatalf("query stop limit lost: %v", got.MaxStops)
	}
}

func TestExcludeBasicEconomyPresence(t *testing.T) {
	keep, _ := tfs.EncodeBytes(sfoMcoRoundTrip(false))
	drop, _ := tfs.EncodeBytes(sfoMcoRoundTrip(true))
	if len(drop) != len(keep)+3 {
		t.Fatalf("exclude flag should add exactly one field, got %d vs %d bytes", len(drop), len(keep))
	}
	if tail := drop[len(keep):]; tail[0] != 0xc8 || tail[1] != 0x01 || tail[2] != 0x01 {
		t.Fatalf("unexpected tail %x", tail)
	}
}

func TestDecodeAcceptsPackedPassengers(t *testing.T) {
	q, err := tfs.Decode("CBwQAhoeEgoyMDI1LTEyLTEwagcIARIDU0ZPcgcIARIDTUNPQgIBAUgBcAGCAQsI____________AZgBAsgBAQ")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Passengers.Adults != 2 {
		t.Fatalf("want 2 adults, got %+v", q.Passengers)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	// oneWayExclude followed by a varint field 99, a bytes field 50 and a fixed32 field 51.
	q, err := tfs.Decode("CBwQAhoeEgoyMDI1LTEyLTEwagcIARIDU0ZPcgcIARIDTUNPQAFIAXABggELCP___________wGYAQLIAQGYBgeSAwN4eXqdAwECAwQ")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want, _ := tfs.Decode(oneWayExclude)
	if !reflect.DeepEqual(q, want) {
		t.Fatalf("unknown fields changed the result: %+v", q)
	}
}

func TestDecodeTolerantTokenForms(t *testing.T) {
	for _, tok := range []string{
		oneWayExclude + "&tfu=EgQIABABIgA",
		"  " + oneWayExclude + "==",
	} {
		if _, err := tfs.Decode(tfs.Token(tok)); err != nil {
			t.Fatalf("decode %q: %v", tok, err)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	full, err := tfs.Token(oneWayExclude).Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}

	cases := []struct {
		name string
		raw  []byte
		tok  string
		want error
	}{
		{name: "bad base64", tok: "not*base64!", want: tfs.ErrMalformedToken},
		{name: "empty", raw: []byte{}, want: tfs.ErrTruncatedToken},
		{name: "ends after tag", raw: full[:len(full)-1], want: tfs.ErrTruncatedToken},
		{name: "ends inside tag", raw: full[:len(full)-2], want: tfs.ErrTruncatedToken},
		{name: "leg length overruns", raw: full[:20], want: tfs.ErrMalformedToken},
		{name: "wire type mismatch", raw: []byte{0x0a, 0x01, 0x00}, want: tfs.ErrMalformedToken},
		{name: "field zero", raw: []byte{0x00, 0x01}, want: tfs.ErrMalformedToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var err error
			if tc.tok != "" {
				_, err = tfs.Decode(tfs.Token(tc.tok))
			} else {
				_, err = tfs.DecodeBytes(tc.raw)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			var te *tfs.TokenError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TokenError, got %T", err)
			}
		})
	}
}

func TestEncodeRejectsInvalidQueries(t *testing.T) {
	cases := map[string]func(q *models.SearchQuery){
		"unknown trip":       func(q *models.SearchQuery) { q.Trip = models.TripUnknown },
		"one-way two legs":   func(q *models.SearchQuery) { q.Legs = append(q.Legs, q.Legs[0]) },
		"missing origin":     func(q *models.SearchQuery) { q.Legs[0].Origin = "" },
		"same endpoints":     func(q *models.SearchQuery) { q.Legs[0].Destination = "SFO" },
		"bad date":           func(q *models.SearchQuery) { q.Legs[0].Date = models.Date{Year: 2025, Month: 2, Day: 30} },
		"negative stops":     func(q *models.SearchQuery) { q.MaxStops = models.IntPtr(-1) },
		"lap infants":        func(q *models.SearchQuery) { q.Passengers.InfantsOnLap = 2 },
		"negative children":  func(q *models.SearchQuery) { q.Passengers.Children = -1 },
		"unknown cabin":      func(q *models.SearchQuery) { q.Cabin = 9 },
		"ten travellers":     func(q *models.SearchQuery) { q.Passengers.Adults = 10 },
		"huge party":         func(q *models.SearchQuery) { q.Passengers.Adults = 5_000_000 },
		"stop conflict":      func(q *models.SearchQuery) { q.MaxStops = models.IntPtr(1); q.Legs[0].MaxStops = models.IntPtr(0) },
		"one-way selection": func(q *models.SearchQuery) {
			q.Legs[0].Selected = &models.SelectedFlight{Airline: "UA", FlightNumber: "1", Origin: "SFO", Destination: "MCO"}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q := oneWay(false)
			mutate(&q)
			_, err := tfs.Encode(q)
			if !errors.Is(err, tfs.ErrInvalidQuery) {
				t.Fatalf("want ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestEncodeRejectsIncompleteSelection(t *testing.T) {
	q := sfoMcoRoundTrip(false)
	q.Legs[0].Selected = &models.SelectedFlight{Airline: "F9", FlightNumber: "4158", Origin: "SFO", Destination: "LAS"}

	_, err := tfs.Encode(q)
	var qe *tfs.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("want *QueryError, got %v", err)
	}
	if qe.Field != "legs[0].connecting" {
		t.Fatalf("unexpected field %q", qe.Field)
	}

	q.Legs[0].Connecting = []models.ConnectingSegment{{Airline: "F9", FlightNumber: "1876", Origin: "LAS", Destination: "MCO"}}
	if _, err := tfs.Encode(q); err != nil {
		t.Fatalf("complete selection rejected: %v", err)
	}
}

func TestRequestParams(t *testing.T) {
	v := tfs.RequestParams(oneWayExclude, "EgQIABABIgA", "en", "EUR")
	if v.Get("tfs") != oneWayExclude || v.Get("tfu") != "EgQIABABIgA" || v.Get("hl") != "en" || v.Get("curr") != "EUR" {
		t.Fatalf("unexpected params: %v", v)
	}
	if v := tfs.RequestParams(oneWayExclude, "", "", ""); len(v) != 1 {
		t.Fatalf("empty values should be omitted: %v", v)
	}
}
