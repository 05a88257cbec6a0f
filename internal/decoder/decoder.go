package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightquery/internal/jsarray"
	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/pkg/currency"
)

// ErrUnrecognizedPayloadShape means the payload is not an array at all. Any
// narrower problem is tolerated and reported per entry.
var ErrUnrecognizedPayloadShape = errors.New("unrecognized payload shape")

// xssiPrefix guards JSON bodies served by the flight service.
var xssiPrefix = []byte(")]}'")

type Decoder struct {
	log             *zap.Logger
	defaultCurrency string
}

type Option func(*Decoder)

func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// WithDefaultCurrency sets the code used when an entry's price has no currency.
func WithDefaultCurrency(code string) Option {
	return func(d *Decoder) {
		if code != "" {
			d.defaultCurrency = code
		}
	}
}

func New(opts ...Option) *Decoder {
	d := &Decoder{
		log:             zap.NewNop(),
		defaultCurrency: currency.Default,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeBody parses a raw response body and decodes it.
func (d *Decoder) DecodeBody(body []byte, session models.SessionToken) (*models.DecodedResult, error) {
	body = bytes.TrimSpace(body)
	body = bytes.TrimPrefix(body, xssiPrefix)

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedPayloadShape, err)
	}
	return d.Decode(raw, session)
}

// Decode extracts itineraries from both buckets of an already parsed payload.
// Entries that cannot be read are skipped and listed in the result's Drops;
// check Loss on the result to treat them as an error.
func (d *Decoder) Decode(raw any, session models.SessionToken) (*models.DecodedResult, error) {
	payload := jsarray.Of(raw)
	if !payload.IsList() {
		return nil, fmt.Errorf("%w: top level is %T", ErrUnrecognizedPayloadShape, raw)
	}

	res := &models.DecodedResult{
		Best:  []models.Itinerary{},
		Other: []models.Itinerary{},
	}
	res.Best = d.decodeBucket(res, payload.At(bestBucketPath...), models.BucketBest, session)
	res.Other = d.decodeBucket(res, payload.At(otherBucketPath...), models.BucketOther, session)

	if res.Dropped > 0 {
		d.log.Warn("itinerary entries dropped",
			zap.Int("dropped", res.Dropped),
			zap.Int("decoded", len(res.Best)+len(res.Other)),
		)
	}
	return res, nil
}

func (d *Decoder) decodeBucket(res *models.DecodedResult, bucket jsarray.Value, tag models.Bucket, session models.SessionToken) []models.Itinerary {
	out := []models.Itinerary{}
	if !bucket.IsList() {
		if !bucket.IsNull() {
			d.log.Debug("bucket is not a list", zap.String("bucket", string(tag)))
		}
		return out
	}

	bucket.Each(func(i int, entry jsarray.Value) {
		it, reason := d.decodeEntry(entry)
		if reason != "" {
			res.Dropped++
			res.Drops = append(res.Drops, models.Drop{Bucket: tag, Index: i, Reason: reason})
			d.log.Debug("dropping itinerary entry",
				zap.String("bucket", string(tag)),
				zap.Int("index", i),
				zap.String("reason", reason),
			)
			return
		}
		it.Bucket = tag
		it.Session = session
		out = append(out, it)
	})
	return out
}

// decodeEntry returns a non-empty reason when the entry has to be dropped.
func (d *Decoder) decodeEntry(entry jsarray.Value) (models.Itinerary, string) {
	if !entry.IsList() {
		return models.Itinerary{}, "entry is not a list"
	}
	details := entry.At(entryDetails)
	if !details.IsList() {
		return models.Itinerary{}, "details is not a list"
	}

	flightsRaw := details.At(detailFlights)
	if !flightsRaw.IsList() || flightsRaw.Len() == 0 {
		return models.Itinerary{}, "no flights"
	}
	flights := make([]models.Flight, 0, flightsRaw.Len())
	for i := 0; i < flightsRaw.Len(); i++ {
		f := flightsRaw.At(i)
		if !f.IsList() {
			return models.Itinerary{}, fmt.Sprintf("flight %d is not a list", i)
		}
		flights = append(flights, decodeFlight(f))
	}

	var layovers []models.Layover
	if raw := details.At(detailLayovers); !raw.IsNull() {
		if !raw.IsList() {
			return models.Itinerary{}, "layovers is not a list"
		}
		for i := 0; i < raw.Len(); i++ {
			l := raw.At(i)
			if !l.IsList() {
				return models.Itinerary{}, fmt.Sprintf("layover %d is not a list", i)
			}
			layovers = append(layovers, decodeLayover(l))
		}
	}

	summary := entry.At(entrySummary)
	if !summary.IsNull() && !summary.IsList() {
		return models.Itinerary{}, "summary is not a list"
	}

	it := models.Itinerary{
		AirlineCode:      details.At(detailAirlineCode).StringOr(""),
		AirlineNames:     stringList(details.At(detailAirlineNames)),
		DepartureAirport: details.At(detailDepartAirport).StringOr(""),
		ArrivalAirport:   details.At(detailArriveAirport).StringOr(""),
		DepartureDate:    parseDate(details.At(detailDepartDate)),
		DepartureTime:    parseTime(details.At(detailDepartTime)),
		ArrivalDate:      parseDate(details.At(detailArriveDate)),
		ArrivalTime:      parseTime(details.At(detailArriveTime)),
		Flights:          flights,
		Layovers:         layovers,
		Summary:          d.decodeSummary(summary),
	}
	if n, ok := details.At(detailTravelTime).Int(); ok {
		it.TravelTime = n
	}
	if it.DepartureAirport == "" {
		it.DepartureAirport = flights[0].DepartureAirport
	}
	if it.ArrivalAirport == "" {
		it.ArrivalAirport = flights[len(flights)-1].ArrivalAirport
	}
	return it, ""
}

func decodeFlight(f jsarray.Value) models.Flight {
	flight := models.Flight{
		Operator:             f.At(flightOperator).StringOr(""),
		DepartureAirport:     f.At(flightDepartAirport).StringOr(""),
		DepartureAirportName: f.At(flightDepartName).StringOr(""),
		ArrivalAirport:       f.At(flightArriveAirport).StringOr(""),
		ArrivalAirportName:   f.At(flightArriveName).StringOr(""),
		DepartureTime:        parseTime(f.At(flightDepartTime)),
		ArrivalTime:          parseTime(f.At(flightArriveTime)),
		DepartureDate:        parseDate(f.At(flightDepartDate)),
		ArrivalDate:          parseDate(f.At(flightArriveDate)),
	}
	if n, ok := f.At(flightTravelTime).Int(); ok {
		flight.TravelTime = n
	}
	if s, ok := f.At(flightAircraft).String(); ok {
		flight.Aircraft = &s
	}

	designator := f.At(flightDesignator)
	airline, _ := designator.At(designatorAirline).String()
	number := flightNumber(designator.At(designatorNumber))
	if airline != "" && number != "" {
		flight.Airline = airline
		flight.FlightNumber = number
	}
	flight.AirlineName = designator.At(designatorAirlineName).StringOr("")
	return flight
}

// Flight numbers usually arrive as strings but are accepted as integers too.
func flightNumber(v jsarray.Value) string {
	if s, ok := v.String(); ok {
		return s
	}
	if n, ok := v.Int(); ok && n >= 0 {
		return fmt.Sprint(n)
	}
	return ""
}

func decodeLayover(l jsarray.Value) models.Layover {
	lay := models.Layover{
		Airport:     l.At(layoverAirport).StringOr(""),
		AirportName: l.At(layoverAirportName).StringOr(""),
		City:        l.At(layoverCity).StringOr(""),
	}
	if n, ok := l.At(layoverMinutes).Int(); ok {
		lay.Duration = n
	}
	return lay
}

// decodeSummary returns nil when the entry carries no usable amount. A zero
// amount is a real price.
func (d *Decoder) decodeSummary(s jsarray.Value) *models.ItinerarySummary {
	if !s.IsList() {
		return nil
	}
	price := s.At(summaryPrice)
	amount, ok := price.At(priceAmount).Number()
	if !ok {
		return nil
	}
	code, _ := price.At(priceCurrency).String()
	if code == "" {
		code = d.defaultCurrency
	}
	return &models.ItinerarySummary{
		Price:        amount,
		Currency:     code,
		Formatted:    currency.Format(amount, code),
		BookingToken: s.At(summaryBookingToken).StringOr(""),
	}
}

func stringList(v jsarray.Value) []string {
	var out []string
	v.Each(func(_ int, e jsarray.Value) {
		if s, ok := e.String(); ok {
			out = append(out, s)
		}
	})
	return out
}

// parseDate reads [year, month, day]. All three parts are required.
func parseDate(v jsarray.Value) *models.Date {
	if v.Len() < 3 {
		return nil
	}
	y, ok1 := v.At(0).Int()
	m, ok2 := v.At(1).Int()
	day, ok3 := v.At(2).Int()
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	d := models.Date{Year: y, Month: time.Month(m), Day: day}
	if !d.Valid() {
		return nil
	}
	return &d
}

// parseTime reads [hour, minute]. Missing or null parts count as zero, so
// [6] is 06:00. Anything out of range discards the whole value.
func parseTime(v jsarray.Value) *models.ClockTime {
	if v.Len() == 0 {
		return nil
	}
	var parts [2]int
	for i := range parts {
		p := v.At(i)
		if p.IsNull() {
			continue
		}
		n, ok := p.Int()
		if !ok {
			return nil
		}
		parts[i] = n
	}
	t := models.ClockTime{Hour: parts[0], Minute: parts[1]}
	if !t.Valid() {
		return nil
	}
	return &t
}
