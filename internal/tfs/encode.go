package tfs

import (
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dharmasatrya/flightquery/internal/models"
)

func Encode(q models.SearchQuery) (Token, error) {
	b, err := EncodeBytes(q)
	if err != nil {
		return "", err
	}
	return TokenFromBytes(b), nil
}

// EncodeBytes validates q and serializes it in ascending field order. The
// output depends only on q.
func EncodeBytes(q models.SearchQuery) ([]byte, error) {
	n := Normalize(q)
	if err := Validate(n); err != nil {
		return nil, err
	}
	return marshalQuery(n), nil
}

type writer struct {
	msg *message
	buf []byte
}

func newWriter(msg *message) *writer {
	return &writer{msg: msg}
}

func (w *writer) varint(num protowire.Number, v uint64) {
	f := w.msg.mustField(num, protowire.VarintType)
	w.buf = protowire.AppendTag(w.buf, f.Num, f.Type)
	w.buf = protowire.AppendVarint(w.buf, v)
}

func (w *writer) bytes(num protowire.Number, b []byte) {
	f := w.msg.mustField(num, protowire.BytesType)
	w.buf = protowire.AppendTag(w.buf, f.Num, f.Type)
	w.buf = protowire.AppendBytes(w.buf, b)
}

func (w *writer) str(num protowire.Number, s string) {
	w.bytes(num, []byte(s))
}

func marshalQuery(q models.SearchQuery) []byte {
	w := newWriter(queryMessage)
	w.varint(queryType, uint64(q.QueryType))
	w.varint(queryStep, uint64(q.Step))
	for _, leg := range q.Legs {
		w.bytes(queryLegs, marshalLeg(leg))
	}
	appendPassengers(w, passengerAdult, q.Passengers.Adults)
	appendPassengers(w, passengerChild, q.Passengers.Children)
	appendPassengers(w, passengerInfantInSeat, q.Passengers.InfantsInSeat)
	appendPassengers(w, passengerInfantOnLap, q.Passengers.InfantsOnLap)
	w.varint(querySeat, uint64(q.Cabin))
	w.varint(queryLayout, uint64(q.Layout))
	w.bytes(queryLimits, marshalLimits(*q.Limits))
	w.varint(queryTrip, uint64(q.Trip))

	// The service reads presence of this field, so false is normally left out.
	// One-way searches from the service always carry it explicitly.
	if q.ExcludeBasicEconomy {
		w.varint(queryExcludeBasicEc, protowire.EncodeBool(true))
	} else if q.Trip == models.TripOneWay {
		w.varint(queryExcludeBasicEc, protowire.EncodeBool(false))
	}
	return w.buf
}

func appendPassengers(w *writer, kind passengerKind, count int) {
	for i := 0; i < count; i++ {
		w.varint(queryPassengers, uint64(kind))
	}
}

func marshalLeg(leg models.Leg) []byte {
	w := newWriter(legMessage)
	w.str(legDate, leg.Date.String())
	if leg.Selected != nil {
		s := leg.Selected
		w.bytes(legSegments, marshalSegment(s.Origin, s.Date, s.Destination, s.Airline, s.FlightNumber))
		for _, c := range leg.Connecting {
			w.bytes(legSegments, marshalSegment(c.Origin, c.Date, c.Destination, c.Airline, c.FlightNumber))
		}
	}
	if leg.MaxStops != nil {
		w.varint(legMaxStops, uint64(*leg.MaxStops))
	}
	for _, airline := range leg.Airlines {
		w.str(legAirlines, airline)
	}
	w.bytes(legFrom, marshalPlace(leg.Origin))
	w.bytes(legTo, marshalPlace(leg.Destination))
	return w.buf
}

func marshalSegment(from string, date models.Date, to, airline, number string) []byte {
	w := newWriter(segmentMessage)
	w.str(segmentFrom, from)
	w.str(segmentDate, date.String())
	w.str(segmentTo, to)
	w.str(segmentAirline, airline)
	w.str(segmentNumber, number)
	return w.buf
}

func marshalPlace(code string) []byte {
	w := newWriter(placeMessage)
	w.varint(placeKind, uint64(kindOf(code)))
	w.str(placeCode, code)
	return w.buf
}

func marshalLimits(l models.Limits) []byte {
	w := newWriter(limitsMessage)
	w.varint(limitsMax, uint64(l.Max))
	if l.Aux != 0 {
		w.varint(limitsAux, uint64(l.Aux))
	}
	return w.buf
}

// kindOf tells knowledge-graph city ids ("/m/0d6lp") from airport codes.
func kindOf(code string) placeType {
	if strings.HasPrefix(code, "/") {
		return placeCity
	}
	return placeAirport
}
