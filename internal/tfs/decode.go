package tfs

import (
	"errors"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dharmasatrya/flightquery/internal/models"
)

// Decode reverses Encode. Fields the schema does not know are skipped, so
// tokens issued by the service decode even when they carry extra data.
func Decode(t Token) (models.SearchQuery, error) {
	b, err := t.Bytes()
	if err != nil {
		return models.SearchQuery{}, err
	}
	return DecodeBytes(b)
}

func DecodeBytes(b []byte) (models.SearchQuery, error) {
	if len(b) == 0 {
		return models.SearchQuery{}, truncated(0, "empty token")
	}
	return unmarshalQuery(b)
}

// value is one decoded field. Off is the absolute offset of the value bytes.
type value struct {
	Field  field
	Varint uint64
	Bytes  []byte
	Off    int
}

// walk iterates the fields of one message. base is the absolute offset of
// buf inside the token and is only used for error reporting.
func walk(msg *message, buf []byte, base int, fn func(v value) error) error {
	pos := 0
	for pos < len(buf) {
		num, typ, n := protowire.ConsumeTag(buf[pos:])
		if n < 0 {
			return parseErr(base+pos, n, "%s: bad tag", msg.Name)
		}
		pos += n

		f, known := msg.lookup(num)
		if !known {
			m, err := skip(num, typ, buf[pos:], base+pos, msg)
			if err != nil {
				return err
			}
			pos += m
			continue
		}

		switch {
		case typ == f.Type:
		case f.Mult == packedRepeated && typ == protowire.BytesType:
		default:
			return malformed(base+pos, "%s.%s: wire type %d, want %d", msg.Name, f.Name, typ, f.Type)
		}

		v := value{Field: f, Off: base + pos}
		switch typ {
		case protowire.VarintType:
			x, m := protowire.ConsumeVarint(buf[pos:])
			if m < 0 {
				return parseErr(base+pos, m, "%s.%s", msg.Name, f.Name)
			}
			v.Varint = x
			pos += m
		case protowire.BytesType:
			b, m, err := consumeBytes(buf[pos:], base+pos, msg.Name+"."+f.Name)
			if err != nil {
				return err
			}
			v.Bytes = b
			v.Off = base + pos + m - len(b)
			pos += m
		default:
			return malformed(base+pos, "%s.%s: unsupported wire type %d", msg.Name, f.Name, typ)
		}

		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// consumeBytes reads a length-delimited value. A declared length that runs
// past the buffer is malformed rather than truncated: the length prefix
// itself was read in full.
func consumeBytes(buf []byte, off int, name string) ([]byte, int, error) {
	l, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return nil, 0, parseErr(off, n, "%s: length", name)
	}
	if l > uint64(len(buf)-n) {
		return nil, 0, malformed(off, "%s: declared length %d exceeds %d remaining bytes", name, l, len(buf)-n)
	}
	end := n + int(l)
	return buf[n:end], end, nil
}

func skip(num protowire.Number, typ protowire.Type, buf []byte, off int, msg *message) (int, error) {
	if typ == protowire.BytesType {
		_, m, err := consumeBytes(buf, off, msg.Name+": unknown field")
		return m, err
	}
	m := protowire.ConsumeFieldValue(num, typ, buf)
	if m < 0 {
		return 0, parseErr(off, m, "%s: unknown field %d", msg.Name, num)
	}
	return m, nil
}

// parseErr maps a negative protowire length to the token error kinds.
func parseErr(off, n int, format string, args ...any) error {
	err := protowire.ParseError(n)
	var te *TokenError
	if errors.Is(err, io.ErrUnexpectedEOF) {
		te = truncated(off, format, args...)
	} else {
		te = malformed(off, format, args...)
	}
	te.Err = err
	return te
}

func unmarshalQuery(buf []byte) (models.SearchQuery, error) {
	var q models.SearchQuery
	err := walk(queryMessage, buf, 0, func(v value) error {
		switch v.Field.Num {
		case queryType:
			q.QueryType = int(v.Varint)
		case queryStep:
			q.Step = int(v.Varint)
		case queryLegs:
			leg, err := unmarshalLeg(v.Bytes, v.Off)
			if err != nil {
				return err
			}
			q.Legs = append(q.Legs, leg)
		case queryPassengers:
			if v.Bytes == nil {
				addPassenger(&q.Passengers, passengerKind(v.Varint))
				return nil
			}
			return unpackPassengers(&q.Passengers, v.Bytes, v.Off)
		case querySeat:
			q.Cabin = models.CabinClass(v.Varint)
		case queryLayout:
			q.Layout = int(v.Varint)
		case queryLimits:
			l, err := unmarshalLimits(v.Bytes, v.Off)
			if err != nil {
				return err
			}
			q.Limits = &l
		case queryTrip:
			q.Trip = models.TripType(v.Varint)
		case queryExcludeBasicEc:
			q.ExcludeBasicEconomy = protowire.DecodeBool(v.Varint)
		}
		return nil
	})
	if err != nil {
		return models.SearchQuery{}, err
	}
	q.MaxStops = sharedMaxStops(q.Legs)
	return q, nil
}

func unpackPassengers(p *models.Passengers, b []byte, off int) error {
	for pos := 0; pos < len(b); {
		x, n := protowire.ConsumeVarint(b[pos:])
		if n < 0 {
			return parseErr(off+pos, n, "query.passengers: packed value")
		}
		addPassenger(p, passengerKind(x))
		pos += n
	}
	return nil
}

// Unknown passenger kinds are ignored.
func addPassenger(p *models.Passengers, kind passengerKind) {
	switch kind {
	case passengerAdult:
		p.Adults++
	case passengerChild:
		p.Children++
	case passengerInfantInSeat:
		p.InfantsInSeat++
	case passengerInfantOnLap:
		p.InfantsOnLap++
	}
}

// sharedMaxStops lifts a per-leg stop limit to the query when every leg
// carries the same one.
func sharedMaxStops(legs []models.Leg) *int {
	if len(legs) == 0 || legs[0].MaxStops == nil {
		return nil
	}
	v := *legs[0].MaxStops
	for _, leg := range legs[1:] {
		if leg.MaxStops == nil || *leg.MaxStops != v {
			return nil
		}
	}
	return &v
}

type segment struct {
	Origin, Destination, Airline, FlightNumber string
	Date                                       models.Date
}

func unmarshalLeg(buf []byte, base int) (models.Leg, error) {
	var (
		leg      models.Leg
		segments []segment
	)
	err := walk(legMessage, buf, base, func(v value) error {
		switch v.Field.Num {
		case legDate:
			d, err := models.ParseDate(string(v.Bytes))
			if err != nil {
				return malformed(v.Off, "leg.date: %q is not a date", v.Bytes)
			}
			leg.Date = d
		case legSegments:
			s, err := unmarshalSegment(v.Bytes, v.Off)
			if err != nil {
				return err
			}
			segments = append(segments, s)
		case legMaxStops:
			leg.MaxStops = models.IntPtr(int(v.Varint))
		case legAirlines:
			leg.Airlines = append(leg.Airlines, string(v.Bytes))
		case legFrom:
			code, err := unmarshalPlace(v.Bytes, v.Off)
			if err != nil {
				return err
			}
			leg.Origin = code
		case legTo:
			code, err := unmarshalPlace(v.Bytes, v.Off)
			if err != nil {
				return err
			}
			leg.Destination = code
		}
		return nil
	})
	if err != nil {
		return models.Leg{}, err
	}

	if len(segments) > 0 {
		sel := segments[0].asSelected()
		leg.Selected = &sel
		for _, c := range segments[1:] {
			leg.Connecting = append(leg.Connecting, models.ConnectingSegment(c.asSelected()))
		}
	}
	return leg, nil
}

func (s segment) asSelected() models.SelectedFlight {
	return models.SelectedFlight{
		Airline:      s.Airline,
		FlightNumber: s.FlightNumber,
		Origin:       s.Origin,
		Destination:  s.Destination,
		Date:         s.Date,
	}
}

func unmarshalSegment(buf []byte, base int) (segment, error) {
	var s segment
	err := walk(segmentMessage, buf, base, func(v value) error {
		switch v.Field.Num {
		case segmentFrom:
			s.Origin = string(v.Bytes)
		case segmentDate:
			d, err := models.ParseDate(string(v.Bytes))
			if err != nil {
				return malformed(v.Off, "segment.date: %q is not a date", v.Bytes)
			}
			s.Date = d
		case segmentTo:
			s.Destination = string(v.Bytes)
		case segmentAirline:
			s.Airline = string(v.Bytes)
		case segmentNumber:
			s.FlightNumber = string(v.Bytes)
		}
		return nil
	})
	return s, err
}

// The place kind is implied by the code, so only the code is kept.
func unmarshalPlace(buf []byte, base int) (string, error) {
	var code string
	err := walk(placeMessage, buf, base, func(v value) error {
		if v.Field.Num == placeCode {
			code = string(v.Bytes)
		}
		return nil
	})
	return code, err
}

func unmarshalLimits(buf []byte, base int) (models.Limits, error) {
	var l models.Limits
	err := walk(limitsMessage, buf, base, func(v value) error {
		switch v.Field.Num {
		case limitsMax:
			l.Max = int64(v.Varint)
		case limitsAux:
			l.Aux = int64(v.Varint)
		}
		return nil
	})
	return l, err
}
