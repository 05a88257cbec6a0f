package tfs

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// The flight service does not publish its schema. The table below was
// recovered from tokens the service issues and is the single source of field
// numbers for both Encode and Decode.

const (
	queryType           protowire.Number = 1
	queryStep           protowire.Number = 2
	queryLegs           protowire.Number = 3
	queryPassengers     protowire.Number = 8
	querySeat           protowire.Number = 9
	queryLayout         protowire.Number = 14
	queryLimits         protowire.Number = 16
	queryTrip           protowire.Number = 19
	queryExcludeBasicEc protowire.Number = 25

	legDate     protowire.Number = 2
	legSegments protowire.Number = 4
	legMaxStops protowire.Number = 5
	legAirlines protowire.Number = 6
	legFrom     protowire.Number = 13
	legTo       protowire.Number = 14

	placeKind protowire.Number = 1
	placeCode protowire.Number = 2

	segmentFrom    protowire.Number = 1
	segmentDate    protowire.Number = 2
	segmentTo      protowire.Number = 3
	segmentAirline protowire.Number = 5
	segmentNumber  protowire.Number = 6

	limitsMax protowire.Number = 1
	limitsAux protowire.Number = 2
)

type multiplicity int

const (
	single multiplicity = iota
	repeated
	// packedRepeated fields are written unpacked but accepted in either form.
	packedRepeated
)

type field struct {
	Num  protowire.Number
	Name string
	Type protowire.Type
	Mult multiplicity
}

type message struct {
	Name   string
	Fields []field
	byNum  map[protowire.Number]field
}

func newMessage(name string, fields ...field) *message {
	m := &message{Name: name, Fields: fields, byNum: make(map[protowire.Number]field, len(fields))}
	for _, f := range fields {
		if _, dup := m.byNum[f.Num]; dup {
			panic(fmt.Sprintf("tfs: duplicate field %d in %s", f.Num, name))
		}
		m.byNum[f.Num] = f
	}
	return m
}

func (m *message) lookup(num protowire.Number) (field, bool) {
	f, ok := m.byNum[num]
	return f, ok
}

// mustField panics when the encoder asks for a field the table does not
// declare with that wire type.
func (m *message) mustField(num protowire.Number, typ protowire.Type) field {
	f, ok := m.byNum[num]
	if !ok || f.Type != typ {
		panic(fmt.Sprintf("tfs: %s has no field %d of wire type %d", m.Name, num, typ))
	}
	return f
}

var (
	queryMessage = newMessage("query",
		field{queryType, "query_type", protowire.VarintType, single},
		field{queryStep, "step", protowire.VarintType, single},
		field{queryLegs, "legs", protowire.BytesType, repeated},
		field{queryPassengers, "passengers", protowire.VarintType, packedRepeated},
		field{querySeat, "seat", protowire.VarintType, single},
		field{queryLayout, "layout", protowire.VarintType, single},
		field{queryLimits, "limits", protowire.BytesType, single},
		field{queryTrip, "trip", protowire.VarintType, single},
		field{queryExcludeBasicEc, "exclude_basic_economy", protowire.VarintType, single},
	)

	legMessage = newMessage("leg",
		field{legDate, "date", protowire.BytesType, single},
		field{legSegments, "segments", protowire.BytesType, repeated},
		field{legMaxStops, "max_stops", protowire.VarintType, single},
		field{legAirlines, "airlines", protowire.BytesType, repeated},
		field{legFrom, "from", protowire.BytesType, single},
		field{legTo, "to", protowire.BytesType, single},
	)

	placeMessage = newMessage("place",
		field{placeKind, "kind", protowire.VarintType, single},
		field{placeCode, "code", protowire.BytesType, single},
	)

	segmentMessage = newMessage("segment",
		field{segmentFrom, "from", protowire.BytesType, single},
		field{segmentDate, "date", protowire.BytesType, single},
		field{segmentTo, "to", protowire.BytesType, single},
		field{segmentAirline, "airline", protowire.BytesType, single},
		field{segmentNumber, "flight_number", protowire.BytesType, single},
	)

	limitsMessage = newMessage("limits",
		field{limitsMax, "max", protowire.VarintType, single},
		field{limitsAux, "aux", protowire.VarintType, single},
	)
)

const (
	defaultQueryType = 28
	defaultStep      = 2
	defaultLayout    = 1

	// The service accepts at most nine travellers per search.
	maxPassengers = 9
)

type passengerKind uint64

const (
	passengerAdult        passengerKind = 1
	passengerChild        passengerKind = 2
	passengerInfantInSeat passengerKind = 3
	passengerInfantOnLap  passengerKind = 4
)

type placeType uint64

const (
	placeAirport placeType = 1
	placeCity    placeType = 2
)
