package decoder

// Positions inside the service's result payload. The payload is a nested
// array with no field names, so these indices are the whole contract.

var (
	bestBucketPath  = []int{2, 0}
	otherBucketPath = []int{3, 0}
)

// entry: [details, summary]
const (
	entryDetails = 0
	entrySummary = 1
)

const (
	detailAirlineCode   = 0
	detailAirlineNames  = 1
	detailFlights       = 2
	detailDepartAirport = 3
	detailDepartDate    = 4
	detailDepartTime    = 5
	detailArriveAirport = 6
	detailArriveDate    = 7
	detailArriveTime    = 8
	detailTravelTime    = 9
	detailLayovers      = 13
)

const (
	flightOperator        = 2
	flightDepartAirport   = 3
	flightDepartName      = 4
	flightArriveAirport   = 5
	flightArriveName      = 6
	flightDepartTime      = 8
	flightArriveTime      = 10
	flightTravelTime      = 11
	flightAircraft        = 17
	flightDepartDate      = 20
	flightArriveDate      = 21
	flightDesignator      = 22
	designatorAirline     = 0
	designatorNumber      = 1
	designatorAirlineName = 3
)

const (
	layoverMinutes     = 0
	layoverAirport     = 1
	layoverAirportName = 4
	layoverCity        = 5
)

// summary: [[currency, amount], booking token]
const (
	summaryPrice        = 0
	summaryBookingToken = 1
	priceCurrency       = 0
	priceAmount         = 1
)
