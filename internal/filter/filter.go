package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/ranking"
)

func Apply(itineraries []models.Itinerary, filters *models.SearchFilters, sortBy, sortOrder string) []models.Itinerary {
	filtered := applyFilters(itineraries, filters)

	if sortBy == "best_value" {
		filtered = ranking.CalculateScores(filtered)
	}

	sorted := applySort(filtered, sortBy, sortOrder)

	return sorted
}

func applyFilters(itineraries []models.Itinerary, filters *models.SearchFilters) []models.Itinerary {
	result := make([]models.Itinerary, 0, len(itineraries))
	for _, it := range itineraries {
		if filters == nil || matchesFilters(it, filters) {
			result = append(result, it)
		}
	}
	return result
}

func matchesFilters(it models.Itinerary, filters *models.SearchFilters) bool {
	price, hasPrice := it.Price()
	if filters.PriceMin != nil && (!hasPrice || price < *filters.PriceMin) {
		return false
	}
	if filters.PriceMax != nil && (!hasPrice || price > *filters.PriceMax) {
		return false
	}

	if filters.MaxStops != nil && it.Stops() > *filters.MaxStops {
		return false
	}

	if len(filters.Airlines) > 0 && !flownBy(it, filters.Airlines) {
		return false
	}

	if !withinTimeOfDay(it.DepartureTime, filters.DepartureTimeMin, filters.DepartureTimeMax) {
		return false
	}
	if !withinTimeOfDay(it.ArrivalTime, filters.ArrivalTimeMin, filters.ArrivalTimeMax) {
		return false
	}

	if filters.MaxDuration != nil && it.TravelTime > *filters.MaxDuration {
		return false
	}

	return true
}

// flownBy matches the itinerary's airline or any of its flights' carriers.
func flownBy(it models.Itinerary, airlines []string) bool {
	for _, airline := range airlines {
		if strings.EqualFold(it.AirlineCode, airline) {
			return true
		}
		for _, f := range it.Flights {
			if strings.EqualFold(f.Airline, airline) {
				return true
			}
		}
	}
	return false
}

// An itinerary with no decoded time passes time filters.
func withinTimeOfDay(t *models.ClockTime, min, max *string) bool {
	if t == nil {
		return true
	}
	minutes := t.Minutes()
	if min != nil {
		if bound, err := parseTimeOfDay(*min); err == nil && minutes < bound {
			return false
		}
	}
	if max != nil {
		if bound, err := parseTimeOfDay(*max); err == nil && minutes > bound {
			return false
		}
	}
	return true
}

func parseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func applySort(its []models.Itinerary, sortBy, sortOrder string) []models.Itinerary {
	if len(its) == 0 {
		return its
	}

	ascending := strings.ToLower(sortOrder) != "desc"
	order := func(less, greater bool) bool {
		if ascending {
			return less
		}
		return greater
	}

	switch strings.ToLower(sortBy) {
	case "duration":
		sort.SliceStable(its, func(i, j int) bool {
			return order(its[i].TravelTime < its[j].TravelTime, its[i].TravelTime > its[j].TravelTime)
		})

	case "departure":
		sort.SliceStable(its, func(i, j int) bool {
			a, b := departureKey(its[i]), departureKey(its[j])
			return order(a < b, a > b)
		})

	case "best_value":
		sort.SliceStable(its, func(i, j int) bool {
			return order(its[i].BestValueScore < its[j].BestValueScore, its[i].BestValueScore > its[j].BestValueScore)
		})

	case "stops":
		sort.SliceStable(its, func(i, j int) bool {
			return order(its[i].Stops() < its[j].Stops(), its[i].Stops() > its[j].Stops())
		})

	default:
		// Price; itineraries without a price always sort last.
		sort.SliceStable(its, func(i, j int) bool {
			pi, oki := its[i].Price()
			pj, okj := its[j].Price()
			if oki != okj {
				return oki
			}
			if sortBy == "price" {
				return order(pi < pj, pi > pj)
			}
			return pi < pj
		})
	}

	return its
}

// departureKey orders by date then time; unknown values sort first.
func departureKey(it models.Itinerary) string {
	key := undatedKey
	if it.DepartureDate != nil {
		key = it.DepartureDate.String()
	}
	if it.DepartureTime != nil {
		key += "T" + it.DepartureTime.String()
	}
	return key
}

// Sorts before every real date.
const undatedKey = "0000-00-00"
