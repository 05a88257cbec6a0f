package ranking

import (
	"math"

	"github.com/dharmasatrya/flightquery/internal/models"
)

const (
	PriceWeight    = 0.5
	DurationWeight = 0.3
	StopsWeight    = 0.2

	// Score given to the price component when an itinerary has no price.
	missingPriceScore = 100
)

func CalculateScores(itineraries []models.Itinerary) []models.Itinerary {
	if len(itineraries) == 0 {
		return itineraries
	}

	maxPrice := findMaxPrice(itineraries)
	maxDuration := findMaxDuration(itineraries)

	result := make([]models.Itinerary, len(itineraries))
	for i, it := range itineraries {
		result[i] = it
		result[i].BestValueScore = CalculateBestValue(it, maxPrice, maxDuration)
	}

	return result
}

// Lower score = better value
func CalculateBestValue(it models.Itinerary, maxPrice, maxDuration float64) float64 {
	priceScore := 0.0
	if price, ok := it.Price(); !ok {
		priceScore = missingPriceScore
	} else if maxPrice > 0 {
		priceScore = (price / maxPrice) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		durationScore = (float64(it.TravelTime) / maxDuration) * 100
	}

	stopsScore := float64(it.Stops()) * 15
	score := (priceScore * PriceWeight) + (durationScore * DurationWeight) + (stopsScore * StopsWeight)

	return math.Round(score*100) / 100
}

func findMaxPrice(itineraries []models.Itinerary) float64 {
	maxPrice := 0.0
	for _, it := range itineraries {
		if price, ok := it.Price(); ok && price > maxPrice {
			maxPrice = price
		}
	}
	return maxPrice
}

func findMaxDuration(itineraries []models.Itinerary) float64 {
	maxDuration := 0.0
	for _, it := range itineraries {
		dur := float64(it.TravelTime)
		if dur > maxDuration {
			maxDuration = dur
		}
	}
	return maxDuration
}
