package analysis

import (
	"fmt"

	"github.com/aluiziolira/go-book-analytics/dataset"
	"github.com/aluiziolira/go-book-analytics/parser"
)

// Numerical answers the value-extraction question set, keyed by question
// identifier.
func Numerical(ds *dataset.Dataset) map[string]Answer {
	results := make(map[string]Answer)
	grouped := GroupByCategory(ds)

	// Mean price per category.
	meanPrices := make(map[string]float64, len(grouped))
	for _, stats := range grouped {
		meanPrices[stats.Category] = stats.PriceMean
	}
	results["average_prices"] = Answer{
		Values:        meanPrices,
		Justification: "Calculated mean price for each category from all available books",
	}

	// Price range for Historical Fiction.
	if stats, ok := findStats(grouped, CategoryHistoricalFiction); ok {
		results["historical_fiction_price_range"] = Answer{
			Category:      CategoryHistoricalFiction,
			MinValue:      stats.PriceMin,
			MaxValue:      stats.PriceMax,
			Justification: fmt.Sprintf("Price range for Historical Fiction: £%.2f - £%.2f", stats.PriceMin, stats.PriceMax),
		}
	} else {
		results["historical_fiction_price_range"] = Answer{
			Category:      CategoryHistoricalFiction,
			Justification: "No books found in Historical Fiction category",
		}
	}

	// In-stock counts per category.
	inStock := make(map[string]int)
	for _, r := range ds.Records {
		if r.AvailabilityStatus == parser.StatusInStock {
			inStock[r.Category]++
		}
	}
	results["in_stock_counts"] = Answer{
		Counts:        inStock,
		Justification: "Count of books marked as 'In stock' for each category",
	}

	// Total value of the Travel category.
	var travelSum float64
	if stats, ok := findStats(grouped, CategoryTravel); ok {
		travelSum = stats.PriceSum
	}
	results["travel_total_value"] = Answer{
		Category:      CategoryTravel,
		Value:         travelSum,
		Justification: fmt.Sprintf("Sum of all book prices in Travel category: £%.2f", travelSum),
	}

	return results
}

func findStats(grouped []CategoryStats, category string) (CategoryStats, bool) {
	for _, stats := range grouped {
		if stats.Category == category {
			return stats, true
		}
	}
	return CategoryStats{}, false
}
