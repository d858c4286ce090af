package analysis

import (
	"fmt"

	"github.com/aluiziolira/go-book-analytics/dataset"
	"github.com/aluiziolira/go-book-analytics/models"
	"github.com/aluiziolira/go-book-analytics/parser"
)

// Categorical answers the Yes/No question set, keyed by question identifier.
func Categorical(ds *dataset.Dataset) map[string]Answer {
	results := make(map[string]Answer)

	// Are there any Travel books marked as out of stock?
	travelOut := countWhere(ds, func(r *models.Record) bool {
		return r.Category == CategoryTravel && r.AvailabilityStatus == parser.StatusOutOfStock
	})
	results["travel_out_of_stock"] = Answer{
		Answer:        yesNo(travelOut > 0),
		Count:         travelOut,
		Justification: fmt.Sprintf("Found %d books in Travel category marked as 'Out of stock'", travelOut),
	}

	// Does Mystery contain five-star books?
	mysteryFive := countWhere(ds, func(r *models.Record) bool {
		return r.Category == CategoryMystery && r.Rating == "Five"
	})
	results["mystery_five_star"] = Answer{
		Answer:        yesNo(mysteryFive > 0),
		Count:         mysteryFive,
		Justification: fmt.Sprintf("Found %d books in Mystery category with 5-star rating", mysteryFive),
	}

	// Are there Classics priced below £10?
	cheapClassics := countWhere(ds, func(r *models.Record) bool {
		return r.Category == CategoryClassics && r.Price < cheapClassicCutoff
	})
	results["classics_below_10"] = Answer{
		Answer:        yesNo(cheapClassics > 0),
		Count:         cheapClassics,
		Justification: fmt.Sprintf("Found %d books in Classics category priced below £10", cheapClassics),
	}

	// Are more than half the Mystery books priced above £20?
	mysteryTotal := countWhere(ds, func(r *models.Record) bool {
		return r.Category == CategoryMystery
	})
	mysteryAbove := countWhere(ds, func(r *models.Record) bool {
		return r.Category == CategoryMystery && r.Price > mysteryPriceCutoff
	})
	pct := percentage(mysteryAbove, mysteryTotal)
	results["mystery_above_20_percent"] = Answer{
		Answer:        yesNo(pct > majorityThresholdPc),
		Count:         mysteryAbove,
		Total:         mysteryTotal,
		Percentage:    round2(pct),
		Justification: fmt.Sprintf("%.1f%% of Mystery books are priced above £20", pct),
	}

	return results
}
