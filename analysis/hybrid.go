package analysis

import (
	"fmt"

	"github.com/aluiziolira/go-book-analytics/dataset"
	"github.com/aluiziolira/go-book-analytics/parser"
)

// Hybrid answers the mixed question set, keyed by question identifier.
//
// Extremal questions scan the lexicographically ordered grouped statistics
// with a strictly-greater comparison, so on a tie the lexicographically
// smallest category wins. The source catalog makes ties unlikely but the
// rule keeps repeated runs identical.
func Hybrid(ds *dataset.Dataset) map[string]Answer {
	results := make(map[string]Answer)
	grouped := GroupByCategory(ds)

	// Category with the highest mean price.
	if len(grouped) == 0 {
		results["highest_avg_price_category"] = Answer{
			Category:      "None",
			Justification: "No books available to compare average prices",
		}
	} else {
		best := grouped[0]
		for _, stats := range grouped[1:] {
			if stats.PriceMean > best.PriceMean {
				best = stats
			}
		}
		results["highest_avg_price_category"] = Answer{
			Category:      best.Category,
			Value:         best.PriceMean,
			Justification: fmt.Sprintf("%s has the highest average price at £%.2f", best.Category, best.PriceMean),
		}
	}

	// Categories where more than half the books cost above £30.
	var premium []CategoryShare
	for _, stats := range grouped {
		above := 0
		for _, r := range ds.Records {
			if r.Category == stats.Category && r.Price > premiumPriceCutoff {
				above++
			}
		}
		pct := percentage(above, stats.Count)
		if pct > majorityThresholdPc {
			premium = append(premium, CategoryShare{
				Category:   stats.Category,
				Count:      above,
				Total:      stats.Count,
				Percentage: round2(pct),
			})
		}
	}
	results["categories_above_30_percent"] = Answer{
		Breakdown:     premium,
		Count:         len(premium),
		Justification: fmt.Sprintf("Found %d categories with >50%% books above £30", len(premium)),
	}

	// Mean description length per category.
	meanLengths := make(map[string]float64, len(grouped))
	for _, stats := range grouped {
		meanLengths[stats.Category] = stats.DescriptionLengthMean
	}
	results["average_description_lengths"] = Answer{
		Values:        meanLengths,
		Justification: "Average word count in book descriptions by category",
	}

	// Category with the highest out-of-stock share.
	bestCategory := ""
	bestPct := 0.0
	for _, stats := range grouped {
		out := 0
		for _, r := range ds.Records {
			if r.Category == stats.Category && r.AvailabilityStatus == parser.StatusOutOfStock {
				out++
			}
		}
		if pct := percentage(out, stats.Count); pct > bestPct {
			bestPct = pct
			bestCategory = stats.Category
		}
	}
	if bestPct > 0 {
		results["highest_out_of_stock_percentage"] = Answer{
			Category:      bestCategory,
			Percentage:    round2(bestPct),
			Justification: fmt.Sprintf("%s has the highest percentage of out-of-stock books at %.1f%%", bestCategory, bestPct),
		}
	} else {
		results["highest_out_of_stock_percentage"] = Answer{
			Category:      "None",
			Justification: "No books found marked as out of stock",
		}
	}

	return results
}
