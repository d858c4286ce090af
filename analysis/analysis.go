// Package analysis answers the fixed battery of analytical questions over a
// catalog dataset. Every function here is a pure, read-only query.
package analysis

import (
	"math"
	"sort"

	"github.com/aluiziolira/go-book-analytics/dataset"
	"github.com/aluiziolira/go-book-analytics/models"
)

// Categories and thresholds the question battery is phrased around.
const (
	CategoryTravel            = "Travel"
	CategoryMystery           = "Mystery"
	CategoryHistoricalFiction = "Historical Fiction"
	CategoryClassics          = "Classics"

	cheapClassicCutoff  = 10.0
	mysteryPriceCutoff  = 20.0
	premiumPriceCutoff  = 30.0
	majorityThresholdPc = 50.0
)

// Answer is the result of one analytical question: a payload, supporting
// figures, and a human-readable justification. Unused fields stay zero and
// are omitted from JSON.
type Answer struct {
	Answer        string             `json:"answer,omitempty"`
	Category      string             `json:"category,omitempty"`
	Count         int                `json:"count,omitempty"`
	Total         int                `json:"total,omitempty"`
	Percentage    float64            `json:"percentage,omitempty"`
	Value         float64            `json:"value,omitempty"`
	MinValue      float64            `json:"min_value,omitempty"`
	MaxValue      float64            `json:"max_value,omitempty"`
	Values        map[string]float64 `json:"values,omitempty"`
	Counts        map[string]int     `json:"counts,omitempty"`
	Breakdown     []CategoryShare    `json:"breakdown,omitempty"`
	Justification string             `json:"justification"`
}

// CategoryShare is one category's slice of a threshold question.
type CategoryShare struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// CategoryStats holds the grouped statistics for one category. Presentation
// values are rounded to 2 decimal places.
type CategoryStats struct {
	Category              string  `json:"category"`
	Count                 int     `json:"count"`
	PriceMin              float64 `json:"price_min"`
	PriceMax              float64 `json:"price_max"`
	PriceMean             float64 `json:"price_mean"`
	PriceSum              float64 `json:"price_sum"`
	AvailabilitySum       int     `json:"availability_sum"`
	DescriptionLengthMean float64 `json:"description_length_mean"`
}

// GroupByCategory reduces the dataset per distinct category. The result is
// ordered lexicographically by category name, which makes every downstream
// "first wins" extremal scan deterministic.
func GroupByCategory(ds *dataset.Dataset) []CategoryStats {
	byCategory := make(map[string][]*models.Record)
	for _, r := range ds.Records {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	out := make([]CategoryStats, 0, len(categories))
	for _, category := range categories {
		records := byCategory[category]

		stats := CategoryStats{
			Category: category,
			Count:    len(records),
			PriceMin: records[0].Price,
			PriceMax: records[0].Price,
		}

		var priceSum float64
		var lengthSum int
		for _, r := range records {
			priceSum += r.Price
			lengthSum += r.DescriptionLength
			stats.AvailabilitySum += r.AvailabilityCount
			if r.Price < stats.PriceMin {
				stats.PriceMin = r.Price
			}
			if r.Price > stats.PriceMax {
				stats.PriceMax = r.Price
			}
		}

		stats.PriceMin = round2(stats.PriceMin)
		stats.PriceMax = round2(stats.PriceMax)
		stats.PriceSum = round2(priceSum)
		stats.PriceMean = round2(priceSum / float64(len(records)))
		stats.DescriptionLengthMean = round2(float64(lengthSum) / float64(len(records)))

		out = append(out, stats)
	}

	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// percentage guards against a zero denominator, returning 0 instead of
// raising.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func yesNo(condition bool) string {
	if condition {
		return "Yes"
	}
	return "No"
}

func countWhere(ds *dataset.Dataset, match func(*models.Record) bool) int {
	count := 0
	for _, r := range ds.Records {
		if match(r) {
			count++
		}
	}
	return count
}
