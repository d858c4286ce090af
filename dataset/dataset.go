// Package dataset holds the normalized, filtered catalog dataset and its
// persistence.
package dataset

import (
	"sort"

	"github.com/aluiziolira/go-book-analytics/models"
)

// Dataset is the ordered, read-only collection of normalized records the
// analysis layer consumes. It is built once per crawl (or load) and never
// mutated afterwards.
type Dataset struct {
	Records []*models.Record
}

// New wraps records in a dataset.
func New(records []*models.Record) *Dataset {
	return &Dataset{Records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Categories returns the distinct categories present, sorted
// lexicographically.
func (d *Dataset) Categories() []string {
	seen := make(map[string]struct{})
	for _, r := range d.Records {
		seen[r.Category] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Summary holds the overview figures the report layer displays.
type Summary struct {
	TotalBooks     int            `json:"total_books"`
	CategoryCounts map[string]int `json:"category_counts"`
	PriceMin       float64        `json:"price_min"`
	PriceMax       float64        `json:"price_max"`
	PriceMean      float64        `json:"price_mean"`
}

// Summarize computes the dataset overview.
func (d *Dataset) Summarize() Summary {
	summary := Summary{
		TotalBooks:     d.Len(),
		CategoryCounts: make(map[string]int),
	}
	if d.Len() == 0 {
		return summary
	}

	var sum float64
	summary.PriceMin = d.Records[0].Price
	summary.PriceMax = d.Records[0].Price
	for _, r := range d.Records {
		summary.CategoryCounts[r.Category]++
		sum += r.Price
		if r.Price < summary.PriceMin {
			summary.PriceMin = r.Price
		}
		if r.Price > summary.PriceMax {
			summary.PriceMax = r.Price
		}
	}
	summary.PriceMean = sum / float64(d.Len())
	return summary
}
