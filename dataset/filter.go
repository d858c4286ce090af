package dataset

import "github.com/aluiziolira/go-book-analytics/models"

// CategorySet is the configured target-category membership test.
type CategorySet map[string]struct{}

// NewCategorySet builds a set from the configured category names.
func NewCategorySet(categories []string) CategorySet {
	set := make(CategorySet, len(categories))
	for _, category := range categories {
		set[category] = struct{}{}
	}
	return set
}

// Contains reports membership by exact string match.
func (s CategorySet) Contains(category string) bool {
	_, ok := s[category]
	return ok
}

// Filter restricts records to the target categories and verifies each kept
// record carries the required projected fields. Upstream construction
// guarantees presence; the check is a verification boundary. Filter is
// idempotent: applying it to its own output is a no-op.
func Filter(records []*models.Record, targets CategorySet) []*models.Record {
	out := make([]*models.Record, 0, len(records))
	for _, r := range records {
		if r == nil || !targets.Contains(r.Category) {
			continue
		}
		if r.Title == "" || r.Rating == "" || r.AvailabilityStatus == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
