// Package parser normalizes raw catalog items into the analytical schema.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-book-analytics/models"
)

// Availability statuses produced by normalization.
const (
	StatusInStock    = "In stock"
	StatusOutOfStock = "Out of stock"
)

// AvailabilityKey is the product-table row label the transformer reads.
const AvailabilityKey = "Availability"

// The catalog serves Latin-1 bytes read as UTF-8, so the pound sign usually
// arrives mojibaked as "Â£". Both encodings are accepted.
var currencyPrefixes = []string{"Â£", "£"}

var digitRun = regexp.MustCompile(`\d+`)

// ValidateRaw ensures the crawler captured the fields normalization needs.
func ValidateRaw(b *models.RawBook) error {
	if b == nil {
		return fmt.Errorf("raw book is nil")
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("raw book missing title")
	}
	if strings.TrimSpace(b.Price) == "" {
		return fmt.Errorf("raw book missing price for %s", b.Title)
	}
	if strings.TrimSpace(b.Rating) == "" {
		return fmt.Errorf("raw book missing rating for %s", b.Title)
	}
	if strings.TrimSpace(b.Link) == "" {
		return fmt.Errorf("raw book missing product link for %s", b.Title)
	}
	return nil
}

// ParsePrice strips the currency prefix and parses the remainder as a
// decimal. An unparseable price is a record-level failure.
func ParsePrice(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	for _, prefix := range currencyPrefixes {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}
	cleaned = strings.TrimSpace(cleaned)

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", text, err)
	}
	if price < 0 {
		return 0, fmt.Errorf("parse price %q: negative value", text)
	}
	return price, nil
}

// AvailabilityStatus maps the raw availability text to the binary status.
// The substring test is case-sensitive, matching the catalog's phrasing.
func AvailabilityStatus(text string) string {
	if strings.Contains(text, StatusInStock) {
		return StatusInStock
	}
	return StatusOutOfStock
}

// AvailabilityCount returns the first run of digits in the availability
// text, or 0 when none exists.
func AvailabilityCount(text string) int {
	match := digitRun.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// DescriptionLength is the whitespace-split word count of the description.
func DescriptionLength(text string) int {
	return len(strings.Fields(text))
}

// Normalize derives the analytical record from a raw item. The availability
// text is consumed here and not carried into the record.
func Normalize(raw *models.RawBook) (*models.Record, error) {
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}

	price, err := ParsePrice(raw.Price)
	if err != nil {
		return nil, err
	}

	availability := raw.Attrs[AvailabilityKey]

	return &models.Record{
		Title:              raw.Title,
		Description:        raw.Description,
		Category:           raw.Category,
		Price:              price,
		Rating:             raw.Rating,
		AvailabilityStatus: AvailabilityStatus(availability),
		AvailabilityCount:  AvailabilityCount(availability),
		DescriptionLength:  DescriptionLength(raw.Description),
	}, nil
}
