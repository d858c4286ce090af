// Package models defines the data structures shared by the crawl and
// analysis stages.
package models

import (
	"fmt"
	"strconv"
	"time"
)

// RawBook is the merged view of one catalog entry: the listing-page fields
// plus everything the detail page provided. Attrs carries the product
// information table verbatim, keyed by the row labels found on the page
// (UPC, Tax, Availability, ...) -- the key set is not fixed.
type RawBook struct {
	Title       string
	Price       string
	Rating      string
	Link        string
	Category    string
	Description string
	Attrs       map[string]string
	ScrapedAt   time.Time
}

// Record is the normalized analytical schema derived 1:1 from a RawBook.
// The raw availability text is intentionally absent: status and count are
// derived from it and the text itself is dropped.
type Record struct {
	Title              string  `csv:"Title" json:"title"`
	Description        string  `csv:"Description" json:"description"`
	Category           string  `csv:"Category" json:"category"`
	Price              float64 `csv:"Price" json:"price"`
	Rating             string  `csv:"Rating" json:"rating"`
	AvailabilityStatus string  `csv:"Availability Status" json:"availability_status"`
	AvailabilityCount  int     `csv:"Availability_Count" json:"availability_count"`
	DescriptionLength  int     `csv:"Description Length" json:"description_length"`
}

// CrawlResult summarises a finished crawl.
type CrawlResult struct {
	StartTime    time.Time
	EndTime      time.Time
	PageCount    int
	ItemCount    int
	SkippedCount int
	StopReason   string
	ErrorsByKind map[string]int
}

// CSVHeader is the column order of the persisted dataset.
func CSVHeader() []string {
	return []string{
		"Title",
		"Description",
		"Category",
		"Price",
		"Rating",
		"Availability Status",
		"Availability_Count",
		"Description Length",
	}
}

// CSVRow renders a record in CSVHeader order.
func (r *Record) CSVRow() []string {
	return []string{
		r.Title,
		r.Description,
		r.Category,
		strconv.FormatFloat(r.Price, 'f', 2, 64),
		r.Rating,
		r.AvailabilityStatus,
		strconv.Itoa(r.AvailabilityCount),
		strconv.Itoa(r.DescriptionLength),
	}
}

// RecordFromCSVRow parses a row in CSVHeader order back into a record.
func RecordFromCSVRow(row []string) (*Record, error) {
	if len(row) != len(CSVHeader()) {
		return nil, fmt.Errorf("row has %d columns, want %d", len(row), len(CSVHeader()))
	}

	price, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", row[3], err)
	}
	count, err := strconv.Atoi(row[6])
	if err != nil {
		return nil, fmt.Errorf("parse availability count %q: %w", row[6], err)
	}
	length, err := strconv.Atoi(row[7])
	if err != nil {
		return nil, fmt.Errorf("parse description length %q: %w", row[7], err)
	}

	return &Record{
		Title:              row[0],
		Description:        row[1],
		Category:           row[2],
		Price:              price,
		Rating:             row[4],
		AvailabilityStatus: row[5],
		AvailabilityCount:  count,
		DescriptionLength:  length,
	}, nil
}
