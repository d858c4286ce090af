package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/aluiziolira/go-book-analytics/models"
)

// CSVStore loads and saves a dataset as delimited tabular text with the
// fixed header the report layer expects.
type CSVStore struct {
	Path string
}

// NewCSVStore returns a store bound to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

// Exists reports whether a persisted dataset is present.
func (s *CSVStore) Exists() bool {
	info, err := os.Stat(s.Path)
	return err == nil && !info.IsDir()
}

// Save writes the dataset, header first, overwriting any previous copy.
func (s *CSVStore) Save(d *Dataset) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.CSVHeader()); err != nil {
		return fmt.Errorf("write dataset header: %w", err)
	}
	for _, record := range d.Records {
		if err := w.Write(record.CSVRow()); err != nil {
			return fmt.Errorf("write dataset record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush dataset: %w", err)
	}
	return nil
}

// Load reads a persisted dataset back. The header row is verified against
// the fixed column set before any record is parsed.
func (s *CSVStore) Load() (*Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset file %s is empty", s.Path)
	}

	header := rows[0]
	want := models.CSVHeader()
	if len(header) != len(want) {
		return nil, fmt.Errorf("dataset header has %d columns, want %d", len(header), len(want))
	}
	for i, column := range want {
		if header[i] != column {
			return nil, fmt.Errorf("dataset column %d is %q, want %q", i, header[i], column)
		}
	}

	records := make([]*models.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := models.RecordFromCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset row %d: %w", i+2, err)
		}
		records = append(records, record)
	}

	return New(records), nil
}
