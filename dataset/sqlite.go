package dataset

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/aluiziolira/go-book-analytics/models"
)

// SQLiteStore loads a dataset persisted by the pipeline's sqlite writer.
type SQLiteStore struct {
	Path string
}

// NewSQLiteStore returns a store bound to path.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{Path: path}
}

// Exists reports whether the database file is present.
func (s *SQLiteStore) Exists() bool {
	info, err := os.Stat(s.Path)
	return err == nil && !info.IsDir()
}

// Load reads all rows from the books table in insertion order.
func (s *SQLiteStore) Load() (*Dataset, error) {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT title, description, category, price, rating,
		       availability_status, availability_count, description_length
		FROM books
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record := &models.Record{}
		if err := rows.Scan(
			&record.Title,
			&record.Description,
			&record.Category,
			&record.Price,
			&record.Rating,
			&record.AvailabilityStatus,
			&record.AvailabilityCount,
			&record.DescriptionLength,
		); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	return New(records), nil
}
