package pipeline

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/aluiziolira/go-book-analytics/models"
)

const createBooksTable = `
CREATE TABLE IF NOT EXISTS books (
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	price REAL NOT NULL,
	rating TEXT NOT NULL,
	availability_status TEXT NOT NULL,
	availability_count INTEGER NOT NULL,
	description_length INTEGER NOT NULL
)`

const insertBook = `
INSERT INTO books (
	title, description, category, price, rating,
	availability_status, availability_count, description_length
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteWriter persists records into an embedded sqlite database.
type SQLiteWriter struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteWriter opens (or creates) the database file and starts from an
// empty books table.
func NewSQLiteWriter(filename string) (*SQLiteWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(createBooksTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create books table: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM books`); err != nil {
		db.Close()
		return nil, fmt.Errorf("truncate books table: %w", err)
	}

	return &SQLiteWriter{db: db}, nil
}

// Write inserts records in a single transaction.
func (sw *SQLiteWriter) Write(records []*models.Record) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	tx, err := sw.db.Begin()
	if err != nil {
		return fmt.Errorf("begin sqlite transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertBook)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.Exec(
			record.Title,
			record.Description,
			record.Category,
			record.Price,
			record.Rating,
			record.AvailabilityStatus,
			record.AvailabilityCount,
			record.DescriptionLength,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert record %q: %w", record.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite transaction: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (sw *SQLiteWriter) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.db.Close()
}

// Validate ensures at least one record was persisted.
func (sw *SQLiteWriter) Validate() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	var count int
	if err := sw.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("sqlite dataset is empty")
	}
	return nil
}
