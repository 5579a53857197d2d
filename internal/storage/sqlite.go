package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/wakfudex/internal/models"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reference_items (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			title_fr TEXT,
			icon TEXT,
			category TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reference_items_title ON reference_items(title)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// --- Reference items ---

// GetReferenceItems returns every reference item ordered by id
func (s *Store) GetReferenceItems() ([]models.ReferenceItem, error) {
	rows, err := s.db.Query(`
		SELECT id, title, title_fr, icon, category
		FROM reference_items ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ReferenceItem
	for rows.Next() {
		item, err := scanReferenceItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountReferenceItems returns the number of stored reference items
func (s *Store) CountReferenceItems() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM reference_items`).Scan(&n)
	return n, err
}

// BulkCreateReferenceItems upserts items in a transaction
func (s *Store) BulkCreateReferenceItems(items []models.ReferenceItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO reference_items (id, title, title_fr, icon, category)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.Exec(item.ID, item.Title, nullString(item.TitleFr), nullString(item.Icon), nullString(item.Category))
		if err != nil {
			return fmt.Errorf("insert reference item %d: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteReferenceItems removes every reference item
func (s *Store) DeleteReferenceItems() error {
	_, err := s.db.Exec(`DELETE FROM reference_items`)
	return err
}

// --- Meta ---

// SetMeta stores a key/value pair, e.g. the imported game data version
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	return err
}

// GetMeta returns the value of key, or "" when unset
func (s *Store) GetMeta(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReferenceItem(sc scanner) (models.ReferenceItem, error) {
	var item models.ReferenceItem
	var titleFr, icon, category sql.NullString
	if err := sc.Scan(&item.ID, &item.Title, &titleFr, &icon, &category); err != nil {
		return item, err
	}
	item.TitleFr = titleFr.String
	item.Icon = icon.String
	item.Category = category.String
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
