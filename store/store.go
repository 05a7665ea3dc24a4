// Package store persists BibJSON collections in a local SQLite
// database.
//
// Stored records get a database-assigned id; the original citation
// key stays in citekey. Saving a collection replaces any previously
// stored records for the same collection name.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/lehigh-university-libraries/bibjson/bibjson"
)

// Store wraps a SQLite database holding converted collections.
type Store struct {
	db *sql.DB
}

// Open opens or creates a database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			metadata_json TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			citekey TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			record_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveCollection stores a collection and its records, replacing any
// records previously stored under the same collection name. Each
// record's ID is overwritten with the database-assigned id; the
// citation key stays in Citekey. Returns the number of stored records.
func (s *Store) SaveCollection(ctx context.Context, c *bibjson.Collection) (int, error) {
	name, _ := c.Metadata[metaCollection].(string)
	if name == "" {
		return 0, fmt.Errorf("collection metadata has no %q value", metaCollection)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	metaJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return 0, fmt.Errorf("encoding metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO collections (name, metadata_json) VALUES (?, ?)`,
		name, string(metaJSON)); err != nil {
		return 0, fmt.Errorf("storing collection %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ?`, name); err != nil {
		return 0, fmt.Errorf("clearing records for %q: %w", name, err)
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, citekey, entry_type, record_json)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	update, err := tx.PrepareContext(ctx,
		`UPDATE records SET record_json = ? WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("preparing update: %w", err)
	}
	defer update.Close()

	for _, r := range c.Records {
		blob, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encoding record %q: %w", r.Citekey, err)
		}

		res, err := insert.ExecContext(ctx, name, r.Citekey, r.Type, string(blob))
		if err != nil {
			return 0, fmt.Errorf("inserting record %q: %w", r.Citekey, err)
		}

		rowID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading id for record %q: %w", r.Citekey, err)
		}

		// Re-encode with the assigned id so the stored JSON matches.
		r.ID = strconv.FormatInt(rowID, 10)
		blob, err = json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encoding record %q: %w", r.Citekey, err)
		}
		if _, err := update.ExecContext(ctx, string(blob), rowID); err != nil {
			return 0, fmt.Errorf("updating record %q: %w", r.Citekey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}

	return len(c.Records), nil
}

// Records returns the stored records for a collection, in insertion
// order.
func (s *Store) Records(ctx context.Context, collection string) ([]*bibjson.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_json FROM records WHERE collection = ? ORDER BY id
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []*bibjson.Record
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r := &bibjson.Record{}
		if err := json.Unmarshal([]byte(blob), r); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Metadata returns the stored metadata for a collection.
func (s *Store) Metadata(ctx context.Context, collection string) (map[string]any, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT metadata_json FROM collections WHERE name = ?`, collection).Scan(&blob)
	if err != nil {
		return nil, fmt.Errorf("querying collection %q: %w", collection, err)
	}

	meta := make(map[string]any)
	if err := json.Unmarshal([]byte(blob), &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return meta, nil
}

const metaCollection = "collection"
