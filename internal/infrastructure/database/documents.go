package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/homebase/internal/store"
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

const upsertDocument = `
INSERT INTO documents (collection, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(collection) DO UPDATE SET
	payload = excluded.payload,
	updated_at = excluded.updated_at`

func (db *DB) ensureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// Load returns the stored document for collection, or nil if none was saved.
// It implements store.Backend.
func (db *DB) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := store.ValidateCollection(collection); err != nil {
		return nil, err
	}

	var payload []byte
	err := db.QueryRowContext(ctx,
		"SELECT payload FROM documents WHERE collection = ?", collection,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", collection, err)
	}
	return payload, nil
}

// Save replaces the stored document for collection in one statement.
// It implements store.Backend.
func (db *DB) Save(ctx context.Context, collection string, data []byte) error {
	if err := store.ValidateCollection(collection); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, upsertDocument,
		collection, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", collection, err)
	}
	return nil
}
