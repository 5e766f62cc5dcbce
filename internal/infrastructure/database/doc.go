// Package database provides the SQLite storage backend for Homebase.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Connection pooling and lifecycle management
//   - The documents table, one row per record collection
//
// Each collection document is stored whole in documents.payload and replaced
// with a single upsert, so a save is atomic. *DB implements store.Backend.
//
// All queries use parameterised statements, and the database file is
// restricted to 0600.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/homebase.db", WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	registry := home.NewRegistry(db)
package database
