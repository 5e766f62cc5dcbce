// Package audit keeps a durable journal of committed record changes.
//
// The journal is a store.Observer: every change the stores commit is queued
// and written to the audit_logs table of the SQLite database by a single
// writer goroutine, so request handlers never wait on the insert. Entries
// are best-effort; when the queue is full the change is dropped and logged.
//
// Usage:
//
//	journal, err := audit.NewJournal(ctx, db.DB, logger)
//	go journal.Run(ctx)
//	registry.SetObserver(events.Fanout{hub, journal})
//
//	result, err := journal.List(ctx, audit.Filter{Collection: "rooms"})
package audit
