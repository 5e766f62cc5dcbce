// Package store provides the generic keyed record store behind every
// Homebase collection.
//
// A Store owns one collection (users, houses, rooms, devices). The whole
// collection is persisted as a single pretty-printed JSON object that maps
// each natural key to the record's JSON form, in insertion order:
//
//	{
//	    "u1": {
//	        "user_id": "u1",
//	        ...
//	    }
//	}
//
// # Architecture
//
//	┌──────────────┐   Load / Save   ┌──────────────────────────────┐
//	│   Store[E]   │────────────────▶│ Backend                      │
//	│              │                 │  • FileBackend  (<dir>/*.json)│
//	│ • RWMutex    │                 │  • MemoryBackend (tests)     │
//	│ • Document   │                 │  • database.DB   (SQLite)    │
//	│ • hooks      │                 │  • objectstore   (S3)        │
//	└──────────────┘                 └──────────────────────────────┘
//
// Every operation reads the whole document from the backend, so edits made
// to the persisted document between calls are always seen. Writers hold the
// store's lock across the whole read-modify-write cycle, so two concurrent
// writers on the same collection can never lose each other's update.
//
// # Hooks
//
//   - Logger: receives debug/info/error entries (no-op by default)
//   - Observer: notified after every successful mutation with a Change
//   - Recorder: told the outcome and duration of every operation
//
// # Errors
//
// ErrNotFound, ErrConflict and ErrCorrupt are returned wrapped with the
// record noun and key; test them with errors.Is.
package store
