package store

import (
	"context"
	"encoding/json"
	"time"
)

// Logger defines the logging interface used by Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Op names a successful mutation.
type Op string

// Mutation kinds carried by Change.
const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
	OpRenamed Op = "renamed"
)

// Operation names passed to Recorder.
const (
	OperationCreate = "create"
	OperationGet    = "get"
	OperationList   = "list"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationRekey  = "rekey"
	OperationLen    = "len"
)

// Change describes one committed mutation. Entity is the record's JSON
// form after the change, or before it for deletes.
type Change struct {
	Collection string          `json:"collection"`
	Op         Op              `json:"op"`
	Key        string          `json:"key"`
	OldKey     string          `json:"old_key,omitempty"`
	Entity     json.RawMessage `json:"entity,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Observer is notified after a mutation has been persisted.
// Observers run after the store lock is released and cannot fail the operation.
type Observer interface {
	Changed(ctx context.Context, change Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, change Change)

// Changed implements Observer.
func (f ObserverFunc) Changed(ctx context.Context, change Change) {
	f(ctx, change)
}

type noopObserver struct{}

func (noopObserver) Changed(context.Context, Change) {}

// Recorder receives the outcome of every store operation.
type Recorder interface {
	RecordOperation(collection, operation string, duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, string, time.Duration, error) {}
