package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Keyed is implemented by every record type kept in a Store.
// E must also round-trip through encoding/json; decoding is expected to
// validate, so a record read back is always a constructed value.
// Validate is called before every write; its error is returned unchanged
// and nothing is saved.
type Keyed interface {
	Key() string
	Validate() error
}

// Store is a keyed collection of E persisted as one ordered document.
//
// All public methods are thread-safe. Readers share the lock; writers hold
// it exclusively for the full load-mutate-save cycle.
type Store[E Keyed] struct {
	collection string
	noun       string
	backend    Backend

	mu       sync.RWMutex
	logger   Logger
	observer Observer
	recorder Recorder
}

// New creates a store for collection (for example "users") using noun
// (for example "user") in error messages.
func New[E Keyed](collection, noun string, backend Backend) *Store[E] {
	return &Store[E]{
		collection: collection,
		noun:       noun,
		backend:    backend,
		logger:     noopLogger{},
		observer:   noopObserver{},
		recorder:   noopRecorder{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store[E]) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// SetObserver sets the observer notified of committed mutations.
func (s *Store[E]) SetObserver(observer Observer) {
	if observer == nil {
		observer = noopObserver{}
	}
	s.observer = observer
}

// SetRecorder sets the operation telemetry recorder.
func (s *Store[E]) SetRecorder(recorder Recorder) {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	s.recorder = recorder
}

// Collection returns the collection name.
func (s *Store[E]) Collection() string {
	return s.collection
}

// Create inserts e. Returns ErrConflict if its key is already present.
func (s *Store[E]) Create(ctx context.Context, e E) (_ E, err error) {
	defer s.record(OperationCreate, time.Now(), &err)

	if err := e.Validate(); err != nil {
		var zero E
		return zero, err
	}

	change, err := s.write(ctx, func(doc *Document) (Change, error) {
		key := e.Key()
		if doc.Has(key) {
			return Change{}, s.conflict(key)
		}
		raw, err := s.encode(e)
		if err != nil {
			return Change{}, err
		}
		doc.Set(key, raw)
		return Change{Op: OpCreated, Key: key, Entity: raw}, nil
	})
	if err != nil {
		var zero E
		return zero, err
	}

	s.logger.Info("record created", "collection", s.collection, "key", change.Key)
	s.observer.Changed(ctx, change)
	return e, nil
}

// Get returns the record stored under key. Returns ErrNotFound if absent.
func (s *Store[E]) Get(ctx context.Context, key string) (_ E, err error) {
	defer s.record(OperationGet, time.Now(), &err)

	var zero E
	doc, err := s.read(ctx)
	if err != nil {
		return zero, err
	}
	raw, ok := doc.Get(key)
	if !ok {
		return zero, s.notFound(key)
	}
	return s.decode(key, raw)
}

// List returns every record in document order.
// An empty collection yields an empty, non-nil slice.
func (s *Store[E]) List(ctx context.Context) (_ []E, err error) {
	defer s.record(OperationList, time.Now(), &err)

	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, doc.Len())
	for _, key := range doc.Keys() {
		raw, _ := doc.Get(key)
		e, err := s.decode(key, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Update replaces the record stored under e's key. No field-level merge is
// performed. Returns ErrNotFound if the key is absent.
func (s *Store[E]) Update(ctx context.Context, e E) (_ E, err error) {
	defer s.record(OperationUpdate, time.Now(), &err)

	if err := e.Validate(); err != nil {
		var zero E
		return zero, err
	}

	change, err := s.write(ctx, func(doc *Document) (Change, error) {
		key := e.Key()
		if !doc.Has(key) {
			return Change{}, s.notFound(key)
		}
		raw, err := s.encode(e)
		if err != nil {
			return Change{}, err
		}
		doc.Set(key, raw)
		return Change{Op: OpUpdated, Key: key, Entity: raw}, nil
	})
	if err != nil {
		var zero E
		return zero, err
	}

	s.logger.Info("record updated", "collection", s.collection, "key", change.Key)
	s.observer.Changed(ctx, change)
	return e, nil
}

// Delete removes the record stored under key. Returns ErrNotFound if absent.
func (s *Store[E]) Delete(ctx context.Context, key string) (err error) {
	defer s.record(OperationDelete, time.Now(), &err)

	change, err := s.write(ctx, func(doc *Document) (Change, error) {
		raw, ok := doc.Get(key)
		if !ok {
			return Change{}, s.notFound(key)
		}
		doc.Delete(key)
		return Change{Op: OpDeleted, Key: key, Entity: raw}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("record deleted", "collection", s.collection, "key", key)
	s.observer.Changed(ctx, change)
	return nil
}

// Rekey moves the record stored under oldKey to the key of the record that
// fn derives from it. The old record is removed and the new one appended,
// in a single save: either both happen or neither does.
//
// Returns ErrNotFound if oldKey is absent (fn is not called), and
// ErrConflict if the new key differs from oldKey and is already taken.
// Errors from fn, and from validating its result, are returned unchanged.
func (s *Store[E]) Rekey(ctx context.Context, oldKey string, fn func(current E) (E, error)) (_ E, err error) {
	defer s.record(OperationRekey, time.Now(), &err)

	var next E
	change, err := s.write(ctx, func(doc *Document) (Change, error) {
		raw, ok := doc.Get(oldKey)
		if !ok {
			return Change{}, s.notFound(oldKey)
		}
		current, err := s.decode(oldKey, raw)
		if err != nil {
			return Change{}, err
		}
		next, err = fn(current)
		if err != nil {
			return Change{}, err
		}
		if err := next.Validate(); err != nil {
			return Change{}, err
		}

		newKey := next.Key()
		if newKey != oldKey && doc.Has(newKey) {
			return Change{}, s.conflict(newKey)
		}
		encoded, err := s.encode(next)
		if err != nil {
			return Change{}, err
		}
		if newKey != oldKey {
			doc.Delete(oldKey)
		}
		doc.Set(newKey, encoded)
		return Change{Op: OpRenamed, Key: newKey, OldKey: oldKey, Entity: encoded}, nil
	})
	if err != nil {
		var zero E
		return zero, err
	}

	s.logger.Info("record renamed", "collection", s.collection, "old_key", oldKey, "key", change.Key)
	s.observer.Changed(ctx, change)
	return next, nil
}

// Len returns the number of records in the collection.
func (s *Store[E]) Len(ctx context.Context) (_ int, err error) {
	defer s.record(OperationLen, time.Now(), &err)

	doc, err := s.read(ctx)
	if err != nil {
		return 0, err
	}
	return doc.Len(), nil
}

// read loads the document under the shared lock.
func (s *Store[E]) read(ctx context.Context) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

// write runs mutate against a freshly loaded document and saves the result,
// all under the exclusive lock. Nothing is saved when mutate fails.
func (s *Store[E]) write(ctx context.Context, mutate func(doc *Document) (Change, error)) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return Change{}, err
	}
	change, err := mutate(doc)
	if err != nil {
		return Change{}, err
	}

	data, err := doc.Marshal()
	if err != nil {
		return Change{}, fmt.Errorf("encoding %s: %w", s.collection, err)
	}
	if err := ctx.Err(); err != nil {
		return Change{}, err
	}
	if err := s.backend.Save(ctx, s.collection, data); err != nil {
		s.logger.Error("saving collection failed", "collection", s.collection, "error", err)
		return Change{}, fmt.Errorf("saving %s: %w", s.collection, err)
	}

	change.Collection = s.collection
	change.Timestamp = time.Now().UTC()
	return change, nil
}

func (s *Store[E]) load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.backend.Load(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.collection, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.collection, err)
	}
	return doc, nil
}

func (s *Store[E]) encode(e E) (json.RawMessage, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding %s %q: %w", s.noun, e.Key(), err)
	}
	return raw, nil
}

// decode rebuilds a record from its persisted form. The record must decode
// cleanly and carry the key it is filed under.
func (s *Store[E]) decode(key string, raw json.RawMessage) (E, error) {
	var e E
	if err := json.Unmarshal(raw, &e); err != nil {
		var zero E
		return zero, fmt.Errorf("%w: %s %q: %v", ErrCorrupt, s.noun, key, err)
	}
	if e.Key() != key {
		var zero E
		return zero, fmt.Errorf("%w: %s filed under %q has key %q", ErrCorrupt, s.noun, key, e.Key())
	}
	return e, nil
}

func (s *Store[E]) notFound(key string) error {
	return fmt.Errorf("%s %q: %w", s.noun, key, ErrNotFound)
}

func (s *Store[E]) conflict(key string) error {
	return fmt.Errorf("%s %q: %w", s.noun, key, ErrConflict)
}

func (s *Store[E]) record(operation string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	s.recorder.RecordOperation(s.collection, operation, elapsed, *errp)
	if *errp != nil {
		s.logger.Debug("store operation failed",
			"collection", s.collection, "operation", operation, "error", *errp)
	}
}
