package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/homebase/internal/store"
)

// Queue and page sizes.
const (
	queueSize       = 256
	defaultPageSize = 50
	maxPageSize     = 200
)

// timeFormat is fixed width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

const createAuditTable = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	op         TEXT NOT NULL,
	key        TEXT NOT NULL,
	old_key    TEXT,
	entity     TEXT,
	created_at TEXT NOT NULL
)`

const createAuditIndex = `
CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at)`

// Entry is a single journal row.
type Entry struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Op         string          `json:"op"`
	Key        string          `json:"key"`
	OldKey     string          `json:"old_key,omitempty"`
	Entity     json.RawMessage `json:"entity,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Filter controls which entries List returns. Empty fields match everything.
type Filter struct {
	Collection string
	Op         string
	Key        string
	Limit      int // default 50, max 200
	Offset     int
}

// ListResult is one page of entries, newest first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Logger is the subset of logging.Logger the journal needs.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Journal records store changes in SQLite.
type Journal struct {
	db     *sql.DB
	logger Logger
	queue  chan Entry
}

var _ store.Observer = (*Journal)(nil)

// NewJournal creates the audit table if needed and returns a journal over db.
// Run must be started for queued changes to be written.
func NewJournal(ctx context.Context, db *sql.DB, logger Logger) (*Journal, error) {
	if _, err := db.ExecContext(ctx, createAuditTable); err != nil {
		return nil, fmt.Errorf("creating audit_logs table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createAuditIndex); err != nil {
		return nil, fmt.Errorf("creating audit_logs index: %w", err)
	}
	return &Journal{db: db, logger: logger, queue: make(chan Entry, queueSize)}, nil
}

// Changed queues change for writing. It implements store.Observer and never blocks.
func (j *Journal) Changed(_ context.Context, change store.Change) {
	entry := Entry{
		ID:         "aud-" + uuid.NewString(),
		Collection: change.Collection,
		Op:         string(change.Op),
		Key:        change.Key,
		OldKey:     change.OldKey,
		Entity:     change.Entity,
		CreatedAt:  change.Timestamp.UTC(),
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	select {
	case j.queue <- entry:
	default:
		j.logger.Warn("audit queue full, dropping entry",
			"collection", entry.Collection,
			"op", entry.Op,
			"key", entry.Key,
		)
	}
}

// Run writes queued entries serially until ctx is cancelled, then drains
// whatever is still queued.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case entry := <-j.queue:
			j.write(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-j.queue:
					j.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (j *Journal) write(entry Entry) {
	if err := j.Create(context.Background(), entry); err != nil {
		j.logger.Error("audit write failed",
			"collection", entry.Collection,
			"op", entry.Op,
			"error", err,
		)
	}
}

// Create inserts entry synchronously.
func (j *Journal) Create(ctx context.Context, entry Entry) error {
	var entity *string
	if len(entry.Entity) > 0 {
		s := string(entry.Entity)
		entity = &s
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, collection, op, key, old_key, entity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Collection, entry.Op, entry.Key,
		nullableString(entry.OldKey), entity,
		entry.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns entries matching filter, most recent first.
func (j *Journal) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Collection != "" {
		conditions = append(conditions, "collection = ?")
		args = append(args, filter.Collection)
	}
	if filter.Op != "" {
		conditions = append(conditions, "op = ?")
		args = append(args, filter.Op)
	}
	if filter.Key != "" {
		conditions = append(conditions, "(key = ? OR old_key = ?)")
		args = append(args, filter.Key, filter.Key)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM audit_logs " + where //nolint:gosec // placeholders only
	if err := j.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	query := "SELECT id, collection, op, key, old_key, entity, created_at FROM audit_logs " + //nolint:gosec // placeholders only
		where + " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var oldKey, entity sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Collection, &e.Op, &e.Key, &oldKey, &entity, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.OldKey = oldKey.String
		if entity.Valid && entity.String != "" {
			e.Entity = json.RawMessage(entity.String)
		}
		if e.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parsing audit timestamp %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
