package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/lockfind/lockfind/internal/domain/model"
	"github.com/lockfind/lockfind/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RequestLogStore = (*RequestLogRepo)(nil)

// RequestLogRepo is the durable RequestLogStore implementation. It
// enforces the same capacity as the in-memory ring by deleting the oldest
// rows after each append.
type RequestLogRepo struct {
	db       *DB
	capacity int
}

// NewRequestLogRepo creates a RequestLogRepo retaining at most capacity
// entries (1000 when capacity is not positive).
func NewRequestLogRepo(db *DB, capacity int) *RequestLogRepo {
	if capacity <= 0 {
		capacity = 1000
	}
	return &RequestLogRepo{db: db, capacity: capacity}
}

// Append inserts the entry and trims the table back to capacity, oldest
// rows first.
func (r *RequestLogRepo) Append(ctx context.Context, entry model.RequestLogEntry) error {
	const insert = `INSERT INTO request_logs (id, timestamp, method, path, key_id, status_code, duration_us, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, insert,
		entry.ID,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.Method,
		entry.Path,
		entry.KeyID,
		entry.StatusCode,
		entry.Duration.Microseconds(),
		entry.Error,
	)
	if err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}

	// Insertion order, not timestamp, decides eviction: rowid is the
	// append sequence.
	const trim = `DELETE FROM request_logs WHERE rowid NOT IN
		(SELECT rowid FROM request_logs ORDER BY rowid DESC LIMIT ?)`
	if _, err := r.db.Writer.ExecContext(ctx, trim, r.capacity); err != nil {
		return fmt.Errorf("trim request logs: %w", err)
	}

	return nil
}

// Recent returns up to limit of the most recent entries, newest last.
func (r *RequestLogRepo) Recent(ctx context.Context, limit int) ([]model.RequestLogEntry, error) {
	if limit <= 0 || limit > r.capacity {
		limit = r.capacity
	}

	const query = `SELECT id, timestamp, method, path, key_id, status_code, duration_us, error
		FROM request_logs ORDER BY rowid DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query request logs: %w", err)
	}
	defer rows.Close()

	var entries []model.RequestLogEntry
	for rows.Next() {
		var entry model.RequestLogEntry
		var timestamp string
		var durationUS int64

		if err := rows.Scan(&entry.ID, &timestamp, &entry.Method, &entry.Path, &entry.KeyID, &entry.StatusCode, &durationUS, &entry.Error); err != nil {
			return nil, fmt.Errorf("scan request log: %w", err)
		}

		entry.Timestamp, err = parseTime(timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp for log %q: %w", entry.ID, err)
		}
		entry.Duration = time.Duration(durationUS) * time.Microsecond

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request logs: %w", err)
	}

	// The query walks newest first; callers expect newest last.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

// Clear empties the log table.
func (r *RequestLogRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Writer.ExecContext(ctx, `DELETE FROM request_logs`); err != nil {
		return fmt.Errorf("clear request logs: %w", err)
	}
	return nil
}
