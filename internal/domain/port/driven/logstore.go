package driven

import (
	"context"

	"github.com/lockfind/lockfind/internal/domain/model"
)

// RequestLogStore defines the driven port for dispatch-outcome logging.
// Implementations retain at most the most recent 1000 entries, evicting
// oldest first. Entries are immutable once appended.
type RequestLogStore interface {
	// Append adds an entry to the end of the log, evicting the oldest
	// entries if the store is at capacity.
	Append(ctx context.Context, entry model.RequestLogEntry) error

	// Recent returns up to limit of the most recent entries, newest last.
	Recent(ctx context.Context, limit int) ([]model.RequestLogEntry, error)

	// Clear empties the log.
	Clear(ctx context.Context) error
}
