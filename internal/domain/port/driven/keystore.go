package driven

import (
	"context"

	"github.com/lockfind/lockfind/internal/domain/model"
)

// KeyStore defines the driven port for API key persistence. The key
// manager persists a full snapshot synchronously after every mutation so
// persistence failure is observable to the caller instead of silently
// dropped.
type KeyStore interface {
	// SaveAll replaces the persisted key set with the given snapshot.
	SaveAll(ctx context.Context, keys []model.APIKey) error

	// LoadAll returns every persisted key record.
	LoadAll(ctx context.Context) ([]model.APIKey, error)
}
