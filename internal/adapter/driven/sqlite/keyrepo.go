package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lockfind/lockfind/internal/domain/model"
	"github.com/lockfind/lockfind/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KeyStore = (*KeyRepo)(nil)

// KeyRepo is the SQLite implementation of the KeyStore port. SaveAll
// replaces the whole table inside one transaction, mirroring the key
// manager's full-snapshot persistence model.
type KeyRepo struct {
	db *DB
}

// NewKeyRepo creates a new KeyRepo.
func NewKeyRepo(db *DB) *KeyRepo {
	return &KeyRepo{db: db}
}

// SaveAll replaces the persisted key set with the given snapshot.
func (r *KeyRepo) SaveAll(ctx context.Context, keys []model.APIKey) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save keys: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM api_keys`); err != nil {
		return fmt.Errorf("clear api_keys: %w", err)
	}

	const query = `INSERT INTO api_keys (id, name, secret_hash, created_at, last_used_at, usage_count, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, key := range keys {
		var lastUsed sql.NullString
		if key.LastUsedAt != nil {
			lastUsed = sql.NullString{String: key.LastUsedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}

		_, err := tx.ExecContext(ctx, query,
			key.ID,
			key.Name,
			key.SecretHash,
			key.CreatedAt.UTC().Format(time.RFC3339Nano),
			lastUsed,
			key.UsageCount,
			key.Enabled,
		)
		if err != nil {
			return fmt.Errorf("insert api key %q: %w", key.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save keys: %w", err)
	}
	return nil
}

// LoadAll returns every persisted key record, oldest first.
func (r *KeyRepo) LoadAll(ctx context.Context) ([]model.APIKey, error) {
	const query = `SELECT id, name, secret_hash, created_at, last_used_at, usage_count, enabled
		FROM api_keys ORDER BY created_at`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load api keys: %w", err)
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		var key model.APIKey
		var createdAt string
		var lastUsed sql.NullString

		if err := rows.Scan(&key.ID, &key.Name, &key.SecretHash, &createdAt, &lastUsed, &key.UsageCount, &key.Enabled); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}

		key.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for key %q: %w", key.ID, err)
		}

		if lastUsed.Valid {
			t, err := parseTime(lastUsed.String)
			if err != nil {
				return nil, fmt.Errorf("parse last_used_at for key %q: %w", key.ID, err)
			}
			key.LastUsedAt = &t
		}

		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api keys: %w", err)
	}

	return keys, nil
}
