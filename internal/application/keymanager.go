package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lockfind/lockfind/internal/domain/model"
	"github.com/lockfind/lockfind/internal/domain/port/driven"
)

const (
	keyPrefix   = "lnf_"
	rawKeyBytes = 32

	// Additional SHA-256 rounds applied after the initial digest. Changing
	// this invalidates every stored hash; any change must migrate the
	// persisted records.
	hashRounds = 10000
)

// KeyManager owns the API key collection for the lifetime of a gateway
// instance. Every mutation persists a full snapshot through the KeyStore
// port before returning.
type KeyManager struct {
	mu    sync.Mutex
	keys  map[string]*model.APIKey
	store driven.KeyStore
	now   func() time.Time
}

// NewKeyManager creates an empty KeyManager backed by the given store.
func NewKeyManager(store driven.KeyStore) *KeyManager {
	return &KeyManager{
		keys:  map[string]*model.APIKey{},
		store: store,
		now:   time.Now,
	}
}

// Issue generates a new raw API key of the form lnf_<64 hex chars>, stores
// its stretched hash and returns the raw value. This is the only time the
// raw key is ever visible.
func (m *KeyManager) Issue(ctx context.Context, name string) (string, error) {
	buf := make([]byte, rawKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key bytes: %w", err)
	}
	raw := keyPrefix + hex.EncodeToString(buf)

	key := &model.APIKey{
		ID:         "key_" + uuid.NewString(),
		Name:       name,
		SecretHash: hashKey(raw),
		CreatedAt:  m.now(),
		Enabled:    true,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys[key.ID] = key
	if err := m.persist(ctx); err != nil {
		delete(m.keys, key.ID)
		return "", err
	}

	return raw, nil
}

// Validate resolves a raw key to its record, or nil when no enabled record
// matches. The candidate hash is compared against every enabled record
// using a constant-time comparison. A match updates the record's usage
// stats and persists them.
func (m *KeyManager) Validate(ctx context.Context, raw string) (*model.APIKey, error) {
	if raw == "" || !strings.HasPrefix(raw, keyPrefix) {
		return nil, nil
	}

	target := hashKey(raw)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range m.keys {
		if !key.Enabled {
			continue
		}
		if !constantTimeEqual(target, key.SecretHash) {
			continue
		}

		prevCount := key.UsageCount
		prevUsed := key.LastUsedAt

		lastUsed := m.now()
		key.UsageCount++
		key.LastUsedAt = &lastUsed
		if err := m.persist(ctx); err != nil {
			key.UsageCount = prevCount
			key.LastUsedAt = prevUsed
			return nil, err
		}

		record := *key
		return &record, nil
	}

	return nil, nil
}

// Revoke disables the key with the given ID without deleting its history.
// It reports whether a record was found.
func (m *KeyManager) Revoke(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.keys[id]
	if !ok {
		return false, nil
	}

	key.Enabled = false
	if err := m.persist(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Delete permanently removes the key with the given ID. It reports whether
// a record was found.
func (m *KeyManager) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.keys[id]
	if !ok {
		return false, nil
	}

	delete(m.keys, id)
	if err := m.persist(ctx); err != nil {
		m.keys[id] = key
		return false, err
	}
	return true, nil
}

// List returns every key record with the stored hash redacted, ordered by
// creation time.
func (m *KeyManager) List() []model.APIKey {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]model.APIKey, 0, len(m.keys))
	for _, key := range m.keys {
		keys = append(keys, key.Redacted())
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].CreatedAt.Before(keys[j].CreatedAt) })
	return keys
}

// Get returns the record with the given ID, or nil.
func (m *KeyManager) Get(id string) *model.APIKey {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.keys[id]
	if !ok {
		return nil
	}
	record := *key
	return &record
}

// Load replaces the in-memory key set with the given records. It is a full
// replace, not a merge, and does not persist.
func (m *KeyManager) Load(records []model.APIKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = make(map[string]*model.APIKey, len(records))
	for _, record := range records {
		key := record
		m.keys[key.ID] = &key
	}
}

// Serialize exports every key record, including stored hashes, for the
// persistence collaborator.
func (m *KeyManager) Serialize() []model.APIKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// persist writes the current key set through the store. Callers must hold mu.
func (m *KeyManager) persist(ctx context.Context) error {
	if err := m.store.SaveAll(ctx, m.snapshot()); err != nil {
		return fmt.Errorf("persist api keys: %w", err)
	}
	return nil
}

// snapshot copies the key set. Callers must hold mu.
func (m *KeyManager) snapshot() []model.APIKey {
	keys := make([]model.APIKey, 0, len(m.keys))
	for _, key := range m.keys {
		keys = append(keys, *key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].CreatedAt.Before(keys[j].CreatedAt) })
	return keys
}

// hashKey applies SHA-256 to the raw key and then re-hashes the digest a
// further hashRounds times before hex-encoding.
func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	for i := 0; i < hashRounds; i++ {
		sum = sha256.Sum256(sum[:])
	}
	return hex.EncodeToString(sum[:])
}

// constantTimeEqual compares two digests without leaking the position of a
// mismatch. Unequal lengths take a dummy comparison of equal cost instead
// of returning early.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		subtle.ConstantTimeCompare([]byte(a), []byte(a))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
