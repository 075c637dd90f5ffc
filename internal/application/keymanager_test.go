package application

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockfind/lockfind/internal/domain/model"
)

// --- Mock key store ---

type mockKeyStore struct {
	saved     []model.APIKey
	saveCalls int
	saveErr   error
	loadErr   error
}

func (m *mockKeyStore) SaveAll(_ context.Context, keys []model.APIKey) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = keys
	m.saveCalls++
	return nil
}

func (m *mockKeyStore) LoadAll(_ context.Context) ([]model.APIKey, error) {
	return m.saved, m.loadErr
}

var rawKeyPattern = regexp.MustCompile(`^lnf_[0-9a-f]{64}$`)

func TestKeyManager_IssueFormat(t *testing.T) {
	store := &mockKeyStore{}
	km := NewKeyManager(store)
	ctx := context.Background()

	raw, err := km.Issue(ctx, "test key")
	require.NoError(t, err)

	assert.Regexp(t, rawKeyPattern, raw)
	assert.Equal(t, 1, store.saveCalls)
	require.Len(t, store.saved, 1)

	record := store.saved[0]
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "test key", record.Name)
	assert.True(t, record.Enabled)
	assert.Zero(t, record.UsageCount)
	assert.NotEqual(t, raw, record.SecretHash, "raw key must never be stored")
	assert.Regexp(t, `^[0-9a-f]{64}$`, record.SecretHash)
}

func TestKeyManager_IssueUniqueKeys(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})
	ctx := context.Background()

	first, err := km.Issue(ctx, "a")
	require.NoError(t, err)
	second, err := km.Issue(ctx, "b")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestKeyManager_ValidateMatch(t *testing.T) {
	store := &mockKeyStore{}
	km := NewKeyManager(store)
	ctx := context.Background()

	raw, err := km.Issue(ctx, "valid")
	require.NoError(t, err)

	record, err := km.Validate(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(1), record.UsageCount)
	require.NotNil(t, record.LastUsedAt)

	// Usage stats persist on every validation.
	record, err = km.Validate(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(2), record.UsageCount)
	assert.Equal(t, 3, store.saveCalls)
}

func TestKeyManager_ValidateRejectsWithoutHashing(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})
	ctx := context.Background()

	for _, raw := range []string{"", "nope", "sk_0000", "LNF_abcdef"} {
		record, err := km.Validate(ctx, raw)
		require.NoError(t, err)
		assert.Nil(t, record, "raw %q", raw)
	}
}

func TestKeyManager_ValidateNoMatch(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})
	ctx := context.Background()

	_, err := km.Issue(ctx, "existing")
	require.NoError(t, err)

	wellFormed := "lnf_" + "0000000000000000000000000000000000000000000000000000000000000000"
	record, err := km.Validate(ctx, wellFormed)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestKeyManager_RevokeExcludesFromValidation(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})
	ctx := context.Background()

	raw, err := km.Issue(ctx, "doomed")
	require.NoError(t, err)
	record, err := km.Validate(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, record)

	found, err := km.Revoke(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, found)

	after, err := km.Validate(ctx, raw)
	require.NoError(t, err)
	assert.Nil(t, after, "revoked key must not validate")

	// Still listed, as disabled, with its history intact.
	listed := km.List()
	require.Len(t, listed, 1)
	assert.False(t, listed[0].Enabled)
	assert.Equal(t, int64(1), listed[0].UsageCount)
}

func TestKeyManager_RevokeUnknownID(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})

	found, err := km.Revoke(context.Background(), "key_does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeyManager_DeleteRemovesRecord(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})
	ctx := context.Background()

	raw, err := km.Issue(ctx, "short lived")
	require.NoError(t, err)
	record, err := km.Validate(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, record)

	found, err := km.Delete(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, found)

	assert.Empty(t, km.List())

	after, err := km.Validate(ctx, raw)
	require.NoError(t, err)
	assert.Nil(t, after)
}

func TestKeyManager_ListRedactsHashes(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})
	ctx := context.Background()

	_, err := km.Issue(ctx, "one")
	require.NoError(t, err)
	_, err = km.Issue(ctx, "two")
	require.NoError(t, err)

	listed := km.List()
	require.Len(t, listed, 2)
	for _, key := range listed {
		assert.Equal(t, model.RedactedHash, key.SecretHash)
	}
}

func TestKeyManager_SerializeKeepsHashes(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})
	ctx := context.Background()

	raw, err := km.Issue(ctx, "exported")
	require.NoError(t, err)

	exported := km.Serialize()
	require.Len(t, exported, 1)
	assert.Regexp(t, `^[0-9a-f]{64}$`, exported[0].SecretHash)

	// A fresh manager loaded from the export validates the same raw key.
	km2 := NewKeyManager(&mockKeyStore{})
	km2.Load(exported)
	record, err := km2.Validate(ctx, raw)
	require.NoError(t, err)
	assert.NotNil(t, record)
}

func TestKeyManager_LoadReplaces(t *testing.T) {
	km := NewKeyManager(&mockKeyStore{})
	ctx := context.Background()

	_, err := km.Issue(ctx, "old")
	require.NoError(t, err)

	now := time.Now()
	km.Load([]model.APIKey{{ID: "key_loaded", Name: "loaded", SecretHash: "deadbeef", CreatedAt: now, Enabled: true}})

	listed := km.List()
	require.Len(t, listed, 1)
	assert.Equal(t, "key_loaded", listed[0].ID)
}

func TestKeyManager_PersistFailureRollsBackIssue(t *testing.T) {
	store := &mockKeyStore{saveErr: errors.New("disk full")}
	km := NewKeyManager(store)

	_, err := km.Issue(context.Background(), "unlucky")
	require.Error(t, err)
	assert.Empty(t, km.List(), "failed issue must not leave a record behind")
}

func TestKeyManager_PersistFailureRollsBackUsageStats(t *testing.T) {
	store := &mockKeyStore{}
	km := NewKeyManager(store)
	ctx := context.Background()

	raw, err := km.Issue(ctx, "flaky store")
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	_, err = km.Validate(ctx, raw)
	require.Error(t, err)

	// The failed validation must not count as a use.
	store.saveErr = nil
	record, err := km.Validate(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(1), record.UsageCount)
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, constantTimeEqual("abcdef", "abcdef"))
	assert.False(t, constantTimeEqual("abcdef", "abcdeg"))
	assert.False(t, constantTimeEqual("abcdef", "abcde"))
	assert.False(t, constantTimeEqual("", "abcdef"))
	assert.True(t, constantTimeEqual("", ""))
}

func TestConstantTimeEqualMismatchPositionTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("timing measurement")
	}

	flipHexAt := func(s string, i int) string {
		b := []byte(s)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		return string(b)
	}

	target := hashKey("lnf_" + strings.Repeat("a", 64))
	early := flipHexAt(target, 0)
	late := flipHexAt(target, len(target)-1)

	var sink int
	measure := func(candidate string) time.Duration {
		var best time.Duration
		for trial := 0; trial < 5; trial++ {
			start := time.Now()
			for i := 0; i < 5000; i++ {
				if constantTimeEqual(target, candidate) {
					sink++
				}
			}
			if d := time.Since(start); trial == 0 || d < best {
				best = d
			}
		}
		return best
	}

	measure(target) // warm up
	matchTime := measure(target)
	earlyTime := measure(early)
	lateTime := measure(late)
	_ = sink

	// A comparison that bailed out at the first differing byte would finish
	// far faster on early than on late or on a full match. The bounds are
	// deliberately loose to absorb scheduler noise.
	for name, mismatch := range map[string]time.Duration{"early": earlyTime, "late": lateTime} {
		ratio := float64(mismatch) / float64(matchTime)
		assert.Greater(t, ratio, 0.25, "%s mismatch finished too fast relative to a match", name)
		assert.Less(t, ratio, 4.0, "%s mismatch took too long relative to a match", name)
	}
}

func TestHashKey_DeterministicAndIrreversible(t *testing.T) {
	first := hashKey("lnf_0123")
	second := hashKey("lnf_0123")
	other := hashKey("lnf_0124")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.NotContains(t, first, "lnf_")
}
