package vaultcrypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	plaintexts := []string{
		"hello world",
		"",
		"multi\nline\ntext",
		"unicode: héllo wörld 日本語 🔒",
		strings.Repeat("a", 10_000),
	}

	for _, plaintext := range plaintexts {
		envelope, err := Encrypt(plaintext, "correct-password")
		require.NoError(t, err)

		got, err := Decrypt(envelope, "correct-password")
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncrypt_EnvelopeShape(t *testing.T) {
	envelope, err := Encrypt("secret text", "some-password")
	require.NoError(t, err)

	parts := strings.SplitN(envelope, ".", 2)
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	first, err := Encrypt("same input", "same-password")
	require.NoError(t, err)

	second, err := Encrypt("same input", "same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// The IV half before the delimiter must differ too, not just the
	// ciphertext half.
	firstIV := strings.SplitN(first, ".", 2)[0]
	secondIV := strings.SplitN(second, ".", 2)[0]
	assert.NotEqual(t, firstIV, secondIV)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	envelope, err := Encrypt("hello world", "correct-password")
	require.NoError(t, err)

	_, err = Decrypt(envelope, "wrong-password-x")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecrypt_MalformedEnvelope(t *testing.T) {
	cases := []string{
		"not-a-valid-ciphertext",
		"",
		"missing-second-half.",
		".missing-first-half",
		"!!!not-base64!!!.AAAA",
		"AAAA.!!!not-base64!!!",
		// Valid base64 but wrong IV length.
		"AAAA.c29tZSBjaXBoZXJ0ZXh0",
	}

	for _, envelope := range cases {
		_, err := Decrypt(envelope, "any-password-here")
		assert.ErrorIs(t, err, ErrDecryptionFailed, "envelope %q", envelope)
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	envelope, err := Encrypt("hello world", "correct-password")
	require.NoError(t, err)

	// Flip a character in the ciphertext half.
	idx := strings.Index(envelope, ".") + 1
	tampered := []byte(envelope)
	if tampered[idx] == 'A' {
		tampered[idx] = 'B'
	} else {
		tampered[idx] = 'A'
	}

	_, err = Decrypt(string(tampered), "correct-password")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEncrypt_PasswordSensitivity(t *testing.T) {
	first, err := Encrypt("same plaintext", "password-one")
	require.NoError(t, err)

	second, err := Encrypt("same plaintext", "password-two")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	first := DeriveKey("a-password")
	second := DeriveKey("a-password")
	other := DeriveKey("b-password")

	assert.Len(t, first, 32)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}
