// Package vaultcrypto implements password-based authenticated encryption
// of vault text: PBKDF2-derived AES-256 keys and GCM envelopes.
package vaultcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Algorithm names the cipher reported in encrypt responses.
const Algorithm = "AES-GCM"

const (
	// The salt and iteration count are fixed for compatibility with
	// existing envelopes; changing either invalidates all previously
	// encrypted content and requires a versioned format.
	kdfSalt       = "pii-salt"
	kdfIterations = 50000

	keySize = 32 // AES-256
	ivSize  = 12 // standard GCM nonce

	envelopeSep = "."
)

// ErrDecryptionFailed is returned for every decryption failure. Malformed
// envelopes, wrong passwords and corrupted ciphertext are deliberately
// indistinguishable to the caller.
var ErrDecryptionFailed = errors.New("decryption failed: invalid password or corrupted data")

// DeriveKey derives the 256-bit symmetric key for a password using
// PBKDF2-HMAC-SHA256. The derivation is deterministic: the same password
// always yields the same key.
func DeriveKey(password string) []byte {
	return pbkdf2.Key([]byte(password), []byte(kdfSalt), kdfIterations, keySize, sha256.New)
}

// Encrypt seals plaintext under password and returns the textual envelope
// base64(iv) + "." + base64(ciphertext||tag). The IV is drawn fresh from
// crypto/rand on every call, so repeated encryptions of identical input
// never produce the same envelope.
func Encrypt(plaintext, password string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	gcm, err := newGCM(password)
	if err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(iv) + envelopeSep +
		base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. Every failure mode
// collapses into ErrDecryptionFailed.
func Decrypt(envelope, password string) (string, error) {
	ivPart, sealedPart, ok := strings.Cut(envelope, envelopeSep)
	if !ok {
		return "", ErrDecryptionFailed
	}

	iv, err := base64.StdEncoding.DecodeString(ivPart)
	if err != nil || len(iv) != ivSize {
		return "", ErrDecryptionFailed
	}

	sealed, err := base64.StdEncoding.DecodeString(sealedPart)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	gcm, err := newGCM(password)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

func newGCM(password string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(password))
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
