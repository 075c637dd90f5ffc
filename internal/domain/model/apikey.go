package model

import "time"

// RedactedHash is the placeholder substituted for SecretHash in listings.
const RedactedHash = "[REDACTED]"

// APIKey is a bearer credential record. SecretHash is the only form of the
// raw key ever stored; the raw value is returned once at issuance and is
// not retrievable afterwards.
type APIKey struct {
	ID         string
	Name       string
	SecretHash string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	UsageCount int64
	Enabled    bool
}

// Redacted returns a copy of the key safe for external listing, with the
// stored hash replaced by RedactedHash.
func (k APIKey) Redacted() APIKey {
	k.SecretHash = RedactedHash
	return k
}
