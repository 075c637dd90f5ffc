package model

import "time"

// UnknownKeyID is recorded when a request fails before a credential is
// resolved.
const UnknownKeyID = "unknown"

// RequestLogEntry records the outcome of one dispatched request. Entries
// are never mutated after they are appended to a log store.
type RequestLogEntry struct {
	ID         string
	Timestamp  time.Time
	Method     string
	Path       string
	KeyID      string
	StatusCode int
	Duration   time.Duration
	Error      string
}
