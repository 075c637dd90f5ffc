package driven

import "context"

// VaultReader defines the driven port to the note vault. Note paths are
// vault-relative with forward slashes, the same form the host presents.
type VaultReader interface {
	// ListNotes returns the paths of all markdown notes in the vault.
	ListNotes(ctx context.Context) ([]string, error)

	// ReadNote returns the full text of one note.
	ReadNote(ctx context.Context, path string) (string, error)
}
