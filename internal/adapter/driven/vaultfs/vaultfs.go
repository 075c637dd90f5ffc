// Package vaultfs reads the note vault from the local filesystem.
package vaultfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lockfind/lockfind/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VaultReader = (*Vault)(nil)

// Vault lists and reads markdown notes under a root directory. Note paths
// are root-relative with forward slashes, the form the rest of the system
// uses. Hidden directories (".obsidian", ".git", ...) are skipped.
type Vault struct {
	root string
}

// New creates a Vault rooted at dir.
func New(dir string) *Vault {
	return &Vault{root: dir}
}

// ListNotes returns the paths of all markdown notes in the vault, sorted
// for deterministic scan order.
func (v *Vault) ListNotes(ctx context.Context) ([]string, error) {
	var notes []string

	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return err
		}
		notes = append(notes, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault %q: %w", v.root, err)
	}

	sort.Strings(notes)
	return notes, nil
}

// ReadNote returns the full text of one note. Paths that escape the vault
// root are rejected.
func (v *Vault) ReadNote(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("note path %q escapes the vault", path)
	}

	content, err := os.ReadFile(filepath.Join(v.root, clean))
	if err != nil {
		return "", fmt.Errorf("read note %q: %w", path, err)
	}
	return string(content), nil
}
