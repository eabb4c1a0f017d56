// Package vault defines the document-store abstraction the index engine
// operates against, plus its local file-system implementation.
package vault

import (
	"time"

	"github.com/starford/ansuz/internal/models"
)

// Provider is the narrow interface for vault document operations.
type Provider interface {
	// List returns a handle for every .md file in the vault, skipping any
	// whose path starts with one of the excluded folder prefixes.
	List(excludedPrefixes []string) ([]models.DocRef, error)
	// Read returns the raw text of the document at path (relative to root).
	Read(path string) (string, error)
	// Transform atomically rewrites the document at path through fn. The
	// write is skipped entirely when fn returns its input unchanged.
	Transform(path string, fn func(string) string) error
	// ModTime returns the current modification time of the document at path.
	ModTime(path string) (time.Time, error)
	// Link renders a wikilink from one document to another.
	Link(from, to models.DocRef, display string) string
}
