package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to vault directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault root directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the vault root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("vault: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("vault: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("vault: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// List walks the vault and returns a handle for every .md file whose path
// does not start with one of the excluded folder prefixes. The walk only
// stats; document contents are read on demand.
func (f *FS) List(excludedPrefixes []string) ([]models.DocRef, error) {
	var out []models.DocRef
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, _ := filepath.Rel(f.root, p)
		rel = filepath.ToSlash(rel)
		if excluded(rel, excludedPrefixes) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, models.DocRef{
			Path:    rel,
			Name:    strings.TrimSuffix(d.Name(), ".md"),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: list: %w", err)
	}
	return out, nil
}

func excluded(rel string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}

// Read returns the raw text of a vault document.
func (f *FS) Read(path string) (string, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", path, notFound(err))
	}
	return string(data), nil
}

// Transform applies fn to the document's current text and writes the result
// back atomically: tmp file, fsync, rename. Unchanged output is not written.
func (f *FS) Transform(path string, fn func(string) string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("vault: read %s: %w", path, notFound(err))
	}
	next := fn(string(data))
	if next == string(data) {
		return nil
	}
	return f.write(abs, []byte(next))
}

// ModTime returns the current modification time of a vault document.
func (f *FS) ModTime(path string) (time.Time, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return time.Time{}, fmt.Errorf("vault: stat %s: %w", path, notFound(err))
	}
	return info.ModTime(), nil
}

// notFound maps file-system absence onto the app-level sentinel so callers
// can match it without knowing the storage backend.
func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperr.ErrNotFound
	}
	return err
}

// Link renders a wikilink to a document. Targets are vault-absolute paths
// without the .md extension; a display text differing from the target stem
// becomes an alias.
func (f *FS) Link(_, to models.DocRef, display string) string {
	target := strings.TrimSuffix(to.Path, ".md")
	if display == "" || display == to.Name {
		return "[[" + target + "]]"
	}
	return "[[" + target + "|" + display + "]]"
}

func (f *FS) write(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("vault: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("vault: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vault: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("vault: rename: %w", err)
	}
	success = true
	return nil
}
