// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/state"
	"github.com/starford/ansuz/internal/vault"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *state.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := state.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a vault.Provider.
func TestVault(t *testing.T) (string, *vault.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	v, err := vault.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, v
}

// WriteDoc writes a Markdown document at a relative path inside the vault,
// creating parent directories as needed.
func WriteDoc(t *testing.T, vaultDir, relPath, content string) {
	t.Helper()
	full := filepath.Join(vaultDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
