package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func newTestFS(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	f, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, f
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestList_MarkdownOnlyAndExclusions(t *testing.T) {
	dir, f := newTestFS(t)
	writeFile(t, dir, "a.md", "# a")
	writeFile(t, dir, "sub/b.md", "# b")
	writeFile(t, dir, "notes.txt", "not markdown")
	writeFile(t, dir, "templates/t.md", "# t")

	docs, err := f.List([]string{"templates/"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	paths := make(map[string]bool)
	for _, d := range docs {
		paths[d.Path] = true
	}
	if len(docs) != 2 || !paths["a.md"] || !paths["sub/b.md"] {
		t.Errorf("List returned %v", paths)
	}
}

func TestList_PopulatesNameAndModTime(t *testing.T) {
	dir, f := newTestFS(t)
	writeFile(t, dir, "sub/Note Name.md", "content")

	docs, err := f.List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("len(docs) = %d, want 1", len(docs))
	}
	d := docs[0]
	if d.Name != "Note Name" {
		t.Errorf("Name = %q, want %q", d.Name, "Note Name")
	}
	if d.ModTime.IsZero() {
		t.Error("ModTime not populated")
	}
}

func TestRead(t *testing.T) {
	dir, f := newTestFS(t)
	writeFile(t, dir, "a.md", "hello")

	got, err := f.Read("a.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestSafePath_RejectsTraversal(t *testing.T) {
	_, f := newTestFS(t)
	if _, err := f.Read("../outside.md"); err == nil {
		t.Error("expected traversal to be rejected")
	}
	if _, err := f.Read("/etc/passwd"); err == nil {
		t.Error("expected absolute path to be rejected")
	}
}

func TestTransform_WritesResult(t *testing.T) {
	dir, f := newTestFS(t)
	writeFile(t, dir, "a.md", "before")

	err := f.Transform("a.md", func(s string) string { return s + " after" })
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	got, _ := f.Read("a.md")
	if got != "before after" {
		t.Errorf("got %q, want %q", got, "before after")
	}
}

func TestTransform_SkipsUnchanged(t *testing.T) {
	dir, f := newTestFS(t)
	writeFile(t, dir, "a.md", "same")
	before, err := f.ModTime("a.md")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.Transform("a.md", func(s string) string { return s }); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	after, err := f.ModTime("a.md")
	if err != nil {
		t.Fatal(err)
	}
	if !after.Equal(before) {
		t.Error("unchanged content should not be rewritten")
	}
}

func TestTransform_LeavesNoTempFiles(t *testing.T) {
	dir, f := newTestFS(t)
	writeFile(t, dir, "a.md", "x")
	if err := f.Transform("a.md", strings.ToUpper); err != nil {
		t.Fatalf("Transform: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".ansuz-tmp-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestLink(t *testing.T) {
	_, f := newTestFS(t)
	from := models.DocRef{Path: "index.md", Name: "index"}
	to := models.DocRef{Path: "sub/Note.md", Name: "Note"}

	if got := f.Link(from, to, "Note"); got != "[[sub/Note]]" {
		t.Errorf("got %q, want %q", got, "[[sub/Note]]")
	}
	if got := f.Link(from, to, "Display"); got != "[[sub/Note|Display]]" {
		t.Errorf("got %q, want %q", got, "[[sub/Note|Display]]")
	}
	if got := f.Link(from, to, ""); got != "[[sub/Note]]" {
		t.Errorf("got %q, want %q", got, "[[sub/Note]]")
	}
}

func TestNewFS_MissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing root directory")
	}
}
