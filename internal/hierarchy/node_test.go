package hierarchy

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func doc(path, name string) models.DocRef {
	return models.DocRef{Path: path, Name: name}
}

func TestAddDocument_CreatesIntermediateNodes(t *testing.T) {
	root := NewRoot()
	if !root.AddDocument("work/projects/alpha", doc("alpha.md", "alpha"), false, false) {
		t.Fatal("AddDocument returned false")
	}

	n := root.Find("work/projects/alpha")
	if n == nil {
		t.Fatal("leaf node not found")
	}
	if len(n.Regular) != 1 || n.Regular[0].Path != "alpha.md" {
		t.Errorf("Regular = %v", n.Regular)
	}

	mid := root.Find("work/projects")
	if mid == nil {
		t.Fatal("intermediate node not found")
	}
	if len(mid.AllDocuments()) != 0 {
		t.Errorf("intermediate node should hold no documents, got %v", mid.AllDocuments())
	}
}

func TestAddDocument_SingleChildPerComponent(t *testing.T) {
	root := NewRoot()
	root.AddDocument("work/a", doc("a.md", "a"), false, false)
	root.AddDocument("Work/b", doc("b.md", "b"), false, false)
	root.AddDocument("/work/c/", doc("c.md", "c"), false, false)

	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children))
	}
	work := root.Find("work")
	if len(work.Children) != 3 {
		t.Errorf("work has %d children, want 3", len(work.Children))
	}
}

func TestAddDocument_RejectsNonDescendant(t *testing.T) {
	root := NewRoot()
	work := &Node{Path: "work"}
	root.Children = append(root.Children, work)

	if work.AddDocument("personal/x", doc("x.md", "x"), false, false) {
		t.Error("AddDocument should reject a tag outside the subtree")
	}
}

func TestClassify_Buckets(t *testing.T) {
	root := NewRoot()
	root.AddDocument("work", doc("p.md", "p"), true, false)
	root.AddDocument("work", doc("r.md", "r"), false, false)
	root.AddDocument("work", doc("i.md", "i"), false, true)
	root.AddDocument("work", doc("ip.md", "ip"), true, true)

	n := root.Find("work")
	if len(n.Priority) != 1 || n.Priority[0].Path != "p.md" {
		t.Errorf("Priority = %v", n.Priority)
	}
	if len(n.Regular) != 1 || n.Regular[0].Path != "r.md" {
		t.Errorf("Regular = %v", n.Regular)
	}
	if len(n.Index) != 1 || n.Index[0].Path != "i.md" {
		t.Errorf("Index = %v", n.Index)
	}
	if len(n.IndexPriority) != 1 || n.IndexPriority[0].Path != "ip.md" {
		t.Errorf("IndexPriority = %v", n.IndexPriority)
	}
}

func TestClassify_FirstBucketWins(t *testing.T) {
	root := NewRoot()
	// Two tags resolving to the same node: the second classification of the
	// same document is dropped.
	root.AddDocument("work", doc("self.md", "self"), false, false)
	root.AddDocument("work", doc("self.md", "self"), false, true)

	n := root.Find("work")
	if len(n.Regular) != 1 || n.Regular[0].Path != "self.md" {
		t.Errorf("Regular = %v", n.Regular)
	}
	if len(n.Index) != 0 {
		t.Errorf("Index = %v, want empty", n.Index)
	}

	// Reverse order: the carrier bucket keeps the document.
	root2 := NewRoot()
	root2.AddDocument("work", doc("self.md", "self"), false, true)
	root2.AddDocument("work", doc("self.md", "self"), false, false)

	n2 := root2.Find("work")
	if len(n2.Index) != 1 || n2.Index[0].Path != "self.md" {
		t.Errorf("Index = %v", n2.Index)
	}
	if len(n2.Regular) != 0 {
		t.Errorf("Regular = %v, want empty", n2.Regular)
	}
}

func TestClassify_HeaderByMatchingName(t *testing.T) {
	root := NewRoot()
	root.AddDocument("deep_learning", doc("Deep learning.md", "Deep learning"), false, false)
	root.AddDocument("deep_learning", doc("other.md", "other"), false, false)

	n := root.Find("deep_learning")
	if n.Header == nil || n.Header.Path != "Deep learning.md" {
		t.Fatalf("Header = %v, want Deep learning.md", n.Header)
	}
	if len(n.Regular) != 1 || n.Regular[0].Path != "other.md" {
		t.Errorf("Regular = %v", n.Regular)
	}

	// A second name match stays a regular document; the first one keeps
	// the header slot.
	root.AddDocument("deep_learning", doc("Deep Learning (copy).md", "Deep learning"), false, false)
	if n.Header.Path != "Deep learning.md" {
		t.Errorf("Header changed to %v", n.Header)
	}
	if len(n.Regular) != 2 {
		t.Errorf("len(Regular) = %d, want 2", len(n.Regular))
	}
}

func TestClassify_NoHeaderOnRoot(t *testing.T) {
	root := NewRoot()
	root.AddDocument("", doc("x.md", ""), false, false)
	if root.Header != nil {
		t.Error("root node must not take a header document")
	}
	if len(root.Regular) != 1 {
		t.Errorf("Regular = %v", root.Regular)
	}
}

func TestAllDocuments_Order(t *testing.T) {
	root := NewRoot()
	root.AddDocument("work", doc("Work.md", "Work"), false, false)
	root.AddDocument("work", doc("b.md", "b"), false, false)
	root.AddDocument("work", doc("a.md", "a"), true, false)
	root.AddDocument("work", doc("idx.md", "idx"), false, true)

	n := root.Find("work")
	all := n.AllDocuments()
	if len(all) != 3 {
		t.Fatalf("len(AllDocuments) = %d, want 3", len(all))
	}
	if all[0].Path != "a.md" || all[1].Path != "b.md" || all[2].Path != "Work.md" {
		t.Errorf("order = %v, want priority, regular, header", all)
	}
}

func TestSortAll(t *testing.T) {
	root := NewRoot()
	root.AddDocument("work", doc("zeta.md", "Zeta"), false, false)
	root.AddDocument("work", doc("alpha.md", "alpha"), false, false)
	root.AddDocument("work", doc("Émile.md", "Émile"), false, false)
	root.AddDocument("personal", doc("p.md", "p"), false, false)
	root.AddDocument("archive", doc("ar.md", "ar"), false, false)
	root.SortAll()

	n := root.Find("work")
	if n.Regular[0].Name != "alpha" || n.Regular[1].Name != "Émile" || n.Regular[2].Name != "Zeta" {
		t.Errorf("sorted Regular = %v", n.Regular)
	}
	if root.Children[0].Path != "archive" || root.Children[1].Path != "personal" || root.Children[2].Path != "work" {
		got := []string{root.Children[0].Path, root.Children[1].Path, root.Children[2].Path}
		t.Errorf("sorted children = %v", got)
	}
}

func TestFind_MissingPath(t *testing.T) {
	root := NewRoot()
	root.AddDocument("work/projects", doc("a.md", "a"), false, false)
	if root.Find("work/other") != nil {
		t.Error("Find should return nil for an absent path")
	}
	if root.Find("personal") != nil {
		t.Error("Find should return nil for an absent top-level path")
	}
	if root.Find("") != root {
		t.Error("Find(\"\") on the root should return the root")
	}
}

func TestFingerprint_ChangesWithStructure(t *testing.T) {
	build := func(extra bool) int32 {
		root := NewRoot()
		root.AddDocument("work", doc("a.md", "a"), false, false)
		root.AddDocument("work/projects", doc("b.md", "b"), true, false)
		if extra {
			root.AddDocument("personal", doc("c.md", "c"), false, false)
		}
		root.SortAll()
		return root.Fingerprint()
	}
	if build(false) != build(false) {
		t.Error("fingerprint not stable across identical builds")
	}
	if build(false) == build(true) {
		t.Error("fingerprint unchanged after adding a document")
	}
}

func TestCompareDisplay_StripsDisallowed(t *testing.T) {
	if CompareDisplay("  [alpha]  ", "alpha") != 0 {
		t.Error("bracketed and plain forms should compare equal")
	}
	if CompareDisplay("Alpha", "beta") >= 0 {
		t.Error("Alpha should sort before beta case-insensitively")
	}
}
