// Package hierarchy builds the tag-hierarchy tree over vault documents.
// The tree is rebuilt from scratch on every scan; nodes carry no identity
// across scans.
package hierarchy

import (
	"strings"

	"github.com/starford/ansuz/internal/fingerprint"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/tagpath"
)

// Node represents one tag path in the hierarchy. Documents land in exactly
// one bucket per node; a document carrying several tags appears in several
// nodes. Children are exclusively owned by their parent, one per distinct
// next path component.
type Node struct {
	Path string

	// Header is the document whose name matches this node's own tag
	// component; it acts as the node's descriptive page.
	Header *models.DocRef

	Priority      []models.DocRef
	Regular       []models.DocRef
	Index         []models.DocRef
	IndexPriority []models.DocRef

	Children []*Node
}

// NewRoot returns the root node (empty tag path).
func NewRoot() *Node {
	return &Node{}
}

// Component returns the node's trailing tag component.
func (n *Node) Component() string {
	return tagpath.LastComponent(n.Path)
}

// Heading returns the node's formatted tag component.
func (n *Node) Heading() string {
	return tagpath.FormatAsHeading(n.Component())
}

// AddDocument registers doc under the canonical form of tag, descending from
// this node and lazily creating intermediate children. It returns false when
// tag is neither this node's path nor a descendant of it, which is a contract
// violation on the caller's side.
func (n *Node) AddDocument(tag string, doc models.DocRef, hasPriority, isIndexCarrier bool) bool {
	path := tagpath.Canonicalize(tag)

	if path == n.Path {
		n.classify(doc, hasPriority, isIndexCarrier)
		return true
	}

	if !tagpath.IsDescendantOf(path, n.Path) {
		return false
	}

	return n.child(path, true).AddDocument(path, doc, hasPriority, isIndexCarrier)
}

// classify places doc into the bucket its flags and name select. A document
// already present in any bucket of this node keeps its first classification;
// a second tag resolving to the same node is ignored.
func (n *Node) classify(doc models.DocRef, hasPriority, isIndexCarrier bool) {
	if n.contains(doc.Path) {
		return
	}
	switch {
	case isIndexCarrier && hasPriority:
		n.IndexPriority = append(n.IndexPriority, doc)
	case isIndexCarrier:
		n.Index = append(n.Index, doc)
	case n.Path != "" && n.Header == nil && tagpath.FormatAsHeading(doc.Name) == n.Heading():
		h := doc
		n.Header = &h
	case hasPriority:
		n.Priority = append(n.Priority, doc)
	default:
		n.Regular = append(n.Regular, doc)
	}
}

// contains reports whether a document with the given path already occupies
// any bucket (or the header slot) of this node.
func (n *Node) contains(path string) bool {
	if n.Header != nil && n.Header.Path == path {
		return true
	}
	for _, bucket := range [][]models.DocRef{n.Priority, n.Regular, n.Index, n.IndexPriority} {
		for _, d := range bucket {
			if d.Path == path {
				return true
			}
		}
	}
	return false
}

// child resolves the immediate child on the way from this node to path,
// creating it when create is set.
func (n *Node) child(path string, create bool) *Node {
	rest := path
	if n.Path != "" {
		rest = path[len(n.Path)+1:]
	}
	comp := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		comp = rest[:i]
	}

	for _, c := range n.Children {
		if c.Component() == comp {
			return c
		}
	}
	if !create {
		return nil
	}
	childPath := comp
	if n.Path != "" {
		childPath = n.Path + "/" + comp
	}
	c := &Node{Path: childPath}
	n.Children = append(n.Children, c)
	return c
}

// Find returns the node for the canonical form of tag, or nil when no such
// path exists under this node. It never creates nodes.
func (n *Node) Find(tag string) *Node {
	path := tagpath.Canonicalize(tag)
	if path == n.Path {
		return n
	}
	if !tagpath.IsDescendantOf(path, n.Path) {
		return nil
	}
	c := n.child(path, false)
	if c == nil {
		return nil
	}
	return c.Find(path)
}

// AllDocuments returns the node's own contained documents: priority bucket,
// then regular bucket, then the header document. Index buckets belong to
// meta-indexing and are excluded.
func (n *Node) AllDocuments() []models.DocRef {
	out := make([]models.DocRef, 0, len(n.Priority)+len(n.Regular)+1)
	out = append(out, n.Priority...)
	out = append(out, n.Regular...)
	if n.Header != nil {
		out = append(out, *n.Header)
	}
	return out
}

// SortAll recursively sorts every bucket by display name and the children
// list by formatted heading.
func (n *Node) SortAll() {
	SortRefs(n.Priority)
	SortRefs(n.Regular)
	SortRefs(n.Index)
	SortRefs(n.IndexPriority)
	sortNodes(n.Children)
	for _, c := range n.Children {
		c.SortAll()
	}
}

// Fingerprint combines each document's path, the node's own tag path, and the
// children's fingerprints into one hash. Any structural change anywhere in
// the subtree changes the result.
func (n *Node) Fingerprint() int32 {
	h := fingerprint.Hash32(n.Path)
	for _, d := range n.Priority {
		h = fingerprint.Mix(h, fingerprint.Hash32(d.Path))
	}
	for _, d := range n.Regular {
		h = fingerprint.Mix(h, fingerprint.Hash32(d.Path))
	}
	for _, d := range n.Index {
		h = fingerprint.Mix(h, fingerprint.Hash32(d.Path))
	}
	for _, d := range n.IndexPriority {
		h = fingerprint.Mix(h, fingerprint.Hash32(d.Path))
	}
	if n.Header != nil {
		h = fingerprint.Mix(h, fingerprint.Hash32(n.Header.Path))
	}
	for _, c := range n.Children {
		h = fingerprint.Mix(h, c.Fingerprint())
	}
	return h
}
