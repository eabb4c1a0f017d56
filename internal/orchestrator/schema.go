package orchestrator

import (
	"sort"

	"github.com/starford/ansuz/internal/fingerprint"
	"github.com/starford/ansuz/internal/hierarchy"
	"github.com/starford/ansuz/internal/models"
)

// Descriptor is one document that renders index blocks: the tag paths it
// should index and meta-index, in declared order. A document that merely
// contains stale block markers gets a descriptor with no tag paths, so the
// cleanup pass can remove them.
type Descriptor struct {
	Doc       models.DocRef
	IndexTags []string
	MetaTags  []string
}

// Fingerprint hashes the descriptor's document and its sorted tag lists.
func (d *Descriptor) Fingerprint() int32 {
	h := fingerprint.Hash32(d.Doc.Path)
	for _, t := range sortedCopy(d.IndexTags) {
		h = fingerprint.Mix(h, fingerprint.Hash32(t))
	}
	h = fingerprint.Mix(h, 17)
	for _, t := range sortedCopy(d.MetaTags) {
		h = fingerprint.Mix(h, fingerprint.Hash32(t))
	}
	return h
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

// Schema is the output of one scan: the tag tree, every index-document
// descriptor, and a content hash per descriptor document. The content hashes
// make a hand-edited index block register as a change even when the tree
// itself did not move.
type Schema struct {
	Root          *hierarchy.Node
	Descriptors   []Descriptor
	ContentHashes map[string]int32
}

// Fingerprint combines the tree fingerprint, every descriptor fingerprint,
// and the sorted content-hash map into the cycle's schema fingerprint.
func (s *Schema) Fingerprint() int32 {
	h := s.Root.Fingerprint()
	for i := range s.Descriptors {
		h = fingerprint.Mix(h, s.Descriptors[i].Fingerprint())
	}
	paths := make([]string, 0, len(s.ContentHashes))
	for p := range s.ContentHashes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		h = fingerprint.Mix(h, fingerprint.Hash32(p))
		h = fingerprint.Mix(h, s.ContentHashes[p])
	}
	return h
}
