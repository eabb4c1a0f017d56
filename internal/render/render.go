// Package render produces the text of index and meta-index blocks from
// hierarchy tree nodes.
package render

import (
	"strings"

	"github.com/starford/ansuz/internal/blocks"
	"github.com/starford/ansuz/internal/hierarchy"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/tagpath"
)

// titleLimit is the annotation cutoff, in runes, before truncation.
const titleLimit = 50

// Linker renders a wikilink from one document to another. The vault
// implements it; tests substitute their own.
type Linker interface {
	Link(from, to models.DocRef, display string) string
}

// Options control rendering.
type Options struct {
	// ShowTitle annotates each entry with the document's title property.
	ShowTitle bool
}

// Renderer renders blocks for a fixed linker and option set.
type Renderer struct {
	links Linker
	opts  Options
}

// New creates a Renderer.
func New(links Linker, opts Options) *Renderer {
	return &Renderer{links: links, opts: opts}
}

// IndexBlock renders the nested index of node as a complete block, header
// line through marker line. The target document never links to itself.
func (r *Renderer) IndexBlock(node *hierarchy.Node, target models.DocRef) blocks.Block {
	ref := tagpath.ToBlockReference(node.Path)
	var b strings.Builder
	b.WriteString("> [!example] Index of " + blockHeading(node) + "\n")
	r.writeIndex(&b, node, target, 0)
	b.WriteString("> " + ref + "\n")
	return blocks.Block{Ref: ref, Text: b.String()}
}

func (r *Renderer) writeIndex(b *strings.Builder, node *hierarchy.Node, target models.DocRef, indent int) {
	prefix := "> " + strings.Repeat("    ", indent)

	emit := func(docs []models.DocRef, bold bool) {
		for _, d := range docs {
			if d.Path == target.Path {
				continue
			}
			b.WriteString(prefix + "- " + r.entry(target, d, bold) + "\n")
		}
	}
	emit(node.Priority, true)
	emit(node.Regular, false)
	emit(node.Index, false)

	for _, c := range node.Children {
		label := c.Heading()
		if c.Header != nil {
			label = r.links.Link(target, *c.Header, c.Heading())
		}
		b.WriteString(prefix + "- **" + label + "**\n")
		r.writeIndex(b, c, target, indent+1)
	}
}

// MetaIndexBlock renders a flat summary of the index documents found one
// level below node: the union of the immediate children's index buckets,
// priority entries first.
func (r *Renderer) MetaIndexBlock(node *hierarchy.Node, target models.DocRef) blocks.Block {
	ref := tagpath.ToBlockReference(node.Path)

	var priority, rest []models.DocRef
	seen := make(map[string]bool)
	collect := func(docs []models.DocRef, into *[]models.DocRef) {
		for _, d := range docs {
			if d.Path == target.Path || seen[d.Path] {
				continue
			}
			seen[d.Path] = true
			*into = append(*into, d)
		}
	}
	for _, c := range node.Children {
		collect(c.IndexPriority, &priority)
	}
	for _, c := range node.Children {
		collect(c.Index, &rest)
	}
	hierarchy.SortRefs(priority)
	hierarchy.SortRefs(rest)

	var b strings.Builder
	b.WriteString("> [!tldr] Indexes under " + blockHeading(node) + "\n")
	for _, d := range priority {
		b.WriteString("> - " + r.entry(target, d, true) + "\n")
	}
	for _, d := range rest {
		b.WriteString("> - " + r.entry(target, d, false) + "\n")
	}
	b.WriteString("> " + ref + "\n")
	return blocks.Block{Ref: ref, Text: b.String()}
}

// entry renders one list entry: the link, bolded for priority documents,
// annotated with a truncated title when enabled.
func (r *Renderer) entry(target, doc models.DocRef, bold bool) string {
	link := r.links.Link(target, doc, doc.Name)
	if bold {
		link = "**" + link + "**"
	}
	if r.opts.ShowTitle && doc.Title != "" {
		link += ": " + truncate(doc.Title, titleLimit)
	}
	return link
}

func blockHeading(node *hierarchy.Node) string {
	if node.Path == "" {
		return "all notes"
	}
	return tagpath.FormatAsHeading(node.Path)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
