// Package tagpath canonicalizes slash-delimited hierarchical tags and derives
// the display headings and block references used by the index engine.
package tagpath

import (
	"regexp"
	"strings"
	"unicode"
)

// RootBlockReference is the block reference used for an index of the whole
// vault (empty tag path).
const RootBlockReference = "^indexof-root000"

var nonLetterRe = regexp.MustCompile(`[^A-Za-z]+`)

// Canonicalize returns the canonical form of a raw tag: trimmed, lower-cased,
// with at most one leading and one trailing slash stripped.
func Canonicalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimSuffix(s, "/")
	return s
}

// Components splits a canonical path into its slash-delimited components.
// The empty path has no components.
func Components(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// LastComponent returns the final slash-delimited segment of path.
func LastComponent(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Parent returns path with its last component removed, or the empty path if
// path has a single component.
func Parent(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

// IsDescendantOf reports whether path lies strictly below ancestor.
func IsDescendantOf(path, ancestor string) bool {
	if path == ancestor {
		return false
	}
	if ancestor == "" {
		return path != ""
	}
	return strings.HasPrefix(path, ancestor+"/")
}

// FormatAsHeading renders a tag path as a human heading. Each component is
// split on underscores; an empty sub-word (produced by a doubled underscore,
// or a leading one) marks the following sub-word as an acronym and renders it
// upper-case. Components are capitalized and joined with " / ".
func FormatAsHeading(raw string) string {
	path := Canonicalize(raw)
	if path == "" {
		return ""
	}
	parts := Components(path)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, formatComponent(part))
	}
	return strings.Join(out, " / ")
}

func formatComponent(part string) string {
	var words []string
	acronym := false
	for _, w := range strings.Split(part, "_") {
		if w == "" {
			acronym = true
			continue
		}
		if acronym {
			w = strings.ToUpper(w)
			acronym = false
		}
		words = append(words, w)
	}
	return capitalize(strings.Join(words, " "))
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// ToBlockReference maps a tag path to the stable block reference that marks
// its rendered block. Runs of non-letter characters collapse to a single
// hyphen; the empty path maps to RootBlockReference.
func ToBlockReference(path string) string {
	p := Canonicalize(path)
	if p == "" {
		return RootBlockReference
	}
	return "^indexof-" + nonLetterRe.ReplaceAllString(p, "-")
}
