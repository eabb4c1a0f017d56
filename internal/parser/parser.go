// Package parser extracts frontmatter metadata from Markdown content.
package parser

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result holds the output of parsing a Markdown document.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	Tags        []string
	// MalformedTags is set when the frontmatter carries a tags field of an
	// unusable shape. The document is then treated as tag-less.
	MalformedTags bool
}

// Parse extracts frontmatter, body, tags, and title from raw Markdown bytes.
// It never fails on malformed input: invalid YAML falls back to a bare body.
func Parse(data []byte) *Result {
	fm, body := splitFrontmatter(data)
	tags, malformed := NormalizeTags(tagsField(fm))
	return &Result{
		Frontmatter:   fm,
		Body:          body,
		Title:         deriveTitle(fm),
		Tags:          tags,
		MalformedTags: malformed,
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter: treat everything as body.
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}

	return fm, body
}

func tagsField(fm map[string]interface{}) interface{} {
	if fm == nil {
		return nil
	}
	return fm["tags"]
}

// NormalizeTags coerces a frontmatter tags value into an ordered list of
// strings. Tags may be stored as a native list or as a single comma-joined
// string; anything else is reported as malformed and mapped to no tags.
func NormalizeTags(raw interface{}) ([]string, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case string:
		var out []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out, false
	case []interface{}:
		var out []string
		malformed := false
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				malformed = true
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, malformed
	default:
		return nil, true
	}
}

// deriveTitle returns the frontmatter "title" if present, otherwise empty.
func deriveTitle(fm map[string]interface{}) string {
	if fm == nil {
		return ""
	}
	if t, ok := fm["title"]; ok {
		if s, ok := t.(string); ok {
			return s
		}
	}
	return ""
}
