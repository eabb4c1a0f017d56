// Package blocks patches document text to contain an exact set of rendered
// index blocks and removes any block that is no longer wanted.
//
// A block is a run of lines each prefixed with the block-quote marker ">":
// one callout header line, zero or more continuation lines, and a final
// marker line of the form "> ^indexof-<slug>". The reconciler works in two
// passes over the original text: the first segments it into raw spans and
// marker-terminated block spans, the second emits each segment as-is, as a
// replacement, or not at all. No offset arithmetic touches the original text,
// and applying the same desired set twice yields identical output.
package blocks

import (
	"regexp"
	"strings"
)

// Block is one desired block: its reference (including the leading caret)
// and the full block text, header through marker line.
type Block struct {
	Ref  string
	Text string
}

var (
	markerLineRe = regexp.MustCompile(`^> (\^indexof-[A-Za-z0-9-]+)\s*$`)
	headerLineRe = regexp.MustCompile(`^> \[![A-Za-z]+\]`)

	// MarkerPattern matches any block marker line anywhere in a document.
	MarkerPattern = regexp.MustCompile(`(?m)^> \^indexof-[A-Za-z0-9-]+\s*$`)
)

// HasMarker reports whether text contains any block marker line.
func HasMarker(text string) bool {
	return MarkerPattern.MatchString(text)
}

// segment is one span of the original text. A non-empty ref marks a block
// span ending in that marker.
type segment struct {
	text string
	ref  string
}

// Reconcile returns text rewritten so that every desired block appears
// exactly once: existing blocks are replaced in place, missing ones appended
// after a blank line, duplicates collapse onto the first occurrence, and
// blocks whose reference is not desired are removed together with the blank
// separator that once introduced them.
func Reconcile(text string, desired []Block) string {
	want := make(map[string]string, len(desired))
	var order []string
	for _, b := range desired {
		// Ties between tag paths sharing one reference resolve
		// first-by-declared-order.
		if _, ok := want[b.Ref]; ok {
			continue
		}
		t := b.Text
		if !strings.HasSuffix(t, "\n") {
			t += "\n"
		}
		want[b.Ref] = t
		order = append(order, b.Ref)
	}

	var out strings.Builder
	emitted := make(map[string]bool)

	drop := func() {
		// Absorb the blank-line separator left behind by the removed block.
		s := strings.TrimRight(out.String(), "\n")
		out.Reset()
		out.WriteString(s)
		if s != "" {
			out.WriteString("\n")
		}
	}

	for _, seg := range segments(text) {
		switch {
		case seg.ref == "":
			out.WriteString(seg.text)
		case emitted[seg.ref]:
			drop()
		default:
			t, ok := want[seg.ref]
			if !ok {
				drop()
				continue
			}
			out.WriteString(t)
			emitted[seg.ref] = true
		}
	}

	for _, ref := range order {
		if emitted[ref] {
			continue
		}
		s := strings.TrimRight(out.String(), "\n")
		out.Reset()
		out.WriteString(s)
		if s != "" {
			out.WriteString("\n\n")
		}
		out.WriteString(want[ref])
		emitted[ref] = true
	}

	return out.String()
}

// segments splits text into raw spans and block spans. A block span starts at
// the callout header line closest to its marker; quote lines before that
// header stay raw, as do quote runs with no marker at all.
func segments(text string) []segment {
	lines := strings.SplitAfter(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var segs []segment
	var raw strings.Builder

	flushRaw := func() {
		if raw.Len() > 0 {
			segs = append(segs, segment{text: raw.String()})
			raw.Reset()
		}
	}

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], ">") {
			raw.WriteString(lines[i])
			i++
			continue
		}

		// Quote run: look for a marker line before it ends.
		markerAt := -1
		var ref string
		j := i
		for ; j < len(lines) && strings.HasPrefix(lines[j], ">"); j++ {
			if m := markerLineRe.FindStringSubmatch(strings.TrimRight(lines[j], "\r\n")); m != nil {
				markerAt = j
				ref = m[1]
				break
			}
		}
		if markerAt < 0 {
			for k := i; k < j; k++ {
				raw.WriteString(lines[k])
			}
			i = j
			continue
		}

		// Block starts at the header nearest the marker; earlier quote
		// lines are unrelated content.
		start := i
		for k := markerAt; k >= i; k-- {
			if headerLineRe.MatchString(lines[k]) {
				start = k
				break
			}
		}
		for k := i; k < start; k++ {
			raw.WriteString(lines[k])
		}
		flushRaw()

		var blk strings.Builder
		for k := start; k <= markerAt; k++ {
			blk.WriteString(lines[k])
		}
		segs = append(segs, segment{text: blk.String(), ref: ref})
		i = markerAt + 1
	}
	flushRaw()
	return segs
}
