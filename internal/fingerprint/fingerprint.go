// Package fingerprint implements the 32-bit rolling hashes used for change
// detection. Re-runs over an unchanged vault produce identical fingerprints,
// which lets the orchestrator skip whole write cycles.
package fingerprint

import "unicode/utf16"

// Hash32 computes the signed 32-bit rolling hash of s over its UTF-16 code
// units: h = h*31 + unit, with wraparound.
func Hash32(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	return h
}

// Mix folds v into h with the same h*31 + v step used by Hash32.
func Mix(h, v int32) int32 {
	return h*31 + v
}
