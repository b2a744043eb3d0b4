package vpath

import "golang.org/x/text/unicode/norm"

// NormalizeUnicode controls whether path segments are passed through NFC
// Unicode normalization during canonicalization. It defaults to false,
// matching plain byte-wise comparison semantics; backends that observe
// NFD-decomposed names (historically, HFS+ on macOS) can enable it so
// that paths built from decomposed and composed input compare equal.
var NormalizeUnicode = false

// maybeNormalize applies NFC normalization to a single path segment when
// NormalizeUnicode is enabled, leaving the segment untouched otherwise.
func maybeNormalize(segment string) string {
	if !NormalizeUnicode {
		return segment
	}
	return norm.NFC.String(segment)
}
