package dataprocessing

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCode canonicalizes a COICOP code: trim, uppercase, then drop every character
// that is not an ASCII letter or digit. "cp 01-112" and "CP01112" both become "CP01112".
// NormalizeCode(NormalizeCode(s)) == NormalizeCode(s) for every s.
func NormalizeCode(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(upper))
	for i := 0; i < len(upper); i++ {
		c := upper[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeLabel trims a region label and converts it to Unicode NFC, so "Österreich"
// typed with a combining diaeresis matches the precomposed form. Case is preserved:
// region matching stays exact.
func NormalizeLabel(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}
