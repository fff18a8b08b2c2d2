package u

import (
	"fmt"
	"strings"
)

// NormalizeNewlinesInPlace changes CRLF (Windows) and
// CR (Mac) to LF (Unix)
// Optimized for speed, modifies data in place
func NormalizeNewlinesInPlace(d []byte) []byte {
	wi := 0
	n := len(d)
	for i := 0; i < n; i++ {
		c := d[i]
		// 13 is CR
		if c != 13 {
			d[wi] = c
			wi++
			continue
		}
		// replace CR (mac / win) with LF (unix)
		d[wi] = 10
		wi++
		if i < n-1 && d[i+1] == 10 {
			// this was CRLF, so skip the LF
			i++
		}
	}
	return d[:wi]
}

// TrimPrefix is like strings.TrimPrefix but also returns a bool
// indicating that the string was trimmed
func TrimPrefix(s string, prefix string) (string, bool) {
	s2 := strings.TrimPrefix(s, prefix)
	return s2, len(s) != len(s2)
}

// ParseChars parses a command-line list of single bytes e.g. `,; ` or `\t,\,`.
// Each C escape (see DecodeEscapes) counts as one byte and `\x`
// is x for any other x.
func ParseChars(s string) ([]byte, error) {
	d, err := decodeEscapes(s, false)
	if err != nil {
		return nil, err
	}
	return []byte(d), nil
}

// ParseChar is like ParseChars but s must decode to exactly one byte
func ParseChar(s string) (byte, error) {
	d, err := ParseChars(s)
	if err != nil {
		return 0, err
	}
	if len(d) != 1 {
		return 0, fmt.Errorf("'%s' is not a single character", s)
	}
	return d[0], nil
}
