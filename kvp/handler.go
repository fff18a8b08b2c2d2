package kvp

import (
	"strings"
)

// stateHandler is the escaping policy of the scanner.
// The driver is instantiated once per policy so that the checks
// in the inner loops are not dynamic calls through an interface value.
type stateHandler interface {
	// isEscape returns true if c makes the next byte literal
	isEscape(c byte) bool
	// unescape returns an owned copy of s with escape characters removed
	unescape(s string) string
	// canMerge returns true if distinct raw keys can unescape to the same key
	canMerge() bool
}

type noEscaping struct{}

func (noEscaping) isEscape(byte) bool {
	return false
}

func (noEscaping) unescape(s string) string {
	return strings.Clone(s)
}

func (noEscaping) canMerge() bool {
	return false
}

type inlineEscaping struct {
	esc byte
}

func (h inlineEscaping) isEscape(c byte) bool {
	return c == h.esc
}

// unescape drops each escape char and keeps the byte after it as is.
// A trailing escape char is dropped
func (h inlineEscaping) unescape(s string) string {
	idx := strings.IndexByte(s, h.esc)
	if idx < 0 {
		return strings.Clone(s)
	}
	var sb strings.Builder
	sb.Grow(len(s) - 1)
	sb.WriteString(s[:idx])
	n := len(s)
	for i := idx; i < n; i++ {
		c := s[i]
		if c == h.esc {
			i++
			if i == n {
				break
			}
			c = s[i]
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func (inlineEscaping) canMerge() bool {
	return true
}
