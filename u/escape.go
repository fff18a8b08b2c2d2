package u

import (
	"errors"
	"strings"
)

var ErrBadEscape = errors.New("invalid escape sequence")

func unhexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func escapeSequenceChar(c byte) byte {
	switch c {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'e':
		return 0x1b
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	case '0':
		return 0
	}
	return c
}

// bytes that are not preceded by '\' after decoding e.g. `\"` => `"`
func isPlainEscape(c byte) bool {
	switch c {
	case '\\', '\'', '"', '`', '/', '=':
		return true
	}
	return c <= 31
}

// DecodeEscapes decodes C-style escape sequences in s:
// \a \b \e \f \n \r \t \v \0, \xHH and \N (which is removed).
// For other sequences, like `\%`, the backslash is kept
// except for \\ \' \" \` \/ \= which decode to the second byte.
func DecodeEscapes(s string) (string, error) {
	return decodeEscapes(s, true)
}

func decodeEscapes(s string, keepBackslash bool) (string, error) {
	idx := strings.IndexByte(s, '\\')
	if idx < 0 {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	sb.WriteString(s[:idx])
	n := len(s)
	for i := idx; i < n; i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= n {
			return "", ErrBadEscape
		}
		c = s[i]
		switch c {
		case 'x':
			if i+2 >= n {
				return "", ErrBadEscape
			}
			hi, ok1 := unhexDigit(s[i+1])
			lo, ok2 := unhexDigit(s[i+2])
			if !ok1 || !ok2 {
				return "", ErrBadEscape
			}
			sb.WriteByte(hi<<4 | lo)
			i += 2
		case 'N':
			// NULL is an empty string
		default:
			decoded := escapeSequenceChar(c)
			if keepBackslash && !isPlainEscape(decoded) {
				sb.WriteByte('\\')
			}
			sb.WriteByte(decoded)
		}
	}
	return sb.String(), nil
}
