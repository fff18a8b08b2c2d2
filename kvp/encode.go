package kvp

import (
	"fmt"
	"strings"
)

// Encode serializes m, keys sorted, so that extracting the result
// with the same config gives back m.
// Tokens are quoted or escaped only when necessary.
func Encode(m map[string]string, cfg Config) (string, error) {
	return EncodePairs(SortedPairs(m), cfg)
}

// EncodePairs is like Encode but keeps the order of pairs
func EncodePairs(pairs []Pair, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	enc := newEncoder(&cfg)
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte(enc.sep)
		}
		if err := enc.writeKey(&sb, p.Key); err != nil {
			return "", fmt.Errorf("kvp: key %q: %w", p.Key, err)
		}
		sb.WriteByte(cfg.KeyValueDelimiter)
		if err := enc.writeValue(&sb, p.Value); err != nil {
			return "", fmt.Errorf("kvp: value of %q: %w", p.Key, err)
		}
	}
	if len(pairs) > 1 && isKeyByte(enc.sep) {
		return "", fmt.Errorf("kvp: item delimiter %q: %w", enc.sep, ErrNotEncodable)
	}
	return sb.String(), nil
}

type encoder struct {
	cfg *Config
	sep byte
	// a quote that is a key byte would be read as part of an unquoted key
	canQuoteKey bool
	valueBytes  byteSet
}

func newEncoder(cfg *Config) *encoder {
	e := &encoder{
		cfg:         cfg,
		sep:         ' ',
		canQuoteKey: cfg.HasQuote && !isKeyByte(cfg.QuoteChar),
	}
	for _, c := range cfg.ItemDelimiters {
		if c != ' ' {
			e.sep = c
			break
		}
	}
	e.valueBytes = keyBytes
	for _, c := range cfg.ValueAllowList {
		e.valueBytes[c] = true
	}
	for _, c := range cfg.ItemDelimiters {
		e.valueBytes[c] = false
	}
	return e
}

// isSpecial returns true for bytes that are never written unescaped in unquoted tokens
func (e *encoder) isSpecial(c byte) bool {
	cfg := e.cfg
	if c == ' ' || c == cfg.KeyValueDelimiter {
		return true
	}
	if cfg.HasQuote && c == cfg.QuoteChar {
		return true
	}
	return cfg.Escaping && c == cfg.EscapeChar
}

func (e *encoder) isPlain(s string, allowed *byteSet) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !allowed.has(c) || e.isSpecial(c) {
			return false
		}
	}
	return true
}

func (e *encoder) writeKey(sb *strings.Builder, k string) error {
	if k == "" {
		return ErrNotEncodable
	}
	if e.isPlain(k, &keyBytes) {
		sb.WriteString(k)
		return nil
	}
	if e.canQuoteKey {
		return e.writeQuoted(sb, k)
	}
	// escaped, unquoted key must start with a byte that starts a key
	c := k[0]
	if !e.cfg.Escaping || !isKeyByte(c) || e.isSpecial(c) {
		return ErrNotEncodable
	}
	e.writeEscaped(sb, k, &keyBytes)
	return nil
}

func (e *encoder) writeValue(sb *strings.Builder, v string) error {
	if e.isPlain(v, &e.valueBytes) {
		sb.WriteString(v)
		return nil
	}
	if e.cfg.HasQuote {
		return e.writeQuoted(sb, v)
	}
	if v == "" {
		// an empty value must be followed by an item delimiter other than ' '
		if e.sep == ' ' {
			return ErrNotEncodable
		}
		return nil
	}
	if !e.cfg.Escaping {
		return ErrNotEncodable
	}
	e.writeEscaped(sb, v, &e.valueBytes)
	return nil
}

func (e *encoder) writeQuoted(sb *strings.Builder, s string) error {
	cfg := e.cfg
	q := cfg.QuoteChar
	sb.WriteByte(q)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if cfg.Escaping && (c == q || c == cfg.EscapeChar) {
			sb.WriteByte(cfg.EscapeChar)
		} else if c == q {
			return ErrNotEncodable
		}
		sb.WriteByte(c)
	}
	sb.WriteByte(q)
	return nil
}

func (e *encoder) writeEscaped(sb *strings.Builder, s string, allowed *byteSet) {
	esc := e.cfg.EscapeChar
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !allowed.has(c) || e.isSpecial(c) {
			sb.WriteByte(esc)
		}
		sb.WriteByte(c)
	}
}
