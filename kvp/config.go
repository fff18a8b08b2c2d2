package kvp

import (
	"bytes"
	"slices"
)

// DefaultMaxPairs is the default limit on the number of pairs in one input
const DefaultMaxPairs uint64 = 1 << 20

// Config describes how the input is tokenized.
// Use NewBuilder or New to get an Extractor for it.
type Config struct {
	// separates key from value, ':' by default
	KeyValueDelimiter byte
	// any of those ends a value (and therefore a pair).
	// ',' and ' ' by default. Must not be empty
	ItemDelimiters []byte
	// if HasQuote, keys and values can be enclosed in QuoteChar
	// and then may contain delimiters
	QuoteChar byte
	HasQuote  bool
	// if Escaping, EscapeChar makes the following byte part of the token
	// regardless of what it is. The escape char is removed from the result
	Escaping   bool
	EscapeChar byte
	// bytes, other than letters, digits and '_', allowed in unquoted values
	ValueAllowList []byte
	// extraction fails if there are more than MaxPairs pairs
	MaxPairs uint64
}

// DefaultConfig returns the config used by NewBuilder
func DefaultConfig() Config {
	return Config{
		KeyValueDelimiter: ':',
		ItemDelimiters:    []byte{',', ' '},
		EscapeChar:        '\\',
		MaxPairs:          DefaultMaxPairs,
	}
}

func (c *Config) clone() Config {
	res := *c
	res.ItemDelimiters = slices.Clone(c.ItemDelimiters)
	res.ValueAllowList = slices.Clone(c.ValueAllowList)
	return res
}

func (c *Config) isDelimiter(ch byte) bool {
	return ch == c.KeyValueDelimiter || bytes.IndexByte(c.ItemDelimiters, ch) >= 0
}

// Validate checks that the config is not ambiguous
func (c *Config) Validate() error {
	if len(c.ItemDelimiters) == 0 {
		return &ConfigError{Field: "item delimiters", Err: ErrNoItemDelimiters}
	}
	if bytes.IndexByte(c.ItemDelimiters, c.KeyValueDelimiter) >= 0 {
		return &ConfigError{Field: "key-value delimiter", Char: c.KeyValueDelimiter, Err: ErrDelimiterClash}
	}
	if c.HasQuote && c.isDelimiter(c.QuoteChar) {
		return &ConfigError{Field: "quote character", Char: c.QuoteChar, Err: ErrDelimiterClash}
	}
	if c.Escaping {
		if c.isDelimiter(c.EscapeChar) || (c.HasQuote && c.EscapeChar == c.QuoteChar) {
			return &ConfigError{Field: "escape character", Char: c.EscapeChar, Err: ErrDelimiterClash}
		}
	}
	return nil
}

// Builder collects configuration for an Extractor.
// Errors are reported by Build.
type Builder struct {
	cfg Config
}

// NewBuilder returns a builder initialized with DefaultConfig
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

func (b *Builder) WithKeyValueDelimiter(c byte) *Builder {
	b.cfg.KeyValueDelimiter = c
	return b
}

// WithItemDelimiters replaces the set of item delimiters
func (b *Builder) WithItemDelimiters(cs ...byte) *Builder {
	b.cfg.ItemDelimiters = slices.Clone(cs)
	return b
}

func (b *Builder) WithQuotingCharacter(c byte) *Builder {
	b.cfg.QuoteChar = c
	b.cfg.HasQuote = true
	return b
}

// WithEscaping enables escaping with the current escape character ('\' by default)
func (b *Builder) WithEscaping() *Builder {
	b.cfg.Escaping = true
	return b
}

// WithEscapeCharacter sets the escape character and enables escaping
func (b *Builder) WithEscapeCharacter(c byte) *Builder {
	b.cfg.EscapeChar = c
	b.cfg.Escaping = true
	return b
}

func (b *Builder) WithMaxNumberOfPairs(n uint64) *Builder {
	b.cfg.MaxPairs = n
	return b
}

// WithValueSpecialCharacterAllowList sets bytes (e.g. '.' for decimals)
// allowed in unquoted values in addition to letters, digits and '_'
func (b *Builder) WithValueSpecialCharacterAllowList(cs ...byte) *Builder {
	b.cfg.ValueAllowList = slices.Clone(cs)
	return b
}

// Build validates the configuration and returns an Extractor.
// The builder can be re-used, the Extractor doesn't share state with it
func (b *Builder) Build() (*Extractor, error) {
	return New(b.cfg)
}
