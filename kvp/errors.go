package kvp

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItemDelimiters is returned by Build when the item delimiter set is empty
	ErrNoItemDelimiters = errors.New("item delimiters must not be empty")

	// ErrDelimiterClash is returned by Build when the key-value delimiter
	// is also an item delimiter, or a quote or escape character is the same
	// as one of the delimiters
	ErrDelimiterClash = errors.New("character clashes with a delimiter")

	// ErrTooManyPairs is returned by Extract when the input has more pairs
	// than Config.MaxPairs
	ErrTooManyPairs = errors.New("too many key/value pairs")

	// ErrNotEncodable is returned by Encode for pairs that can't be written
	// in a way the extractor would read back
	ErrNotEncodable = errors.New("pair cannot be encoded")
)

// ConfigError describes an invalid configuration detected by Build
type ConfigError struct {
	Field string
	Char  byte
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("kvp: %s %q: %s", e.Field, e.Char, e.Err)
	}
	return fmt.Sprintf("kvp: %s: %s", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LimitError is returned when extraction would produce more than Max pairs
type LimitError struct {
	Max uint64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("kvp: %s (max %d)", ErrTooManyPairs, e.Max)
}

func (e *LimitError) Unwrap() error {
	return ErrTooManyPairs
}
