package kvp

import (
	"maps"
	"slices"
	"strings"
)

// Pair is a single extracted key-value pair
type Pair struct {
	Key   string
	Value string
}

// Extractor extracts key-value pairs according to its Config.
// It is immutable and safe for concurrent use.
type Extractor struct {
	cfg     Config
	extract func(in string) (map[string]string, error)
}

// New validates cfg and returns an Extractor for it.
// cfg is copied.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := cfg.clone()
	e := &Extractor{cfg: c}
	if c.Escaping {
		e.extract = newDriver(&c, inlineEscaping{esc: c.EscapeChar}).extract
	} else {
		e.extract = newDriver(&c, noEscaping{}).extract
	}
	return e, nil
}

// Config returns a copy of the configuration
func (e *Extractor) Config() Config {
	return e.cfg.clone()
}

// Extract returns pairs found in d. If a key repeats, the last value wins.
// The only error is *LimitError, in which case the map is nil.
func (e *Extractor) Extract(d []byte) (map[string]string, error) {
	return e.extract(string(d))
}

func (e *Extractor) ExtractString(s string) (map[string]string, error) {
	return e.extract(s)
}

// ExtractPairs is like ExtractString but returns pairs sorted by key
func (e *Extractor) ExtractPairs(s string) ([]Pair, error) {
	m, err := e.extract(s)
	if err != nil {
		return nil, err
	}
	return SortedPairs(m), nil
}

// ExtractLines calls fn for each line of s (1-based line number).
// "\r\n" line endings are accepted.
// Extraction stops at the first error from the extractor or from fn.
func (e *Extractor) ExtractLines(s string, fn func(line int, m map[string]string) error) error {
	line := 0
	for len(s) > 0 {
		line++
		var ln string
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			ln, s = s, ""
		} else {
			ln, s = s[:idx], s[idx+1:]
		}
		ln = strings.TrimSuffix(ln, "\r")
		m, err := e.extract(ln)
		if err != nil {
			return err
		}
		if err = fn(line, m); err != nil {
			return err
		}
	}
	return nil
}

// SortedPairs returns pairs from m sorted by key
func SortedPairs(m map[string]string) []Pair {
	keys := slices.Sorted(maps.Keys(m))
	res := make([]Pair, len(keys))
	for i, k := range keys {
		res[i] = Pair{Key: k, Value: m[k]}
	}
	return res
}

// driver has the per-Extractor tables, scanner has per-call state
type driver[H stateHandler] struct {
	h        H
	kvDelim  byte
	quote    byte
	hasQuote bool
	items    byteSet
	// bytes allowed in unquoted values, never includes item delimiters
	valueBytes byteSet
	maxPairs   uint64
}

func newDriver[H stateHandler](c *Config, h H) *driver[H] {
	d := &driver[H]{
		h:        h,
		kvDelim:  c.KeyValueDelimiter,
		quote:    c.QuoteChar,
		hasQuote: c.HasQuote,
		items:    newByteSet(c.ItemDelimiters...),
		maxPairs: c.MaxPairs,
	}
	d.valueBytes = keyBytes
	for _, ch := range c.ValueAllowList {
		d.valueBytes[ch] = true
	}
	for _, ch := range c.ItemDelimiters {
		d.valueBytes[ch] = false
	}
	return d
}

type scanner[H stateHandler] struct {
	d     *driver[H]
	in    string
	key   span
	value span
}

func (d *driver[H]) extract(in string) (map[string]string, error) {
	s := &scanner[H]{d: d, in: in}
	pending := map[string]pendingValue{}
	var nFlushed uint64
	pos := 0
	st := stateWaitingKey
	for st != stateEnd {
		switch st {
		case stateWaitingKey:
			pos, st = s.waitKey(pos)
		case stateReadingKey:
			pos, st = s.readKey(pos)
		case stateReadingQuotedKey:
			pos, st = s.readQuotedKey(pos)
		case stateReadingKVDelimiter:
			pos, st = s.readKVDelimiter(pos)
		case stateWaitingValue:
			pos, st = s.waitValue(pos)
		case stateReadingValue:
			pos, st = s.readValue(pos)
		case stateReadingQuotedValue:
			pos, st = s.readQuotedValue(pos)
		case stateReadingEmptyValue:
			pos, st = s.readEmptyValue(pos)
		case stateFlushPair:
			nFlushed++
			if nFlushed > d.maxPairs {
				return nil, &LimitError{Max: d.maxPairs}
			}
			pending[s.key.of(in)] = pendingValue{value: s.value, seq: nFlushed}
			if pos >= len(in) {
				st = stateEnd
			} else {
				st = stateWaitingKey
			}
		default:
			panic("kvp: invalid state " + st.String())
		}
	}
	return materialize(d.h, in, pending), nil
}
