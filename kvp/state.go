package kvp

type state int

const (
	stateWaitingKey state = iota
	stateReadingKey
	stateReadingQuotedKey
	stateReadingKVDelimiter
	stateWaitingValue
	stateReadingValue
	stateReadingQuotedValue
	stateReadingEmptyValue
	stateFlushPair
	stateEnd
)

var stateNames = [...]string{
	stateWaitingKey:         "WaitingKey",
	stateReadingKey:         "ReadingKey",
	stateReadingQuotedKey:   "ReadingQuotedKey",
	stateReadingKVDelimiter: "ReadingKVDelimiter",
	stateWaitingValue:       "WaitingValue",
	stateReadingValue:       "ReadingValue",
	stateReadingQuotedValue: "ReadingQuotedValue",
	stateReadingEmptyValue:  "ReadingEmptyValue",
	stateFlushPair:          "FlushPair",
	stateEnd:                "End",
}

func (s state) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// span is [start, end) in the input
type span struct {
	start int
	end   int
}

func (s span) of(in string) string {
	return in[s.start:s.end]
}

// byteSet is a lookup table for bytes
type byteSet [256]bool

func newByteSet(cs ...byte) byteSet {
	var s byteSet
	for _, c := range cs {
		s[c] = true
	}
	return s
}

func (s *byteSet) has(c byte) bool {
	return s[c]
}

// keyBytes are bytes allowed in unquoted keys and values: ASCII letters, digits and '_'
var keyBytes = func() byteSet {
	var s byteSet
	for c := 'a'; c <= 'z'; c++ {
		s[c] = true
		s[c-'a'+'A'] = true
	}
	for c := '0'; c <= '9'; c++ {
		s[c] = true
	}
	s['_'] = true
	return s
}()

func isKeyByte(c byte) bool {
	return keyBytes[c]
}
