package kvp

// value states: WaitingValue -> ReadingValue | ReadingQuotedValue | ReadingEmptyValue -> FlushPair

func (s *scanner[H]) waitValue(pos int) (int, state) {
	in := s.in
	d := s.d
	for pos < len(in) {
		c := in[pos]
		switch {
		case c == ' ':
			pos++
		case d.hasQuote && c == d.quote:
			return pos + 1, stateReadingQuotedValue
		case d.items.has(c):
			return pos, stateReadingEmptyValue
		case d.valueBytes.has(c) || d.h.isEscape(c):
			return pos, stateReadingValue
		default:
			pos++
		}
	}
	return pos, stateReadingEmptyValue
}

// readValue reads an unquoted value. The first byte that is not allowed
// (including item delimiters) ends it and is consumed
func (s *scanner[H]) readValue(pos int) (int, state) {
	in := s.in
	d := s.d
	start := pos
	n := len(in)
	for pos < n {
		c := in[pos]
		pos++
		switch {
		case d.h.isEscape(c):
			if pos < n {
				pos++
			}
		case d.valueBytes.has(c):
			// part of the value
		default:
			s.value = span{start, pos - 1}
			return pos, stateFlushPair
		}
	}
	s.value = span{start, pos}
	return pos, stateFlushPair
}

// readQuotedValue reads until the closing quote. pos is after the opening quote.
// An unterminated value is dropped together with its key
func (s *scanner[H]) readQuotedValue(pos int) (int, state) {
	in := s.in
	d := s.d
	start := pos
	n := len(in)
	for pos < n {
		c := in[pos]
		pos++
		if d.h.isEscape(c) {
			if pos < n {
				pos++
			}
			continue
		}
		if c == d.quote {
			s.value = span{start, pos - 1}
			return pos, stateFlushPair
		}
	}
	return pos, stateEnd
}

// readEmptyValue consumes the item delimiter, if there is one
func (s *scanner[H]) readEmptyValue(pos int) (int, state) {
	s.value = span{pos, pos}
	if pos < len(s.in) {
		pos++
	}
	return pos, stateFlushPair
}
