package kvp

// key states: WaitingKey -> ReadingKey | ReadingQuotedKey -> ReadingKVDelimiter -> WaitingValue

// waitKey skips bytes until one that can start a key
func (s *scanner[H]) waitKey(pos int) (int, state) {
	in := s.in
	d := s.d
	for pos < len(in) {
		c := in[pos]
		if isKeyByte(c) {
			return pos, stateReadingKey
		}
		if d.hasQuote && c == d.quote {
			return pos + 1, stateReadingQuotedKey
		}
		pos++
	}
	return pos, stateEnd
}

// readKey reads an unquoted key up to the key-value delimiter.
// Any other byte that is not allowed in a key abandons the key
func (s *scanner[H]) readKey(pos int) (int, state) {
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
		case c == d.kvDelim:
			s.key = span{start, pos - 1}
			return pos, stateWaitingValue
		case isKeyByte(c):
			// part of the key
		default:
			return pos, stateWaitingKey
		}
	}
	return pos, stateEnd
}

// readQuotedKey reads until the closing quote. pos is after the opening quote
func (s *scanner[H]) readQuotedKey(pos int) (int, state) {
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
		if c != d.quote {
			continue
		}
		end := pos - 1
		if end == start {
			// empty keys are not allowed
			return pos, stateWaitingKey
		}
		s.key = span{start, end}
		return pos, stateReadingKVDelimiter
	}
	return pos, stateEnd
}

// readKVDelimiter expects the key-value delimiter right after a quoted key
func (s *scanner[H]) readKVDelimiter(pos int) (int, state) {
	if pos >= len(s.in) {
		return pos, stateEnd
	}
	c := s.in[pos]
	if c == s.d.kvDelim {
		return pos + 1, stateWaitingValue
	}
	return pos + 1, stateWaitingKey
}
