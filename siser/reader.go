package siser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Reader is for reading (deserializing) records from a bufio.Reader
type Reader struct {
	r *bufio.Reader

	// the data was written without a timestamp (see Writer.NoTimestamp)
	// and everything after size is the name. Without it the timestamp
	// is read if the first field after size is a number
	NoTimestamp bool

	// Record is available after ReadNextRecord().
	// It's over-written in next ReadNextRecord().
	Record *Record

	// Data / Name / Timestamp are available after ReadNextData.
	// They are over-written in next ReadNextData.
	Data      []byte
	Name      string
	Timestamp time.Time

	err  error
	done bool
}

// NewReader creates a new reader
func NewReader(r *bufio.Reader) *Reader {
	return &Reader{
		r:      r,
		Record: &Record{},
	}
}

// Done returns true if we're finished reading from the reader
func (r *Reader) Done() bool {
	return r.err != nil || r.done
}

func (r *Reader) badHeader(hdr []byte) bool {
	r.err = fmt.Errorf("unexpected header '%s'", string(hdr))
	return false
}

// ReadNextData reads next block from the reader, returns false
// when no more record. If returns false, check Err() to see
// if there were errors.
func (r *Reader) ReadNextData() bool {
	if r.Done() {
		return false
	}
	r.Name = ""
	r.Timestamp = time.Time{}

	hdr, err := r.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(hdr) == 0 {
			r.done = true
		} else if err == io.EOF {
			r.err = io.ErrUnexpectedEOF
		} else {
			r.err = err
		}
		return false
	}
	rest := bytes.TrimPrefix(hdr[:len(hdr)-1], hdrPrefix)

	// size is always first, then optional timestamp and name
	dataSize, rest, _ := bytes.Cut(rest, []byte{' '})
	size, err := strconv.ParseInt(string(dataSize), 10, 64)
	if err != nil || size < 0 {
		return r.badHeader(hdr)
	}
	if !r.NoTimestamp && len(rest) == 0 {
		return r.badHeader(hdr)
	}
	// timestamp is optional: if the first field is not a number,
	// everything after size is the name
	name := rest
	if !r.NoTimestamp {
		ts, nm, _ := bytes.Cut(rest, []byte{' '})
		if timeMs, err := strconv.ParseInt(string(ts), 10, 64); err == nil {
			r.Timestamp = TimeFromUnixMillisecond(timeMs)
			name = nm
		}
	}
	r.Name = string(name)

	// we try to re-use r.Data as long as it doesn't grow too much
	if cap(r.Data) > 1024*1024 {
		r.Data = nil
	}
	if size > int64(cap(r.Data)) {
		r.Data = make([]byte, size)
	} else {
		r.Data = r.Data[:size]
	}
	if _, err = io.ReadFull(r.r, r.Data); err != nil {
		r.err = err
		return false
	}
	// skip newline added for readability (see MarshalLine)
	n := len(r.Data)
	if n > 0 && r.Data[n-1] != '\n' {
		if _, err = r.r.Discard(1); err != nil {
			r.err = err
			return false
		}
	}
	return true
}

// ReadNextRecord reads a key / value record.
// Returns false if there are no more record.
// Check Err() for errors.
// After reading information is in Record (valid until
// next read).
func (r *Reader) ReadNextRecord() bool {
	if !r.ReadNextData() {
		return false
	}
	if r.err = r.Record.Unmarshal(r.Data); r.err != nil {
		return false
	}
	r.Record.Name = r.Name
	r.Record.Timestamp = r.Timestamp
	return true
}

// Err returns error from last Read. We swallow io.EOF to make it easier
// to use
func (r *Reader) Err() error {
	return r.err
}
