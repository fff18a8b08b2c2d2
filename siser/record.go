package siser

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

/*
Serialize/Deserialize array of key/value pairs in a format that is easy
to serialize/parse and human-readable.

The basic format is line-oriented: "key: value\n"

When value is long (> 120 chars), empty or has non-printable
characters (e.g. \n) in it, we serialize it as:
key:+$len\n
value\n

Keys can't contain ':' or '\n'.
*/

var ErrInvalidKey = errors.New("siser: key can't contain ':' or '\\n'")

type Entry struct {
	Key   string
	Value string
}

// Record represents list of key/value pairs that can
// be serialized/deserialized
type Record struct {
	Name string
	// when writing, if not provided we use current time
	Timestamp time.Time
	Entries   []Entry
}

// perf: re-use buf
func toStr(v any, buf *[]byte) string {
	if s, ok := v.(string); ok {
		return s
	}
	*buf = (*buf)[:0]
	if i, ok := v.(int); ok {
		*buf = strconv.AppendInt(*buf, int64(i), 10)
		return string(*buf)
	}
	*buf = fmt.Appendf(*buf, "%v", v)
	return string(*buf)
}

func validKey(k string) bool {
	return !strings.ContainsAny(k, ":\n")
}

// Append adds a key/value pair
func (r *Record) Append(key, val string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	r.Entries = append(r.Entries, Entry{Key: key, Value: val})
	return nil
}

// Write adds key/value pairs, converting non-string values with %v
func (r *Record) Write(args ...any) error {
	n := len(args)
	if n == 0 || n%2 != 0 {
		return fmt.Errorf("invalid number of args: %d. Should be multiple of 2", len(args))
	}
	var buf []byte
	for i := 0; i < n; i += 2 {
		k := toStr(args[i], &buf)
		v := toStr(args[i+1], &buf)
		if err := r.Append(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Reset to re-use the record
func (r *Record) Reset() {
	r.Name = ""
	r.Timestamp = time.Time{}
	r.Entries = r.Entries[:0]
}

// Get returns a value for a given key
func (r *Record) Get(key string) (string, bool) {
	for _, e := range r.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Map returns entries as a map. For duplicate keys the last value wins
func (r *Record) Map() map[string]string {
	m := make(map[string]string, len(r.Entries))
	for _, e := range r.Entries {
		m[e.Key] = e.Value
	}
	return m
}

func serializableOnLine(s string) bool {
	n := len(s)
	for i := 0; i < n; i++ {
		b := s[i]
		if b < 32 || b > 127 {
			return false
		}
	}
	return true
}

// return true if value needs to be serialized in long,
// size-prefixed format
func needsLongFormat(s string) bool {
	return len(s) == 0 || len(s) > 120 || !serializableOnLine(s)
}

func appendKeyVal(buf *bytes.Buffer, key, val string) {
	buf.WriteString(key)
	if !needsLongFormat(val) {
		buf.WriteString(": ")
		buf.WriteString(val)
		buf.WriteByte('\n')
		return
	}
	buf.WriteString(":+")
	buf.WriteString(strconv.Itoa(len(val)))
	buf.WriteByte('\n')
	buf.WriteString(val)
	// for readability: ensure a newline at the end so
	// that header record always appears on new line.
	// Empty value needs none, "key:+0\n" already ends the line
	n := len(val)
	if n > 0 && val[n-1] != '\n' {
		buf.WriteByte('\n')
	}
}

// Marshal serializes entries (without Name and Timestamp,
// which are written by Writer)
func (r *Record) Marshal() []byte {
	var buf bytes.Buffer
	for _, e := range r.Entries {
		appendKeyVal(&buf, e.Key, e.Value)
	}
	return buf.Bytes()
}

// Unmarshal decodes data as created by Marshal into r.Entries.
// Name and Timestamp are not changed.
func (r *Record) Unmarshal(d []byte) error {
	r.Entries = r.Entries[:0]
	for len(d) > 0 {
		idx := bytes.IndexByte(d, '\n')
		if idx == -1 {
			return fmt.Errorf("missing '\n' marking end of header in '%s'", string(d))
		}
		line := d[:idx]
		d = d[idx+1:]
		idx = bytes.IndexByte(line, ':')
		if idx == -1 {
			return fmt.Errorf("line in unrecognized format: '%s'", line)
		}
		key := string(line[:idx])
		val := line[idx+1:]
		// at this point val must be at least one character (' ' or '+')
		if len(val) < 1 {
			return fmt.Errorf("line in unrecognized format: '%s'", line)
		}
		kind := val[0]
		val = val[1:]
		if kind == ' ' {
			r.Entries = append(r.Entries, Entry{key, string(val)})
			continue
		}
		if kind != '+' {
			return fmt.Errorf("line in unrecognized format: '%s'", line)
		}
		n, err := strconv.Atoi(string(val))
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("negative length %d of data", n)
		}
		if n > len(d) {
			return fmt.Errorf("length of value %d greater than remaining data of size %d", n, len(d))
		}
		r.Entries = append(r.Entries, Entry{key, string(d[:n])})
		d = d[n:]
		// encoder might put optional newline
		if len(d) > 0 && d[0] == '\n' {
			d = d[1:]
		}
	}
	return nil
}

// TimeToUnixMillisecond converts t into Unix epoch time in milliseconds.
// That's because seconds is not enough precision and nanoseconds is too much.
func TimeToUnixMillisecond(t time.Time) int64 {
	return t.UnixMilli()
}

// TimeFromUnixMillisecond returns time from Unix epoch time in milliseconds.
func TimeFromUnixMillisecond(unixMs int64) time.Time {
	return time.UnixMilli(unixMs)
}
