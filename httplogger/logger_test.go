package httplogger

import (
	"bufio"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kjk/kvpairs/assert"
	"github.com/kjk/kvpairs/require"
	"github.com/kjk/kvpairs/siser"
	"github.com/kjk/kvpairs/u"
)

func TestRequestRemoteAddress(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "[::1]:58292"
	assert.Equal(t, "[::1]", RequestRemoteAddress(r))
	r.Header.Set("X-Real-Ip", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", RequestRemoteAddress(r))
	r.Header.Set("X-Forwarded-For", " 1.2.3.4 , 10.0.0.1")
	assert.Equal(t, "1.2.3.4", RequestRemoteAddress(r))
}

func TestLogReqAndRotate(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	var rotated []string
	l, err := New(dir, &Options{
		CompressRotated: true,
		DidRotate:       func(path string) { rotated = append(rotated, path) },
		Now:             func() time.Time { return now },
	})
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/api/v1/extract?format=json", nil)
	r.Header.Set("User-Agent", "test")
	r.Header.Set("Cookie", "secret")
	err = l.LogReq(r, 200, 42, time.Millisecond, "pairs", 3)
	require.NoError(t, err)

	// next hour, the previous file gets compressed
	now = now.Add(time.Hour)
	err = l.LogReq(r, 413, 0, time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	first := filepath.Join(dir, "httplog-2024-01-15_10.txt")
	assert.Equal(t, []string{first + ".br"}, rotated)
	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err))

	f, err := u.OpenFileMaybeCompressed(first + ".br")
	require.NoError(t, err)
	defer f.Close()
	sr := siser.NewReader(bufio.NewReader(f))
	require.True(t, sr.ReadNextRecord())
	rec := sr.Record
	assert.Equal(t, "httplog", rec.Name)
	v, _ := rec.Get("req")
	assert.Equal(t, "POST /api/v1/extract?format=json 200", v)
	v, _ = rec.Get("pairs")
	assert.Equal(t, "3", v)
	v, _ = rec.Get("size")
	assert.Equal(t, "42", v)
	v, _ = rec.Get("User-Agent")
	assert.Equal(t, "test", v)
	_, ok := rec.Get("Cookie")
	assert.False(t, ok)
	assert.False(t, sr.ReadNextRecord())
	assert.NoError(t, sr.Err())
}
