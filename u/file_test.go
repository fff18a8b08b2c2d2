package u

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kjk/kvpairs/assert"
	"github.com/kjk/kvpairs/require"
)

type failingCloser struct {
	closed bool
}

func (c *failingCloser) Close() error {
	c.closed = true
	return errors.New("close failed")
}

func TestCloseNoError(t *testing.T) {
	c := &failingCloser{}
	CloseNoError(c)
	assert.True(t, c.closed)

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a:1"), 0644))
	f, err := os.Open(path)
	require.NoError(t, err)
	CloseNoError(f)
	// already closed
	assert.Error(t, f.Close())
	assert.Equal(t, int64(3), FileSize(path))
}
