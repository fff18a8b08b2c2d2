package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kjk/kvpairs/assert"
)

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file '%s' exists, expected to not exist", path)
}

func TestSimulateError(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.json")
	f, err := New(dst)
	assert.NoError(t, err)
	_, err = os.Stat(f.tmpPath)
	assert.NoError(t, err)
	_, err = f.Write([]byte("foo"))
	assert.NoError(t, err)

	errSimulated := errors.New("simulated")
	f.err = errSimulated
	assert.Equal(t, errSimulated, f.Close())
	assertFileNotExists(t, f.tmpPath)
	assertFileNotExists(t, dst)
	// on second Close() should get the same error
	assert.Equal(t, errSimulated, f.Close())
}

func TestCancel(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.json")
	f, err := New(dst)
	assert.NoError(t, err)
	_, err = f.Write([]byte("foo"))
	assert.NoError(t, err)
	f.Cancel()
	assertFileNotExists(t, f.tmpPath)
	assertFileNotExists(t, dst)
	assert.Equal(t, ErrCancelled, f.Close())

	_, err = f.Write([]byte("bar"))
	assert.Equal(t, ErrCancelled, err)
}

func TestWrite(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.json")
	// existing file is over-written
	err := os.WriteFile(dst, []byte("old content"), 0644)
	assert.NoError(t, err)

	f, err := New(dst)
	assert.NoError(t, err)
	n, err := f.Write([]byte("new"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, f.Close())
	// Close() after Close() is fine
	assert.NoError(t, f.Close())
	// Cancel() after Close() is a no-op
	f.Cancel()

	d, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Equal(t, "new", string(d))
	assertFileNotExists(t, f.tmpPath)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.txt")
	err := WriteFile(dst, func(w io.Writer) error {
		_, err := io.WriteString(w, "a: 1\n")
		return err
	})
	assert.NoError(t, err)
	d, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(d))

	errFailed := errors.New("extraction failed")
	dst2 := filepath.Join(dir, "out2.txt")
	err = WriteFile(dst2, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errFailed
	})
	assert.Equal(t, errFailed, err)
	assertFileNotExists(t, dst2)

	// only out.txt remains, no temp files
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewInvalidPath(t *testing.T) {
	_, err := New(t.TempDir() + string(filepath.Separator))
	assert.Error(t, err)
}
