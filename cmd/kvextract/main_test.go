package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kjk/kvpairs/assert"
	"github.com/kjk/kvpairs/require"
	"github.com/kjk/kvpairs/u"
)

func runArgs(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestInline(t *testing.T) {
	code, out, _ := runArgs(t, "", "-i", "name:neymar, age:31 team:psg")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "age:31\nname:neymar\nteam:psg\n", out)

	code, out, _ = runArgs(t, "", "-input", "")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "", out)
}

func TestStdinAndFormat(t *testing.T) {
	code, out, _ := runArgs(t, "b:2,a:1", "-format", "json")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, `{"a":"1","b":"2"}`+"\n", out)

	code, out, _ = runArgs(t, "b:2,a:1", "-format", "json", "-pretty")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "{\n  \"a\": \"1\",\n  \"b\": \"2\"\n}\n", out)
}

func TestConfigFlags(t *testing.T) {
	code, out, _ := runArgs(t, "", "-kv", "=", "-items", ";", "-quote", `"`, "-i", `k="v;1";x=2`)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "k:v;1\nx:2\n", out)

	code, out, _ = runArgs(t, "", "-escape", "-i", `a:x\ y b:1`)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "a:x y\nb:1\n", out)

	code, out, _ = runArgs(t, "", "-allow", ".-", "-i", "ip:10.0.0.1 date:2024-01-15")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "date:2024-01-15\nip:10.0.0.1\n", out)

	code, out, _ = runArgs(t, "", "-items", `\t`, "-i", "a:1\tb:2")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "a:1\nb:2\n", out)
}

func TestDecodeEscapes(t *testing.T) {
	code, out, _ := runArgs(t, "", "-escape", "-quote", `"`, "-format", "json", "-i", `a:"x\\ty"`)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, `{"a":"x\\ty"}`+"\n", out)

	code, out, _ = runArgs(t, "", "-escape", "-quote", `"`, "-decode-escapes", "-format", "json", "-i", `a:"x\\ty"`)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, `{"a":"x\ty"}`+"\n", out)
}

func TestLinesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.log.gz")
	d, err := u.CompressData([]byte("a:1 b:2\r\nc:3\r\n"), u.CompressionGzip)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, d, 0644))

	code, out, _ := runArgs(t, "", "-f", path, "-lines", "-format", "json")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "{\"a\":\"1\",\"b\":\"2\"}\n{\"c\":\"3\"}\n", out)

	// positional argument is the same as -f
	code, out, _ = runArgs(t, "", path)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "a:1\nb:2\nc:3\n", out)
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json.br")
	code, out, _ := runArgs(t, "", "-i", "a:1 b:2", "-format", "json", "-o", path)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "", out)

	r, err := u.OpenFileMaybeCompressed(path)
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.NewDecoder(r).Decode(&m))
	r.Close()
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, m)

	// failed extraction doesn't leave a file
	path = filepath.Join(dir, "fail.txt")
	code, _, _ = runArgs(t, "", "-i", "a:1 b:2", "-max-pairs", "1", "-o", path)
	assert.Equal(t, exitExtraction, code)
	assert.Equal(t, int64(-1), u.FileSize(path))
}

func TestMaxPairsZero(t *testing.T) {
	code, _, errOut := runArgs(t, "", "-max-pairs", "0", "-i", "a:1")
	assert.Equal(t, exitExtraction, code)
	assert.True(t, strings.Contains(errOut, "too many"), errOut)

	code, out, _ := runArgs(t, "", "-max-pairs", "0", "-i", "")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "", out)

	// not given means the default limit
	code, out, _ = runArgs(t, "", "-i", "a:1")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "a:1\n", out)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(strings.NewReader("")))
	assert.False(t, isTerminal(&bytes.Buffer{}))
	assert.False(t, isTerminal(nil))
}

func TestExitCodes(t *testing.T) {
	code, _, errOut := runArgs(t, "", "-i", "a:1 b:2 c:3", "-max-pairs", "2")
	assert.Equal(t, exitExtraction, code)
	assert.True(t, strings.Contains(errOut, "too many"), errOut)

	tests := [][]string{
		{"-kv", "ab", "-i", "a:1"},
		{"-kv", ",", "-i", "a:1"},
		{"-items", "", "-kv", " ", "-i", "a:1"},
		{"-quote", ":", "-i", "a:1"},
		{"-format", "xml", "-i", "a:1"},
		{"-no-such-flag"},
		{"-i", "a:1", "-f", "in.txt"},
		{"-f", filepath.Join(t.TempDir(), "missing.txt")},
		{"a.txt", "b.txt"},
		{"-max-input", "3", "-f", "-"},
	}
	for _, args := range tests {
		code, _, _ = runArgs(t, "a:1 b:2", args...)
		assert.Equal(t, exitUsage, code, "args: %v", args)
	}

	code, _, _ = runArgs(t, "", "-h")
	assert.Equal(t, exitOK, code)
}

func TestLogDir(t *testing.T) {
	dir := t.TempDir()
	code, _, _ := runArgs(t, "", "-i", "a:1", "-log-dir", dir)
	assert.Equal(t, exitOK, code)
	files, err := filepath.Glob(filepath.Join(dir, "events", "*.txt"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	d, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(d), " extract\n"), string(d))
}
