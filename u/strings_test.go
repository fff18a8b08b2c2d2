package u

import (
	"testing"

	"github.com/kjk/kvpairs/assert"
)

func TestTrimPrefix(t *testing.T) {
	tests := []string{
		"foo", "f", "oo",
		"foo", "o", "foo",
		"s3://bucket/key", "s3://", "bucket/key",
	}

	n := len(tests)
	for i := 0; i < n; i += 3 {
		got, trimmed := TrimPrefix(tests[i], tests[i+1])
		exp := tests[i+2]
		assert.Equal(t, exp, got)
		assert.Equal(t, trimmed, tests[i] != got, "%#v, %#v", tests[i], tests[i+1])
	}
}

func TestNormalizeNewlines(t *testing.T) {
	d := []byte("a\r\nb\rc\nd")
	assert.Equal(t, "a\nb\nc\nd", string(NormalizeNewlinesInPlace(d)))
}

func TestParseChars(t *testing.T) {
	got, err := ParseChars(`,; `)
	assert.NoError(t, err)
	assert.Equal(t, []byte{',', ';', ' '}, got)

	got, err = ParseChars(`\t\,\\`)
	assert.NoError(t, err)
	assert.Equal(t, []byte{'\t', ',', '\\'}, got)

	c, err := ParseChar(`\x3d`)
	assert.NoError(t, err)
	assert.Equal(t, byte('='), c)

	_, err = ParseChar("ab")
	assert.Error(t, err)
	_, err = ParseChar("")
	assert.Error(t, err)
}
