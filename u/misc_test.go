package u

import (
	"testing"
	"time"

	"github.com/kjk/kvpairs/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n   int64
		exp string
	}{
		{0, "0 bytes"},
		{1023, "1023 bytes"},
		{1024, "1 kB"},
		{1536, "1.50 kB"},
		{1024 * 1024 * 3, "3 MB"},
	}
	for _, test := range tests {
		assert.Equal(t, test.exp, FormatSize(test.n))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2s", FormatDuration(2*time.Second))
	assert.Equal(t, "1.5 ms", FormatDuration(1500*time.Microsecond))
	assert.Equal(t, "1.23 ms", FormatDuration(1234567*time.Nanosecond))
	assert.Equal(t, "12 µs", FormatDuration(12345*time.Nanosecond))
}
