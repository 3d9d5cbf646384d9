package sizex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1234, "1.21 KB"},
		{50 * 1024 * 1024, "50 MB"},
		{15 * 1024 * 1024 * 1024, "15 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3 TB"},
		{2048 * 1024 * 1024 * 1024 * 1024, "2048 TB"},
		{-1536, "-1.5 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	n, err := Parse("50MiB")
	require.NoError(t, err)
	assert.Equal(t, int64(50*1024*1024), n)

	n, err = Parse(" 15GB ")
	require.NoError(t, err)
	assert.Equal(t, int64(15*1024*1024*1024), n)

	n, err = Parse("4096")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), n)

	_, err = Parse("lots")
	require.Error(t, err)
}
