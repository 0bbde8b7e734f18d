package std

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepthHistogram(t *testing.T) {
	tt, err := NewTransTable(128)
	require.NoError(t, err)

	for _, seq := range []string{"", "3", "33", "32", "333", "322"} {
		board, err := EncodeMoves(seq)
		require.NoError(t, err)
		require.NoError(t, tt.Set(board, packBounds(0, 0)))
	}

	counts, err := DepthHistogram(tt)
	require.NoError(t, err)
	require.Equal(t, uint64(1), counts[0])
	require.Equal(t, uint64(1), counts[1])
	require.Equal(t, uint64(2), counts[2])
	require.Equal(t, uint64(2), counts[3])
	for depth := 4; depth <= MaxPly; depth++ {
		require.Zero(t, counts[depth], "depth %d", depth)
	}
}

func TestWriteHistogram(t *testing.T) {
	var counts [MaxPly + 1]uint64
	counts[0] = 1
	counts[3] = 42

	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, counts))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, MaxPly+2)
	require.Equal(t, "Depth,NodeCount", lines[0])
	require.Equal(t, "0,1", lines[1])
	require.Equal(t, "3,42", lines[4])
	require.Equal(t, "42,0", lines[MaxPly+1])
}
