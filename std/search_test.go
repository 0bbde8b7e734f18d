package std

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// scriptedOracle serves replies from a fixed table, which is all the driver
// needs: it never looks at a position the script does not cover, and an
// uncovered probe is itself a test failure.
type scriptedOracle struct {
	replies map[string]WdlReply
	queries int
}

func (o *scriptedOracle) Query(moveseq string) (WdlReply, error) {
	o.queries++
	r, ok := o.replies[moveseq]
	if !ok {
		return WdlReply{}, errors.Errorf("unscripted position %q", moveseq)
	}
	return r, nil
}

func terminalReply() WdlReply {
	return WdlReply{Terminal: true}
}

func nodeReply(children map[int]int) WdlReply {
	var r WdlReply
	for col, v := range children {
		r.Legal[col] = true
		r.Values[col] = v
	}
	return r
}

// winFixture is a consistent mini game tree: the first player wins by
// playing column 3; the refutation lines below it all end in short losses.
func winFixture() *scriptedOracle {
	return &scriptedOracle{replies: map[string]WdlReply{
		"":    nodeReply(map[int]int{3: 1, 2: -1}),
		"3":   nodeReply(map[int]int{3: -1, 2: -1}),
		"33":  nodeReply(map[int]int{3: 1}),
		"333": terminalReply(),
		"32":  nodeReply(map[int]int{2: 1}),
		"322": terminalReply(),
	}}
}

func TestSearchProvesWin(t *testing.T) {
	tt, err := NewTransTable(1024)
	require.NoError(t, err)
	oracle := winFixture()
	engine := NewEngine(tt, oracle)

	value, err := engine.Search("", -1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, value)

	// One entry per expanded node.
	require.Equal(t, uint64(6), tt.Size())

	// The cutoff nodes hold lower bounds (with the unbounded prior upper
	// bound), the PV nodes exact values.
	requireBounds(t, tt, "", 1, 1)
	requireBounds(t, tt, "3", -1, -1)
	requireBounds(t, tt, "33", 1, 1)
	requireBounds(t, tt, "32", 1, 1)
	requireBounds(t, tt, "333", -1, -1)
	requireBounds(t, tt, "322", -1, -1)
}

func TestSearchOpeningMatchesOracle(t *testing.T) {
	tt, err := NewTransTable(1024)
	require.NoError(t, err)
	oracle := winFixture()
	engine := NewEngine(tt, oracle)

	// For an opening move m, -search(m) must reproduce the root's wdl[m].
	value, err := engine.Search("3", -1, 1)
	require.NoError(t, err)
	require.Equal(t, oracle.replies[""].Values[3], -value)
}

func TestSearchSecondRunHitsTable(t *testing.T) {
	tt, err := NewTransTable(1024)
	require.NoError(t, err)
	oracle := winFixture()
	engine := NewEngine(tt, oracle)

	_, err = engine.Search("", -1, 1)
	require.NoError(t, err)
	queries := oracle.queries

	value, err := engine.Search("", -1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, value)
	require.Equal(t, queries, oracle.queries, "cached root still consulted the oracle")
}

func TestSearchFullBoardTerminal(t *testing.T) {
	// Six stones per column fills the board; the oracle's terminal flag
	// cannot tell a drawn full board from a lost one, so the driver
	// re-queries the parent.
	var sb strings.Builder
	for col := 0; col < BoardWidth; col++ {
		for i := 0; i < BoardHeight; i++ {
			sb.WriteByte(byte('0' + col))
		}
	}
	full := sb.String()
	parent := full[:len(full)-1]

	t.Run("loss", func(t *testing.T) {
		tt, err := NewTransTable(64)
		require.NoError(t, err)
		engine := NewEngine(tt, &scriptedOracle{replies: map[string]WdlReply{
			full:   terminalReply(),
			parent: nodeReply(map[int]int{6: 1}),
		}})

		value, err := engine.Search(full, -1, 1)
		require.NoError(t, err)
		require.Equal(t, -1, value)
		requireBounds(t, tt, full, -1, -1)
	})

	t.Run("draw", func(t *testing.T) {
		tt, err := NewTransTable(64)
		require.NoError(t, err)
		engine := NewEngine(tt, &scriptedOracle{replies: map[string]WdlReply{
			full:   terminalReply(),
			parent: nodeReply(map[int]int{6: 0}),
		}})

		value, err := engine.Search(full, -1, 1)
		require.NoError(t, err)
		require.Equal(t, 0, value)
		requireBounds(t, tt, full, 0, 0)
	})
}

func TestSearchRejectsInconsistentOracle(t *testing.T) {
	// The oracle claims playing 3 wins, yet the child claims it wins too;
	// the recursion result contradicts the prediction and must abort.
	tt, err := NewTransTable(64)
	require.NoError(t, err)
	engine := NewEngine(tt, &scriptedOracle{replies: map[string]WdlReply{
		"":   nodeReply(map[int]int{3: 1}),
		"3":  nodeReply(map[int]int{3: 1}),
		"33": terminalReply(),
	}})

	_, err = engine.Search("", -1, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cutoff child")
}

func TestSearchRejectsBadMoveSequence(t *testing.T) {
	tt, err := NewTransTable(64)
	require.NoError(t, err)
	engine := NewEngine(tt, winFixture())

	_, err = engine.Search("9", -1, 1)
	require.Error(t, err)
}

func TestPackUnpackBounds(t *testing.T) {
	for lb := -1; lb <= 1; lb++ {
		for ub := lb; ub <= 1; ub++ {
			gotLb, gotUb := unpackBounds(packBounds(lb, ub))
			require.Equal(t, lb, gotLb)
			require.Equal(t, ub, gotUb)
		}
	}
}

func requireBounds(t *testing.T, tt *TransTable, moveseq string, lb, ub int) {
	t.Helper()
	board, err := EncodeMoves(moveseq)
	require.NoError(t, err)
	v, ok, err := tt.Get(board)
	require.NoError(t, err)
	require.True(t, ok, "no entry for %q", moveseq)
	gotLb, gotUb := unpackBounds(v)
	require.Equal(t, lb, gotLb, "lower bound of %q", moveseq)
	require.Equal(t, ub, gotUb, "upper bound of %q", moveseq)
}
