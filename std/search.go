// The MIT License (MIT)
//
// # Copyright (c) 2025 eukaryo
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package std

import (
	"github.com/pkg/errors"
)

// moveOrdering lists columns center-out. Both the best-child pick and the
// sibling iteration follow it, which keeps the set of cached nodes and the
// table layout reproducible across runs.
var moveOrdering = [BoardWidth]int{3, 2, 4, 1, 5, 0, 6}

// A packed bound record holds a lower and an upper bound, each in
// {-1, 0, +1}: value = (lb+1) + 16*(ub+1). Exact entries have lb == ub.
func packBounds(lb, ub int) uint16 {
	return uint16((lb + 1) + 16*(ub+1))
}

func unpackBounds(v uint16) (lb, ub int) {
	return int(v%16) - 1, int(v/16) - 1
}

// Engine ties the transposition table and the oracle to the search. One
// engine per run; both collaborators are injected, there is no package
// state.
type Engine struct {
	tt     *TransTable
	oracle Oracle
}

func NewEngine(tt *TransTable, oracle Oracle) *Engine {
	return &Engine{tt: tt, oracle: oracle}
}

// Search returns the negamax value of the position reached by moveseq, from
// the side to move, within the fail-soft window [alpha, beta]. The oracle
// supplies each child's exact value, so the recursion exists to prove the
// root value and to leave a bound in the table for every node it visits.
// Disagreement between a child's oracle value and its recursion result
// means the oracle, the codec, or the table is corrupt, and aborts.
func (e *Engine) Search(moveseq string, alpha, beta int) (int, error) {
	board, err := EncodeMoves(moveseq)
	if err != nil {
		return 0, err
	}

	lb, ub := -1, 1
	if v, ok, err := e.tt.Get(board); err != nil {
		return 0, err
	} else if ok {
		lb, ub = unpackBounds(v)
		if lb >= beta {
			return lb, nil
		}
		if ub <= alpha {
			return ub, nil
		}
		alpha = max(alpha, lb)
		beta = min(beta, ub)
	}

	reply, err := e.oracle.Query(moveseq)
	if err != nil {
		return 0, err
	}

	if reply.Terminal {
		value := -1
		if len(moveseq) == MaxPly {
			// The oracle's terminal flag conflates draws and losses on a
			// full board; the parent's child vector tells them apart.
			parent, err := e.oracle.Query(moveseq[:len(moveseq)-1])
			if err != nil {
				return 0, err
			}
			if !hasWinningChild(parent) {
				value = 0
			}
		}
		if err := e.tt.Set(board, packBounds(value, value)); err != nil {
			return 0, err
		}
		return value, nil
	}

	value, ok := bestChildValue(reply)
	if !ok {
		return 0, errors.Errorf("no legal move in non-terminal reply for %q", moveseq)
	}

	if beta <= value {
		// A beta-cutoff is inevitable: descend into the single best child
		// to prove it, full window.
		for _, move := range moveOrdering {
			if !reply.Legal[move] || reply.Values[move] != value {
				continue
			}
			child, err := e.Search(moveseq+string(rune('0'+move)), -beta, -alpha)
			if err != nil {
				return 0, err
			}
			if cv := -child; cv != value || cv < beta {
				return 0, errors.Errorf("cutoff child %d of %q returned %d, oracle says %d (beta=%d)", move, moveseq, cv, value, beta)
			}
			break
		}
		// Fail-high: publish the proven lower bound and carry the
		// previously known upper bound forward.
		if err := e.tt.Set(board, packBounds(value, ub)); err != nil {
			return 0, err
		}
		return value, nil
	}

	// PV expansion: confirm the best child on a null window, then visit
	// every sibling with the full window. Each sibling must fail low since
	// the first child already proved the node's value.
	first := -1
	for _, move := range moveOrdering {
		if !reply.Legal[move] || reply.Values[move] != value {
			continue
		}
		first = move
		child, err := e.Search(moveseq+string(rune('0'+move)), -alpha-1, -alpha)
		if err != nil {
			return 0, err
		}
		if cv := -child; cv != value || cv >= beta {
			return 0, errors.Errorf("pv child %d of %q returned %d, oracle says %d (beta=%d)", move, moveseq, cv, value, beta)
		}
		alpha = max(alpha, value)
		break
	}

	for _, move := range moveOrdering {
		if move == first || !reply.Legal[move] {
			continue
		}
		child, err := e.Search(moveseq+string(rune('0'+move)), -beta, -alpha)
		if err != nil {
			return 0, err
		}
		if cv := -child; cv > alpha {
			return 0, errors.Errorf("sibling %d of %q returned %d above alpha=%d", move, moveseq, cv, alpha)
		}
	}

	if err := e.tt.Set(board, packBounds(value, value)); err != nil {
		return 0, err
	}
	return value, nil
}

// bestChildValue is the node value seen from the side to move: the maximum
// over the oracle's per-move values.
func bestChildValue(r WdlReply) (int, bool) {
	value, ok := 0, false
	for col := 0; col < BoardWidth; col++ {
		if r.Legal[col] && (!ok || r.Values[col] > value) {
			value, ok = r.Values[col], true
		}
	}
	return value, ok
}

func hasWinningChild(r WdlReply) bool {
	for col := 0; col < BoardWidth; col++ {
		if r.Legal[col] && r.Values[col] == 1 {
			return true
		}
	}
	return false
}
