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
	"math/bits"

	"github.com/pkg/errors"
)

const (
	// BoardWidth and BoardHeight fix the canonical game.
	BoardWidth  = 7
	BoardHeight = 6

	// MaxPly is the deepest reachable node, a full board.
	MaxPly = BoardWidth * BoardHeight

	// Each column packs into 7 bits: col_code = (2^h - 1) + pattern, where h
	// is the number of stones and bit i of pattern (bottom first) is set for
	// the second player's stones. Valid codes are 0..126; 127 never appears.
	colBits    = 7
	colMask    = (1 << colBits) - 1
	maxColCode = (1 << (BoardHeight + 1)) - 2
)

// EncodeMoves packs a move sequence into the collision-free 49-bit board
// code, column 0 in the lowest bits. The first player moves on even plies.
func EncodeMoves(moveseq string) (uint64, error) {
	var heights [BoardWidth]int
	var patterns [BoardWidth]uint64

	for ply := 0; ply < len(moveseq); ply++ {
		ch := moveseq[ply]
		if ch < '0' || ch > '9' {
			return 0, errors.Errorf("invalid move character %q at ply=%d", ch, ply)
		}
		col := int(ch - '0')
		if col >= BoardWidth {
			return 0, errors.Errorf("move out of range: %d at ply=%d", col, ply)
		}
		h := heights[col]
		if h >= BoardHeight {
			return 0, errors.Errorf("illegal move: column %d is full at ply=%d", col, ply)
		}
		if ply&1 == 1 {
			patterns[col] |= 1 << h
		}
		heights[col] = h + 1
	}

	var board uint64
	for col := 0; col < BoardWidth; col++ {
		colCode := uint64(1<<heights[col]-1) + patterns[col]
		board |= colCode << (colBits * col)
	}
	return board, nil
}

// DecodeBoard expands a 49-bit board code into the 42-character display
// board: rows top to bottom, '.' empty, 'x' first player, 'o' second.
// Diagnostics only; the search never needs the expanded form.
func DecodeBoard(board49 uint64) (string, error) {
	var cells [MaxPly]byte
	for i := range cells {
		cells[i] = '.'
	}

	for col := 0; col < BoardWidth; col++ {
		colCode := (board49 >> (colBits * col)) & colMask
		if colCode > maxColCode {
			return "", errors.Errorf("invalid column code %d at col=%d", colCode, col)
		}

		// h = floor(log2(col_code + 1)), then the pattern is the remainder.
		h := bits.Len64(colCode+1) - 1
		pattern := colCode - (uint64(1)<<h - 1)

		for i := 0; i < h; i++ {
			row := BoardHeight - 1 - i
			stone := byte('x')
			if (pattern>>i)&1 == 1 {
				stone = 'o'
			}
			cells[row*BoardWidth+col] = stone
		}
	}
	return string(cells[:]), nil
}

// StoneCount reports the number of stones in a coded board without
// materializing the display string.
func StoneCount(board49 uint64) (int, error) {
	n := 0
	for col := 0; col < BoardWidth; col++ {
		colCode := (board49 >> (colBits * col)) & colMask
		if colCode > maxColCode {
			return 0, errors.Errorf("invalid column code %d at col=%d", colCode, col)
		}
		n += bits.Len64(colCode+1) - 1
	}
	return n, nil
}

// BoardFromMoves plays the sequence on an empty board and returns the
// 42-character display string. This is the straightforward row/column
// simulation; DecodeBoard(EncodeMoves(s)) must agree with it.
func BoardFromMoves(moveseq string) (string, error) {
	var cells [MaxPly]byte
	for i := range cells {
		cells[i] = '.'
	}
	var heights [BoardWidth]int

	for ply := 0; ply < len(moveseq); ply++ {
		ch := moveseq[ply]
		if ch < '0' || ch > '9' {
			return "", errors.Errorf("invalid move character %q at ply=%d", ch, ply)
		}
		col := int(ch - '0')
		if col >= BoardWidth {
			return "", errors.Errorf("move out of range: %d at ply=%d", col, ply)
		}
		if heights[col] >= BoardHeight {
			return "", errors.Errorf("illegal move: column %d is full at ply=%d", col, ply)
		}

		row := BoardHeight - 1 - heights[col]
		stone := byte('x')
		if ply&1 == 1 {
			stone = 'o'
		}
		cells[row*BoardWidth+col] = stone
		heights[col]++
	}
	return string(cells[:]), nil
}
