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
	"encoding/csv"
	"io"
	"strconv"
)

// DepthHistogram bins every occupied table slot by the number of stones on
// the decoded board, 0..42. An undecodable key means the table is corrupt.
func DepthHistogram(t *TransTable) ([MaxPly + 1]uint64, error) {
	var counts [MaxPly + 1]uint64
	var scanErr error
	t.Scan(func(key uint64, _ uint16) bool {
		n, err := StoneCount(key)
		if err != nil {
			scanErr = err
			return false
		}
		counts[n]++
		return true
	})
	return counts, scanErr
}

// WriteHistogram emits the histogram as csv, one row per depth.
func WriteHistogram(w io.Writer, counts [MaxPly + 1]uint64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Depth", "NodeCount"}); err != nil {
		return err
	}
	for depth, n := range counts {
		if err := cw.Write([]string{strconv.Itoa(depth), strconv.FormatUint(n, 10)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
