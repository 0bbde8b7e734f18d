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

// Slot layout (uint64):
//
//	bits 0..49  : key_plus = board49 + 1 (0 means an empty slot)
//	bits 50..63 : value (14-bit)
//
// DIB is not stored in-slot; the incumbent's distance from home is
// recomputed by re-hashing its key. Packing stays at exactly 8 bytes per
// slot and the capacity may be any positive integer.
const (
	ttKeyBits  = 50
	ttKeyMask  = (1 << ttKeyBits) - 1
	ttValShift = ttKeyBits

	// KeyMax is the largest storable board code.
	KeyMax = (1 << 49) - 1
	// ValueMax is the largest storable packed value.
	ValueMax = (1 << 14) - 1
)

// ErrTableFull reports that every slot is occupied and the key being set is
// not among them; the table is left unchanged. Callers treat this as a
// sizing bug, not a condition to recover from.
var ErrTableFull = errors.New("transposition table full")

// TransTable maps 49-bit board codes to 14-bit packed bound records using
// Robin-Hood open addressing. Entries are inserted or updated, never
// removed; the table is written and read from a single goroutine.
type TransTable struct {
	slots []uint64
	size  uint64
}

// NewTransTable allocates a table with the given slot count, all empty.
func NewTransTable(capacity int64) (*TransTable, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("capacity must be positive, got %d", capacity)
	}
	return &TransTable{slots: make([]uint64, capacity)}, nil
}

// hash64 is the SplitMix64 finalizer. The table layout is a pure function
// of these constants; every implementation sharing them lays entries out
// identically.
func hash64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func (t *TransTable) home(keyPlus uint64) uint64 {
	return hash64(keyPlus) % uint64(len(t.slots))
}

// dist is the modular distance from home to idx, division free.
func (t *TransTable) dist(idx, home uint64) uint64 {
	if idx >= home {
		return idx - home
	}
	return idx + uint64(len(t.slots)) - home
}

// Get returns the packed value stored for key, or ok=false when absent.
func (t *TransTable) Get(key uint64) (value uint16, ok bool, err error) {
	if key > KeyMax {
		return 0, false, errors.Errorf("key %#x out of 49-bit range", key)
	}
	kp := key + 1
	n := uint64(len(t.slots))

	i := t.home(kp)
	for dib := uint64(0); dib < n; dib++ {
		e := t.slots[i]
		if e == 0 {
			return 0, false, nil
		}
		if e&ttKeyMask == kp {
			return uint16(e >> ttValShift), true, nil
		}
		// Robin-Hood early exit: an incumbent closer to its home than we
		// have probed proves the key cannot live further on.
		if t.dist(i, t.home(e&ttKeyMask)) < dib {
			return 0, false, nil
		}
		i++
		if i == n {
			i = 0
		}
	}
	return 0, false, nil
}

// Set inserts or updates key. On collision the Robin-Hood rule applies:
// displace the incumbent whenever the entry being placed has probed
// further than the incumbent had to.
func (t *TransTable) Set(key uint64, value uint16) error {
	if key > KeyMax {
		return errors.Errorf("key %#x out of 49-bit range", key)
	}
	if value > ValueMax {
		return errors.Errorf("value %d out of 14-bit range", value)
	}

	kp := key + 1
	entry := kp | uint64(value)<<ttValShift
	n := uint64(len(t.slots))

	// With every slot taken only an update can succeed; the displacement
	// walk below would otherwise push an existing entry out of the table.
	if t.size == n {
		if _, ok, _ := t.Get(key); !ok {
			return errors.WithStack(ErrTableFull)
		}
	}

	i := t.home(kp)
	for dib := uint64(0); dib < n; dib++ {
		e := t.slots[i]
		if e == 0 {
			t.slots[i] = entry
			t.size++
			return nil
		}
		ekp := e & ttKeyMask
		if ekp == entry&ttKeyMask {
			t.slots[i] = entry
			return nil
		}
		incDib := t.dist(i, t.home(ekp))
		if incDib < dib {
			// Swap: the displaced incumbent carries on probing from here
			// with its own distance; the loop increment advances it.
			t.slots[i], entry = entry, e
			dib = incDib
		}
		i++
		if i == n {
			i = 0
		}
	}
	return errors.WithStack(ErrTableFull)
}

// Scan calls f for each occupied slot in slot order until f returns false.
func (t *TransTable) Scan(f func(key uint64, value uint16) bool) {
	for _, e := range t.slots {
		if e == 0 {
			continue
		}
		if !f((e&ttKeyMask)-1, uint16(e>>ttValShift)) {
			return
		}
	}
}

// Size returns the number of live entries.
func (t *TransTable) Size() uint64 {
	return t.size
}

// Cap returns the slot count.
func (t *TransTable) Cap() int64 {
	return int64(len(t.slots))
}
