// SPDX-License-Identifier: MIT

package bitvec

import (
	"fmt"
	"math/bits"
	"strings"
)

// Pattern symbols used by Parse and String.
const (
	OnSymbol  = '#'
	OffSymbol = '.'
)

// wordBits is the number of bits held by one storage word.
const wordBits = 64

// Vector is a fixed-length sequence of bits packed into uint64 words.
//
// Invariant: bits at positions ≥ n in the last word are always zero, so word
// comparison is equality and word popcount is weight.
type Vector struct {
	n int
	w []uint64
}

// wordsFor returns the number of storage words needed for n bits.
func wordsFor(n int) int { return (n + wordBits - 1) / wordBits }

// New returns an all-zero vector of length n.
func New(n int) (Vector, error) {
	if n < 0 {
		return Vector{}, ErrNegativeLength
	}

	return Vector{n: n, w: make([]uint64, wordsFor(n))}, nil
}

// FromBools packs b into a new vector of length len(b).
func FromBools(b []bool) Vector {
	v := Vector{n: len(b), w: make([]uint64, wordsFor(len(b)))}
	for i, on := range b {
		if on {
			v.w[i/wordBits] |= 1 << (uint(i) % wordBits)
		}
	}

	return v
}

// FromIndices returns a vector of length n with exactly the listed bits set.
// Duplicate indices are allowed and have no additional effect.
func FromIndices(n int, idx []int) (Vector, error) {
	v, err := New(n)
	if err != nil {
		return Vector{}, err
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return Vector{}, fmt.Errorf("index %d for length %d: %w", i, n, ErrOutOfRange)
		}
		v.w[i/wordBits] |= 1 << (uint(i) % wordBits)
	}

	return v, nil
}

// Parse reads a light pattern such as ".##." where OnSymbol marks a set bit.
func Parse(pattern string) (Vector, error) {
	v := Vector{n: len(pattern), w: make([]uint64, wordsFor(len(pattern)))}
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case OnSymbol:
			v.w[i/wordBits] |= 1 << (uint(i) % wordBits)
		case OffSymbol:
		default:
			return Vector{}, fmt.Errorf("%q at %d: %w", pattern[i], i, ErrInvalidSymbol)
		}
	}

	return v, nil
}

// Len returns the number of bits in v.
func (v Vector) Len() int { return v.n }

// At reports whether bit i is set.
func (v Vector) At(i int) (bool, error) {
	if i < 0 || i >= v.n {
		return false, ErrOutOfRange
	}

	return v.bit(i), nil
}

// bit is the unchecked accessor used by hot loops inside the package.
func (v Vector) bit(i int) bool {
	return v.w[i/wordBits]>>(uint(i)%wordBits)&1 == 1
}

// Bit is the unchecked form of At for callers that already validated i.
// It panics when i is out of range.
func (v Vector) Bit(i int) bool {
	if i < 0 || i >= v.n {
		panic(ErrOutOfRange.Error())
	}

	return v.bit(i)
}

// With returns a copy of v with bit i set to on.
func (v Vector) With(i int, on bool) (Vector, error) {
	if i < 0 || i >= v.n {
		return Vector{}, ErrOutOfRange
	}
	out := v.Clone()
	if on {
		out.w[i/wordBits] |= 1 << (uint(i) % wordBits)
	} else {
		out.w[i/wordBits] &^= 1 << (uint(i) % wordBits)
	}

	return out, nil
}

// Clone returns a deep copy of v that shares no storage with it.
func (v Vector) Clone() Vector {
	out := Vector{n: v.n, w: make([]uint64, len(v.w))}
	copy(out.w, v.w)

	return out
}

// Xor returns v ⊕ o.
func (v Vector) Xor(o Vector) (Vector, error) {
	if v.n != o.n {
		return Vector{}, ErrLengthMismatch
	}
	out := Vector{n: v.n, w: make([]uint64, len(v.w))}
	for i := range v.w {
		out.w[i] = v.w[i] ^ o.w[i]
	}

	return out, nil
}

// And returns v ∧ o.
func (v Vector) And(o Vector) (Vector, error) {
	if v.n != o.n {
		return Vector{}, ErrLengthMismatch
	}
	out := Vector{n: v.n, w: make([]uint64, len(v.w))}
	for i := range v.w {
		out.w[i] = v.w[i] & o.w[i]
	}

	return out, nil
}

// XorAssign sets v = v ⊕ o in place.
//
// Any other Vector sharing v's storage observes the change, so callers must
// own v exclusively (see Clone). The operands are left untouched on error.
func (v *Vector) XorAssign(o Vector) error {
	if v.n != o.n {
		return ErrLengthMismatch
	}
	for i := range v.w {
		v.w[i] ^= o.w[i]
	}

	return nil
}

// Weight returns the number of set bits (Hamming weight).
func (v Vector) Weight() int {
	var c int
	for _, x := range v.w {
		c += bits.OnesCount64(x)
	}

	return c
}

// IsZero reports whether no bit is set.
func (v Vector) IsZero() bool {
	for _, x := range v.w {
		if x != 0 {
			return false
		}
	}

	return true
}

// Equal reports whether v and o have the same length and bits.
func (v Vector) Equal(o Vector) bool {
	if v.n != o.n {
		return false
	}
	for i := range v.w {
		if v.w[i] != o.w[i] {
			return false
		}
	}

	return true
}

// Indices returns the positions of set bits in ascending order.
func (v Vector) Indices() []int {
	out := make([]int, 0, v.Weight())
	for wi, x := range v.w {
		for x != 0 {
			tz := bits.TrailingZeros64(x)
			out = append(out, wi*wordBits+tz)
			x &= x - 1
		}
	}

	return out
}

// Bools unpacks v into a fresh []bool.
func (v Vector) Bools() []bool {
	out := make([]bool, v.n)
	for i := range out {
		out[i] = v.bit(i)
	}

	return out
}

// String renders v as a light pattern, e.g. "[.##.]".
func (v Vector) String() string {
	var sb strings.Builder
	sb.Grow(v.n + 2)
	sb.WriteByte('[')
	for i := 0; i < v.n; i++ {
		if v.bit(i) {
			sb.WriteByte(OnSymbol)
		} else {
			sb.WriteByte(OffSymbol)
		}
	}
	sb.WriteByte(']')

	return sb.String()
}
