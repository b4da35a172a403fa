// SPDX-License-Identifier: MIT

package bitvec

import "errors"

var (
	// ErrNegativeLength is returned when a vector of negative length is requested.
	ErrNegativeLength = errors.New("bitvec: negative length")

	// ErrOutOfRange indicates an index outside [0, Len()).
	ErrOutOfRange = errors.New("bitvec: index out of range")

	// ErrLengthMismatch indicates a binary operation on vectors of different lengths.
	ErrLengthMismatch = errors.New("bitvec: length mismatch")

	// ErrInvalidSymbol indicates a pattern rune that is neither OnSymbol nor OffSymbol.
	ErrInvalidSymbol = errors.New("bitvec: invalid pattern symbol")
)
