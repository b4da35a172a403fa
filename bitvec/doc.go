// SPDX-License-Identifier: MIT

// Package bitvec implements fixed-length boolean vectors packed into uint64
// words.
//
// A Vector models one row or column of a toggle system: bit i set means
// "output i is on" (for a light pattern) or "this button touches output i"
// (for a wiring). All arithmetic is over GF(2): Xor is addition, And is
// multiplication, Weight is the Hamming weight.
//
// Values are immutable through the public API. Xor, And and With return fresh
// vectors and never touch their operands. XorAssign is the single in-place
// operation; it exists for elimination kernels that own their rows (obtain
// such rows with Clone).
//
// Complexity:
//   - Xor / And / Equal / Weight: O(⌈n/64⌉) word operations.
//   - At / With: O(1) / O(⌈n/64⌉) (With copies).
//
// Errors (sentinel):
//   - ErrNegativeLength   if a length below zero is requested.
//   - ErrOutOfRange       if an index is outside [0, Len()).
//   - ErrLengthMismatch   if two operands have different lengths.
//   - ErrInvalidSymbol    if a pattern string holds a rune other than '#'/'.'.
package bitvec
