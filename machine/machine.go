// SPDX-License-Identifier: MIT

package machine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jfkriz/togglesolve/bitvec"
)

var (
	// ErrDimensionMismatch indicates a wiring or target whose length is not L.
	ErrDimensionMismatch = errors.New("machine: dimension mismatch")

	// ErrNegativeCount indicates a counter target below zero.
	ErrNegativeCount = errors.New("machine: negative counter target")

	// ErrSyntax indicates a record line that does not match the grammar.
	ErrSyntax = errors.New("machine: syntax error")
)

// Machine is one device: Lights and Counts are the two targets, Buttons the
// wirings, all of length Outputs().
type Machine struct {
	ID      int
	Lights  bitvec.Vector
	Counts  []int
	Buttons []bitvec.Vector
}

// New validates and returns a Machine. counts and buttons are copied.
func New(id int, lights bitvec.Vector, counts []int, buttons []bitvec.Vector) (*Machine, error) {
	m := &Machine{
		ID:      id,
		Lights:  lights,
		Counts:  append([]int(nil), counts...),
		Buttons: append([]bitvec.Vector(nil), buttons...),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Outputs returns L, the number of lights and counters.
func (m *Machine) Outputs() int { return m.Lights.Len() }

// Validate checks the shared-length invariant and nonnegative counts.
func (m *Machine) Validate() error {
	l := m.Lights.Len()
	if len(m.Counts) != l {
		return fmt.Errorf("machine %d: %d counters for %d lights: %w", m.ID, len(m.Counts), l, ErrDimensionMismatch)
	}
	for i, b := range m.Buttons {
		if b.Len() != l {
			return fmt.Errorf("machine %d: button %d has length %d, want %d: %w", m.ID, i, b.Len(), l, ErrDimensionMismatch)
		}
	}
	for o, c := range m.Counts {
		if c < 0 {
			return fmt.Errorf("machine %d: counter %d target %d: %w", m.ID, o, c, ErrNegativeCount)
		}
	}

	return nil
}

// String renders m in the line format accepted by Parser.
func (m *Machine) String() string {
	var sb strings.Builder
	sb.WriteString(m.Lights.String())
	for _, b := range m.Buttons {
		sb.WriteString(" (")
		for i, o := range b.Indices() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(o))
		}
		sb.WriteByte(')')
	}
	sb.WriteString(" {")
	for i, c := range m.Counts {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(c))
	}
	sb.WriteByte('}')

	return sb.String()
}
