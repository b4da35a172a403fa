package machine_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jfkriz/togglesolve/bitvec"
	"github.com/jfkriz/togglesolve/machine"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T) *machine.Parser {
	t.Helper()
	p, err := machine.NewParser()
	require.NoError(t, err)

	return p
}

func TestParseLine_Sample(t *testing.T) {
	m, err := newParser(t).ParseLine(1, "[.##.] (3) (1,3) (2) (2,3) (0,2) (0,1) {3,5,4,7}")
	require.NoError(t, err)

	require.Equal(t, 1, m.ID)
	require.Equal(t, 4, m.Outputs())
	require.Equal(t, []bool{false, true, true, false}, m.Lights.Bools())
	require.Equal(t, []int{3, 5, 4, 7}, m.Counts)
	require.Len(t, m.Buttons, 6)
	require.Equal(t, []int{1, 3}, m.Buttons[1].Indices())
	require.Equal(t, []int{0, 1}, m.Buttons[5].Indices())
}

func TestString_RoundTrip(t *testing.T) {
	p := newParser(t)
	const line = "[...#.] (0,2,3,4) (2,3) (0,4) (0,1,2) (1,2,3,4) {7,5,12,7,2}"
	m, err := p.ParseLine(2, line)
	require.NoError(t, err)
	require.Equal(t, line, m.String())

	again, err := p.ParseLine(2, m.String())
	require.NoError(t, err)
	require.Equal(t, m.Counts, again.Counts)
	require.True(t, m.Lights.Equal(again.Lights))
}

func TestParseLine_Errors(t *testing.T) {
	p := newParser(t)
	cases := []struct {
		name string
		line string
		want error
	}{
		{"missing counts", "[.#] (0)", machine.ErrSyntax},
		{"bad symbol", "[.x] (0) {1,1}", machine.ErrSyntax},
		{"empty wiring", "[.#] () {1,1}", machine.ErrSyntax},
		{"wiring out of range", "[.#] (2) {1,1}", machine.ErrDimensionMismatch},
		{"counter count", "[.#] (0) {1,1,1}", machine.ErrDimensionMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.ParseLine(1, tc.line)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParse_File(t *testing.T) {
	ms, err := newParser(t).ParseFile("testdata/sample.txt")
	require.NoError(t, err)
	require.Len(t, ms, 3)
	for i, m := range ms {
		require.Equal(t, i+1, m.ID)
		require.NoError(t, m.Validate())
	}
	require.Equal(t, 6, ms[2].Outputs())

	_, err = newParser(t).ParseFile("testdata/missing.txt")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_SkipsBlankLinesAndReportsLine(t *testing.T) {
	in := "\n[#] (0) {1}\n\n[#] (0 {1}\n"
	_, err := newParser(t).Parse(strings.NewReader(in))
	require.ErrorIs(t, err, machine.ErrSyntax)
	require.Contains(t, err.Error(), "line 4")

	ms, err := newParser(t).Parse(strings.NewReader("\n[#] (0) {1}\n\n[.] (0) {0}\n"))
	require.NoError(t, err)
	require.Len(t, ms, 2)
	require.Equal(t, 2, ms[1].ID)
}

func TestParse_RejectsInvalidRecordsAndKeepsTheRest(t *testing.T) {
	in := "[.##.] (3) (1,3) (2) (2,3) (0,2) (0,1) {3,5,4,7}\n" +
		"[.#] (0) (1) {1,2,3}\n" +
		"\n" +
		"[.#] (0) (4) {1,1}\n" +
		"[#] (0) {1}\n"

	ms, err := newParser(t).Parse(strings.NewReader(in))
	require.Error(t, err)
	require.ErrorIs(t, err, machine.ErrDimensionMismatch)
	require.NotErrorIs(t, err, machine.ErrSyntax)

	require.Len(t, ms, 2)
	require.Equal(t, 1, ms[0].ID)
	require.Equal(t, 4, ms[1].ID)

	var rej machine.Rejections
	require.True(t, errors.As(err, &rej))
	require.Len(t, rej, 2)
	require.Equal(t, 2, rej[0].Line)
	require.Equal(t, 2, rej[0].MachineID)
	require.Equal(t, 4, rej[1].Line)
	require.Equal(t, 3, rej[1].MachineID)
	require.Contains(t, rej[0].Error(), "line 2")
	require.Contains(t, err.Error(), "2 records rejected")

	var le *machine.LineError
	require.True(t, errors.As(err, &le))
	require.Equal(t, 2, le.Line)
}

func TestParse_SyntaxErrorStillFails(t *testing.T) {
	in := "[.#] (0) (1) {1,2,3}\n[#] (0 {1}\n"
	ms, err := newParser(t).Parse(strings.NewReader(in))
	require.ErrorIs(t, err, machine.ErrSyntax)
	require.Nil(t, ms)
}

func TestNew_Validates(t *testing.T) {
	lights := bitvec.FromBools([]bool{true, false})
	short := bitvec.FromBools([]bool{true})
	wide := bitvec.FromBools([]bool{true, true})

	_, err := machine.New(7, lights, []int{1, 1}, []bitvec.Vector{short})
	require.ErrorIs(t, err, machine.ErrDimensionMismatch)
	require.Contains(t, err.Error(), "machine 7")

	_, err = machine.New(7, lights, []int{1, -1}, []bitvec.Vector{wide})
	require.ErrorIs(t, err, machine.ErrNegativeCount)

	counts := []int{1, 1}
	m, err := machine.New(7, lights, counts, []bitvec.Vector{wide})
	require.NoError(t, err)
	counts[0] = 99
	require.Equal(t, []int{1, 1}, m.Counts)
}
