// SPDX-License-Identifier: MIT

package machine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/jfkriz/togglesolve/bitvec"
)

// recordLexer tokenises one machine line.
var recordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Lights", Pattern: `[.#]+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[\[\](){},]`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

// record is the grammar of one line.
type record struct {
	Lights  string    `"[" @Lights "]"`
	Wirings []*wiring `@@*`
	Counts  []int     `"{" @Int ( "," @Int )* "}"`
}

// wiring is one parenthesised button.
type wiring struct {
	Outputs []int `"(" @Int ( "," @Int )* ")"`
}

// Parser turns record lines into Machines.
type Parser struct {
	parser *participle.Parser[record]
}

// NewParser builds the record grammar.
func NewParser() (*Parser, error) {
	p, err := participle.Build[record](
		participle.Lexer(recordLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: p}, nil
}

// ParseLine parses one record and assigns it id.
func (p *Parser) ParseLine(id int, line string) (*Machine, error) {
	rec, err := p.parser.ParseString(fmt.Sprintf("machine %d", id), line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	lights, err := bitvec.Parse(rec.Lights)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	buttons := make([]bitvec.Vector, len(rec.Wirings))
	for i, w := range rec.Wirings {
		if buttons[i], err = bitvec.FromIndices(lights.Len(), w.Outputs); err != nil {
			return nil, fmt.Errorf("machine %d: button %d: %w: %w", id, i, ErrDimensionMismatch, err)
		}
	}

	return New(id, lights, rec.Counts, buttons)
}

// LineError is one record that parsed but did not form a valid machine.
type LineError struct {
	Line      int // 1-based line number in the input
	MachineID int
	Err       error
}

// Error implements error.
func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *LineError) Unwrap() error { return e.Err }

// Rejections lists every record Parse rejected, in input order.
type Rejections []*LineError

// Error implements error.
func (r Rejections) Error() string {
	if len(r) == 1 {
		return r[0].Error()
	}

	return fmt.Sprintf("%d records rejected, first: %v", len(r), r[0])
}

// Unwrap exposes every rejection to errors.Is and errors.As.
func (r Rejections) Unwrap() []error {
	out := make([]error, len(r))
	for i, e := range r {
		out[i] = e
	}

	return out
}

// Parse reads one record per non-blank line. Machine IDs are 1-based in
// input order, counting rejected records too.
//
// A line that does not match the grammar stops the parse with ErrSyntax.
// A record that matches but fails validation (ErrDimensionMismatch,
// ErrNegativeCount) rejects only that machine: Parse keeps going and
// returns the valid machines together with a Rejections error.
func (p *Parser) Parse(r io.Reader) ([]*Machine, error) {
	var (
		sc  = bufio.NewScanner(r)
		out []*Machine
		rej Rejections
		n   int
		id  int
	)
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		id++
		m, err := p.ParseLine(id, line)
		switch {
		case err == nil:
			out = append(out, m)
		case errors.Is(err, ErrSyntax):
			return nil, fmt.Errorf("line %d: %w", n, err)
		default:
			rej = append(rej, &LineError{Line: n, MachineID: id, Err: err})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(rej) > 0 {
		return out, rej
	}

	return out, nil
}

// ParseFile parses the records in the named file, with the same rejection
// rules as Parse.
func (p *Parser) ParseFile(filename string) ([]*Machine, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}
