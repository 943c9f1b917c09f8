// Package dimacs reads a CNF problem in DIMACS format from an io.Reader and
// turns it into a sat.Solver instance. Parsing is deliberately permissive:
// malformed tokens are skipped rather than rejected, matching the behavior
// of the reference implementation this parser is modeled on.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mfenwick-oss/cdclsat/internal/sat"
)

// Instance is a CNF problem parsed from DIMACS text: the raw signed
// integers of every clause (0 already stripped) and the number of
// variables inferred from the largest variable index seen. The header
// line's counts, if present, are read and discarded; they are not trusted.
type Instance struct {
	NumVars int
	Clauses [][]int32
}

// Parse reads r to completion and extracts the clause set. Lines starting
// with 'c' are comments; a line starting with 'p' is the (ignored) header.
// Every other line is a whitespace-separated run of signed integers; a
// token that does not parse as an integer is silently skipped. The literal
// 0 terminates the clause being accumulated; a 0 with no pending literals
// is a no-op. Any trailing literals not terminated by a 0 form a final
// clause.
func Parse(r io.Reader) (*Instance, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	inst := &Instance{}
	var current []int32

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == 'c' || line[0] == 'p' {
			continue
		}

		for _, tok := range strings.Fields(line) {
			n, err := strconv.Atoi(tok)
			if err != nil {
				continue // malformed token: skip silently
			}

			if n == 0 {
				if len(current) > 0 {
					inst.Clauses = append(inst.Clauses, current)
					current = nil
				}
				continue // surplus zero outside a clause: no-op
			}

			if n > math.MaxInt32 || n < -math.MaxInt32 {
				return nil, fmt.Errorf("dimacs: variable index %d exceeds implementation limit of %d", n, math.MaxInt32)
			}

			if abs := absInt32(int32(n)); abs > inst.NumVars {
				inst.NumVars = abs
			}
			current = append(current, int32(n))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dimacs: reading input: %w", err)
	}

	if len(current) > 0 {
		inst.Clauses = append(inst.Clauses, current)
	}

	return inst, nil
}

func absInt32(n int32) int {
	if n < 0 {
		return int(-n)
	}
	return int(n)
}

// NewSolver builds a sat.Solver sized for this instance and loads every
// clause into it. The solver is sized from NumVars before any clause is
// added, matching the construction-time-fixed sizing the core requires.
func (inst *Instance) NewSolver(opts sat.Options) (*sat.Solver, error) {
	s, err := sat.NewSolver(inst.NumVars, opts)
	if err != nil {
		return nil, fmt.Errorf("dimacs: %w", err)
	}

	lits := make([]sat.Literal, 0, 8)
	for _, clause := range inst.Clauses {
		lits = lits[:0]
		for _, l := range clause {
			if l < 0 {
				lits = append(lits, sat.NegativeLiteral(int(-l)-1))
			} else {
				lits = append(lits, sat.PositiveLiteral(int(l)-1))
			}
		}
		if err := s.AddClause(lits); err != nil {
			return nil, fmt.Errorf("dimacs: %w", err)
		}
	}

	return s, nil
}
