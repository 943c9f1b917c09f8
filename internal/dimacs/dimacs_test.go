package dimacs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mfenwick-oss/cdclsat/internal/sat"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Instance
	}{
		{
			name: "header and comments ignored",
			input: "c a comment\n" +
				"p cnf 3 2\n" +
				"1 2 0\n" +
				"-2 3 0\n",
			want: &Instance{
				NumVars: 3,
				Clauses: [][]int32{{1, 2}, {-2, 3}},
			},
		},
		{
			name:  "malformed token skipped silently",
			input: "1 xx 2 0\n",
			want: &Instance{
				NumVars: 2,
				Clauses: [][]int32{{1, 2}},
			},
		},
		{
			name:  "surplus zero is a no-op",
			input: "1 2 0 0 0 3 0\n",
			want: &Instance{
				NumVars: 3,
				Clauses: [][]int32{{1, 2}, {3}},
			},
		},
		{
			name:  "trailing clause without terminating zero is flushed",
			input: "1 2 0\n-1 3",
			want: &Instance{
				NumVars: 3,
				Clauses: [][]int32{{1, 2}, {-1, 3}},
			},
		},
		{
			name:  "empty input has no clauses",
			input: "",
			want:  &Instance{},
		},
		{
			name:  "blank lines between clauses are ignored",
			input: "1 0\n\n2 0\n",
			want: &Instance{
				NumVars: 2,
				Clauses: [][]int32{{1}, {2}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse(): unexpected error: %s", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(): mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_rejectsOversizedVariableIndex(t *testing.T) {
	input := "4611686018427387904 0\n" // fits in int, overflows int32
	if _, err := Parse(strings.NewReader(input)); err == nil {
		t.Errorf("Parse() = nil error, want an error for a variable index exceeding math.MaxInt32")
	}
}

func TestInstance_NewSolver(t *testing.T) {
	inst, err := Parse(strings.NewReader("1 2 0\n-1 2 0\n-2 3 0\n"))
	if err != nil {
		t.Fatalf("Parse(): unexpected error: %s", err)
	}

	s, err := inst.NewSolver(sat.DefaultOptions)
	if err != nil {
		t.Fatalf("NewSolver(): unexpected error: %s", err)
	}
	if got, want := s.NumVariables(), 3; got != want {
		t.Errorf("NumVariables() = %d, want %d", got, want)
	}
}

func TestInstance_NewSolver_tautologyDropped(t *testing.T) {
	inst, err := Parse(strings.NewReader("1 -1 2 0\n"))
	if err != nil {
		t.Fatalf("Parse(): unexpected error: %s", err)
	}

	s, err := inst.NewSolver(sat.DefaultOptions)
	if err != nil {
		t.Fatalf("NewSolver(): unexpected error: %s", err)
	}
	if s.Unsat() {
		t.Errorf("Unsat() = true, want false: a tautological clause must not make the instance unsatisfiable")
	}
}
