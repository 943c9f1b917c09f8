// Package sat implements a Conflict-Driven Clause Learning (CDCL) solver for
// Boolean satisfiability over CNF formulas: a trail-based propagation engine
// with two-watched-literal scheduling, first-UIP conflict analysis,
// non-chronological backjumping, and a VSIDS-with-phase-saving heuristic.
package sat

import (
	"fmt"
	"log"
)

// Options holds the solver's tuning constants. Unlike the clause set and
// variable count, these are not derived from the input; they are
// effectively compile-time knobs exposed through a struct so callers and
// tests can vary them.
type Options struct {
	// VariableDecay is the VSIDS decay factor, strictly between 0 and 1.
	// Smaller values favor recently-bumped variables more strongly.
	VariableDecay float64
}

// DefaultOptions mirrors the reference solver's tuning.
var DefaultOptions = Options{
	VariableDecay: 0.95,
}

// Solver holds all the state of a single CDCL solve: the clause database,
// the watch index, the assignment trail, and the VSIDS heuristic. A Solver
// is sized once at construction from the number of variables in the
// problem and never resizes; it is meant for exactly one Solve call.
type Solver struct {
	opts Options

	numVars int

	// clauses is the append-only clause database. A clause's index into
	// this slice is its identity for the lifetime of the solve; it is
	// never deleted, only ever appended to.
	clauses []*Clause

	// watchers maps a literal to the clauses that watch it. watchers[l]
	// holds every clause with l at one of its two watched positions.
	watchers [][]watcher

	// assign holds, for every literal, whether it is currently true,
	// false, or unknown. assign[l] and assign[l.Opposite()] are always
	// each other's Opposite.
	assign []LBool

	// level and reason are per-variable: the decision level at which a
	// variable was assigned, and the clause (if any) whose propagation
	// forced it. Both are undefined while the variable is unassigned.
	level  []int
	reason []clauseRef

	// trail is the ordered log of every literal assigned so far. trailLim
	// records, for each decision level, the trail length at the start of
	// that level.
	trail    []Literal
	trailLim []int

	propQueue *Queue[Literal]
	order     *varOrder

	unsat bool

	// TotalConflicts and TotalDecisions are exposed for a driver to report
	// and for tests to assert on termination behavior.
	TotalConflicts int64
	TotalDecisions int64

	// seen is reused across calls to analyze to mark the variables already
	// folded into the learned clause under construction.
	seen *ResetSet

	// tmpLearnt and tmpReason are scratch buffers reused across calls to
	// avoid reallocating on every conflict.
	tmpLearnt   []Literal
	tmpReason   []Literal
	tmpWatchers []watcher
}

// NewSolver returns a Solver for a problem over numVars variables (numbered
// 1..numVars externally, 0..numVars-1 internally). All per-variable state
// is allocated up front; the solver never learns of a variable it wasn't
// told about at construction.
func NewSolver(numVars int, opts Options) (*Solver, error) {
	if numVars < 0 {
		return nil, fmt.Errorf("sat: negative variable count %d", numVars)
	}

	s := &Solver{
		opts:      opts,
		numVars:   numVars,
		watchers:  make([][]watcher, 2*numVars),
		assign:    make([]LBool, 2*numVars),
		level:     make([]int, numVars),
		reason:    make([]clauseRef, numVars),
		propQueue: NewQueue[Literal](128),
		order:     newVarOrder(numVars, opts.VariableDecay),
		seen:      &ResetSet{addedAt: make([]uint16, numVars), addedTimestamp: 1},
	}
	for v := range s.level {
		s.level[v] = -1
		s.reason[v] = noReason
	}
	return s, nil
}

// NumVariables returns the number of variables the solver was constructed
// with.
func (s *Solver) NumVariables() int {
	return s.numVars
}

// VarValue returns the current value of variable v (0-indexed).
func (s *Solver) VarValue(v int) LBool {
	return s.assign[PositiveLiteral(v)]
}

// value returns the current value of literal l.
func (s *Solver) value(l Literal) LBool {
	return s.assign[l]
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// Unsat reports whether the problem is known unsatisfiable, either because
// an empty clause was added or because propagation over the initial units
// found a root-level conflict.
func (s *Solver) Unsat() bool {
	return s.unsat
}

// AddClause adds a clause to the problem. It must only be called before the
// first call to Solve. The literals are rejected if they form a tautology
// or are already satisfied by a root-level assignment; otherwise they are
// deduplicated and added, immediately assigning a unit clause or
// registering watches for a longer one.
func (s *Solver) AddClause(literals []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddClause called mid-search at decision level %d", s.decisionLevel())
	}

	lits := append([]Literal(nil), literals...)
	size := len(lits)

	seen := make(map[Literal]bool, size)
	for i := size - 1; i >= 0; i-- {
		if seen[lits[i].Opposite()] {
			return nil // tautology: (l \/ -l \/ ...) is always true, discard
		}
		if seen[lits[i]] {
			size--
			lits[i], lits[size] = lits[size], lits[i]
			continue
		}
		seen[lits[i]] = true

		switch s.value(lits[i]) {
		case True:
			return nil // already satisfied at the root level, discard
		case False:
			size--
			lits[i], lits[size] = lits[size], lits[i]
		}
	}
	lits = lits[:size]

	switch size {
	case 0:
		s.unsat = true
		return nil
	case 1:
		ref := s.appendClause(lits)
		if !s.enqueue(lits[0], ref) {
			s.unsat = true
		}
		return nil
	default:
		ref := s.appendClause(lits)
		c := s.clauses[ref]
		s.addWatcher(c.literals[0], ref, c.literals[1])
		s.addWatcher(c.literals[1], ref, c.literals[0])
		return nil
	}
}

func (s *Solver) appendClause(lits []Literal) clauseRef {
	ref := clauseRef(len(s.clauses))
	c := &Clause{literals: append([]Literal(nil), lits...)}
	s.clauses = append(s.clauses, c)
	return ref
}

func (s *Solver) addWatcher(l Literal, ref clauseRef, guard Literal) {
	s.watchers[l] = append(s.watchers[l], watcher{ref: ref, guard: guard})
}

// enqueue records l as true, with the given reason (noReason for a
// decision), at the current decision level. It reports false if l was
// already false, i.e. this is a conflicting assignment.
func (s *Solver) enqueue(l Literal, ref clauseRef) bool {
	switch s.value(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assign[l] = True
		s.assign[l.Opposite()] = False
		s.level[v] = s.decisionLevel()
		s.reason[v] = ref
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

// propagate drains the propagation queue, returning noReason once it is
// empty or the ref of the first clause found falsified under the current
// assignment.
func (s *Solver) propagate() clauseRef {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()
		falseLit := l.Opposite()

		s.tmpWatchers = append(s.tmpWatchers[:0], s.watchers[falseLit]...)
		s.watchers[falseLit] = s.watchers[falseLit][:0]

		for i, w := range s.tmpWatchers {
			if s.value(w.guard) == True {
				// Still satisfied by the guard; no need to even load the
				// clause.
				s.watchers[falseLit] = append(s.watchers[falseLit], w)
				continue
			}

			c := s.clauses[w.ref]
			if c.propagate(s, w.ref, falseLit) {
				continue
			}

			// Conflict: keep the watchers we have not looked at yet, the
			// rest were already re-filed by propagate/the guard check.
			s.watchers[falseLit] = append(s.watchers[falseLit], s.tmpWatchers[i+1:]...)
			s.propQueue.Clear()
			return w.ref
		}
	}
	return noReason
}

// assume records l as a new decision, opening a new decision level.
func (s *Solver) assume(l Literal) {
	s.trailLim = append(s.trailLim, len(s.trail))
	s.TotalDecisions++
	s.enqueue(l, noReason)
}

// undoOne pops the last trail entry, unassigning its variable and returning
// it to the heuristic as a candidate again.
func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.order.reinsert(v, Lift(l.IsPositive()))
	s.assign[l] = Unknown
	s.assign[l.Opposite()] = Unknown
	s.level[v] = -1
	s.reason[v] = noReason

	s.trail = s.trail[:len(s.trail)-1]
}

// cancelUntil unwinds the trail down to (and including) decision level+1,
// leaving the solver at decisionLevel() == level.
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		n := len(s.trail) - s.trailLim[len(s.trailLim)-1]
		for ; n > 0; n-- {
			s.undoOne()
		}
		s.trailLim = s.trailLim[:len(s.trailLim)-1]
	}
}

// analyze implements first-UIP conflict analysis: starting from the
// falsified clause conflict, it walks the trail backward, resolving away
// every literal assigned at the current decision level except the last
// one encountered, which becomes the asserting literal of the learned
// clause. It returns the learned clause (asserting literal first) and the
// level to backjump to.
func (s *Solver) analyze(conflict clauseRef) ([]Literal, int) {
	s.seen.Clear()

	// counter tracks how many literals of the working clause are still
	// assigned at the current decision level. Resolution continues until
	// exactly one remains: that one is the first UIP.
	counter := 0
	backjumpLevel := 0

	s.tmpLearnt = append(s.tmpLearnt[:0], 0) // placeholder for the UIP, filled in below

	nextTrailIdx := len(s.trail) - 1
	l := Literal(-1) // no literal yet: conflict is explained by all of its literals
	ref := conflict

	for {
		var explain []Literal
		if l == -1 {
			explain = s.clauses[ref].explainFailure(s.tmpReason)
		} else {
			explain = s.clauses[ref].explainAssign(l, s.tmpReason)
		}

		for _, q := range explain {
			v := q.VarID()
			if s.seen.Contains(v) {
				continue
			}
			s.seen.Add(v)

			if s.level[v] == s.decisionLevel() {
				counter++
				continue
			}

			s.tmpLearnt = append(s.tmpLearnt, q.Opposite())
			if lvl := s.level[v]; lvl > backjumpLevel {
				backjumpLevel = lvl
			}
		}

		// Advance to the next seen literal on the trail, walking backward.
		for {
			l = s.trail[nextTrailIdx]
			nextTrailIdx--
			if s.seen.Contains(l.VarID()) {
				break
			}
		}
		ref = s.reason[l.VarID()]

		counter--
		if counter <= 0 {
			break
		}
	}

	s.tmpLearnt[0] = l.Opposite()
	return s.tmpLearnt, backjumpLevel
}

// record adds a learned clause to the database, relocating its second
// watch to the literal assigned at the highest level (other than the
// asserting literal) so the clause is ready to fire as soon as propagation
// resumes, per the asserting property.
func (s *Solver) record(learned []Literal) {
	ref := s.appendClause(learned)
	c := s.clauses[ref]

	if len(c.literals) > 1 {
		maxLevel, wl := -1, 1
		for i := 1; i < len(c.literals); i++ {
			if lvl := s.level[c.literals[i].VarID()]; lvl > maxLevel {
				maxLevel, wl = lvl, i
			}
		}
		c.literals[1], c.literals[wl] = c.literals[wl], c.literals[1]

		s.addWatcher(c.literals[0], ref, c.literals[1])
		s.addWatcher(c.literals[1], ref, c.literals[0])
	}

	s.enqueue(c.literals[0], ref)
}

// Solve runs the CDCL search loop to completion. It assumes the clauses
// added before this call fully describe the problem; no clause may be
// added afterward.
func (s *Solver) Solve() Status {
	if s.unsat {
		return Unsatisfiable
	}

	if conflict := s.propagate(); conflict != noReason {
		s.unsat = true
		return Unsatisfiable
	}

	for {
		if len(s.trail) == s.numVars {
			return Satisfiable
		}

		lit, ok := s.order.decide(s.assign)
		if !ok {
			log.Fatal("sat: heuristic ran out of candidates with unassigned variables remaining")
		}
		s.assume(lit)

		for {
			conflict := s.propagate()
			if conflict == noReason {
				break
			}
			s.TotalConflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				return Unsatisfiable
			}

			learned, backjumpLevel := s.analyze(conflict)
			for _, lt := range learned {
				s.order.bump(lt.VarID())
			}
			s.order.decay()

			s.cancelUntil(backjumpLevel)
			s.record(learned)
		}
	}
}

// Model returns the satisfying assignment found by the last Solve call that
// returned Satisfiable; its contents are unspecified otherwise.
func (s *Solver) Model() []bool {
	model := make([]bool, s.numVars)
	for v := 0; v < s.numVars; v++ {
		model[v] = s.VarValue(v) == True
	}
	return model
}
