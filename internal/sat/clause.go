package sat

import "strings"

// clauseRef identifies a clause by its position in the solver's append-only
// clause database. Indices never move once assigned: learned clauses are
// appended with indices continuing the original numbering, and the two are
// indistinguishable to the propagator.
type clauseRef int32

const noReason clauseRef = -1

// Clause is a disjunction of literals. For clauses of length 2 or more,
// literals[0] and literals[1] are the two watched positions; a unit clause
// (length 1) has nothing watched since it can never gain a second
// unassigned literal.
type Clause struct {
	literals []Literal
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// watcher is an entry in the watch index: clause ref watches the literal it
// is filed under, and guard is the clause's other watched literal. If guard
// is already true the clause is satisfied and does not need to be loaded at
// all, which is the single biggest win in a two-watched-literal propagator.
type watcher struct {
	ref   clauseRef
	guard Literal
}

// propagate restores invariant W1 after wl, one of c's two watched
// literals, has just been assigned false. It reports whether the clause
// remains unfalsified; a false result means c is the conflict clause under
// the current assignment.
func (c *Clause) propagate(s *Solver, ref clauseRef, wl Literal) bool {
	lits := c.literals

	// Normalize so that lits[1] is the literal that just went false: the
	// rest of this function only ever needs to touch position 0 and the
	// tail, never both watched positions at once.
	if lits[0] == wl {
		lits[0], lits[1] = lits[1], lits[0]
	}

	if s.value(lits[0]) == True {
		s.addWatcher(wl, ref, lits[0])
		return true
	}

	for i := 2; i < len(lits); i++ {
		if s.value(lits[i]) != False {
			lits[1], lits[i] = lits[i], lits[1]
			s.addWatcher(lits[1], ref, lits[0])
			return true
		}
	}

	// No unassigned or true literal beyond position 0: the clause stays
	// watched on wl, and lits[0] is forced unless it is already false.
	s.addWatcher(wl, ref, lits[0])
	return s.enqueue(lits[0], ref)
}

// explainFailure returns the negation of every literal of c, used by the
// conflict analyser when c itself is the falsified (conflict) clause.
func (c *Clause) explainFailure(buf []Literal) []Literal {
	buf = buf[:0]
	for _, l := range c.literals {
		buf = append(buf, l.Opposite())
	}
	return buf
}

// explainAssign returns the negation of every literal of c other than l,
// used by the conflict analyser when c is the reason clause that forced l.
func (c *Clause) explainAssign(l Literal, buf []Literal) []Literal {
	buf = buf[:0]
	for _, q := range c.literals {
		if q != l {
			buf = append(buf, q.Opposite())
		}
	}
	return buf
}
