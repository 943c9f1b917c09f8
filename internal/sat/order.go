package sat

import "github.com/rhartert/yagh"

// varOrder maintains the VSIDS score of every variable and hands out the
// next decision literal. Variables are scored in a binary heap keyed on the
// negated score so that both decide and bump are logarithmic instead of a
// linear scan over every variable. The heap is lazy: assigned variables are
// not removed from it eagerly, they are simply skipped by decide and
// reinserted by reinsert once they are unassigned again.
type varOrder struct {
	heap *yagh.IntMap[float64]

	scores     []float64 // in [0, 1e100)
	scoreInc   float64   // in (0, 1e100)
	scoreDecay float64   // in (0, 1]

	// phases caches the last sign assigned to each variable, whether by a
	// decision or by propagation. It is never cleared on unassign: that is
	// what makes this phase saving rather than a fresh coin flip every time
	// a variable is re-decided.
	phases []LBool
}

// newVarOrder returns a varOrder sized for numVars variables, all scored at
// zero and initially defaulting to a positive phase.
func newVarOrder(numVars int, scoreDecay float64) *varOrder {
	vo := &varOrder{
		heap:       yagh.New[float64](0),
		scoreInc:   1,
		scoreDecay: scoreDecay,
		scores:     make([]float64, numVars),
		phases:     make([]LBool, numVars),
	}
	for v := 0; v < numVars; v++ {
		vo.heap.GrowBy(1)
		vo.heap.Put(v, 0)
	}
	return vo
}

// reinsert makes variable v a candidate for selection again. The solver
// calls this when v is unassigned by a backjump, recording val as its new
// cached phase.
func (vo *varOrder) reinsert(v int, val LBool) {
	vo.phases[v] = val
	vo.heap.Put(v, -vo.scores[v])
}

// decay divides the bump increment by the decay factor, equivalent to
// multiplying every score by the decay factor but without touching every
// variable on every conflict.
func (vo *varOrder) decay() {
	vo.scoreInc /= vo.scoreDecay
	if vo.scoreInc > 1e100 {
		vo.rescale()
	}
}

// bump adds the current increment to v's score, rescaling every score if v's
// score has grown too large.
func (vo *varOrder) bump(v int) {
	vo.scores[v] += vo.scoreInc
	if vo.heap.Contains(v) {
		vo.heap.Put(v, -vo.scores[v])
	}
	if vo.scores[v] > 1e100 {
		vo.rescale()
	}
}

func (vo *varOrder) rescale() {
	vo.scoreInc *= 1e-100
	for v, sc := range vo.scores {
		nsc := sc * 1e-100
		vo.scores[v] = nsc
		if vo.heap.Contains(v) {
			vo.heap.Put(v, -nsc)
		}
	}
}

// decide pops the highest-scoring unassigned variable and returns the
// literal matching its cached phase. ok is false only when every variable
// tracked by the heap has already been assigned, which the search driver
// never lets happen since it checks for completion before calling decide.
func (vo *varOrder) decide(assign []LBool) (Literal, bool) {
	for {
		next, ok := vo.heap.Pop()
		if !ok {
			return 0, false
		}
		v := next.Elem
		if assign[PositiveLiteral(v)] != Unknown {
			continue // lazily dropped: already assigned since it was pushed
		}
		switch vo.phases[v] {
		case False:
			return NegativeLiteral(v), true
		default:
			return PositiveLiteral(v), true
		}
	}
}
