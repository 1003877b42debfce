package absexec

import (
	"fmt"

	absint "github.com/wcbup/Abstract-Interpretation"
)

// OutcomeKind tags the result of an abstract comparison.
type OutcomeKind uint8

const (
	// Concrete: the relation is decided; see Outcome.Holds.
	Concrete OutcomeKind = iota
	// Unknown: either outcome is possible and nothing is learned.
	Unknown
	// Refined: either outcome is possible and each one narrows an operand.
	Refined
)

func (k OutcomeKind) String() string {
	switch k {
	case Concrete:
		return "concrete"
	case Unknown:
		return "unknown"
	case Refined:
		return "refined"
	default:
		return "invalid"
	}
}

// Refinement narrows the local at Slot to Value on one branch.
type Refinement struct {
	Slot  int
	Value Value
}

// Outcome is the tri-state result of comparing two abstract values.
// OnTrue and OnFalse are only set for Refined outcomes; they are empty when
// the narrowed operand has no home slot.
type Outcome struct {
	Kind    OutcomeKind
	Holds   bool
	OnTrue  []Refinement
	OnFalse []Refinement
}

func (o Outcome) String() string {
	switch o.Kind {
	case Concrete:
		return fmt.Sprintf("concrete(%t)", o.Holds)
	case Refined:
		return fmt.Sprintf("refined(true=%v, false=%v)", o.OnTrue, o.OnFalse)
	default:
		return o.Kind.String()
	}
}

// Compare evaluates left cond right.
func Compare(cond absint.Condition, left, right Value) (Outcome, error) {
	if !cond.Valid() {
		return Outcome{}, fmt.Errorf("%w: condition %q", ErrUnsupported, cond)
	}
	if left.IsVoid() || right.IsVoid() || left.Kind > KindNonZero || right.Kind > KindNonZero {
		return Outcome{}, &DomainError{Op: string(cond), Left: left, Right: right}
	}
	switch {
	case left.IsExact() && right.IsExact():
		return Outcome{Kind: Concrete, Holds: holds(cond, left.Int, right.Int)}, nil
	case right.IsExact():
		return refine(cond, left, right.Int), nil
	case left.IsExact():
		return refine(cond.Flip(), right, left.Int), nil
	default:
		return Outcome{Kind: Unknown}, nil
	}
}

func holds(cond absint.Condition, a, b int64) bool {
	switch cond {
	case absint.Eq:
		return a == b
	case absint.Ne:
		return a != b
	case absint.Gt:
		return a > b
	case absint.Ge:
		return a >= b
	case absint.Lt:
		return a < b
	case absint.Le:
		return a <= b
	}
	return false
}

// satisfying returns the signs s for which some integer x of sign s has
// x cond k.
func satisfying(cond absint.Condition, k int64) signSet {
	var out signSet
	for _, s := range []signSet{sNeg, sZero, sPos} {
		if someSatisfies(cond, s, k) {
			out |= s
		}
	}
	return out
}

// someSatisfies reports whether an integer of sign s relates to k by cond.
// Negative integers span [MinInt64, -1], positive ones [1, MaxInt64].
func someSatisfies(cond absint.Condition, s signSet, k int64) bool {
	const minInt, maxInt = -1 << 63, 1<<63 - 1
	lo, hi := int64(0), int64(0)
	switch s {
	case sNeg:
		lo, hi = minInt, -1
	case sPos:
		lo, hi = 1, maxInt
	}
	switch cond {
	case absint.Eq:
		return lo <= k && k <= hi
	case absint.Ne:
		return lo != hi || lo != k
	case absint.Gt:
		return hi > k
	case absint.Ge:
		return hi >= k
	case absint.Lt:
		return lo < k
	case absint.Le:
		return lo <= k
	}
	return false
}

// refine compares the non-exact x against the exact k. Each branch keeps
// x's signs that admit a value consistent with the branch. An empty side
// means that branch is unreachable and the comparison is decided.
func refine(cond absint.Condition, x Value, k int64) Outcome {
	xs := signsOf(x)
	trueSigns := xs & satisfying(cond, k)
	falseSigns := xs & satisfying(cond.Negate(), k)
	switch {
	case trueSigns == sNone:
		return Outcome{Kind: Concrete, Holds: false}
	case falseSigns == sNone:
		return Outcome{Kind: Concrete, Holds: true}
	}

	onTrue := narrowed(cond, x, trueSigns, k)
	onFalse := narrowed(cond.Negate(), x, falseSigns, k)

	out := Outcome{Kind: Refined}
	if slot, ok := x.HomeSlot(); ok {
		out.OnTrue = []Refinement{{Slot: slot, Value: onTrue.WithHome(slot)}}
		out.OnFalse = []Refinement{{Slot: slot, Value: onFalse.WithHome(slot)}}
	}
	return out
}

// narrowed is the abstraction of x on a branch where x cond k holds and x
// has one of the signs in s. Equality pins x to k.
func narrowed(cond absint.Condition, x Value, s signSet, k int64) Value {
	if cond == absint.Eq {
		return Exact(k)
	}
	if v, ok := fromSigns(s); ok {
		return v
	}
	return x.WithoutHome()
}
