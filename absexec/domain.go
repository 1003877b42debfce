package absexec

import (
	"math"

	absint "github.com/wcbup/Abstract-Interpretation"
)

// signSet is a subset of {-, 0, +}. Every non-void abstraction denotes one.
type signSet uint8

const (
	sNeg signSet = 1 << iota
	sZero
	sPos

	sNone signSet = 0
	sAll          = sNeg | sZero | sPos
)

func (s signSet) has(t signSet) bool { return s&t != 0 }

// signOf returns the singleton set of n's sign.
func signOf(n int64) signSet {
	switch {
	case n < 0:
		return sNeg
	case n == 0:
		return sZero
	default:
		return sPos
	}
}

// signsOf returns the sign set described by a non-void value.
func signsOf(v Value) signSet {
	switch v.Kind {
	case KindExact:
		return signOf(v.Int)
	case KindAny:
		return sAll
	case KindPositive:
		return sPos
	case KindNegative:
		return sNeg
	case KindNonPositive:
		return sNeg | sZero
	case KindNonNegative:
		return sZero | sPos
	case KindNonZero:
		return sNeg | sPos
	default:
		return sNone
	}
}

// fromSigns returns the narrowest value describing s. The set {0} is the
// exact value zero. The empty set has no value.
func fromSigns(s signSet) (Value, bool) {
	switch s {
	case sZero:
		return Exact(0), true
	case sPos:
		return Positive(), true
	case sNeg:
		return Negative(), true
	case sNeg | sZero:
		return NonPositive(), true
	case sZero | sPos:
		return NonNegative(), true
	case sNeg | sPos:
		return NonZero(), true
	case sAll:
		return AnyInt(), true
	default:
		return Value{}, false
	}
}

func mustFromSigns(s signSet) Value {
	v, ok := fromSigns(s)
	if !ok {
		panic("absexec: empty sign set")
	}
	return v
}

// lift applies a per-sign table to every pair of signs of a and b.
func lift(a, b signSet, table func(x, y signSet) signSet) signSet {
	var out signSet
	for _, x := range []signSet{sNeg, sZero, sPos} {
		if !a.has(x) {
			continue
		}
		for _, y := range []signSet{sNeg, sZero, sPos} {
			if b.has(y) {
				out |= table(x, y)
			}
		}
	}
	return out
}

func addSigns(x, y signSet) signSet {
	switch {
	case x == sZero:
		return y
	case y == sZero:
		return x
	case x == y:
		return x
	default:
		return sAll
	}
}

func negSigns(s signSet) signSet {
	var out signSet
	if s.has(sNeg) {
		out |= sPos
	}
	if s.has(sZero) {
		out |= sZero
	}
	if s.has(sPos) {
		out |= sNeg
	}
	return out
}

func mulSigns(x, y signSet) signSet {
	switch {
	case x == sZero || y == sZero:
		return sZero
	case x == y:
		return sPos
	default:
		return sNeg
	}
}

// divSigns is truncating division by a non-zero divisor: the quotient may
// round to zero whenever the dividend is non-zero.
func divSigns(x, y signSet) signSet {
	switch {
	case y == sZero:
		return sNone
	case x == sZero:
		return sZero
	case x == y:
		return sPos | sZero
	default:
		return sNeg | sZero
	}
}

// remSigns follows the dividend's sign, as in Java.
func remSigns(x, y signSet) signSet {
	switch {
	case y == sZero:
		return sNone
	case x == sZero:
		return sZero
	default:
		return x | sZero
	}
}

func checkOperands(op absint.BinaryOp, left, right Value) error {
	if left.IsVoid() || right.IsVoid() {
		return &DomainError{Op: string(op), Left: left, Right: right}
	}
	if left.Kind > KindNonZero || right.Kind > KindNonZero {
		return &DomainError{Op: string(op), Left: left, Right: right}
	}
	return nil
}

// AddValues returns left + right.
func AddValues(left, right Value) (Value, error) {
	if err := checkOperands(absint.Add, left, right); err != nil {
		return Value{}, err
	}
	if left.IsExact() && right.IsExact() {
		if n, ok := addExact(left.Int, right.Int); ok {
			return Exact(n), nil
		}
	}
	return mustFromSigns(lift(signsOf(left), signsOf(right), addSigns)), nil
}

// SubValues returns left - right.
func SubValues(left, right Value) (Value, error) {
	if err := checkOperands(absint.Sub, left, right); err != nil {
		return Value{}, err
	}
	if left.IsExact() && right.IsExact() {
		if n, ok := subExact(left.Int, right.Int); ok {
			return Exact(n), nil
		}
	}
	return mustFromSigns(lift(signsOf(left), negSigns(signsOf(right)), addSigns)), nil
}

// MulValues returns left * right.
func MulValues(left, right Value) (Value, error) {
	if err := checkOperands(absint.Mul, left, right); err != nil {
		return Value{}, err
	}
	if left.IsExact() && right.IsExact() {
		if n, ok := mulExact(left.Int, right.Int); ok {
			return Exact(n), nil
		}
	}
	return mustFromSigns(lift(signsOf(left), signsOf(right), mulSigns)), nil
}

// NegateValue returns 0 - v.
func NegateValue(v Value) (Value, error) {
	return SubValues(Exact(0), v)
}

// Severity grades a division fault.
type Severity uint8

const (
	NoFault Severity = iota
	PossibleFault
	ConfirmedFault
)

func (s Severity) String() string {
	switch s {
	case NoFault:
		return "none"
	case PossibleFault:
		return "possible"
	case ConfirmedFault:
		return "confirmed"
	default:
		return "unknown"
	}
}

// DivValues returns left / right truncated toward zero, and how certain a
// division by zero is. On ConfirmedFault the returned value is meaningless.
func DivValues(left, right Value) (Value, Severity, error) {
	return divide(absint.Div, left, right)
}

// RemValues returns left % right with the sign of left.
func RemValues(left, right Value) (Value, Severity, error) {
	return divide(absint.Rem, left, right)
}

func divide(op absint.BinaryOp, left, right Value) (Value, Severity, error) {
	if err := checkOperands(op, left, right); err != nil {
		return Value{}, NoFault, err
	}
	divisor := signsOf(right)
	if divisor == sZero {
		return Value{}, ConfirmedFault, nil
	}
	sev := NoFault
	if divisor.has(sZero) {
		sev = PossibleFault
	}
	if left.IsExact() && right.IsExact() {
		// right.Int != 0 here.
		if !(left.Int == math.MinInt64 && right.Int == -1) {
			if op == absint.Div {
				return Exact(left.Int / right.Int), sev, nil
			}
			return Exact(left.Int % right.Int), sev, nil
		}
	}
	table := divSigns
	if op == absint.Rem {
		table = remSigns
	}
	nonZero := divisor &^ sZero
	return mustFromSigns(lift(signsOf(left), nonZero, table)), sev, nil
}

func addExact(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) == (b > 0) {
		return c, true
	}
	return 0, false
}

func subExact(a, b int64) (int64, bool) {
	c := a - b
	if (c < a) == (b > 0) {
		return c, true
	}
	return 0, false
}

func mulExact(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return 0, false
	}
	return c, true
}
