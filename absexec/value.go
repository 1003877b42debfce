package absexec

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies abstract values.
type Kind uint8

const (
	KindVoid Kind = iota
	KindExact
	KindAny
	KindPositive
	KindNegative
	KindNonPositive
	KindNonNegative
	KindNonZero
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "Void"
	case KindExact:
		return "Exact"
	case KindAny:
		return "Any"
	case KindPositive:
		return "Positive"
	case KindNegative:
		return "Negative"
	case KindNonPositive:
		return "NonPositive"
	case KindNonNegative:
		return "NonNegative"
	case KindNonZero:
		return "NonZero"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// NoHome marks a value without a single originating local slot.
const NoHome = -1

// Value is the abstract value held in locals and on the operand stack.
// Only KindExact values carry an integer. Home is the local slot the value
// was last loaded from or stored to, or NoHome.
type Value struct {
	Kind Kind
	Int  int64
	Home int
}

// Constructors.
func Void() Value         { return Value{Kind: KindVoid, Home: NoHome} }
func Exact(n int64) Value { return Value{Kind: KindExact, Int: n, Home: NoHome} }
func AnyInt() Value       { return Value{Kind: KindAny, Home: NoHome} }
func Positive() Value     { return Value{Kind: KindPositive, Home: NoHome} }
func Negative() Value     { return Value{Kind: KindNegative, Home: NoHome} }
func NonPositive() Value  { return Value{Kind: KindNonPositive, Home: NoHome} }
func NonNegative() Value  { return Value{Kind: KindNonNegative, Home: NoHome} }
func NonZero() Value      { return Value{Kind: KindNonZero, Home: NoHome} }

// WithHome returns v tagged with slot as its home.
func (v Value) WithHome(slot int) Value {
	v.Home = slot
	return v
}

// WithoutHome returns v with no home slot.
func (v Value) WithoutHome() Value {
	v.Home = NoHome
	return v
}

// HomeSlot returns the home slot and whether one is set.
func (v Value) HomeSlot() (int, bool) {
	return v.Home, v.Home >= 0
}

func (v Value) IsVoid() bool  { return v.Kind == KindVoid }
func (v Value) IsExact() bool { return v.Kind == KindExact }

// Same reports whether a and b denote the same abstraction, ignoring home.
func Same(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	return a.Kind != KindExact || a.Int == b.Int
}

// Contains reports whether the concrete integer n is described by v.
func (v Value) Contains(n int64) bool {
	switch v.Kind {
	case KindExact:
		return v.Int == n
	case KindVoid:
		return false
	}
	return signsOf(v).has(signOf(n))
}

func (v Value) String() string {
	var s string
	if v.Kind == KindExact {
		s = "Exact(" + strconv.FormatInt(v.Int, 10) + ")"
	} else {
		s = v.Kind.String()
	}
	if v.Home >= 0 {
		s += "@" + strconv.Itoa(v.Home)
	}
	return s
}

// ParseValue parses a textual abstraction: void, any, positive, negative,
// nonpositive, nonnegative, nonzero (case and '-'/'_' insensitive), or a
// decimal integer for an exact value.
func ParseValue(s string) (Value, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s)))
	switch norm {
	case "void":
		return Void(), nil
	case "any", "anyint", "top":
		return AnyInt(), nil
	case "positive", "pos":
		return Positive(), nil
	case "negative", "neg":
		return Negative(), nil
	case "nonpositive":
		return NonPositive(), nil
	case "nonnegative":
		return NonNegative(), nil
	case "nonzero":
		return NonZero(), nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid abstract value %q", s)
	}
	return Exact(n), nil
}

// Parameters tags each value with its position as home slot.
func Parameters(vals ...Value) []Value {
	params := make([]Value, len(vals))
	for i, v := range vals {
		params[i] = v.WithHome(i)
	}
	return params
}
