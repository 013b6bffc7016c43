package expr

import (
	"reflect"
	"time"
)

// NodeEqualer is implemented by leaves defined outside this package that
// compare by value rather than by identity.
type NodeEqualer interface {
	EqualNode(other Expression) bool
}

// Equal reports whether two trees are structurally equal.
//
// Placeholders and other foreign leaves compare by identity unless they
// implement NodeEqualer. Literal values compare with time.Time.Equal for
// times and reflect.DeepEqual otherwise.
func Equal(a, b Expression) bool {
	type pair struct{ a, b Expression }

	stack := []pair{{a, b}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.a == top.b {
			continue
		}
		if top.a == nil || top.b == nil {
			return false
		}
		if !equalNode(top.a, top.b) {
			return false
		}

		left, right := top.a.Children(), top.b.Children()
		if len(left) != len(right) {
			return false
		}
		for i := range left {
			stack = append(stack, pair{left[i], right[i]})
		}
	}
	return true
}

func equalNode(a, b Expression) bool {
	switch x := a.(type) {
	case *Constant:
		y, ok := b.(*Constant)
		return ok && x.typ == y.typ && EqualValues(x.value, y.value)
	case *Parameter:
		y, ok := b.(*Parameter)
		return ok && x.name == y.name && x.typ == y.typ && EqualValues(x.value, y.value)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.op == y.op
	case *Logical:
		y, ok := b.(*Logical)
		return ok && x.op == y.op
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.op == y.op
	case *Call:
		y, ok := b.(*Call)
		return ok && x.name == y.name && x.typ == y.typ && x.aggregate == y.aggregate
	case *In:
		_, ok := b.(*In)
		return ok
	case NodeEqualer:
		return x.EqualNode(b)
	default:
		return false
	}
}

// EqualValues compares literal values: times by instant, everything else
// with reflect.DeepEqual.
func EqualValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}
