package expr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type opaqueLeaf struct{ id int }

func (o *opaqueLeaf) Type() Primitive { return Int }
func (o *opaqueLeaf) Children() []Expression { return nil }
func (o *opaqueLeaf) WithChildren([]Expression) Expression { return o }

func TestEqual(t *testing.T) {
	leaf := &opaqueLeaf{id: 1}
	sameShape := &opaqueLeaf{id: 1}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	testCases := []struct {
		name string
		a, b Expression
		want bool
	}{
		{"identical pointer", leaf, leaf, true},
		{"foreign leaves by identity", leaf, sameShape, false},
		{"constants by value", Const(1), Const(1), true},
		{"constants differ", Const(1), Const(2), false},
		{"constant type differs", Const(1), Const(1.0), false},
		{"params by name and value", Param("a", "x"), Param("a", "x"), true},
		{"params differ by name", Param("a", "x"), Param("b", "x"), false},
		{"times compare by instant", Const(at), Const(at.In(time.FixedZone("x", 3600))), true},
		{"nested", And(Eq(leaf, Const(1)), IsNull(leaf)), And(Eq(leaf, Const(1)), IsNull(leaf)), true},
		{"operator differs", Eq(leaf, Const(1)), NotEq(leaf, Const(1)), false},
		{"arity differs", And(Const(true)), And(Const(true), Const(true)), false},
		{"kind differs", And(Const(true)), Or(Const(true)), false},
		{"calls", Count(), Count(), true},
		{"calls differ", Count(), Count(leaf), false},
		{"in lists", InList(leaf, Const(1), Const(2)), InList(leaf, Const(1), Const(2)), true},
		{"nil", nil, Const(1), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Equal(tc.a, tc.b))
			assert.Equal(t, tc.want, Equal(tc.b, tc.a))
		})
	}
}
