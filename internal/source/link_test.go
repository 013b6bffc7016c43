package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/testutil"
)

func TestLink_PreservesUntouchedSubtrees(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())

	adult := expr.Gt(users.Col("age"), expr.Const(18))
	owned := expr.Eq(orders.Col("user_id"), users.Col("id"))
	predicate := expr.And(adult, owned)

	j := MustJoin(Inner, users, orders, predicate, "")

	linked, ok := j.Predicate().(*expr.Logical)
	require.True(t, ok)
	assert.NotSame(t, predicate, linked)

	children := linked.Children()
	require.Len(t, children, 2)
	assert.Same(t, adult, children[0])
	assert.NotSame(t, owned, children[1])

	rewritten := children[1].(*expr.Binary)
	assert.Same(t, j.Col("user_id"), rewritten.Left())
	assert.Same(t, users.Col("id"), rewritten.Right())

	// the input tree is untouched
	assert.Same(t, orders.Col("user_id"), owned.Left())
}

func TestLink_UnchangedPredicateIsReturnedAsIs(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())

	predicate := expr.And(
		expr.Gt(users.Col("age"), expr.Const(18)),
		expr.IsNotNull(users.Col("email")),
	)

	j := MustJoin(Inner, users, orders, predicate, "")
	assert.Same(t, predicate, j.Predicate())
}

func TestLink_DirtinessPropagatesToRoot(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())

	leftBranch := expr.Not(expr.IsNull(users.Col("name")))
	deep := expr.Not(expr.Not(expr.Gt(orders.Col("total"), expr.Const(10.0))))
	predicate := expr.Or(leftBranch, deep)

	j := MustJoin(Inner, users, orders, predicate, "")

	linked := j.Predicate()
	require.NotSame(t, predicate, linked)
	children := linked.Children()
	assert.Same(t, leftBranch, children[0])
	assert.NotSame(t, deep, children[1])

	var leaves []*Placeholder
	expr.Walk(linked, nil, func(e expr.Expression) {
		if p, ok := e.(*Placeholder); ok {
			leaves = append(leaves, p)
		}
	})
	require.Len(t, leaves, 2)
	assert.Same(t, users.Col("name"), leaves[0])
	assert.Same(t, j.Col("total"), leaves[1])
}

func TestLink_UnattributedPlaceholder(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())
	products := NewTable(testutil.Products())

	predicate := expr.Eq(orders.Col("product_id"), products.Col("id"))

	_, err := NewJoin(Inner, users, orders, predicate, "")
	require.Error(t, err)

	var unattributed *UnattributedPlaceholderError
	require.True(t, errors.As(err, &unattributed))
	assert.Same(t, products.Col("id"), unattributed.Placeholder)
	assert.Equal(t, "orders", unattributed.Join)
	assert.Contains(t, err.Error(), "products.id")

	assert.Panics(t, func() { MustJoin(Inner, users, orders, predicate, "") })
}

func TestLink_AmbiguousPlaceholder(t *testing.T) {
	users := NewTable(testutil.Users())
	predicate := expr.Eq(users.Col("id"), users.Col("age"))

	_, err := NewJoin(Inner, users, users, predicate, "boss")
	require.Error(t, err)

	var ambiguous *AmbiguousPlaceholderError
	require.True(t, errors.As(err, &ambiguous))
	assert.Same(t, users.Col("id"), ambiguous.Placeholder)
	assert.Equal(t, "boss", ambiguous.Join)
	assert.Contains(t, err.Error(), "belongs to both")
}

func TestLink_SelfJoinThroughAlias(t *testing.T) {
	users := NewTable(testutil.Users())
	bosses := NewTableAs(testutil.Users(), "boss")
	predicate := expr.Eq(users.Col("age"), bosses.Col("id"))

	j, err := NewJoin(Inner, users, bosses, predicate, "")
	require.NoError(t, err)

	linked, ok := j.Predicate().(*expr.Binary)
	require.True(t, ok)
	children := linked.Children()
	assert.Same(t, users.Col("age"), children[0])
	own, ok := j.Lookup("id")
	require.True(t, ok)
	assert.Same(t, own, children[1])
}

func TestLinker_ReusableAfterError(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())
	products := NewTable(testutil.Products())

	j := MustJoin(Inner, users, orders, nil, "")

	var l Linker
	_, err := l.Link(j, expr.And(expr.Eq(products.Col("id"), expr.Const(1)), expr.Const(true)))
	require.Error(t, err)

	linked, err := l.Link(j, expr.Eq(orders.Col("id"), expr.Const(1)))
	require.NoError(t, err)
	assert.Same(t, j.Col("id"), linked.(*expr.Binary).Left())

	assert.Empty(t, l.values)
	assert.Empty(t, l.cursors)
	assert.Empty(t, l.identity)
}

func TestLink_DeepTree(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())

	var predicate expr.Expression = expr.Gt(orders.Col("total"), expr.Const(1.0))
	for i := 0; i < 50000; i++ {
		predicate = expr.Not(predicate)
	}

	j := MustJoin(Inner, users, orders, predicate, "")

	var found *Placeholder
	expr.Walk(j.Predicate(), func(e expr.Expression) {
		if p, ok := e.(*Placeholder); ok {
			found = p
		}
	}, nil)
	assert.Same(t, j.Col("total"), found)
}
