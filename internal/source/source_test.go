package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/testutil"
)

func TestTableSource_Placeholders(t *testing.T) {
	users := NewTable(testutil.Users())

	assert.Equal(t, "user", users.Name())
	require.Len(t, users.Placeholders(), 4)

	for i, p := range users.Placeholders() {
		assert.Equal(t, i, p.Column().Index())
		assert.Same(t, users, p.Source())
		assert.True(t, users.Contains(p))
	}

	age := users.Col("age")
	assert.Equal(t, expr.Int, age.Type())
	assert.Equal(t, "user.age", age.String())
	assert.Same(t, age, users.Col("age"))

	_, ok := users.Lookup("missing")
	assert.False(t, ok)
	assert.Panics(t, func() { users.Col("missing") })
}

func TestTableSource_DistinctSourcesDoNotShare(t *testing.T) {
	table := testutil.Users()
	a := NewTable(table)
	b := NewTableAs(table, "u2")

	assert.False(t, a.Contains(b.Col("id")))
	_, ok := a.Resolve(b.Col("id"))
	assert.False(t, ok)
	assert.Equal(t, "u2", b.Name())
}

func TestJoinSource_Placeholders(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())

	j := MustJoin(Inner, users, orders, expr.Eq(orders.Col("user_id"), users.Col("id")), "")

	assert.Equal(t, "orders", j.Name())
	assert.Same(t, orders, j.Joined())
	assert.Same(t, users, Source(j.Origin()))
	assert.Len(t, j.Placeholders(), 8)

	// origin placeholders are forwarded, joined ones are owned
	assert.Same(t, users.Col("id"), j.Placeholders()[0])
	assert.True(t, j.Contains(users.Col("id")))
	assert.True(t, j.Contains(j.Col("total")))
	assert.False(t, j.Contains(orders.Col("total")))
	assert.NotSame(t, orders.Col("total"), j.Col("total"))
	assert.Same(t, j, j.Col("total").Source())
	assert.Equal(t, "orders.total", j.Col("total").String())

	resolved, ok := j.Resolve(orders.Col("total"))
	require.True(t, ok)
	assert.Same(t, j.Col("total"), resolved)

	resolved, ok = j.Resolve(users.Col("age"))
	require.True(t, ok)
	assert.Same(t, users.Col("age"), resolved)
}

func TestJoinSource_CustomName(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())

	j := MustJoin(LeftOuter, users, orders, expr.Eq(orders.Col("user_id"), users.Col("id")), "purchases")
	assert.Equal(t, "purchases", j.Name())
	assert.Equal(t, "purchases.id", j.Col("id").String())
	assert.Equal(t, LeftOuter, j.Kind())
}

func TestJoinSource_CrossWithoutPredicate(t *testing.T) {
	users := NewTable(testutil.Users())
	products := NewTable(testutil.Products())

	j, err := NewJoin(Cross, users, products, nil, "")
	require.NoError(t, err)
	assert.Nil(t, j.Predicate())
}

func TestChain(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())
	products := NewTable(testutil.Products())

	j1 := MustJoin(Inner, users, orders, expr.Eq(orders.Col("user_id"), users.Col("id")), "")
	j2 := MustJoin(Inner, j1, products, expr.Eq(products.Col("id"), orders.Col("product_id")), "")

	chain := Chain(j2)
	require.Len(t, chain, 3)
	assert.Same(t, users, chain[0])
	assert.Same(t, j1, chain[1])
	assert.Same(t, j2, chain[2])
	assert.Same(t, users, Root(j2))

	assert.Equal(t, []Source{users}, Chain(users))
	assert.Len(t, j2.Placeholders(), 11)
}

func TestJoinSource_ResolvesEarlierJoinedTables(t *testing.T) {
	users := NewTable(testutil.Users())
	orders := NewTable(testutil.Orders())
	products := NewTable(testutil.Products())

	j1 := MustJoin(Inner, users, orders, expr.Eq(orders.Col("user_id"), users.Col("id")), "")
	j2 := MustJoin(Inner, j1, products, expr.Eq(products.Col("id"), orders.Col("product_id")), "")

	resolved, ok := j2.Resolve(orders.Col("total"))
	require.True(t, ok)
	assert.Same(t, j1.Col("total"), resolved)

	pred := j2.Predicate().(*expr.Binary)
	assert.Same(t, j2.Col("id"), pred.Left())
	assert.Same(t, j1.Col("product_id"), pred.Right())
}

func TestPlaceholder_EmbeddedQualifier(t *testing.T) {
	users := NewTable(testutil.Users())
	addresses := NewTable(testutil.Addresses())
	orders := NewTable(testutil.Orders())

	j1 := MustJoin(Inner, users, orders, expr.Eq(orders.Col("user_id"), users.Col("id")), "")
	embedded := MustJoin(Embedded, j1, addresses, nil, "address")

	assert.Equal(t, "orders.city", embedded.Col("city").String())
	assert.Equal(t, "address", embedded.Name())

	direct := MustJoin(Embedded, users, addresses, nil, "")
	assert.Equal(t, "user.zip", direct.Col("zip").String())
}

func TestParseJoinKind(t *testing.T) {
	testCases := map[string]JoinKind{
		"":            Inner,
		"inner":       Inner,
		"cross":       Cross,
		"left":        LeftOuter,
		"right_outer": RightOuter,
		"embedded":    Embedded,
	}
	for name, want := range testCases {
		got, ok := ParseJoinKind(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseJoinKind("full")
	assert.False(t, ok)
	assert.Equal(t, "LEFT OUTER", LeftOuter.Keyword())
}
