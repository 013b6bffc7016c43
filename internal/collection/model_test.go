package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
	"github.com/roach88/collections/internal/testutil"
)

func TestModel_Alias(t *testing.T) {
	m := NewModel(testutil.Users())
	assert.Equal(t, "user", m.Source().Name())
	assert.False(t, m.Capabilities().Has(operator.CanSelect))
}

func TestModel_GroupTransitions(t *testing.T) {
	users := source.NewTable(testutil.Users())
	m := ModelOf(users)
	byAge := operator.NewGroup(users.Col("age"))

	grouped, ok := byAge.Apply(m).(*Aggregation)
	require.True(t, ok)
	assert.True(t, grouped.IsGrouped())
	assert.Same(t, grouped, byAge.Apply(grouped))

	back := operator.Without(byAge).Apply(grouped)
	assert.Same(t, m, back)
}

func TestModel_AggregateTransitions(t *testing.T) {
	users := source.NewTable(testutil.Users())
	m := ModelOf(users)
	count := operator.NewAggregate(expr.Count())
	byAge := operator.NewGroup(users.Col("age"))

	agg, ok := count.Apply(m).(*Aggregation)
	require.True(t, ok)
	assert.True(t, agg.IsAggregated())
	assert.False(t, agg.IsGrouped())

	both := byAge.Apply(agg).(*Aggregation)

	// removing only the aggregate keeps the aggregation
	grouped, ok := operator.Without(count).Apply(both).(*Aggregation)
	require.True(t, ok)
	assert.True(t, grouped.IsGrouped())

	assert.Same(t, m, operator.Without(byAge).Apply(grouped))
}

func TestModel_OtherChangesLeaveBase(t *testing.T) {
	users := source.NewTable(testutil.Users())
	m := ModelOf(users)
	byAge := operator.NewGroup(users.Col("age"))
	adults := operator.NewFilter(expr.Gt(users.Col("age"), expr.Const(18)))

	grouped := byAge.Apply(m)
	filtered := adults.Apply(grouped)
	back, ok := operator.Without(byAge).Apply(filtered).(*Model)
	require.True(t, ok)

	assert.NotSame(t, m, back)
	assert.Len(t, back.Filters(), 1)
	assert.Same(t, users, back.Graph().Root())
}

func TestModel_NoOps(t *testing.T) {
	users := source.NewTable(testutil.Users())
	m := ModelOf(users)

	assert.Same(t, m, operator.Without(operator.NewGroup(users.Col("age"))).Apply(m))
	assert.Same(t, m, operator.Without(operator.NewAggregate(expr.Count())).Apply(m))
	assert.Same(t, m, operator.NewSelect(users.Col("id"), "id").Apply(m))
	assert.Same(t, m, operator.All.Apply(m))

	filtered := operator.NewFilter(expr.Const(true)).Apply(m)
	_, isModel := filtered.(*Model)
	assert.True(t, isModel)
	assert.Same(t, filtered, operator.NewFilter(expr.Const(true)).Apply(filtered))
}

func TestModel_Join(t *testing.T) {
	users := source.NewTable(testutil.Users())
	orders := source.NewTable(testutil.Orders())
	m := ModelOf(users)

	join := operator.InnerJoin(orders, expr.Eq(orders.Col("user_id"), users.Col("id")))
	joined := join.Apply(m).(*Model)
	assert.True(t, joined.IsJoined())
	assert.Equal(t, "orders", joined.Source().Name())

	cursor := operator.Default.Apply(joined).(*Model)
	assert.Equal(t, operator.Default, cursor.Cursor())
	assert.Same(t, joined, joined.WithoutJoin(operator.CrossJoin(orders)))

	unjoined := operator.Without(join).Apply(joined).(*Model)
	assert.False(t, unjoined.IsJoined())
	assert.Equal(t, "user", unjoined.Source().Name())
}
