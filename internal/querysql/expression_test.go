package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
	"github.com/roach88/collections/internal/testutil"
)

func TestExpressionCompiler_Markers(t *testing.T) {
	users := source.NewTable(testutil.Users())
	c := NewExpressionCompiler(Named)

	bound := map[string]any{}
	bind := func(name string, value any) error {
		bound[name] = value
		return nil
	}

	text, markers, err := c.Compile(users,
		expr.And(expr.Eq(users.Col("name"), expr.Const("ada")), expr.Gt(users.Col("age"), expr.Param("min", 3))),
		"x_", bind)
	require.NoError(t, err)

	assert.Equal(t, "(user.name = ?) AND (user.age > ?)", text)
	assert.Equal(t, []string{"x_p0", "x_min"}, markers)
	assert.Equal(t, map[string]any{"x_p0": "ada", "x_min": 3}, bound)
}

func TestExpressionCompiler_Reuse(t *testing.T) {
	users := source.NewTable(testutil.Users())
	orders := source.NewTable(testutil.Orders())
	c := NewExpressionCompiler(Dollar)

	_, _, err := c.Compile(users, expr.Eq(orders.Col("id"), expr.Const(1)), "", nil)
	require.Error(t, err)

	text, markers, err := c.Compile(users, expr.Eq(users.Col("id"), expr.Const(1)), "", nil)
	require.NoError(t, err)
	assert.Equal(t, `"user"."id" = ?`, text)
	assert.Equal(t, []string{"p0"}, markers)
}

func TestExpressionCompiler_Ref(t *testing.T) {
	orders := source.NewTable(testutil.Orders())
	total := operator.NewSelect(expr.Sum(orders.Col("total")), "spent")

	text, _, err := NewExpressionCompiler(Named).Compile(orders, expr.Gt(total.Ref(), expr.Const(100.0)), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "spent > ?", text)
}

func TestExpressionCompiler_DeepTree(t *testing.T) {
	users := source.NewTable(testutil.Users())

	var e expr.Expression = users.Col("age")
	for i := 0; i < 20000; i++ {
		e = expr.Neg(e)
	}

	text, _, err := NewExpressionCompiler(Named).Compile(users, e, "", nil)
	require.NoError(t, err)
	assert.Len(t, text, 20000+len("user.age"))
}
