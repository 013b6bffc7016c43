package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/collection"
	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/querysql"
	"github.com/roach88/collections/internal/source"
	"github.com/roach88/collections/internal/testutil"
)

// createShopStore opens a seeded SQLite store in a temporary directory.
func createShopStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDGenerator(&testutil.SequenceIDs{}),
	}, opts...)

	s, err := Open("sqlite", filepath.Join(t.TempDir(), "shop.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Exec(context.Background(), testutil.ShopSchema))
	return s
}

type shop struct {
	users, orders, products *source.TableSource
}

func newShop() shop {
	return shop{
		users:    source.NewTable(testutil.Users()),
		orders:   source.NewTable(testutil.Orders()),
		products: source.NewTable(testutil.Products()),
	}
}

func TestParseDriver(t *testing.T) {
	for name, want := range map[string]string{"": DriverSQLite, "sqlite": DriverSQLite, "postgres": DriverPostgres, "PGX": DriverPostgres} {
		got, err := ParseDriver(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := Open("mysql", "")
	assert.EqualError(t, err, `unknown driver "mysql"`)
}

func TestOpen_SQLite(t *testing.T) {
	s := createShopStore(t)
	assert.Equal(t, DriverSQLite, s.Driver())
	assert.Equal(t, querysql.Named, s.Dialect())

	var fk int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	s := createShopStore(t)
	sh := newShop()

	adults := collection.New(sh.users).
		Filter(operator.NewFilter(expr.Gt(sh.users.Col("age"), expr.Param("age", 18)))).
		OrderBy(operator.Asc(sh.users.Col("name")))

	res, err := s.Fetch(ctx, adults)
	require.NoError(t, err)
	assert.Equal(t, "query-1", res.ID)
	assert.Equal(t, []string{"id", "name", "email", "age"}, res.Columns)
	assert.Equal(t, [][]any{
		{int64(1), "ada", "ada@example.com", int64(36)},
		{int64(3), "chen", nil, int64(52)},
	}, res.Rows)

	second, err := s.Fetch(ctx, adults.Paginate(operator.CursorAt(1, 1)))
	require.NoError(t, err)
	require.Len(t, second.Rows, 1)
	assert.Equal(t, "chen", second.Rows[0][1])

	skipped, err := s.Fetch(ctx, adults.Paginate(operator.CursorAt(1, operator.Unlimited)))
	require.NoError(t, err)
	assert.Len(t, skipped.Rows, 1)
}

func TestFetch_DeepJoin(t *testing.T) {
	sh := newShop()
	userOrders := operator.InnerJoin(sh.orders, expr.Eq(sh.orders.Col("user_id"), sh.users.Col("id")))
	orderProducts := operator.InnerJoin(sh.products, expr.Eq(sh.products.Col("id"), sh.orders.Col("product_id")))

	lamps := operator.Compose(
		operator.Asc(sh.orders.Col("total")),
		operator.NewSelect(sh.orders.Col("total"), "total"),
		operator.NewSelect(sh.users.Col("name"), "buyer"),
		operator.NewFilter(expr.Eq(sh.products.Col("name"), expr.Const("lamp"))),
		operator.Deep(userOrders, orderProducts),
	).Apply(collection.New(sh.users))

	res, err := createShopStore(t).Fetch(context.Background(), lamps)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"buyer": "ada", "total": 20.0},
		{"buyer": "chen", "total": 40.0},
	}, res.Maps())
}

func TestFetch_LeftJoinKeepsUnmatchedRows(t *testing.T) {
	sh := newShop()
	g := collection.New(sh.users).
		Join(operator.LeftJoin(sh.orders, expr.Eq(sh.orders.Col("user_id"), sh.users.Col("id"))))
	g = g.Filter(operator.NewFilter(expr.IsNull(source.Col(g.Source(), "id"))))
	g = g.Select(operator.NewSelect(sh.users.Col("name"), "name"))

	res, err := createShopStore(t).Fetch(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"brian"}}, res.Rows)
}

func TestFetch_Grouped(t *testing.T) {
	ctx := context.Background()
	s := createShopStore(t)
	sh := newShop()

	spent := collection.New(sh.orders).
		GroupBy(operator.NewGroup(sh.orders.Col("user_id"))).
		Aggregate(operator.NewAggregate(expr.Sum(sh.orders.Col("total")))).
		OrderBy(operator.Asc(sh.orders.Col("user_id")))

	res, err := s.Fetch(ctx, spent)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1), 170.0}, {int64(3), 40.0}}, res.Rows)

	n, err := s.Count(ctx, spent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCount_IgnoresCursor(t *testing.T) {
	sh := newShop()
	adults := collection.New(sh.users).
		Filter(operator.NewFilter(expr.Gte(sh.users.Col("age"), expr.Const(18)))).
		Paginate(operator.First)

	n, err := createShopStore(t).Count(context.Background(), adults)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestModelFetch(t *testing.T) {
	m := collection.NewModel(testutil.Users())
	named := operator.Compose(
		operator.NewCursor(2),
		operator.Desc(source.Col(m.Source(), "age")),
	).Apply(m)

	res, err := createShopStore(t).Fetch(context.Background(), named)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "chen", res.Rows[0][1])
	assert.Equal(t, "ada", res.Rows[1][1])
}

func TestQueryLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := createShopStore(t, WithLogger(logger))

	_, err := s.Fetch(context.Background(), collection.New(newShop().users))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=\"running query\" query_id=query-1 dialect=named")
	assert.Contains(t, out, "msg=\"query executed\" query_id=query-1 rows=3")
}

func TestQueryError(t *testing.T) {
	s := createShopStore(t)
	ghosts := source.NewTable(catalog.NewTable("ghosts", catalog.Col("id", expr.Int)))

	_, err := s.Fetch(context.Background(), collection.New(ghosts))
	require.Error(t, err)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "query-1", qe.ID)
	assert.Equal(t, "SELECT * FROM ghosts", qe.Text)
	assert.Contains(t, err.Error(), "no such table: ghosts")
}

func TestRun_DialectMismatch(t *testing.T) {
	s := createShopStore(t)
	q, err := querysql.Compile(collection.New(newShop().users), querysql.WithDialect(querysql.Dollar))
	require.NoError(t, err)

	_, err = s.Run(context.Background(), q)
	assert.EqualError(t, err, "query compiled for dollar, store expects named")
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
