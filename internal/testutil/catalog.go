package testutil

import (
	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/expr"
)

// Users is a users table bound to the User entity (default alias "user").
func Users() *catalog.Table {
	return catalog.NewEntityTable("User", "users",
		catalog.Col("id", expr.Int),
		catalog.Col("name", expr.String),
		catalog.Col("email", expr.String),
		catalog.Col("age", expr.Int),
	)
}

// Orders is an orders table without an entity (default alias "orders").
func Orders() *catalog.Table {
	return catalog.NewTable("orders",
		catalog.Col("id", expr.Int),
		catalog.Col("user_id", expr.Int),
		catalog.Col("product_id", expr.Int),
		catalog.Col("total", expr.Float),
	)
}

// Products is a products table without an entity.
func Products() *catalog.Table {
	return catalog.NewTable("products",
		catalog.Col("id", expr.Int),
		catalog.Col("name", expr.String),
		catalog.Col("price", expr.Float),
	)
}

// Addresses is a column group embedded in users rows.
func Addresses() *catalog.Table {
	return catalog.NewTable("addresses",
		catalog.Col("city", expr.String),
		catalog.Col("zip", expr.String),
	)
}

// Shop returns a catalog holding Users, Orders and Products.
func Shop() *catalog.Catalog {
	cat, err := catalog.New(Users(), Orders(), Products())
	if err != nil {
		panic(err)
	}
	return cat
}

// ShopSchema is the SQLite DDL matching Shop, with a few seeded rows.
const ShopSchema = `
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, email TEXT, age INTEGER);
CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL, product_id INTEGER NOT NULL, total REAL NOT NULL);
CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL, price REAL NOT NULL);

INSERT INTO users (id, name, email, age) VALUES
	(1, 'ada', 'ada@example.com', 36),
	(2, 'brian', 'brian@example.com', 17),
	(3, 'chen', NULL, 52);

INSERT INTO products (id, name, price) VALUES
	(1, 'lamp', 20.0),
	(2, 'desk', 150.0);

INSERT INTO orders (id, user_id, product_id, total) VALUES
	(1, 1, 1, 20.0),
	(2, 1, 2, 150.0),
	(3, 3, 1, 40.0);
`
