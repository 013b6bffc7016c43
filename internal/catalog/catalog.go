// Package catalog describes the tables and columns that sources are built
// over. Metadata is plain data: loading it (see LoadCUE) is separate from
// querying it.
package catalog

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/collections/internal/expr"
)

// ColumnDef declares a column when building a table.
type ColumnDef struct {
	Name string
	Type expr.Primitive
}

// Col is shorthand for ColumnDef{name, typ}.
func Col(name string, typ expr.Primitive) ColumnDef {
	return ColumnDef{Name: name, Type: typ}
}

// Column is one typed column of a Table.
type Column struct {
	name  string
	typ   expr.Primitive
	index int
	table *Table
}

func (c *Column) Name() string { return c.name }
func (c *Column) Type() expr.Primitive { return c.typ }
func (c *Column) Table() *Table { return c.table }

// Index returns the position of the column within its table.
func (c *Column) Index() int { return c.index }

func (c *Column) String() string { return c.table.name + "." + c.name }

// Table is an ordered set of columns with a name and an optional entity
// name. Tables are immutable once built.
type Table struct {
	name    string
	entity  string
	columns []*Column
	byName  map[string]*Column
}

// NewTable builds a table. Identifiers are NFC-normalised. It panics on
// duplicate column names.
func NewTable(name string, columns ...ColumnDef) *Table {
	return NewEntityTable("", name, columns...)
}

// NewEntityTable builds a table bound to an entity name. The entity name
// drives DefaultAlias.
func NewEntityTable(entity, name string, columns ...ColumnDef) *Table {
	t := &Table{
		name:    norm.NFC.String(name),
		entity:  norm.NFC.String(entity),
		columns: make([]*Column, 0, len(columns)),
		byName:  make(map[string]*Column, len(columns)),
	}
	for i, def := range columns {
		col := &Column{name: norm.NFC.String(def.Name), typ: def.Type, index: i, table: t}
		if _, dup := t.byName[col.name]; dup {
			panic(fmt.Sprintf("catalog: duplicate column %q in table %q", col.name, t.name))
		}
		t.columns = append(t.columns, col)
		t.byName[col.name] = col
	}
	return t
}

func (t *Table) Name() string { return t.name }
func (t *Table) Entity() string { return t.entity }

// Columns returns the columns in declaration order. The slice must not be
// modified.
func (t *Table) Columns() []*Column { return t.columns }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.byName[norm.NFC.String(name)]
	return c, ok
}

// DefaultAlias returns the alias used when a table is sourced without an
// explicit one: the entity name with its first letter lower-cased, or the
// table name for tables without an entity.
func (t *Table) DefaultAlias() string {
	if t.entity == "" {
		return t.name
	}
	return LowerFirst(t.entity)
}

func (t *Table) String() string { return t.name }

var lower = cases.Lower(language.Und)

// LowerFirst lower-cases the first letter of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return lower.String(string(r)) + s[size:]
}

// Catalog is an ordered, name-indexed set of tables.
type Catalog struct {
	tables []*Table
	byName map[string]*Table
}

// New builds a catalog. Table names must be unique.
func New(tables ...*Table) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if _, dup := c.byName[t.name]; dup {
			return nil, fmt.Errorf("duplicate table %q", t.name)
		}
		c.tables = append(c.tables, t)
		c.byName[t.name] = t
	}
	return c, nil
}

// Tables returns the tables in declaration order.
func (c *Catalog) Tables() []*Table { return c.tables }

// Table looks up a table by name.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.byName[norm.NFC.String(name)]
	return t, ok
}

// Len returns the number of tables.
func (c *Catalog) Len() int { return len(c.tables) }
