// Package source models the origins a collection reads columns from.
//
// A TableSource exposes one Placeholder per column of a catalog table. A
// JoinSource attaches another table to an origin source and exposes its own
// placeholders for the joined columns while forwarding every placeholder
// of the origin. Ownership is decided by identity, so a placeholder is
// attributable to exactly one source in a chain.
package source

import (
	"fmt"

	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/expr"
)

// Source is a named origin of columns.
type Source interface {
	// Name is the alias the source is rendered under.
	Name() string

	// Table is the table whose columns this source owns.
	Table() *catalog.Table

	// Placeholders lists every placeholder reachable from the source,
	// innermost origin first.
	Placeholders() []*Placeholder

	// Contains reports whether the placeholder is owned by this source or
	// forwarded from its origins.
	Contains(p *Placeholder) bool

	// Resolve maps a placeholder onto the placeholder this source uses for
	// the same column. Placeholders of tables joined earlier in the chain
	// resolve to the join's own placeholder.
	Resolve(p *Placeholder) (*Placeholder, bool)

	// Lookup finds the placeholder this source owns for a column.
	Lookup(column string) (*Placeholder, bool)
}

// Col returns the placeholder src owns for column and panics when the
// column does not exist.
func Col(src Source, column string) *Placeholder {
	p, ok := src.Lookup(column)
	if !ok {
		panic(fmt.Sprintf("source %s has no column %q", src.Name(), column))
	}
	return p
}

// Placeholder is a leaf expression bound to one column of one source.
type Placeholder struct {
	source Source
	column *catalog.Column
}

var _ expr.Expression = (*Placeholder)(nil)

func (p *Placeholder) Type() expr.Primitive { return p.column.Type() }
func (p *Placeholder) Children() []expr.Expression { return nil }
func (p *Placeholder) WithChildren([]expr.Expression) expr.Expression { return p }

func (p *Placeholder) Source() Source { return p.source }
func (p *Placeholder) Column() *catalog.Column { return p.column }

// Qualifier is the alias the placeholder's column is rendered under.
// Columns of embedded relationships live on the nearest real origin.
func (p *Placeholder) Qualifier() string {
	src := p.source
	for {
		j, ok := src.(*JoinSource)
		if !ok || j.kind != Embedded {
			return src.Name()
		}
		src = j.origin
	}
}

func (p *Placeholder) String() string {
	return p.Qualifier() + "." + p.column.Name()
}

// TableSource reads a single table under an alias.
type TableSource struct {
	table        *catalog.Table
	name         string
	placeholders []*Placeholder
}

// NewTable sources a table under its default alias.
func NewTable(t *catalog.Table) *TableSource {
	return NewTableAs(t, t.DefaultAlias())
}

// NewTableAs sources a table under an explicit alias.
func NewTableAs(t *catalog.Table, alias string) *TableSource {
	s := &TableSource{table: t, name: alias}
	s.placeholders = ownPlaceholders(s, t)
	return s
}

func ownPlaceholders(src Source, t *catalog.Table) []*Placeholder {
	cols := t.Columns()
	ps := make([]*Placeholder, len(cols))
	for i, c := range cols {
		ps[i] = &Placeholder{source: src, column: c}
	}
	return ps
}

func (s *TableSource) Name() string { return s.name }
func (s *TableSource) Table() *catalog.Table { return s.table }
func (s *TableSource) Placeholders() []*Placeholder { return s.placeholders }

func (s *TableSource) Contains(p *Placeholder) bool {
	return p != nil && p.source == Source(s)
}

func (s *TableSource) Resolve(p *Placeholder) (*Placeholder, bool) {
	if s.Contains(p) {
		return p, true
	}
	return nil, false
}

func (s *TableSource) Lookup(column string) (*Placeholder, bool) {
	c, ok := s.table.Column(column)
	if !ok {
		return nil, false
	}
	return s.placeholders[c.Index()], true
}

// Col returns the placeholder for column, panicking when it is missing.
func (s *TableSource) Col(column string) *Placeholder { return Col(s, column) }

func (s *TableSource) String() string { return s.name }
