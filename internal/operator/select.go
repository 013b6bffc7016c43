package operator

import (
	"fmt"

	"github.com/roach88/collections/internal/expr"
)

// Select adds an output column, optionally named.
type Select struct {
	expression expr.Expression
	name       string
	ref        *Ref
}

// NewSelect outputs e under name. An empty name leaves the column unnamed.
func NewSelect(e expr.Expression, name string) *Select {
	s := &Select{expression: e, name: name}
	s.ref = &Ref{sel: s}
	return s
}

func (s *Select) Expression() expr.Expression { return s.expression }
func (s *Select) Name() string { return s.name }

// Ref returns a leaf expression referring to the selected column by its
// output name, for use in orderings and groupings. It panics for unnamed
// selections.
func (s *Select) Ref() *Ref {
	if s.name == "" {
		panic(fmt.Sprintf("selection of %T has no name to refer to", s.expression))
	}
	return s.ref
}

func (s *Select) Apply(c Collection) Collection {
	if sc, ok := As[Selectable](c, CanSelect); ok {
		return sc.WithSelect(s)
	}
	return c
}

func (s *Select) Equal(other *Select) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.name == other.name && expr.Equal(s.expression, other.expression)
}

// Ref is a leaf referring to a named selection. It renders as the
// selection's output name.
type Ref struct {
	sel *Select
}

var (
	_ expr.Expression  = (*Ref)(nil)
	_ expr.NodeEqualer = (*Ref)(nil)
)

func (r *Ref) Type() expr.Primitive { return r.sel.expression.Type() }
func (r *Ref) Children() []expr.Expression { return nil }
func (r *Ref) WithChildren([]expr.Expression) expr.Expression { return r }

// Select returns the referenced selection.
func (r *Ref) Select() *Select { return r.sel }

// Name returns the output name the reference renders as.
func (r *Ref) Name() string { return r.sel.name }

func (r *Ref) EqualNode(other expr.Expression) bool {
	o, ok := other.(*Ref)
	return ok && r.sel.Equal(o.sel)
}
