package collection

import (
	"fmt"

	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
)

// JoinNamed returns the join registered under name.
func (g *Graph) JoinNamed(name string) (*operator.Join, bool) {
	for _, j := range g.joins {
		if j.Name() == name {
			return j, true
		}
	}
	return nil, false
}

// Join attaches j to the graph's source.
//
// Joining an equal join twice returns the receiver. It panics with an
// *operator.DuplicateJoinError when a different join already uses the same
// name, with a *source.UnattributedPlaceholderError when the predicate
// references a table that is neither joined nor the root, and with a
// *source.AmbiguousPlaceholderError when a source is joined onto itself.
func (g *Graph) Join(j *operator.Join) *Graph {
	if !g.can(operator.CanJoin) {
		return g
	}
	if existing, ok := g.JoinNamed(j.Name()); ok {
		if existing.Equal(j) {
			return g
		}
		panic(&operator.DuplicateJoinError{Name: j.Name(), Existing: existing, Requested: j})
	}

	src, err := j.Source(g.src)
	if err != nil {
		panic(err)
	}

	c := g.clone()
	c.joins = append(append(make([]*operator.Join, 0, len(g.joins)+1), g.joins...), j)
	c.src = src
	return c
}

// Disjoin removes the join equal to j and rebuilds the join chain from the
// root with the remaining joins. Placeholders taken from the previous
// chain's join sources do not carry over; operators written against table
// sources do. It panics when a remaining join depends on the removed one.
func (g *Graph) Disjoin(j *operator.Join) *Graph {
	remaining, changed := without(g.joins, j)
	if !changed {
		return g
	}

	src := g.root
	for _, r := range remaining {
		next, err := r.Source(src)
		if err != nil {
			panic(fmt.Errorf("disjoin %s: join %s: %w", j.Name(), r.Name(), err))
		}
		src = next
	}

	c := g.clone()
	c.joins = remaining
	c.src = src
	return c
}

// Chain lists the graph's sources from the root to the outermost join.
func (g *Graph) Chain() []source.Source { return source.Chain(g.src) }
