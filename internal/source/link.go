package source

import (
	"fmt"

	"github.com/roach88/collections/internal/expr"
)

// UnattributedPlaceholderError reports a join predicate placeholder that
// belongs neither to the join's origin chain nor to the joined table.
type UnattributedPlaceholderError struct {
	Join        string
	Placeholder *Placeholder
}

func (e *UnattributedPlaceholderError) Error() string {
	return fmt.Sprintf("join %s: placeholder %s belongs to neither the origin nor the joined table",
		e.Join, e.Placeholder)
}

// AmbiguousPlaceholderError reports a join predicate placeholder that
// belongs to both the join's origin chain and the joined table, as in a
// join of a source onto itself.
type AmbiguousPlaceholderError struct {
	Join        string
	Placeholder *Placeholder
}

func (e *AmbiguousPlaceholderError) Error() string {
	return fmt.Sprintf("join %s: placeholder %s belongs to both the origin and the joined table",
		e.Join, e.Placeholder)
}

// Linker rewrites a predicate written against a join's origin and joined
// table so that joined columns reference the join's own placeholders.
//
// Subtrees without rewritten placeholders are returned by reference. A
// Linker holds scratch stacks and must not be shared between concurrent
// calls; the zero value is ready to use.
type Linker struct {
	walker expr.Walker

	// values holds linked subtrees; cursors the height of values when each
	// open node was entered; identity whether each open node is unchanged.
	values   []expr.Expression
	cursors  []int
	identity []bool
}

// Link returns predicate attributed to join.
func (l *Linker) Link(join *JoinSource, predicate expr.Expression) (expr.Expression, error) {
	defer l.reset()

	l.walker.Reset(predicate)
	for !l.walker.Done() {
		for l.walker.CanEnter() {
			l.walker.Enter()
			l.cursors = append(l.cursors, len(l.values))
			l.identity = append(l.identity, true)
		}
		if l.walker.CanExit() {
			if err := l.exit(join, l.walker.Exit()); err != nil {
				return nil, err
			}
		}
	}

	if len(l.values) != 1 {
		return predicate, nil
	}
	return l.values[0], nil
}

func (l *Linker) exit(join *JoinSource, node expr.Expression) error {
	top := len(l.cursors) - 1
	cursor, unchanged := l.cursors[top], l.identity[top]
	l.cursors = l.cursors[:top]
	l.identity = l.identity[:top]

	if p, ok := node.(*Placeholder); ok {
		linked, err := attribute(join, p)
		if err != nil {
			return err
		}
		l.values = append(l.values, linked)
		if linked != p {
			l.dirtyParent()
		}
		return nil
	}

	if unchanged {
		l.values = append(l.values[:cursor], node)
		return nil
	}

	children := make([]expr.Expression, len(l.values)-cursor)
	copy(children, l.values[cursor:])
	l.values = append(l.values[:cursor], node.WithChildren(children))
	l.dirtyParent()
	return nil
}

func (l *Linker) dirtyParent() {
	if n := len(l.identity); n > 0 {
		l.identity[n-1] = false
	}
}

func (l *Linker) reset() {
	clear(l.values)
	l.values = l.values[:0]
	l.cursors = l.cursors[:0]
	l.identity = l.identity[:0]
	l.walker.Reset(nil)
}

func attribute(join *JoinSource, p *Placeholder) (*Placeholder, error) {
	if p.source == Source(join) {
		return p, nil
	}
	resolved, inOrigin := join.origin.Resolve(p)
	inJoined := join.joined.Contains(p)
	switch {
	case inOrigin && inJoined:
		return nil, &AmbiguousPlaceholderError{Join: join.name, Placeholder: p}
	case inOrigin:
		return resolved, nil
	case inJoined:
		return join.own[p.column.Index()], nil
	}
	return nil, &UnattributedPlaceholderError{Join: join.name, Placeholder: p}
}
