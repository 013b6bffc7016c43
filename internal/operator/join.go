package operator

import (
	"fmt"
	"strings"

	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/source"
)

// Joiner is a join operator: a single Join or a DeepJoin chain.
type Joiner interface {
	Operator

	// Steps lists the single joins, innermost first.
	Steps() []*Join
}

// Join attaches a table to a collection under a name. Joins are keyed by
// name: a collection holds at most one join per name.
type Join struct {
	name      string
	kind      source.JoinKind
	joined    *source.TableSource
	predicate expr.Expression
}

// NewJoin joins a table under the table source's name. The predicate may
// reference the collection's source, tables joined earlier and joined.
func NewJoin(kind source.JoinKind, joined *source.TableSource, predicate expr.Expression) *Join {
	return &Join{name: joined.Name(), kind: kind, joined: joined, predicate: predicate}
}

func InnerJoin(joined *source.TableSource, on expr.Expression) *Join {
	return NewJoin(source.Inner, joined, on)
}

func LeftJoin(joined *source.TableSource, on expr.Expression) *Join {
	return NewJoin(source.LeftOuter, joined, on)
}

func RightJoin(joined *source.TableSource, on expr.Expression) *Join {
	return NewJoin(source.RightOuter, joined, on)
}

func CrossJoin(joined *source.TableSource) *Join {
	return NewJoin(source.Cross, joined, nil)
}

// Embeddable names a relationship stored on the origin rows. It renders
// no join clause; its columns render against the origin.
func Embeddable(joined *source.TableSource, name string) *Join {
	j := NewJoin(source.Embedded, joined, nil)
	if name != "" {
		j.name = name
	}
	return j
}

// As returns the join renamed.
func (j *Join) As(name string) *Join {
	if name == j.name {
		return j
	}
	clone := *j
	clone.name = name
	return &clone
}

func (j *Join) Name() string { return j.name }
func (j *Join) Kind() source.JoinKind { return j.kind }
func (j *Join) Joined() *source.TableSource { return j.joined }
func (j *Join) Predicate() expr.Expression { return j.predicate }
func (j *Join) Steps() []*Join { return []*Join{j} }

func (j *Join) Apply(c Collection) Collection {
	if jc, ok := As[Joinable](c, CanJoin); ok {
		return jc.WithJoin(j)
	}
	return c
}

// Equal compares joins by name, kind, joined source identity and
// predicate structure.
func (j *Join) Equal(other *Join) bool {
	if j == other {
		return true
	}
	if j == nil || other == nil {
		return false
	}
	if j.name != other.name || j.kind != other.kind || j.joined != other.joined {
		return false
	}
	if j.predicate == nil || other.predicate == nil {
		return j.predicate == nil && other.predicate == nil
	}
	return expr.Equal(j.predicate, other.predicate)
}

// Source builds the join source attaching j to origin.
func (j *Join) Source(origin source.Source) (*source.JoinSource, error) {
	return source.NewJoin(j.kind, origin, j.joined, j.predicate, j.name)
}

// DuplicateJoinError reports two different joins registered under one
// name on the same collection.
type DuplicateJoinError struct {
	Name      string
	Existing  *Join
	Requested *Join
}

func (e *DuplicateJoinError) Error() string {
	return fmt.Sprintf("join %q is already defined on this collection with a different definition", e.Name)
}

// DeepJoin joins a chain of tables, each step able to reference the tables
// joined before it.
type DeepJoin struct {
	steps []*Join
}

// Deep chains joins. Nested deep joins are flattened.
func Deep(base Joiner, next ...Joiner) *DeepJoin {
	d := &DeepJoin{steps: append([]*Join(nil), base.Steps()...)}
	for _, n := range next {
		d.steps = append(d.steps, n.Steps()...)
	}
	return d
}

// Steps returns a copy of the chain, innermost first.
func (d *DeepJoin) Steps() []*Join { return append([]*Join(nil), d.steps...) }

// Base returns every step but the last as a joiner. A single-step chain is
// its own base.
func (d *DeepJoin) Base() Joiner {
	if len(d.steps) <= 2 {
		return d.steps[0]
	}
	return &DeepJoin{steps: d.steps[:len(d.steps)-1]}
}

// Next returns the last step.
func (d *DeepJoin) Next() *Join { return d.steps[len(d.steps)-1] }

// Name joins the step names with underscores.
func (d *DeepJoin) Name() string {
	names := make([]string, len(d.steps))
	for i, s := range d.steps {
		names[i] = s.name
	}
	return strings.Join(names, "_")
}

// Apply joins every step, innermost first.
func (d *DeepJoin) Apply(c Collection) Collection {
	if _, ok := As[Joinable](c, CanJoin); !ok {
		return c
	}
	for _, s := range d.steps {
		c = s.Apply(c)
	}
	return c
}

func (d *DeepJoin) Equal(other *DeepJoin) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil || len(d.steps) != len(other.steps) {
		return false
	}
	for i := range d.steps {
		if !d.steps[i].Equal(other.steps[i]) {
			return false
		}
	}
	return true
}
