package querydef

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/collection"
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
)

// Plan is a built definition: a root source and the operator to apply to
// a collection over it.
type Plan struct {
	Name     string
	Root     *source.TableSource
	Operator operator.Operator
	Model    bool

	// Sources maps every alias of the definition to its table source.
	Sources map[string]*source.TableSource
}

// Collection applies the plan's operator to a fresh collection over Root.
func (p *Plan) Collection() operator.Collection {
	if p.Model {
		return p.Operator.Apply(collection.ModelOf(p.Root))
	}
	return p.Operator.Apply(collection.New(p.Root))
}

// Build resolves d against cat. params replaces the value of named
// parameters; naming a parameter the definition does not declare is an
// error.
func Build(d *Definition, cat *catalog.Catalog, params map[string]any) (*Plan, error) {
	b := &builder{def: d, cat: cat}
	plan, err := b.build(params)
	if err != nil {
		var de *DefinitionError
		if errors.As(err, &de) && de.Query == "" {
			de.Query = d.Name
		}
		return nil, err
	}
	return plan, nil
}

type builder struct {
	def *Definition
	cat *catalog.Catalog
	sc  *scope

	// ops in application order
	ops []operator.Operator
}

func (b *builder) build(params map[string]any) (*Plan, error) {
	root, err := b.tableSource(b.def.From, b.def.As, "from")
	if err != nil {
		return nil, err
	}
	b.sc = newScope(root, params)

	steps := []func() error{b.joins, b.filters, b.selections, b.groups, b.aggregates, b.orders, b.cursor}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(params)) {
		if !b.sc.used[name] {
			return nil, &DefinitionError{Field: "params", Message: fmt.Sprintf("unknown parameter %q", name)}
		}
	}

	slices.Reverse(b.ops)
	return &Plan{
		Name:     b.def.Name,
		Root:     root,
		Operator: operator.Compose(b.ops...),
		Model:    b.def.Model,
		Sources:  b.sc.sources,
	}, nil
}

func (b *builder) tableSource(table, alias, field string) (*source.TableSource, error) {
	t, ok := b.cat.Table(table)
	if !ok {
		return nil, &DefinitionError{Field: field, Message: fmt.Sprintf("unknown table %q", table)}
	}
	if alias == "" {
		return source.NewTable(t), nil
	}
	return source.NewTableAs(t, alias), nil
}

func (b *builder) joins() error {
	var (
		origin source.Source = b.sc.root
		steps  []operator.Joiner
	)
	for i, jd := range b.def.Joins {
		field := fmt.Sprintf("joins[%d]", i)

		joined, err := b.tableSource(jd.Table, jd.As, field+".table")
		if err != nil {
			return err
		}
		if _, dup := b.sc.sources[joined.Name()]; dup {
			return &DefinitionError{Field: field + ".as", Message: fmt.Sprintf("alias %q is already in use", joined.Name())}
		}
		b.sc.sources[joined.Name()] = joined

		kind, ok := source.ParseJoinKind(jd.Kind)
		if !ok {
			return &DefinitionError{Field: field + ".kind", Message: fmt.Sprintf("unknown join kind %q", jd.Kind)}
		}

		var j *operator.Join
		switch {
		case kind == source.Embedded:
			j = operator.Embeddable(joined, joined.Name())
		case jd.On.Kind == 0:
			if kind != source.Cross {
				return &DefinitionError{Field: field + ".on", Message: "is required for " + kind.Keyword() + " joins"}
			}
			j = operator.CrossJoin(joined)
		default:
			on, err := b.sc.expression(&jd.On, field+".on")
			if err != nil {
				return err
			}
			j = operator.NewJoin(kind, joined, on)
		}

		// attach now so an unattributable predicate is reported here
		// rather than when the plan is applied
		js, err := j.Source(origin)
		if err != nil {
			return &DefinitionError{Field: field + ".on", Message: err.Error(), Line: jd.On.Line, Column: jd.On.Column}
		}
		origin = js
		steps = append(steps, j)
	}

	switch len(steps) {
	case 0:
	case 1:
		b.ops = append(b.ops, steps[0])
	default:
		b.ops = append(b.ops, operator.Deep(steps[0], steps[1:]...))
	}
	return nil
}

func (b *builder) filters() error {
	for i := range b.def.Where {
		e, err := b.sc.expression(&b.def.Where[i], fmt.Sprintf("where[%d]", i))
		if err != nil {
			return err
		}
		b.ops = append(b.ops, operator.NewFilter(e))
	}
	return nil
}

func (b *builder) selections() error {
	for i := range b.def.Select {
		sd := &b.def.Select[i]
		field := fmt.Sprintf("select[%d]", i)

		e, err := b.sc.expression(&sd.Expr, field+".expr")
		if err != nil {
			return err
		}
		sel := operator.NewSelect(e, sd.Name)
		if sd.Name != "" {
			if _, dup := b.sc.selects[sd.Name]; dup {
				return &DefinitionError{Field: field + ".name", Message: fmt.Sprintf("selection %q is already defined", sd.Name)}
			}
			b.sc.selects[sd.Name] = sel
		}
		b.ops = append(b.ops, sel)
	}
	return nil
}

func (b *builder) groups() error {
	for i := range b.def.Group {
		e, err := b.sc.expression(&b.def.Group[i], fmt.Sprintf("group[%d]", i))
		if err != nil {
			return err
		}
		b.ops = append(b.ops, operator.NewGroup(e))
	}
	return nil
}

func (b *builder) aggregates() error {
	for i := range b.def.Aggregate {
		e, err := b.sc.expression(&b.def.Aggregate[i], fmt.Sprintf("aggregate[%d]", i))
		if err != nil {
			return err
		}
		b.ops = append(b.ops, operator.NewAggregate(e))
	}
	return nil
}

func (b *builder) orders() error {
	for i := range b.def.Order {
		od := &b.def.Order[i]
		e, err := b.sc.expression(&od.Expr, fmt.Sprintf("order[%d].expr", i))
		if err != nil {
			return err
		}
		dir := operator.DirectionAsc
		if od.Desc {
			dir = operator.DirectionDesc
		}
		b.ops = append(b.ops, operator.NewOrder(e, dir))
	}
	return nil
}

func (b *builder) cursor() error {
	c := b.def.Cursor
	if c == nil {
		return nil
	}
	limit := operator.Unlimited
	if c.Limit != nil {
		limit = *c.Limit
	}
	b.ops = append(b.ops, operator.CursorAt(c.Offset, limit))
	return nil
}
