package querydef

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
)

var binaryOps = map[string]expr.BinaryOp{
	"eq":   expr.OpEq,
	"ne":   expr.OpNotEq,
	"lt":   expr.OpLess,
	"lte":  expr.OpLessEq,
	"gt":   expr.OpGreater,
	"gte":  expr.OpGreaterEq,
	"like": expr.OpLike,
	"add":  expr.OpAdd,
	"sub":  expr.OpSub,
	"mul":  expr.OpMul,
	"div":  expr.OpDiv,
	"mod":  expr.OpMod,
}

var unaryOps = map[string]func(expr.Expression) expr.Expression{
	"not":         func(e expr.Expression) expr.Expression { return expr.Not(e) },
	"neg":         func(e expr.Expression) expr.Expression { return expr.Neg(e) },
	"is_null":     func(e expr.Expression) expr.Expression { return expr.IsNull(e) },
	"is_not_null": func(e expr.Expression) expr.Expression { return expr.IsNotNull(e) },
	"sum":         func(e expr.Expression) expr.Expression { return expr.Sum(e) },
	"avg":         func(e expr.Expression) expr.Expression { return expr.Avg(e) },
	"min":         func(e expr.Expression) expr.Expression { return expr.Min(e) },
	"max":         func(e expr.Expression) expr.Expression { return expr.Max(e) },
	"lower":       func(e expr.Expression) expr.Expression { return expr.Lower(e) },
	"upper":       func(e expr.Expression) expr.Expression { return expr.Upper(e) },
}

// scope resolves names while a definition is built.
type scope struct {
	root    *source.TableSource
	sources map[string]*source.TableSource
	selects map[string]*operator.Select
	params  map[string]any
	used    map[string]bool
}

func newScope(root *source.TableSource, params map[string]any) *scope {
	return &scope{
		root:    root,
		sources: map[string]*source.TableSource{root.Name(): root},
		selects: make(map[string]*operator.Select),
		params:  params,
		used:    make(map[string]bool),
	}
}

func (s *scope) expression(n *yaml.Node, field string) (expr.Expression, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!str":
			return s.column(n, field)
		case "!!null":
			return nil, nodeError(n, field, "null is not an expression, use is_null")
		}
		return constant(n, field)

	case yaml.MappingNode:
		return s.operation(n, field)

	default:
		return nil, nodeError(n, field, "expected a column, a constant or an operation")
	}
}

func (s *scope) column(n *yaml.Node, field string) (expr.Expression, error) {
	src, column := s.root, n.Value
	if alias, col, ok := strings.Cut(n.Value, "."); ok {
		if src, ok = s.sources[alias]; !ok {
			return nil, nodeError(n, field, "unknown source %q", alias)
		}
		column = col
	}

	p, ok := src.Lookup(column)
	if !ok {
		return nil, nodeError(n, field, "source %s has no column %q", src.Name(), column)
	}
	return p, nil
}

func constant(n *yaml.Node, field string) (expr.Expression, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, nodeError(n, field, "%v", err)
	}
	return expr.Const(v), nil
}

func (s *scope) operation(n *yaml.Node, field string) (expr.Expression, error) {
	keys := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys[n.Content[i].Value] = n.Content[i+1]
	}

	if name, ok := keys["param"]; ok {
		return s.parameter(n, name, keys, field)
	}
	if len(keys) != 1 {
		return nil, nodeError(n, field, "an operation has exactly one key")
	}

	op, arg := n.Content[0].Value, n.Content[1]
	field = field + "." + op

	if bop, ok := binaryOps[op]; ok {
		operands, err := s.operands(arg, field, 2, 2)
		if err != nil {
			return nil, err
		}
		return expr.Binop(bop, operands[0], operands[1]), nil
	}
	if build, ok := unaryOps[op]; ok {
		operand, err := s.expression(arg, field)
		if err != nil {
			return nil, err
		}
		return build(operand), nil
	}

	switch op {
	case "and", "or":
		operands, err := s.operands(arg, field, 1, -1)
		if err != nil {
			return nil, err
		}
		if op == "and" {
			return expr.And(operands...), nil
		}
		return expr.Or(operands...), nil

	case "coalesce":
		operands, err := s.operands(arg, field, 1, -1)
		if err != nil {
			return nil, err
		}
		return expr.Coalesce(operands...), nil

	case "in":
		operands, err := s.operands(arg, field, 2, -1)
		if err != nil {
			return nil, err
		}
		return expr.InList(operands[0], operands[1:]...), nil

	case "count":
		if arg.Tag == "!!null" {
			return expr.Count(), nil
		}
		operands, err := s.operands(arg, field, 0, -1)
		if err != nil {
			return nil, err
		}
		return expr.Count(operands...), nil

	case "const":
		if arg.Kind != yaml.ScalarNode {
			return nil, nodeError(arg, field, "expected a scalar")
		}
		return constant(arg, field)

	case "ref":
		sel, ok := s.selects[arg.Value]
		if !ok {
			return nil, nodeError(arg, field, "no selection named %q", arg.Value)
		}
		return sel.Ref(), nil
	}

	return nil, nodeError(n.Content[0], field, "unknown operation")
}

// operands reads a sequence of at least lo and, unless hi is negative, at
// most hi expressions.
func (s *scope) operands(n *yaml.Node, field string, lo, hi int) ([]expr.Expression, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeError(n, field, "expected a list of operands")
	}
	if len(n.Content) < lo || (hi >= 0 && len(n.Content) > hi) {
		if lo == hi {
			return nil, nodeError(n, field, "expected %d operands, got %d", lo, len(n.Content))
		}
		return nil, nodeError(n, field, "expected at least %d operands, got %d", lo, len(n.Content))
	}

	out := make([]expr.Expression, len(n.Content))
	for i, c := range n.Content {
		e, err := s.expression(c, field)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (s *scope) parameter(n, name *yaml.Node, keys map[string]*yaml.Node, field string) (expr.Expression, error) {
	for k := range keys {
		if k != "param" && k != "value" {
			return nil, nodeError(n, field, "unexpected key %q in parameter", k)
		}
	}
	if name.Kind != yaml.ScalarNode || name.Value == "" {
		return nil, nodeError(name, field, "parameter name must be a non-empty string")
	}

	var value any
	if v, ok := keys["value"]; ok {
		if err := v.Decode(&value); err != nil {
			return nil, nodeError(v, field, "%v", err)
		}
	}
	if override, ok := s.params[name.Value]; ok {
		value = override
	}
	s.used[name.Value] = true
	return expr.Param(name.Value, value), nil
}
