package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
)

// UnresolvedPlaceholderError reports a placeholder whose source is not part
// of the collection being compiled.
type UnresolvedPlaceholderError struct {
	Placeholder *source.Placeholder
	Source      string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("placeholder %s does not belong to source %s", e.Placeholder, e.Source)
}

// ParameterConflictError reports one parameter name bound to two values
// within a single expression.
type ParameterConflictError struct {
	Name string
}

func (e *ParameterConflictError) Error() string {
	return fmt.Sprintf("parameter %s is bound to two different values", e.Name)
}

// Binder records the value behind a namespaced parameter name.
type Binder func(name string, value any) error

// ExpressionCompiler renders expression trees to clause text.
//
// CRITICAL: values are never interpolated. Constants and parameters render
// as "?" markers; the name behind each marker is returned alongside the
// text and its value handed to the Binder.
//
// Rendering is post-order over an explicit stack: when a node exits, the
// texts of its children are on top of the stack and are replaced by the
// node's own text. An ExpressionCompiler is scratch state for one
// compilation at a time.
type ExpressionCompiler struct {
	dialect Dialect
	walker  expr.Walker
	stack   []rendered
	markers []string
	src     source.Source
	prefix  string
	bind    Binder
	consts  int
}

type rendered struct {
	text string
	node expr.Expression
}

// NewExpressionCompiler returns a compiler rendering identifiers for d.
func NewExpressionCompiler(d Dialect) *ExpressionCompiler {
	return &ExpressionCompiler{dialect: d}
}

// Compile renders e against src. Placeholders are resolved through src;
// parameter names are prefixed with prefix and unnamed constants are
// named prefix + "p<K>" in order of appearance.
func (c *ExpressionCompiler) Compile(src source.Source, e expr.Expression, prefix string, bind Binder) (string, []string, error) {
	defer c.reset()

	c.src = src
	c.prefix = prefix
	c.bind = bind

	c.walker.Reset(e)
	for !c.walker.Done() {
		for c.walker.CanEnter() {
			c.walker.Enter()
		}
		if c.walker.CanExit() {
			if err := c.exit(c.walker.Exit()); err != nil {
				return "", nil, err
			}
		}
	}

	if len(c.stack) != 1 {
		return "", nil, fmt.Errorf("expression rendered to %d operands", len(c.stack))
	}
	markers := append([]string(nil), c.markers...)
	return c.stack[0].text, markers, nil
}

func (c *ExpressionCompiler) reset() {
	clear(c.stack)
	c.stack = c.stack[:0]
	c.markers = c.markers[:0]
	c.src = nil
	c.bind = nil
	c.prefix = ""
	c.consts = 0
	c.walker.Reset(nil)
}

func (c *ExpressionCompiler) exit(node expr.Expression) error {
	arity := len(node.Children())
	operands := c.stack[len(c.stack)-arity:]

	text, err := c.render(node, operands)
	if err != nil {
		return err
	}

	clear(operands)
	c.stack = append(c.stack[:len(c.stack)-arity], rendered{text: text, node: node})
	return nil
}

func (c *ExpressionCompiler) render(node expr.Expression, operands []rendered) (string, error) {
	switch n := node.(type) {
	case *source.Placeholder:
		resolved, ok := c.src.Resolve(n)
		if !ok {
			return "", &UnresolvedPlaceholderError{Placeholder: n, Source: c.src.Name()}
		}
		return c.dialect.Ident(resolved.Qualifier()) + "." + c.dialect.Ident(resolved.Column().Name()), nil

	case *operator.Ref:
		return c.dialect.Ident(n.Name()), nil

	case *expr.Constant:
		name := c.prefix + "p" + strconv.Itoa(c.consts)
		c.consts++
		return c.marker(name, n.Value())

	case *expr.Parameter:
		return c.marker(c.prefix+n.Name(), n.Value())

	case *expr.Binary:
		return wrap(operands[0]) + " " + n.Op().Symbol() + " " + wrap(operands[1]), nil

	case *expr.Logical:
		parts := make([]string, len(operands))
		for i, op := range operands {
			parts[i] = wrap(op)
		}
		return strings.Join(parts, " "+n.Op().Symbol()+" "), nil

	case *expr.Unary:
		operand := wrap(operands[0])
		switch n.Op() {
		case expr.OpNot:
			return "NOT " + operand, nil
		case expr.OpNegate:
			if strings.HasPrefix(operand, "-") {
				return "-(" + operand + ")", nil
			}
			return "-" + operand, nil
		case expr.OpIsNull:
			return operand + " IS NULL", nil
		case expr.OpIsNotNull:
			return operand + " IS NOT NULL", nil
		}
		return "", fmt.Errorf("unsupported unary operator %d", n.Op())

	case *expr.Call:
		if len(operands) == 0 && n.Name() == "COUNT" {
			return "COUNT(*)", nil
		}
		args := make([]string, len(operands))
		for i, op := range operands {
			args[i] = op.text
		}
		return n.Name() + "(" + strings.Join(args, ", ") + ")", nil

	case *expr.In:
		if len(operands) < 2 {
			return "", fmt.Errorf("IN list for %s has no values", operands[0].text)
		}
		values := make([]string, len(operands)-1)
		for i, op := range operands[1:] {
			values[i] = op.text
		}
		return wrap(operands[0]) + " IN (" + strings.Join(values, ", ") + ")", nil

	default:
		return "", fmt.Errorf("unsupported expression %T", node)
	}
}

func (c *ExpressionCompiler) marker(name string, value any) (string, error) {
	if c.bind != nil {
		if err := c.bind(name, value); err != nil {
			return "", err
		}
	}
	c.markers = append(c.markers, name)
	return "?", nil
}

// wrap parenthesises operands whose own operators could bind differently
// inside the parent.
func wrap(r rendered) string {
	switch n := r.node.(type) {
	case *expr.Binary, *expr.Logical, *expr.In:
		return "(" + r.text + ")"
	case *expr.Unary:
		if n.Op() != expr.OpNegate {
			return "(" + r.text + ")"
		}
	}
	return r.text
}
