package expr

import (
	"fmt"
	"strings"
	"time"
)

// Primitive is the evaluated type of an expression or column.
type Primitive int

const (
	Unknown Primitive = iota
	Bool
	Int
	Float
	String
	Time
)

var primitiveNames = map[Primitive]string{
	Unknown: "unknown",
	Bool:    "bool",
	Int:     "int",
	Float:   "float",
	String:  "string",
	Time:    "time",
}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("primitive(%d)", int(p))
}

// ParsePrimitive maps a catalog type name to a Primitive.
// Accepts the canonical names plus a few SQL spellings.
func ParsePrimitive(name string) (Primitive, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bool", "boolean":
		return Bool, true
	case "int", "integer", "bigint":
		return Int, true
	case "float", "real", "double", "numeric":
		return Float, true
	case "string", "text", "varchar":
		return String, true
	case "time", "timestamp", "datetime":
		return Time, true
	default:
		return Unknown, false
	}
}

// PrimitiveOf infers the Primitive of a Go value.
func PrimitiveOf(v any) Primitive {
	switch v.(type) {
	case bool:
		return Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int
	case float32, float64:
		return Float
	case string:
		return String
	case time.Time:
		return Time
	default:
		return Unknown
	}
}

// Expression is an immutable typed node.
//
// Implementations must be pointer types: identity is observable and the
// join linker relies on reference equality to skip unchanged subtrees.
type Expression interface {
	// Type returns the evaluated type of the node.
	Type() Primitive

	// Children returns the operands in rendering order.
	// The returned slice must not be modified.
	Children() []Expression

	// WithChildren returns a copy of the node with the given operands.
	// Leaves return themselves.
	WithChildren(children []Expression) Expression
}

// Constant is an anonymous literal. It renders as a parameter marker and
// never as inline text.
type Constant struct {
	value any
	typ   Primitive
}

func (c *Constant) Type() Primitive { return c.typ }
func (c *Constant) Children() []Expression { return nil }
func (c *Constant) WithChildren([]Expression) Expression { return c }

// Value returns the literal bound to the constant.
func (c *Constant) Value() any { return c.value }

// Parameter is a named literal. Its name is namespaced by the compiler so
// that the same name may appear in several filters.
type Parameter struct {
	name  string
	value any
	typ   Primitive
}

func (p *Parameter) Type() Primitive { return p.typ }
func (p *Parameter) Children() []Expression { return nil }
func (p *Parameter) WithChildren([]Expression) Expression { return p }

// Name returns the unqualified parameter name.
func (p *Parameter) Name() string { return p.name }

// Value returns the bound value.
func (p *Parameter) Value() any { return p.value }

// Bind returns a parameter with the same name and a new value.
func (p *Parameter) Bind(value any) *Parameter {
	typ := PrimitiveOf(value)
	if typ == Unknown {
		typ = p.typ
	}
	return &Parameter{name: p.name, value: value, typ: typ}
}

// BinaryOp enumerates infix operators.
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpLike
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

var binarySymbols = [...]string{
	OpEq:        "=",
	OpNotEq:     "<>",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpLike:      "LIKE",
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
}

// Symbol returns the query-language spelling of the operator.
func (op BinaryOp) Symbol() string { return binarySymbols[op] }

// IsComparison reports whether the operator yields a boolean.
func (op BinaryOp) IsComparison() bool { return op <= OpLike }

// Binary is an infix operation.
type Binary struct {
	op          BinaryOp
	left, right Expression
}

func (b *Binary) Type() Primitive {
	if b.op.IsComparison() {
		return Bool
	}
	if b.left.Type() == Float || b.right.Type() == Float {
		return Float
	}
	return b.left.Type()
}

func (b *Binary) Children() []Expression { return []Expression{b.left, b.right} }

func (b *Binary) WithChildren(children []Expression) Expression {
	mustArity("binary", children, 2)
	return &Binary{op: b.op, left: children[0], right: children[1]}
}

func (b *Binary) Op() BinaryOp { return b.op }
func (b *Binary) Left() Expression { return b.left }
func (b *Binary) Right() Expression { return b.right }

// LogicalOp enumerates n-ary boolean connectives.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

// Symbol returns the query-language spelling of the connective.
func (op LogicalOp) Symbol() string {
	if op == OpOr {
		return "OR"
	}
	return "AND"
}

// Logical joins one or more boolean operands.
type Logical struct {
	op       LogicalOp
	operands []Expression
}

func (l *Logical) Type() Primitive { return Bool }
func (l *Logical) Children() []Expression { return l.operands }
func (l *Logical) Op() LogicalOp { return l.op }

func (l *Logical) WithChildren(children []Expression) Expression {
	return &Logical{op: l.op, operands: append([]Expression(nil), children...)}
}

// UnaryOp enumerates prefix and postfix operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNegate
	OpIsNull
	OpIsNotNull
)

// Unary applies a single-operand operator.
type Unary struct {
	op      UnaryOp
	operand Expression
}

func (u *Unary) Type() Primitive {
	if u.op == OpNegate {
		return u.operand.Type()
	}
	return Bool
}

func (u *Unary) Children() []Expression { return []Expression{u.operand} }

func (u *Unary) WithChildren(children []Expression) Expression {
	mustArity("unary", children, 1)
	return &Unary{op: u.op, operand: children[0]}
}

func (u *Unary) Op() UnaryOp { return u.op }
func (u *Unary) Operand() Expression { return u.operand }

// Call is a function application. Aggregate calls (COUNT, SUM, ...) are
// flagged so that collections can tell grouping-sensitive expressions apart.
type Call struct {
	name      string
	args      []Expression
	typ       Primitive
	aggregate bool
}

func (c *Call) Type() Primitive { return c.typ }
func (c *Call) Children() []Expression { return c.args }

func (c *Call) WithChildren(children []Expression) Expression {
	return &Call{
		name:      c.name,
		args:      append([]Expression(nil), children...),
		typ:       c.typ,
		aggregate: c.aggregate,
	}
}

// Name returns the upper-cased function name.
func (c *Call) Name() string { return c.name }

// IsAggregate reports whether the call folds a group of rows.
func (c *Call) IsAggregate() bool { return c.aggregate }

// In tests membership of an operand in a list of values.
type In struct {
	operand Expression
	values  []Expression
}

func (in *In) Type() Primitive { return Bool }

func (in *In) Children() []Expression {
	children := make([]Expression, 0, len(in.values)+1)
	children = append(children, in.operand)
	return append(children, in.values...)
}

func (in *In) WithChildren(children []Expression) Expression {
	if len(children) < 1 {
		panic("expr: in expression requires an operand")
	}
	return &In{operand: children[0], values: append([]Expression(nil), children[1:]...)}
}

func (in *In) Operand() Expression { return in.operand }
func (in *In) Values() []Expression { return in.values }

func mustArity(kind string, children []Expression, n int) {
	if len(children) != n {
		panic(fmt.Sprintf("expr: %s expression takes %d children, got %d", kind, n, len(children)))
	}
}
