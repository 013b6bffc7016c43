package expr

import "strings"

// Const returns an anonymous literal typed from its Go value.
func Const(value any) *Constant {
	return &Constant{value: value, typ: PrimitiveOf(value)}
}

// TypedConst returns a literal with an explicit type, for values whose Go
// type does not map onto a Primitive (nil, driver-specific values).
func TypedConst(typ Primitive, value any) *Constant {
	return &Constant{value: value, typ: typ}
}

// Param returns a named literal.
func Param(name string, value any) *Parameter {
	return &Parameter{name: name, value: value, typ: PrimitiveOf(value)}
}

func binary(op BinaryOp, left, right Expression) *Binary {
	return &Binary{op: op, left: left, right: right}
}

func Eq(left, right Expression) *Binary { return binary(OpEq, left, right) }
func NotEq(left, right Expression) *Binary { return binary(OpNotEq, left, right) }
func Lt(left, right Expression) *Binary { return binary(OpLess, left, right) }
func Lte(left, right Expression) *Binary { return binary(OpLessEq, left, right) }
func Gt(left, right Expression) *Binary { return binary(OpGreater, left, right) }
func Gte(left, right Expression) *Binary { return binary(OpGreaterEq, left, right) }
func Like(left, right Expression) *Binary { return binary(OpLike, left, right) }
func Add(left, right Expression) *Binary { return binary(OpAdd, left, right) }
func Sub(left, right Expression) *Binary { return binary(OpSub, left, right) }
func Mul(left, right Expression) *Binary { return binary(OpMul, left, right) }
func Div(left, right Expression) *Binary { return binary(OpDiv, left, right) }
func Mod(left, right Expression) *Binary { return binary(OpMod, left, right) }
func Binop(op BinaryOp, l, r Expression) *Binary { return binary(op, l, r) }

// And conjoins operands. It panics without operands.
func And(operands ...Expression) *Logical {
	return logical(OpAnd, operands)
}

// Or disjoins operands. It panics without operands.
func Or(operands ...Expression) *Logical {
	return logical(OpOr, operands)
}

func logical(op LogicalOp, operands []Expression) *Logical {
	if len(operands) == 0 {
		panic("expr: " + op.Symbol() + " requires at least one operand")
	}
	return &Logical{op: op, operands: append([]Expression(nil), operands...)}
}

func Not(operand Expression) *Unary { return &Unary{op: OpNot, operand: operand} }
func Neg(operand Expression) *Unary { return &Unary{op: OpNegate, operand: operand} }
func IsNull(operand Expression) *Unary { return &Unary{op: OpIsNull, operand: operand} }
func IsNotNull(operand Expression) *Unary { return &Unary{op: OpIsNotNull, operand: operand} }

// InList tests operand membership in values. A list without values does
// not compile to SQL.
func InList(operand Expression, values ...Expression) *In {
	return &In{operand: operand, values: append([]Expression(nil), values...)}
}

// Func applies a scalar function.
func Func(name string, typ Primitive, args ...Expression) *Call {
	return &Call{name: strings.ToUpper(name), args: append([]Expression(nil), args...), typ: typ}
}

// Aggregate applies an aggregate function.
func Aggregate(name string, typ Primitive, args ...Expression) *Call {
	c := Func(name, typ, args...)
	c.aggregate = true
	return c
}

// Count counts rows. Without arguments it renders COUNT(*).
func Count(args ...Expression) *Call { return Aggregate("COUNT", Int, args...) }

func Sum(arg Expression) *Call { return Aggregate("SUM", arg.Type(), arg) }
func Avg(arg Expression) *Call { return Aggregate("AVG", Float, arg) }
func Min(arg Expression) *Call { return Aggregate("MIN", arg.Type(), arg) }
func Max(arg Expression) *Call { return Aggregate("MAX", arg.Type(), arg) }

func Lower(arg Expression) *Call { return Func("LOWER", String, arg) }
func Upper(arg Expression) *Call { return Func("UPPER", String, arg) }

// Coalesce returns the first non-null argument.
func Coalesce(args ...Expression) *Call {
	typ := Unknown
	if len(args) > 0 {
		typ = args[0].Type()
	}
	return Func("COALESCE", typ, args...)
}
