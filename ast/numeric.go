package ast

import "ergotree.dev/sigmachain/sigmatype"

// ArithOpKind enumerates the checked numeric binary operators.
type ArithOpKind uint8

const (
	ArithPlus ArithOpKind = iota
	ArithMinus
	ArithMultiply
	ArithDivide
	ArithModulo
	ArithMax
	ArithMin
)

func isNumeric(t sigmatype.SType) bool {
	switch t.Kind {
	case sigmatype.KindByte, sigmatype.KindShort, sigmatype.KindInt, sigmatype.KindLong, sigmatype.KindBigInt:
		return true
	default:
		return false
	}
}

// ArithOp is a checked binary numeric operator: both operands must share
// one of Byte/Short/Int/Long/BigInt, which is also the result type.
type ArithOp struct {
	Kind        ArithOpKind
	Left, Right Expr
}

// NewArithOp validates both operands are numeric and of equal type.
func NewArithOp(kind ArithOpKind, left, right Expr) (*ArithOp, error) {
	lt, rt := left.Tpe(), right.Tpe()
	if !isNumeric(lt) || !lt.Eq(rt) {
		return nil, newErr(ErrTypeMismatch, "arithmetic op requires equal numeric types, got %s and %s", lt, rt)
	}
	return &ArithOp{Kind: kind, Left: left, Right: right}, nil
}

// Tpe returns the shared numeric type of both operands.
func (n *ArithOp) Tpe() sigmatype.SType { return n.Left.Tpe() }

// RelOpKind enumerates the comparison operators, all producing Boolean.
type RelOpKind uint8

const (
	RelEq RelOpKind = iota
	RelNEq
	RelLT
	RelLE
	RelGT
	RelGE
)

// RelOp compares two expressions of equal type; Eq/NEq accept any type,
// LT/LE/GT/GE require a numeric type.
type RelOp struct {
	Kind        RelOpKind
	Left, Right Expr
}

// NewRelOp validates operand types per Kind.
func NewRelOp(kind RelOpKind, left, right Expr) (*RelOp, error) {
	lt, rt := left.Tpe(), right.Tpe()
	if !lt.Eq(rt) {
		return nil, newErr(ErrTypeMismatch, "relational op operands differ: %s vs %s", lt, rt)
	}
	if kind != RelEq && kind != RelNEq && !isNumeric(lt) {
		return nil, newErr(ErrTypeMismatch, "ordering comparison requires numeric type, got %s", lt)
	}
	return &RelOp{Kind: kind, Left: left, Right: right}, nil
}

// Tpe is always Boolean.
func (n *RelOp) Tpe() sigmatype.SType { return sigmatype.SBoolean }

// UnaryNumOpKind enumerates unary numeric transforms.
type UnaryNumOpKind uint8

const (
	UnaryNegation UnaryNumOpKind = iota
	UnaryBitInversion
)

// UnaryNumOp negates or bit-inverts a numeric operand, preserving type.
type UnaryNumOp struct {
	Kind  UnaryNumOpKind
	Input Expr
}

// NewUnaryNumOp validates input is numeric.
func NewUnaryNumOp(kind UnaryNumOpKind, input Expr) (*UnaryNumOp, error) {
	if !isNumeric(input.Tpe()) {
		return nil, newErr(ErrTypeMismatch, "unary numeric op requires numeric input, got %s", input.Tpe())
	}
	return &UnaryNumOp{Kind: kind, Input: input}, nil
}

// Tpe returns the input's numeric type.
func (n *UnaryNumOp) Tpe() sigmatype.SType { return n.Input.Tpe() }

func numericRank(t sigmatype.SType) int {
	switch t.Kind {
	case sigmatype.KindByte:
		return 1
	case sigmatype.KindShort:
		return 2
	case sigmatype.KindInt:
		return 3
	case sigmatype.KindLong:
		return 4
	case sigmatype.KindBigInt:
		return 5
	default:
		return 0
	}
}

// Upcast widens a numeric value to a wider numeric type.
type Upcast struct {
	Input Expr
	To    sigmatype.SType
}

// NewUpcast validates input is numeric and to is strictly wider.
func NewUpcast(input Expr, to sigmatype.SType) (*Upcast, error) {
	r1, r2 := numericRank(input.Tpe()), numericRank(to)
	if r1 == 0 || r2 == 0 || r2 <= r1 {
		return nil, newErr(ErrInvalidArgument, "Upcast requires a strictly wider numeric type, got %s -> %s", input.Tpe(), to)
	}
	return &Upcast{Input: input, To: to}, nil
}

// Tpe returns the target type.
func (n *Upcast) Tpe() sigmatype.SType { return n.To }

// Downcast narrows a numeric value to a narrower numeric type, failing at
// eval time if the value does not fit.
type Downcast struct {
	Input Expr
	To    sigmatype.SType
}

// NewDowncast validates input is numeric and to is strictly narrower.
func NewDowncast(input Expr, to sigmatype.SType) (*Downcast, error) {
	r1, r2 := numericRank(input.Tpe()), numericRank(to)
	if r1 == 0 || r2 == 0 || r2 >= r1 {
		return nil, newErr(ErrInvalidArgument, "Downcast requires a strictly narrower numeric type, got %s -> %s", input.Tpe(), to)
	}
	return &Downcast{Input: input, To: to}, nil
}

// Tpe returns the target type.
func (n *Downcast) Tpe() sigmatype.SType { return n.To }

// LongToByteArray encodes a Long as its 8-byte big-endian representation.
type LongToByteArray struct {
	Input Expr
}

// NewLongToByteArray validates input: Long.
func NewLongToByteArray(input Expr) (*LongToByteArray, error) {
	if !input.Tpe().Eq(sigmatype.SLong) {
		return nil, newErr(ErrTypeMismatch, "LongToByteArray requires Long, got %s", input.Tpe())
	}
	return &LongToByteArray{Input: input}, nil
}

// Tpe is always Coll[Byte].
func (n *LongToByteArray) Tpe() sigmatype.SType { return sigmatype.SColl(sigmatype.SByte) }

// ByteArrayToLong decodes an 8-byte big-endian Coll[Byte] into a Long.
type ByteArrayToLong struct {
	Input Expr
}

// NewByteArrayToLong validates input: Coll[Byte].
func NewByteArrayToLong(input Expr) (*ByteArrayToLong, error) {
	if err := requireByteColl(input.Tpe(), "ByteArrayToLong"); err != nil {
		return nil, err
	}
	return &ByteArrayToLong{Input: input}, nil
}

// Tpe is always Long.
func (n *ByteArrayToLong) Tpe() sigmatype.SType { return sigmatype.SLong }

// ByteArrayToBigInt decodes a big-endian Coll[Byte] into a BigInt.
type ByteArrayToBigInt struct {
	Input Expr
}

// NewByteArrayToBigInt validates input: Coll[Byte].
func NewByteArrayToBigInt(input Expr) (*ByteArrayToBigInt, error) {
	if err := requireByteColl(input.Tpe(), "ByteArrayToBigInt"); err != nil {
		return nil, err
	}
	return &ByteArrayToBigInt{Input: input}, nil
}

// Tpe is always BigInt.
func (n *ByteArrayToBigInt) Tpe() sigmatype.SType { return sigmatype.SBigInt }

func requireByteColl(t sigmatype.SType, who string) error {
	if t.Kind != sigmatype.KindColl || !t.Elem.Eq(sigmatype.SByte) {
		return newErr(ErrTypeMismatch, "%s requires Coll[Byte], got %s", who, t)
	}
	return nil
}
