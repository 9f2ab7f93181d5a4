package eval

import (
	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

// asBig promotes any numeric Value up to a primitive.BigInt so the four
// fixed-width cases and the native BigInt case can share one overflow-
// checked code path per operator.
func asBig(v sigmatype.Value) primitive.BigInt {
	switch v.Type.Kind {
	case sigmatype.KindByte:
		return primitive.NewBigIntFromInt64(int64(v.Byte))
	case sigmatype.KindShort:
		return primitive.NewBigIntFromInt64(int64(v.Short))
	case sigmatype.KindInt:
		return primitive.NewBigIntFromInt64(int64(v.Int))
	case sigmatype.KindLong:
		return primitive.NewBigIntFromInt64(v.Long)
	default:
		return v.Big
	}
}

// fixedWidthBounds reports the inclusive [min,max] range a non-BigInt
// numeric kind must stay within, and whether kind is fixed-width at all.
func fixedWidthBounds(kind sigmatype.Kind) (lo, hi int64, ok bool) {
	switch kind {
	case sigmatype.KindByte:
		return -128, 127, true
	case sigmatype.KindShort:
		return -32768, 32767, true
	case sigmatype.KindInt:
		return -2147483648, 2147483647, true
	case sigmatype.KindLong:
		return -9223372036854775808, 9223372036854775807, true
	default:
		return 0, 0, false
	}
}

// narrow converts a checked big-integer result back to kind's native Value,
// failing if the result does not fit (the fixed-width overflow ArithOp,
// negation and Downcast raise).
func narrow(kind sigmatype.Kind, result primitive.BigInt) (sigmatype.Value, error) {
	if kind == sigmatype.KindBigInt {
		return sigmatype.NewBigInt(result), nil
	}
	lo, hi, _ := fixedWidthBounds(kind)
	big := result.Big()
	if !big.IsInt64() {
		return sigmatype.Value{}, newErr(ErrArithmeticOverflow, "arithmetic result does not fit in int64")
	}
	n := big.Int64()
	if n < lo || n > hi {
		return sigmatype.Value{}, newErr(ErrArithmeticOverflow, "arithmetic result %d out of range for %s", n, sTypeName(kind))
	}
	switch kind {
	case sigmatype.KindByte:
		return sigmatype.NewByte(int8(n)), nil
	case sigmatype.KindShort:
		return sigmatype.NewShort(int16(n)), nil
	case sigmatype.KindInt:
		return sigmatype.NewInt(int32(n)), nil
	case sigmatype.KindLong:
		return sigmatype.NewLong(n), nil
	default:
		return sigmatype.Value{}, newErr(ErrTypeMismatch, "narrow: not a numeric kind")
	}
}

func sTypeName(kind sigmatype.Kind) string {
	switch kind {
	case sigmatype.KindByte:
		return "Byte"
	case sigmatype.KindShort:
		return "Short"
	case sigmatype.KindInt:
		return "Int"
	case sigmatype.KindLong:
		return "Long"
	case sigmatype.KindBigInt:
		return "BigInt"
	default:
		return "?"
	}
}

// evalArithOp applies a checked numeric binary operator, failing on
// overflow, division by zero, or modulo by zero rather than wrapping or
// panicking.
func evalArithOp(kind ast.ArithOpKind, l, r sigmatype.Value) (sigmatype.Value, error) {
	lb, rb := asBig(l), asBig(r)
	var result primitive.BigInt
	var err error
	switch kind {
	case ast.ArithPlus:
		result, err = lb.CheckedAdd(rb)
	case ast.ArithMinus:
		result, err = lb.CheckedSub(rb)
	case ast.ArithMultiply:
		result, err = lb.CheckedMul(rb)
	case ast.ArithDivide:
		result, err = lb.CheckedDiv(rb)
	case ast.ArithModulo:
		result, err = lb.CheckedMod(rb)
	case ast.ArithMax:
		if lb.Cmp(rb) >= 0 {
			result = lb
		} else {
			result = rb
		}
	case ast.ArithMin:
		if lb.Cmp(rb) <= 0 {
			result = lb
		} else {
			result = rb
		}
	default:
		return sigmatype.Value{}, newErr(ErrNotImplemented, "unknown ArithOpKind %d", kind)
	}
	if err != nil {
		return sigmatype.Value{}, newErr(ErrArithmeticOverflow, "%v", err)
	}
	return narrow(l.Type.Kind, result)
}

// evalRelOp applies a comparison; Eq/NEq use Value.Eq directly (valid for
// every type), the ordering operators promote to BigInt first.
func evalRelOp(kind ast.RelOpKind, l, r sigmatype.Value) (sigmatype.Value, error) {
	switch kind {
	case ast.RelEq:
		return sigmatype.NewBool(l.Eq(r)), nil
	case ast.RelNEq:
		return sigmatype.NewBool(!l.Eq(r)), nil
	}
	cmp := asBig(l).Cmp(asBig(r))
	switch kind {
	case ast.RelLT:
		return sigmatype.NewBool(cmp < 0), nil
	case ast.RelLE:
		return sigmatype.NewBool(cmp <= 0), nil
	case ast.RelGT:
		return sigmatype.NewBool(cmp > 0), nil
	case ast.RelGE:
		return sigmatype.NewBool(cmp >= 0), nil
	default:
		return sigmatype.Value{}, newErr(ErrNotImplemented, "unknown RelOpKind %d", kind)
	}
}

// evalUnaryNumOp applies negation or bitwise inversion, preserving the
// operand's numeric type.
func evalUnaryNumOp(kind ast.UnaryNumOpKind, v sigmatype.Value) (sigmatype.Value, error) {
	switch kind {
	case ast.UnaryNegation:
		zero := primitive.NewBigIntFromInt64(0)
		result, err := zero.CheckedSub(asBig(v))
		if err != nil {
			return sigmatype.Value{}, newErr(ErrArithmeticOverflow, "%v", err)
		}
		return narrow(v.Type.Kind, result)
	case ast.UnaryBitInversion:
		switch v.Type.Kind {
		case sigmatype.KindByte:
			return sigmatype.NewByte(^v.Byte), nil
		case sigmatype.KindShort:
			return sigmatype.NewShort(^v.Short), nil
		case sigmatype.KindInt:
			return sigmatype.NewInt(^v.Int), nil
		case sigmatype.KindLong:
			return sigmatype.NewLong(^v.Long), nil
		default:
			return sigmatype.Value{}, newErr(ErrTypeMismatch, "bit inversion not supported for %s", v.Type)
		}
	default:
		return sigmatype.Value{}, newErr(ErrNotImplemented, "unknown UnaryNumOpKind %d", kind)
	}
}

// evalUpcast widens a numeric value to a strictly wider numeric type; this
// always succeeds since to is strictly wider by construction (ast.NewUpcast
// already validated that).
func evalUpcast(v sigmatype.Value, to sigmatype.SType) (sigmatype.Value, error) {
	return narrow(to.Kind, asBig(v))
}

// evalDowncast narrows a numeric value, failing if it does not fit in the
// target type's range.
func evalDowncast(v sigmatype.Value, to sigmatype.SType) (sigmatype.Value, error) {
	return narrow(to.Kind, asBig(v))
}
