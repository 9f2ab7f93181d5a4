package primitive

import "math/big"

// BigIntSize is the byte budget the serializer reserves for a BigInt's
// minimal two's-complement encoding, sign bit included (32 bytes == the
// signed 256-bit range [-2^255, 2^255-1]); the IR only ever carries values that
// fit in this budget, and arithmetic that would overflow it is an
// ArithmeticException in eval, not a parse error here.
const BigIntSize = 32

// BigInt is a signed big integer used only where the ErgoTree IR requires
// it (the BigInt numeric type). It wraps math/big.Int: no ecosystem library
// in the reference corpus offers a bounded 256-bit signed integer with the
// minimal-signed-big-endian wire form constants.go needs, and math/big is
// the standard-library type every big-integer-consuming library in the Go
// ecosystem (including the corpus's own secp256k1/gnark dependencies)
// itself builds on, so reaching further for a third-party bignum type would
// just add a conversion layer around the same arithmetic.
type BigInt struct {
	v *big.Int
}

// NewBigIntFromInt64 builds a BigInt from a plain int64.
func NewBigIntFromInt64(v int64) BigInt {
	return BigInt{v: big.NewInt(v)}
}

// NewBigIntFromBytes parses a minimal two's-complement big-endian encoding,
// mirroring the wire Constant encoding (length-prefixed signed big-endian).
func NewBigIntFromBytes(b []byte) BigInt {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		// Negative: b is the two's-complement encoding over len(b) bytes.
		modulus := new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8)
		v.Sub(v, modulus)
	}
	return BigInt{v: v}
}

// Bytes returns the minimal two's-complement big-endian encoding of the
// value (empty slice for zero).
func (b BigInt) Bytes() []byte {
	if b.v == nil || b.v.Sign() == 0 {
		return nil
	}
	if b.v.Sign() > 0 {
		raw := b.v.Bytes()
		if len(raw) == 0 || raw[0]&0x80 != 0 {
			return append([]byte{0x00}, raw...)
		}
		return raw
	}
	// Negative: encode as two's complement over the minimal number of bytes,
	// which the bit length of |v|-1 determines (so -128 encodes as 0x80).
	bitLen := new(big.Int).Sub(new(big.Int).Neg(b.v), big.NewInt(1)).BitLen()
	nbytes := bitLen/8 + 1
	modulus := new(big.Int).Lsh(big.NewInt(1), uint(nbytes)*8)
	twos := new(big.Int).Add(modulus, b.v)
	raw := twos.Bytes()
	for len(raw) < nbytes {
		raw = append([]byte{0x00}, raw...)
	}
	return raw
}

// Big exposes the underlying *big.Int (read-only use expected; callers must
// not mutate it in place).
func (b BigInt) Big() *big.Int {
	if b.v == nil {
		return big.NewInt(0)
	}
	return b.v
}

// Sign returns -1, 0 or +1.
func (b BigInt) Sign() int { return b.Big().Sign() }

// Eq reports structural equality.
func (b BigInt) Eq(other BigInt) bool { return b.Big().Cmp(other.Big()) == 0 }

// CheckedAdd adds two BigInts, failing if the magnitude would exceed the
// 256-bit signed budget the wire format reserves for it.
func (b BigInt) CheckedAdd(other BigInt) (BigInt, error) { return checkedBigOp(b, other, (*big.Int).Add) }

// CheckedSub subtracts other from b under the same bound as CheckedAdd.
func (b BigInt) CheckedSub(other BigInt) (BigInt, error) { return checkedBigOp(b, other, (*big.Int).Sub) }

// CheckedMul multiplies b by other under the same bound as CheckedAdd.
func (b BigInt) CheckedMul(other BigInt) (BigInt, error) { return checkedBigOp(b, other, (*big.Int).Mul) }

// CheckedDiv performs truncated (toward zero) division; division by zero
// and overflow both fail.
func (b BigInt) CheckedDiv(other BigInt) (BigInt, error) {
	if other.Sign() == 0 {
		return BigInt{}, boundsErr(ErrArithmeticOverflow, "bigint division by zero")
	}
	return checkedBigOp(b, other, (*big.Int).Quo)
}

// CheckedMod performs truncated (toward zero) remainder; modulo by zero
// fails.
func (b BigInt) CheckedMod(other BigInt) (BigInt, error) {
	if other.Sign() == 0 {
		return BigInt{}, boundsErr(ErrArithmeticOverflow, "bigint modulo by zero")
	}
	return checkedBigOp(b, other, (*big.Int).Rem)
}

// Cmp compares b to other the way the Ord capability requires (-1, 0, 1).
func (b BigInt) Cmp(other BigInt) int { return b.Big().Cmp(other.Big()) }

func checkedBigOp(a, b BigInt, op func(z, x, y *big.Int) *big.Int) (BigInt, error) {
	result := op(new(big.Int), a.Big(), b.Big())
	// The wire encoding budget is BigIntSize bytes of minimal two's-complement
	// encoding, sign bit included: the signed 256-bit range.
	if len(BigInt{v: result}.Bytes()) > BigIntSize {
		return BigInt{}, boundsErr(ErrArithmeticOverflow, "bigint result exceeds 256-bit budget")
	}
	return BigInt{v: result}, nil
}
