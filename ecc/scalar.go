package ecc

import (
	"crypto/rand"
	"math/big"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// secp256k1Order is the group order q, needed for modular inversion during
// threshold (k-of-n) challenge interpolation. secp256k1.ModNScalar already
// reduces mod this value internally but exposes no inversion method in the
// version this module depends on, so Inverse falls back to math/big for
// that one operation.
var secp256k1Order, _ = new(big.Int).SetString(
	"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// ScalarSize is the byte width of a scalar mod the secp256k1 group order.
const ScalarSize = 32

// Scalar is an element of Z_q, q the secp256k1 group order: the exponent
// space sigma-protocol secrets, randomness and responses live in.
type Scalar struct {
	s secp256k1.ModNScalar
}

// RandomScalar draws a uniformly random nonzero scalar, used as the
// prover's per-proof commitment randomness.
func RandomScalar() (Scalar, error) {
	for {
		var buf [ScalarSize]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return Scalar{}, err
		}
		var s secp256k1.ModNScalar
		overflow := s.SetBytes(&buf)
		if overflow == 0 && !s.IsZero() {
			return Scalar{s: s}, nil
		}
	}
}

// ScalarFromBytes reduces a big-endian byte slice modulo the group order.
func ScalarFromBytes(b []byte) Scalar {
	var s secp256k1.ModNScalar
	s.SetByteSlice(b)
	return Scalar{s: s}
}

// Bytes returns the 32-byte big-endian encoding of the scalar.
func (a Scalar) Bytes() []byte {
	b := a.s.Bytes()
	return b[:]
}

// Add computes a+b mod q.
func (a Scalar) Add(b Scalar) Scalar {
	r := a.s
	r.Add(&b.s)
	return Scalar{s: r}
}

// Mul computes a*b mod q.
func (a Scalar) Mul(b Scalar) Scalar {
	r := a.s
	r.Mul(&b.s)
	return Scalar{s: r}
}

// Negate computes -a mod q.
func (a Scalar) Negate() Scalar {
	r := a.s
	r.Negate()
	return Scalar{s: r}
}

// IsZero reports whether the scalar is the additive identity.
func (a Scalar) IsZero() bool { return a.s.IsZero() }

// Inverse computes a^-1 mod q, used by threshold-proof Lagrange
// interpolation. Panics if a is zero, mirroring the precondition every
// caller already establishes by construction.
func (a Scalar) Inverse() Scalar {
	bi := new(big.Int).SetBytes(a.Bytes())
	inv := new(big.Int).ModInverse(bi, secp256k1Order)
	if inv == nil {
		panic("ecc: Inverse called on zero scalar")
	}
	return ScalarFromBytes(inv.Bytes())
}
