// Package ecc implements EcPoint, the secp256k1 group element carried by
// ProveDlog and ProveDhTuple sigma-propositions. It is grounded on
// github.com/decred/dcrd/dcrec/secp256k1/v4, the pure-Go secp256k1
// implementation visible as an indirect dependency of this retrieval pack's
// btcec-based and gnark-based repositories.
package ecc

import (
	"bytes"
	"fmt"
	"math/big"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// secp256k1FieldPrime is the curve's underlying field modulus p, needed
// only to negate a point's y-coordinate (y -> p-y).
var secp256k1FieldPrime, _ = new(big.Int).SetString(
	"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F", 16)

// CompressedSize is the length in bytes of a compressed EcPoint encoding,
// including the identity element's all-zero sentinel.
const CompressedSize = 33

// EcPoint is a point on the secp256k1 curve (or the group identity),
// equality by value and serialized in 33-byte compressed SEC1 form. The
// identity element is encoded, by this protocol's convention, as 33 zero
// bytes rather than any SEC1 encoding (SEC1 compressed form has no
// representation for the point at infinity).
type EcPoint struct {
	identity bool
	pub      *secp256k1.PublicKey // nil iff identity
}

// Generator returns the secp256k1 base point G.
func Generator() EcPoint {
	var scalarBytes [32]byte
	scalarBytes[31] = 1
	priv := secp256k1.PrivKeyFromBytes(scalarBytes[:])
	return EcPoint{pub: priv.PubKey()}
}

// Identity returns the group identity element (point at infinity).
func Identity() EcPoint {
	return EcPoint{identity: true}
}

// IsIdentity reports whether p is the group identity.
func (p EcPoint) IsIdentity() bool { return p.identity }

// Eq reports structural equality.
func (p EcPoint) Eq(other EcPoint) bool {
	if p.identity || other.identity {
		return p.identity == other.identity
	}
	return p.pub.X().Cmp(other.pub.X()) == 0 && p.pub.Y().Cmp(other.pub.Y()) == 0
}

// Multiply computes the group operation p+other (named Multiply per the
// spec's multiplicative notation for the sigma-protocol group).
func (p EcPoint) Multiply(other EcPoint) EcPoint {
	if p.identity {
		return other
	}
	if other.identity {
		return p
	}
	var jp, jo, jr secp256k1.JacobianPoint
	p.pub.AsJacobian(&jp)
	other.pub.AsJacobian(&jo)
	secp256k1.AddNonConst(&jp, &jo, &jr)
	return fromJacobian(jr)
}

// Exponentiate computes scalar*p (scalar given as a big-endian byte slice,
// reduced modulo the group order the way secp256k1 scalar multiplication
// always is).
func (p EcPoint) Exponentiate(scalar []byte) EcPoint {
	if p.identity {
		return Identity()
	}
	var k secp256k1.ModNScalar
	k.SetByteSlice(scalar)
	if k.IsZero() {
		return Identity()
	}
	var jp, jr secp256k1.JacobianPoint
	p.pub.AsJacobian(&jp)
	secp256k1.ScalarMultNonConst(&k, &jp, &jr)
	return fromJacobian(jr)
}

func fromJacobian(j secp256k1.JacobianPoint) EcPoint {
	j.ToAffine()
	if j.Z.IsZero() {
		return Identity()
	}
	return EcPoint{pub: secp256k1.NewPublicKey(&j.X, &j.Y)}
}

// Negate returns -p (the point reflected across the x-axis), used by the
// sigma-protocol simulator to compute g^z * h^(-e).
func (p EcPoint) Negate() EcPoint {
	if p.identity {
		return Identity()
	}
	negY := new(big.Int).Sub(secp256k1FieldPrime, p.pub.Y())
	return EcPoint{pub: secp256k1.NewPublicKey(p.pub.X(), negY)}
}

// SerializeCompressed returns the 33-byte compressed encoding.
func (p EcPoint) SerializeCompressed() []byte {
	if p.identity {
		return make([]byte, CompressedSize)
	}
	return p.pub.SerializeCompressed()
}

// ParseCompressed decodes a 33-byte compressed encoding, recognising the
// all-zero identity sentinel.
func ParseCompressed(b []byte) (EcPoint, error) {
	if len(b) != CompressedSize {
		return EcPoint{}, fmt.Errorf("ecc: compressed point must be %d bytes, got %d", CompressedSize, len(b))
	}
	if bytes.Equal(b, make([]byte, CompressedSize)) {
		return Identity(), nil
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return EcPoint{}, fmt.Errorf("ecc: invalid compressed point: %w", err)
	}
	return EcPoint{pub: pub}, nil
}
