// Package sigma implements the AND/OR/k-of-n sigma-protocol conjecture
// tree, its bottom-up/top-down prover state machine, the verifier, and the
// multi-signature hints protocol (spec component G). No repo in the
// reference corpus implements sigma-protocols directly; the group
// arithmetic is grounded on package ecc (itself grounded on the corpus's
// indirect secp256k1 dependency) and the Fiat-Shamir hashing follows the
// teacher's domain-separated hashing idiom from consensus/merkle.go.
package sigma

import (
	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/serialization"
)

// BooleanKind enumerates SigmaBoolean's closed variant set.
type BooleanKind uint8

const (
	KindTrivialProp BooleanKind = iota
	KindProveDlog
	KindProveDhTuple
	KindCand
	KindCor
	KindCThreshold
)

// SigmaBoolean is the proposition tree a script reduces to: a boolean
// combination of discrete-log statements. It implements
// sigmatype.SigmaPropHolder via SigmaPropBytes.
type SigmaBoolean struct {
	Kind BooleanKind

	Trivial bool // KindTrivialProp

	Dlog ProveDlog // KindProveDlog

	DhTuple ProveDhTuple // KindProveDhTuple

	Children  []SigmaBoolean // KindCand, KindCor, KindCThreshold
	Threshold int            // KindCThreshold: number of children required
}

// ProveDlog is a discrete-log knowledge statement: the prover knows x such
// that H = g^x.
type ProveDlog struct {
	H ecc.EcPoint
}

// ProveDhTuple is a Diffie-Hellman tuple statement: the prover knows x
// such that U = G^x and V = H^x.
type ProveDhTuple struct {
	G, H, U, V ecc.EcPoint
}

// TrivialProp builds a SigmaBoolean that is trivially true or false,
// requiring no proof (true) or accepting none (false).
func TrivialProp(v bool) SigmaBoolean { return SigmaBoolean{Kind: KindTrivialProp, Trivial: v} }

// NewProveDlog builds a ProveDlog proposition over public point h.
func NewProveDlog(h ecc.EcPoint) SigmaBoolean {
	return SigmaBoolean{Kind: KindProveDlog, Dlog: ProveDlog{H: h}}
}

// NewProveDhTuple builds a ProveDhTuple proposition.
func NewProveDhTuple(g, h, u, v ecc.EcPoint) SigmaBoolean {
	return SigmaBoolean{Kind: KindProveDhTuple, DhTuple: ProveDhTuple{G: g, H: h, U: u, V: v}}
}

// Cand conjoins children: every child must be provable.
func Cand(children ...SigmaBoolean) SigmaBoolean {
	return SigmaBoolean{Kind: KindCand, Children: children}
}

// Cor disjoins children: at least one child must be provable.
func Cor(children ...SigmaBoolean) SigmaBoolean {
	return SigmaBoolean{Kind: KindCor, Children: children}
}

// CThreshold requires at least k of children to be provable.
func CThreshold(k int, children ...SigmaBoolean) SigmaBoolean {
	return SigmaBoolean{Kind: KindCThreshold, Threshold: k, Children: children}
}

// IsLeaf reports whether b is a ProveDlog/ProveDhTuple/TrivialProp node
// (as opposed to a conjecture with children).
func (b SigmaBoolean) IsLeaf() bool {
	switch b.Kind {
	case KindTrivialProp, KindProveDlog, KindProveDhTuple:
		return true
	default:
		return false
	}
}

// propCode tags each kind's canonical byte-serialization prefix.
const (
	propCodeTrivial = 0
	propCodeDlog    = 1
	propCodeDhTuple = 2
	propCodeCand    = 3
	propCodeCor     = 4
	propCodeCThresh = 5
)

// writeTo appends b's canonical encoding to w, used both for
// SigmaPropBytes and for building Fiat-Shamir tree bytes.
func (b SigmaBoolean) writeTo(w *serialization.Writer) {
	switch b.Kind {
	case KindTrivialProp:
		w.PutU8(propCodeTrivial)
		if b.Trivial {
			w.PutU8(1)
		} else {
			w.PutU8(0)
		}
	case KindProveDlog:
		w.PutU8(propCodeDlog)
		w.PutBytes(b.Dlog.H.SerializeCompressed())
	case KindProveDhTuple:
		w.PutU8(propCodeDhTuple)
		w.PutBytes(b.DhTuple.G.SerializeCompressed())
		w.PutBytes(b.DhTuple.H.SerializeCompressed())
		w.PutBytes(b.DhTuple.U.SerializeCompressed())
		w.PutBytes(b.DhTuple.V.SerializeCompressed())
	case KindCand:
		w.PutU8(propCodeCand)
		w.PutVLQUint32(uint32(len(b.Children)))
		for _, c := range b.Children {
			c.writeTo(w)
		}
	case KindCor:
		w.PutU8(propCodeCor)
		w.PutVLQUint32(uint32(len(b.Children)))
		for _, c := range b.Children {
			c.writeTo(w)
		}
	case KindCThreshold:
		w.PutU8(propCodeCThresh)
		w.PutVLQUint32(uint32(b.Threshold))
		w.PutVLQUint32(uint32(len(b.Children)))
		for _, c := range b.Children {
			c.writeTo(w)
		}
	}
}

// SigmaPropBytes returns b's canonical serialized proposition bytes,
// implementing sigmatype.SigmaPropHolder.
func (b SigmaBoolean) SigmaPropBytes() []byte {
	w := serialization.NewWriter()
	b.writeTo(w)
	return w.Bytes()
}
