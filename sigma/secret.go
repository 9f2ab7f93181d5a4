package sigma

import "ergotree.dev/sigmachain/ecc"

// Secret is a witness a prover holds for one leaf proposition: either a
// discrete-log secret (ProveDlog) or a Diffie-Hellman exponent
// (ProveDhTuple, where the same exponent relates both pairs).
type Secret struct {
	Kind BooleanKind

	DlogW ecc.Scalar // KindProveDlog: w such that H = g^w

	DhW      ecc.Scalar // KindProveDhTuple: w such that U = G^w, V = H^w
	DhG, DhH ecc.EcPoint
}

// NewDlogSecret builds a secret for H = g^w given the generator g.
func NewDlogSecret(g ecc.EcPoint, w ecc.Scalar) Secret {
	return Secret{Kind: KindProveDlog, DlogW: w, DhG: g}
}

// NewDhTupleSecret builds a secret for the tuple (g,h,U=g^w,V=h^w).
func NewDhTupleSecret(g, h ecc.EcPoint, w ecc.Scalar) Secret {
	return Secret{Kind: KindProveDhTuple, DhW: w, DhG: g, DhH: h}
}

// PublicImage computes the SigmaBoolean this secret proves.
func (s Secret) PublicImage() SigmaBoolean {
	switch s.Kind {
	case KindProveDlog:
		return NewProveDlog(s.DhG.Exponentiate(s.DlogW.Bytes()))
	case KindProveDhTuple:
		u := s.DhG.Exponentiate(s.DhW.Bytes())
		v := s.DhH.Exponentiate(s.DhW.Bytes())
		return NewProveDhTuple(s.DhG, s.DhH, u, v)
	default:
		return TrivialProp(false)
	}
}
