package sigma

import (
	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/serialization"
)

// fiatShamirBytes serializes the proof skeleton -- every node's kind,
// public proposition data and commitment -- into the canonical byte form
// both sides hash to fix the root challenge (spec step 5). Challenges and
// responses are deliberately excluded: they are what the hash protects.
func fiatShamirBytes(root *node) []byte {
	w := serialization.NewWriter()
	writeFSNode(w, root)
	return w.Bytes()
}

func writeFSNode(w *serialization.Writer, n *node) {
	switch n.prop.Kind {
	case KindTrivialProp:
		w.PutU8(propCodeTrivial)
		if n.prop.Trivial {
			w.PutU8(1)
		} else {
			w.PutU8(0)
		}
	case KindProveDlog:
		w.PutU8(propCodeDlog)
		w.PutBytes(n.prop.Dlog.H.SerializeCompressed())
		w.PutBytes(n.a.SerializeCompressed())
	case KindProveDhTuple:
		w.PutU8(propCodeDhTuple)
		w.PutBytes(n.prop.DhTuple.G.SerializeCompressed())
		w.PutBytes(n.prop.DhTuple.H.SerializeCompressed())
		w.PutBytes(n.prop.DhTuple.U.SerializeCompressed())
		w.PutBytes(n.prop.DhTuple.V.SerializeCompressed())
		w.PutBytes(n.a.SerializeCompressed())
		w.PutBytes(n.a2.SerializeCompressed())
	case KindCand:
		w.PutU8(propCodeCand)
		w.PutVLQUint32(uint32(len(n.children)))
		for _, c := range n.children {
			writeFSNode(w, c)
		}
	case KindCor:
		w.PutU8(propCodeCor)
		w.PutVLQUint32(uint32(len(n.children)))
		for _, c := range n.children {
			writeFSNode(w, c)
		}
	case KindCThreshold:
		w.PutU8(propCodeCThresh)
		w.PutVLQUint32(uint32(n.prop.Threshold))
		w.PutVLQUint32(uint32(len(n.children)))
		for _, c := range n.children {
			writeFSNode(w, c)
		}
	}
}

// serializeProof writes the signature: the root challenge, then each
// node's response (leaves) with OR/threshold nodes additionally carrying
// every child's explicit challenge (AND inherits its children's challenge
// from the parent and stores nothing extra).
func serializeProof(root *node) []byte {
	w := serialization.NewWriter()
	w.PutBytes(root.challenge[:])
	writeProofNode(w, root)
	return w.Bytes()
}

func writeProofNode(w *serialization.Writer, n *node) {
	switch n.prop.Kind {
	case KindTrivialProp:
	case KindProveDlog, KindProveDhTuple:
		w.PutBytes(n.z.Bytes())
	case KindCand:
		for _, c := range n.children {
			writeProofNode(w, c)
		}
	case KindCor, KindCThreshold:
		for _, c := range n.children {
			w.PutBytes(c.challenge[:])
			writeProofNode(w, c)
		}
	}
}

// parseProof reads a signature's root challenge and recursively assigns
// every node's challenge/response, mirroring serializeProof.
func parseProof(root *node, r *serialization.Reader) error {
	ch, err := readChallenge(r)
	if err != nil {
		return err
	}
	root.challenge = &ch
	return parseProofNode(root, r)
}

func readChallenge(r *serialization.Reader) (Challenge, error) {
	b, err := r.GetBytes(SoundnessBytes)
	if err != nil {
		return Challenge{}, err
	}
	var c Challenge
	copy(c[:], b)
	return c, nil
}

func parseProofNode(n *node, r *serialization.Reader) error {
	switch n.prop.Kind {
	case KindTrivialProp:
		return nil
	case KindProveDlog, KindProveDhTuple:
		b, err := r.GetBytes(ecc.ScalarSize)
		if err != nil {
			return err
		}
		n.z = ecc.ScalarFromBytes(b)
		return nil
	case KindCand:
		for _, c := range n.children {
			c.challenge = n.challenge
			if err := parseProofNode(c, r); err != nil {
				return err
			}
		}
		return nil
	case KindCor, KindCThreshold:
		for _, c := range n.children {
			ch, err := readChallenge(r)
			if err != nil {
				return err
			}
			c.challenge = &ch
			if err := parseProofNode(c, r); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}
