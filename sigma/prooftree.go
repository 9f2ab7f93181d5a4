package sigma

import "ergotree.dev/sigmachain/ecc"

// node mirrors a SigmaBoolean during proving, carrying the mutable
// real/simulated labelling and the commitment/response state the prover
// state machine fills in across its phases (spec §4.G steps 1-9).
type node struct {
	prop SigmaBoolean
	real bool

	// leaf state (ProveDlog/ProveDhTuple)
	r      ecc.Scalar // randomness, real leaves only, pre-challenge
	a      ecc.EcPoint
	a2     ecc.EcPoint // DhTuple's second commitment
	secret *Secret     // non-nil iff this leaf is real and proven directly

	// hint-driven leaf state (spec §8 scenario 2's distributed signing):
	// externalReal is set when a leaf is real but this prover holds no
	// witness for it, because a co-signer already published a commitment
	// (HintRealCommitment, completion still pending) or a full proof
	// recovered via ExtractHints (HintRealSecretProof, already finalized).
	// ownCommitment is set when this prover DOES hold the witness but
	// already committed to it in an earlier GenerateCommitments round and
	// must reuse that randomness rather than draw fresh randomness now.
	externalReal  *Hint
	ownCommitment *Hint
	finalized     bool // true once externalReal supplies a full RealSecretProof

	// every node, once finalized
	challenge *Challenge
	z         ecc.Scalar
	z2        ecc.Scalar // DhTuple uses one response; z2 unused, kept for symmetry

	children []*node
}

func buildTree(prop SigmaBoolean) *node {
	n := &node{prop: prop}
	for _, c := range prop.Children {
		n.children = append(n.children, buildTree(c))
	}
	return n
}

// markReal labels every leaf real if a matching secret is available, or,
// lacking that, if hints supplies either a co-signer's already-published
// commitment (HintRealCommitment) or an already-finalized proof
// (HintRealSecretProof) for it — the hook distributed signing (spec §8
// scenario 2) needs to treat a peer's leaf as real without holding its
// witness. Realness then bubbles up through AND/OR/threshold as before.
// hints may be nil, meaning no hint-driven realness is available.
func markReal(n *node, known func(leaf SigmaBoolean) (*Secret, bool), hints *HintsBag) {
	switch n.prop.Kind {
	case KindTrivialProp:
		n.real = n.prop.Trivial
	case KindProveDlog, KindProveDhTuple:
		if s, ok := known(n.prop); ok {
			n.real = true
			n.secret = s
			n.ownCommitment = hints.hintForImage(HintOwnCommitment, n.prop)
			return
		}
		if h := hints.hintForImage(HintRealSecretProof, n.prop); h != nil {
			n.real = true
			n.externalReal = h
			return
		}
		if h := hints.hintForImage(HintRealCommitment, n.prop); h != nil {
			n.real = true
			n.externalReal = h
			return
		}
	case KindCand:
		for _, c := range n.children {
			markReal(c, known, hints)
		}
		n.real = true
		for _, c := range n.children {
			n.real = n.real && c.real
		}
	case KindCor:
		for _, c := range n.children {
			markReal(c, known, hints)
		}
		n.real = false
		for _, c := range n.children {
			n.real = n.real || c.real
		}
	case KindCThreshold:
		for _, c := range n.children {
			markReal(c, known, hints)
		}
		count := 0
		for _, c := range n.children {
			if c.real {
				count++
			}
		}
		n.real = count >= n.prop.Threshold
	}
}

// polish adjusts the real/simulated labelling so that each conjecture has
// exactly the right shape for the propagate-challenges step: AND keeps all
// children real only when the node itself is real (otherwise every child
// is forced simulated); OR and k-of-n keep exactly one / exactly k real
// children respectively, demoting any surplus real children to simulated
// (spec step 3, "polish simulated").
func polish(n *node, forceSimulated bool) {
	if forceSimulated {
		n.real = false
	}
	switch n.prop.Kind {
	case KindTrivialProp, KindProveDlog, KindProveDhTuple:
		return
	case KindCand:
		for _, c := range n.children {
			polish(c, !n.real)
		}
	case KindCor:
		kept := 0
		for _, c := range n.children {
			keep := n.real && c.real && kept == 0
			if keep {
				kept++
			}
			polish(c, !keep)
		}
	case KindCThreshold:
		kept := 0
		for _, c := range n.children {
			keep := n.real && c.real && kept < n.prop.Threshold
			if keep {
				kept++
			}
			polish(c, !keep)
		}
	}
}
