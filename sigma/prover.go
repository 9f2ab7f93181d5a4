package sigma

import (
	"bytes"
	"fmt"

	"ergotree.dev/sigmachain/ecc"
)

// ErrTreeRootIsNotReal is returned when none of the prover's secrets (or
// hints) make the root proposition provable.
var ErrTreeRootIsNotReal = fmt.Errorf("sigma: tree root is not real")

var errThresholdMissingChallenge = fmt.Errorf("sigma: threshold child missing a simulated challenge")
var errCorNoRealChild = fmt.Errorf("sigma: Cor node has no real child at response time")

// Prove runs the full prover state machine (spec §4.G steps 1-9) and
// returns the depth-first-serialized signature bytes.
//
// hints lets this call participate in distributed multi-signature
// proving (spec §8 scenario 2): a leaf backed by a HintRealCommitment or
// HintRealSecretProof is treated as real even though secrets carries no
// witness for it, and a leaf this prover DOES hold a witness for reuses
// an earlier HintOwnCommitment's randomness instead of drawing fresh
// randomness, so its commitment matches what was already published. A
// leaf resolved only via HintRealCommitment has no witness to respond
// with yet; Prove still returns the resulting bytes (the commitment is
// needed in the Fiat-Shamir hash either way), but the signature is
// partial and will not verify until a co-signer who does hold that
// witness finishes it — see ExtractHints for recovering the challenge a
// partial proof fixed for that leaf. hints may be nil.
func Prove(prop SigmaBoolean, secrets []Secret, hints *HintsBag, message []byte) ([]byte, error) {
	known := func(leaf SigmaBoolean) (*Secret, bool) {
		img := leaf.SigmaPropBytes()
		for i := range secrets {
			if bytes.Equal(secrets[i].PublicImage().SigmaPropBytes(), img) {
				return &secrets[i], true
			}
		}
		return nil, false
	}

	root := buildTree(prop)
	markReal(root, known, hints)
	if !root.real {
		return nil, ErrTreeRootIsNotReal
	}
	polish(root, false)

	if err := simulateAndCommit(root); err != nil {
		return nil, err
	}

	fsBytes := fiatShamirBytes(root)
	rootChallenge := fiatShamirChallenge(fsBytes, message)

	if err := propagateAndRespond(root, rootChallenge); err != nil {
		return nil, err
	}

	return serializeProof(root), nil
}

// simulateAndCommit fills in commitments for every node: real leaves draw
// fresh randomness and commit; simulated subtrees are fully simulated now
// (their challenges don't depend on the eventual Fiat-Shamir root
// challenge, only on the random challenges chosen for sibling simulated
// branches), per spec step 4.
func simulateAndCommit(n *node) error {
	if !n.real {
		e, err := randomChallenge()
		if err != nil {
			return err
		}
		simulateSubtree(n, e)
		return nil
	}
	switch n.prop.Kind {
	case KindTrivialProp:
		return nil
	case KindProveDlog:
		if n.externalReal != nil {
			return commitFromHint(n)
		}
		r, err := leafRandomness(n)
		if err != nil {
			return err
		}
		n.r = r
		n.a = groupGenerator().Exponentiate(r.Bytes())
		return nil
	case KindProveDhTuple:
		if n.externalReal != nil {
			return commitFromHint(n)
		}
		r, err := leafRandomness(n)
		if err != nil {
			return err
		}
		n.r = r
		n.a = n.prop.DhTuple.G.Exponentiate(r.Bytes())
		n.a2 = n.prop.DhTuple.H.Exponentiate(r.Bytes())
		return nil
	case KindCand:
		for _, c := range n.children {
			if err := simulateAndCommit(c); err != nil {
				return err
			}
		}
		return nil
	case KindCor, KindCThreshold:
		for _, c := range n.children {
			if c.real {
				if err := simulateAndCommit(c); err != nil {
					return err
				}
				continue
			}
			e, err := randomChallenge()
			if err != nil {
				return err
			}
			c.challenge = &e
			simulateSubtree(c, e)
		}
		return nil
	}
	return nil
}

// simulateSubtree recursively simulates every node under a subtree whose
// overall challenge is fixed to e: leaves run the sigma-protocol
// simulator directly; AND nodes pass e to every child; OR/threshold nodes
// pick challenges for all children that combine (XOR, or Lagrange
// interpolation) back to e.
func simulateSubtree(n *node, e Challenge) {
	n.challenge = &e
	switch n.prop.Kind {
	case KindTrivialProp:
		return
	case KindProveDlog:
		z, _ := ecc.RandomScalar()
		n.z = z
		h := n.prop.Dlog.H
		n.a = groupGenerator().Exponentiate(z.Bytes()).Multiply(h.Exponentiate(e[:]).Negate())
	case KindProveDhTuple:
		z, _ := ecc.RandomScalar()
		n.z = z
		g, h, u, v := n.prop.DhTuple.G, n.prop.DhTuple.H, n.prop.DhTuple.U, n.prop.DhTuple.V
		n.a = g.Exponentiate(z.Bytes()).Multiply(u.Exponentiate(e[:]).Negate())
		n.a2 = h.Exponentiate(z.Bytes()).Multiply(v.Exponentiate(e[:]).Negate())
	case KindCand:
		for _, c := range n.children {
			simulateSubtree(c, e)
		}
	case KindCor:
		var chosen []Challenge
		for i := 0; i < len(n.children)-1; i++ {
			c, _ := randomChallenge()
			chosen = append(chosen, c)
			simulateSubtree(n.children[i], c)
		}
		last := xorChallenge(e, xorAll(chosen))
		simulateSubtree(n.children[len(n.children)-1], last)
	case KindCThreshold:
		simulateThresholdSubtree(n, e)
	}
}

// propagateAndRespond walks the tree top-down, handing every real node its
// final challenge and computing each real leaf's response z = r + e*w mod q
// (spec steps 6-9). Simulated subtrees were already fully finalized by
// simulateSubtree and are left untouched. A leaf already finalized via a
// HintRealSecretProof keeps its hint-provided response; a leaf only
// backed by a HintRealCommitment (no witness here yet) gets its
// Fiat-Shamir-fixed challenge recorded and is otherwise left for a
// co-signer to finish.
func propagateAndRespond(n *node, e Challenge) error {
	n.challenge = &e
	switch n.prop.Kind {
	case KindTrivialProp:
		return nil
	case KindProveDlog:
		if n.finalized || n.externalReal != nil {
			return nil
		}
		n.z = n.r.Add(e.scalar().Mul(n.secret.DlogW))
		return nil
	case KindProveDhTuple:
		if n.finalized || n.externalReal != nil {
			return nil
		}
		n.z = n.r.Add(e.scalar().Mul(n.secret.DhW))
		return nil
	case KindCand:
		for _, c := range n.children {
			if err := propagateAndRespond(c, e); err != nil {
				return err
			}
		}
		return nil
	case KindCor:
		var knownXor Challenge
		realIdx := -1
		for i, c := range n.children {
			if c.real {
				realIdx = i
				continue
			}
			knownXor = xorChallenge(knownXor, *c.challenge)
		}
		if realIdx < 0 {
			return errCorNoRealChild
		}
		childChallenge := xorChallenge(e, knownXor)
		return propagateAndRespond(n.children[realIdx], childChallenge)
	case KindCThreshold:
		return propagateThreshold(n, e)
	}
	return nil
}

func groupGenerator() ecc.EcPoint { return ecc.Generator() }

func randomChallenge() (Challenge, error) {
	s, err := ecc.RandomScalar()
	if err != nil {
		return Challenge{}, err
	}
	return scalarToChallenge(s), nil
}

// leafRandomness returns the randomness a real leaf commits with: the
// retained value from an earlier GenerateCommitments round if n.ownCommitment
// is set (so the commitment this call produces matches what was already
// published), or otherwise a fresh draw.
func leafRandomness(n *node) (ecc.Scalar, error) {
	if n.ownCommitment != nil {
		return ecc.ScalarFromBytes(n.ownCommitment.Z), nil
	}
	return ecc.RandomScalar()
}

// commitFromHint fills in a-no-witness real leaf's commitment (and, for
// HintRealSecretProof, its full response) from n.externalReal.
func commitFromHint(n *node) error {
	a, err := ecc.ParseCompressed(n.externalReal.A[:])
	if err != nil {
		return fmt.Errorf("sigma: parsing hinted commitment: %w", err)
	}
	n.a = a
	if n.prop.Kind == KindProveDhTuple {
		a2, err := ecc.ParseCompressed(n.externalReal.A2[:])
		if err != nil {
			return fmt.Errorf("sigma: parsing hinted commitment: %w", err)
		}
		n.a2 = a2
	}
	if n.externalReal.Kind == HintRealSecretProof {
		n.z = ecc.ScalarFromBytes(n.externalReal.Z)
		ch := n.externalReal.Challenge
		n.challenge = &ch
		n.finalized = true
	}
	return nil
}
