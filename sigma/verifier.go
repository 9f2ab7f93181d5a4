package sigma

import (
	"fmt"

	"ergotree.dev/sigmachain/serialization"
)

// ErrInvalidProof names a structurally or cryptographically malformed
// signature. Verify does not return it: every malformed or non-verifying
// signature yields (false, nil), collapsing verification failure into one
// reject path rather than leaking which check tripped.
var ErrInvalidProof = fmt.Errorf("sigma: invalid proof")

// Verify checks signature against prop and message, recomputing every
// leaf's commitment from its challenge and response, checking OR/threshold
// challenge consistency, and matching the recomputed Fiat-Shamir root
// challenge against the one embedded in the signature (spec component G's
// verifier side).
func Verify(prop SigmaBoolean, signature, message []byte) (bool, error) {
	if prop.Kind == KindTrivialProp {
		return prop.Trivial, nil
	}

	root := buildTree(prop)
	r := serialization.NewReader(signature)
	if err := parseProof(root, r); err != nil {
		return false, nil
	}
	if r.Remaining() != 0 {
		return false, nil
	}

	if err := recomputeCommitments(root); err != nil {
		return false, nil
	}
	if !checkChallengeConsistency(root) {
		return false, nil
	}

	fsBytes := fiatShamirBytes(root)
	expected := fiatShamirChallenge(fsBytes, message)
	return expected == *root.challenge, nil
}

// recomputeCommitments fills in every leaf's commitment from its parsed
// (challenge, response) pair, the same a = g^z * h^(-e) identity the
// simulator uses -- which a genuine response also satisfies, since
// z = r + e*w makes g^z * H^(-e) reduce to g^r.
func recomputeCommitments(n *node) error {
	switch n.prop.Kind {
	case KindTrivialProp:
		return nil
	case KindProveDlog:
		h := n.prop.Dlog.H
		n.a = groupGenerator().Exponentiate(n.z.Bytes()).Multiply(h.Exponentiate(n.challenge[:]).Negate())
		return nil
	case KindProveDhTuple:
		g, h, u, v := n.prop.DhTuple.G, n.prop.DhTuple.H, n.prop.DhTuple.U, n.prop.DhTuple.V
		n.a = g.Exponentiate(n.z.Bytes()).Multiply(u.Exponentiate(n.challenge[:]).Negate())
		n.a2 = h.Exponentiate(n.z.Bytes()).Multiply(v.Exponentiate(n.challenge[:]).Negate())
		return nil
	default:
		for _, c := range n.children {
			if err := recomputeCommitments(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// checkChallengeConsistency verifies every OR node's children XOR back to
// its own challenge and every threshold node's children lie on the
// degree-(n-k) polynomial fixed by the node's own challenge at x=0.
func checkChallengeConsistency(n *node) bool {
	switch n.prop.Kind {
	case KindTrivialProp, KindProveDlog, KindProveDhTuple:
		return true
	case KindCand:
		for _, c := range n.children {
			if *c.challenge != *n.challenge || !checkChallengeConsistency(c) {
				return false
			}
		}
		return true
	case KindCor:
		var acc Challenge
		for _, c := range n.children {
			acc = xorChallenge(acc, *c.challenge)
		}
		if acc != *n.challenge {
			return false
		}
		for _, c := range n.children {
			if !checkChallengeConsistency(c) {
				return false
			}
		}
		return true
	case KindCThreshold:
		if !checkThresholdConsistency(n) {
			return false
		}
		for _, c := range n.children {
			if !checkChallengeConsistency(c) {
				return false
			}
		}
		return true
	}
	return false
}

func checkThresholdConsistency(n *node) bool {
	degree := len(n.children) - n.prop.Threshold
	if degree < 0 {
		return false
	}
	if degree == 0 {
		for _, c := range n.children {
			if *c.challenge != *n.challenge {
				return false
			}
		}
		return true
	}
	basis := []point{{x: scalarFromIndex(0), y: n.challenge.scalar()}}
	for i := 0; i < degree; i++ {
		basis = append(basis, point{x: scalarFromIndex(i + 1), y: n.children[i].challenge.scalar()})
	}
	for i := degree; i < len(n.children); i++ {
		expected := lagrangeInterpolate(basis, scalarFromIndex(i+1))
		if expected != n.children[i].challenge.scalar() {
			return false
		}
	}
	return true
}
