package sigma

import "ergotree.dev/sigmachain/ecc"

// CThreshold distributes its node challenge among children via Shamir
// secret sharing over the secp256k1 scalar field: a degree (n-k) polynomial
// with P(0) equal to the node's own challenge is fixed by the k-of-n
// simulated children's (already-chosen) points, then evaluated at each real
// child's index to produce that child's challenge. This differs from Cor's
// plain XOR combination (Cor is handled separately, not as CThreshold(1,
// ...)) because the original protocol shares Cor's byte-string challenges
// over GF(2^SOUNDNESS_BYTES*8) via XOR, while general k-of-n sharing here
// uses the scalar field Lagrange interpolation the spec describes for
// threshold signatures.
func scalarFromIndex(i int) ecc.Scalar {
	return ecc.ScalarFromBytes([]byte{byte(i)})
}

func sub(a, b ecc.Scalar) ecc.Scalar { return a.Add(b.Negate()) }

type point struct {
	x, y ecc.Scalar
}

func lagrangeInterpolate(points []point, x ecc.Scalar) ecc.Scalar {
	sum := sub(scalarFromIndex(0), scalarFromIndex(0)) // additive identity
	for i, pi := range points {
		num := scalarFromIndex(1) // multiplicative identity
		den := scalarFromIndex(1)
		for j, pj := range points {
			if i == j {
				continue
			}
			num = num.Mul(sub(x, pj.x))
			den = den.Mul(sub(pi.x, pj.x))
		}
		term := pi.y.Mul(num).Mul(den.Inverse())
		sum = sum.Add(term)
	}
	return sum
}

// simulateThresholdSubtree simulates an entire CThreshold subtree under a
// fixed challenge e: it draws a random polynomial of degree
// len(children)-threshold with constant term e, evaluates it at every
// child's index, and simulates each child under the resulting challenge.
func simulateThresholdSubtree(n *node, e Challenge) {
	degree := len(n.children) - n.prop.Threshold
	coeffs := make([]ecc.Scalar, degree+1)
	coeffs[0] = e.scalar()
	for i := 1; i <= degree; i++ {
		r, _ := ecc.RandomScalar()
		coeffs[i] = r
	}
	for i, c := range n.children {
		x := scalarFromIndex(i + 1)
		y := evalPoly(coeffs, x)
		ch := scalarToChallenge(y)
		simulateSubtree(c, ch)
	}
}

func evalPoly(coeffs []ecc.Scalar, x ecc.Scalar) ecc.Scalar {
	acc := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		acc = acc.Mul(x).Add(coeffs[i])
	}
	return acc
}

// propagateThreshold distributes a real CThreshold node's challenge e to
// its real children by interpolating the unique degree (n-threshold)
// polynomial through (0,e) and every simulated child's already-assigned
// point, then evaluating it at each real child's index.
func propagateThreshold(n *node, e Challenge) error {
	points := []point{{x: scalarFromIndex(0), y: e.scalar()}}
	var realIdxs []int
	for i, c := range n.children {
		if c.real {
			realIdxs = append(realIdxs, i)
			continue
		}
		if c.challenge == nil {
			return errThresholdMissingChallenge
		}
		points = append(points, point{x: scalarFromIndex(i + 1), y: c.challenge.scalar()})
	}
	for _, idx := range realIdxs {
		x := scalarFromIndex(idx + 1)
		y := lagrangeInterpolate(points, x)
		ch := scalarToChallenge(y)
		n.children[idx].challenge = &ch
		if err := propagateAndRespond(n.children[idx], ch); err != nil {
			return err
		}
	}
	return nil
}
