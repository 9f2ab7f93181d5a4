package sigma

import (
	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/serialization"
)

// HintKind distinguishes the two families of hints a co-signer can
// contribute towards a not-yet-complete multi-signature (spec §4.G's
// hints protocol): a commitment alone, or a commitment plus its challenge
// and response.
type HintKind int

const (
	HintRealCommitment HintKind = iota
	HintSimulatedCommitment
	HintRealSecretProof
	HintSimulatedSecretProof
	// HintOwnCommitment carries a prover's own previously-generated
	// commitment together with the randomness (in Z) that produced it, so
	// a later Prove call over the same proposition reuses it instead of
	// drawing fresh randomness. Unlike every other hint kind, this one is
	// meant to stay with the prover that created it, never transmitted.
	HintOwnCommitment
)

// Hint is one piece of partial-proof state attached to a single leaf
// proposition, identified by its position in the tree (the path of child
// indices from the root, matching the depth-first order writeTo/buildTree
// both walk in).
type Hint struct {
	Kind     HintKind
	Position []int
	Image    SigmaBoolean // the leaf proposition this hint concerns

	A, A2     [ecc.CompressedSize]byte // commitment(s), valid for every hint kind
	Challenge Challenge
	Z, Z2     []byte // responses for *SecretProof hints; HintOwnCommitment keeps its randomness in Z
}

// HintsBag collects the hints gathered for one transaction input, keyed by
// tree position, the way TransactionHintsBag does per-input in the
// original protocol.
type HintsBag struct {
	hints []Hint
}

// NewHintsBag returns an empty bag.
func NewHintsBag() *HintsBag { return &HintsBag{} }

// Add appends a hint.
func (b *HintsBag) Add(h Hint) { b.hints = append(b.hints, h) }

// ForPosition returns every hint recorded at the given tree position.
func (b *HintsBag) ForPosition(pos []int) []Hint {
	var out []Hint
	for _, h := range b.hints {
		if positionsEqual(h.Position, pos) {
			out = append(out, h)
		}
	}
	return out
}

// RealCommitments returns every hint in the bag that asserts a real
// commitment for the given leaf image: a peer's published `a`, which carries
// nothing of that peer's secret.
func (b *HintsBag) RealCommitments(image SigmaBoolean) []Hint {
	var out []Hint
	img := image.SigmaPropBytes()
	for _, h := range b.hints {
		if h.Kind == HintRealCommitment && bytesEqual(h.Image.SigmaPropBytes(), img) {
			out = append(out, h)
		}
	}
	return out
}

// hintForImage returns the first hint of the given kind attached to the
// leaf image, or nil. b may be nil (meaning no hints were supplied at
// all). Proving only ever looks for one hint kind at a time per leaf, so
// the first match is all callers need.
func (b *HintsBag) hintForImage(kind HintKind, image SigmaBoolean) *Hint {
	if b == nil {
		return nil
	}
	img := image.SigmaPropBytes()
	for i := range b.hints {
		if b.hints[i].Kind == kind && bytesEqual(b.hints[i].Image.SigmaPropBytes(), img) {
			return &b.hints[i]
		}
	}
	return nil
}

func positionsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TransactionHintsBag splits hints gathered across every input of a
// transaction into the secret half (only the signer who produced them
// should transmit this) and the public half (safe to broadcast to other
// co-signers), mirroring the original protocol's secret_hints/public_hints
// split.
type TransactionHintsBag struct {
	secretHints map[int]*HintsBag
	publicHints map[int]*HintsBag
}

// NewTransactionHintsBag returns an empty bag.
func NewTransactionHintsBag() *TransactionHintsBag {
	return &TransactionHintsBag{
		secretHints: make(map[int]*HintsBag),
		publicHints: make(map[int]*HintsBag),
	}
}

// AddHintsForInput records the secret and public hints extracted for
// transaction input at the given index.
func (t *TransactionHintsBag) AddHintsForInput(inputIndex int, secret, public *HintsBag) {
	t.secretHints[inputIndex] = secret
	t.publicHints[inputIndex] = public
}

// AllHintsForInput merges the secret and public hints recorded for an
// input into a single bag, as the prover consumes when attempting to
// complete a partial multi-signature.
func (t *TransactionHintsBag) AllHintsForInput(inputIndex int) *HintsBag {
	merged := NewHintsBag()
	if b, ok := t.secretHints[inputIndex]; ok {
		merged.hints = append(merged.hints, b.hints...)
	}
	if b, ok := t.publicHints[inputIndex]; ok {
		merged.hints = append(merged.hints, b.hints...)
	}
	return merged
}

// ExtractHints parses a completed signature against its proposition and
// splits every leaf's state into a RealCommitment/RealSecretProof hint (for
// leaves this prover proved directly) or a SimulatedCommitment/
// SimulatedSecretProof hint (for leaves this prover only simulated),
// letting a co-signer reuse the commitments without learning any secret
// (spec's "extract_hints").
func ExtractHints(prop SigmaBoolean, signature []byte, realSet map[string]bool) (secret, public *HintsBag, err error) {
	root := buildTree(prop)
	r := serialization.NewReader(signature)
	if err := parseProof(root, r); err != nil {
		return nil, nil, err
	}
	if err := recomputeCommitments(root); err != nil {
		return nil, nil, err
	}

	secret = NewHintsBag()
	public = NewHintsBag()
	var walk func(n *node, pos []int)
	walk = func(n *node, pos []int) {
		if n.prop.IsLeaf() && n.prop.Kind != KindTrivialProp {
			img := string(n.prop.SigmaPropBytes())
			commitKind, proofKind := HintSimulatedCommitment, HintSimulatedSecretProof
			bag := public
			if realSet[img] {
				commitKind, proofKind = HintRealCommitment, HintRealSecretProof
				bag = secret
			}
			h := Hint{Kind: commitKind, Position: append([]int{}, pos...), Image: n.prop}
			copy(h.A[:], n.a.SerializeCompressed())
			if n.prop.Kind == KindProveDhTuple {
				copy(h.A2[:], n.a2.SerializeCompressed())
			}
			bag.Add(h)
			proof := h
			proof.Kind = proofKind
			if n.challenge != nil {
				proof.Challenge = *n.challenge
			}
			proof.Z = n.z.Bytes()
			bag.Add(proof)
		}
		for i, c := range n.children {
			walk(c, append(pos, i))
		}
	}
	walk(root, nil)
	return secret, public, nil
}

// GenerateCommitments draws fresh real randomness and commits to it for
// every leaf in prop whose public image matches one of mySecrets, ahead
// of any Fiat-Shamir challenge — the pre-commitment round spec §8
// scenario 2's distributed signing starts with, letting a co-signer
// publish its real commitment before it or anyone else has seen the rest
// of the tree. The returned bag carries, at each matched leaf's position,
// a HintRealCommitment (commitment only, safe to hand to a co-signer so
// their own Prove call can fold it into the Fiat-Shamir hash) and a
// HintOwnCommitment (commitment plus the retained randomness, fed back
// into this prover's own later Prove call so it reuses rather than
// redraws it).
func GenerateCommitments(prop SigmaBoolean, mySecrets []Secret) (*HintsBag, error) {
	known := func(leaf SigmaBoolean) (*Secret, bool) {
		img := leaf.SigmaPropBytes()
		for i := range mySecrets {
			if bytesEqual(mySecrets[i].PublicImage().SigmaPropBytes(), img) {
				return &mySecrets[i], true
			}
		}
		return nil, false
	}

	bag := NewHintsBag()
	var walk func(n SigmaBoolean, pos []int) error
	walk = func(n SigmaBoolean, pos []int) error {
		if n.IsLeaf() && n.Kind != KindTrivialProp {
			if _, ok := known(n); !ok {
				return nil
			}
			r, err := ecc.RandomScalar()
			if err != nil {
				return err
			}
			var a, a2 ecc.EcPoint
			switch n.Kind {
			case KindProveDlog:
				a = ecc.Generator().Exponentiate(r.Bytes())
			case KindProveDhTuple:
				a = n.DhTuple.G.Exponentiate(r.Bytes())
				a2 = n.DhTuple.H.Exponentiate(r.Bytes())
			}
			public := Hint{Kind: HintRealCommitment, Position: append([]int{}, pos...), Image: n}
			copy(public.A[:], a.SerializeCompressed())
			if n.Kind == KindProveDhTuple {
				copy(public.A2[:], a2.SerializeCompressed())
			}
			bag.Add(public)

			own := public
			own.Kind = HintOwnCommitment
			own.Z = r.Bytes()
			bag.Add(own)
			return nil
		}
		for i, c := range n.Children {
			if err := walk(c, append(pos, i)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(prop, nil); err != nil {
		return nil, err
	}
	return bag, nil
}
