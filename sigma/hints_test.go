package sigma

import (
	"testing"

	"ergotree.dev/sigmachain/ecc"
)

func TestExtractHintsSplitsRealAndSimulated(t *testing.T) {
	known := NewDlogSecret(ecc.Generator(), mustScalar(t))
	unknownProp := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	prop := Cor(known.PublicImage(), unknownProp)
	message := []byte("hints-message")

	sig, err := Prove(prop, []Secret{known}, nil, message)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	realSet := map[string]bool{string(known.PublicImage().SigmaPropBytes()): true}
	secretHints, publicHints, err := ExtractHints(prop, sig, realSet)
	if err != nil {
		t.Fatalf("ExtractHints: %v", err)
	}
	if len(secretHints.hints) == 0 {
		t.Fatalf("expected at least one secret hint for the real leaf")
	}
	if len(publicHints.hints) == 0 {
		t.Fatalf("expected at least one public hint for the simulated leaf")
	}
	for _, h := range secretHints.hints {
		if h.Kind != HintRealCommitment && h.Kind != HintRealSecretProof {
			t.Fatalf("secret hint bag leaked a simulated hint: %+v", h)
		}
	}
	for _, h := range publicHints.hints {
		if h.Kind != HintSimulatedCommitment && h.Kind != HintSimulatedSecretProof {
			t.Fatalf("public hint bag leaked a real hint: %+v", h)
		}
	}
}

func TestHintsBagForPosition(t *testing.T) {
	bag := NewHintsBag()
	img := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	bag.Add(Hint{Kind: HintRealCommitment, Position: []int{0, 1}, Image: img})
	bag.Add(Hint{Kind: HintSimulatedCommitment, Position: []int{0}, Image: img})

	got := bag.ForPosition([]int{0, 1})
	if len(got) != 1 {
		t.Fatalf("expected exactly one hint at position [0,1], got %d", len(got))
	}
}

// TestDistributedTwoSignerAndProofScenario2 exercises the distributed
// signing flow spec §8 scenario 2 describes for a 2-of-2 AND proposition,
// across two independent Prove calls standing in for two co-signers who
// never share a secret with each other:
//
//  1. Co-signer 2 (holds secretB) runs GenerateCommitments and keeps the
//     HintOwnCommitment private, publishing only the HintRealCommitment.
//  2. Co-signer 1 (holds secretA) runs Prove with that public hint; it
//     marks leaf B real without ever learning wB, producing a partial
//     signature that does not yet verify.
//  3. Co-signer 1 runs ExtractHints over its own partial signature to
//     recover leaf A's finished proof as a portable hint.
//  4. Co-signer 2 combines that hint with its own retained
//     HintOwnCommitment and runs Prove again with secretB: the
//     Fiat-Shamir hash reproduces the same root challenge because both
//     leaves' commitments are unchanged from step 1/2, so leaf B's
//     response completes the signature without redoing leaf A's work.
func TestDistributedTwoSignerAndProofScenario2(t *testing.T) {
	secretA := NewDlogSecret(ecc.Generator(), mustScalar(t))
	secretB := NewDlogSecret(ecc.Generator(), mustScalar(t))
	prop := Cand(secretA.PublicImage(), secretB.PublicImage())
	message := []byte("scenario-2-distributed-and")

	ownHintsB, err := GenerateCommitments(prop, []Secret{secretB})
	if err != nil {
		t.Fatalf("GenerateCommitments: %v", err)
	}
	publicHintsB := NewHintsBag()
	for _, h := range ownHintsB.hints {
		if h.Kind == HintRealCommitment {
			publicHintsB.Add(h)
		}
	}

	partialSig, err := Prove(prop, []Secret{secretA}, publicHintsB, message)
	if err != nil {
		t.Fatalf("co-signer 1 Prove: %v", err)
	}
	if ok, _ := Verify(prop, partialSig, message); ok {
		t.Fatalf("partial signature missing co-signer 2's response should not verify")
	}

	realSetA := map[string]bool{string(secretA.PublicImage().SigmaPropBytes()): true}
	secretHintsA, _, err := ExtractHints(prop, partialSig, realSetA)
	if err != nil {
		t.Fatalf("ExtractHints: %v", err)
	}

	combined := NewHintsBag()
	combined.hints = append(combined.hints, secretHintsA.hints...)
	for _, h := range ownHintsB.hints {
		if h.Kind == HintOwnCommitment {
			combined.Add(h)
		}
	}

	finalSig, err := Prove(prop, []Secret{secretB}, combined, message)
	if err != nil {
		t.Fatalf("co-signer 2 Prove: %v", err)
	}
	ok, err := Verify(prop, finalSig, message)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected the jointly-completed AND proof to verify")
	}
}

func TestTransactionHintsBagMergesSecretAndPublic(t *testing.T) {
	secret := NewHintsBag()
	public := NewHintsBag()
	img := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	secret.Add(Hint{Kind: HintRealCommitment, Image: img})
	public.Add(Hint{Kind: HintSimulatedCommitment, Image: img})

	tb := NewTransactionHintsBag()
	tb.AddHintsForInput(0, secret, public)
	merged := tb.AllHintsForInput(0)
	if len(merged.hints) != 2 {
		t.Fatalf("expected 2 merged hints, got %d", len(merged.hints))
	}
}
