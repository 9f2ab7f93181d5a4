package sigma

import (
	"bytes"
	"testing"

	"ergotree.dev/sigmachain/ecc"
)

func mustScalar(t *testing.T) ecc.Scalar {
	t.Helper()
	s, err := ecc.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	return s
}

func TestProveDlogRoundTrip(t *testing.T) {
	w := mustScalar(t)
	g := ecc.Generator()
	secret := NewDlogSecret(g, w)
	prop := secret.PublicImage()
	message := []byte("tx-digest")

	sig, err := Prove(prop, []Secret{secret}, nil, message)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(prop, sig, message)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected proof to verify")
	}
}

func TestProveDlogRejectsWrongMessage(t *testing.T) {
	w := mustScalar(t)
	secret := NewDlogSecret(ecc.Generator(), w)
	prop := secret.PublicImage()

	sig, err := Prove(prop, []Secret{secret}, nil, []byte("real message"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(prop, sig, []byte("tampered message"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("expected verification to fail for a tampered message")
	}
}

func TestProveDlogRejectsTamperedSignature(t *testing.T) {
	w := mustScalar(t)
	secret := NewDlogSecret(ecc.Generator(), w)
	prop := secret.PublicImage()
	message := []byte("tx-digest")

	sig, err := Prove(prop, []Secret{secret}, nil, message)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	sig[0] ^= 0xff
	ok, err := Verify(prop, sig, message)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("expected verification to fail for a tampered signature")
	}
}

func TestProveWithoutMatchingSecretFails(t *testing.T) {
	secret := NewDlogSecret(ecc.Generator(), mustScalar(t))
	prop := secret.PublicImage()
	other := NewDlogSecret(ecc.Generator(), mustScalar(t))

	_, err := Prove(prop, []Secret{other}, nil, []byte("m"))
	if err != ErrTreeRootIsNotReal {
		t.Fatalf("expected ErrTreeRootIsNotReal, got %v", err)
	}
}

func TestProveDhTupleRoundTrip(t *testing.T) {
	w := mustScalar(t)
	g := ecc.Generator()
	h := g.Exponentiate(mustScalar(t).Bytes())
	secret := NewDhTupleSecret(g, h, w)
	prop := secret.PublicImage()
	message := []byte("dh-message")

	sig, err := Prove(prop, []Secret{secret}, nil, message)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(prop, sig, message)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected DH-tuple proof to verify")
	}
}

func TestCandRoundTrip(t *testing.T) {
	s1 := NewDlogSecret(ecc.Generator(), mustScalar(t))
	s2 := NewDlogSecret(ecc.Generator(), mustScalar(t))
	prop := Cand(s1.PublicImage(), s2.PublicImage())
	message := []byte("and-message")

	sig, err := Prove(prop, []Secret{s1, s2}, nil, message)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(prop, sig, message)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected AND proof to verify")
	}
}

func TestCandFailsWithOneSecretMissing(t *testing.T) {
	s1 := NewDlogSecret(ecc.Generator(), mustScalar(t))
	s2 := NewDlogSecret(ecc.Generator(), mustScalar(t))
	prop := Cand(s1.PublicImage(), s2.PublicImage())

	_, err := Prove(prop, []Secret{s1}, nil, []byte("m"))
	if err != ErrTreeRootIsNotReal {
		t.Fatalf("expected ErrTreeRootIsNotReal, got %v", err)
	}
}

func TestCorRoundTripWithSingleKnownSecret(t *testing.T) {
	known := NewDlogSecret(ecc.Generator(), mustScalar(t))
	unknownProp := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	prop := Cor(known.PublicImage(), unknownProp)
	message := []byte("or-message")

	sig, err := Prove(prop, []Secret{known}, nil, message)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(prop, sig, message)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected OR proof to verify")
	}
}

func TestCThresholdRoundTrip2of3(t *testing.T) {
	s1 := NewDlogSecret(ecc.Generator(), mustScalar(t))
	s2 := NewDlogSecret(ecc.Generator(), mustScalar(t))
	s3prop := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	prop := CThreshold(2, s1.PublicImage(), s2.PublicImage(), s3prop)
	message := []byte("threshold-message")

	sig, err := Prove(prop, []Secret{s1, s2}, nil, message)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(prop, sig, message)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected threshold proof to verify")
	}
}

func TestCThresholdFailsBelowThreshold(t *testing.T) {
	s1 := NewDlogSecret(ecc.Generator(), mustScalar(t))
	s2prop := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	s3prop := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	prop := CThreshold(2, s1.PublicImage(), s2prop, s3prop)

	_, err := Prove(prop, []Secret{s1}, nil, []byte("m"))
	if err != ErrTreeRootIsNotReal {
		t.Fatalf("expected ErrTreeRootIsNotReal, got %v", err)
	}
}

func TestTrivialPropTrueVerifiesWithEmptySignature(t *testing.T) {
	ok, err := Verify(TrivialProp(true), nil, []byte("anything"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected trivial-true proposition to verify")
	}
}

func TestTrivialPropFalseNeverVerifies(t *testing.T) {
	ok, err := Verify(TrivialProp(false), nil, []byte("anything"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("expected trivial-false proposition to never verify")
	}
}

func TestSigmaPropBytesDistinguishesPropositions(t *testing.T) {
	a := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	b := NewDlogSecret(ecc.Generator(), mustScalar(t)).PublicImage()
	if bytes.Equal(a.SigmaPropBytes(), b.SigmaPropBytes()) {
		t.Fatalf("expected distinct public keys to serialize differently")
	}
}
