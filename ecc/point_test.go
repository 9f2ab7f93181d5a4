package ecc

import "testing"

func TestIdentitySerializesToAllZero(t *testing.T) {
	got := Identity().SerializeCompressed()
	for i, b := range got {
		if b != 0 {
			t.Fatalf("byte %d: got %#x want 0", i, b)
		}
	}
}

func TestGeneratorRoundTrip(t *testing.T) {
	g := Generator()
	encoded := g.SerializeCompressed()
	if len(encoded) != CompressedSize {
		t.Fatalf("got %d bytes", len(encoded))
	}
	decoded, err := ParseCompressed(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Eq(decoded) {
		t.Fatal("round trip did not preserve the point")
	}
}

func TestExponentiateByGroupOrderYieldsIdentity(t *testing.T) {
	g := Generator()
	// secp256k1 group order n.
	n := []byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe,
		0xba, 0xae, 0xdc, 0xe6, 0xaf, 0x48, 0xa0, 0x3b,
		0xbf, 0xd2, 0x5e, 0x8c, 0xd0, 0x36, 0x41, 0x41,
	}
	result := g.Exponentiate(n)
	if !result.IsIdentity() {
		t.Fatal("generator exponentiated by the group order should be identity")
	}
}

func TestMultiplyWithIdentityIsNoOp(t *testing.T) {
	g := Generator()
	if !g.Multiply(Identity()).Eq(g) {
		t.Fatal("g * identity must equal g")
	}
	if !Identity().Multiply(g).Eq(g) {
		t.Fatal("identity * g must equal g")
	}
}

func TestExponentiateByTwoEqualsSelfAdd(t *testing.T) {
	g := Generator()
	doubled := g.Multiply(g)
	two := make([]byte, 32)
	two[31] = 2
	scaled := g.Exponentiate(two)
	if !doubled.Eq(scaled) {
		t.Fatal("2*G via addition must equal 2*G via scalar multiplication")
	}
}

func TestParseCompressedRejectsWrongLength(t *testing.T) {
	if _, err := ParseCompressed(make([]byte, 10)); err == nil {
		t.Fatal("expected error for short input")
	}
}
