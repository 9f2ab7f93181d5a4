package crypto

import "testing"

func TestBlake2b256IsDeterministic(t *testing.T) {
	p := Blake2bProvider{}
	a := p.Blake2b256([]byte("ergotree"))
	b := p.Blake2b256([]byte("ergotree"))
	if a != b {
		t.Fatal("hash of the same input must be equal")
	}
	c := p.Blake2b256([]byte("ergotree!"))
	if a == c {
		t.Fatal("hash of different input should (overwhelmingly) differ")
	}
}

func TestSha256Distinct(t *testing.T) {
	p := Blake2bProvider{}
	if p.Sha256([]byte("x")) == p.Blake2b256([]byte("x")) {
		t.Fatal("sha256 and blake2b256 must use distinct algorithms")
	}
}
