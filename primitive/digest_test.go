package primitive

import "testing"

func TestDigest32HexRoundTrip(t *testing.T) {
	const hexStr = "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"
	d, err := Digest32FromHex(hexStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != hexStr {
		t.Fatalf("got %s want %s", d.String(), hexStr)
	}
}

func TestNewDigest32WrongLength(t *testing.T) {
	if _, err := NewDigest32(make([]byte, 31)); err == nil {
		t.Fatal("expected error for short input")
	}
	if _, err := NewDigest32(make([]byte, 33)); err == nil {
		t.Fatal("expected error for long input")
	}
}

func TestDigest32IsZero(t *testing.T) {
	var d Digest32
	if !d.IsZero() {
		t.Fatal("zero-valued digest should report IsZero")
	}
	d[0] = 1
	if d.IsZero() {
		t.Fatal("non-zero digest should not report IsZero")
	}
}
