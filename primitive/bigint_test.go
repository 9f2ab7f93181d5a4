package primitive

import "testing"

func TestBigIntRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, -128, 1000000, -1000000} {
		b := NewBigIntFromInt64(v)
		got := NewBigIntFromBytes(b.Bytes())
		if !got.Eq(b) {
			t.Fatalf("round trip failed for %d: got %s", v, got.Big().String())
		}
	}
}

func TestBigIntCheckedArithmetic(t *testing.T) {
	a := NewBigIntFromInt64(10)
	b := NewBigIntFromInt64(3)

	sum, err := a.CheckedAdd(b)
	if err != nil || sum.Big().Int64() != 13 {
		t.Fatalf("add: got %v err %v", sum, err)
	}
	diff, err := a.CheckedSub(b)
	if err != nil || diff.Big().Int64() != 7 {
		t.Fatalf("sub: got %v err %v", diff, err)
	}
	prod, err := a.CheckedMul(b)
	if err != nil || prod.Big().Int64() != 30 {
		t.Fatalf("mul: got %v err %v", prod, err)
	}
	quot, err := a.CheckedDiv(b)
	if err != nil || quot.Big().Int64() != 3 {
		t.Fatalf("div: got %v err %v", quot, err)
	}
	rem, err := a.CheckedMod(b)
	if err != nil || rem.Big().Int64() != 1 {
		t.Fatalf("mod: got %v err %v", rem, err)
	}

	zero := NewBigIntFromInt64(0)
	if _, err := a.CheckedDiv(zero); err == nil {
		t.Fatal("expected division-by-zero error")
	}
	if _, err := a.CheckedMod(zero); err == nil {
		t.Fatal("expected modulo-by-zero error")
	}
}

func TestBigIntOverflow(t *testing.T) {
	huge := NewBigIntFromBytes(make([]byte, BigIntSize))
	huge.v.SetBit(huge.v, 8*BigIntSize-1, 1) // one bit past the signed 256-bit budget
	if _, err := huge.CheckedAdd(NewBigIntFromInt64(1)); err == nil {
		t.Fatal("expected overflow error beyond the 256-bit budget")
	}
}
