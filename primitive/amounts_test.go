package primitive

import "testing"

func TestNewBoxValueBounds(t *testing.T) {
	if _, err := NewBoxValue(0); err == nil {
		t.Fatal("expected error for zero box value")
	}
	if _, err := NewBoxValue(1 << 63); err == nil {
		t.Fatal("expected error for box value above 2^63-1")
	}
	v, err := NewBoxValue(67_500_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Uint64() != 67_500_000_000 {
		t.Fatalf("got %d", v.Uint64())
	}
}

func TestBoxValueCheckedAddOverflow(t *testing.T) {
	max, _ := NewBoxValue(maxBoxValue)
	one, _ := NewBoxValue(1)
	if _, err := max.CheckedAdd(one); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestSumBoxValues(t *testing.T) {
	a, _ := NewBoxValue(100)
	b, _ := NewBoxValue(200)
	c, _ := NewBoxValue(300)
	sum, err := SumBoxValues([]BoxValue{a, b, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Uint64() != 600 {
		t.Fatalf("got %d", sum.Uint64())
	}

	max, _ := NewBoxValue(maxBoxValue)
	if _, err := SumBoxValues([]BoxValue{max, a}); err == nil {
		t.Fatal("expected overflow error on partial sum")
	}
}

func TestTokenAmountBounds(t *testing.T) {
	if _, err := NewTokenAmount(0); err == nil {
		t.Fatal("expected error for zero token amount")
	}
	amt, err := NewTokenAmount(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reduced, err := amt.CheckedSub(90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reduced.Uint64() != 10 {
		t.Fatalf("got %d", reduced.Uint64())
	}
	if _, err := amt.CheckedSub(200); err == nil {
		t.Fatal("expected underflow error")
	}
}

func TestTokenIdFromBoxId(t *testing.T) {
	box, _ := BoxIdFromHex("e56847ed19b3dc6b72828fcfb992fdf7310828cf291221269b7ffc72fd66706e")
	tok := TokenIdFromBoxId(box)
	if tok.String() != box.String() {
		t.Fatalf("mint token id must equal the first input box id")
	}
}
