package sigmatype

import (
	"testing"

	"ergotree.dev/sigmachain/primitive"
)

func TestValueEqPrimitives(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal bools", NewBool(true), NewBool(true), true},
		{"unequal bools", NewBool(true), NewBool(false), false},
		{"equal longs", NewLong(42), NewLong(42), true},
		{"unequal longs", NewLong(42), NewLong(43), false},
		{"equal bytes", NewByte(7), NewByte(7), true},
		{"different types never equal", NewInt(1), NewLong(1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Eq(tc.b); got != tc.want {
				t.Fatalf("Eq() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValueEqBigInt(t *testing.T) {
	a := NewBigInt(primitive.NewBigIntFromInt64(100))
	b := NewBigInt(primitive.NewBigIntFromInt64(100))
	c := NewBigInt(primitive.NewBigIntFromInt64(-100))
	if !a.Eq(b) {
		t.Fatalf("expected equal BigInt values to be Eq")
	}
	if a.Eq(c) {
		t.Fatalf("expected different BigInt values to not be Eq")
	}
}

func TestCollByteGetAndLen(t *testing.T) {
	c := NewByteColl([]byte{1, 2, 3})
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	v, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Byte != 2 {
		t.Fatalf("Get(1).Byte = %d, want 2", v.Byte)
	}
	if _, err := c.Get(3); err == nil {
		t.Fatalf("expected out-of-range Get to fail")
	}
}

func TestCollBoxedAsSlice(t *testing.T) {
	items := []Value{NewInt(1), NewInt(2), NewInt(3)}
	c := NewBoxedColl(SInt, items)
	slice := c.AsSlice()
	if len(slice) != 3 {
		t.Fatalf("AsSlice() len = %d, want 3", len(slice))
	}
	for i, v := range slice {
		if !v.Eq(items[i]) {
			t.Fatalf("AsSlice()[%d] = %v, want %v", i, v, items[i])
		}
	}
}

func TestValueEqColl(t *testing.T) {
	a := NewCollValue(NewByteColl([]byte{1, 2}))
	b := NewCollValue(NewByteColl([]byte{1, 2}))
	c := NewCollValue(NewByteColl([]byte{1, 3}))
	if !a.Eq(b) {
		t.Fatalf("expected equal byte colls to be Eq")
	}
	if a.Eq(c) {
		t.Fatalf("expected different byte colls to not be Eq")
	}
}

func TestValueEqOption(t *testing.T) {
	some1 := NewOption(NewInt(5))
	some2 := NewOption(NewInt(5))
	some3 := NewOption(NewInt(6))
	none := NewNone(SInt)
	if !some1.Eq(some2) {
		t.Fatalf("expected equal Some values to be Eq")
	}
	if some1.Eq(some3) {
		t.Fatalf("expected different Some values to not be Eq")
	}
	if some1.Eq(none) {
		t.Fatalf("expected Some and None to not be Eq")
	}
}

func TestNewTupleDerivesType(t *testing.T) {
	tup, err := NewTuple(NewInt(1), NewBool(true))
	if err != nil {
		t.Fatalf("NewTuple: %v", err)
	}
	if tup.Type.Kind != KindTuple {
		t.Fatalf("expected tuple type, got %s", tup.Type)
	}
	if len(tup.Type.Items) != 2 {
		t.Fatalf("expected 2 tuple item types, got %d", len(tup.Type.Items))
	}
}

func TestTryExtractMismatchFails(t *testing.T) {
	v := NewInt(5)
	if _, err := v.TryExtractBool(); err == nil {
		t.Fatalf("expected TryExtractBool to fail on an Int value")
	}
	if _, err := v.TryExtractLong(); err == nil {
		t.Fatalf("expected TryExtractLong to fail on an Int value")
	}
}

func TestTryExtractBox(t *testing.T) {
	box := Box{Value: primitive.BoxValue(1000)}
	v := Value{Type: SBox, BoxVal: box}
	got, err := v.TryExtractBox()
	if err != nil {
		t.Fatalf("TryExtractBox: %v", err)
	}
	if got.Value != box.Value {
		t.Fatalf("TryExtractBox() = %+v, want %+v", got, box)
	}
}
