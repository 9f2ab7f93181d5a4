package serialization

import (
	"testing"

	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

func roundTripConstant(t *testing.T, v sigmatype.Value) sigmatype.Value {
	t.Helper()
	w := NewWriter()
	if err := WriteConstant(w, v); err != nil {
		t.Fatalf("WriteConstant: %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := ReadConstant(r)
	if err != nil {
		t.Fatalf("ReadConstant: %v", err)
	}
	if r.Remaining() != 0 {
		t.Errorf("%d bytes left unread", r.Remaining())
	}
	return got
}

func TestConstantPrimitivesRoundTrip(t *testing.T) {
	vals := []sigmatype.Value{
		sigmatype.NewUnit(),
		sigmatype.NewBool(true),
		sigmatype.NewBool(false),
		sigmatype.NewByte(-12),
		sigmatype.NewShort(-30000),
		sigmatype.NewInt(123456789),
		sigmatype.NewLong(-9_000_000_000),
	}
	for _, v := range vals {
		got := roundTripConstant(t, v)
		if !got.Eq(v) {
			t.Errorf("round trip mismatch for %s: got %+v", v.Type, got)
		}
	}
}

func TestConstantBigIntRoundTrip(t *testing.T) {
	v := sigmatype.NewBigInt(primitive.NewBigIntFromInt64(-123456789012345))
	got := roundTripConstant(t, v)
	if !got.Eq(v) {
		t.Fatal("bigint round trip mismatch")
	}
}

func TestConstantGroupElementRoundTrip(t *testing.T) {
	v := sigmatype.NewGroupElement(ecc.Generator())
	got := roundTripConstant(t, v)
	if !got.Eq(v) {
		t.Fatal("group element round trip mismatch")
	}
}

func TestConstantByteCollRoundTrip(t *testing.T) {
	v := sigmatype.NewCollValue(sigmatype.NewByteColl([]byte{1, 2, 3, 4, 5}))
	got := roundTripConstant(t, v)
	if !got.Eq(v) {
		t.Fatal("byte coll round trip mismatch")
	}
}

func TestConstantCollOfIntRoundTrip(t *testing.T) {
	items := []sigmatype.Value{sigmatype.NewInt(1), sigmatype.NewInt(2), sigmatype.NewInt(3)}
	v := sigmatype.NewCollValue(sigmatype.NewBoxedColl(sigmatype.SInt, items))
	got := roundTripConstant(t, v)
	if !got.Eq(v) {
		t.Fatal("coll of int round trip mismatch")
	}
}

func TestConstantOptionRoundTrip(t *testing.T) {
	some := sigmatype.NewOption(sigmatype.NewLong(42))
	got := roundTripConstant(t, some)
	if !got.Eq(some) {
		t.Fatal("option some round trip mismatch")
	}
	none := sigmatype.NewNone(sigmatype.SLong)
	got2 := roundTripConstant(t, none)
	if !got2.Eq(none) {
		t.Fatal("option none round trip mismatch")
	}
}

func TestConstantTupleRoundTrip(t *testing.T) {
	v, err := sigmatype.NewTuple(sigmatype.NewInt(7), sigmatype.NewBool(true))
	if err != nil {
		t.Fatal(err)
	}
	got := roundTripConstant(t, v)
	if !got.Eq(v) {
		t.Fatal("tuple round trip mismatch")
	}
}

func TestReadTypeRejectsUnknownCode(t *testing.T) {
	r := NewReader([]byte{0xfe})
	if _, err := ReadType(r); err == nil {
		t.Fatal("expected error for unrecognized type code")
	}
}
