package chain

import (
	"bytes"
	"encoding/hex"
	"testing"

	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/serialization"
	"ergotree.dev/sigmachain/sigmatype"
)

func TestBoxIdDeterminism(t *testing.T) {
	value, err := primitive.NewBoxValue(67500000000)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	ergoTree, err := hex.DecodeString("100204a00b08cd021dde34603426402615658f1d970cfa7c7bd92ac81a8b16eeebff264d59ce4604ea02d192a39a8cc7a70173007301")
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	txid, err := primitive.TxIdFromHex("9148408c04c2e38a6402a7950d6157730fa7d49e9ab3b9cadec481d7769918e9")
	if err != nil {
		t.Fatalf("TxIdFromHex: %v", err)
	}
	cand, err := NewErgoBoxCandidate(value, ergoTree, nil, nil, 284761)
	if err != nil {
		t.Fatalf("NewErgoBoxCandidate: %v", err)
	}
	box, err := cand.ToBox(txid, 1, nil)
	if err != nil {
		t.Fatalf("ToBox: %v", err)
	}
	ok, err := VerifyBoxId(box)
	if err != nil {
		t.Fatalf("VerifyBoxId: %v", err)
	}
	if !ok {
		t.Fatalf("expected box id to verify against its own canonical bytes")
	}

	const wantId = "e56847ed19b3dc6b72828fcfb992fdf7310828cf291221269b7ffc72fd66706e"
	if got := hex.EncodeToString(box.Id.Bytes()); got != wantId {
		t.Fatalf("box id = %s, want reference vector %s", got, wantId)
	}
}

func TestVerifyBoxIdRejectsTamperedBox(t *testing.T) {
	value, err := primitive.NewBoxValue(1000)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	cand, err := NewErgoBoxCandidate(value, []byte{0x00}, nil, nil, 1)
	if err != nil {
		t.Fatalf("NewErgoBoxCandidate: %v", err)
	}
	box, err := cand.ToBox(primitive.TxId{}, 0, nil)
	if err != nil {
		t.Fatalf("ToBox: %v", err)
	}
	box.Value = primitive.BoxValue(9999)
	ok, err := VerifyBoxId(box)
	if err != nil {
		t.Fatalf("VerifyBoxId: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered box to fail id verification")
	}
}

func TestNewErgoBoxCandidateRejectsOversizedScript(t *testing.T) {
	value, err := primitive.NewBoxValue(1000)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	_, err = NewErgoBoxCandidate(value, make([]byte, MaxScriptSize+1), nil, nil, 0)
	if err == nil {
		t.Fatalf("expected oversized script to be rejected")
	}
}

func TestCanonicalBytesIncludesRegistersInAscendingOrder(t *testing.T) {
	value, err := primitive.NewBoxValue(1)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	box := sigmatype.Box{
		Value:         value,
		ErgoTreeBytes: []byte{0x00},
		Registers: map[byte]sigmatype.RegisterValue{
			5: {Type: sigmatype.SLong, Val: sigmatype.NewLong(2)},
			4: {Type: sigmatype.SLong, Val: sigmatype.NewLong(1)},
		},
	}
	raw, err := CanonicalBytes(box, nil)
	if err != nil {
		t.Fatalf("CanonicalBytes: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected non-empty canonical bytes")
	}

	w := serialization.NewWriter()
	w.PutVLQUint64(1)
	w.PutBytes([]byte{0x00})
	w.PutVLQUint32(0)
	w.PutU8(0)
	w.PutU8(2)
	for _, v := range []int64{1, 2} {
		if err := serialization.WriteConstant(w, sigmatype.NewLong(v)); err != nil {
			t.Fatalf("WriteConstant: %v", err)
		}
	}
	w.PutBytes(primitive.TxId{}.Bytes())
	w.PutVLQUint32(0)
	if !bytes.Equal(raw, w.Bytes()) {
		t.Fatalf("expected R4 then R5 in canonical bytes, got %x", raw)
	}
}
