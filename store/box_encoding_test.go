package store

import (
	"testing"

	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

func TestEncodeDecodeBoxRoundTrip(t *testing.T) {
	value, err := primitive.NewBoxValue(123456)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	amt, err := primitive.NewTokenAmount(9)
	if err != nil {
		t.Fatalf("NewTokenAmount: %v", err)
	}
	var id primitive.BoxId
	id[0] = 0x77
	var txid primitive.TxId
	txid[0] = 0x42

	box := sigmatype.Box{
		Id:            id,
		Value:         value,
		ErgoTreeBytes: []byte{0x01, 0x02, 0x03},
		Tokens:        []primitive.Token{{Id: primitive.TokenId{0xAA}, Amount: amt}},
		Registers: map[byte]sigmatype.RegisterValue{
			4: {Type: sigmatype.SLong, Val: sigmatype.NewLong(99)},
			5: {RawOnly: true, Raw: []byte{0xDE, 0xAD}},
		},
		CreationHeight: 777,
		TransactionId:  txid,
		Index:          3,
	}

	enc, err := encodeBox(box)
	if err != nil {
		t.Fatalf("encodeBox: %v", err)
	}
	got, err := decodeBox(enc)
	if err != nil {
		t.Fatalf("decodeBox: %v", err)
	}

	if got.Id != box.Id || got.Value.Uint64() != box.Value.Uint64() || got.CreationHeight != box.CreationHeight || got.Index != box.Index {
		t.Fatalf("scalar field mismatch: %+v vs %+v", got, box)
	}
	if len(got.Tokens) != 1 || got.Tokens[0].Id != box.Tokens[0].Id || got.Tokens[0].Amount.Uint64() != 9 {
		t.Fatalf("token mismatch: %+v", got.Tokens)
	}
	if len(got.Registers) != 2 {
		t.Fatalf("expected 2 registers, got %d", len(got.Registers))
	}
	if got.Registers[4].Val.Long != 99 {
		t.Fatalf("expected register 4 long value 99, got %+v", got.Registers[4])
	}
	if !got.Registers[5].RawOnly || string(got.Registers[5].Raw) != "\xde\xad" {
		t.Fatalf("expected register 5 raw bytes preserved, got %+v", got.Registers[5])
	}
}
