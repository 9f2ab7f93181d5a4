package store

import (
	"testing"

	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

func makeTestBox(t *testing.T, value uint64, seed byte) sigmatype.Box {
	t.Helper()
	boxValue, err := primitive.NewBoxValue(value)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	var id primitive.BoxId
	id[0] = seed
	var txid primitive.TxId
	txid[0] = seed
	return sigmatype.Box{
		Id:             id,
		Value:          boxValue,
		ErgoTreeBytes:  []byte{0x00},
		CreationHeight: 10,
		TransactionId:  txid,
		Index:          0,
	}
}

func TestDBPutGetDeleteBox(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	_ = db.Dir()
	_ = db.Manifest()

	box := makeTestBox(t, 1_000_000, 1)
	if err := db.PutBox(box); err != nil {
		t.Fatalf("PutBox: %v", err)
	}

	got, ok, err := db.GetBox(box.Id)
	if err != nil || !ok {
		t.Fatalf("GetBox: ok=%v err=%v", ok, err)
	}
	if got.Value.Uint64() != box.Value.Uint64() || got.CreationHeight != box.CreationHeight {
		t.Fatalf("got mismatch: %+v want %+v", got, box)
	}

	if err := db.DeleteBox(box.Id); err != nil {
		t.Fatalf("DeleteBox: %v", err)
	}
	_, ok, err = db.GetBox(box.Id)
	if err != nil {
		t.Fatalf("GetBox after delete: %v", err)
	}
	if ok {
		t.Fatalf("expected box to be deleted")
	}
}

func TestDBApplyAndRollbackHeight(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	spentBox := makeTestBox(t, 500_000, 2)
	if err := db.PutBox(spentBox); err != nil {
		t.Fatalf("PutBox: %v", err)
	}
	createdBox := makeTestBox(t, 500_000, 3)

	if err := db.ApplyHeight(100, []primitive.BoxId{spentBox.Id}, []sigmatype.Box{createdBox}); err != nil {
		t.Fatalf("ApplyHeight: %v", err)
	}

	if _, ok, _ := db.GetBox(spentBox.Id); ok {
		t.Fatalf("expected spent box to be gone after apply")
	}
	if _, ok, _ := db.GetBox(createdBox.Id); !ok {
		t.Fatalf("expected created box to be present after apply")
	}

	if err := db.RollbackHeight(100); err != nil {
		t.Fatalf("RollbackHeight: %v", err)
	}
	if _, ok, _ := db.GetBox(spentBox.Id); !ok {
		t.Fatalf("expected spent box restored after rollback")
	}
	if _, ok, _ := db.GetBox(createdBox.Id); ok {
		t.Fatalf("expected created box removed after rollback")
	}
	if _, ok, _ := db.GetUndo(100); ok {
		t.Fatalf("expected undo record consumed by rollback")
	}
}

func TestDBManifestRoundTrip(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m := &Manifest{SchemaVersion: SchemaVersionV1, TipHeight: 42, TipTxIdHex: "deadbeef", BoxCount: 3}
	if err := db.SetManifest(m); err != nil {
		t.Fatalf("SetManifest: %v", err)
	}
	dir := db.Dir()
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got := reopened.Manifest()
	if got == nil || got.TipHeight != 42 || got.TipTxIdHex != "deadbeef" {
		t.Fatalf("manifest mismatch: %+v", got)
	}
}
