package chain

import (
	"testing"

	"ergotree.dev/sigmachain/primitive"
)

func txid(b byte) primitive.TxId {
	var d primitive.Digest32
	d[0] = b
	return primitive.TxId(d)
}

func TestTransactionsRootDeterministic(t *testing.T) {
	ids := []primitive.TxId{txid(1), txid(2), txid(3)}
	root1, err := TransactionsRoot(ids)
	if err != nil {
		t.Fatalf("TransactionsRoot: %v", err)
	}
	root2, err := TransactionsRoot(ids)
	if err != nil {
		t.Fatalf("TransactionsRoot: %v", err)
	}
	if root1 != root2 {
		t.Fatal("same id list must produce the same root")
	}
}

func TestTransactionsRootOrderSensitive(t *testing.T) {
	forward, err := TransactionsRoot([]primitive.TxId{txid(1), txid(2)})
	if err != nil {
		t.Fatalf("TransactionsRoot: %v", err)
	}
	reversed, err := TransactionsRoot([]primitive.TxId{txid(2), txid(1)})
	if err != nil {
		t.Fatalf("TransactionsRoot: %v", err)
	}
	if forward == reversed {
		t.Fatal("swapping transaction order should (overwhelmingly) change the root")
	}
}

func TestTransactionsRootSingleLeaf(t *testing.T) {
	root, err := TransactionsRoot([]primitive.TxId{txid(7)})
	if err != nil {
		t.Fatalf("TransactionsRoot: %v", err)
	}
	if root == primitive.Digest32(txid(7)) {
		t.Fatal("single-leaf root must still be tagged, not the raw id")
	}
}

func TestTransactionsRootRejectsEmpty(t *testing.T) {
	if _, err := TransactionsRoot(nil); err == nil {
		t.Fatal("expected an error for an empty transaction id list")
	}
}

func TestTransactionsRootOddNodePromotedUnchanged(t *testing.T) {
	// A 3-leaf tree promotes its last node unchanged at the first level;
	// adding a 4th distinct leaf must not collide with that promotion.
	three, err := TransactionsRoot([]primitive.TxId{txid(1), txid(2), txid(3)})
	if err != nil {
		t.Fatalf("TransactionsRoot: %v", err)
	}
	four, err := TransactionsRoot([]primitive.TxId{txid(1), txid(2), txid(3), txid(4)})
	if err != nil {
		t.Fatalf("TransactionsRoot: %v", err)
	}
	if three == four {
		t.Fatal("distinct transaction sets must not collide")
	}

	pair, err := TransactionsRoot([]primitive.TxId{txid(1), txid(2)})
	if err != nil {
		t.Fatalf("TransactionsRoot: %v", err)
	}
	leaf3 := merkleHasher.Blake2b256(append([]byte{merkleLeafTag}, txid(3).Bytes()...))
	want := merkleHasher.Blake2b256(append(append([]byte{merkleNodeTag}, pair[:]...), leaf3[:]...))
	if three != primitive.Digest32(want) {
		t.Fatal("3-leaf root must hash the promoted third leaf unchanged against the first pair's node")
	}
}
