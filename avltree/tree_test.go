package avltree

import "testing"

// buildSingletonTree builds a one-leaf tree (empty sibling path) holding
// (key, value), returning the tree and a KeyProof for that key.
func buildSingletonTree(t *testing.T, key, value []byte) (*Tree, KeyProof) {
	t.Helper()
	leaf := leafHash(key, value)
	tr, err := New(leaf[:], int32(len(key)), nil, Flags{Insert: true, Update: true, Remove: true})
	if err != nil {
		t.Fatal(err)
	}
	return tr, KeyProof{Key: key, OldValue: value}
}

func TestLookupSucceedsForExistingKey(t *testing.T) {
	key, value := []byte("k1"), []byte("v1")
	tr, kp := buildSingletonTree(t, key, value)
	got, ok := tr.Lookup(key, kp)
	if !ok {
		t.Fatal("expected lookup to succeed")
	}
	if string(got) != "v1" {
		t.Errorf("got %q, want v1", got)
	}
}

func TestLookupFailsOnWrongValueInProof(t *testing.T) {
	key, value := []byte("k1"), []byte("v1")
	tr, kp := buildSingletonTree(t, key, value)
	kp.OldValue = []byte("wrong")
	if _, ok := tr.Lookup(key, kp); ok {
		t.Fatal("expected lookup to fail for mismatched proof value")
	}
}

func TestUpdateAppliesAndRecomputesDigest(t *testing.T) {
	key, value := []byte("k1"), []byte("v1")
	tr, kp := buildSingletonTree(t, key, value)

	newTr, ok := tr.Insert(OpUpdate, []Entry{{Key: key, Value: []byte("v2")}}, []KeyProof{kp})
	if !ok {
		t.Fatal("expected update to succeed")
	}
	wantLeaf := leafHash(key, []byte("v2"))
	if string(newTr.Digest()) != string(wantLeaf[:]) {
		t.Fatal("digest after update does not match expected leaf hash")
	}

	verifyProof := KeyProof{Key: key, OldValue: []byte("v2")}
	if _, ok := newTr.Lookup(key, verifyProof); !ok {
		t.Fatal("expected lookup of updated value to succeed")
	}
}

func TestUpdateRejectedWhenFlagDisabled(t *testing.T) {
	key, value := []byte("k1"), []byte("v1")
	leaf := leafHash(key, value)
	tr, err := New(leaf[:], int32(len(key)), nil, Flags{Update: false})
	if err != nil {
		t.Fatal(err)
	}
	kp := KeyProof{Key: key, OldValue: value}
	if _, ok := tr.Insert(OpUpdate, []Entry{{Key: key, Value: []byte("v2")}}, []KeyProof{kp}); ok {
		t.Fatal("expected update to be rejected when Flags.Update is false")
	}
}

func TestRemoveAppliesAndRecomputesDigest(t *testing.T) {
	key, value := []byte("k1"), []byte("v1")
	tr, kp := buildSingletonTree(t, key, value)
	newTr, ok := tr.Insert(OpRemove, []Entry{{Key: key}}, []KeyProof{kp})
	if !ok {
		t.Fatal("expected remove to succeed")
	}
	emptyLeaf := leafHash(nil, nil)
	if string(newTr.Digest()) != string(emptyLeaf[:]) {
		t.Fatal("digest after remove does not match empty leaf hash")
	}
}

func TestInsertRejectsWhenKeyAlreadyPresent(t *testing.T) {
	key, value := []byte("k1"), []byte("v1")
	tr, kp := buildSingletonTree(t, key, value)
	if _, ok := tr.Insert(OpInsert, []Entry{{Key: key, Value: []byte("v2")}}, []KeyProof{kp}); ok {
		t.Fatal("expected insert of an already-present key to fail")
	}
}

func TestUpdateOperationsAndUpdateDigestReturnCopies(t *testing.T) {
	key, value := []byte("k1"), []byte("v1")
	tr, _ := buildSingletonTree(t, key, value)
	tr2 := tr.UpdateOperations(Flags{Insert: false})
	if !tr.Flags().Insert {
		t.Fatal("original tree's flags must not be mutated")
	}
	if tr2.Flags().Insert {
		t.Fatal("expected new tree to carry updated flags")
	}
	tr3 := tr.UpdateDigest([]byte{1, 2, 3})
	if string(tr.Digest()) == string(tr3.Digest()) {
		t.Fatal("original tree's digest must not be mutated")
	}
}
