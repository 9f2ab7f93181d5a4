package chain

import (
	"testing"

	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

func tokenBox(t *testing.T, value uint64, tokenAmount uint64, script []byte) sigmatype.Box {
	t.Helper()
	boxValue, err := primitive.NewBoxValue(value)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	var tokens []primitive.Token
	if tokenAmount > 0 {
		amt, err := primitive.NewTokenAmount(tokenAmount)
		if err != nil {
			t.Fatalf("NewTokenAmount: %v", err)
		}
		tokens = []primitive.Token{{Id: primitive.TokenId{0xAA}, Amount: amt}}
	}
	cand, err := NewErgoBoxCandidate(boxValue, script, tokens, nil, 0)
	if err != nil {
		t.Fatalf("NewErgoBoxCandidate: %v", err)
	}
	box, err := cand.ToBox(primitive.TxId{}, 0, nil)
	if err != nil {
		t.Fatalf("ToBox: %v", err)
	}
	return box
}

// TestTokenPreservationWithMinting mirrors spec scenario 5: a box with
// value 10^8 and 100 units of token T, spent into a box with 9*10^7
// carrying 90 units of T plus 1 newly minted unit of the mint token
// (whose id must equal the first input's box id).
func TestTokenPreservationWithMinting(t *testing.T) {
	script := []byte{0x00}
	existingAmt, err := primitive.NewTokenAmount(100)
	if err != nil {
		t.Fatalf("NewTokenAmount: %v", err)
	}
	inValue, err := primitive.NewBoxValue(100_000_000)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	inCand, err := NewErgoBoxCandidate(inValue, script, []primitive.Token{{Id: primitive.TokenId{0x01}, Amount: existingAmt}}, nil, 0)
	if err != nil {
		t.Fatalf("NewErgoBoxCandidate: %v", err)
	}
	inputBox, err := inCand.ToBox(primitive.TxId{0x02}, 0, nil)
	if err != nil {
		t.Fatalf("ToBox: %v", err)
	}

	mintId := primitive.TokenIdFromBoxId(inputBox.Id)
	outAmt, err := primitive.NewTokenAmount(90)
	if err != nil {
		t.Fatalf("NewTokenAmount: %v", err)
	}
	mintAmt, err := primitive.NewTokenAmount(1)
	if err != nil {
		t.Fatalf("NewTokenAmount: %v", err)
	}
	outValue, err := primitive.NewBoxValue(90_000_000)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	outCand, err := NewErgoBoxCandidate(outValue, script, []primitive.Token{
		{Id: primitive.TokenId{0x01}, Amount: outAmt},
		{Id: mintId, Amount: mintAmt},
	}, nil, 0)
	if err != nil {
		t.Fatalf("NewErgoBoxCandidate: %v", err)
	}

	tx, err := NewTransaction([]TxInput{{BoxId: inputBox.Id}}, nil, []ErgoBoxCandidate{outCand})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	tc, err := NewTransactionContext(tx, map[primitive.BoxId]sigmatype.Box{inputBox.Id: inputBox}, 0, sigmatype.PreHeader{}, nil)
	if err != nil {
		t.Fatalf("NewTransactionContext: %v", err)
	}
	if err := tc.validateAssetPreservation(); err != nil {
		t.Fatalf("validateAssetPreservation: %v", err)
	}

	// Increase output of T to 110 without changing inputs: must fail
	// token preservation.
	badAmt, err := primitive.NewTokenAmount(110)
	if err != nil {
		t.Fatalf("NewTokenAmount: %v", err)
	}
	badOutCand, err := NewErgoBoxCandidate(outValue, script, []primitive.Token{
		{Id: primitive.TokenId{0x01}, Amount: badAmt},
		{Id: mintId, Amount: mintAmt},
	}, nil, 0)
	if err != nil {
		t.Fatalf("NewErgoBoxCandidate: %v", err)
	}
	badTx, err := NewTransaction([]TxInput{{BoxId: inputBox.Id}}, nil, []ErgoBoxCandidate{badOutCand})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	badTc, err := NewTransactionContext(badTx, map[primitive.BoxId]sigmatype.Box{inputBox.Id: inputBox}, 0, sigmatype.PreHeader{}, nil)
	if err != nil {
		t.Fatalf("NewTransactionContext: %v", err)
	}
	err = badTc.validateAssetPreservation()
	if err == nil {
		t.Fatalf("expected token preservation violation")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Code != ErrTokenPreservation {
		t.Fatalf("expected ErrTokenPreservation, got %v", err)
	}
}

func TestTxBuilderRejectsSecondMintedToken(t *testing.T) {
	script := []byte{0x00}
	input := tokenBox(t, 1_000_000, 0, script)

	mintId := primitive.TokenIdFromBoxId(input.Id)
	amt1, _ := primitive.NewTokenAmount(1)
	amt2, _ := primitive.NewTokenAmount(1)
	out1Value, _ := primitive.NewBoxValue(500_000)
	out1, err := NewBoxBuilder(out1Value, script, 0).AddToken(primitive.Token{Id: mintId, Amount: amt1}).Build()
	if err != nil {
		t.Fatalf("Build out1: %v", err)
	}
	out2Value, _ := primitive.NewBoxValue(500_000)
	secondNovelId := primitive.TokenId{0xEE}
	out2, err := NewBoxBuilder(out2Value, script, 0).AddToken(primitive.Token{Id: secondNovelId, Amount: amt2}).Build()
	if err != nil {
		t.Fatalf("Build out2: %v", err)
	}

	tb := NewTxBuilder(0).AddInputBox(input).AddOutputCandidate(out1).AddOutputCandidate(out2)
	_, err = tb.Build()
	if err == nil {
		t.Fatalf("expected build to reject a second minted token id")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Code != ErrInvalidArgs {
		t.Fatalf("expected ErrInvalidArgs, got %v", err)
	}
}

func TestTxBuilderProducesChangeOutput(t *testing.T) {
	script := []byte{0x00}
	input := tokenBox(t, 1_000_000, 0, script)

	outValue, _ := primitive.NewBoxValue(300_000)
	out, err := NewBoxBuilder(outValue, script, 0).Build()
	if err != nil {
		t.Fatalf("Build out: %v", err)
	}

	tb := NewTxBuilder(0).AddInputBox(input).AddOutputCandidate(out).SetChangeScript(script)
	tx, err := tb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tx.Outputs) != 2 {
		t.Fatalf("expected an explicit output plus a change output, got %d outputs", len(tx.Outputs))
	}
	change := tx.Outputs[1]
	if change.Value.Uint64() != 700_000 {
		t.Fatalf("expected change value 700000, got %d", change.Value.Uint64())
	}
}

func TestTxBuilderRejectsLeftoverTokenWithoutChangeOrBurn(t *testing.T) {
	script := []byte{0x00}
	input := tokenBox(t, 1_000_000, 100, script)

	outValue, _ := primitive.NewBoxValue(1_000_000)
	out, err := NewBoxBuilder(outValue, script, 0).Build()
	if err != nil {
		t.Fatalf("Build out: %v", err)
	}

	tb := NewTxBuilder(0).AddInputBox(input).AddOutputCandidate(out)
	_, err = tb.Build()
	if err == nil {
		t.Fatalf("expected build to reject an unplaced leftover token")
	}
}
