package chain

import (
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/serialization"
	"ergotree.dev/sigmachain/sigmatype"
)

// MaxInputs, MaxDataInputs and MaxOutputs are the inclusive upper bounds
// spec §4.H fixes for a transaction's three box lists: 1..32767 inputs,
// 0..32767 data inputs, 1..32767 outputs.
const (
	MaxInputs     = 32767
	MaxDataInputs = 32767
	MaxOutputs    = 32767
)

// TxInput references a box to spend: the box id, the bytes a script can
// observe through CONTEXT.getVar (the context extension), and the
// spending proof produced by the sigma-prover for that box's guarding
// script.
type TxInput struct {
	BoxId            primitive.BoxId
	ContextExtension map[byte]sigmatype.Value
	SpendingProof    []byte
}

// DataInput references a box made readable (but not spendable) by a
// transaction, via CONTEXT.dataInputs.
type DataInput struct {
	BoxId primitive.BoxId
}

// Transaction is the unsigned/signed shape spec §4.H describes: 1..32767
// inputs, 0..32767 data inputs, 1..32767 output candidates. Outputs only
// become ErgoBoxes (with a definite id) once bound to this transaction's
// id via Finalize.
type Transaction struct {
	Inputs     []TxInput
	DataInputs []DataInput
	Outputs    []ErgoBoxCandidate
}

// NewTransaction validates the input/data-input/output count bounds and
// returns the assembled transaction.
func NewTransaction(inputs []TxInput, dataInputs []DataInput, outputs []ErgoBoxCandidate) (Transaction, error) {
	if len(inputs) == 0 {
		return Transaction{}, chainerr(ErrNoInputBoxes, "transaction must have at least one input")
	}
	if len(inputs) > MaxInputs {
		return Transaction{}, chainerr(ErrTooManyInputBoxes, "transaction has %d inputs, max %d", len(inputs), MaxInputs)
	}
	if len(dataInputs) > MaxDataInputs {
		return Transaction{}, chainerr(ErrTooManyDataInputs, "transaction has %d data inputs, max %d", len(dataInputs), MaxDataInputs)
	}
	if len(outputs) == 0 {
		return Transaction{}, chainerr(ErrNoOutputBoxes, "transaction must have at least one output")
	}
	if len(outputs) > MaxOutputs {
		return Transaction{}, chainerr(ErrTooManyOutputs, "transaction has %d outputs, max %d", len(outputs), MaxOutputs)
	}
	return Transaction{
		Inputs:     append([]TxInput(nil), inputs...),
		DataInputs: append([]DataInput(nil), dataInputs...),
		Outputs:    append([]ErgoBoxCandidate(nil), outputs...),
	}, nil
}

// Id computes the transaction id: blake2b256 over the input box ids, the
// data input box ids, and each output candidate's value, ergo tree bytes
// and creation height. Output tokens and registers are not part of the
// hashed bytes, and neither are spending proofs (the txid is the message
// those proofs sign, so it cannot depend on them).
func (tx Transaction) Id() (primitive.TxId, error) {
	w := serialization.NewWriter()
	w.PutVLQUint32(uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		w.PutBytes(in.BoxId.Bytes())
	}
	w.PutVLQUint32(uint32(len(tx.DataInputs)))
	for _, di := range tx.DataInputs {
		w.PutBytes(di.BoxId.Bytes())
	}
	w.PutVLQUint32(uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		w.PutVLQUint64(out.Value.Uint64())
		w.PutBytes(out.ErgoTreeBytes)
		w.PutVLQUint32(out.CreationHeight)
	}
	digest := hasher.Blake2b256(w.Bytes())
	d, err := primitive.NewDigest32(digest[:])
	if err != nil {
		return primitive.TxId{}, err
	}
	return primitive.TxId(d), nil
}

// TransactionTokenIndex assigns every distinct token id appearing across
// outputs a stable index, in order of first appearance scanning outputs
// left to right and each output's own Tokens left to right. This is the
// "in context of tx" token_index spec §6's canonical box bytes encode for
// each token entry: one shared numbering for the whole transaction, not
// a per-box one, so that every box naming the same token agrees on its
// index regardless of which box's Tokens slice the token happens to sit
// in or at what position.
func TransactionTokenIndex(outputs []ErgoBoxCandidate) map[primitive.TokenId]uint32 {
	idx := make(map[primitive.TokenId]uint32)
	for _, o := range outputs {
		for _, t := range o.Tokens {
			if _, ok := idx[t.Id]; !ok {
				idx[t.Id] = uint32(len(idx))
			}
		}
	}
	return idx
}

// Finalize binds every output candidate to this transaction's id,
// returning the resulting ErgoBoxes in output order. This is the
// "outputs become ErgoBoxes... upon transaction signing" step of spec
// §4.H.
func (tx Transaction) Finalize() ([]sigmatype.Box, error) {
	txid, err := tx.Id()
	if err != nil {
		return nil, err
	}
	tokenIndex := TransactionTokenIndex(tx.Outputs)
	boxes := make([]sigmatype.Box, len(tx.Outputs))
	for i, cand := range tx.Outputs {
		box, err := cand.ToBox(txid, uint16(i), tokenIndex)
		if err != nil {
			return nil, err
		}
		boxes[i] = box
	}
	return boxes, nil
}
