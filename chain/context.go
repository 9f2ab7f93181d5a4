package chain

import (
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

// TransactionContext binds a Transaction to the concrete boxes it spends
// and reads, the way `wallet/tx_context.rs` binds a sigma-rust
// transaction before it can be reduced or validated (spec §4.H /
// SUPPLEMENTED FEATURES). Construction fails fast with InputBoxNotFound/
// DataInputBoxNotFound rather than deferring the lookup to validate time.
type TransactionContext struct {
	Tx            Transaction
	BoxesToSpend  []sigmatype.Box
	DataBoxes     []sigmatype.Box
	Height        uint32
	PreHeader     sigmatype.PreHeader
	Headers       []sigmatype.Header
}

// NewTransactionContext resolves tx's inputs and data inputs against the
// supplied box lookup, in tx's own input order, failing with
// InputBoxNotFound(i)/DataInputBoxNotFound(i) the first time a referenced
// box id is missing.
func NewTransactionContext(tx Transaction, boxesById map[primitive.BoxId]sigmatype.Box, height uint32, preHeader sigmatype.PreHeader, headers []sigmatype.Header) (*TransactionContext, error) {
	boxesToSpend := make([]sigmatype.Box, len(tx.Inputs))
	for i, in := range tx.Inputs {
		b, ok := boxesById[in.BoxId]
		if !ok {
			return nil, chainerrAt(ErrInputBoxNotFound, i, "no box with id %s", in.BoxId)
		}
		boxesToSpend[i] = b
	}
	dataBoxes := make([]sigmatype.Box, len(tx.DataInputs))
	for i, di := range tx.DataInputs {
		b, ok := boxesById[di.BoxId]
		if !ok {
			return nil, chainerrAt(ErrDataInputBoxMissing, i, "no box with id %s", di.BoxId)
		}
		dataBoxes[i] = b
	}
	return &TransactionContext{
		Tx:           tx,
		BoxesToSpend: boxesToSpend,
		DataBoxes:    dataBoxes,
		Height:       height,
		PreHeader:    preHeader,
		Headers:      headers,
	}, nil
}

// contextFor builds the per-input sigmatype.Context an input's guarding
// script is evaluated against: SELF is the box being spent at position i,
// INPUTS/OUTPUTS/DATA_INPUTS are the whole transaction's box lists, and
// CONTEXT.getVar surfaces that input's context extension.
func (tc *TransactionContext) contextFor(i int) sigmatype.Context {
	outputs, err := tc.Tx.Finalize()
	if err != nil {
		// Finalize only fails on a malformed output candidate, which
		// earlier structural validation already rejects; a context
		// built from an otherwise-valid transaction never hits this.
		outputs = nil
	}
	return sigmatype.Context{
		Height:     tc.Height,
		Self:       tc.BoxesToSpend[i],
		Inputs:     tc.BoxesToSpend,
		Outputs:    outputs,
		DataInputs: tc.DataBoxes,
		Headers:    tc.Headers,
		PreHeader:  tc.PreHeader,
		MinerPk:    tc.PreHeader.MinerPk,
		Extension:  tc.Tx.Inputs[i].ContextExtension,
		Vars:       tc.Tx.Inputs[i].ContextExtension,
		SelfIndex:  i,
	}
}
