package chain

import (
	"ergotree.dev/sigmachain/ergotree"
	"ergotree.dev/sigmachain/eval"
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigma"
	"ergotree.dev/sigmachain/sigmatype"
)

// DefaultScriptCostLimit bounds the per-input evaluation cost Validate
// allows a guarding script to spend, matching the cost accumulator every
// other evaluation entry point in this module is built around.
const DefaultScriptCostLimit = 1_000_000

// Validate runs the four stateful checks of spec §4.H against tc: ERG
// preservation, per-output structural limits, asset (token) preservation
// with the single-mint rule, and per-input sigma-proof verification. It
// returns the first violation found, in that order.
func (tc *TransactionContext) Validate() error {
	if err := tc.validateErgPreservation(); err != nil {
		return err
	}
	if err := tc.validateOutputs(); err != nil {
		return err
	}
	if err := tc.validateAssetPreservation(); err != nil {
		return err
	}
	return tc.validateInputProofs()
}

// validateErgPreservation checks that the sum of input box values equals
// the sum of output candidate values, using BoxValue's checked addition
// throughout so a maliciously large value list fails with
// InputSumOverflow rather than wrapping.
func (tc *TransactionContext) validateErgPreservation() error {
	inValues := make([]primitive.BoxValue, len(tc.BoxesToSpend))
	for i, b := range tc.BoxesToSpend {
		inValues[i] = b.Value
	}
	inSum, err := primitive.SumBoxValues(inValues)
	if err != nil {
		return chainerr(ErrInputSumOverflow, "%v", err)
	}
	outValues := make([]primitive.BoxValue, len(tc.Tx.Outputs))
	for i, o := range tc.Tx.Outputs {
		outValues[i] = o.Value
	}
	outSum, err := primitive.SumBoxValues(outValues)
	if err != nil {
		return chainerr(ErrInputSumOverflow, "%v", err)
	}
	if inSum.Uint64() != outSum.Uint64() {
		return chainerr(ErrErgPreservation, "input sum %d != output sum %d", inSum.Uint64(), outSum.Uint64())
	}
	return nil
}

// protocolCreationFloor is the minimum creation height a new output may
// declare: the highest creation height among the boxes being spent, so an
// output can never claim to predate the inputs funding it.
func (tc *TransactionContext) protocolCreationFloor() uint32 {
	var floor uint32
	for _, b := range tc.BoxesToSpend {
		if b.CreationHeight > floor {
			floor = b.CreationHeight
		}
	}
	return floor
}

// validateOutputs checks, for every output candidate, the per-output
// rules of spec §4.H item 2: dust, monotonic creation height, and the box
// / script size ceilings.
func (tc *TransactionContext) validateOutputs() error {
	floor := tc.protocolCreationFloor()
	tokenIndex := TransactionTokenIndex(tc.Tx.Outputs)
	for i, o := range tc.Tx.Outputs {
		if o.CreationHeight < floor {
			return chainerrAt(ErrMonotonicHeight, i, "creation height %d below floor %d", o.CreationHeight, floor)
		}
		if o.CreationHeight > tc.Height {
			return chainerrAt(ErrMonotonicHeight, i, "creation height %d exceeds current height %d", o.CreationHeight, tc.Height)
		}
		if len(o.ErgoTreeBytes) > MaxScriptSize {
			return chainerrAt(ErrScriptSizeExceeded, i, "script is %d bytes, max %d", len(o.ErgoTreeBytes), MaxScriptSize)
		}
		// TransactionId/Index are zero here since the output has not
		// been finalized yet; the size this produces differs from the
		// finalized box by at most the couple of bytes a real index
		// adds over zero, well inside MaxBoxSize's margin.
		box := sigmatype.Box{
			Value:          o.Value,
			ErgoTreeBytes:  o.ErgoTreeBytes,
			Tokens:         o.Tokens,
			Registers:      o.Registers,
			CreationHeight: o.CreationHeight,
		}
		raw, err := CanonicalBytes(box, tokenIndex)
		if err != nil {
			return err
		}
		if len(raw) > MaxBoxSize {
			return chainerrAt(ErrBoxSizeExceeded, i, "box is %d bytes, max %d", len(raw), MaxBoxSize)
		}
		minValue := uint64(len(raw)) * primitive.MinValuePerByte
		if o.Value.Uint64() < minValue {
			return chainerrAt(ErrDustOutput, i, "value %d below minimum %d for a %d-byte box", o.Value.Uint64(), minValue, len(raw))
		}
	}
	return nil
}

// validateAssetPreservation enforces spec §4.H item 3: every token id
// appearing in the outputs either is the transaction's mint id (the first
// input box's id) or satisfies in_amount >= out_amount.
func (tc *TransactionContext) validateAssetPreservation() error {
	inAmounts := map[primitive.TokenId]primitive.TokenAmount{}
	for _, b := range tc.BoxesToSpend {
		for _, t := range b.Tokens {
			if existing, ok := inAmounts[t.Id]; ok {
				sum, err := existing.CheckedAdd(t.Amount)
				if err != nil {
					return chainerr(ErrTokenPreservation, "%v", err)
				}
				inAmounts[t.Id] = sum
			} else {
				inAmounts[t.Id] = t.Amount
			}
		}
	}

	outAmounts := map[primitive.TokenId]primitive.TokenAmount{}
	for _, o := range tc.Tx.Outputs {
		for _, t := range o.Tokens {
			if existing, ok := outAmounts[t.Id]; ok {
				sum, err := existing.CheckedAdd(t.Amount)
				if err != nil {
					return chainerr(ErrTokenPreservation, "%v", err)
				}
				outAmounts[t.Id] = sum
			} else {
				outAmounts[t.Id] = t.Amount
			}
		}
	}

	mintId := primitive.TokenIdFromBoxId(tc.BoxesToSpend[0].Id)
	for id, outAmt := range outAmounts {
		if id == mintId {
			continue
		}
		inAmt, ok := inAmounts[id]
		if !ok {
			return chainerr(ErrTokenPreservation, "output token %s has no matching input", id)
		}
		if inAmt.Uint64() < outAmt.Uint64() {
			return chainerr(ErrTokenPreservation, "token %s: input amount %d < output amount %d", id, inAmt.Uint64(), outAmt.Uint64())
		}
	}
	return nil
}

// validateInputProofs reduces each input's guarding script to a
// sigma-proposition against that input's own per-input context and
// verifies the accompanying spending proof, failing with
// ReducedToFalse(i) the first time a script's proposition is not
// satisfied by its proof (spec §4.H item 4).
func (tc *TransactionContext) validateInputProofs() error {
	message, err := tc.Tx.Id()
	if err != nil {
		return err
	}
	for i, box := range tc.BoxesToSpend {
		tree, err := ergotree.Parse(box.ErgoTreeBytes)
		if err != nil {
			return chainerrAt(ErrReducedToFalse, i, "malformed ergo tree: %v", err)
		}
		prop, err := tree.Proposition()
		if err != nil {
			return chainerrAt(ErrReducedToFalse, i, "unparseable proposition: %v", err)
		}
		ec := eval.NewEvalContext(tc.contextFor(i), DefaultScriptCostLimit)
		sb, err := eval.ReduceToCrypto(ec, eval.NewEnv(), prop)
		if err != nil {
			return chainerrAt(ErrReducedToFalse, i, "%v", err)
		}
		ok, err := sigma.Verify(sb, tc.Tx.Inputs[i].SpendingProof, message.Bytes())
		if err != nil {
			return chainerrAt(ErrReducedToFalse, i, "%v", err)
		}
		if !ok {
			return chainerrAt(ErrReducedToFalse, i, "spending proof does not satisfy guarding script")
		}
	}
	return nil
}
