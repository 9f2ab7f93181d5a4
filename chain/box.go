package chain

import (
	"sort"

	"ergotree.dev/sigmachain/crypto"
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/serialization"
	"ergotree.dev/sigmachain/sigmatype"
)

// MaxBoxSize is this module's own ceiling on a box's serialized canonical
// form (spec §4.H item 2, "serialized box size <= protocol maximum"). The
// spec leaves the exact limit to the protocol; this module fixes one
// deterministic value rather than leaving it configurable, matching how
// `primitive` fixes BigIntSize for the same reason.
const MaxBoxSize = 4096

// MaxScriptSize bounds ErgoTreeBytes the same way MaxBoxSize bounds the
// whole box.
const MaxScriptSize = 4096

// MaxNonMandatoryRegisters is the number of optional registers (R4..R9)
// a box may carry, matching the regs_count <= 6 ceiling of spec §6's
// canonical box bytes.
const MaxNonMandatoryRegisters = 6

// FirstNonMandatoryRegister is R4, the lowest-numbered optional register;
// R0..R3 are derived (value/script/tokens/creation-info) and never appear
// in Registers.
const FirstNonMandatoryRegister = 4

// validateRegisters enforces that registers are densely packed starting
// at R4 with no gaps (if Rk is present then R4..Rk-1 all are too) and
// that every key falls in the R4..R9 range: an invariant that must always
// hold, not merely a size ceiling.
func validateRegisters(registers map[byte]sigmatype.RegisterValue) error {
	if len(registers) > MaxNonMandatoryRegisters {
		return chainerr(ErrInvalidRegisters, "box carries %d non-mandatory registers, max %d", len(registers), MaxNonMandatoryRegisters)
	}
	for reg := range registers {
		if reg < FirstNonMandatoryRegister || reg >= FirstNonMandatoryRegister+MaxNonMandatoryRegisters {
			return chainerr(ErrInvalidRegisters, "register number R%d out of range R%d..R%d", reg, FirstNonMandatoryRegister, FirstNonMandatoryRegister+MaxNonMandatoryRegisters-1)
		}
	}
	for i := 0; i < len(registers); i++ {
		reg := byte(FirstNonMandatoryRegister + i)
		if _, ok := registers[reg]; !ok {
			return chainerr(ErrInvalidRegisters, "registers must be densely packed from R%d; R%d is missing", FirstNonMandatoryRegister, reg)
		}
	}
	return nil
}

// MaxTokensPerBox bounds tokens_count, a u8 field in the canonical box
// bytes (spec §6).
const MaxTokensPerBox = 255

var hasher crypto.HashProvider = crypto.Blake2bProvider{}

// ErgoBoxCandidate is an output before it is bound into a signed
// transaction: it carries everything a finished ErgoBox does except the
// transaction id and output index that only exist once the box has been
// placed at a definite position in a definite transaction (spec §4.H).
type ErgoBoxCandidate struct {
	Value          primitive.BoxValue
	ErgoTreeBytes  []byte
	Tokens         []primitive.Token
	Registers      map[byte]sigmatype.RegisterValue
	CreationHeight uint32
}

// NewErgoBoxCandidate validates the structural limits of a candidate output
// and returns it: non-mandatory register count, token count, and script
// size must all stay within this module's protocol maximums.
func NewErgoBoxCandidate(value primitive.BoxValue, ergoTreeBytes []byte, tokens []primitive.Token, registers map[byte]sigmatype.RegisterValue, creationHeight uint32) (ErgoBoxCandidate, error) {
	if len(ergoTreeBytes) > MaxScriptSize {
		return ErgoBoxCandidate{}, chainerr(ErrScriptSizeExceeded, "ergo tree is %d bytes, max %d", len(ergoTreeBytes), MaxScriptSize)
	}
	if len(tokens) > MaxTokensPerBox {
		return ErgoBoxCandidate{}, chainerr(ErrInvalidArgs, "box carries %d tokens, max %d", len(tokens), MaxTokensPerBox)
	}
	if err := validateRegisters(registers); err != nil {
		return ErgoBoxCandidate{}, err
	}
	return ErgoBoxCandidate{
		Value:          value,
		ErgoTreeBytes:  append([]byte(nil), ergoTreeBytes...),
		Tokens:         append([]primitive.Token(nil), tokens...),
		Registers:      registers,
		CreationHeight: creationHeight,
	}, nil
}

// ToBox finalizes a candidate at a definite (transactionId, index) pair,
// computing the resulting box's id as blake2b256 of its canonical bytes
// (spec §4.H / §6, and spec §8's box-id-determinism testable property).
//
// tokenIndex resolves each token's "token_index (VLQ u32 in context of
// tx)" canonical-bytes field (spec §6): pass the map TransactionTokenIndex
// builds from the owning transaction's full output list so every box in
// that transaction agrees on each token id's index, as Transaction.Finalize
// does. nil falls back to the token's position within this box's own
// Tokens slice, for callers (tests, or a box built outside any wider
// transaction) with no such list to build it from.
func (c ErgoBoxCandidate) ToBox(transactionId primitive.TxId, index uint16, tokenIndex map[primitive.TokenId]uint32) (sigmatype.Box, error) {
	box := sigmatype.Box{
		Value:          c.Value,
		ErgoTreeBytes:  c.ErgoTreeBytes,
		Tokens:         c.Tokens,
		Registers:      c.Registers,
		CreationHeight: c.CreationHeight,
		TransactionId:  transactionId,
		Index:          index,
	}
	raw, err := CanonicalBytes(box, tokenIndex)
	if err != nil {
		return sigmatype.Box{}, err
	}
	if len(raw) > MaxBoxSize {
		return sigmatype.Box{}, chainerr(ErrBoxSizeExceeded, "box is %d bytes, max %d", len(raw), MaxBoxSize)
	}
	digest := hasher.Blake2b256(raw)
	id, err := primitive.NewDigest32(digest[:])
	if err != nil {
		return sigmatype.Box{}, err
	}
	box.Id = primitive.BoxId(id)
	return box, nil
}

// CanonicalBytes renders b in the wire shape spec §6 fixes for box-id
// hashing: value, raw ergo tree bytes, creation height, tokens, non-mandatory
// registers in ascending register number, then the finishing transaction id
// and output index.
//
// tokenIndex supplies each token's tx-wide index (see ToBox); when nil,
// a token's index is its position within b.Tokens itself.
func CanonicalBytes(b sigmatype.Box, tokenIndex map[primitive.TokenId]uint32) ([]byte, error) {
	w := serialization.NewWriter()
	w.PutVLQUint64(b.Value.Uint64())
	w.PutBytes(b.ErgoTreeBytes)
	w.PutVLQUint32(b.CreationHeight)

	if len(b.Tokens) > MaxTokensPerBox {
		return nil, chainerr(ErrInvalidArgs, "box carries %d tokens, max %d", len(b.Tokens), MaxTokensPerBox)
	}
	w.PutU8(byte(len(b.Tokens)))
	for i, t := range b.Tokens {
		idx := uint32(i)
		if tokenIndex != nil {
			resolved, ok := tokenIndex[t.Id]
			if !ok {
				return nil, chainerr(ErrInvalidArgs, "token %s has no entry in the transaction's token index", t.Id)
			}
			idx = resolved
		}
		w.PutBytes(t.Id.Bytes())
		w.PutVLQUint32(idx)
		w.PutVLQUint64(t.Amount.Uint64())
	}

	if err := validateRegisters(b.Registers); err != nil {
		return nil, err
	}
	regNums := make([]byte, 0, len(b.Registers))
	for reg := range b.Registers {
		regNums = append(regNums, reg)
	}
	sort.Slice(regNums, func(i, j int) bool { return regNums[i] < regNums[j] })
	w.PutU8(byte(len(regNums)))
	for _, reg := range regNums {
		rv := b.Registers[reg]
		if rv.RawOnly {
			w.PutBytes(rv.Raw)
			continue
		}
		if err := serialization.WriteConstant(w, rv.Val); err != nil {
			return nil, err
		}
	}

	w.PutBytes(b.TransactionId.Bytes())
	w.PutVLQUint32(uint32(b.Index))
	return w.Bytes(), nil
}

// VerifyBoxId recomputes b's canonical bytes and reports whether they hash
// to b.Id, the check a JSON codec collaborator runs when a reconstructed
// box carries an id (spec §6's "InvalidBoxId" note). It has no view of the
// box's owning transaction, so it re-derives each token's index from b's
// own Tokens order (see CanonicalBytes); this matches what Finalize
// produced whenever b is the only box in its transaction carrying that
// token, and is the reason a box coming from a multi-output,
// multi-token transaction should instead be verified by recomputing
// CanonicalBytes directly with that transaction's TransactionTokenIndex.
func VerifyBoxId(b sigmatype.Box) (bool, error) {
	raw, err := CanonicalBytes(b, nil)
	if err != nil {
		return false, err
	}
	digest := hasher.Blake2b256(raw)
	return primitive.Digest32(b.Id) == primitive.Digest32(digest), nil
}
