package store

import (
	"fmt"
	"sort"

	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/serialization"
	"ergotree.dev/sigmachain/sigmatype"
)

// encodeBox is this package's on-disk box encoding: it is deliberately not
// chain.CanonicalBytes (that format exists to make a box's id
// self-verifying; this one exists to round-trip every field, including
// register parse failures, back out of bbolt exactly as stored).
//
// Layout: id(32B) | value(VLQu64) | ergo_tree_len(VLQu32) ergo_tree_bytes |
// tokens_count(u8) (token_id 32B, amount VLQu64)* | registers_count(u8)
// (reg_num u8, raw_flag u8, raw_flag==0: typed constant via WriteConstant,
// raw_flag==1: len(VLQu32) raw bytes)* | creation_height(VLQu32) |
// transaction_id(32B) | index(VLQu32).
func encodeBox(b sigmatype.Box) ([]byte, error) {
	w := serialization.NewWriter()
	w.PutBytes(b.Id.Bytes())
	w.PutVLQUint64(b.Value.Uint64())
	w.PutVLQUint32(uint32(len(b.ErgoTreeBytes)))
	w.PutBytes(b.ErgoTreeBytes)

	if len(b.Tokens) > 255 {
		return nil, fmt.Errorf("store: box has %d tokens, max 255", len(b.Tokens))
	}
	w.PutU8(byte(len(b.Tokens)))
	for _, t := range b.Tokens {
		w.PutBytes(t.Id.Bytes())
		w.PutVLQUint64(t.Amount.Uint64())
	}

	regNums := make([]byte, 0, len(b.Registers))
	for reg := range b.Registers {
		regNums = append(regNums, reg)
	}
	sort.Slice(regNums, func(i, j int) bool { return regNums[i] < regNums[j] })
	if len(regNums) > 255 {
		return nil, fmt.Errorf("store: box has %d registers, max 255", len(regNums))
	}
	w.PutU8(byte(len(regNums)))
	for _, reg := range regNums {
		rv := b.Registers[reg]
		w.PutU8(reg)
		if rv.RawOnly {
			w.PutU8(1)
			w.PutVLQUint32(uint32(len(rv.Raw)))
			w.PutBytes(rv.Raw)
			continue
		}
		w.PutU8(0)
		if err := serialization.WriteConstant(w, rv.Val); err != nil {
			return nil, fmt.Errorf("store: register %d: %w", reg, err)
		}
	}

	w.PutVLQUint32(b.CreationHeight)
	w.PutBytes(b.TransactionId.Bytes())
	w.PutVLQUint32(uint32(b.Index))
	return w.Bytes(), nil
}

func decodeBox(raw []byte) (sigmatype.Box, error) {
	r := serialization.NewReader(raw)
	var b sigmatype.Box

	idBytes, err := r.GetBytes(primitive.Digest32Size)
	if err != nil {
		return b, fmt.Errorf("store: box id: %w", err)
	}
	idDigest, err := primitive.NewDigest32(idBytes)
	if err != nil {
		return b, err
	}
	b.Id = primitive.BoxId(idDigest)

	value, err := r.GetVLQUint64()
	if err != nil {
		return b, fmt.Errorf("store: box value: %w", err)
	}
	boxValue, err := primitive.NewBoxValue(value)
	if err != nil {
		return b, fmt.Errorf("store: box value: %w", err)
	}
	b.Value = boxValue

	treeLen, err := r.GetVLQUint32()
	if err != nil {
		return b, fmt.Errorf("store: ergo_tree_len: %w", err)
	}
	treeBytes, err := r.GetBytes(int(treeLen))
	if err != nil {
		return b, fmt.Errorf("store: ergo_tree_bytes: %w", err)
	}
	b.ErgoTreeBytes = treeBytes

	tokenCount, err := r.GetU8()
	if err != nil {
		return b, fmt.Errorf("store: tokens_count: %w", err)
	}
	if tokenCount > 0 {
		b.Tokens = make([]primitive.Token, 0, tokenCount)
	}
	for i := byte(0); i < tokenCount; i++ {
		idBytes, err := r.GetBytes(primitive.Digest32Size)
		if err != nil {
			return b, fmt.Errorf("store: token %d id: %w", i, err)
		}
		d, err := primitive.NewDigest32(idBytes)
		if err != nil {
			return b, err
		}
		amt, err := r.GetVLQUint64()
		if err != nil {
			return b, fmt.Errorf("store: token %d amount: %w", i, err)
		}
		tokenAmt, err := primitive.NewTokenAmount(amt)
		if err != nil {
			return b, fmt.Errorf("store: token %d amount: %w", i, err)
		}
		b.Tokens = append(b.Tokens, primitive.Token{Id: primitive.TokenId(d), Amount: tokenAmt})
	}

	regCount, err := r.GetU8()
	if err != nil {
		return b, fmt.Errorf("store: registers_count: %w", err)
	}
	if regCount > 0 {
		b.Registers = make(map[byte]sigmatype.RegisterValue, regCount)
	}
	for i := byte(0); i < regCount; i++ {
		reg, err := r.GetU8()
		if err != nil {
			return b, fmt.Errorf("store: register %d num: %w", i, err)
		}
		rawFlag, err := r.GetU8()
		if err != nil {
			return b, fmt.Errorf("store: register %d flag: %w", i, err)
		}
		if rawFlag == 1 {
			rawLen, err := r.GetVLQUint32()
			if err != nil {
				return b, fmt.Errorf("store: register %d raw_len: %w", i, err)
			}
			raw, err := r.GetBytes(int(rawLen))
			if err != nil {
				return b, fmt.Errorf("store: register %d raw: %w", i, err)
			}
			b.Registers[reg] = sigmatype.RegisterValue{RawOnly: true, Raw: raw}
			continue
		}
		v, err := serialization.ReadConstant(r)
		if err != nil {
			return b, fmt.Errorf("store: register %d constant: %w", i, err)
		}
		b.Registers[reg] = sigmatype.RegisterValue{Type: v.Type, Val: v}
	}

	height, err := r.GetVLQUint32()
	if err != nil {
		return b, fmt.Errorf("store: creation_height: %w", err)
	}
	b.CreationHeight = height

	txidBytes, err := r.GetBytes(primitive.Digest32Size)
	if err != nil {
		return b, fmt.Errorf("store: transaction_id: %w", err)
	}
	txidDigest, err := primitive.NewDigest32(txidBytes)
	if err != nil {
		return b, err
	}
	b.TransactionId = primitive.TxId(txidDigest)

	index, err := r.GetVLQUint32()
	if err != nil {
		return b, fmt.Errorf("store: index: %w", err)
	}
	b.Index = uint16(index)

	return b, nil
}
