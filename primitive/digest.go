// Package primitive implements the fixed-size domain types that every other
// package in this module builds on: 32-byte digests, the nominal Box/Tx id
// wrappers around them, and the bounded integer types used for ERG amounts
// and token amounts.
package primitive

import (
	"encoding/hex"
	"fmt"
)

// Digest32Size is the length in bytes of a Digest32.
const Digest32Size = 32

// Digest32 is a 32-byte value-typed digest (the output of blake2b-256).
type Digest32 [Digest32Size]byte

// NewDigest32 copies b into a Digest32, failing if b is not exactly 32 bytes.
func NewDigest32(b []byte) (Digest32, error) {
	var d Digest32
	if len(b) != Digest32Size {
		return d, fmt.Errorf("primitive: digest32 must be %d bytes, got %d", Digest32Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Bytes returns the digest as a freshly allocated byte slice.
func (d Digest32) Bytes() []byte {
	out := make([]byte, Digest32Size)
	copy(out, d[:])
	return out
}

// IsZero reports whether every byte of the digest is zero.
func (d Digest32) IsZero() bool {
	return d == Digest32{}
}

// String renders the digest as lowercase base16, matching the wire encoding.
func (d Digest32) String() string {
	return hex.EncodeToString(d[:])
}

// Digest32FromHex decodes a base16 string into a Digest32.
func Digest32FromHex(s string) (Digest32, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Digest32{}, fmt.Errorf("primitive: invalid hex digest: %w", err)
	}
	return NewDigest32(b)
}

// BoxId is a Digest32 in a distinct nominal type, identifying an ErgoBox.
type BoxId Digest32

// String renders the box id as lowercase base16.
func (id BoxId) String() string { return Digest32(id).String() }

// Bytes returns the box id's 32 bytes as a freshly allocated slice.
func (id BoxId) Bytes() []byte { return Digest32(id).Bytes() }

// BoxIdFromHex decodes a base16 string into a BoxId.
func BoxIdFromHex(s string) (BoxId, error) {
	d, err := Digest32FromHex(s)
	return BoxId(d), err
}

// TxId is a Digest32 in a distinct nominal type, identifying a Transaction.
type TxId Digest32

// String renders the transaction id as lowercase base16.
func (id TxId) String() string { return Digest32(id).String() }

// Bytes returns the transaction id's 32 bytes as a freshly allocated slice.
func (id TxId) Bytes() []byte { return Digest32(id).Bytes() }

// TxIdFromHex decodes a base16 string into a TxId.
func TxIdFromHex(s string) (TxId, error) {
	d, err := Digest32FromHex(s)
	return TxId(d), err
}

// TokenId is a Digest32 identifying a token. Protocol rule: at most one new
// token may be minted per transaction, and its id must equal the BoxId of
// the transaction's first input (checked by chain.TransactionContext.Validate).
type TokenId Digest32

// String renders the token id as lowercase base16.
func (id TokenId) String() string { return Digest32(id).String() }

// Bytes returns the token id's 32 bytes as a freshly allocated slice.
func (id TokenId) Bytes() []byte { return Digest32(id).Bytes() }

// TokenIdFromBoxId derives the mint token id for a transaction whose first
// input is firstInput: the new token's id equals that input's box id.
func TokenIdFromBoxId(firstInput BoxId) TokenId {
	return TokenId(firstInput)
}
