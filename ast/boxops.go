package ast

import "ergotree.dev/sigmachain/sigmatype"

func requireBox(t sigmatype.SType, who string) error {
	if !t.Eq(sigmatype.SBox) {
		return newErr(ErrTypeMismatch, "%s requires a Box, got %s", who, t)
	}
	return nil
}

// ExtractAmount reads a box's nanoERG value.
type ExtractAmount struct {
	Input Expr
}

// NewExtractAmount validates input: Box.
func NewExtractAmount(input Expr) (*ExtractAmount, error) {
	if err := requireBox(input.Tpe(), "ExtractAmount"); err != nil {
		return nil, err
	}
	return &ExtractAmount{Input: input}, nil
}

// Tpe is always Long.
func (n *ExtractAmount) Tpe() sigmatype.SType { return sigmatype.SLong }

// ExtractRegisterAs reads register regId as type T, yielding None if the
// register is absent or holds a different type.
type ExtractRegisterAs struct {
	Input Expr
	RegId byte
	Elem  sigmatype.SType
}

// NewExtractRegisterAs validates input: Box.
func NewExtractRegisterAs(input Expr, regId byte, elem sigmatype.SType) (*ExtractRegisterAs, error) {
	if err := requireBox(input.Tpe(), "ExtractRegisterAs"); err != nil {
		return nil, err
	}
	return &ExtractRegisterAs{Input: input, RegId: regId, Elem: elem}, nil
}

// Tpe returns Option[T].
func (n *ExtractRegisterAs) Tpe() sigmatype.SType { return sigmatype.SOption(n.Elem) }

// ExtractScriptBytes reads a box's serialized ErgoTree bytes.
type ExtractScriptBytes struct {
	Input Expr
}

// NewExtractScriptBytes validates input: Box.
func NewExtractScriptBytes(input Expr) (*ExtractScriptBytes, error) {
	if err := requireBox(input.Tpe(), "ExtractScriptBytes"); err != nil {
		return nil, err
	}
	return &ExtractScriptBytes{Input: input}, nil
}

// Tpe is always Coll[Byte].
func (n *ExtractScriptBytes) Tpe() sigmatype.SType { return sigmatype.SColl(sigmatype.SByte) }

// ExtractBytes reads a box's full canonical serialization.
type ExtractBytes struct {
	Input Expr
}

// NewExtractBytes validates input: Box.
func NewExtractBytes(input Expr) (*ExtractBytes, error) {
	if err := requireBox(input.Tpe(), "ExtractBytes"); err != nil {
		return nil, err
	}
	return &ExtractBytes{Input: input}, nil
}

// Tpe is always Coll[Byte].
func (n *ExtractBytes) Tpe() sigmatype.SType { return sigmatype.SColl(sigmatype.SByte) }

// ExtractBytesWithNoRef reads a box's serialization excluding the
// transaction-id/index reference fields, used when a box references itself.
type ExtractBytesWithNoRef struct {
	Input Expr
}

// NewExtractBytesWithNoRef validates input: Box.
func NewExtractBytesWithNoRef(input Expr) (*ExtractBytesWithNoRef, error) {
	if err := requireBox(input.Tpe(), "ExtractBytesWithNoRef"); err != nil {
		return nil, err
	}
	return &ExtractBytesWithNoRef{Input: input}, nil
}

// Tpe is always Coll[Byte].
func (n *ExtractBytesWithNoRef) Tpe() sigmatype.SType { return sigmatype.SColl(sigmatype.SByte) }

// ExtractCreationInfo reads (creationHeight, (txId ++ indexBytes)).
type ExtractCreationInfo struct {
	Input Expr
}

// NewExtractCreationInfo validates input: Box.
func NewExtractCreationInfo(input Expr) (*ExtractCreationInfo, error) {
	if err := requireBox(input.Tpe(), "ExtractCreationInfo"); err != nil {
		return nil, err
	}
	return &ExtractCreationInfo{Input: input}, nil
}

// Tpe is always (Int, Coll[Byte]).
func (n *ExtractCreationInfo) Tpe() sigmatype.SType {
	t, _ := sigmatype.STuple(sigmatype.SInt, sigmatype.SColl(sigmatype.SByte))
	return t
}

// ExtractId reads a box's id (blake2b256 of its canonical bytes).
type ExtractId struct {
	Input Expr
}

// NewExtractId validates input: Box.
func NewExtractId(input Expr) (*ExtractId, error) {
	if err := requireBox(input.Tpe(), "ExtractId"); err != nil {
		return nil, err
	}
	return &ExtractId{Input: input}, nil
}

// Tpe is always Coll[Byte].
func (n *ExtractId) Tpe() sigmatype.SType { return sigmatype.SColl(sigmatype.SByte) }
