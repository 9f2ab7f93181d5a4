// Package ergotree implements the ErgoTree container (spec component D):
// the header byte, optional size prefix, constant segregation and the
// recursive expression serializer the container builds on.
package ergotree

// opCode tags every ast.Expr node kind on the wire. This alphabet is this
// module's own invention: the spec describes the node set and the
// container framing but does not pin an exact op-code table, and no repo
// in the retrieval pack implements this domain's expression format. It
// satisfies this module's own round-trip invariant (parse(serialize(e))
// == e) without claiming bit-compatibility with the real protocol's op
// codes, the same simplification package avltree documents for its proof
// format.
type opCode byte

const (
	opConst opCode = iota + 1
	opConstantPlaceholder
	opGlobalVars
	opValDef
	opValUse
	opBlockValue
	opFuncValue
	opApply

	opIf
	opLogicalNot
	opBinaryBoolOp
	opAtleast

	opArithOp
	opRelOp
	opUnaryNumOp
	opUpcast
	opDowncast
	opLongToByteArray
	opByteArrayToLong
	opByteArrayToBigInt

	opCollection
	opByIndex
	opSizeOf
	opSlice
	opAppend
	opFold
	opMap
	opFilter
	opExists
	opForAll
	opIndexOf
	opFlatmap
	opZip
	opIndices
	opPatch
	opUpdated
	opUpdateMany
	opXorOf

	opOptionGet
	opOptionIsDefined
	opOptionGetOrElse
	opTuple
	opSelectField

	opExtractAmount
	opExtractRegisterAs
	opExtractScriptBytes
	opExtractBytes
	opExtractBytesWithNoRef
	opExtractCreationInfo
	opExtractId

	opCalcHash
	opBoolToSigmaProp
	opCreateProveDlog
	opCreateProveDhTuple
	opSigmaConj
	opSigmaPropBytes
	opMultiplyGroup
	opExponentiate
	opDecodePoint

	opContextRef
	opGlobalRef
	opGetVar
	opMethodCall
	opPropertyCall
	opDeserializeRegister
	opDeserializeContext
	opTreeLookup
	opCreateAvlTree
	opSubstConstants
)
