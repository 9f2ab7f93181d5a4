package sigmatype

import (
	"fmt"

	"ergotree.dev/sigmachain/avltree"
	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/primitive"
)

// ValueKind tags the runtime Value union. It mirrors Kind one-to-one except
// that SAny/STypeVar never appear at runtime (they are compile-time-only
// typing devices).
type ValueKind = Kind

// CollKind distinguishes how a Coll's backing storage is represented: byte
// collections are packed natively, everything else stores boxed Values.
// (Spec §4.F "CollKind::from_vec_vec ... is partial" — this implementation
// generalizes the byte/non-byte split uniformly so Flatmap works for any
// inner element type, per spec §9's note on that open question.)
type CollKind uint8

const (
	CollKindBytes CollKind = iota
	CollKindBoxed
)

// Coll is a homogeneous collection value, carrying its element type per
// spec §3.
type Coll struct {
	ElemType SType
	Kind     CollKind
	Bytes    []byte  // valid iff Kind == CollKindBytes
	Items    []Value // valid iff Kind == CollKindBoxed
}

// Len returns the number of elements regardless of backing representation.
func (c Coll) Len() int {
	if c.Kind == CollKindBytes {
		return len(c.Bytes)
	}
	return len(c.Items)
}

// Get returns the i'th element as a Value, boxing a byte element on demand.
func (c Coll) Get(i int) (Value, error) {
	if i < 0 || i >= c.Len() {
		return Value{}, fmt.Errorf("sigmatype: index %d out of range [0,%d)", i, c.Len())
	}
	if c.Kind == CollKindBytes {
		return Value{Type: SByte, Byte: int8(c.Bytes[i])}, nil
	}
	return c.Items[i], nil
}

// NewByteColl builds a native byte-collection Value.
func NewByteColl(b []byte) Coll {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Coll{ElemType: SByte, Kind: CollKindBytes, Bytes: cp}
}

// NewBoxedColl builds a Coll of arbitrary element type, boxing each item.
func NewBoxedColl(elemType SType, items []Value) Coll {
	return Coll{ElemType: elemType, Kind: CollKindBoxed, Items: items}
}

// AsSlice materializes every element as a boxed Value, regardless of the
// underlying representation. Used by collection operators that need
// uniform random access (Flatmap, Zip, Patch, ...).
func (c Coll) AsSlice() []Value {
	out := make([]Value, c.Len())
	for i := range out {
		out[i], _ = c.Get(i)
	}
	return out
}

// Tuple is a fixed-arity heterogeneous value (2..=255 items).
type Tuple struct {
	Items []Value
}

// LambdaValue is the runtime representation of SFunc values: a reference to
// the defining ast.FuncValue node. Evaluation of a call re-enters the
// interpreter's Env at the call site (see eval.Apply) rather than capturing
// a snapshot, which matches how ErgoTree FuncValue nodes are always applied
// within the lexical scope that produced them. Body is declared `any` to
// avoid an import cycle between sigmatype (B) and ast (E); eval is the only
// package that type-asserts it, to *ast.FuncValue.
type LambdaValue struct {
	ArgTypes []SType
	Range    SType
	Body     any
}

// Box is the runtime shape of an ErgoTree Box value: the fields a script
// can observe through ExtractAmount/ExtractRegisterAs/etc. The persistence
// and transaction-validation layer (package chain) builds on this same
// shape rather than duplicating it, so there is exactly one Box
// representation shared by the evaluator and the UTXO model.
type Box struct {
	Id             primitive.BoxId
	Value          primitive.BoxValue
	ErgoTreeBytes  []byte
	Tokens         []primitive.Token
	Registers      map[byte]RegisterValue // keyed by register number 4..9; density/range enforced by chain.validateRegisters
	CreationHeight uint32
	TransactionId  primitive.TxId
	Index          uint16
}

// RegisterValue is the content of one non-mandatory register: either a
// successfully parsed typed Value, or (if parsing failed) the raw bytes
// preserved verbatim so re-serialization stays bit-exact (spec §3).
type RegisterValue struct {
	Type    SType
	Val     Value
	RawOnly bool
	Raw     []byte
}

// PreHeader is the context's preheader (the block currently being
// validated); it has no transaction-id-dependent fields, unlike Header.
type PreHeader struct {
	Version         byte
	ParentId        primitive.Digest32
	Timestamp       uint64
	NBits           uint64
	Height          uint32
	MinerPk         ecc.EcPoint
	VotesBytes      [3]byte
}

// Header is a full block header value as exposed to scripts via the
// CONTEXT headers chain.
type Header struct {
	Id               primitive.Digest32
	Version          byte
	ParentId         primitive.Digest32
	ADProofsRoot     primitive.Digest32
	StateRoot        primitive.Digest32
	TransactionsRoot primitive.Digest32
	Timestamp        uint64
	NBits            uint64
	Height           uint32
	ExtensionRoot    primitive.Digest32
	MinerPk          ecc.EcPoint
	PowOnetimePk     ecc.EcPoint
	PowD             primitive.BigInt
	PowNonce         []byte
	VotesBytes       [3]byte
}

// Context is the per-input snapshot of chain state visible to a script.
type Context struct {
	Height         uint32
	Self           Box
	Outputs        []Box
	Inputs         []Box
	DataInputs     []Box
	Headers        []Header
	PreHeader      PreHeader
	MinerPk        ecc.EcPoint
	Extension      map[byte]Value
	Vars           map[byte]Value
	SelfIndex      int
}

// Value is the runtime representation described in spec §3. Exactly one of
// the typed fields is meaningful, selected by Type.Kind.
type Value struct {
	Type SType

	Unit         struct{}
	Bool         bool
	Byte         int8
	Short        int16
	Int          int32
	Long         int64
	Big          primitive.BigInt
	GroupElement ecc.EcPoint
	SigmaProp    SigmaPropHolder
	BoxVal       Box
	AvlTreeVal   *avltree.Tree
	CollVal      Coll
	TupleVal     Tuple
	OptVal       *Value // nil means None
	HeaderVal    Header
	PreHeaderVal PreHeader
	ContextVal   *Context
	LambdaVal    *LambdaValue
}

// SigmaPropHolder holds a SigmaBoolean by opaque reference to avoid an
// import cycle between sigmatype (B) and the sigma-protocol engine
// (package sigma, G): sigma.SigmaBoolean implements this interface and is
// the only implementation ever stored here.
type SigmaPropHolder interface {
	// SigmaPropBytes returns the canonical serialized proposition bytes,
	// used by the SigmaPropBytes MIR node.
	SigmaPropBytes() []byte
}

// NewUnit builds the Unit value.
func NewUnit() Value { return Value{Type: SUnit} }

// NewBool builds a Boolean value.
func NewBool(b bool) Value { return Value{Type: SBoolean, Bool: b} }

// NewByte builds a Byte value.
func NewByte(v int8) Value { return Value{Type: SByte, Byte: v} }

// NewShort builds a Short value.
func NewShort(v int16) Value { return Value{Type: SShort, Short: v} }

// NewInt builds an Int value.
func NewInt(v int32) Value { return Value{Type: SInt, Int: v} }

// NewLong builds a Long value.
func NewLong(v int64) Value { return Value{Type: SLong, Long: v} }

// NewBigInt builds a BigInt value.
func NewBigInt(v primitive.BigInt) Value { return Value{Type: SBigInt, Big: v} }

// NewGroupElement builds a GroupElement value.
func NewGroupElement(p ecc.EcPoint) Value { return Value{Type: SGroupElement, GroupElement: p} }

// NewCollValue builds a Coll value with the given element type.
func NewCollValue(c Coll) Value { return Value{Type: SColl(c.ElemType), CollVal: c} }

// NewOption builds a Some(v) value of type Option[v.Type].
func NewOption(v Value) Value {
	vv := v
	return Value{Type: SOption(v.Type), OptVal: &vv}
}

// NewNone builds a None value of the given element type.
func NewNone(elem SType) Value { return Value{Type: SOption(elem), OptVal: nil} }

// NewTuple builds a tuple value; the type is derived from the items' types.
func NewTuple(items ...Value) (Value, error) {
	types := make([]SType, len(items))
	for i, it := range items {
		types[i] = it.Type
	}
	tpe, err := STuple(types...)
	if err != nil {
		return Value{}, err
	}
	return Value{Type: tpe, TupleVal: Tuple{Items: items}}, nil
}

// Eq reports structural equality between two values, requiring the element
// type of any collection to match (spec §4.B).
func (v Value) Eq(other Value) bool {
	if !v.Type.Eq(other.Type) {
		return false
	}
	switch v.Type.Kind {
	case KindUnit:
		return true
	case KindBoolean:
		return v.Bool == other.Bool
	case KindByte:
		return v.Byte == other.Byte
	case KindShort:
		return v.Short == other.Short
	case KindInt:
		return v.Int == other.Int
	case KindLong:
		return v.Long == other.Long
	case KindBigInt:
		return v.Big.Eq(other.Big)
	case KindGroupElement:
		return v.GroupElement.Eq(other.GroupElement)
	case KindSigmaProp:
		return string(v.SigmaProp.SigmaPropBytes()) == string(other.SigmaProp.SigmaPropBytes())
	case KindBox:
		return v.BoxVal.Id == other.BoxVal.Id
	case KindColl:
		if v.CollVal.Kind == CollKindBytes && other.CollVal.Kind == CollKindBytes {
			return string(v.CollVal.Bytes) == string(other.CollVal.Bytes)
		}
		if v.CollVal.Len() != other.CollVal.Len() {
			return false
		}
		for i := 0; i < v.CollVal.Len(); i++ {
			a, _ := v.CollVal.Get(i)
			b, _ := other.CollVal.Get(i)
			if !a.Eq(b) {
				return false
			}
		}
		return true
	case KindOption:
		if (v.OptVal == nil) != (other.OptVal == nil) {
			return false
		}
		if v.OptVal == nil {
			return true
		}
		return v.OptVal.Eq(*other.OptVal)
	case KindTuple:
		for i := range v.TupleVal.Items {
			if !v.TupleVal.Items[i].Eq(other.TupleVal.Items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TryExtractBool extracts a Boolean, failing with a structured error if the
// value is of a different type (spec §4.B Value::try_extract).
func (v Value) TryExtractBool() (bool, error) {
	if v.Type.Kind != KindBoolean {
		return false, fmt.Errorf("sigmatype: try_extract Boolean, found %s", v.Type)
	}
	return v.Bool, nil
}

// TryExtractLong extracts a Long.
func (v Value) TryExtractLong() (int64, error) {
	if v.Type.Kind != KindLong {
		return 0, fmt.Errorf("sigmatype: try_extract Long, found %s", v.Type)
	}
	return v.Long, nil
}

// TryExtractColl extracts a Coll.
func (v Value) TryExtractColl() (Coll, error) {
	if v.Type.Kind != KindColl {
		return Coll{}, fmt.Errorf("sigmatype: try_extract Coll, found %s", v.Type)
	}
	return v.CollVal, nil
}

// TryExtractBox extracts a Box.
func (v Value) TryExtractBox() (Box, error) {
	if v.Type.Kind != KindBox {
		return Box{}, fmt.Errorf("sigmatype: try_extract Box, found %s", v.Type)
	}
	return v.BoxVal, nil
}

// TryExtractSigmaProp extracts a SigmaProp.
func (v Value) TryExtractSigmaProp() (SigmaPropHolder, error) {
	if v.Type.Kind != KindSigmaProp {
		return nil, fmt.Errorf("sigmatype: try_extract SigmaProp, found %s", v.Type)
	}
	return v.SigmaProp, nil
}
