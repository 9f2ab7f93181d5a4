package ast

import "ergotree.dev/sigmachain/sigmatype"

// ContextRef reads the whole Context value.
type ContextRef struct{}

// NewContextRef builds a Context reference node.
func NewContextRef() *ContextRef { return &ContextRef{} }

// Tpe is always Context.
func (n *ContextRef) Tpe() sigmatype.SType { return sigmatype.SContext }

// GlobalRef reads the Global singleton, the receiver of methods like
// groupGenerator/xor that don't depend on per-input state.
type GlobalRef struct{}

// NewGlobalRef builds a Global reference node.
func NewGlobalRef() *GlobalRef { return &GlobalRef{} }

// Tpe is always Global.
func (n *GlobalRef) Tpe() sigmatype.SType { return sigmatype.SGlobal }

// GetVar reads context extension variable varId as type T, yielding None
// if absent or of a different type.
type GetVar struct {
	VarId byte
	Elem  sigmatype.SType
}

// NewGetVar builds a GetVar node of the declared element type.
func NewGetVar(varId byte, elem sigmatype.SType) *GetVar {
	return &GetVar{VarId: varId, Elem: elem}
}

// Tpe returns Option[T].
func (n *GetVar) Tpe() sigmatype.SType { return sigmatype.SOption(n.Elem) }

// MethodCall invokes a named method on obj with args, producing a value of
// the explicitly declared result type. ErgoTree's real method table is
// closed and versioned per-type; this IR keeps the method identified by
// name and leaves signature validation to the eval-time method dispatcher,
// which is the only place that actually knows every type's method set.
type MethodCall struct {
	Obj    Expr
	Method string
	Args   []Expr
	Result sigmatype.SType
}

// NewMethodCall builds a method invocation node.
func NewMethodCall(obj Expr, method string, args []Expr, result sigmatype.SType) *MethodCall {
	return &MethodCall{Obj: obj, Method: method, Args: args, Result: result}
}

// Tpe returns the declared result type.
func (n *MethodCall) Tpe() sigmatype.SType { return n.Result }

// PropertyCall invokes a named zero-argument property accessor on obj.
type PropertyCall struct {
	Obj      Expr
	Property string
	Result   sigmatype.SType
}

// NewPropertyCall builds a property access node.
func NewPropertyCall(obj Expr, property string, result sigmatype.SType) *PropertyCall {
	return &PropertyCall{Obj: obj, Property: property, Result: result}
}

// Tpe returns the declared result type.
func (n *PropertyCall) Tpe() sigmatype.SType { return n.Result }

// DeserializeRegister reads register regId's raw bytes from SELF and
// re-parses them as an Expr of type Elem, falling back to Default if the
// register is absent (failure to parse or type-mismatch is an eval-time
// error, not covered by Default).
type DeserializeRegister struct {
	RegId   byte
	Elem    sigmatype.SType
	Default Expr // may be nil
}

// NewDeserializeRegister validates Default (if present) matches Elem.
func NewDeserializeRegister(regId byte, elem sigmatype.SType, def Expr) (*DeserializeRegister, error) {
	if def != nil && !def.Tpe().Eq(elem) {
		return nil, newErr(ErrTypeMismatch, "DeserializeRegister default must match declared type %s, got %s", elem, def.Tpe())
	}
	return &DeserializeRegister{RegId: regId, Elem: elem, Default: def}, nil
}

// Tpe returns the declared element type.
func (n *DeserializeRegister) Tpe() sigmatype.SType { return n.Elem }

// DeserializeContext reads context extension variable id's raw bytes and
// re-parses them as an Expr of type Elem.
type DeserializeContext struct {
	Id   byte
	Elem sigmatype.SType
}

// NewDeserializeContext builds a context-extension deserialize node.
func NewDeserializeContext(id byte, elem sigmatype.SType) *DeserializeContext {
	return &DeserializeContext{Id: id, Elem: elem}
}

// Tpe returns the declared element type.
func (n *DeserializeContext) Tpe() sigmatype.SType { return n.Elem }

// TreeLookup looks up key in an authenticated AvlTree given a membership
// proof, returning Option[Coll[Byte]] (None if the proof fails to verify
// or the key is absent).
type TreeLookup struct {
	Tree  Expr
	Key   Expr
	Proof Expr
}

// NewTreeLookup validates tree: AvlTree, key/proof: Coll[Byte].
func NewTreeLookup(tree, key, proof Expr) (*TreeLookup, error) {
	if !tree.Tpe().Eq(sigmatype.SAvlTree) {
		return nil, newErr(ErrTypeMismatch, "TreeLookup requires AvlTree, got %s", tree.Tpe())
	}
	if err := requireByteColl(key.Tpe(), "TreeLookup key"); err != nil {
		return nil, err
	}
	if err := requireByteColl(proof.Tpe(), "TreeLookup proof"); err != nil {
		return nil, err
	}
	return &TreeLookup{Tree: tree, Key: key, Proof: proof}, nil
}

// Tpe is always Option[Coll[Byte]].
func (n *TreeLookup) Tpe() sigmatype.SType { return sigmatype.SOption(sigmatype.SColl(sigmatype.SByte)) }

// CreateAvlTree builds an empty authenticated dictionary handle from its
// header fields.
type CreateAvlTree struct {
	Flags         Expr // Byte
	Digest        Expr // Coll[Byte]
	KeyLength     Expr // Int
	ValueLenOpt   Expr // Option[Int], may be nil meaning None
}

// NewCreateAvlTree validates flags: Byte, digest: Coll[Byte], keyLength: Int.
func NewCreateAvlTree(flags, digest, keyLength, valueLenOpt Expr) (*CreateAvlTree, error) {
	if !flags.Tpe().Eq(sigmatype.SByte) {
		return nil, newErr(ErrTypeMismatch, "CreateAvlTree flags must be Byte, got %s", flags.Tpe())
	}
	if err := requireByteColl(digest.Tpe(), "CreateAvlTree digest"); err != nil {
		return nil, err
	}
	if !keyLength.Tpe().Eq(sigmatype.SInt) {
		return nil, newErr(ErrTypeMismatch, "CreateAvlTree keyLength must be Int, got %s", keyLength.Tpe())
	}
	if valueLenOpt != nil && !valueLenOpt.Tpe().Eq(sigmatype.SOption(sigmatype.SInt)) {
		return nil, newErr(ErrTypeMismatch, "CreateAvlTree valueLengthOpt must be Option[Int], got %s", valueLenOpt.Tpe())
	}
	return &CreateAvlTree{Flags: flags, Digest: digest, KeyLength: keyLength, ValueLenOpt: valueLenOpt}, nil
}

// Tpe is always AvlTree.
func (n *CreateAvlTree) Tpe() sigmatype.SType { return sigmatype.SAvlTree }

// SubstConstants replaces the constants at the given positions within a
// serialized script's bytes with newValues, returning the patched script
// bytes. Used to specialize a compiled template without recompiling it.
type SubstConstants struct {
	ScriptBytes Expr // Coll[Byte]
	Positions   Expr // Coll[Int]
	NewValues   Expr // Coll[T] -- heterogeneous in the real protocol via SAny
}

// NewSubstConstants validates scriptBytes: Coll[Byte], positions: Coll[Int].
func NewSubstConstants(scriptBytes, positions, newValues Expr) (*SubstConstants, error) {
	if err := requireByteColl(scriptBytes.Tpe(), "SubstConstants scriptBytes"); err != nil {
		return nil, err
	}
	if positions.Tpe().Kind != sigmatype.KindColl || !positions.Tpe().Elem.Eq(sigmatype.SInt) {
		return nil, newErr(ErrTypeMismatch, "SubstConstants positions must be Coll[Int], got %s", positions.Tpe())
	}
	if newValues.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "SubstConstants newValues must be a collection, got %s", newValues.Tpe())
	}
	return &SubstConstants{ScriptBytes: scriptBytes, Positions: positions, NewValues: newValues}, nil
}

// Tpe is always Coll[Byte].
func (n *SubstConstants) Tpe() sigmatype.SType { return sigmatype.SColl(sigmatype.SByte) }
