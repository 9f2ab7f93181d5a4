package ast

import "ergotree.dev/sigmachain/sigmatype"

// Expr is the common interface every IR node satisfies. Tpe returns the
// node's static type, derived from the node's fields and children alone,
// never from eval-time state.
type Expr interface {
	Tpe() sigmatype.SType
}

// Const is a literal value node. Segregated trees replace these with
// ConstantPlaceholder during serialization; see package serialization's
// ConstantStore.
type Const struct {
	Value sigmatype.Value
}

// NewConst wraps a runtime Value as a literal node.
func NewConst(v sigmatype.Value) *Const { return &Const{Value: v} }

// Tpe returns the constant's type.
func (c *Const) Tpe() sigmatype.SType { return c.Value.Type }

// ConstantPlaceholder stands in for a segregated constant by index.
type ConstantPlaceholder struct {
	Index uint32
	Type  sigmatype.SType
}

// NewConstantPlaceholder builds a placeholder referencing constants[index].
func NewConstantPlaceholder(index uint32, t sigmatype.SType) *ConstantPlaceholder {
	return &ConstantPlaceholder{Index: index, Type: t}
}

// Tpe returns the placeholder's declared type.
func (c *ConstantPlaceholder) Tpe() sigmatype.SType { return c.Type }

// GlobalVarKind enumerates the context-derived globals.
type GlobalVarKind uint8

const (
	GlobalHeight GlobalVarKind = iota
	GlobalSelfBox
	GlobalInputs
	GlobalOutputs
	GlobalMinerPk
)

// GlobalVars reads one of the ambient context values.
type GlobalVars struct {
	Kind GlobalVarKind
	tpe  sigmatype.SType
}

// NewGlobalVars builds a GlobalVars node for kind.
func NewGlobalVars(kind GlobalVarKind) (*GlobalVars, error) {
	var tpe sigmatype.SType
	switch kind {
	case GlobalHeight:
		tpe = sigmatype.SInt
	case GlobalSelfBox:
		tpe = sigmatype.SBox
	case GlobalInputs, GlobalOutputs:
		tpe = sigmatype.SColl(sigmatype.SBox)
	case GlobalMinerPk:
		tpe = sigmatype.SGroupElement
	default:
		return nil, newErr(ErrInvalidArgument, "unknown global var kind %d", kind)
	}
	return &GlobalVars{Kind: kind, tpe: tpe}, nil
}

// Tpe returns the global's type.
func (g *GlobalVars) Tpe() sigmatype.SType { return g.tpe }

// ValDef binds the result of rhs to a fresh value id, visible to
// subsequent statements in the enclosing BlockValue.
type ValDef struct {
	Id  int32
	Rhs Expr
}

// NewValDef builds a binding of id to rhs's value.
func NewValDef(id int32, rhs Expr) *ValDef { return &ValDef{Id: id, Rhs: rhs} }

// Tpe returns Unit: ValDef's effect is the binding, not a value.
func (v *ValDef) Tpe() sigmatype.SType { return sigmatype.SUnit }

// ValUse references a value bound earlier in the enclosing block by id.
type ValUse struct {
	Id  int32
	tpe sigmatype.SType
}

// NewValUse builds a reference to id, whose type must be supplied by the
// caller (the block builder tracks bound ids and their types).
func NewValUse(id int32, tpe sigmatype.SType) *ValUse { return &ValUse{Id: id, tpe: tpe} }

// Tpe returns the referenced binding's type.
func (v *ValUse) Tpe() sigmatype.SType { return v.tpe }

// BlockValue is a sequence of ValDef statements followed by a result
// expression; its type is the result's type.
type BlockValue struct {
	Items  []*ValDef
	Result Expr
}

// NewBlockValue builds a block of items ending in result.
func NewBlockValue(items []*ValDef, result Expr) *BlockValue {
	return &BlockValue{Items: items, Result: result}
}

// Tpe returns the result expression's type.
func (b *BlockValue) Tpe() sigmatype.SType { return b.Result.Tpe() }

// FuncArg is one (id, type) parameter of a FuncValue.
type FuncArg struct {
	Id  int32
	Tpe sigmatype.SType
}

// FuncValue is a lambda: its type is SFunc(argTypes, body.Tpe()).
type FuncValue struct {
	Args []FuncArg
	Body Expr
}

// NewFuncValue builds a lambda over args evaluating body.
func NewFuncValue(args []FuncArg, body Expr) *FuncValue {
	return &FuncValue{Args: args, Body: body}
}

// Tpe returns the function type.
func (f *FuncValue) Tpe() sigmatype.SType {
	dom := make([]sigmatype.SType, len(f.Args))
	for i, a := range f.Args {
		dom[i] = a.Tpe
	}
	return sigmatype.SFunc(dom, f.Body.Tpe())
}

// Apply calls a FuncValue-typed expression with args; arity and argument
// types must match the function's declared domain.
type Apply struct {
	Func Expr
	Args []Expr
}

// NewApply builds a call of fn with args, validating arity and argument
// types against fn's SFunc signature.
func NewApply(fn Expr, args []Expr) (*Apply, error) {
	ft := fn.Tpe()
	if ft.Kind != sigmatype.KindFunc {
		return nil, newErr(ErrTypeMismatch, "Apply target is not a function, got %s", ft)
	}
	if len(ft.Dom) != len(args) {
		return nil, newErr(ErrArityMismatch, "function expects %d args, got %d", len(ft.Dom), len(args))
	}
	for i, a := range args {
		if !a.Tpe().Eq(ft.Dom[i]) {
			return nil, newErr(ErrTypeMismatch, "arg %d: expected %s, got %s", i, ft.Dom[i], a.Tpe())
		}
	}
	return &Apply{Func: fn, Args: args}, nil
}

// Tpe returns the function's range type.
func (a *Apply) Tpe() sigmatype.SType { return *a.Func.Tpe().Range }
