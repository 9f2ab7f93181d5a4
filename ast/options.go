package ast

import "ergotree.dev/sigmachain/sigmatype"

// OptionGet unwraps Option[T] into T, failing at eval time on None.
type OptionGet struct {
	Input Expr
}

// NewOptionGet validates input: Option[T].
func NewOptionGet(input Expr) (*OptionGet, error) {
	if input.Tpe().Kind != sigmatype.KindOption {
		return nil, newErr(ErrTypeMismatch, "OptionGet requires an Option, got %s", input.Tpe())
	}
	return &OptionGet{Input: input}, nil
}

// Tpe returns the option's element type.
func (n *OptionGet) Tpe() sigmatype.SType { return *n.Input.Tpe().Elem }

// OptionIsDefined reports whether an Option[T] is Some.
type OptionIsDefined struct {
	Input Expr
}

// NewOptionIsDefined validates input: Option[T].
func NewOptionIsDefined(input Expr) (*OptionIsDefined, error) {
	if input.Tpe().Kind != sigmatype.KindOption {
		return nil, newErr(ErrTypeMismatch, "OptionIsDefined requires an Option, got %s", input.Tpe())
	}
	return &OptionIsDefined{Input: input}, nil
}

// Tpe is always Boolean.
func (n *OptionIsDefined) Tpe() sigmatype.SType { return sigmatype.SBoolean }

// OptionGetOrElse unwraps Option[T], substituting def on None.
type OptionGetOrElse struct {
	Input Expr
	Def   Expr
}

// NewOptionGetOrElse validates input: Option[T], def: T.
func NewOptionGetOrElse(input, def Expr) (*OptionGetOrElse, error) {
	if input.Tpe().Kind != sigmatype.KindOption || !input.Tpe().Elem.Eq(def.Tpe()) {
		return nil, newErr(ErrTypeMismatch, "OptionGetOrElse default must match option element type, got %s", def.Tpe())
	}
	return &OptionGetOrElse{Input: input, Def: def}, nil
}

// Tpe returns the option's element type.
func (n *OptionGetOrElse) Tpe() sigmatype.SType { return *n.Input.Tpe().Elem }

// Tuple constructs a fixed-arity heterogeneous value.
type Tuple struct {
	Items []Expr
}

// NewTuple validates 2..=255 items.
func NewTuple(items []Expr) (*Tuple, error) {
	if len(items) < 2 || len(items) > 255 {
		return nil, newErr(ErrArityMismatch, "Tuple must have 2..=255 items, got %d", len(items))
	}
	return &Tuple{Items: items}, nil
}

// Tpe returns the tuple's STuple type.
func (n *Tuple) Tpe() sigmatype.SType {
	types := make([]sigmatype.SType, len(n.Items))
	for i, it := range n.Items {
		types[i] = it.Tpe()
	}
	t, _ := sigmatype.STuple(types...)
	return t
}

// SelectField projects the 1-indexed field of a tuple.
type SelectField struct {
	Input Expr
	Field byte // 1-indexed
}

// NewSelectField validates input is a tuple and field is in range.
func NewSelectField(input Expr, field byte) (*SelectField, error) {
	t := input.Tpe()
	if t.Kind != sigmatype.KindTuple {
		return nil, newErr(ErrTypeMismatch, "SelectField requires a tuple, got %s", t)
	}
	if field < 1 || int(field) > len(t.Items) {
		return nil, newErr(ErrInvalidArgument, "SelectField index %d out of range [1,%d]", field, len(t.Items))
	}
	return &SelectField{Input: input, Field: field}, nil
}

// Tpe returns the selected field's type.
func (n *SelectField) Tpe() sigmatype.SType { return n.Input.Tpe().Items[n.Field-1] }
