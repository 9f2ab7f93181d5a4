package ast

import "ergotree.dev/sigmachain/sigmatype"

// Collection builds a literal Coll from a fixed list of same-typed items.
type Collection struct {
	ElemType sigmatype.SType
	Items    []Expr
}

// NewCollection validates every item shares elemType.
func NewCollection(elemType sigmatype.SType, items []Expr) (*Collection, error) {
	for i, it := range items {
		if !it.Tpe().Eq(elemType) {
			return nil, newErr(ErrTypeMismatch, "Collection item %d: expected %s, got %s", i, elemType, it.Tpe())
		}
	}
	return &Collection{ElemType: elemType, Items: items}, nil
}

// Tpe returns Coll[ElemType].
func (n *Collection) Tpe() sigmatype.SType { return sigmatype.SColl(n.ElemType) }

// ByIndex returns the element at a given Int index, or a Default
// expression's value (of the same element type) if index is out of range.
type ByIndex struct {
	Input    Expr
	Index    Expr
	Default  Expr // may be nil
}

// NewByIndex validates input: Coll[T], index: Int, and (if present)
// def: T.
func NewByIndex(input, index, def Expr) (*ByIndex, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "ByIndex input must be a collection, got %s", input.Tpe())
	}
	if !index.Tpe().Eq(sigmatype.SInt) {
		return nil, newErr(ErrTypeMismatch, "ByIndex index must be Int, got %s", index.Tpe())
	}
	if def != nil && !def.Tpe().Eq(*input.Tpe().Elem) {
		return nil, newErr(ErrTypeMismatch, "ByIndex default must match element type %s, got %s", *input.Tpe().Elem, def.Tpe())
	}
	return &ByIndex{Input: input, Index: index, Default: def}, nil
}

// Tpe returns the collection's element type.
func (n *ByIndex) Tpe() sigmatype.SType { return *n.Input.Tpe().Elem }

// SizeOf returns the Int length of a collection.
type SizeOf struct {
	Input Expr
}

// NewSizeOf validates input is a collection.
func NewSizeOf(input Expr) (*SizeOf, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "SizeOf requires a collection, got %s", input.Tpe())
	}
	return &SizeOf{Input: input}, nil
}

// Tpe is always Int.
func (n *SizeOf) Tpe() sigmatype.SType { return sigmatype.SInt }

// Slice returns elements from index [from, until) of a collection.
type Slice struct {
	Input      Expr
	From, Until Expr
}

// NewSlice validates input is a collection and from/until are Int.
func NewSlice(input, from, until Expr) (*Slice, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "Slice requires a collection, got %s", input.Tpe())
	}
	if !from.Tpe().Eq(sigmatype.SInt) || !until.Tpe().Eq(sigmatype.SInt) {
		return nil, newErr(ErrTypeMismatch, "Slice bounds must be Int")
	}
	return &Slice{Input: input, From: from, Until: until}, nil
}

// Tpe returns the input collection's type unchanged.
func (n *Slice) Tpe() sigmatype.SType { return n.Input.Tpe() }

// Append concatenates two collections of equal element type.
type Append struct {
	Left, Right Expr
}

// NewAppend validates both sides are collections of the same element type.
func NewAppend(left, right Expr) (*Append, error) {
	lt, rt := left.Tpe(), right.Tpe()
	if lt.Kind != sigmatype.KindColl || !lt.Eq(rt) {
		return nil, newErr(ErrTypeMismatch, "Append requires two collections of equal type, got %s and %s", lt, rt)
	}
	return &Append{Left: left, Right: right}, nil
}

// Tpe returns the shared collection type.
func (n *Append) Tpe() sigmatype.SType { return n.Left.Tpe() }

// Fold reduces a Coll[T] left-to-right with an (S,T)=>S folder starting
// from zero: S.
type Fold struct {
	Input  Expr
	Zero   Expr
	Folder Expr // FuncValue: (S,T)=>S
}

// NewFold validates input: Coll[T], folder: (S,T)=>S, zero: S.
func NewFold(input, zero, folder Expr) (*Fold, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "Fold input must be a collection, got %s", input.Tpe())
	}
	ft := folder.Tpe()
	if ft.Kind != sigmatype.KindFunc || len(ft.Dom) != 2 {
		return nil, newErr(ErrTypeMismatch, "Fold folder must be a 2-ary function, got %s", ft)
	}
	if !ft.Dom[0].Eq(zero.Tpe()) || !ft.Range.Eq(zero.Tpe()) {
		return nil, newErr(ErrTypeMismatch, "Fold folder signature must be (%s,T)=>%s", zero.Tpe(), zero.Tpe())
	}
	if !ft.Dom[1].Eq(*input.Tpe().Elem) {
		return nil, newErr(ErrTypeMismatch, "Fold folder second arg must match element type %s", *input.Tpe().Elem)
	}
	return &Fold{Input: input, Zero: zero, Folder: folder}, nil
}

// Tpe returns the accumulator type S.
func (n *Fold) Tpe() sigmatype.SType { return n.Zero.Tpe() }

// lambdaOf validates fn is a unary FuncValue-typed expression and returns
// its domain/range.
func lambdaOf(fn Expr, who string) (dom, rng sigmatype.SType, err error) {
	ft := fn.Tpe()
	if ft.Kind != sigmatype.KindFunc || len(ft.Dom) != 1 {
		return sigmatype.SType{}, sigmatype.SType{}, newErr(ErrTypeMismatch, "%s requires a unary function, got %s", who, ft)
	}
	return ft.Dom[0], *ft.Range, nil
}

// Map applies a T=>R function to every element, yielding Coll[R].
type Map struct {
	Input Expr
	Fn    Expr
}

// NewMap validates input: Coll[T], fn: T=>R.
func NewMap(input, fn Expr) (*Map, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "Map input must be a collection, got %s", input.Tpe())
	}
	dom, _, err := lambdaOf(fn, "Map")
	if err != nil {
		return nil, err
	}
	if !dom.Eq(*input.Tpe().Elem) {
		return nil, newErr(ErrTypeMismatch, "Map function domain %s does not match element type %s", dom, *input.Tpe().Elem)
	}
	return &Map{Input: input, Fn: fn}, nil
}

// Tpe returns Coll[R] where R is the lambda's range.
func (n *Map) Tpe() sigmatype.SType {
	_, rng, _ := lambdaOf(n.Fn, "Map")
	return sigmatype.SColl(rng)
}

// predicateNode is shared shape for Filter/Exists/ForAll.
type predicateNode struct {
	Input Expr
	Pred  Expr // T=>Boolean
}

func newPredicateNode(input, pred Expr, who string) (predicateNode, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return predicateNode{}, newErr(ErrTypeMismatch, "%s input must be a collection, got %s", who, input.Tpe())
	}
	dom, rng, err := lambdaOf(pred, who)
	if err != nil {
		return predicateNode{}, err
	}
	if !dom.Eq(*input.Tpe().Elem) || !rng.Eq(sigmatype.SBoolean) {
		return predicateNode{}, newErr(ErrTypeMismatch, "%s predicate must be %s=>Boolean, got %s", who, *input.Tpe().Elem, pred.Tpe())
	}
	return predicateNode{Input: input, Pred: pred}, nil
}

// Filter keeps elements for which pred holds, preserving collection type.
type Filter struct{ predicateNode }

// NewFilter validates input: Coll[T], pred: T=>Boolean.
func NewFilter(input, pred Expr) (*Filter, error) {
	p, err := newPredicateNode(input, pred, "Filter")
	if err != nil {
		return nil, err
	}
	return &Filter{p}, nil
}

// Tpe returns the input collection's type unchanged.
func (n *Filter) Tpe() sigmatype.SType { return n.Input.Tpe() }

// Exists reports whether any element satisfies pred.
type Exists struct{ predicateNode }

// NewExists validates input: Coll[T], pred: T=>Boolean.
func NewExists(input, pred Expr) (*Exists, error) {
	p, err := newPredicateNode(input, pred, "Exists")
	if err != nil {
		return nil, err
	}
	return &Exists{p}, nil
}

// Tpe is always Boolean.
func (n *Exists) Tpe() sigmatype.SType { return sigmatype.SBoolean }

// ForAll reports whether every element satisfies pred.
type ForAll struct{ predicateNode }

// NewForAll validates input: Coll[T], pred: T=>Boolean.
func NewForAll(input, pred Expr) (*ForAll, error) {
	p, err := newPredicateNode(input, pred, "ForAll")
	if err != nil {
		return nil, err
	}
	return &ForAll{p}, nil
}

// Tpe is always Boolean.
func (n *ForAll) Tpe() sigmatype.SType { return sigmatype.SBoolean }

// IndexOf returns the first index where input equals needle under
// structural equality, or def if none match.
type IndexOf struct {
	Input  Expr
	Needle Expr
	Def    Expr
}

// NewIndexOf validates input: Coll[T], needle: T, def: Int.
func NewIndexOf(input, needle, def Expr) (*IndexOf, error) {
	if input.Tpe().Kind != sigmatype.KindColl || !input.Tpe().Elem.Eq(needle.Tpe()) {
		return nil, newErr(ErrTypeMismatch, "IndexOf needle type %s does not match element type", needle.Tpe())
	}
	if !def.Tpe().Eq(sigmatype.SInt) {
		return nil, newErr(ErrTypeMismatch, "IndexOf default must be Int, got %s", def.Tpe())
	}
	return &IndexOf{Input: input, Needle: needle, Def: def}, nil
}

// Tpe is always Int.
func (n *IndexOf) Tpe() sigmatype.SType { return sigmatype.SInt }

// Flatmap applies a T=>Coll[U] function to every element and concatenates
// the results into one Coll[U].
type Flatmap struct {
	Input Expr
	Fn    Expr
}

// NewFlatmap validates input: Coll[T], fn: T=>Coll[U].
func NewFlatmap(input, fn Expr) (*Flatmap, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "Flatmap input must be a collection, got %s", input.Tpe())
	}
	dom, rng, err := lambdaOf(fn, "Flatmap")
	if err != nil {
		return nil, err
	}
	if !dom.Eq(*input.Tpe().Elem) {
		return nil, newErr(ErrTypeMismatch, "Flatmap function domain does not match element type")
	}
	if rng.Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "Flatmap function must return a collection, got %s", rng)
	}
	return &Flatmap{Input: input, Fn: fn}, nil
}

// Tpe returns Coll[U], the inner collection's element type.
func (n *Flatmap) Tpe() sigmatype.SType {
	_, rng, _ := lambdaOf(n.Fn, "Flatmap")
	return rng
}

// Zip pairs elements of two collections up to min(len a, len b).
type Zip struct {
	Left, Right Expr
}

// NewZip validates both sides are collections.
func NewZip(left, right Expr) (*Zip, error) {
	if left.Tpe().Kind != sigmatype.KindColl || right.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "Zip requires two collections")
	}
	return &Zip{Left: left, Right: right}, nil
}

// Tpe returns Coll[(L,R)].
func (n *Zip) Tpe() sigmatype.SType {
	tup, _ := sigmatype.STuple(*n.Left.Tpe().Elem, *n.Right.Tpe().Elem)
	return sigmatype.SColl(tup)
}

// Indices returns Coll[Int] of 0..<len(input).
type Indices struct {
	Input Expr
}

// NewIndices validates input is a collection.
func NewIndices(input Expr) (*Indices, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "Indices requires a collection, got %s", input.Tpe())
	}
	return &Indices{Input: input}, nil
}

// Tpe is always Coll[Int].
func (n *Indices) Tpe() sigmatype.SType { return sigmatype.SColl(sigmatype.SInt) }

// Patch replaces a subrange of input with patch's contents:
// take(from) ++ patch ++ drop(from+replaced).
type Patch struct {
	Input    Expr
	From     Expr
	Patch    Expr
	Replaced Expr
}

// NewPatch validates input and patch share collection type, from/replaced
// are Int.
func NewPatch(input, from, patch, replaced Expr) (*Patch, error) {
	if input.Tpe().Kind != sigmatype.KindColl || !input.Tpe().Eq(patch.Tpe()) {
		return nil, newErr(ErrTypeMismatch, "Patch input and patch must share collection type, got %s and %s", input.Tpe(), patch.Tpe())
	}
	if !from.Tpe().Eq(sigmatype.SInt) || !replaced.Tpe().Eq(sigmatype.SInt) {
		return nil, newErr(ErrTypeMismatch, "Patch from/replaced must be Int")
	}
	return &Patch{Input: input, From: from, Patch: patch, Replaced: replaced}, nil
}

// Tpe returns the shared collection type.
func (n *Patch) Tpe() sigmatype.SType { return n.Input.Tpe() }

// Updated replaces the element at index i with v, failing at eval time if
// i is out of range.
type Updated struct {
	Input Expr
	Index Expr
	Value Expr
}

// NewUpdated validates input: Coll[T], index: Int, value: T.
func NewUpdated(input, index, value Expr) (*Updated, error) {
	if input.Tpe().Kind != sigmatype.KindColl || !input.Tpe().Elem.Eq(value.Tpe()) {
		return nil, newErr(ErrTypeMismatch, "Updated value type %s does not match element type", value.Tpe())
	}
	if !index.Tpe().Eq(sigmatype.SInt) {
		return nil, newErr(ErrTypeMismatch, "Updated index must be Int, got %s", index.Tpe())
	}
	return &Updated{Input: input, Index: index, Value: value}, nil
}

// Tpe returns the input collection's type unchanged.
func (n *Updated) Tpe() sigmatype.SType { return n.Input.Tpe() }

// UpdateMany applies index/value pairs in order, failing at eval time if
// the index and value collections differ in length or any index is out of
// range.
type UpdateMany struct {
	Input   Expr
	Indices Expr // Coll[Int]
	Values  Expr // Coll[T]
}

// NewUpdateMany validates input: Coll[T], indices: Coll[Int], values: Coll[T].
func NewUpdateMany(input, indices, values Expr) (*UpdateMany, error) {
	if input.Tpe().Kind != sigmatype.KindColl {
		return nil, newErr(ErrTypeMismatch, "UpdateMany input must be a collection, got %s", input.Tpe())
	}
	if indices.Tpe().Kind != sigmatype.KindColl || !indices.Tpe().Elem.Eq(sigmatype.SInt) {
		return nil, newErr(ErrTypeMismatch, "UpdateMany indices must be Coll[Int], got %s", indices.Tpe())
	}
	if !values.Tpe().Eq(input.Tpe()) {
		return nil, newErr(ErrTypeMismatch, "UpdateMany values must share input's collection type, got %s", values.Tpe())
	}
	return &UpdateMany{Input: input, Indices: indices, Values: values}, nil
}

// Tpe returns the input collection's type unchanged.
func (n *UpdateMany) Tpe() sigmatype.SType { return n.Input.Tpe() }

// XorOf reduces a Coll[Boolean] to a Boolean via bitwise XOR of all elements.
type XorOf struct {
	Input Expr
}

// NewXorOf validates input: Coll[Boolean].
func NewXorOf(input Expr) (*XorOf, error) {
	if input.Tpe().Kind != sigmatype.KindColl || !input.Tpe().Elem.Eq(sigmatype.SBoolean) {
		return nil, newErr(ErrTypeMismatch, "XorOf requires Coll[Boolean], got %s", input.Tpe())
	}
	return &XorOf{Input: input}, nil
}

// Tpe is always Boolean.
func (n *XorOf) Tpe() sigmatype.SType { return sigmatype.SBoolean }
