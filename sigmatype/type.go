// Package sigmatype implements the ErgoTree type system (SType) and the
// runtime Value representation it describes, mirroring spec component B.
package sigmatype

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of SType constructors.
type Kind uint8

const (
	KindAny Kind = iota
	KindUnit
	KindBoolean
	KindByte
	KindShort
	KindInt
	KindLong
	KindBigInt
	KindGroupElement
	KindSigmaProp
	KindBox
	KindAvlTree
	KindContext
	KindHeader
	KindPreHeader
	KindGlobal
	KindColl
	KindOption
	KindTuple
	KindFunc
	KindTypeVar
)

// SType is the closed sum of ErgoTree types. Compound constructors
// (Coll/Option/Tuple/Func/TypeVar) use the extra fields; the primitive
// kinds use none.
type SType struct {
	Kind Kind

	Elem  *SType   // Coll, Option
	Items []SType  // Tuple (2..=255 items)
	Dom   []SType  // Func domain
	Range *SType   // Func range
	Name  string   // TypeVar
}

// Primitive type constructors, matching spec §4.B.
var (
	SAny          = SType{Kind: KindAny}
	SUnit         = SType{Kind: KindUnit}
	SBoolean      = SType{Kind: KindBoolean}
	SByte         = SType{Kind: KindByte}
	SShort        = SType{Kind: KindShort}
	SInt          = SType{Kind: KindInt}
	SLong         = SType{Kind: KindLong}
	SBigInt       = SType{Kind: KindBigInt}
	SGroupElement = SType{Kind: KindGroupElement}
	SSigmaProp    = SType{Kind: KindSigmaProp}
	SBox          = SType{Kind: KindBox}
	SAvlTree      = SType{Kind: KindAvlTree}
	SContext      = SType{Kind: KindContext}
	SHeader       = SType{Kind: KindHeader}
	SPreHeader    = SType{Kind: KindPreHeader}
	SGlobal       = SType{Kind: KindGlobal}
)

// SColl builds Coll[elem].
func SColl(elem SType) SType { return SType{Kind: KindColl, Elem: &elem} }

// SOption builds Option[elem].
func SOption(elem SType) SType { return SType{Kind: KindOption, Elem: &elem} }

// STuple builds a tuple type of 2..=255 items.
func STuple(items ...SType) (SType, error) {
	if len(items) < 2 || len(items) > 255 {
		return SType{}, fmt.Errorf("sigmatype: tuple must have 2..=255 items, got %d", len(items))
	}
	return SType{Kind: KindTuple, Items: items}, nil
}

// SFunc builds a function type (not itself serializable per spec §4.C).
func SFunc(dom []SType, rng SType) SType {
	return SType{Kind: KindFunc, Dom: dom, Range: &rng}
}

// STypeVar builds a named type variable, used inside generic method
// signatures before monomorphization.
func STypeVar(name string) SType {
	return SType{Kind: KindTypeVar, Name: name}
}

// IsEmbeddable reports whether t has a primitive type code usable directly
// inside the packed Coll/Option type-code families (spec §4.C): exactly the
// eight kinds Boolean, Byte, Short, Int, Long, BigInt, GroupElement and
// SigmaProp. SAny, SUnit, Box, AvlTree, Context, Header, PreHeader, Global
// and the compound/variable kinds are not embeddable.
func (t SType) IsEmbeddable() bool {
	switch t.Kind {
	case KindBoolean, KindByte, KindShort, KindInt, KindLong, KindBigInt,
		KindGroupElement, KindSigmaProp:
		return true
	default:
		return false
	}
}

// Eq reports structural type equality.
func (t SType) Eq(other SType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindColl, KindOption:
		return t.Elem.Eq(*other.Elem)
	case KindTuple:
		if len(t.Items) != len(other.Items) {
			return false
		}
		for i := range t.Items {
			if !t.Items[i].Eq(other.Items[i]) {
				return false
			}
		}
		return true
	case KindFunc:
		if len(t.Dom) != len(other.Dom) {
			return false
		}
		for i := range t.Dom {
			if !t.Dom[i].Eq(other.Dom[i]) {
				return false
			}
		}
		return t.Range.Eq(*other.Range)
	case KindTypeVar:
		return t.Name == other.Name
	default:
		return true
	}
}

// String renders a debug representation of the type.
func (t SType) String() string {
	switch t.Kind {
	case KindAny:
		return "Any"
	case KindUnit:
		return "Unit"
	case KindBoolean:
		return "Boolean"
	case KindByte:
		return "Byte"
	case KindShort:
		return "Short"
	case KindInt:
		return "Int"
	case KindLong:
		return "Long"
	case KindBigInt:
		return "BigInt"
	case KindGroupElement:
		return "GroupElement"
	case KindSigmaProp:
		return "SigmaProp"
	case KindBox:
		return "Box"
	case KindAvlTree:
		return "AvlTree"
	case KindContext:
		return "Context"
	case KindHeader:
		return "Header"
	case KindPreHeader:
		return "PreHeader"
	case KindGlobal:
		return "Global"
	case KindColl:
		return "Coll[" + t.Elem.String() + "]"
	case KindOption:
		return "Option[" + t.Elem.String() + "]"
	case KindTuple:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFunc:
		parts := make([]string, len(t.Dom))
		for i, d := range t.Dom {
			parts[i] = d.String()
		}
		return "(" + strings.Join(parts, ", ") + ") => " + t.Range.String()
	case KindTypeVar:
		return "$" + t.Name
	default:
		return "?"
	}
}
