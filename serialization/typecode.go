package serialization

import "ergotree.dev/sigmachain/sigmatype"

// Primitive type codes, spec §4.C "primitives 1..8".
const (
	codeBoolean      = 1
	codeByte         = 2
	codeShort        = 3
	codeInt          = 4
	codeLong         = 5
	codeBigInt       = 6
	codeGroupElement = 7
	codeSigmaProp    = 8
)

// Packed-family base offsets, spec §4.C.
const (
	collBase       = 12 // Coll[t] uses 12+t for embeddable t
	nestedCollBase = 24 // Coll[Coll[t]] uses 24+t
	optionBase     = 36 // Option[t] uses 36+t
	optionCollBase = 48 // Option[Coll[t]] uses 48+t
)

// Generic constructor codes for types that fall outside the packed
// families (non-embeddable element types, tuples of any arity, and the
// general "Coll of Coll of non-embeddable" case). The spec names these as
// "tuple code families for pair1/pair2/symmetric-pair/triple/quadruple/
// general-N" without fixing exact numbers; this implementation collapses
// them to one general-N encoding (a marker byte, a VLQ item count, then a
// nested type code per item), which is simpler than the real protocol's
// dedicated small-arity codes but preserves the same round-trip guarantee
// (a deliberate Open Question resolution, recorded in DESIGN.md).
const (
	codeGenericColl   = 100
	codeGenericOption = 101
	codeTuple         = 102
)

func embeddableCode(t sigmatype.SType) (byte, bool) {
	switch t.Kind {
	case sigmatype.KindBoolean:
		return codeBoolean, true
	case sigmatype.KindByte:
		return codeByte, true
	case sigmatype.KindShort:
		return codeShort, true
	case sigmatype.KindInt:
		return codeInt, true
	case sigmatype.KindLong:
		return codeLong, true
	case sigmatype.KindBigInt:
		return codeBigInt, true
	case sigmatype.KindGroupElement:
		return codeGroupElement, true
	case sigmatype.KindSigmaProp:
		return codeSigmaProp, true
	default:
		return 0, false
	}
}

func embeddableFromCode(code byte) (sigmatype.SType, bool) {
	switch code {
	case codeBoolean:
		return sigmatype.SBoolean, true
	case codeByte:
		return sigmatype.SByte, true
	case codeShort:
		return sigmatype.SShort, true
	case codeInt:
		return sigmatype.SInt, true
	case codeLong:
		return sigmatype.SLong, true
	case codeBigInt:
		return sigmatype.SBigInt, true
	case codeGroupElement:
		return sigmatype.SGroupElement, true
	case codeSigmaProp:
		return sigmatype.SSigmaProp, true
	default:
		return sigmatype.SType{}, false
	}
}

// WriteType serializes an SType as a type-code byte stream.
func WriteType(w *Writer, t sigmatype.SType) error {
	switch t.Kind {
	case sigmatype.KindAny, sigmatype.KindUnit, sigmatype.KindBox, sigmatype.KindAvlTree,
		sigmatype.KindContext, sigmatype.KindHeader, sigmatype.KindPreHeader, sigmatype.KindGlobal:
		// Single reserved codes above the packed families; placed
		// contiguously from 110, above the generic constructors (100..102).
		w.PutU8(reservedSingleCode(t.Kind))
		return nil
	case sigmatype.KindBoolean, sigmatype.KindByte, sigmatype.KindShort, sigmatype.KindInt,
		sigmatype.KindLong, sigmatype.KindBigInt, sigmatype.KindGroupElement, sigmatype.KindSigmaProp:
		code, _ := embeddableCode(t)
		w.PutU8(code)
		return nil
	case sigmatype.KindColl:
		return writeCollType(w, *t.Elem)
	case sigmatype.KindOption:
		return writeOptionType(w, *t.Elem)
	case sigmatype.KindTuple:
		if len(t.Items) > 255 {
			return serr(ErrTupleItemsOutOfBounds, "tuple has %d items, max 255", len(t.Items))
		}
		w.PutU8(codeTuple)
		w.PutVLQUint32(uint32(len(t.Items)))
		for _, it := range t.Items {
			if err := WriteType(w, it); err != nil {
				return err
			}
		}
		return nil
	case sigmatype.KindFunc:
		return serr(ErrNotImplementedOpCode, "SFunc is not serializable")
	case sigmatype.KindTypeVar:
		return serr(ErrNotImplementedOpCode, "STypeVar is not serializable")
	default:
		return serr(ErrInvalidTypeCode, "unknown type kind %d", t.Kind)
	}
}

func writeCollType(w *Writer, elem sigmatype.SType) error {
	if code, ok := embeddableCode(elem); ok {
		w.PutU8(collBase + code)
		return nil
	}
	if elem.Kind == sigmatype.KindColl {
		if code, ok := embeddableCode(*elem.Elem); ok {
			w.PutU8(nestedCollBase + code)
			return nil
		}
	}
	w.PutU8(codeGenericColl)
	return WriteType(w, elem)
}

func writeOptionType(w *Writer, elem sigmatype.SType) error {
	if code, ok := embeddableCode(elem); ok {
		w.PutU8(optionBase + code)
		return nil
	}
	if elem.Kind == sigmatype.KindColl {
		if code, ok := embeddableCode(*elem.Elem); ok {
			w.PutU8(optionCollBase + code)
			return nil
		}
	}
	w.PutU8(codeGenericOption)
	return WriteType(w, elem)
}

const (
	codeAny       = 110
	codeUnit      = 111
	codeBox       = 112
	codeAvlTree   = 113
	codeContext   = 114
	codeHeader    = 115
	codePreHeader = 116
	codeGlobal    = 117
)

func reservedSingleCode(k sigmatype.Kind) byte {
	switch k {
	case sigmatype.KindAny:
		return codeAny
	case sigmatype.KindUnit:
		return codeUnit
	case sigmatype.KindBox:
		return codeBox
	case sigmatype.KindAvlTree:
		return codeAvlTree
	case sigmatype.KindContext:
		return codeContext
	case sigmatype.KindHeader:
		return codeHeader
	case sigmatype.KindPreHeader:
		return codePreHeader
	case sigmatype.KindGlobal:
		return codeGlobal
	default:
		return 0
	}
}

func singleFromCode(code byte) (sigmatype.SType, bool) {
	switch code {
	case codeAny:
		return sigmatype.SAny, true
	case codeUnit:
		return sigmatype.SUnit, true
	case codeBox:
		return sigmatype.SBox, true
	case codeAvlTree:
		return sigmatype.SAvlTree, true
	case codeContext:
		return sigmatype.SContext, true
	case codeHeader:
		return sigmatype.SHeader, true
	case codePreHeader:
		return sigmatype.SPreHeader, true
	case codeGlobal:
		return sigmatype.SGlobal, true
	default:
		return sigmatype.SType{}, false
	}
}

// ReadType parses an SType from a type-code byte stream.
func ReadType(r *Reader) (sigmatype.SType, error) {
	code, err := r.GetU8()
	if err != nil {
		return sigmatype.SType{}, err
	}
	if t, ok := embeddableFromCode(code); ok {
		return t, nil
	}
	if t, ok := singleFromCode(code); ok {
		return t, nil
	}
	switch {
	case code >= collBase+1 && code <= collBase+8:
		elem, _ := embeddableFromCode(code - collBase)
		return sigmatype.SColl(elem), nil
	case code >= nestedCollBase+1 && code <= nestedCollBase+8:
		elem, _ := embeddableFromCode(code - nestedCollBase)
		return sigmatype.SColl(sigmatype.SColl(elem)), nil
	case code >= optionBase+1 && code <= optionBase+8:
		elem, _ := embeddableFromCode(code - optionBase)
		return sigmatype.SOption(elem), nil
	case code >= optionCollBase+1 && code <= optionCollBase+8:
		elem, _ := embeddableFromCode(code - optionCollBase)
		return sigmatype.SOption(sigmatype.SColl(elem)), nil
	case code == codeGenericColl:
		elem, err := ReadType(r)
		if err != nil {
			return sigmatype.SType{}, err
		}
		return sigmatype.SColl(elem), nil
	case code == codeGenericOption:
		elem, err := ReadType(r)
		if err != nil {
			return sigmatype.SType{}, err
		}
		return sigmatype.SOption(elem), nil
	case code == codeTuple:
		n, err := r.GetVLQUint32()
		if err != nil {
			return sigmatype.SType{}, err
		}
		if n > 255 {
			return sigmatype.SType{}, serr(ErrTupleItemsOutOfBounds, "tuple has %d items, max 255", n)
		}
		items := make([]sigmatype.SType, n)
		for i := range items {
			items[i], err = ReadType(r)
			if err != nil {
				return sigmatype.SType{}, err
			}
		}
		return sigmatype.STuple(items...)
	default:
		return sigmatype.SType{}, serr(ErrInvalidTypeCode, "unrecognized type code %d", code)
	}
}
