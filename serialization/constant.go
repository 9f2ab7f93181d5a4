package serialization

import (
	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

// WriteConstantValue serializes just the value payload of a Constant, given
// its already-known type (spec §4.C "Constant = (type, value)"). The type
// itself is written separately by WriteType so a ConstantStore can
// segregate placeholders without re-encoding the type twice.
func WriteConstantValue(w *Writer, t sigmatype.SType, v sigmatype.Value) error {
	switch t.Kind {
	case sigmatype.KindUnit:
		return nil
	case sigmatype.KindBoolean:
		if v.Bool {
			w.PutU8(1)
		} else {
			w.PutU8(0)
		}
		return nil
	case sigmatype.KindByte:
		w.PutByte(v.Byte)
		return nil
	case sigmatype.KindShort:
		w.PutZigZagInt16(v.Short)
		return nil
	case sigmatype.KindInt:
		w.PutZigZagInt32(v.Int)
		return nil
	case sigmatype.KindLong:
		w.PutZigZagInt64(v.Long)
		return nil
	case sigmatype.KindBigInt:
		b := v.Big.Bytes()
		if len(b) > 0xffff {
			return serr(ErrValueOutOfBounds, "BigInt encoding too large: %d bytes", len(b))
		}
		w.PutVLQUint32(uint32(len(b)))
		w.PutBytes(b)
		return nil
	case sigmatype.KindGroupElement:
		w.PutBytes(v.GroupElement.SerializeCompressed())
		return nil
	case sigmatype.KindSigmaProp:
		b := v.SigmaProp.SigmaPropBytes()
		w.PutVLQUint32(uint32(len(b)))
		w.PutBytes(b)
		return nil
	case sigmatype.KindColl:
		return writeCollValue(w, *t.Elem, v.CollVal)
	case sigmatype.KindOption:
		if v.OptVal == nil {
			w.PutU8(0)
			return nil
		}
		w.PutU8(1)
		return WriteConstantValue(w, *t.Elem, *v.OptVal)
	case sigmatype.KindTuple:
		for i, it := range t.Items {
			if err := WriteConstantValue(w, it, v.TupleVal.Items[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return serr(ErrNotImplementedOpCode, "constant encoding not implemented for %s", t)
	}
}

func writeCollValue(w *Writer, elem sigmatype.SType, c sigmatype.Coll) error {
	w.PutVLQUint32(uint32(c.Len()))
	if elem.Kind == sigmatype.KindByte && c.Kind == sigmatype.CollKindBytes {
		w.PutBytes(c.Bytes)
		return nil
	}
	items := c.AsSlice()
	for _, it := range items {
		if err := WriteConstantValue(w, elem, it); err != nil {
			return err
		}
	}
	return nil
}

// ReadConstantValue parses a value payload given its already-parsed type.
func ReadConstantValue(r *Reader, t sigmatype.SType) (sigmatype.Value, error) {
	switch t.Kind {
	case sigmatype.KindUnit:
		return sigmatype.NewUnit(), nil
	case sigmatype.KindBoolean:
		b, err := r.GetU8()
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewBool(b != 0), nil
	case sigmatype.KindByte:
		b, err := r.GetByte()
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewByte(b), nil
	case sigmatype.KindShort:
		s, err := r.GetZigZagInt16()
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewShort(s), nil
	case sigmatype.KindInt:
		i, err := r.GetZigZagInt32()
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewInt(i), nil
	case sigmatype.KindLong:
		l, err := r.GetZigZagInt64()
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewLong(l), nil
	case sigmatype.KindBigInt:
		n, err := r.GetVLQUint32()
		if err != nil {
			return sigmatype.Value{}, err
		}
		raw, err := r.GetBytes(int(n))
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewBigInt(primitive.NewBigIntFromBytes(raw)), nil
	case sigmatype.KindGroupElement:
		raw, err := r.GetBytes(ecc.CompressedSize)
		if err != nil {
			return sigmatype.Value{}, err
		}
		p, err := ecc.ParseCompressed(raw)
		if err != nil {
			return sigmatype.Value{}, serr(ErrValueOutOfBounds, "invalid group element: %v", err)
		}
		return sigmatype.NewGroupElement(p), nil
	case sigmatype.KindSigmaProp:
		return sigmatype.Value{}, serr(ErrNotImplementedOpCode,
			"decoding SigmaProp constants is not implemented")
	case sigmatype.KindColl:
		return readCollValue(r, *t.Elem)
	case sigmatype.KindOption:
		tag, err := r.GetU8()
		if err != nil {
			return sigmatype.Value{}, err
		}
		if tag == 0 {
			return sigmatype.NewNone(*t.Elem), nil
		}
		inner, err := ReadConstantValue(r, *t.Elem)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewOption(inner), nil
	case sigmatype.KindTuple:
		items := make([]sigmatype.Value, len(t.Items))
		for i, it := range t.Items {
			v, err := ReadConstantValue(r, it)
			if err != nil {
				return sigmatype.Value{}, err
			}
			items[i] = v
		}
		return sigmatype.NewTuple(items...)
	default:
		return sigmatype.Value{}, serr(ErrNotImplementedOpCode, "constant decoding not implemented for %s", t)
	}
}

func readCollValue(r *Reader, elem sigmatype.SType) (sigmatype.Value, error) {
	n, err := r.GetVLQUint32()
	if err != nil {
		return sigmatype.Value{}, err
	}
	if elem.Kind == sigmatype.KindByte {
		raw, err := r.GetBytes(int(n))
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(raw)), nil
	}
	items := make([]sigmatype.Value, n)
	for i := range items {
		v, err := ReadConstantValue(r, elem)
		if err != nil {
			return sigmatype.Value{}, err
		}
		items[i] = v
	}
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(elem, items)), nil
}

// WriteConstant serializes a full Constant: its type followed by its value.
func WriteConstant(w *Writer, v sigmatype.Value) error {
	if err := WriteType(w, v.Type); err != nil {
		return err
	}
	return WriteConstantValue(w, v.Type, v)
}

// ReadConstant parses a full Constant: type then value.
func ReadConstant(r *Reader) (sigmatype.Value, error) {
	t, err := ReadType(r)
	if err != nil {
		return sigmatype.Value{}, err
	}
	return ReadConstantValue(r, t)
}
