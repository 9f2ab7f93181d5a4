package ergotree

import (
	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/serialization"
	"ergotree.dev/sigmachain/sigmatype"
)

const (
	headerVersionMask     byte = 0x07
	headerHasSize         byte = 1 << 3
	headerHasSegregation  byte = 1 << 4
	headerReservedMask    byte = 0x60
	headerMultiByteUnused byte = 1 << 7

	maxConstants = 4096
)

// ErgoTree is the serializable container around a proposition expression
// (spec component D): a header byte, an optional size prefix, an optional
// segregated constants vector, and the root expression.
//
// A tree whose constants block or root expression failed to parse is kept
// around as an opaque value rather than rejected outright: rawBody holds
// the exact bytes between the header and end of tree, so Bytes() always
// reproduces the original input even when Proposition()/TemplateBytes()
// cannot.
type ErgoTree struct {
	header    byte
	constants []sigmatype.Value
	root      ast.Expr // placeholder-bearing when segregated; nil if parseErr != nil
	rootBytes []byte   // serialized form of root; nil if parseErr != nil
	rawBody   []byte   // exact constants+root bytes; only set if parseErr != nil
	parseErr  error
}

// FromExpr builds a tree around e. When segregate is true, every literal
// inside e is hoisted into a Constants vector and replaced by a
// ConstantPlaceholder on the wire, per spec §5: e is written once through
// an empty ConstantStore, the populated store is captured, and the just
// written bytes are reparsed with that store installed (without
// substitution) so root holds the placeholder-bearing shape rather than e
// itself.
func FromExpr(version byte, segregate, withSize bool, e ast.Expr) (*ErgoTree, error) {
	if version > headerVersionMask {
		return nil, newErr(ErrInvalidHeader, "language version %d does not fit in 3 bits", version)
	}
	header := version
	if withSize {
		header |= headerHasSize
	}
	if segregate {
		header |= headerHasSegregation
	}

	store := serialization.NewConstantStore()
	w := serialization.NewWriter()
	if err := WriteExpr(w, store, segregate, e); err != nil {
		return nil, err
	}
	rootBytes := w.Bytes()
	constants := store.Constants()
	if len(constants) > maxConstants {
		return nil, newErr(ErrConstantIndex, "constants count %d exceeds maximum %d", len(constants), maxConstants)
	}

	readStore := serialization.NewConstantStoreWithConstants(constants, false)
	root, err := ReadExpr(serialization.NewReader(rootBytes), readStore)
	if err != nil {
		return nil, err
	}

	return &ErgoTree{header: header, constants: constants, root: root, rootBytes: rootBytes}, nil
}

// Parse decodes a full ErgoTree container, preserving an unparseable
// constants block or root expression as opaque bytes rather than failing:
// Bytes() on the result still reproduces data exactly, matching the
// invariant parse(serialize(tree)) == tree even for malformed trees.
func Parse(data []byte) (*ErgoTree, error) {
	r := serialization.NewReader(data)
	header, err := r.GetU8()
	if err != nil {
		return nil, err
	}
	if header&headerReservedMask != 0 || header&headerMultiByteUnused != 0 {
		return nil, newErr(ErrInvalidHeader, "reserved header bits set: 0x%02x", header)
	}

	var body []byte
	if header&headerHasSize != 0 {
		size, err := r.GetVLQUint32()
		if err != nil {
			return nil, err
		}
		body, err = r.GetBytes(int(size))
		if err != nil {
			return nil, err
		}
	} else {
		body = append([]byte{}, r.Rest()...)
	}

	br := serialization.NewReader(body)
	var constants []sigmatype.Value
	if header&headerHasSegregation != 0 {
		constants, err = serialization.ReadConstants(br)
		if err != nil {
			return &ErgoTree{header: header, rawBody: body, parseErr: err}, nil
		}
	}
	rootBytes := append([]byte{}, br.Rest()...)

	readStore := serialization.NewConstantStoreWithConstants(constants, false)
	root, err := ReadExpr(serialization.NewReader(rootBytes), readStore)
	if err != nil {
		return &ErgoTree{header: header, rawBody: body, parseErr: err}, nil
	}

	return &ErgoTree{header: header, constants: constants, root: root, rootBytes: rootBytes}, nil
}

// Bytes serializes the full container: header, optional size, optional
// constants vector, root expression bytes.
func (t *ErgoTree) Bytes() []byte {
	w := serialization.NewWriter()
	w.PutU8(t.header)

	var body []byte
	if t.parseErr != nil {
		body = t.rawBody
	} else {
		bw := serialization.NewWriter()
		if t.header&headerHasSegregation != 0 {
			serialization.WriteConstants(bw, t.constants)
		}
		bw.PutBytes(t.rootBytes)
		body = bw.Bytes()
	}

	if t.header&headerHasSize != 0 {
		w.PutVLQUint32(uint32(len(body)))
	}
	w.PutBytes(body)
	return w.Bytes()
}

// Version returns the 3-bit language version carried in the header.
func (t *ErgoTree) Version() byte { return t.header & headerVersionMask }

// HasSize reports whether the container carries a size prefix.
func (t *ErgoTree) HasSize() bool { return t.header&headerHasSize != 0 }

// HasSegregation reports whether the tree's constants were segregated.
func (t *ErgoTree) HasSegregation() bool { return t.header&headerHasSegregation != 0 }

// ParseErr returns the preserved parse failure for an opaque tree, or nil
// for a tree whose root was successfully parsed.
func (t *ErgoTree) ParseErr() error { return t.parseErr }

// Proposition resolves every ConstantPlaceholder in the tree's root
// against its Constants vector, returning the fully concrete expression
// (spec §5's "proposition"). A tree preserved as opaque returns its
// original parse error unchanged.
func (t *ErgoTree) Proposition() (ast.Expr, error) {
	if t.parseErr != nil {
		return nil, t.parseErr
	}
	if t.header&headerHasSegregation == 0 {
		return t.root, nil
	}
	store := serialization.NewConstantStoreWithConstants(t.constants, true)
	return ReadExpr(serialization.NewReader(t.rootBytes), store)
}

// TemplateBytes returns the serialized bytes of the root expression with
// placeholders left unresolved, the basis for template matching a
// compiled script against a family of specialized instances.
func (t *ErgoTree) TemplateBytes() ([]byte, error) {
	if t.parseErr != nil {
		return nil, t.parseErr
	}
	return append([]byte{}, t.rootBytes...), nil
}

// Constants returns the tree's segregated constants vector (empty if the
// tree was not segregated).
func (t *ErgoTree) Constants() []sigmatype.Value {
	out := make([]sigmatype.Value, len(t.constants))
	copy(out, t.constants)
	return out
}

// GetConstant returns the constant at index, failing if index is out of
// range.
func (t *ErgoTree) GetConstant(index int) (sigmatype.Value, error) {
	if index < 0 || index >= len(t.constants) {
		return sigmatype.Value{}, newErr(ErrConstantIndex, "index %d out of range [0,%d)", index, len(t.constants))
	}
	return t.constants[index], nil
}

// SetConstant replaces the constant at index in place, letting a caller
// specialize a compiled template without recompiling it. Replacement is by
// position only: there is no check that v matches the original constant's
// type, mirroring the real protocol's permissive substitution.
func (t *ErgoTree) SetConstant(index int, v sigmatype.Value) error {
	if index < 0 || index >= len(t.constants) {
		return newErr(ErrConstantIndex, "index %d out of range [0,%d)", index, len(t.constants))
	}
	t.constants[index] = v
	return nil
}
