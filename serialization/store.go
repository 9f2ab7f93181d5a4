package serialization

import "ergotree.dev/sigmachain/sigmatype"

// ConstantStore threads constant-segregation state through a single
// read or write pass over an ErgoTree (spec §5 "constant segregation").
// On write it accumulates the Constants vector and hands back the index
// each hoisted literal was given, so the caller can emit a
// ConstantPlaceholder in the literal's place. On read it is pre-populated
// from the tree's Constants vector and answers placeholder lookups.
//
// A single ConstantStore must not be reused across trees: the index
// space is local to one serialization pass, mirroring the teacher's
// per-call cursor rather than a long-lived shared cache.
type ConstantStore struct {
	constants []sigmatype.Value
	// substitute controls whether the reader is expected to resolve
	// ConstantPlaceholder nodes to their values (true) or return a
	// placeholder reference for the caller to resolve later (false).
	// ErgoTree template matching depends on leaving placeholders alone.
	substitute bool
}

// NewConstantStore returns an empty store for a write pass, or a read pass
// with substitution enabled.
func NewConstantStore() *ConstantStore {
	return &ConstantStore{substitute: true}
}

// NewConstantStoreWithConstants returns a store pre-populated from an
// already-parsed Constants vector, for a read pass. substitute selects
// whether ConstantPlaceholder nodes resolve inline (true, the common case)
// or are left as placeholders (false, template-matching mode).
func NewConstantStoreWithConstants(constants []sigmatype.Value, substitute bool) *ConstantStore {
	cp := make([]sigmatype.Value, len(constants))
	copy(cp, constants)
	return &ConstantStore{constants: cp, substitute: substitute}
}

// Put appends v to the store and returns the index it was assigned, used
// while writing an expression tree to segregate a literal into the
// Constants vector and leave a ConstantPlaceholder(index) behind.
func (s *ConstantStore) Put(v sigmatype.Value) uint32 {
	s.constants = append(s.constants, v)
	return uint32(len(s.constants) - 1)
}

// Get resolves a placeholder index to its value.
func (s *ConstantStore) Get(index uint32) (sigmatype.Value, error) {
	if int(index) >= len(s.constants) {
		return sigmatype.Value{}, serr(ErrValueOutOfBounds,
			"constant placeholder index %d out of range [0,%d)", index, len(s.constants))
	}
	return s.constants[index], nil
}

// Substitute reports whether ConstantPlaceholder nodes should be resolved
// to their value inline while reading.
func (s *ConstantStore) Substitute() bool { return s.substitute }

// Constants returns the accumulated Constants vector, in insertion order.
func (s *ConstantStore) Constants() []sigmatype.Value {
	out := make([]sigmatype.Value, len(s.constants))
	copy(out, s.constants)
	return out
}

// Len reports how many constants are currently held.
func (s *ConstantStore) Len() int { return len(s.constants) }

// WriteConstants serializes the full Constants vector: a VLQ count
// followed by each constant in order (spec §6 ErgoTree header layout).
func WriteConstants(w *Writer, constants []sigmatype.Value) error {
	w.PutVLQUint32(uint32(len(constants)))
	for _, c := range constants {
		if err := WriteConstant(w, c); err != nil {
			return err
		}
	}
	return nil
}

// ReadConstants parses a Constants vector written by WriteConstants.
func ReadConstants(r *Reader) ([]sigmatype.Value, error) {
	n, err := r.GetVLQUint32()
	if err != nil {
		return nil, err
	}
	out := make([]sigmatype.Value, n)
	for i := range out {
		v, err := ReadConstant(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
