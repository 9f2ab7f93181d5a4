package avltree

import "fmt"

// EncodeProof serializes a KeyProof's OldValue and Steps into the bytes a
// script carries as its TreeLookup proof argument (the key itself travels
// as TreeLookup's separate key operand, so it is not repeated here). This
// is this package's own wire shape, the same simplification the rest of
// avltree documents: a presence flag and length-prefixed OldValue followed
// by a count and one (side, hash) pair per step.
func EncodeProof(kp KeyProof) []byte {
	buf := make([]byte, 0, 1+len(kp.OldValue)+1+len(kp.Steps)*33)
	if kp.OldValue == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1, byte(len(kp.OldValue)))
		buf = append(buf, kp.OldValue...)
	}
	buf = append(buf, byte(len(kp.Steps)))
	for _, s := range kp.Steps {
		side := byte(0)
		if s.SiblingOnRight {
			side = 1
		}
		buf = append(buf, side)
		buf = append(buf, s.SiblingHash[:]...)
	}
	return buf
}

// DecodeProof parses bytes written by EncodeProof back into a KeyProof for
// key.
func DecodeProof(key []byte, data []byte) (KeyProof, error) {
	if len(data) < 1 {
		return KeyProof{}, fmt.Errorf("avltree: truncated proof")
	}
	pos := 0
	present := data[pos]
	pos++
	var oldValue []byte
	if present == 1 {
		if pos >= len(data) {
			return KeyProof{}, fmt.Errorf("avltree: truncated proof old value length")
		}
		n := int(data[pos])
		pos++
		if pos+n > len(data) {
			return KeyProof{}, fmt.Errorf("avltree: truncated proof old value")
		}
		oldValue = append([]byte{}, data[pos:pos+n]...)
		pos += n
	}
	if pos >= len(data) {
		return KeyProof{}, fmt.Errorf("avltree: truncated proof step count")
	}
	count := int(data[pos])
	pos++
	steps := make([]Step, count)
	for i := 0; i < count; i++ {
		if pos+33 > len(data) {
			return KeyProof{}, fmt.Errorf("avltree: truncated proof step %d", i)
		}
		side := data[pos] == 1
		pos++
		var h [32]byte
		copy(h[:], data[pos:pos+32])
		pos += 32
		steps[i] = Step{SiblingOnRight: side, SiblingHash: h}
	}
	return KeyProof{Key: append([]byte{}, key...), OldValue: oldValue, Steps: steps}, nil
}
