package sigma

import (
	"ergotree.dev/sigmachain/crypto"
	"ergotree.dev/sigmachain/ecc"
)

// SoundnessBytes is the fixed width of every challenge in the proof
// (spec §4.G "fixed-width byte strings of SOUNDNESS_BYTES").
const SoundnessBytes = 32

// Challenge is a fixed-width Fiat-Shamir challenge.
type Challenge [SoundnessBytes]byte

func xorChallenge(a, b Challenge) Challenge {
	var out Challenge
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func xorAll(cs []Challenge) Challenge {
	var out Challenge
	for _, c := range cs {
		out = xorChallenge(out, c)
	}
	return out
}

func (c Challenge) scalar() ecc.Scalar { return ecc.ScalarFromBytes(c[:]) }

func scalarToChallenge(s ecc.Scalar) Challenge {
	var out Challenge
	copy(out[SoundnessBytes-len(s.Bytes()):], s.Bytes())
	return out
}

var hasher = crypto.Blake2bProvider{}

// fiatShamirChallenge derives the root challenge from the proof skeleton
// bytes and the signed message (spec's "H(fs_bytes || message)").
func fiatShamirChallenge(fsBytes, message []byte) Challenge {
	buf := make([]byte, 0, len(fsBytes)+len(message))
	buf = append(buf, fsBytes...)
	buf = append(buf, message...)
	digest := hasher.Blake2b256(buf)
	var out Challenge
	copy(out[:], digest[:SoundnessBytes])
	return out
}
