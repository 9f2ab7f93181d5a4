// Package crypto collects the hash-function collaborators ErgoTree
// evaluation and serialization depend on, behind a narrow provider
// interface in the same shape as the teacher node's CryptoProvider: a small
// capability interface rather than a hard-coded function, so tests can
// substitute a provider and production code always goes through one
// injected implementation.
package crypto

import "golang.org/x/crypto/blake2b"

// HashProvider is the narrow hashing interface consensus-critical code
// depends on. Box ids, the Fiat-Shamir transform and AvlTree node digests
// all go through it.
type HashProvider interface {
	Blake2b256(input []byte) [32]byte
	Sha256(input []byte) [32]byte
}

// Blake2bProvider is the production HashProvider, backed by
// golang.org/x/crypto/blake2b and the standard library's sha256.
type Blake2bProvider struct{}

// Blake2b256 returns the blake2b-256 digest of input.
func (Blake2bProvider) Blake2b256(input []byte) [32]byte {
	return blake2b.Sum256(input)
}

// Sha256 returns the sha256 digest of input, used by the CalcSha256 MIR
// node (distinct from the blake2b-256 used for box ids and Fiat-Shamir).
func (Blake2bProvider) Sha256(input []byte) [32]byte {
	return sha256Sum(input)
}
