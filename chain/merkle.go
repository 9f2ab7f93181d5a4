package chain

import (
	"ergotree.dev/sigmachain/crypto"
	"ergotree.dev/sigmachain/primitive"
)

var merkleHasher crypto.HashProvider = crypto.Blake2bProvider{}

const (
	merkleLeafTag byte = 0x00
	merkleNodeTag byte = 0x01
)

// TransactionsRoot computes the domain-separated Merkle root over a
// block's transaction ids, in the order the transactions are ordered. The
// result is the value a sigmatype.Header's TransactionsRoot field carries.
//
// Leaf and interior node hashes are tagged (merkleLeafTag/merkleNodeTag
// prefix bytes)
// so a leaf digest can never be replayed as an interior node digest or
// vice versa. An odd node at a level is promoted unchanged rather than
// duplicated, so a single added transaction cannot silently produce the
// same root as a duplicated one.
func TransactionsRoot(txids []primitive.TxId) (primitive.Digest32, error) {
	if len(txids) == 0 {
		return primitive.Digest32{}, chainerr(ErrInvalidArgs, "merkle: empty transaction id list")
	}

	level := make([]primitive.Digest32, len(txids))
	var leafPreimage [1 + primitive.Digest32Size]byte
	leafPreimage[0] = merkleLeafTag
	for i, id := range txids {
		copy(leafPreimage[1:], id.Bytes())
		level[i] = merkleHasher.Blake2b256(leafPreimage[:])
	}

	var nodePreimage [1 + 2*primitive.Digest32Size]byte
	nodePreimage[0] = merkleNodeTag
	for len(level) > 1 {
		next := make([]primitive.Digest32, 0, (len(level)+1)/2)
		for i := 0; i < len(level); {
			if i == len(level)-1 {
				next = append(next, level[i])
				i++
				continue
			}
			copy(nodePreimage[1:1+primitive.Digest32Size], level[i][:])
			copy(nodePreimage[1+primitive.Digest32Size:], level[i+1][:])
			next = append(next, merkleHasher.Blake2b256(nodePreimage[:]))
			i += 2
		}
		level = next
	}
	return level[0], nil
}
