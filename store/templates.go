package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"ergotree.dev/sigmachain/crypto"
	"ergotree.dev/sigmachain/ergotree"
	"ergotree.dev/sigmachain/primitive"
)

var templateHasher crypto.HashProvider = crypto.Blake2bProvider{}

// TemplateHash content-addresses an ErgoTree by its template bytes (the
// placeholder-bearing root with constants segregated out): two scripts that
// differ only in constant values share one template hash, which is the
// basis for a template-keyed script index rather than a full-bytes index.
func TemplateHash(tree *ergotree.ErgoTree) (primitive.Digest32, error) {
	tmplBytes, err := tree.TemplateBytes()
	if err != nil {
		return primitive.Digest32{}, fmt.Errorf("store: template_bytes: %w", err)
	}
	digest := templateHasher.Blake2b256(tmplBytes)
	return primitive.NewDigest32(digest[:])
}

// PutTemplate indexes the full ErgoTree bytes for a tree under its template
// hash, so every box sharing that template can be looked up by a single key
// regardless of which constants it was instantiated with.
func (d *DB) PutTemplate(hash primitive.Digest32, ergoTreeBytes []byte) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTemplates).Put(hash.Bytes(), ergoTreeBytes)
	})
}

// GetTemplate retrieves the full ErgoTree bytes stored under hash, if any.
func (d *DB) GetTemplate(hash primitive.Digest32) ([]byte, bool, error) {
	var out []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketTemplates).Get(hash.Bytes())
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}
