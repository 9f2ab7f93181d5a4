// Package store is the persistent box/UTXO layer: a bbolt-backed key-value
// store keyed by box id, a content-addressed script-template index, and a
// height-indexed undo log that lets a chain reorganization unwind exactly
// the boxes a given height created or spent. It is the on-disk counterpart
// of package chain's in-memory TransactionContext/Validate.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

var (
	bucketBoxes     = []byte("boxes_by_id")
	bucketTemplates = []byte("templates_by_hash")
	bucketUndo      = []byte("undo_by_height")
)

// DB is a handle on one chain's persistent state: its current box set, its
// template index, and its undo log.
type DB struct {
	dir      string
	db       *bolt.DB
	manifest *Manifest
}

// Open opens (creating if necessary) the bbolt store rooted at datadir.
func Open(datadir string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("store: datadir required")
	}
	if err := ensureDir(datadir); err != nil {
		return nil, err
	}

	path := filepath.Join(datadir, "boxes.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}

	d := &DB{dir: datadir, db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBoxes, bucketTemplates, bucketUndo} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("store: create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	m, err := readManifest(datadir)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil // fresh store; caller sets a manifest once genesis is known.
		}
		_ = bdb.Close()
		return nil, fmt.Errorf("store: read manifest: %w", err)
	}
	if m.SchemaVersion > SchemaVersionV1 {
		_ = bdb.Close()
		return nil, fmt.Errorf("store: manifest schema_version %d > supported %d", m.SchemaVersion, SchemaVersionV1)
	}
	d.manifest = m
	return d, nil
}

// Close releases the underlying bbolt handle.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Dir returns the datadir this store was opened against.
func (d *DB) Dir() string { return d.dir }

// Manifest returns the last-committed manifest, or nil if none has been set.
func (d *DB) Manifest() *Manifest {
	if d == nil {
		return nil
	}
	return d.manifest
}

// SetManifest persists m atomically and makes it the store's current one.
func (d *DB) SetManifest(m *Manifest) error {
	if d == nil {
		return fmt.Errorf("store: nil db")
	}
	if err := writeManifestAtomic(d.dir, m); err != nil {
		return err
	}
	d.manifest = m
	return nil
}

// PutBox stores b under its own id, overwriting any existing entry.
func (d *DB) PutBox(b sigmatype.Box) error {
	val, err := encodeBox(b)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBoxes).Put(b.Id.Bytes(), val)
	})
}

// GetBox looks up a box by id.
func (d *DB) GetBox(id primitive.BoxId) (sigmatype.Box, bool, error) {
	var out sigmatype.Box
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBoxes).Get(id.Bytes())
		if v == nil {
			return nil
		}
		b, err := decodeBox(v)
		if err != nil {
			return err
		}
		out, ok = b, true
		return nil
	})
	return out, ok, err
}

// DeleteBox removes a box by id. It is not an error to delete a box that is
// not present.
func (d *DB) DeleteBox(id primitive.BoxId) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBoxes).Delete(id.Bytes())
	})
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", path, err)
	}
	return nil
}
