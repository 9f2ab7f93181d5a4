package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/serialization"
	"ergotree.dev/sigmachain/sigmatype"
)

// UndoRecord is everything ApplyHeight needs to know to reverse itself:
// the boxes it deleted (restored verbatim) and the ids of the boxes it
// created (deleted on rollback).
type UndoRecord struct {
	Restored []sigmatype.Box
	Created  []primitive.BoxId
}

func heightKey(height uint32) []byte {
	w := serialization.NewWriter()
	w.PutVLQUint32(height)
	return w.Bytes()
}

func encodeUndoRecord(u UndoRecord) ([]byte, error) {
	w := serialization.NewWriter()
	if len(u.Restored) > 0xff {
		return nil, fmt.Errorf("store: undo record has %d restored boxes, max 255", len(u.Restored))
	}
	w.PutU8(byte(len(u.Restored)))
	for _, b := range u.Restored {
		enc, err := encodeBox(b)
		if err != nil {
			return nil, err
		}
		w.PutVLQUint32(uint32(len(enc)))
		w.PutBytes(enc)
	}
	if len(u.Created) > 0xffff {
		return nil, fmt.Errorf("store: undo record has %d created boxes, max 65535", len(u.Created))
	}
	w.PutVLQUint32(uint32(len(u.Created)))
	for _, id := range u.Created {
		w.PutBytes(id.Bytes())
	}
	return w.Bytes(), nil
}

func decodeUndoRecord(raw []byte) (*UndoRecord, error) {
	r := serialization.NewReader(raw)
	restoredCount, err := r.GetU8()
	if err != nil {
		return nil, fmt.Errorf("store: undo restored_count: %w", err)
	}
	restored := make([]sigmatype.Box, 0, restoredCount)
	for i := byte(0); i < restoredCount; i++ {
		n, err := r.GetVLQUint32()
		if err != nil {
			return nil, fmt.Errorf("store: undo restored %d len: %w", i, err)
		}
		enc, err := r.GetBytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("store: undo restored %d bytes: %w", i, err)
		}
		b, err := decodeBox(enc)
		if err != nil {
			return nil, fmt.Errorf("store: undo restored %d: %w", i, err)
		}
		restored = append(restored, b)
	}

	createdCount, err := r.GetVLQUint32()
	if err != nil {
		return nil, fmt.Errorf("store: undo created_count: %w", err)
	}
	created := make([]primitive.BoxId, 0, createdCount)
	for i := uint32(0); i < createdCount; i++ {
		idBytes, err := r.GetBytes(primitive.Digest32Size)
		if err != nil {
			return nil, fmt.Errorf("store: undo created %d: %w", i, err)
		}
		d, err := primitive.NewDigest32(idBytes)
		if err != nil {
			return nil, err
		}
		created = append(created, primitive.BoxId(d))
	}
	return &UndoRecord{Restored: restored, Created: created}, nil
}

// PutUndo stores the undo record for height, overwriting any prior one.
func (d *DB) PutUndo(height uint32, u UndoRecord) error {
	val, err := encodeUndoRecord(u)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUndo).Put(heightKey(height), val)
	})
}

// GetUndo retrieves the undo record stored for height, if any.
func (d *DB) GetUndo(height uint32) (*UndoRecord, bool, error) {
	var out *UndoRecord
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketUndo).Get(heightKey(height))
		if v == nil {
			return nil
		}
		u, err := decodeUndoRecord(v)
		if err != nil {
			return err
		}
		out = u
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

func (d *DB) deleteUndo(height uint32) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUndo).Delete(heightKey(height))
	})
}
