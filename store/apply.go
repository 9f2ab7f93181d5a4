package store

import (
	"fmt"

	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigmatype"
)

// ApplyHeight spends the boxes in spent and stores the boxes in created,
// recording an UndoRecord under height so RollbackHeight can reverse
// exactly this call. Every box deletion, box write and the undo record is
// its own bbolt transaction, so the call as a whole is not atomic: an error
// partway leaves the writes already made in place. A missing spent box is
// detected before anything is written. spent box ids that are not
// currently present are an error: the caller is expected to have validated
// the owning transaction (chain.TransactionContext.Validate) before
// applying it here.
func (d *DB) ApplyHeight(height uint32, spent []primitive.BoxId, created []sigmatype.Box) error {
	restored := make([]sigmatype.Box, 0, len(spent))
	for _, id := range spent {
		b, ok, err := d.GetBox(id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("store: apply height %d: box %s not found", height, id)
		}
		restored = append(restored, b)
	}

	for _, id := range spent {
		if err := d.DeleteBox(id); err != nil {
			return err
		}
	}
	createdIds := make([]primitive.BoxId, 0, len(created))
	for _, b := range created {
		if err := d.PutBox(b); err != nil {
			return err
		}
		createdIds = append(createdIds, b.Id)
	}

	return d.PutUndo(height, UndoRecord{Restored: restored, Created: createdIds})
}

// RollbackHeight reverses the ApplyHeight call recorded for height: every
// box it created is deleted, every box it spent is restored, and the undo
// record itself is removed.
func (d *DB) RollbackHeight(height uint32) error {
	u, ok, err := d.GetUndo(height)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("store: no undo record at height %d", height)
	}
	for _, id := range u.Created {
		if err := d.DeleteBox(id); err != nil {
			return err
		}
	}
	for _, b := range u.Restored {
		if err := d.PutBox(b); err != nil {
			return err
		}
	}
	return d.deleteUndo(height)
}
