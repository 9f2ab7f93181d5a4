package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SchemaVersionV1 is the only manifest schema version this package writes.
const SchemaVersionV1 uint32 = 1

// Manifest is the store's small crash-safe commit point: everything needed
// to resume at the current chain tip without replaying the whole box set.
type Manifest struct {
	SchemaVersion uint32 `json:"schema_version"`

	TipHeight      uint32 `json:"tip_height"`
	TipTxIdHex     string `json:"tip_tx_id"`
	BoxCount       uint64 `json:"box_count"`
	TemplateCount  uint64 `json:"template_count"`
}

func manifestPath(datadir string) string {
	return filepath.Join(datadir, "MANIFEST.json")
}

func readManifest(datadir string) (*Manifest, error) {
	b, err := os.ReadFile(manifestPath(datadir))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("store: manifest json: %w", err)
	}
	return &m, nil
}

// writeManifestAtomic writes MANIFEST.json as a crash-safe commit point:
// write temp -> fsync temp -> rename -> fsync dir.
func writeManifestAtomic(datadir string, m *Manifest) error {
	if m == nil {
		return fmt.Errorf("store: nil manifest")
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("store: manifest json: %w", err)
	}
	b = append(b, '\n')

	final := manifestPath(datadir)
	tmp := final + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("store: manifest open tmp: %w", err)
	}
	_, werr := f.Write(b)
	serr := f.Sync()
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("store: manifest write tmp: %w", werr)
	}
	if serr != nil {
		return fmt.Errorf("store: manifest fsync tmp: %w", serr)
	}
	if cerr != nil {
		return fmt.Errorf("store: manifest close tmp: %w", cerr)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("store: manifest rename: %w", err)
	}

	d, err := os.Open(datadir)
	if err != nil {
		return fmt.Errorf("store: manifest fsync dir open: %w", err)
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return fmt.Errorf("store: manifest fsync dir: %w", err)
	}
	if err := d.Close(); err != nil {
		return fmt.Errorf("store: manifest fsync dir close: %w", err)
	}
	return nil
}
