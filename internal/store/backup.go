package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

const backupVersion = 1

// Backup is the export format: every present slot, verbatim.
type Backup struct {
	Version     int                        `json:"version"`
	WorkspaceID string                     `json:"workspaceId,omitempty"`
	ExportedAt  time.Time                  `json:"exportedAt"`
	Slots       map[string]json.RawMessage `json:"slots"`
}

// Export writes every present slot of m to w as one JSON document.
func Export(ctx context.Context, m Medium, workspaceID string, w io.Writer) error {
	b := Backup{
		Version:     backupVersion,
		WorkspaceID: workspaceID,
		ExportedAt:  time.Now().UTC(),
		Slots:       map[string]json.RawMessage{},
	}
	for _, k := range SlotKeys {
		raw, ok, err := m.Get(ctx, k)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if !json.Valid([]byte(raw)) {
			return fmt.Errorf("export: slot %s holds invalid JSON", k)
		}
		b.Slots[k] = json.RawMessage(raw)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// Import replaces every slot of m with the backup read from r.
// Slots absent from the backup are deleted. Unknown keys are rejected.
func Import(ctx context.Context, m Medium, r io.Reader) (Backup, error) {
	var b Backup
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return Backup{}, fmt.Errorf("import: %w", err)
	}
	if b.Version != backupVersion {
		return Backup{}, fmt.Errorf("import: unsupported backup version %d", b.Version)
	}
	sets := map[string]*string{}
	for k, raw := range b.Slots {
		if !IsSlotKey(k) {
			return Backup{}, fmt.Errorf("import: unknown slot %q", k)
		}
		if !json.Valid(raw) {
			return Backup{}, fmt.Errorf("import: slot %s holds invalid JSON", k)
		}
		v := string(raw)
		sets[k] = &v
	}
	for _, k := range SlotKeys {
		if _, ok := sets[k]; !ok {
			sets[k] = nil
		}
	}
	if err := applyAll(ctx, m, sets); err != nil {
		return Backup{}, err
	}
	return b, nil
}
