package layout

import (
	"bytes"
	"fmt"
	"os"

	"github.com/patrickprogramme/dubsync/internal/fsutil"
	"github.com/patrickprogramme/dubsync/pkg/model"
	"gopkg.in/yaml.v3"
)

// WriteManifest sérialise le ClipSet en YAML dans clips.yaml (écriture atomique).
func (l Layout) WriteManifest(cs model.ClipSet) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cs); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := fsutil.WriteFileAtomic(l.Manifest(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", l.Manifest(), err)
	}
	return nil
}

// ReadManifest relit clips.yaml et vérifie que les index sont contigus et que
// les intervalles s'enchaînent sans trou ni chevauchement.
func (l Layout) ReadManifest() (model.ClipSet, error) {
	var cs model.ClipSet
	data, err := os.ReadFile(l.Manifest())
	if err != nil {
		return cs, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &cs); err != nil {
		return cs, fmt.Errorf("parse manifest %s: %w", l.Manifest(), err)
	}
	var prevEnd model.Millis
	for i, c := range cs.Clips {
		if c.Index != i {
			return cs, fmt.Errorf("%w: manifest clip %d has index %d", model.ErrInvalidSegmentOrder, i, c.Index)
		}
		if c.Start != prevEnd || c.End <= c.Start {
			return cs, fmt.Errorf("%w: manifest clip %d spans [%d, %d) after %d", model.ErrInvalidSegmentOrder, i, c.Start, c.End, prevEnd)
		}
		prevEnd = c.End
	}
	return cs, nil
}
