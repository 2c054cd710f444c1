package export

import (
	"fmt"

	"github.com/dusk-indust/dontreadme/internal/pipeline"
)

// Change classifies an artifact against the manifest.
type Change string

const (
	ChangeNew       Change = "new"
	ChangeChanged   Change = "changed"
	ChangeUnchanged Change = "unchanged"
)

// DiffEntry is the comparison result for one artifact.
type DiffEntry struct {
	Artifact Artifact
	Change   Change
	OldHash  string
	NewHash  string
}

// Diff hashes the selected artifacts of res and compares them with m. A nil
// manifest marks everything new. Nothing is written.
func Diff(m *Manifest, res *pipeline.Results) ([]DiffEntry, error) {
	selected := res.Selected
	if len(selected) == 0 {
		selected = pipeline.Analyses
	}
	out := make([]DiffEntry, 0, len(selected))
	for _, name := range selected {
		a, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown artifact %q", name)
		}
		data, err := Encode(res.Artifact(name))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		d := DiffEntry{Artifact: a, NewHash: Hash(data), Change: ChangeNew}
		if old, ok := m.Entry(string(name)); ok {
			d.OldHash = old.Hash
			d.Change = ChangeChanged
			if old.Hash == d.NewHash {
				d.Change = ChangeUnchanged
			}
		}
		out = append(out, d)
	}
	return out, nil
}
