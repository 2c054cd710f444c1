// Package status reports which artifacts exist in an output directory and
// whether they still match the manifest.
package status

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
)

// State is the on-disk condition of one artifact.
type State string

const (
	StatePresent   State = "present"   // on disk and matching the manifest
	StateMissing   State = "missing"   // not on disk
	StateStale     State = "stale"     // on disk, hash differs from the manifest
	StateUntracked State = "untracked" // on disk, not listed in the manifest
)

// ArtifactStatus describes one artifact.
type ArtifactStatus struct {
	Name        pipeline.Analysis
	Path        string
	State       State
	GeneratedAt string // from the manifest, empty when untracked
}

// Report is the status of a whole output directory.
type Report struct {
	Dir         string
	HasManifest bool
	GeneratedAt string
	Artifacts   []ArtifactStatus
}

// Current reports whether every artifact is present and matches the
// manifest.
func (r *Report) Current() bool {
	if !r.HasManifest {
		return false
	}
	for _, a := range r.Artifacts {
		if a.State != StatePresent {
			return false
		}
	}
	return true
}

// Check inspects dir. A missing manifest is not an error: the report then
// has HasManifest false and every existing artifact is untracked.
func Check(dir string) (*Report, error) {
	r := &Report{Dir: dir}

	m, err := export.LoadManifest(dir)
	switch {
	case err == nil:
		r.HasManifest = true
		r.GeneratedAt = m.GeneratedAt
	case errors.Is(err, export.ErrNoManifest):
		m = nil
	default:
		return nil, err
	}

	for _, a := range export.Artifacts {
		st := ArtifactStatus{Name: a.Name, Path: a.Path}
		entry, listed := m.Entry(string(a.Name))
		if listed {
			st.GeneratedAt = entry.GeneratedAt
		}

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(a.Path)))
		switch {
		case err != nil:
			st.State = StateMissing
		case !listed:
			st.State = StateUntracked
		case export.Hash(data) != entry.Hash:
			st.State = StateStale
		default:
			st.State = StatePresent
		}
		r.Artifacts = append(r.Artifacts, st)
	}
	return r, nil
}
