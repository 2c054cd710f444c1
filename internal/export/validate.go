package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/dontreadme/internal/pipeline"
)

// FileResult holds the problems found in one file of the output directory.
type FileResult struct {
	Path   string
	Errors []string
}

// Valid reports whether no problems were found.
func (r FileResult) Valid() bool { return len(r.Errors) == 0 }

// Validate checks the manifest and every known artifact in dir: the file
// exists, decodes strictly into its typed shape, and hashes to the value
// recorded in the manifest. The manifest result comes first. A missing
// manifest returns ErrNoManifest.
func Validate(dir string) ([]FileResult, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoManifest)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	mres := FileResult{Path: ManifestFile}
	var m *Manifest
	var parsed Manifest
	if err := decodeInto(raw, &parsed); err != nil {
		mres.Errors = append(mres.Errors, fmt.Sprintf("schema: %v", err))
	} else {
		m = &parsed
		if m.Version != ManifestVersion {
			mres.Errors = append(mres.Errors, fmt.Sprintf("unsupported version %q", m.Version))
		}
		for _, e := range m.Artifacts {
			if _, ok := Lookup(pipeline.Analysis(e.Name)); !ok {
				mres.Errors = append(mres.Errors, fmt.Sprintf("unknown artifact %q", e.Name))
			}
		}
	}
	results := []FileResult{mres}

	for _, a := range Artifacts {
		r := FileResult{Path: a.Path}
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(a.Path)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				r.Errors = append(r.Errors, "missing")
			} else {
				r.Errors = append(r.Errors, err.Error())
			}
			results = append(results, r)
			continue
		}
		if err := decodeStrict(a, data); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("schema: %v", err))
		}
		if m != nil {
			entry, ok := m.Entry(string(a.Name))
			switch {
			case !ok:
				r.Errors = append(r.Errors, "not listed in manifest")
			case entry.Hash != Hash(data):
				r.Errors = append(r.Errors, fmt.Sprintf("hash %s does not match manifest %s", Hash(data), entry.Hash))
			}
		}
		results = append(results, r)
	}
	return results, nil
}
