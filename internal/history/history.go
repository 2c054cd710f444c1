// Package history mines a repository's commit log for clustered decisions
// and per-file change hotspots.
package history

import (
	"context"
	"math"
	"time"
)

// Default limits for the two git views.
const (
	DefaultLogLimit     = 500
	DefaultNumstatLimit = 1000
)

// Commit is one entry of the commit log.
type Commit struct {
	Hash    string
	Author  string
	Date    string    // ISO 8601 as reported by git
	When    time.Time // Date, parsed
	Message string
	Files   []string
}

// FileChurn is the change tally of one path across the numstat view.
type FileChurn struct {
	Changes      int
	Authors      []string // distinct, in first-seen order
	LastModified string   // raw date of the most recent change
	LastTime     time.Time
}

// Numstat is the per-file churn view of recent history.
type Numstat struct {
	Files   map[string]*FileChurn
	Commits int
}

// Source provides commit history for a project.
type Source interface {
	// Available reports whether history can be read at all.
	Available(ctx context.Context) bool
	// Log returns up to limit commits, newest first.
	Log(ctx context.Context, limit int) ([]Commit, error)
	// Numstat returns per-file churn over up to limit commits.
	Numstat(ctx context.Context, limit int) (Numstat, error)
}

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
