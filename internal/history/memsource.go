package history

import "context"

// MemSource is a Source over canned git output. It runs the same parsers as
// GitClient, which makes it suitable for tests and for replaying captured
// history.
type MemSource struct {
	LogOutput     string
	NumstatOutput string
	Unavailable   bool
}

var _ Source = MemSource{}

// Available implements Source.
func (m MemSource) Available(context.Context) bool { return !m.Unavailable }

// Log implements Source. The limit applies to parsed commits.
func (m MemSource) Log(_ context.Context, limit int) ([]Commit, error) {
	commits := ParseLog(m.LogOutput)
	if limit > 0 && len(commits) > limit {
		commits = commits[:limit]
	}
	return commits, nil
}

// Numstat implements Source. The limit is ignored.
func (m MemSource) Numstat(context.Context, int) (Numstat, error) {
	return ParseNumstat(m.NumstatOutput), nil
}
