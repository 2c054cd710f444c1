package history

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// GitClient implements Source by executing the local git binary.
type GitClient struct {
	Repo string
	// Timeout bounds each git invocation. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration
}

var _ Source = (*GitClient)(nil) // Compile-time check

// NewGitClient returns a client for the repository containing repo.
func NewGitClient(repo string, timeout time.Duration) *GitClient {
	return &GitClient{Repo: repo, Timeout: timeout}
}

// Run executes a git command against the repository and returns stdout.
func (c *GitClient) Run(ctx context.Context, args ...string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	fullArgs := append([]string{"-C", c.Repo}, args...)
	out, err := exec.CommandContext(ctx, "git", fullArgs...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
	} else if err != nil {
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return out, nil
}

// Available implements Source.
func (c *GitClient) Available(ctx context.Context) bool {
	out, err := c.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// Log implements Source.
func (c *GitClient) Log(ctx context.Context, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	out, err := c.Run(ctx, "log", "--format=%H%x00%an%x00%aI%x00%s", "--name-only", "-n", strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	return ParseLog(string(out)), nil
}

// Numstat implements Source.
func (c *GitClient) Numstat(ctx context.Context, limit int) (Numstat, error) {
	if limit <= 0 {
		limit = DefaultNumstatLimit
	}
	out, err := c.Run(ctx, "log", "--numstat", "--format=%H%x00%an%x00%aI", "-n", strconv.Itoa(limit))
	if err != nil {
		return Numstat{}, err
	}
	return ParseNumstat(string(out)), nil
}
