package pipeline

import (
	"fmt"
	"time"
)

// ProgressEvent is emitted to the caller as analyses start and finish.
type ProgressEvent struct {
	Stage    Stage
	Analysis Analysis
	Status   ProgressStatus
	Message  string
	Elapsed  time.Duration // set on complete and failed
}

// ProgressStatus is the state of one analysis within a run.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
	ProgressSkipped  ProgressStatus = "skipped"
)

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Analysis)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Analysis)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete (%s)", event.Analysis, event.Elapsed.Round(time.Millisecond))
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Analysis, event.Message)
	case ProgressSkipped:
		return fmt.Sprintf("  - %s skipped: %s", event.Analysis, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Analysis)
	}
}

// FormatStageHeader formats a stage header for display.
// Returns: "[{root}] Stage {N}: {stage.String()}"
func FormatStageHeader(root string, stage Stage) string {
	return fmt.Sprintf("[%s] Stage %d: %s", root, int(stage), stage.String())
}
