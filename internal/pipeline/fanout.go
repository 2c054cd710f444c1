package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// errSkipped is returned by a task that chose not to run.
type errSkipped struct{ reason string }

func (e *errSkipped) Error() string { return e.reason }

func skip(reason string) error { return &errSkipped{reason: reason} }

// task is one analysis of a stage. run writes its own result slot and
// reports an error only when the analysis produced nothing usable.
type task struct {
	analysis Analysis
	run      func(ctx context.Context) error
}

// fanOut runs the tasks of a stage in parallel, emitting progress for each.
// A task that fails or skips leaves its empty default in place and does not
// cancel its siblings.
type fanOut struct {
	onProgress func(ProgressEvent)
}

// Run dispatches every task and waits for all of them. It returns the
// analyses that completed.
func (f *fanOut) Run(ctx context.Context, stage Stage, tasks []task) map[Analysis]bool {
	done := make([]bool, len(tasks))
	g, gctx := errgroup.WithContext(ctx)

	for _, t := range tasks {
		f.emit(ProgressEvent{Stage: stage, Analysis: t.analysis, Status: ProgressPending})
	}
	for i, t := range tasks {
		g.Go(func() error {
			f.emit(ProgressEvent{Stage: stage, Analysis: t.analysis, Status: ProgressWorking})
			start := time.Now()

			err := t.run(gctx)
			var skipped *errSkipped
			switch {
			case errors.As(err, &skipped):
				f.emit(ProgressEvent{Stage: stage, Analysis: t.analysis, Status: ProgressSkipped, Message: skipped.reason})
			case err != nil:
				f.emit(ProgressEvent{
					Stage:    stage,
					Analysis: t.analysis,
					Status:   ProgressFailed,
					Message:  err.Error(),
					Elapsed:  time.Since(start),
				})
			default:
				done[i] = true
				f.emit(ProgressEvent{
					Stage:    stage,
					Analysis: t.analysis,
					Status:   ProgressComplete,
					Elapsed:  time.Since(start),
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	ran := make(map[Analysis]bool, len(tasks))
	for i, t := range tasks {
		ran[t.analysis] = done[i]
	}
	return ran
}

// emit sends a progress event if a callback is registered.
func (f *fanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
