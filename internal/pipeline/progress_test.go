package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatProgress_AllStatuses(t *testing.T) {
	tests := []struct {
		name   string
		event  ProgressEvent
		expect string
	}{
		{
			name:   "pending",
			event:  ProgressEvent{Analysis: AnalysisHotspots, Status: ProgressPending},
			expect: "  ○ hotspots (pending)",
		},
		{
			name:   "working",
			event:  ProgressEvent{Analysis: AnalysisHotspots, Status: ProgressWorking},
			expect: "  ● hotspots...",
		},
		{
			name:   "complete",
			event:  ProgressEvent{Analysis: AnalysisHotspots, Status: ProgressComplete, Elapsed: 1500 * time.Microsecond},
			expect: "  ✓ hotspots complete (2ms)",
		},
		{
			name:   "failed",
			event:  ProgressEvent{Analysis: AnalysisDecisions, Status: ProgressFailed, Message: "timeout"},
			expect: "  ✗ decisions failed: timeout",
		},
		{
			name:   "skipped",
			event:  ProgressEvent{Analysis: AnalysisDecisions, Status: ProgressSkipped, Message: "no version-control history"},
			expect: "  - decisions skipped: no version-control history",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatProgress(tt.event))
		})
	}
}

func TestFormatStageHeader(t *testing.T) {
	assert.Equal(t, "[my-project] Stage 2: score", FormatStageHeader("my-project", StageScore))
	assert.Equal(t, "unknown", Stage(9).String())
}

func TestFanOut_IndependentTasks(t *testing.T) {
	var (
		mu       sync.Mutex
		statuses = map[Analysis]ProgressStatus{}
	)
	f := &fanOut{onProgress: func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		statuses[ev.Analysis] = ev.Status
	}}
	ran := f.Run(context.Background(), StageAnalyze, []task{
		{AnalysisArchitecture, func(context.Context) error { return nil }},
		{AnalysisDecisions, func(context.Context) error { return errors.New("boom") }},
		{AnalysisHotspots, func(context.Context) error { return skip("no history") }},
	})
	assert.Equal(t, map[Analysis]bool{
		AnalysisArchitecture: true,
		AnalysisDecisions:    false,
		AnalysisHotspots:     false,
	}, ran)
	assert.Equal(t, map[Analysis]ProgressStatus{
		AnalysisArchitecture: ProgressComplete,
		AnalysisDecisions:    ProgressFailed,
		AnalysisHotspots:     ProgressSkipped,
	}, statuses)
}
