package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dusk-indust/dontreadme/internal/config"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/risk"
	"github.com/dusk-indust/dontreadme/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureRoot = "../../testdata/fixtures/ts_project"

var fixedNow = time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)

const fixtureLog = "c3\x00Ann\x002026-10-10T12:00:00Z\x00feat(users): add create endpoint\n\nsrc/routes/users.ts\nsrc/services/user.ts\n\n" +
	"c2\x00Ann\x002026-10-10T11:00:00Z\x00feat: add user service\n\nsrc/services/user.ts\n\n" +
	"c1\x00Bob\x002026-10-01T09:00:00Z\x00fix: session expiry\n\nsrc/auth/session.ts\n"

const fixtureNumstat = "c3\x00Ann\x002026-10-10T12:00:00Z\n\n5\t1\tsrc/routes/users.ts\n20\t3\tsrc/services/user.ts\n\n" +
	"c2\x00Ann\x002026-10-10T11:00:00Z\n\n40\t0\tsrc/services/user.ts\n\n" +
	"c1\x00Bob\x002026-10-01T09:00:00Z\n\n2\t2\tsrc/auth/session.ts\n\n" +
	"c0\x00Bob\x002026-10-09T09:00:00Z\n\n1\t1\tsrc/services/user.ts\n"

func fixtureOptions(t *testing.T, hist history.Source) Options {
	t.Helper()
	cfg := config.Defaults()
	paths, err := source.Discover(fixtureRoot, cfg.Include, cfg.Exclude)
	require.NoError(t, err)
	return Options{
		Root:    fixtureRoot,
		Paths:   paths,
		History: hist,
		Now:     fixedNow,
	}
}

func withHistory() history.Source {
	return history.MemSource{LogOutput: fixtureLog, NumstatOutput: fixtureNumstat}
}

type brokenHistory struct{}

func (brokenHistory) Available(context.Context) bool { return true }

func (brokenHistory) Log(context.Context, int) ([]history.Commit, error) {
	return nil, errors.New("git log: fatal: bad revision")
}

func (brokenHistory) Numstat(context.Context, int) (history.Numstat, error) {
	return history.Numstat{}, errors.New("git log: fatal: bad revision")
}

func TestRun_Fixture(t *testing.T) {
	res, err := Run(context.Background(), fixtureOptions(t, history.MemSource{Unavailable: true}))
	require.NoError(t, err)

	assert.Equal(t, 7, res.Files.Len(), "test files are excluded by discovery")
	assert.False(t, res.HistoryAvailable)
	assert.Equal(t, []Analysis{
		AnalysisArchitecture, AnalysisDependencyGraph, AnalysisAPISurface, AnalysisRisk,
	}, res.Completed())

	g := res.DependencyGraph
	assert.Equal(t, 7, g.TotalFiles)
	assert.Equal(t, 9, g.TotalEdges)
	assert.Equal(t, [][]string{{"src/auth/session.ts", "src/services/user.ts"}}, g.CircularDeps)
	assert.Equal(t, []string{"src/index.ts"}, g.Entrypoints)

	require.NotNil(t, res.APISurface.Framework)
	assert.Equal(t, "express", *res.APISurface.Framework)
	require.Len(t, res.APISurface.Routes, 2)
	assert.Equal(t, "POST", res.APISurface.Routes[0].Method)
	assert.Equal(t, "/users", res.APISurface.Routes[0].Path)
	assert.Equal(t, "getUser", res.APISurface.Routes[1].Handler)

	c, ok := res.Architecture.Component("src.services")
	require.True(t, ok)
	assert.Equal(t, "service", string(c.Type))

	assert.Equal(t, history.EmptyDecisions(), res.Decisions)
	assert.Equal(t, history.EmptyHotspots(), res.Hotspots)

	require.Len(t, res.Risk.Entries, 7)
	var session risk.Entry
	for _, e := range res.Risk.Entries {
		if e.File == "src/auth/session.ts" {
			session = e
		}
	}
	assert.Equal(t, []string{risk.MitigationCompanionTest}, session.Mitigations)
	assert.Equal(t, 1.0, session.HotspotMultiplier)
}

func TestRun_WithHistory(t *testing.T) {
	res, err := Run(context.Background(), fixtureOptions(t, withHistory()))
	require.NoError(t, err)

	assert.True(t, res.HistoryAvailable)
	assert.Len(t, res.Completed(), len(Analyses))

	assert.Equal(t, 3, res.Decisions.TotalCommitsAnalyzed)
	require.Len(t, res.Decisions.Decisions, 2)
	assert.Equal(t, "add create endpoint", res.Decisions.Decisions[0].Summary)
	assert.Len(t, res.Decisions.Decisions[0].Commits, 2)

	assert.Equal(t, 4, res.Hotspots.CommitsAnalyzed)
	require.NotEmpty(t, res.Hotspots.Hotspots)
	top := res.Hotspots.Hotspots[0]
	assert.Equal(t, "src/services/user.ts", top.File)
	assert.Equal(t, 6.0, top.Score)
	assert.Len(t, res.Hotspots.Hotspots, 7, "every listed file is scored")
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	first, err := Run(ctx, fixtureOptions(t, withHistory()))
	require.NoError(t, err)
	second, err := Run(ctx, fixtureOptions(t, withHistory()))
	require.NoError(t, err)

	for _, a := range Analyses {
		want, err := json.Marshal(first.Artifact(a))
		require.NoError(t, err)
		got, err := json.Marshal(second.Artifact(a))
		require.NoError(t, err)
		assert.Equal(t, want, got, a)
	}
}

func TestRun_Only(t *testing.T) {
	opts := fixtureOptions(t, withHistory())
	opts.Only = []Analysis{AnalysisArchitecture}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []Analysis{AnalysisArchitecture}, res.Completed())
	assert.NotEmpty(t, res.Architecture.Components)
	assert.Empty(t, res.DependencyGraph.Nodes)
	assert.Empty(t, res.Decisions.Decisions)
}

func TestRun_OnlyRiskUsesHotspots(t *testing.T) {
	opts := fixtureOptions(t, withHistory())
	opts.Only = []Analysis{AnalysisRisk}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []Analysis{AnalysisRisk}, res.Completed())
	assert.NotEmpty(t, res.Hotspots.Hotspots, "computed for risk scoring")

	for _, e := range res.Risk.Entries {
		if e.File == "src/services/user.ts" {
			assert.Greater(t, e.HotspotMultiplier, 1.0)
		}
	}
}

func TestRun_HistoryFailureIsNotFatal(t *testing.T) {
	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	opts := fixtureOptions(t, brokenHistory{})
	opts.OnProgress = func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, res.Ran[AnalysisDecisions])
	assert.False(t, res.Ran[AnalysisHotspots])
	assert.True(t, res.Ran[AnalysisRisk])
	assert.Equal(t, history.EmptyDecisions(), res.Decisions)

	failed := map[Analysis]string{}
	for _, ev := range events {
		if ev.Status == ProgressFailed {
			failed[ev.Analysis] = ev.Message
		}
	}
	assert.Contains(t, failed[AnalysisDecisions], "bad revision")
	assert.Contains(t, failed[AnalysisHotspots], "bad revision")
}

func TestRun_Progress(t *testing.T) {
	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	opts := fixtureOptions(t, history.MemSource{Unavailable: true})
	opts.OnProgress = func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	final := map[Analysis]ProgressStatus{}
	for _, ev := range events {
		switch ev.Status {
		case ProgressComplete, ProgressSkipped, ProgressFailed:
			final[ev.Analysis] = ev.Status
		}
	}
	assert.Equal(t, map[Analysis]ProgressStatus{
		AnalysisArchitecture:    ProgressComplete,
		AnalysisDependencyGraph: ProgressComplete,
		AnalysisAPISurface:      ProgressComplete,
		AnalysisDecisions:       ProgressSkipped,
		AnalysisHotspots:        ProgressSkipped,
		AnalysisRisk:            ProgressComplete,
	}, final)

	for _, ev := range events {
		if ev.Analysis == AnalysisRisk {
			assert.Equal(t, StageScore, ev.Stage)
		}
	}
}

func TestRun_NilHistorySkips(t *testing.T) {
	res, err := Run(context.Background(), fixtureOptions(t, nil))
	require.NoError(t, err)
	assert.False(t, res.HistoryAvailable)
	assert.False(t, res.Ran[AnalysisDecisions])
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, fixtureOptions(t, nil))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_UnreadableFile(t *testing.T) {
	opts := fixtureOptions(t, nil)
	opts.Paths = append(opts.Paths, "src/missing.ts")

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 8, res.DependencyGraph.TotalFiles)
	assert.Len(t, res.Risk.Entries, 8)
}

func TestParseAnalyses(t *testing.T) {
	got, err := ParseAnalyses([]string{"hotspots", "risk-profile"})
	require.NoError(t, err)
	assert.Equal(t, []Analysis{AnalysisHotspots, AnalysisRisk}, got)

	got, err = ParseAnalyses([]string{"arch", "deps", "api", "risk", " decisions", "architecture"})
	require.NoError(t, err)
	assert.Equal(t, []Analysis{
		AnalysisArchitecture, AnalysisDependencyGraph, AnalysisAPISurface, AnalysisRisk, AnalysisDecisions,
	}, got)

	_, err = ParseAnalyses([]string{"architecture", "vibes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"vibes"`)
}
