// Package pipeline runs the analyses over a project: five independent
// analyses in parallel, then risk scoring over their hotspot output.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dusk-indust/dontreadme/internal/architecture"
	"github.com/dusk-indust/dontreadme/internal/extract"
	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/risk"
	"github.com/dusk-indust/dontreadme/internal/source"
)

// Stage identifies a pipeline stage.
type Stage int

const (
	StageAnalyze Stage = 1
	StageScore   Stage = 2
)

func (s Stage) String() string {
	switch s {
	case StageAnalyze:
		return "analyze"
	case StageScore:
		return "score"
	default:
		return "unknown"
	}
}

// Analysis names one analysis and the artifact it produces.
type Analysis string

const (
	AnalysisArchitecture    Analysis = "architecture"
	AnalysisDependencyGraph Analysis = "dependency-graph"
	AnalysisAPISurface      Analysis = "api-surface"
	AnalysisDecisions       Analysis = "decisions"
	AnalysisHotspots        Analysis = "hotspots"
	AnalysisRisk            Analysis = "risk-profile"
)

// Analyses lists every analysis in artifact order.
var Analyses = []Analysis{
	AnalysisArchitecture,
	AnalysisDependencyGraph,
	AnalysisAPISurface,
	AnalysisDecisions,
	AnalysisHotspots,
	AnalysisRisk,
}

// analysisAliases are the short names accepted next to the artifact names.
var analysisAliases = map[string]Analysis{
	"arch":      AnalysisArchitecture,
	"deps":      AnalysisDependencyGraph,
	"dep-graph": AnalysisDependencyGraph,
	"api":       AnalysisAPISurface,
	"risk":      AnalysisRisk,
}

// ParseAnalyses validates analysis names, as given to --only. Artifact names
// and their short aliases are accepted; repeats are dropped.
func ParseAnalyses(names []string) ([]Analysis, error) {
	known := make(map[Analysis]bool, len(Analyses))
	for _, a := range Analyses {
		known[a] = true
	}
	var out []Analysis
	seen := map[Analysis]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		a, ok := analysisAliases[n]
		if !ok {
			a = Analysis(n)
		}
		if !known[a] {
			return nil, fmt.Errorf("unknown analysis %q", n)
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}

// Defaults applied by Run for zero-valued options.
const (
	DefaultMaxFileSize = 100_000
	DefaultConcurrency = 16
)

// Options configures a pipeline run.
type Options struct {
	// Root is the project root. It backs the default Reader.
	Root string
	// Paths lists the project-relative files to analyze, as returned by
	// source.Discover.
	Paths []string
	// Reader reads project files. Defaults to a source.DirReader over Root.
	Reader source.Reader
	// Scanner extracts facts from file text. Defaults to extract.RegexScanner.
	Scanner extract.Scanner
	// History supplies commits. A nil History skips the history analyses.
	History history.Source
	// Only restricts the run to these analyses. Empty runs all.
	Only []Analysis
	// Now anchors hotspot recency. Defaults to time.Now.
	Now time.Time

	// MaxFileSize skips larger files. Zero means DefaultMaxFileSize and a
	// negative value disables the limit.
	MaxFileSize  int64
	Concurrency  int
	LogLimit     int
	NumstatLimit int

	Logger     *slog.Logger
	OnProgress func(ProgressEvent)
}

// Results holds every artifact of one run. Analyses that did not run keep
// their empty defaults and are false in Ran.
type Results struct {
	Files            *source.Set
	Framework        extract.Framework
	HistoryAvailable bool

	Architecture    architecture.Architecture
	DependencyGraph graph.DependencyGraph
	APISurface      *extract.APISurface
	Decisions       history.Decisions
	Hotspots        history.Hotspots
	Risk            risk.Profile

	// Selected lists the requested analyses in artifact order; Ran marks
	// the ones that completed.
	Selected []Analysis
	Ran      map[Analysis]bool
	Duration time.Duration
}

// Artifact returns the result value encoded for analysis a.
func (r *Results) Artifact(a Analysis) any {
	switch a {
	case AnalysisArchitecture:
		return r.Architecture
	case AnalysisDependencyGraph:
		return r.DependencyGraph
	case AnalysisAPISurface:
		return r.APISurface
	case AnalysisDecisions:
		return r.Decisions
	case AnalysisHotspots:
		return r.Hotspots
	case AnalysisRisk:
		return r.Risk
	}
	return nil
}

// IndexInput returns the parts of r loaded into a graph index.
func (r *Results) IndexInput() graph.IndexInput {
	return graph.IndexInput{
		Files:        r.Files,
		Graph:        r.DependencyGraph,
		Architecture: r.Architecture,
		Hotspots:     r.Hotspots,
		Risk:         r.Risk,
	}
}

// Completed returns the analyses that ran, in artifact order.
func (r *Results) Completed() []Analysis {
	var out []Analysis
	for _, a := range Analyses {
		if r.Ran[a] {
			out = append(out, a)
		}
	}
	return out
}

// EmptyResults returns results with every artifact at its empty default.
func EmptyResults() *Results {
	return &Results{
		Files:           source.NewSet(),
		Architecture:    architecture.Empty(),
		DependencyGraph: graph.EmptyDependencyGraph(),
		APISurface:      extract.EmptySurface(),
		Decisions:       history.EmptyDecisions(),
		Hotspots:        history.EmptyHotspots(),
		Risk:            risk.EmptyProfile(),
		Ran:             map[Analysis]bool{},
	}
}

func (o Options) withDefaults() Options {
	if o.Reader == nil {
		root := o.Root
		if root == "" {
			root = "."
		}
		o.Reader = source.DirReader{Root: root}
	}
	if o.Scanner == nil {
		o.Scanner = extract.RegexScanner{}
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.MaxFileSize == 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.LogLimit <= 0 {
		o.LogLimit = history.DefaultLogLimit
	}
	if o.NumstatLimit <= 0 {
		o.NumstatLimit = history.DefaultNumstatLimit
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// selected reports which analyses were requested.
func (o Options) selected() map[Analysis]bool {
	sel := make(map[Analysis]bool, len(Analyses))
	if len(o.Only) == 0 {
		for _, a := range Analyses {
			sel[a] = true
		}
		return sel
	}
	for _, a := range o.Only {
		sel[a] = true
	}
	return sel
}

// Run loads the listed files once and runs the selected analyses over them.
// Risk scoring always needs hotspots, so they are computed for it even when
// not selected; Ran reports only the selected analyses that completed.
// The only error is cancellation of ctx.
func Run(ctx context.Context, opts Options) (*Results, error) {
	opts = opts.withDefaults()
	logger := opts.Logger
	start := time.Now()

	files, err := source.Load(ctx, opts.Reader, opts.Paths, source.LoadOptions{
		MaxSize:     opts.MaxFileSize,
		Concurrency: opts.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("files loaded", "listed", files.Len(), "readable", len(files.Readable()))

	res := EmptyResults()
	res.Files = files
	sel := opts.selected()
	for _, a := range Analyses {
		if sel[a] {
			res.Selected = append(res.Selected, a)
		}
	}
	needHotspots := sel[AnalysisHotspots] || sel[AnalysisRisk]
	needHistory := sel[AnalysisDecisions] || needHotspots

	if needHistory && opts.History != nil {
		res.HistoryAvailable = opts.History.Available(ctx)
	}
	if needHistory && !res.HistoryAvailable {
		logger.Info("version-control history unavailable, skipping history analyses")
	}

	var tasks []task
	if sel[AnalysisArchitecture] {
		tasks = append(tasks, task{AnalysisArchitecture, func(context.Context) error {
			res.Architecture = architecture.Analyze(files, opts.Scanner)
			return nil
		}})
	}
	if sel[AnalysisDependencyGraph] {
		tasks = append(tasks, task{AnalysisDependencyGraph, func(context.Context) error {
			res.DependencyGraph = graph.Build(files, opts.Scanner, graph.NewResolver(files.Paths()))
			return nil
		}})
	}
	if sel[AnalysisAPISurface] {
		tasks = append(tasks, task{AnalysisAPISurface, func(context.Context) error {
			pkg, _ := opts.Reader.ReadFile("package.json")
			res.Framework = extract.DetectFramework(pkg)
			res.APISurface = extract.BuildSurface(files, res.Framework, opts.Scanner)
			return nil
		}})
	}
	if sel[AnalysisDecisions] {
		tasks = append(tasks, task{AnalysisDecisions, func(ctx context.Context) error {
			if !res.HistoryAvailable {
				return skip("no version-control history")
			}
			commits, err := opts.History.Log(ctx, opts.LogLimit)
			if err != nil {
				logger.Warn("reading commit log failed", "err", err)
				return fmt.Errorf("read commit log: %w", err)
			}
			res.Decisions = history.BuildDecisions(commits)
			return nil
		}})
	}
	if needHotspots {
		tasks = append(tasks, task{AnalysisHotspots, func(ctx context.Context) error {
			if !res.HistoryAvailable {
				return skip("no version-control history")
			}
			stats, err := opts.History.Numstat(ctx, opts.NumstatLimit)
			if err != nil {
				logger.Warn("reading change history failed", "err", err)
				return fmt.Errorf("read numstat: %w", err)
			}
			res.Hotspots = history.ScoreHotspots(files.Paths(), stats, opts.Now)
			return nil
		}})
	}

	fan := &fanOut{onProgress: opts.OnProgress}
	for a, ok := range fan.Run(ctx, StageAnalyze, tasks) {
		res.Ran[a] = ok && sel[a]
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if sel[AnalysisRisk] {
		ran := fan.Run(ctx, StageScore, []task{{AnalysisRisk, func(context.Context) error {
			res.Risk = risk.Score(files, opts.Reader, opts.Scanner, res.Hotspots)
			return nil
		}}})
		res.Ran[AnalysisRisk] = ran[AnalysisRisk]
	}

	res.Duration = time.Since(start)
	logger.Debug("pipeline finished", "analyses", analysisNames(res.Completed()), "duration", res.Duration)
	return res, nil
}

func analysisNames(as []Analysis) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = string(a)
	}
	sort.Strings(out)
	return out
}
