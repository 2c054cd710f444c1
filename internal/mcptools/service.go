package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dusk-indust/dontreadme/internal/config"
	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
	"github.com/dusk-indust/dontreadme/internal/risk"
	"github.com/dusk-indust/dontreadme/internal/source"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultLimit = 10

// errNotAnalyzed is returned by the query tools before analyze has run.
var errNotAnalyzed = errors.New("no analysis loaded: call analyze first")

// Service holds the graph store and the last analysis served by the MCP
// tool handlers.
type Service struct {
	// PersistIndex also writes each analysis to the on-disk graph index in
	// the project's output directory.
	PersistIndex bool
	// History overrides the git history source of an analyzed project.
	History func(root string) history.Source

	mu      sync.RWMutex
	store   graph.Store
	results *pipeline.Results
	logger  *slog.Logger
}

// NewService creates a Service backed by store. A nil logger uses
// slog.Default.
func NewService(store graph.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Analyze runs every analysis over a project, loads the result into the
// graph store, and returns a summary.
func (s *Service) Analyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	if input.RepoPath == "" {
		return nil, AnalyzeOutput{}, fmt.Errorf("repoPath is required")
	}
	info, err := os.Stat(input.RepoPath)
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("cannot access repoPath: %w", err)
	}
	if !info.IsDir() {
		return nil, AnalyzeOutput{}, fmt.Errorf("repoPath is not a directory: %s", input.RepoPath)
	}

	cfg, err := config.Load(input.RepoPath)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	opts, err := pipeline.FromConfig(input.RepoPath, cfg)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	if s.History != nil {
		opts.History = s.History(input.RepoPath)
	}
	opts.Logger = s.logger

	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("analyze: %w", err)
	}
	in := res.IndexInput()

	s.mu.Lock()
	defer s.mu.Unlock()
	stats, err := graph.Index(ctx, s.store, in)
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("index: %w", err)
	}
	s.results = res

	out := AnalyzeOutput{
		Root:             input.RepoPath,
		Files:            res.Files.Len(),
		PrimaryLanguage:  source.PrimaryLanguage(res.Files),
		HistoryAvailable: res.HistoryAvailable,
		Completed:        []string{},
		Stats:            *stats,
		Risk:             res.Risk.Summary,
	}
	if res.APISurface.Framework != nil {
		out.Framework = *res.APISurface.Framework
	}
	for _, a := range res.Completed() {
		out.Completed = append(out.Completed, string(a))
	}

	if s.PersistIndex {
		dbPath := filepath.Join(export.ResolveDir(input.RepoPath, cfg.OutputDir), graph.IndexDir)
		if _, err := graph.WriteIndex(ctx, dbPath, in); err != nil {
			if errors.Is(err, graph.ErrPersistenceUnavailable) {
				s.logger.Debug("graph index not persisted", "reason", err)
			} else {
				s.logger.Warn("persisting graph index failed", "path", dbPath, "err", err)
			}
		} else {
			out.Persisted = true
		}
	}

	return nil, out, nil
}

// GetDependencies traverses IMPORTS edges from a file.
func (s *Service) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.NodeID == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("nodeId is required")
	}

	direction := graph.DirectionDownstream
	if input.Direction != "" {
		direction = graph.Direction(strings.ToLower(input.Direction))
		if !direction.Valid() {
			return nil, GetDependenciesOutput{}, fmt.Errorf("unknown direction %q", input.Direction)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	chains, err := s.store.GetDependencies(ctx, input.NodeID, direction, input.MaxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// AssessImpact computes the blast radius of changing a set of files.
func (s *Service) AssessImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedFiles is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	impact, err := s.store.AssessImpact(ctx, input.ChangedFiles)
	if err != nil {
		return nil, AssessImpactOutput{}, fmt.Errorf("assess impact: %w", err)
	}
	return nil, AssessImpactOutput{Impact: *impact}, nil
}

// GetComponents returns every component in the graph.
func (s *Service) GetComponents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetComponentsInput,
) (*mcp.CallToolResult, GetComponentsOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	components, err := s.store.GetComponents(ctx)
	if err != nil {
		return nil, GetComponentsOutput{}, fmt.Errorf("get components: %w", err)
	}
	return nil, GetComponentsOutput{Components: components}, nil
}

// GetHotspots returns the highest-scoring hotspots of the last analysis.
func (s *Service) GetHotspots(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetHotspotsInput,
) (*mcp.CallToolResult, GetHotspotsOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.results == nil {
		return nil, GetHotspotsOutput{}, errNotAnalyzed
	}

	h := s.results.Hotspots
	out := GetHotspotsOutput{Hotspots: []history.Hotspot{}, Threshold: h.Threshold}
	for _, spot := range h.Hotspots {
		if input.HotOnly && !spot.IsHot {
			continue
		}
		out.Total++
		if len(out.Hotspots) < limitOrDefault(input.Limit) {
			out.Hotspots = append(out.Hotspots, spot)
		}
	}
	return nil, out, nil
}

// GetRisk returns the riskiest files of the last analysis at or above a
// severity.
func (s *Service) GetRisk(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetRiskInput,
) (*mcp.CallToolResult, GetRiskOutput, error) {
	floor := risk.SeverityLow
	if input.MinSeverity != "" {
		parsed, err := risk.ParseSeverity(input.MinSeverity)
		if err != nil {
			return nil, GetRiskOutput{}, err
		}
		floor = parsed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.results == nil {
		return nil, GetRiskOutput{}, errNotAnalyzed
	}

	p := s.results.Risk
	out := GetRiskOutput{Entries: []risk.Entry{}, Summary: p.Summary}
	for _, e := range p.Entries {
		if e.Severity.Rank() < floor.Rank() {
			continue
		}
		out.Total++
		if len(out.Entries) < limitOrDefault(input.Limit) {
			out.Entries = append(out.Entries, e)
		}
	}
	return nil, out, nil
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}
