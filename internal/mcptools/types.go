package mcptools

import (
	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/risk"
)

// --- MCP tool inputs and outputs ---
// The SDK derives each tool's JSON schema from these struct tags.

// AnalyzeInput is the input for the analyze tool.
type AnalyzeInput struct {
	RepoPath string `json:"repoPath" jsonschema:"absolute path of the project to analyze"`
}

// AnalyzeOutput is the result of the analyze tool.
type AnalyzeOutput struct {
	Root             string           `json:"root"`
	Files            int              `json:"files"`
	PrimaryLanguage  string           `json:"primaryLanguage,omitempty"`
	Framework        string           `json:"framework,omitempty"`
	HistoryAvailable bool             `json:"historyAvailable"`
	Completed        []string         `json:"completed"`
	Stats            graph.GraphStats `json:"stats"`
	Risk             risk.Summary     `json:"risk"`
	Persisted        bool             `json:"persisted"`
}

// GetDependenciesInput is the input for the get_dependencies tool.
type GetDependenciesInput struct {
	NodeID    string `json:"nodeId" jsonschema:"project-relative file path"`
	Direction string `json:"direction,omitempty" jsonschema:"upstream (what it imports) or downstream (what imports it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 10)"`
}

// GetDependenciesOutput is the result of the get_dependencies tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact tool.
type AssessImpactInput struct {
	ChangedFiles []string `json:"changedFiles" jsonschema:"project-relative paths of the files that will change"`
}

// AssessImpactOutput is the result of the assess_impact tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}

// GetComponentsInput is the input for the get_components tool.
type GetComponentsInput struct{}

// GetComponentsOutput is the result of the get_components tool.
type GetComponentsOutput struct {
	Components []graph.ComponentNode `json:"components"`
}

// GetHotspotsInput is the input for the get_hotspots tool.
type GetHotspotsInput struct {
	Limit   int  `json:"limit,omitempty" jsonschema:"maximum number of hotspots (default: 10)"`
	HotOnly bool `json:"hotOnly,omitempty" jsonschema:"only files above the hotspot threshold"`
}

// GetHotspotsOutput is the result of the get_hotspots tool.
type GetHotspotsOutput struct {
	Hotspots  []history.Hotspot `json:"hotspots"`
	Threshold float64           `json:"threshold"`
	Total     int               `json:"total"`
}

// GetRiskInput is the input for the get_risk tool.
type GetRiskInput struct {
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of entries (default: 10)"`
	MinSeverity string `json:"minSeverity,omitempty" jsonschema:"lowest severity to include: low, medium, high or critical (default: low)"`
}

// GetRiskOutput is the result of the get_risk tool.
type GetRiskOutput struct {
	Entries []risk.Entry `json:"entries"`
	Summary risk.Summary `json:"summary"`
	Total   int          `json:"total"`
}
