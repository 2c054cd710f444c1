package graph

// --- Enums ---

// NodeKind classifies nodes in the graph index.
type NodeKind string

const (
	NodeKindFile      NodeKind = "file"
	NodeKindComponent NodeKind = "component"
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindImports   EdgeKind = "IMPORTS"    // file -> file
	EdgeKindBelongs   EdgeKind = "BELONGS_TO" // file -> component
	EdgeKindDependsOn EdgeKind = "DEPENDS_ON" // component -> component
)

// --- Models ---

// FileNode represents a source file in the graph index.
type FileNode struct {
	Path         string  `json:"path"`
	Language     string  `json:"language"`
	LOC          int     `json:"loc"`
	HotspotScore float64 `json:"hotspotScore"`
	RiskScore    float64 `json:"riskScore"`
	Severity     string  `json:"severity,omitempty"`
}

// ComponentNode represents a directory-level component.
type ComponentNode struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Type     string   `json:"type"`
	Layer    int      `json:"layer"`
	Cohesion float64  `json:"cohesion"`
	Members  []string `json:"members"` // file paths
}

// Edge represents a relationship between two nodes. File nodes are
// identified by path, component nodes by name.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// GraphStats summarizes a graph index.
type GraphStats struct {
	FileCount      int `json:"fileCount"`
	ComponentCount int `json:"componentCount"`
	EdgeCount      int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of nodes forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // node IDs in order
	Depth int      `json:"depth"`
}

// ImpactResult describes the blast radius of changing a set of files.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // files that import a changed file
	TransitivelyAffected []string `json:"transitivelyAffected"` // full importer closure
	RiskScore            float64  `json:"riskScore"`            // fraction of indexed files affected
}
