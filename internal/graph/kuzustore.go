//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path, so the index survives across runs. KuzuDB creates the leaf
// itself; only the parent directory must exist.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		language STRING,
		loc INT64,
		hotspot DOUBLE,
		risk DOUBLE,
		severity STRING,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Component(
		name STRING,
		path STRING,
		type STRING,
		layer INT64,
		cohesion DOUBLE,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS IMPORTS(FROM File TO File)`,
	`CREATE REL TABLE IF NOT EXISTS BELONGS_TO(FROM File TO Component)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM Component TO Component)`,
}

var relTables = []string{"IMPORTS", "BELONGS_TO", "DEPENDS_ON"}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// Reset deletes every node together with its relationships.
func (s *KuzuStore) Reset(_ context.Context) error {
	for _, stmt := range []string{
		"MATCH (f:File) DETACH DELETE f",
		"MATCH (c:Component) DETACH DELETE c",
	} {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: reset: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddFile inserts a File node.
func (s *KuzuStore) AddFile(_ context.Context, node FileNode) error {
	return s.exec(
		`CREATE (f:File {
			path: $path,
			language: $lang,
			loc: $loc,
			hotspot: $hotspot,
			risk: $risk,
			severity: $severity
		})`,
		map[string]any{
			"path":     node.Path,
			"lang":     node.Language,
			"loc":      int64(node.LOC),
			"hotspot":  node.HotspotScore,
			"risk":     node.RiskScore,
			"severity": node.Severity,
		},
	)
}

// AddComponent inserts a Component node. Members are recorded through
// BELONGS_TO edges, not on the node.
func (s *KuzuStore) AddComponent(_ context.Context, node ComponentNode) error {
	return s.exec(
		`CREATE (c:Component {
			name: $name,
			path: $path,
			type: $type,
			layer: $layer,
			cohesion: $cohesion
		})`,
		map[string]any{
			"name":     node.Name,
			"path":     node.Path,
			"type":     node.Type,
			"layer":    int64(node.Layer),
			"cohesion": node.Cohesion,
		},
	)
}

// AddEdge inserts a relationship edge between two nodes.
// The Cypher statement is chosen based on the EdgeKind.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	cypher, err := edgeCypher(edge.Kind)
	if err != nil {
		return err
	}
	return s.exec(cypher, map[string]any{
		"src": edge.SourceID,
		"dst": edge.TargetID,
	})
}

// edgeCypher returns the MATCH-CREATE Cypher for the given edge kind.
func edgeCypher(kind EdgeKind) (string, error) {
	switch kind {
	case EdgeKindImports:
		return `MATCH (a:File {path: $src}), (b:File {path: $dst})
				CREATE (a)-[:IMPORTS]->(b)`, nil
	case EdgeKindBelongs:
		return `MATCH (a:File {path: $src}), (b:Component {name: $dst})
				CREATE (a)-[:BELONGS_TO]->(b)`, nil
	case EdgeKindDependsOn:
		return `MATCH (a:Component {name: $src}), (b:Component {name: $dst})
				CREATE (a)-[:DEPENDS_ON]->(b)`, nil
	default:
		return "", fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// ---------- Read operations ----------

// GetFile retrieves a single File node by path, or returns nil if not found.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	rows, err := s.query(
		`MATCH (f:File {path: $path})
		 RETURN f.path, f.language, f.loc, f.hotspot, f.risk, f.severity`,
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &FileNode{
		Path:         toString(r[0]),
		Language:     toString(r[1]),
		LOC:          toInt(r[2]),
		HotspotScore: toFloat64(r[3]),
		RiskScore:    toFloat64(r[4]),
		Severity:     toString(r[5]),
	}, nil
}

// GetComponents returns all Component nodes with their members, sorted by
// name.
func (s *KuzuStore) GetComponents(_ context.Context) ([]ComponentNode, error) {
	rows, err := s.query(
		`MATCH (c:Component)
		 RETURN c.name, c.path, c.type, c.layer, c.cohesion
		 ORDER BY c.name`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]ComponentNode, 0, len(rows))
	for _, r := range rows {
		name := toString(r[0])
		memberRows, err := s.query(
			"MATCH (f:File)-[:BELONGS_TO]->(c:Component {name: $name}) RETURN f.path",
			map[string]any{"name": name},
		)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toString(mr[0]))
		}
		sort.Strings(members)

		out = append(out, ComponentNode{
			Name:     name,
			Path:     toString(r[1]),
			Type:     toString(r[2]),
			Layer:    toInt(r[3]),
			Cohesion: toFloat64(r[4]),
			Members:  members,
		})
	}
	return out, nil
}

// GetAllEdges returns all edges across all relationship tables.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	queries := []struct {
		cypher string
		kind   EdgeKind
	}{
		{"MATCH (a:File)-[:IMPORTS]->(b:File) RETURN a.path, b.path", EdgeKindImports},
		{"MATCH (a:File)-[:BELONGS_TO]->(b:Component) RETURN a.path, b.name", EdgeKindBelongs},
		{"MATCH (a:Component)-[:DEPENDS_ON]->(b:Component) RETURN a.name, b.name", EdgeKindDependsOn},
	}

	var edges []Edge
	for _, q := range queries {
		rows, err := s.query(q.cypher, nil)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			edges = append(edges, Edge{
				SourceID: toString(r[0]),
				TargetID: toString(r[1]),
				Kind:     q.kind,
			})
		}
	}
	return edges, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over IMPORTS edges starting from the given
// file path. It returns one DependencyChain per reachable file.
func (s *KuzuStore) GetDependencies(_ context.Context, nodeID string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	return bfs(nodeID, maxDepth, func(id string) ([]string, error) {
		return s.fileNeighbors(id, dir)
	})
}

// fileNeighbors returns immediate file neighbors along IMPORTS edges.
func (s *KuzuStore) fileNeighbors(path string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionUpstream:
		cypher = "MATCH (a:File {path: $path})-[:IMPORTS]->(b:File) RETURN b.path ORDER BY b.path"
	case DirectionDownstream:
		cypher = "MATCH (a:File)-[:IMPORTS]->(b:File {path: $path}) RETURN a.path ORDER BY a.path"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// AssessImpact computes the blast radius of the given set of changed files
// by walking importers until closure.
func (s *KuzuStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	totalFiles, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	return assessImpact(changedFiles, totalFiles, func(id string) ([]string, error) {
		return s.fileNeighbors(id, DirectionDownstream)
	})
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	files, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	components, err := s.countTable("Component")
	if err != nil {
		return nil, err
	}
	edges := 0
	for _, t := range relTables {
		// Table names are fixed internal constants, not user input.
		rows, err := s.query(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", t), nil)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			edges += toInt(rows[0][0])
		}
	}
	return &GraphStats{
		FileCount:      files,
		ComponentCount: components,
		EdgeCount:      edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	rows, err := s.query(fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
