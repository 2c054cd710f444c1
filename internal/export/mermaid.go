package export

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/dontreadme/internal/architecture"
	"github.com/dusk-indust/dontreadme/internal/graph"
)

// mermaidIDs hands out alphanumeric Mermaid node IDs in first-seen order.
type mermaidIDs struct {
	prefix string
	ids    map[string]string
}

func newMermaidIDs(prefix string) *mermaidIDs {
	return &mermaidIDs{prefix: prefix, ids: make(map[string]string)}
}

func (m *mermaidIDs) get(key string) string {
	if id, ok := m.ids[key]; ok {
		return id
	}
	id := fmt.Sprintf("%s%d", m.prefix, len(m.ids))
	m.ids[key] = id
	return id
}

// ArchitectureMermaid renders the component graph as a Mermaid graph TD
// diagram: one subgraph per layer, one node per component, and an arrow per
// component edge labeled with its import count.
func ArchitectureMermaid(a architecture.Architecture) string {
	ids := newMermaidIDs("C")

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, l := range a.Layers {
		fmt.Fprintf(&sb, "  subgraph L%d[\"%s\"]\n", l.Level, l.Name)
		for _, c := range l.Components {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", ids.get(c), c)
		}
		sb.WriteString("  end\n")
	}
	for _, e := range a.Edges {
		fmt.Fprintf(&sb, "  %s -->|%d| %s\n", ids.get(e.From), len(e.Imports), ids.get(e.To))
	}
	return sb.String()
}

// GraphMermaid renders a file-level Mermaid diagram from a graph index.
// Files are grouped by component; IMPORTS edges become arrows.
func GraphMermaid(ctx context.Context, store graph.Store) (string, error) {
	components, err := store.GetComponents(ctx)
	if err != nil {
		return "", fmt.Errorf("get components: %w", err)
	}
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}

	ids := newMermaidIDs("N")

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, c := range components {
		if len(c.Members) == 0 {
			continue
		}
		members := append([]string(nil), c.Members...)
		sort.Strings(members)

		fmt.Fprintf(&sb, "  subgraph %s[\"%.40s\"]\n", ids.get(c.Name+"/component"), c.Name)
		for _, m := range members {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", ids.get(m), shortPath(m))
		}
		sb.WriteString("  end\n")
	}

	imports := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Kind == graph.EdgeKindImports {
			imports = append(imports, e)
		}
	}
	sort.Slice(imports, func(i, j int) bool {
		if imports[i].SourceID != imports[j].SourceID {
			return imports[i].SourceID < imports[j].SourceID
		}
		return imports[i].TargetID < imports[j].TargetID
	})
	for _, e := range imports {
		fmt.Fprintf(&sb, "  %s --> %s\n", ids.get(e.SourceID), ids.get(e.TargetID))
	}
	return sb.String(), nil
}

// shortPath returns the last two path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
