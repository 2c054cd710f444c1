package architecture

import (
	"fmt"
	"sort"
)

// Layers orders components by peeling: each layer holds the components
// whose dependencies are all in earlier layers (or are themselves). When
// nothing qualifies, the rest is a cycle and becomes the last layer. Every
// component lands in exactly one layer.
func Layers(components []Component, edges []Edge) []Layer {
	deps := make(map[string]map[string]bool, len(components))
	remaining := make(map[string]bool, len(components))
	for _, c := range components {
		deps[c.Name] = map[string]bool{}
		remaining[c.Name] = true
	}
	for _, e := range edges {
		if deps[e.From] != nil {
			deps[e.From][e.To] = true
		}
	}

	layers := []Layer{}
	for level := 0; len(remaining) > 0; level++ {
		var current []string
		for name := range remaining {
			ready := true
			for d := range deps[name] {
				if d != name && remaining[d] {
					ready = false
					break
				}
			}
			if ready {
				current = append(current, name)
			}
		}

		if len(current) == 0 {
			for name := range remaining {
				current = append(current, name)
			}
			sort.Strings(current)
			layers = append(layers, newLayer(level, current))
			break
		}

		sort.Strings(current)
		layers = append(layers, newLayer(level, current))
		for _, name := range current {
			delete(remaining, name)
		}
	}
	return layers
}

func newLayer(level int, components []string) Layer {
	return Layer{
		Name:       fmt.Sprintf("layer-%d", level),
		Components: components,
		Level:      level,
	}
}
