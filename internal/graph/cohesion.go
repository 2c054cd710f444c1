package graph

// Cohesion calculates internal / (internal + external) over the IMPORTS
// edges touching a group of files. Internal edges connect two members;
// external edges connect a member to a non-member in either direction.
// A group no IMPORTS edge touches has cohesion 0.
func Cohesion(members []string, edges []Edge) float64 {
	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	internal, external := 0, 0
	for _, e := range edges {
		if e.Kind != EdgeKindImports {
			continue
		}
		src, dst := memberSet[e.SourceID], memberSet[e.TargetID]
		switch {
		case src && dst:
			internal++
		case src || dst:
			external++
		}
	}

	total := internal + external
	if total == 0 {
		return 0
	}
	return float64(internal) / float64(total)
}
