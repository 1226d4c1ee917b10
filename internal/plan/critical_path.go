package plan

// CriticalPath returns the chain of items with the largest cumulative estimate,
// from a dependency-free start to its end. It is empty iff the DAG is empty.
//
// Levels are walked in ascending order, which is a topological order because
// every edge climbs at least one level. Ties keep the first-discovered
// candidate so the result is reproducible for a fixed submission order.
func CriticalPath(d *DAG) []string {
	if d == nil || d.Len() == 0 {
		return []string{}
	}

	dist := make(map[string]int, d.Len())
	prev := make(map[string]string, d.Len())

	end := ""
	best := -1
	for _, level := range d.Levels {
		for _, id := range level {
			finish := dist[id] + d.items[id].EstimateMinutes
			for _, target := range d.dependents[id] {
				// a zero-length chain still links the target back to a root
				_, linked := prev[target]
				if finish > dist[target] || !linked {
					dist[target] = finish
					prev[target] = id
				}
			}
			if finish > best {
				best = finish
				end = id
			}
		}
	}

	var path []string
	for id := end; ; {
		path = append(path, id)
		p, ok := prev[id]
		if !ok {
			break
		}
		id = p
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathMinutes sums the estimates of the items on path
func (d *DAG) PathMinutes(path []string) int {
	total := 0
	for _, id := range path {
		total += d.items[id].EstimateMinutes
	}
	return total
}
