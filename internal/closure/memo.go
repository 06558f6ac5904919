package closure

import (
	"context"
	"sort"
)

// memoIndex computes every class's closure against one shared distance
// table instead of walking the graph once per class. Nodes are processed
// in topological order, each combining its neighbors' already-final
// closures, so every edge is visited a constant number of times. The
// second return is false when the graph contains a cycle and the caller
// must fall back to per-class traversals.
func (ix *Indexer) memoIndex(ctx context.Context, neighbors Neighbors, classes []string) (map[string]Levels, bool, error) {
	// Expand the node set to everything reachable from the requested
	// classes. adj keeps the raw deduped neighbor lists; self loops stay
	// in so they surface as cycles below.
	adj := make(map[string][]string, len(classes))
	queue := make([]string, 0, len(classes))
	enqueued := make(map[string]bool, len(classes))
	for _, class := range classes {
		if !enqueued[class] {
			enqueued[class] = true
			queue = append(queue, class)
		}
	}
	for i := 0; i < len(queue); i++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		node := queue[i]
		ns := dedupeSorted(neighbors(node))
		adj[node] = ns
		for _, m := range ns {
			if !enqueued[m] {
				enqueued[m] = true
				queue = append(queue, m)
			}
		}
	}

	// Kahn's ordering over reversed dependencies: a node is ready once
	// every neighbor's closure is final.
	pending := make(map[string]int, len(adj))
	dependents := make(map[string][]string, len(adj))
	ready := make([]string, 0, len(adj))
	for node, ns := range adj {
		pending[node] = len(ns)
		if len(ns) == 0 {
			ready = append(ready, node)
		}
		for _, m := range ns {
			dependents[m] = append(dependents[m], node)
		}
	}

	// dist[node] holds the node's full closure as class to depth, depth
	// zero being a direct neighbor.
	dist := make(map[string]map[string]int, len(adj))

	processed := 0
	for len(ready) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		node := ready[len(ready)-1]
		ready = ready[:len(ready)-1]

		d := make(map[string]int)
		for _, m := range adj[node] {
			for reached, depth := range dist[m] {
				if reached == node {
					continue
				}
				if cur, ok := d[reached]; !ok || depth+1 < cur {
					d[reached] = depth + 1
				}
			}
		}
		for _, m := range adj[node] {
			d[m] = 0
		}
		dist[node] = d

		processed++
		if ix.Progress != nil {
			ix.Progress(processed, len(adj))
		}

		for _, dep := range dependents[node] {
			pending[dep]--
			if pending[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if processed < len(adj) {
		return nil, false, nil
	}

	closures := make(map[string]Levels, len(classes))
	for _, class := range classes {
		closures[class] = levelsFrom(dist[class], adj)
	}
	return closures, true, nil
}

// levelsFrom buckets a distance table into depth levels, reproducing the
// per-class traversal's shape: when the deepest level's classes still have
// neighbors (all necessarily reached earlier), the walk would have
// recorded one final empty depth, so it is appended here too.
func levelsFrom(d map[string]int, adj map[string][]string) Levels {
	levels := make(Levels)
	if len(d) == 0 {
		return levels
	}

	deepest := 0
	for reached, depth := range d {
		levels[depth] = append(levels[depth], reached)
		if depth > deepest {
			deepest = depth
		}
	}
	for _, members := range levels {
		sort.Strings(members)
	}

	for _, member := range levels[deepest] {
		if len(adj[member]) > 0 {
			levels[deepest+1] = []string{}
			break
		}
	}
	return levels
}
