package closure

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Neighbors returns the classes directly adjacent to class in the
// traversal direction. Implementations filter to the live class set.
type Neighbors func(class string) []string

// DefaultMemoThreshold is the class count above which IndexAll switches
// from independent per-class traversals to the shared memoized engine.
const DefaultMemoThreshold = 1000

// Indexer computes closure indexes for a set of classes.
type Indexer struct {
	// Parents feeds ancestor traversals, Children descendant ones.
	Parents  Neighbors
	Children Neighbors

	// Workers caps the goroutines used for per-class traversals. Zero
	// means one per available CPU.
	Workers int

	// MemoThreshold overrides DefaultMemoThreshold when positive.
	MemoThreshold int

	// Progress, when set, receives completion counts while indexing. It
	// may be called from multiple goroutines.
	Progress func(done, total int)
}

// IndexAll computes the closure of every class in sources and returns the
// assembled index. Duplicate sources collapse. Small inputs are walked
// breadth-first per class across a worker pool; inputs above the memo
// threshold share one whole-graph distance table instead, falling back to
// per-class walks when the graph turns out to be cyclic.
func (ix *Indexer) IndexAll(ctx context.Context, direction Direction, sources []string) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	neighbors, err := ix.neighborsFor(direction)
	if err != nil {
		return nil, err
	}

	classes := dedupeSorted(sources)

	threshold := ix.MemoThreshold
	if threshold <= 0 {
		threshold = DefaultMemoThreshold
	}

	if len(classes) > threshold {
		closures, ok, err := ix.memoIndex(ctx, neighbors, classes)
		if err != nil {
			return nil, err
		}
		if ok {
			return &Index{Direction: direction, closures: closures}, nil
		}
	}

	return ix.walkIndex(ctx, direction, neighbors, classes)
}

func (ix *Indexer) neighborsFor(direction Direction) (Neighbors, error) {
	switch direction {
	case Ancestors:
		if ix.Parents != nil {
			return ix.Parents, nil
		}
	case Descendants:
		if ix.Children != nil {
			return ix.Children, nil
		}
	default:
		return nil, fmt.Errorf("unknown closure direction %q", direction)
	}
	return nil, fmt.Errorf("no neighbor function wired for %s", direction)
}

// walkIndex runs one breadth-first traversal per class. Classes are
// striped across workers; each worker writes only its own slots of the
// results slice and the index is assembled single-threaded afterwards.
func (ix *Indexer) walkIndex(ctx context.Context, direction Direction, neighbors Neighbors, classes []string) (*Index, error) {
	idx := NewIndex(direction)
	if len(classes) == 0 {
		return idx, nil
	}

	workers := ix.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(classes) {
		workers = len(classes)
	}

	results := make([]Levels, len(classes))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < len(classes); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = walk(classes[i], neighbors)
				if ix.Progress != nil {
					ix.Progress(int(done.Add(1)), len(classes))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, class := range classes {
		idx.closures[class] = results[i]
	}
	return idx, nil
}

// walk is the level-synchronous traversal from one class. Each depth
// records the classes first reached there; a depth whose raw neighbor set
// was entirely seen before records as empty and ends the walk, while a
// frontier with no neighbors at all ends the walk without a record.
func walk(class string, neighbors Neighbors) Levels {
	levels := make(Levels)

	seen := map[string]bool{class: true}
	frontier := frontierFrom(neighbors(class), seen)
	if len(frontier) == 0 {
		return levels
	}
	levels[0] = frontier
	markSeen(seen, frontier)

	for depth := 1; ; depth++ {
		var raw []string
		for _, c := range frontier {
			raw = append(raw, neighbors(c)...)
		}
		if len(raw) == 0 {
			return levels
		}

		next := frontierFrom(raw, seen)
		levels[depth] = next
		if len(next) == 0 {
			return levels
		}
		markSeen(seen, next)
		frontier = next
	}
}

// frontierFrom filters raw neighbors down to the sorted set of classes not
// seen before. The result is never nil so recorded depths always encode as
// JSON arrays.
func frontierFrom(raw []string, seen map[string]bool) []string {
	next := []string{}
	dup := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		if seen[c] {
			continue
		}
		if _, ok := dup[c]; ok {
			continue
		}
		dup[c] = struct{}{}
		next = append(next, c)
	}
	sort.Strings(next)
	return next
}

func markSeen(seen map[string]bool, classes []string) {
	for _, c := range classes {
		seen[c] = true
	}
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
