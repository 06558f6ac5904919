// Package pipeline orchestrates ontology processing end to end: load the
// release graph, extract class metadata, index ancestor and descendant
// closures, and persist the artifacts behind a registry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/obokit/oboindex/internal/closure"
	"github.com/obokit/oboindex/internal/metadata"
	"github.com/obokit/oboindex/internal/ontology"
	"github.com/obokit/oboindex/internal/owl"
	"github.com/obokit/oboindex/internal/store"
)

var (
	// ErrSourceNotFound reports a missing ontology source directory.
	ErrSourceNotFound = errors.New("ontology source directory not found")

	// ErrNoSources reports a source directory without ontology files.
	ErrNoSources = errors.New("no ontology source files found")
)

// Phase names a pipeline stage for progress reporting.
type Phase string

const (
	PhaseLoad        Phase = "load"
	PhaseExtract     Phase = "extract"
	PhaseNormalize   Phase = "normalize"
	PhaseAncestors   Phase = "ancestors"
	PhaseDescendants Phase = "descendants"
	PhasePersist     Phase = "persist"
)

// Event is one progress notification.
type Event struct {
	Ontology string
	Phase    Phase
	Done     int
	Total    int
}

// ProgressFunc receives progress events. It may be called from multiple
// goroutines.
type ProgressFunc func(Event)

// Options configure a Processor.
type Options struct {
	// Dir is the ontology source directory.
	Dir string

	// Sources maps ontology identifiers to release files, resolved
	// relative to Dir unless absolute. Empty means scan Dir for
	// recognizable release files.
	Sources map[string]string

	// Store receives the artifacts.
	Store store.Store

	// Workers caps per-ontology traversal parallelism. Zero means one
	// per CPU.
	Workers int

	// MemoThreshold overrides the class count at which closure indexing
	// switches to the memoized engine. Zero keeps the default.
	MemoThreshold int

	// FailFast aborts the run on the first ontology error instead of
	// logging it and continuing.
	FailFast bool

	// Debounce is how long Watch waits after a burst of file events
	// before reprocessing. Zero means two seconds.
	Debounce time.Duration

	// Progress, when set, receives events as work proceeds.
	Progress ProgressFunc

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// OntologyStats summarizes one processed ontology.
type OntologyStats struct {
	Triples   int
	Classes   int
	Live      int
	TableRows int
	Elapsed   time.Duration
}

// Result summarizes a pipeline run.
type Result struct {
	Registry *Registry
	Stats    map[string]OntologyStats

	// Skipped maps ontologies that failed to the error that stopped
	// them. Only populated when FailFast is off.
	Skipped map[string]error

	Duration time.Duration
}

// Processor runs the extraction pipeline over a set of ontology releases.
type Processor struct {
	opts    Options
	sources map[string]string
	log     *slog.Logger
}

// New checks the source directory, resolves the ontology list, and returns
// a ready Processor.
func New(opts Options) (*Processor, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("a store is required")
	}

	info, err := os.Stat(opts.Dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, opts.Dir)
	}

	sources := make(map[string]string, len(opts.Sources))
	for id, path := range opts.Sources {
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.Dir, path)
		}
		sources[strings.ToLower(id)] = path
	}
	if len(sources) == 0 {
		if sources, err = discoverSources(opts.Dir); err != nil {
			return nil, err
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, opts.Dir)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Processor{opts: opts, sources: sources, log: log}, nil
}

// discoverSources scans dir for release files in a recognized format,
// keyed by ontology identifier. The first file claiming an identifier
// wins; directory entries arrive sorted.
func discoverSources(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	sources := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || owl.DetectFormat(entry.Name()) == owl.FormatUnknown {
			continue
		}
		id := sourceID(entry.Name())
		if _, dup := sources[id]; dup {
			continue
		}
		sources[id] = filepath.Join(dir, entry.Name())
	}
	return sources, nil
}

// sourceID derives the ontology identifier from a release file name:
// extensions drop and the stem truncates at the first underscore, so
// "hp_with_imports.owl.gz" identifies the "hp" ontology.
func sourceID(name string) string {
	base := strings.ToLower(filepath.Base(name))
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.IndexByte(base, '_'); i > 0 {
		base = base[:i]
	}
	return base
}

// IDs returns the resolved ontology identifiers, sorted.
func (p *Processor) IDs() []string {
	ids := make([]string, 0, len(p.sources))
	for id := range p.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sources returns a copy of the resolved identifier-to-path mapping.
func (p *Processor) Sources() map[string]string {
	sources := make(map[string]string, len(p.sources))
	for id, path := range p.sources {
		sources[id] = path
	}
	return sources
}

// Process runs the pipeline over every resolved ontology and persists the
// run registry. A failing ontology is logged and skipped unless FailFast
// is set; cancellation aborts the whole run without registering partial
// work.
func (p *Processor) Process(ctx context.Context) (*Result, error) {
	start := time.Now()

	result := &Result{
		Registry: NewRegistry(),
		Stats:    make(map[string]OntologyStats),
		Skipped:  make(map[string]error),
	}

	for _, id := range p.IDs() {
		stats, artifacts, err := p.processOne(ctx, id, p.sources[id])
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if p.opts.FailFast {
				return nil, fmt.Errorf("processing %s: %w", id, err)
			}
			p.log.Warn("skipping ontology", "ontology", id, "error", err)
			result.Skipped[id] = err
			continue
		}

		result.Registry.Register(id, artifacts)
		result.Stats[id] = stats
		p.log.Info("ontology processed",
			"ontology", id,
			"classes", stats.Classes,
			"live", stats.Live,
			"rows", stats.TableRows,
			"elapsed", stats.Elapsed,
		)
	}

	if err := p.putRegistry(ctx, result.Registry); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (p *Processor) putRegistry(ctx context.Context, registry *Registry) error {
	data, err := registry.Marshal()
	if err != nil {
		return err
	}
	if _, err := p.opts.Store.Put(ctx, RegistryKey, data); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// processOne takes one ontology release through every phase. The returned
// artifact set is only valid when err is nil; nothing is registered here.
func (p *Processor) processOne(ctx context.Context, id, path string) (OntologyStats, ArtifactSet, error) {
	var (
		stats     OntologyStats
		artifacts ArtifactSet
		started   = time.Now()
	)

	p.event(Event{Ontology: id, Phase: PhaseLoad, Done: 0, Total: 1})
	g, err := owl.Load(path)
	if err != nil {
		return stats, artifacts, fmt.Errorf("loading %s: %w", path, err)
	}
	stats.Triples = g.Len()
	p.event(Event{Ontology: id, Phase: PhaseLoad, Done: 1, Total: 1})

	acc := ontology.NewAccessor(g, id)

	p.event(Event{Ontology: id, Phase: PhaseExtract, Done: 0, Total: 1})
	classes, err := acc.Classes()
	if err != nil {
		return stats, artifacts, fmt.Errorf("extracting %s classes: %w", id, err)
	}
	stats.Classes = len(classes)

	liveSet, err := acc.LiveSet()
	if err != nil {
		return stats, artifacts, fmt.Errorf("computing %s live set: %w", id, err)
	}
	live, err := acc.LiveClasses()
	if err != nil {
		return stats, artifacts, fmt.Errorf("computing %s live set: %w", id, err)
	}
	stats.Live = len(live)
	p.event(Event{Ontology: id, Phase: PhaseExtract, Done: 1, Total: 1})

	p.event(Event{Ontology: id, Phase: PhaseNormalize, Done: 0, Total: 1})
	table := metadata.Normalize(metadata.Input{
		Labels:          acc.Labels(liveSet),
		Definitions:     acc.Definitions(liveSet),
		Synonyms:        acc.Synonyms(liveSet),
		CrossReferences: acc.CrossReferences(liveSet),
		Release:         acc.ReleaseIRI(),
		SemanticType:    acc.DefaultNamespace(),
	})
	stats.TableRows = table.Len()
	p.event(Event{Ontology: id, Phase: PhaseNormalize, Done: 1, Total: 1})

	ancestors, err := p.index(ctx, acc, closure.Ancestors, PhaseAncestors, id, live)
	if err != nil {
		return stats, artifacts, err
	}
	descendants, err := p.index(ctx, acc, closure.Descendants, PhaseDescendants, id, live)
	if err != nil {
		return stats, artifacts, err
	}

	tableData, err := table.MarshalCSV()
	if err != nil {
		return stats, artifacts, err
	}
	ancestorData, err := ancestors.MarshalArtifact()
	if err != nil {
		return stats, artifacts, err
	}
	childData, err := descendants.MarshalArtifact()
	if err != nil {
		return stats, artifacts, err
	}

	p.event(Event{Ontology: id, Phase: PhasePersist, Done: 0, Total: 3})
	if artifacts.Table, err = p.opts.Store.Put(ctx, TableKey(id), tableData); err != nil {
		return stats, artifacts, fmt.Errorf("storing %s table: %w", id, err)
	}
	p.event(Event{Ontology: id, Phase: PhasePersist, Done: 1, Total: 3})
	if artifacts.Ancestors, err = p.opts.Store.Put(ctx, AncestorsKey(id), ancestorData); err != nil {
		return stats, artifacts, fmt.Errorf("storing %s ancestors: %w", id, err)
	}
	p.event(Event{Ontology: id, Phase: PhasePersist, Done: 2, Total: 3})
	if artifacts.Children, err = p.opts.Store.Put(ctx, ChildrenKey(id), childData); err != nil {
		return stats, artifacts, fmt.Errorf("storing %s children: %w", id, err)
	}
	p.event(Event{Ontology: id, Phase: PhasePersist, Done: 3, Total: 3})

	stats.Elapsed = time.Since(started)
	return stats, artifacts, nil
}

func (p *Processor) index(ctx context.Context, acc *ontology.Accessor, direction closure.Direction, phase Phase, id string, live []string) (*closure.Index, error) {
	ix := &closure.Indexer{
		Parents:       acc.DirectParents,
		Children:      acc.DirectChildren,
		Workers:       p.opts.Workers,
		MemoThreshold: p.opts.MemoThreshold,
	}
	if p.opts.Progress != nil {
		ix.Progress = func(done, total int) {
			p.opts.Progress(Event{Ontology: id, Phase: phase, Done: done, Total: total})
		}
	}

	idx, err := ix.IndexAll(ctx, direction, live)
	if err != nil {
		return nil, fmt.Errorf("indexing %s %s: %w", id, direction, err)
	}
	return idx, nil
}

func (p *Processor) event(ev Event) {
	if p.opts.Progress != nil {
		p.opts.Progress(ev)
	}
}
