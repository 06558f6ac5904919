package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/obokit/oboindex/internal/owl"
)

const defaultDebounce = 2 * time.Second

// Watch processes every ontology once, then keeps the registry current as
// release files change under the source directory. File events are
// debounced so one release replacing another mid-copy triggers a single
// reprocess. Watch blocks until ctx is cancelled and returns its error.
func (p *Processor) Watch(ctx context.Context) error {
	// The watcher starts before the initial run so changes landing while
	// it processes are queued, not lost.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(p.opts.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", p.opts.Dir, err)
	}

	result, err := p.Process(ctx)
	if err != nil {
		return err
	}
	registry := result.Registry
	p.log.Info("watching for release changes", "dir", p.opts.Dir)

	debounce := p.opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	// Local source bookkeeping: events may introduce or retire releases
	// over the watch's lifetime.
	sources := p.Sources()
	byPath := make(map[string]string, len(sources))
	for id, path := range sources {
		byPath[filepath.Clean(path)] = id
	}

	pending := make(map[string]struct{})
	removed := make(map[string]struct{})

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			path := filepath.Clean(event.Name)
			id, known := byPath[path]

			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if !known {
					if owl.DetectFormat(path) == owl.FormatUnknown {
						continue
					}
					id = sourceID(path)
					sources[id] = path
					byPath[path] = id
				}
				pending[id] = struct{}{}
				delete(removed, id)
				timer.Reset(debounce)

			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if !known {
					continue
				}
				removed[id] = struct{}{}
				delete(pending, id)
				delete(sources, id)
				delete(byPath, path)
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("watch error", "error", err)

		case <-timer.C:
			if err := p.reprocess(ctx, registry, sources, pending, removed); err != nil {
				return err
			}
		}
	}
}

// reprocess flushes one debounced batch: retired ontologies leave the
// registry, changed ones run through the pipeline again, and the registry
// artifact is rewritten.
func (p *Processor) reprocess(ctx context.Context, registry *Registry, sources map[string]string, pending, removed map[string]struct{}) error {
	for id := range removed {
		registry.Remove(id)
		p.log.Info("ontology retired", "ontology", id)
	}
	clear(removed)

	for id := range pending {
		stats, artifacts, err := p.processOne(ctx, id, sources[id])
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if p.opts.FailFast {
				return fmt.Errorf("processing %s: %w", id, err)
			}

			// The previous registry entry, if any, stays valid.
			p.log.Warn("skipping ontology", "ontology", id, "error", err)
			continue
		}

		registry.Register(id, artifacts)
		p.log.Info("ontology reprocessed",
			"ontology", id,
			"classes", stats.Classes,
			"live", stats.Live,
			"elapsed", stats.Elapsed,
		)
	}
	clear(pending)

	return p.putRegistry(ctx, registry)
}
