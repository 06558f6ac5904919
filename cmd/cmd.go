// Package cmd provides CLI command implementations for oboindex.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/obokit/oboindex/internal/closure"
	"github.com/obokit/oboindex/internal/config"
	"github.com/obokit/oboindex/internal/metadata"
	"github.com/obokit/oboindex/internal/pipeline"
	"github.com/obokit/oboindex/internal/store"
	"github.com/obokit/oboindex/internal/vocab"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ProcessCmd extracts hierarchy and metadata artifacts from a directory of
// ontology releases.
type ProcessCmd struct {
	Dir        string `arg:"" optional:"" help:"Ontology source directory (overrides config)"`
	Config     string `short:"c" type:"path" help:"YAML config file"`
	Output     string `short:"o" help:"Artifact directory for the fs store"`
	Store      string `help:"Artifact store backend: fs or badger"`
	BadgerPath string `help:"Badger database path"`
	Workers    int    `help:"Closure traversal workers (0 = one per CPU)"`
	FailFast   bool   `help:"Stop on the first ontology failure"`
	Verbose    bool   `short:"v" help:"Enable debug logging"`
}

// Run executes the process command.
func (c *ProcessCmd) Run() error {
	cfg, err := resolveConfig(c.Config, &config.Config{
		SourceDir:  c.Dir,
		OutputDir:  c.Output,
		Store:      c.Store,
		BadgerPath: c.BadgerPath,
		Workers:    c.Workers,
		FailFast:   c.FailFast,
	})
	if err != nil {
		return err
	}

	st, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	proc, err := pipeline.New(pipeline.Options{
		Dir:      cfg.SourceDir,
		Sources:  cfg.Ontologies,
		Store:    st,
		Workers:  cfg.Workers,
		FailFast: cfg.FailFast,
		Progress: renderProgress,
		Logger:   newLogger(c.Verbose),
	})
	if err != nil {
		return err
	}

	color.Green("Processing %d ontologies from %s", len(proc.IDs()), cfg.SourceDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		<-osSignalChannel()
		cancel()
	}()

	result, err := proc.Process(ctx)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	fmt.Println() // Newline after progress

	color.Green("\n✓ Processing complete")
	for _, id := range result.Registry.IDs() {
		stats := result.Stats[id]
		fmt.Printf("\n%s\n", id)
		fmt.Printf("  Triples:     %d\n", stats.Triples)
		fmt.Printf("  Classes:     %d\n", stats.Classes)
		fmt.Printf("  Live:        %d\n", stats.Live)
		fmt.Printf("  Table rows:  %d\n", stats.TableRows)
		fmt.Printf("  Duration:    %.2fs\n", stats.Elapsed.Seconds())
	}

	if len(result.Skipped) > 0 {
		skipped := make([]string, 0, len(result.Skipped))
		for id := range result.Skipped {
			skipped = append(skipped, id)
		}
		sort.Strings(skipped)
		fmt.Println()
		for _, id := range skipped {
			fmt.Printf("Skipped %s: %v\n", id, result.Skipped[id])
		}
	}

	fmt.Printf("\nTotal duration: %.2fs\n", result.Duration.Seconds())
	return nil
}

// AncestorsCmd prints a class's ancestor closure level by level.
type AncestorsCmd struct {
	Ontology   string `arg:"" help:"Ontology identifier (e.g. hp)"`
	Class      string `arg:"" help:"Class CURIE (HP:0000118) or full IRI"`
	Config     string `short:"c" type:"path" help:"YAML config file"`
	Output     string `short:"o" help:"Artifact directory for the fs store"`
	Store      string `help:"Artifact store backend: fs or badger"`
	BadgerPath string `help:"Badger database path"`
}

// Run executes the ancestors command.
func (c *AncestorsCmd) Run() error {
	overrides := &config.Config{OutputDir: c.Output, Store: c.Store, BadgerPath: c.BadgerPath}
	return printClosure(c.Config, overrides, c.Ontology, c.Class, closure.Ancestors)
}

// DescendantsCmd prints a class's descendant closure level by level.
type DescendantsCmd struct {
	Ontology   string `arg:"" help:"Ontology identifier (e.g. hp)"`
	Class      string `arg:"" help:"Class CURIE (HP:0000118) or full IRI"`
	Config     string `short:"c" type:"path" help:"YAML config file"`
	Output     string `short:"o" help:"Artifact directory for the fs store"`
	Store      string `help:"Artifact store backend: fs or badger"`
	BadgerPath string `help:"Badger database path"`
}

// Run executes the descendants command.
func (c *DescendantsCmd) Run() error {
	overrides := &config.Config{OutputDir: c.Output, Store: c.Store, BadgerPath: c.BadgerPath}
	return printClosure(c.Config, overrides, c.Ontology, c.Class, closure.Descendants)
}

// SearchCmd searches an ontology's metadata table.
type SearchCmd struct {
	Ontology   string `arg:"" help:"Ontology identifier (e.g. hp)"`
	Query      string `arg:"" help:"Search terms"`
	Limit      int    `short:"n" default:"20" help:"Maximum results"`
	Config     string `short:"c" type:"path" help:"YAML config file"`
	Output     string `short:"o" help:"Artifact directory for the fs store"`
	Store      string `help:"Artifact store backend: fs or badger"`
	BadgerPath string `help:"Badger database path"`
}

// Run executes the search command.
func (c *SearchCmd) Run() error {
	ctx := context.Background()

	overrides := &config.Config{OutputDir: c.Output, Store: c.Store, BadgerPath: c.BadgerPath}
	st, registry, err := loadArtifacts(c.Config, overrides)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id, err := registeredID(registry, c.Ontology)
	if err != nil {
		return err
	}

	data, err := st.Get(ctx, pipeline.TableKey(id))
	if err != nil {
		return fmt.Errorf("reading %s metadata table: %w", id, err)
	}
	table, err := metadata.UnmarshalCSV(data)
	if err != nil {
		return fmt.Errorf("parsing %s metadata table: %w", id, err)
	}

	hits := metadata.NewSearchIndex(table).Search(c.Query, c.Limit)
	if len(hits) == 0 {
		fmt.Println("No results found")
		return nil
	}

	for i, h := range hits {
		fmt.Printf("\n%d. %s (%s)\n", i+1, h.Text, h.Code)
		fmt.Printf("   Kind:  %s\n", h.TextKind)
		fmt.Printf("   Score: %d\n", h.Score)
	}

	return nil
}

// ListCmd lists registered ontologies and their artifact locations.
type ListCmd struct {
	Config     string `short:"c" type:"path" help:"YAML config file"`
	Output     string `short:"o" help:"Artifact directory for the fs store"`
	Store      string `help:"Artifact store backend: fs or badger"`
	BadgerPath string `help:"Badger database path"`
}

// Run executes the list command.
func (c *ListCmd) Run() error {
	overrides := &config.Config{OutputDir: c.Output, Store: c.Store, BadgerPath: c.BadgerPath}
	st, registry, err := loadArtifacts(c.Config, overrides)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ids := registry.IDs()
	if len(ids) == 0 {
		fmt.Println("No ontologies registered")
		return nil
	}

	fmt.Printf("Run %s started %s\n", registry.RunID, registry.StartedAt.Format(time.RFC3339))
	for _, id := range ids {
		artifacts, _ := registry.Lookup(id)
		fmt.Printf("\n  %s\n", id)
		fmt.Printf("    Table:      %s\n", artifacts.Table)
		fmt.Printf("    Ancestors:  %s\n", artifacts.Ancestors)
		fmt.Printf("    Children:   %s\n", artifacts.Children)
	}

	return nil
}

// WatchCmd reprocesses ontology releases as they change on disk.
type WatchCmd struct {
	Dir        string        `arg:"" optional:"" help:"Ontology source directory (overrides config)"`
	Config     string        `short:"c" type:"path" help:"YAML config file"`
	Output     string        `short:"o" help:"Artifact directory for the fs store"`
	Store      string        `help:"Artifact store backend: fs or badger"`
	BadgerPath string        `help:"Badger database path"`
	Workers    int           `help:"Closure traversal workers (0 = one per CPU)"`
	FailFast   bool          `help:"Stop on the first ontology failure"`
	Debounce   time.Duration `default:"2s" help:"Quiet period after file events before reprocessing"`
	Verbose    bool          `short:"v" help:"Enable debug logging"`
}

// Run executes the watch command.
func (c *WatchCmd) Run() error {
	cfg, err := resolveConfig(c.Config, &config.Config{
		SourceDir:  c.Dir,
		OutputDir:  c.Output,
		Store:      c.Store,
		BadgerPath: c.BadgerPath,
		Workers:    c.Workers,
		FailFast:   c.FailFast,
	})
	if err != nil {
		return err
	}

	st, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	proc, err := pipeline.New(pipeline.Options{
		Dir:      cfg.SourceDir,
		Sources:  cfg.Ontologies,
		Store:    st,
		Workers:  cfg.Workers,
		FailFast: cfg.FailFast,
		Debounce: c.Debounce,
		Progress: renderProgress,
		Logger:   newLogger(c.Verbose),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s for release changes (Ctrl+C to stop)\n\n", cfg.SourceDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		<-osSignalChannel()
		fmt.Println("\nStopping watch mode...")
		cancel()
	}()

	err = proc.Watch(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch error: %w", err)
	}

	fmt.Println("Watch mode stopped.")
	return nil
}

// CleanCmd deletes the artifacts a previous process run produced.
type CleanCmd struct {
	Force      bool   `short:"f" help:"Skip confirmation"`
	Config     string `short:"c" type:"path" help:"YAML config file"`
	Output     string `short:"o" help:"Artifact directory for the fs store"`
	Store      string `help:"Artifact store backend: fs or badger"`
	BadgerPath string `help:"Badger database path"`
}

// Run executes the clean command.
func (c *CleanCmd) Run() error {
	overrides := &config.Config{OutputDir: c.Output, Store: c.Store, BadgerPath: c.BadgerPath}
	cfg, err := resolveConfig(c.Config, overrides)
	if err != nil {
		return err
	}

	if cfg.Store == config.StoreBadger {
		if _, err := os.Stat(cfg.BadgerPath); os.IsNotExist(err) {
			return fmt.Errorf("no artifacts found at %s. Nothing to clean", cfg.BadgerPath)
		}
		if !confirm(c.Force, fmt.Sprintf("Delete artifact database at %s?", cfg.BadgerPath)) {
			fmt.Println("Aborted")
			return nil
		}
		if err := os.RemoveAll(cfg.BadgerPath); err != nil {
			return fmt.Errorf("deleting artifacts: %w", err)
		}
		color.Green("Deleted %s", cfg.BadgerPath)
		return nil
	}

	// The fs store writes artifacts next to whatever else lives in the
	// output directory, so removal is registry-driven rather than a
	// recursive delete.
	st, registry, err := loadArtifacts(c.Config, overrides)
	if err != nil {
		return err
	}
	_ = st.Close()

	if !confirm(c.Force, fmt.Sprintf("Delete artifacts for %d ontologies at %s?", len(registry.IDs()), cfg.OutputDir)) {
		fmt.Println("Aborted")
		return nil
	}

	removed := 0
	for _, id := range registry.IDs() {
		for _, key := range []string{pipeline.TableKey(id), pipeline.AncestorsKey(id), pipeline.ChildrenKey(id)} {
			path := filepath.Join(cfg.OutputDir, key)
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return fmt.Errorf("deleting %s: %w", path, err)
			}
			removed++
		}
	}
	registryPath := filepath.Join(cfg.OutputDir, pipeline.RegistryKey)
	if err := os.Remove(registryPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", registryPath, err)
	}

	color.Green("Deleted %d artifact files from %s", removed, cfg.OutputDir)
	return nil
}

// Helper functions

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers flag overrides over the config file, or over the
// defaults when no file is given.
func resolveConfig(path string, overrides *config.Config) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	cfg.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured artifact store backend.
func openStore(cfg *config.Config, readOnly bool) (store.Store, error) {
	if cfg.Store == config.StoreBadger {
		st, err := store.NewBadgerStore(cfg.BadgerPath, readOnly)
		if err != nil {
			return nil, fmt.Errorf("opening badger store: %w", err)
		}
		return st, nil
	}
	st, err := store.NewFSStore(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("opening artifact directory: %w", err)
	}
	return st, nil
}

// loadArtifacts opens the configured store read-only and fetches the
// registry written by a previous process run.
func loadArtifacts(cfgPath string, overrides *config.Config) (store.Store, *pipeline.Registry, error) {
	cfg, err := resolveConfig(cfgPath, overrides)
	if err != nil {
		return nil, nil, err
	}

	location := cfg.OutputDir
	if cfg.Store == config.StoreBadger {
		location = cfg.BadgerPath
		if _, err := os.Stat(location); os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("no artifacts found at %s. Run 'oboindex process' first", location)
		}
	}

	st, err := openStore(cfg, true)
	if err != nil {
		return nil, nil, err
	}

	data, err := st.Get(context.Background(), pipeline.RegistryKey)
	if err != nil {
		_ = st.Close()
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("no artifacts found at %s. Run 'oboindex process' first", location)
		}
		return nil, nil, fmt.Errorf("reading registry: %w", err)
	}

	registry, err := pipeline.ParseRegistry(data)
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("parsing registry: %w", err)
	}

	return st, registry, nil
}

// registeredID normalizes an ontology identifier and checks it against the
// registry.
func registeredID(registry *pipeline.Registry, ont string) (string, error) {
	id := strings.ToLower(ont)
	if _, ok := registry.Lookup(id); !ok {
		have := strings.Join(registry.IDs(), ", ")
		if have == "" {
			have = "none"
		}
		return "", fmt.Errorf("ontology %q is not registered (have: %s)", id, have)
	}
	return id, nil
}

// printClosure fetches one direction's closure artifact and renders the
// levels recorded for a single class.
func printClosure(cfgPath string, overrides *config.Config, ont, class string, direction closure.Direction) error {
	ctx := context.Background()

	st, registry, err := loadArtifacts(cfgPath, overrides)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id, err := registeredID(registry, ont)
	if err != nil {
		return err
	}

	key := pipeline.AncestorsKey(id)
	if direction == closure.Descendants {
		key = pipeline.ChildrenKey(id)
	}
	data, err := st.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("reading %s %s index: %w", id, direction, err)
	}
	idx, err := closure.UnmarshalArtifact(direction, data)
	if err != nil {
		return fmt.Errorf("parsing %s %s index: %w", id, direction, err)
	}

	iri := expandClass(class)
	levels, err := idx.Lookup(iri)
	var unknown *closure.UnknownClassError
	if errors.As(err, &unknown) {
		fmt.Printf("Class %s not found in the %s %s index\n", metadata.CodeFor(iri), id, direction)
		return nil
	}
	if err != nil {
		return err
	}

	depths := levels.Depths()
	if len(depths) == 0 {
		fmt.Printf("No %s found\n", direction)
		return nil
	}

	fmt.Printf("%s of %s (%s)\n", direction, metadata.CodeFor(iri), id)
	for _, depth := range depths {
		members := levels[depth]
		fmt.Printf("\nLevel %d (%d)\n", depth, len(members))
		for _, member := range members {
			fmt.Printf("  %s\n", metadata.CodeFor(member))
		}
	}

	return nil
}

// expandClass turns a CURIE like HP:0000118 into a full OBO class IRI.
// Values that already look like IRIs pass through unchanged.
func expandClass(class string) string {
	if strings.Contains(class, "://") {
		return class
	}
	return vocab.OBO + strings.ReplaceAll(class, ":", "_")
}

func confirm(force bool, prompt string) bool {
	if force {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	var response string
	_, _ = fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// renderProgress draws a single-line progress indicator for pipeline events.
func renderProgress(ev pipeline.Event) {
	pct := 0.0
	if ev.Total > 0 {
		pct = float64(ev.Done) / float64(ev.Total) * 100
	}
	fmt.Printf("\r\033[K%s %s (%.0f%%)", ev.Ontology, ev.Phase, pct)
}

// CLI is the root Kong command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`

	// Commands
	Process     ProcessCmd     `cmd:"" help:"Extract hierarchy and metadata artifacts from ontology releases"`
	Ancestors   AncestorsCmd   `cmd:"" help:"Print a class's ancestors level by level"`
	Descendants DescendantsCmd `cmd:"" help:"Print a class's descendants level by level"`
	Search      SearchCmd      `cmd:"" help:"Search an ontology's metadata table"`
	List        ListCmd        `cmd:"" help:"List registered ontologies and their artifacts"`
	Watch       WatchCmd       `cmd:"" help:"Reprocess ontology releases as they change"`
	Clean       CleanCmd       `cmd:"" help:"Delete generated artifacts"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	kongCtx := kong.Parse(c,
		kong.Name("oboindex"),
		kong.Description("Hierarchy and metadata indexer for OBO ontology releases"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	return kongCtx.Run()
}
