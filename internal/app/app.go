package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/ruolin/vg/internal/ctxlog"
	"github.com/ruolin/vg/internal/fsutil"
	"github.com/ruolin/vg/internal/indexes"
	"github.com/ruolin/vg/internal/params"
	"github.com/ruolin/vg/internal/registry"
)

// App encapsulates the autoindex tool's dependencies and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
}

// NewApp constructs the application: it builds the logger, loads the
// indexing parameters, and assembles the index registry around the given
// toolkit.
func NewApp(outW io.Writer, cfg *Config, tk indexes.Toolkit) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	p := params.Default()
	if cfg.ParamsPath != "" {
		loaded, err := params.Load(cfg.ParamsPath)
		if err != nil {
			// A failure to load config is a fatal startup error.
			panic(fmt.Errorf("failed to load indexing parameters: %w", err))
		}
		p = loaded
	}
	logger.Debug("Indexing parameters resolved.", "params", p)

	reg := indexes.NewRegistry(tk, p)
	reg.SetOutputPrefix(cfg.OutputPrefix)
	reg.SetKeepIntermediates(cfg.KeepIntermediates)
	if cfg.TempDir != "" {
		reg.SetTempDir(cfg.TempDir)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run provides the configured inputs and executes the build, or renders the
// recipe graph when DotOnly is set.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.InputDir != "" {
		if err := a.autoProvide(a.config.InputDir); err != nil {
			return fmt.Errorf("scanning input directory: %w", err)
		}
	}

	// deterministic provisioning order
	ids := make([]string, 0, len(a.config.Provided))
	for id := range a.config.Provided {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a.logger.Debug("Providing index.", "identifier", id, "files", a.config.Provided[id])
		a.registry.Provide(id, a.config.Provided[id]...)
	}

	if a.config.DotOnly {
		dot, err := a.registry.ToDot(a.config.Targets...)
		if err != nil {
			return err
		}
		fmt.Fprint(a.outW, dot)
		return nil
	}

	a.logger.Info("Starting index build.", "targets", a.config.Targets)
	if err := a.registry.Make(ctx, a.config.Targets...); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	a.logger.Info("Index build finished.", "completed", a.registry.Completed())
	return nil
}

// autoProvide scans a directory for files matching registered suffixes and
// provides them. A file matching several suffixes goes to the index with the
// longest one, so "x.phased.vcf" lands on the phased VCF rather than the
// plain one.
func (a *App) autoProvide(dir string) error {
	type match struct {
		identifier string
		suffixLen  int
	}
	best := make(map[string]match)

	for _, id := range a.registry.Identifiers() {
		desc := a.registry.Describe(id)
		files, err := fsutil.FindBySuffix(dir, desc.Suffix)
		if err != nil {
			return err
		}
		for _, file := range files {
			if prev, ok := best[file]; ok && prev.suffixLen >= len(desc.Suffix) {
				continue
			}
			best[file] = match{identifier: id, suffixLen: len(desc.Suffix)}
		}
	}

	grouped := make(map[string][]string)
	for file, m := range best {
		grouped[m.identifier] = append(grouped[m.identifier], file)
	}
	for _, id := range a.registry.Identifiers() {
		files := grouped[id]
		if len(files) == 0 {
			continue
		}
		sort.Strings(files)
		a.logger.Debug("Discovered input files.", "identifier", id, "files", files)
		a.registry.Provide(id, files...)
	}
	return nil
}
