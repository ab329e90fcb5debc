package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ruolin/vg/internal/ctxlog"
	"github.com/ruolin/vg/internal/tempfile"
)

// Make plans and executes a build of the requested targets. Steps run
// sequentially in dependency order. End products and provided indexes are
// written under the output prefix; everything else goes to the scratch
// directory and is removed afterwards unless intermediates are kept.
//
// A recipe error aborts the build and propagates unchanged; indexes built
// before the failing step remain finished.
func (r *Registry) Make(ctx context.Context, targets ...string) error {
	logger := ctxlog.FromContext(ctx)

	plan, err := r.plan(targets)
	if err != nil {
		return err
	}
	logger.Debug("Build plan computed.", "targets", targets, "steps", len(plan))

	requested := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		requested[target] = struct{}{}
	}

	for _, step := range plan {
		x := r.catalog[step.Identifier]

		// Recipes that alias a more general index will sometimes ignore the
		// prefix and return their input's filenames instead.
		prefix := r.outputPrefix
		if !r.keepIntermediates && r.isIntermediate(x, requested) {
			prefix = filepath.Join(r.scratchDir(), tempfile.Hash(x.identifier))
		}

		logger.Debug("Executing recipe.",
			"identifier", step.Identifier, "recipe", step.Recipe, "prefix", prefix)
		if err := r.executeRecipe(ctx, x, step.Recipe, prefix); err != nil {
			return err
		}
	}

	if !r.keepIntermediates {
		r.reap(ctx, requested)
	}
	return nil
}

// isIntermediate reports whether an index is neither requested by the
// current build nor provided by the caller.
func (r *Registry) isIntermediate(x *index, requested map[string]struct{}) bool {
	if x.providedDirectly {
		return false
	}
	_, ok := requested[x.identifier]
	return !ok
}

func (r *Registry) executeRecipe(ctx context.Context, x *index, priority int, prefix string) error {
	recipe := &x.recipes[priority]

	views := make([]IndexView, len(recipe.inputs))
	for i, input := range recipe.inputs {
		in := r.catalog[input]
		if !in.isFinished() {
			panic(fmt.Sprintf("registry: recipe %d for %q executed before input %q is finished",
				priority, x.identifier, input))
		}
		views[i] = in.view()
	}

	filenames, err := recipe.exec(ctx, views, prefix, x.suffix)
	if err != nil {
		return err
	}

	x.filenames = append([]string(nil), filenames...)
	r.generation++
	return nil
}

// reap removes every file owned by an intermediate index. Files shared with
// a requested or provided index are kept; removal failures are ignored
// beyond a log line.
func (r *Registry) reap(ctx context.Context, requested map[string]struct{}) {
	logger := ctxlog.FromContext(ctx)

	keep := make(map[string]struct{})
	for _, id := range r.order {
		x := r.catalog[id]
		if r.isIntermediate(x, requested) {
			continue
		}
		for _, filename := range x.filenames {
			keep[filename] = struct{}{}
		}
	}

	for _, id := range r.order {
		for _, filename := range r.catalog[id].filenames {
			if _, ok := keep[filename]; ok {
				continue
			}
			logger.Debug("Removing intermediate file.", "identifier", id, "file", filename)
			if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
				logger.Warn("Could not remove intermediate file.", "file", filename, "error", err)
			}
		}
	}
}

func (r *Registry) scratchDir() string {
	if r.tempDir != "" {
		return r.tempDir
	}
	return tempfile.Dir()
}
