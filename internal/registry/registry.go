package registry

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// planCacheSize bounds the number of memoized plans. ToDot and Make both
// consult the planner, often for the same target list back to back.
const planCacheSize = 16

// Registry owns the catalog of indexes and the recipes connecting them.
type Registry struct {
	catalog  map[string]*index
	order    []string          // identifiers in registration order
	suffixes map[string]string // suffix -> identifier that claimed it

	outputPrefix      string
	keepIntermediates bool
	tempDir           string

	// generation counts catalog mutations so a cached plan is never served
	// across a registration, a provision, or a build.
	generation uint64
	plans      *lru.Cache[planKey, []PlanStep]
}

// New creates an empty registry.
func New() *Registry {
	plans, err := lru.New[planKey, []PlanStep](planCacheSize)
	if err != nil {
		panic(err)
	}
	return &Registry{
		catalog:  make(map[string]*index),
		suffixes: make(map[string]string),
		plans:    plans,
	}
}

// RegisterIndex adds an index to the catalog. Identifiers and suffixes must
// each be unique across the registry; violations are programmer errors and
// panic, leaving the registry unchanged.
func (r *Registry) RegisterIndex(identifier, suffix string) {
	if identifier == "" {
		panic("registry: indexes must have a non-empty identifier")
	}
	if suffix == "" {
		panic("registry: indexes must have a non-empty suffix")
	}
	if _, exists := r.catalog[identifier]; exists {
		panic(fmt.Sprintf("registry: duplicated index identifier %q", identifier))
	}
	if prev, exists := r.suffixes[suffix]; exists {
		panic(fmt.Sprintf("registry: suffix %q already registered for %q", suffix, prev))
	}
	slog.Debug("Registering index.", "identifier", identifier, "suffix", suffix)

	r.catalog[identifier] = &index{identifier: identifier, suffix: suffix}
	r.order = append(r.order, identifier)
	r.suffixes[suffix] = identifier
	r.generation++
}

// RegisterRecipe appends a recipe for an index. The identifier and every
// input identifier must already be registered. Recipes are prioritized by
// registration order, earliest first.
func (r *Registry) RegisterRecipe(identifier string, inputs []string, exec RecipeFunc) {
	if exec == nil {
		panic(fmt.Sprintf("registry: recipe for %q must have an exec function", identifier))
	}
	target := r.mustGet(identifier)
	for _, input := range inputs {
		r.mustGet(input)
	}
	slog.Debug("Registering recipe.",
		"identifier", identifier, "priority", len(target.recipes), "inputs", inputs)

	target.recipes = append(target.recipes, Recipe{
		inputs: append([]string(nil), inputs...),
		exec:   exec,
	})
	r.generation++
}

// Provide marks an index as supplied by the caller with the given files.
// A later call overwrites an earlier one.
func (r *Registry) Provide(identifier string, filenames ...string) {
	if len(filenames) == 0 {
		panic(fmt.Sprintf("registry: index %q must be provided with at least one filename", identifier))
	}
	x := r.mustGet(identifier)
	x.filenames = append([]string(nil), filenames...)
	x.providedDirectly = true
	r.generation++
}

// Completed returns the identifiers of all finished indexes, provided or
// built, in registration order.
func (r *Registry) Completed() []string {
	var done []string
	for _, id := range r.order {
		if r.catalog[id].isFinished() {
			done = append(done, id)
		}
	}
	return done
}

// SetOutputPrefix configures the filename prefix for non-intermediate
// outputs; each index is written as "<prefix>.<suffix>".
func (r *Registry) SetOutputPrefix(prefix string) {
	r.outputPrefix = prefix
}

// SetKeepIntermediates configures whether intermediate indexes are written
// next to the end products and kept after Make.
func (r *Registry) SetKeepIntermediates(keep bool) {
	r.keepIntermediates = keep
}

// SetTempDir overrides the scratch directory for intermediate files. An
// empty value restores the process-wide default.
func (r *Registry) SetTempDir(dir string) {
	r.tempDir = dir
}

// Identifiers returns every registered identifier in registration order.
func (r *Registry) Identifiers() []string {
	return append([]string(nil), r.order...)
}

// IndexDescription is the queryable surface of one catalog entry, used by
// visualizers and by tools that map files onto indexes.
type IndexDescription struct {
	Identifier       string
	Suffix           string
	Finished         bool
	ProvidedDirectly bool
	RecipeInputs     [][]string
}

// Describe returns the description of a registered index.
func (r *Registry) Describe(identifier string) IndexDescription {
	x := r.mustGet(identifier)
	desc := IndexDescription{
		Identifier:       x.identifier,
		Suffix:           x.suffix,
		Finished:         x.isFinished(),
		ProvidedDirectly: x.providedDirectly,
	}
	for i := range x.recipes {
		desc.RecipeInputs = append(desc.RecipeInputs, x.recipes[i].Inputs())
	}
	return desc
}

// Filenames returns the files currently recorded for an index; empty for an
// unresolved index.
func (r *Registry) Filenames(identifier string) []string {
	return append([]string(nil), r.mustGet(identifier).filenames...)
}

func (r *Registry) mustGet(identifier string) *index {
	x, ok := r.catalog[identifier]
	if !ok {
		panic(fmt.Sprintf("registry: unknown index identifier %q", identifier))
	}
	return x
}
