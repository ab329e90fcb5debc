package registry

import "context"

// RecipeFunc produces the files for one index from the files of its inputs.
// It receives read-only views of the input indexes in the order the recipe
// declared them, the filename prefix to write under, and the suffix of the
// index being produced. The returned filenames are recorded on the index
// verbatim; a recipe that merely aliases an input may return the input's
// filenames unchanged and ignore the prefix.
type RecipeFunc func(ctx context.Context, inputs []IndexView, prefix, suffix string) ([]string, error)

// IndexView is a read-only snapshot of an index handed to recipe functions.
// Recipes never receive the registry's own records, so a recipe cannot alias
// an input while the executor writes the result back.
type IndexView struct {
	Identifier string
	Suffix     string
	Filenames  []string
}

// Recipe is one way of producing an index from an ordered tuple of other
// indexes. Its priority is its registration order on the producing index,
// with 0 the most preferred.
type Recipe struct {
	inputs []string
	exec   RecipeFunc
}

// Inputs returns the identifiers of the recipe's inputs in invocation order.
// Duplicates are allowed and meaningful to the recipe function.
func (r *Recipe) Inputs() []string {
	return append([]string(nil), r.inputs...)
}

// index is a single registered index, possibly spanning several files (a
// primary file plus sidecars).
type index struct {
	identifier string
	suffix     string
	filenames  []string
	recipes    []Recipe

	// providedDirectly is true when the filenames came from Provide rather
	// than from executing a recipe.
	providedDirectly bool
}

// isFinished reports whether the index has files, either provided or built.
func (x *index) isFinished() bool {
	return len(x.filenames) > 0
}

func (x *index) view() IndexView {
	return IndexView{
		Identifier: x.identifier,
		Suffix:     x.suffix,
		Filenames:  append([]string(nil), x.filenames...),
	}
}
