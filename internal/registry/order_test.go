package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireRespectsRecipeEdges asserts every recipe input precedes its
// producer in the order.
func requireRespectsRecipeEdges(t *testing.T, r *Registry, order []string) {
	t.Helper()
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, id := range r.Identifiers() {
		for _, inputs := range r.Describe(id).RecipeInputs {
			for _, input := range inputs {
				assert.Less(t, pos[input], pos[id],
					"input %q must precede %q", input, id)
			}
		}
	}
}

func TestDependencyOrder(t *testing.T) {
	t.Run("covers every identifier exactly once", func(t *testing.T) {
		r := New()
		r.RegisterIndex("A", "a")
		r.RegisterIndex("B", "b")
		r.RegisterIndex("C", "c")
		r.RegisterIndex("D", "d")
		r.RegisterRecipe("B", []string{"A"}, aliasRecipe)
		r.RegisterRecipe("C", []string{"B"}, aliasRecipe)
		r.RegisterRecipe("D", []string{"B", "C"}, aliasRecipe)

		order, err := r.DependencyOrder()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, order)
		requireRespectsRecipeEdges(t, r, order)
	})

	t.Run("diamond with shared input counts each edge once", func(t *testing.T) {
		r := New()
		r.RegisterIndex("root", "r")
		r.RegisterIndex("left", "l")
		r.RegisterIndex("right", "ri")
		r.RegisterIndex("sink", "s")
		r.RegisterRecipe("left", []string{"root"}, aliasRecipe)
		r.RegisterRecipe("right", []string{"root"}, aliasRecipe)
		// two recipes sharing an input, plus a duplicated input
		r.RegisterRecipe("sink", []string{"left", "right"}, aliasRecipe)
		r.RegisterRecipe("sink", []string{"left", "left"}, aliasRecipe)

		order, err := r.DependencyOrder()
		require.NoError(t, err)
		assert.Len(t, order, 4)
		requireRespectsRecipeEdges(t, r, order)
	})

	t.Run("deterministic for a fixed registration order", func(t *testing.T) {
		build := func() *Registry {
			r := New()
			r.RegisterIndex("A", "a")
			r.RegisterIndex("B", "b")
			r.RegisterIndex("C", "c")
			r.RegisterRecipe("C", []string{"A", "B"}, aliasRecipe)
			return r
		}
		first, err := build().DependencyOrder()
		require.NoError(t, err)
		second, err := build().DependencyOrder()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("cycle is rejected", func(t *testing.T) {
		r := New()
		r.RegisterIndex("P", "p")
		r.RegisterIndex("Q", "q")
		r.RegisterRecipe("P", []string{"Q"}, aliasRecipe)
		r.RegisterRecipe("Q", []string{"P"}, aliasRecipe)

		_, err := r.DependencyOrder()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCycle))

		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.NotEmpty(t, cycleErr.Involved)
	})

	t.Run("cycle surfaces from Make", func(t *testing.T) {
		r := New()
		r.RegisterIndex("P", "p")
		r.RegisterIndex("Q", "q")
		r.RegisterRecipe("P", []string{"Q"}, aliasRecipe)
		r.RegisterRecipe("Q", []string{"P"}, aliasRecipe)

		err := r.Make(context.Background(), "P")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCycle))
	})
}
