package indexes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruolin/vg/internal/params"
	"github.com/ruolin/vg/internal/registry"
)

// fakeToolkit records every builder call and writes placeholder files where
// the real builders would write indexes.
type fakeToolkit struct {
	calls []string

	constructOpts ConstructOptions
	pruneOpts     PruneOptions
	gcsaOpts      GCSAOptions
}

func (f *fakeToolkit) record(call string, outs ...string) error {
	f.calls = append(f.calls, call)
	for _, out := range outs {
		if err := os.WriteFile(out, []byte(call), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeToolkit) ConstructGraph(ctx context.Context, opts ConstructOptions, fastas, vcfs, insertions []string, out string) error {
	f.constructOpts = opts
	return f.record("ConstructGraph", out)
}

func (f *fakeToolkit) GraphFromGFA(ctx context.Context, opts ConstructOptions, gfa, out string) error {
	return f.record("GraphFromGFA", out)
}

func (f *fakeToolkit) StripAltPaths(ctx context.Context, graph, out string) error {
	return f.record("StripAltPaths", out)
}

func (f *fakeToolkit) XGFromGFA(ctx context.Context, gfa, out string) error {
	return f.record("XGFromGFA", out)
}

func (f *fakeToolkit) XGFromGraph(ctx context.Context, graph, out string) error {
	return f.record("XGFromGraph", out)
}

func (f *fakeToolkit) InitNodeMapping(ctx context.Context, graph, out string) error {
	return f.record("InitNodeMapping", out)
}

func (f *fakeToolkit) BuildGBWT(ctx context.Context, graph, phasedVCF, out string) error {
	return f.record("BuildGBWT", out)
}

func (f *fakeToolkit) PruneGraph(ctx context.Context, opts PruneOptions, graph, xg, out string) error {
	f.pruneOpts = opts
	return f.record("PruneGraph", out)
}

func (f *fakeToolkit) PruneWithHaplotypes(ctx context.Context, opts PruneOptions, graph, xg, gbwt, mapping, outGraph, outMapping string) error {
	f.pruneOpts = opts
	return f.record("PruneWithHaplotypes", outGraph, outMapping)
}

func (f *fakeToolkit) BuildGCSA(ctx context.Context, opts GCSAOptions, graphs []string, mapping, outGCSA, outLCP string) error {
	f.gcsaOpts = opts
	return f.record("BuildGCSA", outGCSA, outLCP)
}

func countCalls(calls []string, name string) int {
	n := 0
	for _, call := range calls {
		if call == name {
			n++
		}
	}
	return n
}

// stepFor returns the chosen recipe for an identifier, or -1.
func stepFor(steps []registry.PlanStep, identifier string) int {
	for _, step := range steps {
		if step.Identifier == identifier {
			return step.Recipe
		}
	}
	return -1
}

func newTestRegistry(t *testing.T, tk Toolkit) *registry.Registry {
	t.Helper()
	r := NewRegistry(tk, params.Default())
	r.SetTempDir(t.TempDir())
	r.SetOutputPrefix(filepath.Join(t.TempDir(), "out"))
	return r
}

func provideFile(t *testing.T, r *registry.Registry, identifier, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(identifier), 0o644))
	r.Provide(identifier, path)
	return path
}

func TestMapIndexesFromPhasedVCF(t *testing.T) {
	tk := &fakeToolkit{}
	r := newTestRegistry(t, tk)

	provideFile(t, r, ReferenceFASTA, "ref.fasta")
	provideFile(t, r, PhasedVCF, "sample.phased.vcf")

	steps, err := r.Plan(DefaultMapIndexes()...)
	require.NoError(t, err)

	// with phased input available, GCSA goes through the haplotype-pruned
	// graph, which pulls in the GBWT and NodeMapping
	assert.Equal(t, 1, stepFor(steps, VGVarPaths), "variant-path graph without insertions")
	assert.Equal(t, 0, stepFor(steps, VGGraph), "VG stripped from the variant-path graph")
	assert.Equal(t, 1, stepFor(steps, XG), "XG from graph, no GFA on hand")
	assert.Equal(t, 0, stepFor(steps, GBWT))
	assert.Equal(t, 0, stepFor(steps, NodeMapping))
	assert.Equal(t, 0, stepFor(steps, HaploPrunedVG))
	assert.Equal(t, 0, stepFor(steps, GCSALCP))
	assert.Len(t, steps, 7)
	assert.Equal(t, -1, stepFor(steps, PrunedVG), "plain pruning not needed")

	require.NoError(t, r.Make(context.Background(), DefaultMapIndexes()...))

	// end products exist under the output prefix
	xgFiles := r.Filenames(XG)
	require.Len(t, xgFiles, 1)
	assert.FileExists(t, xgFiles[0])

	gcsaFiles := r.Filenames(GCSALCP)
	require.Len(t, gcsaFiles, 2)
	assert.FileExists(t, gcsaFiles[0])
	assert.FileExists(t, gcsaFiles[1])
	assert.Equal(t, gcsaFiles[0]+".lcp", gcsaFiles[1])

	// intermediates were cleaned up
	for _, id := range []string{VGVarPaths, VGGraph, GBWT, NodeMapping, HaploPrunedVG} {
		for _, file := range r.Filenames(id) {
			assert.NoFileExists(t, file, "intermediate %s should be reaped", id)
		}
	}

	assert.Equal(t, 1, countCalls(tk.calls, "PruneWithHaplotypes"))
	assert.Equal(t, 0, countCalls(tk.calls, "PruneGraph"))
	assert.Equal(t, 1, countCalls(tk.calls, "BuildGCSA"))

	// parameters flowed through to the builders
	p := params.Default()
	assert.Equal(t, p.PruningMaxNodeDegree, tk.pruneOpts.MaxNodeDegree)
	assert.Equal(t, p.GCSADoublingSteps, tk.gcsaOpts.DoublingSteps)
}

func TestGCSAFallsBackWithoutPhasing(t *testing.T) {
	tk := &fakeToolkit{}
	r := newTestRegistry(t, tk)

	provideFile(t, r, ReferenceFASTA, "ref.fasta")
	provideFile(t, r, VCF, "sample.vcf")

	steps, err := r.Plan(GCSALCP)
	require.NoError(t, err)

	// no phased VCF means no GBWT: the planner backtracks off the haplotype
	// pruning path onto plain pruning, and off the variant-path graph onto
	// direct construction
	assert.Equal(t, 3, stepFor(steps, VGGraph), "construct from FASTA and VCF directly")
	assert.Equal(t, 1, stepFor(steps, XG))
	assert.Equal(t, 0, stepFor(steps, PrunedVG))
	assert.Equal(t, 1, stepFor(steps, GCSALCP))
	assert.Len(t, steps, 4)

	require.NoError(t, r.Make(context.Background(), GCSALCP))

	assert.Equal(t, 1, countCalls(tk.calls, "ConstructGraph"))
	assert.Equal(t, 1, countCalls(tk.calls, "PruneGraph"))
	assert.Equal(t, 0, countCalls(tk.calls, "PruneWithHaplotypes"))
	assert.Equal(t, 0, countCalls(tk.calls, "BuildGBWT"))
	assert.False(t, tk.constructOpts.AltPaths)
}

func TestVCFAliasesPhasedVCF(t *testing.T) {
	tk := &fakeToolkit{}
	r := newTestRegistry(t, tk)

	phased := provideFile(t, r, PhasedVCF, "sample.phased.vcf")

	require.NoError(t, r.Make(context.Background(), VCF))

	// the alias recipe reuses the phased file verbatim
	assert.Equal(t, []string{phased}, r.Filenames(VCF))
	assert.Empty(t, tk.calls)
	assert.FileExists(t, phased)
}

func TestInsufficientInputNamesTarget(t *testing.T) {
	tk := &fakeToolkit{}
	r := newTestRegistry(t, tk)

	_, err := r.Plan(XG)
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrInsufficientInput))

	var insufficient *registry.InsufficientInputError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, XG, insufficient.Target)
}

func TestRegistryGraphIsAcyclic(t *testing.T) {
	tk := &fakeToolkit{}
	r := NewRegistry(tk, params.Default())

	order, err := r.DependencyOrder()
	require.NoError(t, err)
	assert.Len(t, order, len(r.Identifiers()))
}
