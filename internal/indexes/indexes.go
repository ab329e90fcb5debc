package indexes

import (
	"context"

	"github.com/ruolin/vg/internal/ctxlog"
	"github.com/ruolin/vg/internal/params"
	"github.com/ruolin/vg/internal/registry"
)

// Identifiers of the registered indexes and input files.
const (
	ReferenceFASTA = "Reference FASTA"
	VCF            = "VCF"
	PhasedVCF      = "Phased VCF"
	InsertionFASTA = "Insertion Sequence FASTA"
	ReferenceGFA   = "Reference GFA"

	VGVarPaths    = "VG + Variant Paths"
	VGGraph       = "VG"
	XG            = "XG"
	GBWT          = "GBWT"
	NodeMapping   = "NodeMapping"
	PrunedVG      = "Pruned VG"
	HaploPrunedVG = "Haplotype-Pruned VG + NodeMapping"
	GCSALCP       = "GCSA + LCP"
)

// DefaultMapIndexes returns the indexes the read mapper needs.
func DefaultMapIndexes() []string {
	return []string{XG, GCSALCP}
}

// NewRegistry builds the registry of vg indexes and wires every recipe to
// the toolkit. Recipes capture the parameters record they were built with.
func NewRegistry(tk Toolkit, p params.IndexingParameters) *registry.Registry {
	r := registry.New()

	// data files
	r.RegisterIndex(ReferenceFASTA, "fasta")
	r.RegisterIndex(VCF, "vcf")
	r.RegisterIndex(PhasedVCF, "phased.vcf")
	r.RegisterIndex(InsertionFASTA, "insertions.fasta")
	r.RegisterIndex(ReferenceGFA, "gfa")

	// true indexes
	r.RegisterIndex(VGVarPaths, "varpaths.vg")
	r.RegisterIndex(VGGraph, "vg")
	r.RegisterIndex(XG, "xg")
	r.RegisterIndex(GBWT, "gbwt")
	r.RegisterIndex(NodeMapping, "mapping")
	r.RegisterIndex(PrunedVG, "pruned.vg")
	r.RegisterIndex(HaploPrunedVG, "haplopruned.vg")
	r.RegisterIndex(GCSALCP, "gcsa")

	constructOpts := ConstructOptions{
		GraphImpl:   p.MutableGraphImpl,
		MaxNodeSize: p.MaxNodeSize,
	}
	pruneOpts := PruneOptions{
		MaxNodeDegree:    p.PruningMaxNodeDegree,
		WalkLength:       p.PruningWalkLength,
		MaxEdgeCount:     p.PruningMaxEdgeCount,
		MinComponentSize: p.PruningMinComponentSize,
	}
	gcsaOpts := GCSAOptions{
		InitialKmerLength: p.GCSAInitialKmerLength,
		DoublingSteps:     p.GCSADoublingSteps,
	}

	// alias a phased VCF as an unphased one
	r.RegisterRecipe(VCF, []string{PhasedVCF},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			return inputs[0].Filenames, nil
		})

	// strip alt allele paths from a graph that has them
	r.RegisterRecipe(VGGraph, []string{VGVarPaths},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Stripping allele paths from VG.")
			out := prefix + "." + suffix
			if err := tk.StripAltPaths(ctx, inputs[0].Filenames[0], out); err != nil {
				return nil, err
			}
			return []string{out}, nil
		})

	r.RegisterRecipe(VGGraph, []string{ReferenceGFA},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Constructing VG graph from GFA input.")
			out := prefix + "." + suffix
			if err := tk.GraphFromGFA(ctx, constructOpts, inputs[0].Filenames[0], out); err != nil {
				return nil, err
			}
			return []string{out}, nil
		})

	// meta-recipe for construction from sequence input, with the insertion
	// FASTA optional and alt paths embedded only for the variant-path graph.
	// Inputs are ordered: FASTA, VCF[, Insertion FASTA].
	construct := func(altPaths bool) registry.RecipeFunc {
		opts := constructOpts
		opts.AltPaths = altPaths
		return func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Constructing VG graph from FASTA and VCF input.")
			var insertions []string
			if len(inputs) == 3 {
				insertions = inputs[2].Filenames
			}
			out := prefix + "." + suffix
			if err := tk.ConstructGraph(ctx, opts, inputs[0].Filenames, inputs[1].Filenames, insertions, out); err != nil {
				return nil, err
			}
			return []string{out}, nil
		}
	}

	r.RegisterRecipe(VGGraph, []string{ReferenceFASTA, VCF, InsertionFASTA}, construct(false))
	r.RegisterRecipe(VGGraph, []string{ReferenceFASTA, VCF}, construct(false))
	r.RegisterRecipe(VGVarPaths, []string{ReferenceFASTA, PhasedVCF, InsertionFASTA}, construct(true))
	r.RegisterRecipe(VGVarPaths, []string{ReferenceFASTA, PhasedVCF}, construct(true))

	r.RegisterRecipe(XG, []string{ReferenceGFA},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Constructing XG graph from GFA input.")
			out := prefix + "." + suffix
			if err := tk.XGFromGFA(ctx, inputs[0].Filenames[0], out); err != nil {
				return nil, err
			}
			return []string{out}, nil
		})

	r.RegisterRecipe(XG, []string{VGGraph},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Constructing XG graph from VG graph.")
			out := prefix + "." + suffix
			if err := tk.XGFromGraph(ctx, inputs[0].Filenames[0], out); err != nil {
				return nil, err
			}
			return []string{out}, nil
		})

	r.RegisterRecipe(NodeMapping, []string{VGGraph},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Initializing NodeMapping from VG.")
			out := prefix + "." + suffix
			if err := tk.InitNodeMapping(ctx, inputs[0].Filenames[0], out); err != nil {
				return nil, err
			}
			return []string{out}, nil
		})

	r.RegisterRecipe(GBWT, []string{VGVarPaths, PhasedVCF},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Constructing GBWT from VG graph and phased VCF input.")
			out := prefix + "." + suffix
			if err := tk.BuildGBWT(ctx, inputs[0].Filenames[0], inputs[1].Filenames[0], out); err != nil {
				return nil, err
			}
			return []string{out}, nil
		})

	r.RegisterRecipe(PrunedVG, []string{VGGraph, XG},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Pruning complex regions of VG to prepare for GCSA indexing.")
			out := prefix + "." + suffix
			if err := tk.PruneGraph(ctx, pruneOpts, inputs[0].Filenames[0], inputs[1].Filenames[0], out); err != nil {
				return nil, err
			}
			return []string{out}, nil
		})

	r.RegisterRecipe(HaploPrunedVG, []string{VGGraph, XG, GBWT, NodeMapping},
		func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
			progress(ctx, p, "Pruning complex regions of VG to prepare for GCSA indexing with GBWT unfolding.")
			outGraph := prefix + "." + suffix
			outMapping := outGraph + ".mapping"
			err := tk.PruneWithHaplotypes(ctx, pruneOpts,
				inputs[0].Filenames[0], inputs[1].Filenames[0],
				inputs[2].Filenames[0], inputs[3].Filenames[0],
				outGraph, outMapping)
			if err != nil {
				return nil, err
			}
			return []string{outGraph, outMapping}, nil
		})

	// meta-recipe for GCSA indexing with or without unfolded input; an input
	// with a mapping sidecar takes the unfolded code path
	gcsa := func(ctx context.Context, inputs []registry.IndexView, prefix, suffix string) ([]string, error) {
		progress(ctx, p, "Constructing GCSA/LCP indexes.")
		files := inputs[0].Filenames
		mapping := ""
		if len(files) == 2 {
			mapping = files[1]
		}
		outGCSA := prefix + "." + suffix
		outLCP := outGCSA + ".lcp"
		if err := tk.BuildGCSA(ctx, gcsaOpts, files[:1], mapping, outGCSA, outLCP); err != nil {
			return nil, err
		}
		return []string{outGCSA, outLCP}, nil
	}

	r.RegisterRecipe(GCSALCP, []string{HaploPrunedVG}, gcsa)
	r.RegisterRecipe(GCSALCP, []string{PrunedVG}, gcsa)

	return r
}

func progress(ctx context.Context, p params.IndexingParameters, msg string) {
	if p.Verbose {
		ctxlog.FromContext(ctx).Info(msg)
	}
}
