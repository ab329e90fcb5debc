package indexes

import (
	"context"

	"github.com/ruolin/vg/internal/params"
)

// ConstructOptions configure graph construction from sequence input.
type ConstructOptions struct {
	GraphImpl   params.GraphImpl
	MaxNodeSize int
	// AltPaths embeds a path per alternate allele in the constructed graph.
	AltPaths bool
}

// PruneOptions configure complex-region pruning.
type PruneOptions struct {
	MaxNodeDegree    int
	WalkLength       int
	MaxEdgeCount     int
	MinComponentSize int
}

// GCSAOptions configure succinct-index construction.
type GCSAOptions struct {
	InitialKmerLength int
	DoublingSteps     int
}

// Toolkit is the set of index builders the recipes delegate to. Real
// implementations wrap the graph-construction and indexing code or shell out
// to it; tests substitute lightweight fakes. Every method writes its result
// to the given output path(s) and reads inputs from paths.
type Toolkit interface {
	// ConstructGraph builds a variation graph from FASTA and VCF input,
	// optionally with insertion sequences.
	ConstructGraph(ctx context.Context, opts ConstructOptions, fastas, vcfs, insertions []string, out string) error

	// GraphFromGFA builds a variation graph from GFA input.
	GraphFromGFA(ctx context.Context, opts ConstructOptions, gfa, out string) error

	// StripAltPaths removes embedded alternate-allele paths from a graph.
	StripAltPaths(ctx context.Context, graph, out string) error

	// XGFromGFA builds the succinct XG representation directly from GFA.
	XGFromGFA(ctx context.Context, gfa, out string) error

	// XGFromGraph builds the succinct XG representation from a graph.
	XGFromGraph(ctx context.Context, graph, out string) error

	// InitNodeMapping writes a fresh node mapping sized to the graph's
	// maximum node id.
	InitNodeMapping(ctx context.Context, graph, out string) error

	// BuildGBWT indexes the haplotypes of a phased VCF against a graph with
	// embedded variant paths.
	BuildGBWT(ctx context.Context, graph, phasedVCF, out string) error

	// PruneGraph removes complex regions, restoring edges on embedded paths.
	PruneGraph(ctx context.Context, opts PruneOptions, graph, xg, out string) error

	// PruneWithHaplotypes removes complex regions and unfolds them back out
	// of the haplotype index, updating the node mapping as it goes.
	PruneWithHaplotypes(ctx context.Context, opts PruneOptions, graph, xg, gbwt, mapping, outGraph, outMapping string) error

	// BuildGCSA builds the GCSA and LCP indexes over pruned graph input. An
	// empty mapping path skips the unfolded code path.
	BuildGCSA(ctx context.Context, opts GCSAOptions, graphs []string, mapping, outGCSA, outLCP string) error
}
