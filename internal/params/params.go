// Package params holds the tuning knobs for index construction as an
// immutable configuration record. The record is built once, from defaults
// optionally overlaid with an HCL parameters file, and recipes capture the
// copy they were constructed with.
package params

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// GraphImpl selects the mutable graph implementation used while building.
type GraphImpl string

const (
	HashGraph   GraphImpl = "hash"
	ODGI        GraphImpl = "odgi"
	PackedGraph GraphImpl = "packed"
	VG          GraphImpl = "vg"
)

// defaults matching the succinct-index library's construction parameters
const (
	gcsaMaxKmerLength        = 16
	gcsaDefaultDoublingSteps = 4
)

// IndexingParameters are the tuning knobs threaded through the index
// recipes.
type IndexingParameters struct {
	MutableGraphImpl        GraphImpl
	MaxNodeSize             int
	PruningMaxNodeDegree    int
	PruningWalkLength       int
	PruningMaxEdgeCount     int
	PruningMinComponentSize int
	GCSAInitialKmerLength   int
	GCSADoublingSteps       int
	Verbose                 bool
}

// Default returns the stock parameters.
func Default() IndexingParameters {
	return IndexingParameters{
		MutableGraphImpl:        HashGraph,
		MaxNodeSize:             32,
		PruningMaxNodeDegree:    128,
		PruningWalkLength:       24,
		PruningMaxEdgeCount:     3,
		PruningMinComponentSize: 33,
		GCSAInitialKmerLength:   gcsaMaxKmerLength,
		GCSADoublingSteps:       gcsaDefaultDoublingSteps,
	}
}

// fileSchema is the HCL shape of a parameters file. Every attribute is
// optional; unset attributes keep their defaults.
type fileSchema struct {
	MutableGraphImpl        hcl.Expression `hcl:"mutable_graph_impl,optional"`
	MaxNodeSize             *int           `hcl:"max_node_size,optional"`
	PruningMaxNodeDegree    *int           `hcl:"pruning_max_node_degree,optional"`
	PruningWalkLength       *int           `hcl:"pruning_walk_length,optional"`
	PruningMaxEdgeCount     *int           `hcl:"pruning_max_edge_count,optional"`
	PruningMinComponentSize *int           `hcl:"pruning_min_component_size,optional"`
	GCSAInitialKmerLength   *int           `hcl:"gcsa_initial_kmer_length,optional"`
	GCSADoublingSteps       *int           `hcl:"gcsa_doubling_steps,optional"`
	Verbose                 *bool          `hcl:"verbose,optional"`
}

// Load reads an HCL parameters file and overlays it on the defaults.
func Load(path string) (IndexingParameters, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return IndexingParameters{}, err
	}
	return Parse(src, path)
}

// Parse decodes HCL source and overlays it on the defaults.
func Parse(src []byte, filename string) (IndexingParameters, error) {
	p := Default()

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return IndexingParameters{}, diags
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return IndexingParameters{}, diags
	}

	impl, err := decodeGraphImpl(schema.MutableGraphImpl)
	if err != nil {
		return IndexingParameters{}, err
	}
	if impl != "" {
		p.MutableGraphImpl = impl
	}

	if schema.MaxNodeSize != nil {
		p.MaxNodeSize = *schema.MaxNodeSize
	}
	if schema.PruningMaxNodeDegree != nil {
		p.PruningMaxNodeDegree = *schema.PruningMaxNodeDegree
	}
	if schema.PruningWalkLength != nil {
		p.PruningWalkLength = *schema.PruningWalkLength
	}
	if schema.PruningMaxEdgeCount != nil {
		p.PruningMaxEdgeCount = *schema.PruningMaxEdgeCount
	}
	if schema.PruningMinComponentSize != nil {
		p.PruningMinComponentSize = *schema.PruningMinComponentSize
	}
	if schema.GCSAInitialKmerLength != nil {
		p.GCSAInitialKmerLength = *schema.GCSAInitialKmerLength
	}
	if schema.GCSADoublingSteps != nil {
		p.GCSADoublingSteps = *schema.GCSADoublingSteps
	}
	if schema.Verbose != nil {
		p.Verbose = *schema.Verbose
	}
	return p, nil
}

// decodeGraphImpl statically evaluates the mutable_graph_impl expression.
// It returns the empty string when the attribute was not set.
func decodeGraphImpl(expr hcl.Expression) (GraphImpl, error) {
	if expr == nil {
		return "", nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", nil
	}
	if val.Type() != cty.String {
		return "", fmt.Errorf("params: mutable_graph_impl must be a string, got %s", val.Type().FriendlyName())
	}
	switch impl := GraphImpl(val.AsString()); impl {
	case HashGraph, ODGI, PackedGraph, VG:
		return impl, nil
	default:
		return "", fmt.Errorf("params: unrecognized mutable graph implementation %q", val.AsString())
	}
}
