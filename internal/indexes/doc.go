// Package indexes assembles the registry of vg index files: the catalog of
// identifiers and filename suffixes, and the recipes that derive each index
// from the others. The heavy lifting of graph construction, pruning, and
// succinct-index building is delegated to a Toolkit implementation; the
// recipes only decide what gets built from what, where its files go, and
// which tuning parameters apply.
package indexes
