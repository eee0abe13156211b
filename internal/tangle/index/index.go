// Package index builds the reference index: the name -> []Block map used
// to resolve <<name>> references across all blocks discovered across all
// scanned documents.
package index

import "github.com/eykd/tangle/internal/tangle/model"

// Build constructs a ReferenceIndex from blocks, in the order given. Callers
// are responsible for supplying blocks in a deterministic order (document-list
// order, then intra-document discovery order) so that fan-in concatenation
// order is stable across runs.
func Build(blocks []*model.Block) model.ReferenceIndex {
	idx := make(model.ReferenceIndex)
	for _, b := range blocks {
		idx.Add(b)
	}
	return idx
}
