package nn

import (
	"github.com/born-ml/gnn/internal/tensor"
)

// AdjacencySet is an ordered list of sparse propagation operators, one per hop.
// Each operator covers a whole batch: for B graphs of N nodes it is (B*N, B*N).
type AdjacencySet []*tensor.SparseMatrix

// GraphBatch is the input and output of a GCN: the adjacency set travels
// alongside the (B, N, F) node features unchanged.
type GraphBatch[B tensor.Backend] struct {
	Adjacency AdjacencySet
	Features  *tensor.Tensor[float32, B]
}
