package nn

import (
	"strconv"

	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// PoolMode selects the segment reduction used by SegmentPool.
type PoolMode int

const (
	// PoolMax takes the element-wise maximum over each graph's nodes.
	PoolMax PoolMode = iota
	// PoolMean averages each graph's nodes.
	PoolMean
)

// String returns "max" or "mean".
func (m PoolMode) String() string {
	switch m {
	case PoolMax:
		return "max"
	case PoolMean:
		return "mean"
	default:
		return "PoolMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParsePoolMode accepts exactly "max" and "mean".
func ParsePoolMode(s string) (PoolMode, error) {
	switch s {
	case "max":
		return PoolMax, nil
	case "mean":
		return PoolMean, nil
	default:
		return 0, errors.Wrapf(ErrInvalidPoolMode, "%q (want \"max\" or \"mean\")", s)
	}
}

// SegmentIDs returns the segment id of every node of a batch laid out graph by
// graph: nodesPerGraph copies of 0, then of 1, up to batchSize-1.
//
//	SegmentIDs(3, 2) == [0 0 1 1 2 2]
func SegmentIDs(batchSize, nodesPerGraph int) []int32 {
	ids := make([]int32, 0, batchSize*nodesPerGraph)
	for b := 0; b < batchSize; b++ {
		for n := 0; n < nodesPerGraph; n++ {
			ids = append(ids, int32(b))
		}
	}
	return ids
}

// SegmentPool reduces the nodes of each graph in a batch to one feature row.
// It has no trainable parameters.
type SegmentPool[B tensor.Backend] struct {
	batchSize int
	mode      PoolMode
	backend   B

	nodes    int
	features int
	built    bool
}

// NewSegmentPool creates a pooling layer for batches of batchSize graphs.
func NewSegmentPool[B tensor.Backend](batchSize int, mode PoolMode, backend B) (*SegmentPool[B], error) {
	if mode != PoolMax && mode != PoolMean {
		return nil, errors.Wrapf(ErrInvalidPoolMode, "%s", mode)
	}
	if batchSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidBatchSize, "%d", batchSize)
	}
	return &SegmentPool[B]{batchSize: batchSize, mode: mode, backend: backend}, nil
}

// Build records the nodes per graph and the feature count from the first input
// shape: (B, N, F) directly, or (B*N, F) with N = rows / batchSize.
func (p *SegmentPool[B]) Build(inputShape tensor.Shape) {
	if p.built {
		return
	}
	switch inputShape.Rank() {
	case 3:
		p.nodes, p.features = inputShape[1], inputShape[2]
	case 2:
		p.nodes, p.features = inputShape[0]/p.batchSize, inputShape[1]
	default:
		exceptions.Panicf("segment pool: expected (batch, nodes, features) or (batch*nodes, features), got %v", inputShape)
	}
	p.built = true
	klog.V(1).Infof("segment pool built: mode %s, batch %d, %d node(s) per graph, %d feature(s)",
		p.mode, p.batchSize, p.nodes, p.features)
}

// Forward returns one (batchSize, F) row per graph.
func (p *SegmentPool[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	p.Build(shape)

	flat := x
	if shape.Rank() == 3 {
		flat = x.Reshape(shape[0]*shape[1], shape[2])
	}
	ids := SegmentIDs(p.batchSize, p.nodes)
	if p.mode == PoolMean {
		return flat.SegmentMean(ids, p.batchSize)
	}
	return flat.SegmentMax(ids, p.batchSize)
}

// OutputShape returns (batchSize, F).
func (p *SegmentPool[B]) OutputShape(inputShape tensor.Shape) tensor.Shape {
	return tensor.Shape{p.batchSize, inputShape[inputShape.Rank()-1]}
}

// Mode returns the pooling mode.
func (p *SegmentPool[B]) Mode() PoolMode { return p.mode }

// BatchSize returns the number of graphs per batch.
func (p *SegmentPool[B]) BatchSize() int { return p.batchSize }

// Parameters implements Module. SegmentPool has none.
func (p *SegmentPool[B]) Parameters() []*Parameter[B] { return nil }
