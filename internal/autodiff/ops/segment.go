package ops

import (
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// SegmentMaxOp represents a per-segment element-wise max over the rows of a 2D
// tensor.
//
// Backward pass:
//   - For every (segment, column) the gradient goes to the first row of the
//     segment whose value equals the max; every other row gets zero.
type SegmentMaxOp struct {
	record
	segmentIDs []int32
}

// NewSegmentMaxOp creates a new SegmentMaxOp.
func NewSegmentMaxOp(x, output *tensor.RawTensor, segmentIDs []int32) *SegmentMaxOp {
	return &SegmentMaxOp{record: newRecord(output, x), segmentIDs: segmentIDs}
}

// Backward routes the output gradient to the arg-max rows.
func (op *SegmentMaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	grad := tensor.MustNewRaw(x.Shape(), x.DType(), backend.Device())
	cols := x.Shape()[1]
	switch x.DType() {
	case tensor.Float32:
		segmentMaxGrad(grad.AsFloat32(), x.AsFloat32(), op.output.AsFloat32(), outputGrad.AsFloat32(), op.segmentIDs, cols)
	case tensor.Float64:
		segmentMaxGrad(grad.AsFloat64(), x.AsFloat64(), op.output.AsFloat64(), outputGrad.AsFloat64(), op.segmentIDs, cols)
	default:
		exceptions.Panicf("segmentMax backward: unsupported dtype %s (only float32/float64 supported)", x.DType())
	}
	return []*tensor.RawTensor{grad}
}

func segmentMaxGrad[T float32 | float64](grad, x, out, outGrad []T, ids []int32, cols int) {
	taken := make([]bool, len(out))
	for r, id := range ids {
		seg := int(id)
		for j := 0; j < cols; j++ {
			o := seg*cols + j
			if !taken[o] && x[r*cols+j] == out[o] {
				grad[r*cols+j] = outGrad[o]
				taken[o] = true
			}
		}
	}
}

// SegmentMeanOp represents a per-segment mean over the rows of a 2D tensor.
//
// Backward pass:
//   - grad_x[r] = outputGrad[segment(r)] / count(segment(r))
type SegmentMeanOp struct {
	record
	segmentIDs []int32
	counts     []int
}

// NewSegmentMeanOp creates a new SegmentMeanOp.
func NewSegmentMeanOp(x, output *tensor.RawTensor, segmentIDs []int32) *SegmentMeanOp {
	counts := make([]int, output.Shape()[0])
	for _, id := range segmentIDs {
		counts[id]++
	}
	return &SegmentMeanOp{record: newRecord(output, x), segmentIDs: segmentIDs, counts: counts}
}

// Backward spreads each segment's gradient evenly over its rows.
func (op *SegmentMeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	grad := tensor.MustNewRaw(x.Shape(), x.DType(), backend.Device())
	cols := x.Shape()[1]
	switch x.DType() {
	case tensor.Float32:
		segmentMeanGrad(grad.AsFloat32(), outputGrad.AsFloat32(), op.segmentIDs, op.counts, cols)
	case tensor.Float64:
		segmentMeanGrad(grad.AsFloat64(), outputGrad.AsFloat64(), op.segmentIDs, op.counts, cols)
	default:
		exceptions.Panicf("segmentMean backward: unsupported dtype %s (only float32/float64 supported)", x.DType())
	}
	return []*tensor.RawTensor{grad}
}

func segmentMeanGrad[T float32 | float64](grad, outGrad []T, ids []int32, counts []int, cols int) {
	for r, id := range ids {
		seg := int(id)
		n := T(counts[seg])
		for j := 0; j < cols; j++ {
			grad[r*cols+j] = outGrad[seg*cols+j] / n
		}
	}
}
