package ops

import (
	"github.com/born-ml/gnn/internal/tensor"
)

// SumOp represents a full reduction to a scalar.
//
// Backward: every input element receives the scalar output gradient.
type SumOp struct {
	record
}

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{newRecord(output, x)}
}

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{broadcastTo(outputGrad, op.inputs[0].Shape(), backend)}
}

// SumDimOp represents a reduction sum along a dimension.
//
// Backward:
//
//	grad_x = broadcast(grad_y, x.shape)
//
// If keepDim=false the reduced dimension is re-inserted before broadcasting.
type SumDimOp struct {
	record
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp. dim must already be normalised.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{record: newRecord(output, x), dim: dim, keepDim: keepDim}
}

// Backward computes the input gradient for sum reduction.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	xShape := op.inputs[0].Shape()
	grad := outputGrad
	if !op.keepDim {
		kept := xShape.Clone()
		kept[op.dim] = 1
		grad = backend.Reshape(grad, kept)
	}
	return []*tensor.RawTensor{broadcastTo(grad, xShape, backend)}
}
