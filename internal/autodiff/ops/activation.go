package ops

import (
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// ReLUOp represents a ReLU activation: output = max(0, x).
//
// Backward pass:
//   - d(ReLU(x))/dx = 1 if x > 0, else 0
type ReLUOp struct {
	record
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{newRecord(output, input)}
}

// Backward multiplies the output gradient by the (x > 0) mask.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0]
	mask := tensor.MustNewRaw(input.Shape(), input.DType(), backend.Device())
	switch input.DType() {
	case tensor.Float32:
		positiveMask(mask.AsFloat32(), input.AsFloat32())
	case tensor.Float64:
		positiveMask(mask.AsFloat64(), input.AsFloat64())
	default:
		exceptions.Panicf("relu backward: unsupported dtype %s (only float32/float64 supported)", input.DType())
	}
	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

func positiveMask[T float32 | float64](mask, x []T) {
	for i, v := range x {
		if v > 0 {
			mask[i] = 1
		}
	}
}

// SoftmaxOp represents softmax along one dimension.
//
// Backward:
//
//	∂L/∂x = y * (∂L/∂y - Σ_dim(∂L/∂y * y))
//
// where y is the cached softmax output and the sum keeps the reduced dimension
// for broadcasting.
type SoftmaxOp struct {
	record
	dim int
}

// NewSoftmaxOp creates a new SoftmaxOp. dim must already be normalised.
func NewSoftmaxOp(input, output *tensor.RawTensor, dim int) *SoftmaxOp {
	return &SoftmaxOp{record: newRecord(output, input), dim: dim}
}

// Backward computes the gradient with respect to the input.
func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	dot := backend.SumDim(backend.Mul(outputGrad, y), op.dim, true)
	return []*tensor.RawTensor{backend.Mul(y, backend.Sub(outputGrad, dot))}
}
