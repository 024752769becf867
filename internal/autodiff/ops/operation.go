// Package ops defines the differentiable operations recorded on the gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given the output gradient
//
// Supported operations:
//   - AddOp, SubOp, MulOp: element-wise arithmetic with broadcasting
//   - MulScalarOp: scaling by a constant
//   - MatMulOp, BatchMatMulOp: dense products (d(A@B)/dA = grad@Bᵀ, d(A@B)/dB = Aᵀ@grad)
//   - SparseMatMulOp: constant sparse operator times a dense tensor
//   - ReshapeOp, TransposeOp: layout changes
//   - ReLUOp, SoftmaxOp: activations
//   - SumOp, SumDimOp: reductions
//   - SegmentMaxOp, SegmentMeanOp: per-segment row reductions
package ops

import "github.com/born-ml/gnn/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// record holds the inputs and output shared by every operation.
type record struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func newRecord(output *tensor.RawTensor, inputs ...*tensor.RawTensor) record {
	return record{inputs: inputs, output: output}
}

// Inputs returns the input tensors.
func (r record) Inputs() []*tensor.RawTensor {
	return r.inputs
}

// Output returns the output tensor.
func (r record) Output() *tensor.RawTensor {
	return r.output
}
