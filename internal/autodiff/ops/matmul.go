package ops

import "github.com/born-ml/gnn/internal/tensor"

// MatMulOp represents a matrix multiplication operation: output = a @ b.
//
// Backward pass:
//   - d(A@B)/dA = outputGrad @ B^T
//   - d(A@B)/dB = A^T @ outputGrad
type MatMulOp struct {
	record
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{newRecord(output, a, b)}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := backend.MatMul(outputGrad, backend.Transpose(b, 1, 0))
	gradB := backend.MatMul(backend.Transpose(a, 1, 0), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}

// BatchMatMulOp represents a batched product: output[i] = a[i] @ b[i].
//
// Backward pass is MatMulOp's applied per batch, with the last two axes
// transposed.
type BatchMatMulOp struct {
	record
}

// NewBatchMatMulOp creates a new BatchMatMulOp.
func NewBatchMatMulOp(a, b, output *tensor.RawTensor) *BatchMatMulOp {
	return &BatchMatMulOp{newRecord(output, a, b)}
}

// Backward computes input gradients for the batched product.
func (op *BatchMatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := backend.BatchMatMul(outputGrad, backend.Transpose(b, swapLast(len(b.Shape()))...))
	gradB := backend.BatchMatMul(backend.Transpose(a, swapLast(len(a.Shape()))...), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}

// swapLast returns the permutation that swaps the last two axes.
func swapLast(ndim int) []int {
	axes := make([]int, ndim)
	for i := range axes {
		axes[i] = i
	}
	axes[ndim-2], axes[ndim-1] = ndim-1, ndim-2
	return axes
}

// SparseMatMulOp represents output = A @ x with a constant sparse A.
//
// Backward pass:
//   - grad_x = A^T @ outputGrad
//
// A is not a tensor and receives no gradient.
type SparseMatMulOp struct {
	record
	a  *tensor.SparseMatrix
	aT *tensor.SparseMatrix
}

// NewSparseMatMulOp creates a new SparseMatMulOp.
func NewSparseMatMulOp(a *tensor.SparseMatrix, x, output *tensor.RawTensor) *SparseMatMulOp {
	return &SparseMatMulOp{record: newRecord(output, x), a: a}
}

// Backward computes the gradient for the dense operand.
func (op *SparseMatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	if op.aT == nil {
		op.aT = op.a.T()
	}
	return []*tensor.RawTensor{backend.SparseMatMul(op.aT, outputGrad)}
}
