package tensor

import "github.com/gomlx/exceptions"

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// MulScalar multiplies every element by s.
func (t *Tensor[T, B]) MulScalar(s float64) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, s), t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// BatchMatMul performs batched matrix multiplication: (B, M, K) @ (B, K, N) → (B, M, N).
func (t *Tensor[T, B]) BatchMatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.BatchMatMul(t.raw, other.raw), t.backend)
}

// SparseMatMul left-multiplies the tensor by a sparse matrix: a @ t.
//
//	adj := tensor.Identity(4)
//	x := tensor.Randn[float32](Shape{4, 2}, backend)
//	y := x.SparseMatMul(adj) // Shape: (4, 2)
func (t *Tensor[T, B]) SparseMatMul(a *SparseMatrix) *Tensor[T, B] {
	return New[T, B](t.backend.SparseMatMul(a, t.raw), t.backend)
}

// Reshape returns a tensor with the same data but a different shape.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the dimensions. With no axes all dimensions are reversed.
//
//	t := tensor.Randn[float32](Shape{2, 3, 4}, backend)
//	t.Transpose(0, 2, 1) // Shape: (2, 4, 3)
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T swaps the last two dimensions.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	rank := len(t.Shape())
	if rank < 2 {
		exceptions.Panicf("T() needs at least 2 dimensions")
	}
	axes := make([]int, rank)
	for i := range axes {
		axes[i] = i
	}
	axes[rank-2], axes[rank-1] = rank-1, rank-2
	return t.Transpose(axes...)
}

// ReLU applies max(0, x) element-wise.
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return New[T, B](t.backend.ReLU(t.raw), t.backend)
}

// Softmax normalises along dim so that every slice along it sums to one.
func (t *Tensor[T, B]) Softmax(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Softmax(t.raw, dim), t.backend)
}

// Sum reduces all elements to a scalar.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return New[T, B](t.backend.Sum(t.raw), t.backend)
}

// SumDim sums along dim.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}

// SegmentMax takes the element-wise maximum of the rows of a 2D tensor grouped by
// segmentIDs, returning (numSegments, columns).
func (t *Tensor[T, B]) SegmentMax(segmentIDs []int32, numSegments int) *Tensor[T, B] {
	return New[T, B](t.backend.SegmentMax(t.raw, segmentIDs, numSegments), t.backend)
}

// SegmentMean averages the rows of a 2D tensor grouped by segmentIDs, returning
// (numSegments, columns).
func (t *Tensor[T, B]) SegmentMean(segmentIDs []int32, numSegments int) *Tensor[T, B] {
	return New[T, B](t.backend.SegmentMean(t.raw, segmentIDs, numSegments), t.backend)
}
