package cpu

import (
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N).
//
// Float tensors go through gonum BLAS GEMM; integer tensors use a plain triple loop.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		exceptions.Panicf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape))
	}
	if a.DType() != b.DType() {
		exceptions.Panicf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType())
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		exceptions.Panicf("matmul: shape mismatch %v @ %v", aShape, bShape)
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	gemm(result, a, b, m, k, n, 0, 0, 0)
	return result
}

// gemm computes one (m, k) @ (k, n) product, reading a, b and writing c at the
// given element offsets.
func gemm(c, a, b *tensor.RawTensor, m, k, n, offC, offA, offB int) {
	switch a.DType() {
	case tensor.Float32:
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas32.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat32()[offA : offA+m*k]},
			blas32.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat32()[offB : offB+k*n]},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: c.AsFloat32()[offC : offC+m*n]})
	case tensor.Float64:
		blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas64.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat64()[offA : offA+m*k]},
			blas64.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat64()[offB : offB+k*n]},
			0,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: c.AsFloat64()[offC : offC+m*n]})
	case tensor.Int32:
		matmulNaive(c.AsInt32()[offC:offC+m*n], a.AsInt32()[offA:offA+m*k], b.AsInt32()[offB:offB+k*n], m, k, n)
	case tensor.Int64:
		matmulNaive(c.AsInt64()[offC:offC+m*n], a.AsInt64()[offA:offA+m*k], b.AsInt64()[offB:offB+k*n], m, k, n)
	default:
		exceptions.Panicf("matmul: unsupported dtype %s", a.DType())
	}
}

// matmulNaive computes C[i,j] = sum_k A[i,k] * B[k,j].
func matmulNaive[T number](c, a, b []T, m, k, n int) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum T
			for kk := 0; kk < k; kk++ {
				sum += a[i*k+kk] * b[kk*n+j]
			}
			c[i*n+j] = sum
		}
	}
}
