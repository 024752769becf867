package cpu

import (
	"github.com/born-ml/gnn/internal/parallel"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// SparseMatMul multiplies a CSR matrix with a dense 2D tensor:
//
//	(M, K) sparse @ (K, N) dense -> (M, N) dense
//
// Output rows are independent, so they are split across workers.
func (cpu *CPUBackend) SparseMatMul(a *tensor.SparseMatrix, b *tensor.RawTensor) *tensor.RawTensor {
	bShape := b.Shape()
	if len(bShape) != 2 {
		exceptions.Panicf("sparseMatMul: dense operand must be 2D, got shape %v", bShape)
	}
	m, k := a.Dims()
	if bShape[0] != k {
		exceptions.Panicf("sparseMatMul: shape mismatch (%d, %d) @ %v", m, k, bShape)
	}
	n := bShape[1]

	result := tensor.MustNewRaw(tensor.Shape{m, n}, b.DType(), cpu.device)
	switch b.DType() {
	case tensor.Float32:
		spmm(result.AsFloat32(), a, b.AsFloat32(), n, cpu.parallel)
	case tensor.Float64:
		spmm(result.AsFloat64(), a, b.AsFloat64(), n, cpu.parallel)
	case tensor.Int32:
		spmm(result.AsInt32(), a, b.AsInt32(), n, cpu.parallel)
	case tensor.Int64:
		spmm(result.AsInt64(), a, b.AsInt64(), n, cpu.parallel)
	default:
		exceptions.Panicf("sparseMatMul: unsupported dtype %s", b.DType())
	}
	return result
}

func spmm[T number](dst []T, a *tensor.SparseMatrix, b []T, n int, cfg parallel.Config) {
	parallel.ForRange(a.Rows(), func(start, end int) {
		for i := start; i < end; i++ {
			out := dst[i*n : (i+1)*n]
			cols, vals := a.Row(i)
			for idx, c := range cols {
				v := T(vals[idx])
				row := b[c*n : (c+1)*n]
				for j, bv := range row {
					out[j] += v * bv
				}
			}
		}
	}, cfg)
}
