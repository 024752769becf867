package cpu

import (
	"github.com/born-ml/gnn/internal/parallel"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// BatchMatMul performs batched matrix multiplication.
//
//	(B, M, K) @ (B, K, N) -> (B, M, N)
//
// The last two dimensions are treated as matrix dimensions and every leading
// dimension must match. Batches run in parallel, one GEMM each.
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()
	ndim := len(aShape)

	if ndim < 3 {
		exceptions.Panicf("batchMatMul: inputs must be at least 3D, got %dD", ndim)
	}
	if len(bShape) != ndim {
		exceptions.Panicf("batchMatMul: rank mismatch, got %dD and %dD", ndim, len(bShape))
	}
	if a.DType() != b.DType() {
		exceptions.Panicf("batchMatMul: dtype mismatch %s vs %s", a.DType(), b.DType())
	}
	for i := 0; i < ndim-2; i++ {
		if aShape[i] != bShape[i] {
			exceptions.Panicf("batchMatMul: batch dimension mismatch at dim %d: %v vs %v", i, aShape, bShape)
		}
	}

	m, k := aShape[ndim-2], aShape[ndim-1]
	n := bShape[ndim-1]
	if bShape[ndim-2] != k {
		exceptions.Panicf("batchMatMul: inner dimension mismatch: %v @ %v", aShape, bShape)
	}

	batchSize := 1
	for i := 0; i < ndim-2; i++ {
		batchSize *= aShape[i]
	}

	outShape := aShape.Clone()
	outShape[ndim-1] = n
	result := tensor.MustNewRaw(outShape, a.DType(), cpu.device)

	cfg := cpu.parallel
	cfg.MinChunkSize = 1
	parallel.For(batchSize, func(batch int) {
		gemm(result, a, b, m, k, n, batch*m*n, batch*m*k, batch*k*n)
	}, cfg)
	return result
}
