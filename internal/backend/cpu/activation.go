package cpu

import (
	"math"

	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape(), x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		relu(result.AsFloat32(), x.AsFloat32())
	case tensor.Float64:
		relu(result.AsFloat64(), x.AsFloat64())
	case tensor.Int32:
		relu(result.AsInt32(), x.AsInt32())
	case tensor.Int64:
		relu(result.AsInt64(), x.AsInt64())
	default:
		exceptions.Panicf("relu: unsupported dtype %s", x.DType())
	}
	return result
}

func relu[T number](dst, src []T) {
	for i, v := range src {
		if v > 0 {
			dst[i] = v
		}
	}
}

// Softmax computes softmax along the specified dimension.
// Softmax(x_i) = exp(x_i - max) / sum(exp(x_j - max)) for all j in dimension.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim, err := shape.NormalizeAxis(dim)
	if err != nil {
		exceptions.Panicf("softmax: %v", err)
	}

	result := tensor.MustNewRaw(shape, x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		softmax(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		softmax(result.AsFloat64(), x.AsFloat64(), shape, dim)
	default:
		exceptions.Panicf("softmax: unsupported dtype %s (only float32/float64 supported)", x.DType())
	}
	return result
}

// softmax treats the tensor as (outer, dimSize, inner) and normalises every
// (outer, inner) fiber.
func softmax[T constraints.Float](dst, src []T, shape tensor.Shape, dim int) {
	dimSize := shape[dim]
	inner := 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	outer := len(src) / (dimSize * inner)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*dimSize*inner + in

			maxVal := math.Inf(-1)
			for i := 0; i < dimSize; i++ {
				maxVal = math.Max(maxVal, float64(src[base+i*inner]))
			}

			var sum float64
			for i := 0; i < dimSize; i++ {
				e := math.Exp(float64(src[base+i*inner]) - maxVal)
				dst[base+i*inner] = T(e)
				sum += e
			}

			for i := 0; i < dimSize; i++ {
				dst[base+i*inner] = T(float64(dst[base+i*inner]) / sum)
			}
		}
	}
}
