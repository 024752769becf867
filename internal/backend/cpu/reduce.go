package cpu

import (
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// Sum reduces all elements to a scalar tensor (shape ()).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(tensor.Shape{}, x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = sumAll(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = sumAll(x.AsFloat64())
	case tensor.Int32:
		result.AsInt32()[0] = sumAll(x.AsInt32())
	case tensor.Int64:
		result.AsInt64()[0] = sumAll(x.AsInt64())
	default:
		exceptions.Panicf("sum: unsupported dtype %s", x.DType())
	}
	return result
}

func sumAll[T number](data []T) T {
	var s T
	for _, v := range data {
		s += v
	}
	return s
}

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x := tensor.Randn[float32](tensor.Shape{2, 3, 4}, backend)
//	y := backend.SumDim(x.Raw(), -1, true)   // shape: (2, 3, 1)
//	z := backend.SumDim(x.Raw(), -1, false)  // shape: (2, 3)
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim, err := shape.NormalizeAxis(dim)
	if err != nil {
		exceptions.Panicf("sumDim: %v", err)
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, len(shape)-1)
		outShape = append(outShape, shape[:dim]...)
		outShape = append(outShape, shape[dim+1:]...)
	}
	result := tensor.MustNewRaw(outShape, x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		sumDim(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumDim(result.AsFloat64(), x.AsFloat64(), shape, dim)
	case tensor.Int32:
		sumDim(result.AsInt32(), x.AsInt32(), shape, dim)
	case tensor.Int64:
		sumDim(result.AsInt64(), x.AsInt64(), shape, dim)
	default:
		exceptions.Panicf("sumDim: unsupported dtype %s", x.DType())
	}
	return result
}

// sumDim views src as (outer, dimSize, inner) and writes (outer, inner) sums.
func sumDim[T number](dst, src []T, shape tensor.Shape, dim int) {
	dimSize := shape[dim]
	inner := 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	outer := len(src) / (dimSize * inner)

	for o := 0; o < outer; o++ {
		for i := 0; i < dimSize; i++ {
			row := src[(o*dimSize+i)*inner : (o*dimSize+i+1)*inner]
			out := dst[o*inner : (o+1)*inner]
			for j, v := range row {
				out[j] += v
			}
		}
	}
}
