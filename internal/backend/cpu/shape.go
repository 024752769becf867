package cpu

import (
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// Reshape returns a tensor with the same data but different shape.
// The result shares the input buffer; kernels never write into their inputs, so
// the view is safe.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.Reshaped(newShape)
	if err != nil {
		exceptions.Panicf("reshape: %v", err)
	}
	return result
}

// Transpose permutes the dimensions of t. With no axes all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		exceptions.Panicf("transpose: axes length %d != ndim %d", len(axes), ndim)
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			exceptions.Panicf("transpose: invalid axis %d for %dD tensor", ax, ndim)
		}
		if seen[ax] {
			exceptions.Panicf("transpose: duplicate axis %d", ax)
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}
	result := tensor.MustNewRaw(newShape, t.DType(), cpu.device)

	// srcStrides[i] is the input stride of output dimension i.
	inStrides := t.Strides()
	srcStrides := make([]int, ndim)
	for i, ax := range axes {
		srcStrides[i] = inStrides[ax]
	}
	outStrides := newShape.ComputeStrides()

	switch t.DType() {
	case tensor.Float32:
		permute(result.AsFloat32(), t.AsFloat32(), outStrides, srcStrides)
	case tensor.Float64:
		permute(result.AsFloat64(), t.AsFloat64(), outStrides, srcStrides)
	case tensor.Int32:
		permute(result.AsInt32(), t.AsInt32(), outStrides, srcStrides)
	case tensor.Int64:
		permute(result.AsInt64(), t.AsInt64(), outStrides, srcStrides)
	default:
		exceptions.Panicf("transpose: unsupported dtype %s", t.DType())
	}
	return result
}

func permute[T number](dst, src []T, outStrides, srcStrides []int) {
	for i := range dst {
		dst[i] = src[sourceIndex(i, outStrides, srcStrides)]
	}
}
