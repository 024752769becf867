package cpu

import (
	"github.com/born-ml/gnn/internal/tensor"
	"golang.org/x/exp/constraints"
)

// number is the element type set shared by all generic kernels.
type number interface {
	constraints.Integer | constraints.Float
}

func apply[T number](x, y T, kind binaryKind) T {
	switch kind {
	case binarySub:
		return x - y
	case binaryMul:
		return x * y
	default:
		return x + y
	}
}

// elementwise computes dst = a (op) b, broadcasting when needed.
func elementwise[T number](dst, a, b []T, aShape, bShape, outShape tensor.Shape, needsBroadcast bool, kind binaryKind) {
	if !needsBroadcast {
		for i := range dst {
			dst[i] = apply(a[i], b[i], kind)
		}
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)
	for i := range dst {
		ai := sourceIndex(i, outStrides, aStrides)
		bi := sourceIndex(i, outStrides, bStrides)
		dst[i] = apply(a[ai], b[bi], kind)
	}
}

func scale[T number](dst, src []T, s T) {
	for i, v := range src {
		dst[i] = v * s
	}
}

// broadcastStrides returns the strides of inShape viewed as outShape: padded and
// size-1 dimensions get stride 0.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	strides := make([]int, len(outShape))
	inStrides := inShape.ComputeStrides()
	offset := len(outShape) - len(inShape)
	for i := range outShape {
		j := i - offset
		if j >= 0 && inShape[j] != 1 {
			strides[i] = inStrides[j]
		}
	}
	return strides
}

// sourceIndex maps a flat output index to the flat index of a broadcast input.
func sourceIndex(outIdx int, outStrides, inStrides []int) int {
	idx := 0
	for i, s := range outStrides {
		idx += (outIdx / s) * inStrides[i]
		outIdx %= s
	}
	return idx
}
