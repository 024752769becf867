package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return New[T, B](MustNewRaw(shape, inferDataType[T](), b.Device()), b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, 1) using the global source.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return RandnFrom[T, B](nil, shape, b)
}

// RandnFrom creates a tensor with values drawn from N(0, 1) using rng.
// A nil rng uses the global math/rand source.
func RandnFrom[T DType, B Backend](rng *rand.Rand, shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	norm := rand.NormFloat64 //nolint:gosec // ML initialisation, not security sensitive
	if rng != nil {
		norm = rng.NormFloat64
	}
	for i := range data {
		data[i] = T(norm())
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [low, high) using rng.
// A nil rng uses the global math/rand source.
func Uniform[T DType, B Backend](rng *rand.Rand, shape Shape, low, high float64, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	next := rand.Float64 //nolint:gosec // ML initialisation, not security sensitive
	if rng != nil {
		next = rng.Float64
	}
	for i := range data {
		data[i] = T(low + (high-low)*next())
	}
	return t
}

// Eye creates an (n, n) identity matrix.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, n}, b)
	data := t.Data()
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	return t
}

// AllClose reports whether a and b have equal shapes and element-wise
// |a-b| <= atol + rtol*|b|.
func AllClose[T DType, B Backend](a, b *Tensor[T, B], rtol, atol float64) bool {
	if !a.Shape().Equal(b.Shape()) {
		return false
	}
	ad, bd := a.Data(), b.Data()
	for i := range ad {
		x, y := float64(ad[i]), float64(bd[i])
		if math.Abs(x-y) > atol+rtol*math.Abs(y) {
			return false
		}
	}
	return true
}
