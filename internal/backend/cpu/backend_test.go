package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/gnn/internal/parallel"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw32(t *testing.T, shape tensor.Shape, data ...float32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func raw64(t *testing.T, shape tensor.Shape, data ...float64) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat64(), data)
	return r
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Elementwise(t *testing.T) {
	backend := New()

	t.Run("SameShape", func(t *testing.T) {
		a := raw32(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
		b := raw32(t, tensor.Shape{2, 2}, 10, 20, 30, 40)
		assert.Equal(t, []float32{11, 22, 33, 44}, backend.Add(a, b).AsFloat32())
		assert.Equal(t, []float32{9, 18, 27, 36}, backend.Sub(b, a).AsFloat32())
		assert.Equal(t, []float32{10, 40, 90, 160}, backend.Mul(a, b).AsFloat32())
		// Inputs are never modified.
		assert.Equal(t, []float32{1, 2, 3, 4}, a.AsFloat32())
	})

	t.Run("Broadcast", func(t *testing.T) {
		a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		row := raw32(t, tensor.Shape{3}, 10, 20, 30)
		col := raw32(t, tensor.Shape{2, 1}, 100, 200)

		assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, backend.Add(a, row).AsFloat32())
		assert.Equal(t, []float32{100, 200, 300, 800, 1000, 1200}, backend.Mul(a, col).AsFloat32())
		assert.True(t, tensor.Shape{2, 3}.Equal(backend.Add(col, row).Shape()))
	})

	t.Run("Incompatible", func(t *testing.T) {
		a := raw32(t, tensor.Shape{2, 3})
		b := raw32(t, tensor.Shape{2, 4})
		assert.Panics(t, func() { backend.Add(a, b) })
	})

	t.Run("MulScalar", func(t *testing.T) {
		x := raw64(t, tensor.Shape{3}, 1, -2, 3)
		assert.Equal(t, []float64{-0.5, 1, -1.5}, backend.MulScalar(x, -0.5).AsFloat64())
	})
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()

	a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	b := raw32(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)
	c := backend.MatMul(a, b)
	assert.True(t, tensor.Shape{2, 2}.Equal(c.Shape()))
	assert.Equal(t, []float32{58, 64, 139, 154}, c.AsFloat32())

	a64 := raw64(t, tensor.Shape{1, 2}, 1, 2)
	b64 := raw64(t, tensor.Shape{2, 1}, 3, 4)
	assert.Equal(t, []float64{11}, backend.MatMul(a64, b64).AsFloat64())

	ai, _ := tensor.NewRaw(tensor.Shape{1, 2}, tensor.Int32, tensor.CPU)
	bi, _ := tensor.NewRaw(tensor.Shape{2, 1}, tensor.Int32, tensor.CPU)
	copy(ai.AsInt32(), []int32{2, 3})
	copy(bi.AsInt32(), []int32{4, 5})
	assert.Equal(t, []int32{23}, backend.MatMul(ai, bi).AsInt32())

	assert.Panics(t, func() { backend.MatMul(a, a) })
}

func TestCPUBackend_BatchMatMul(t *testing.T) {
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1})

	// Batch 0: identity; batch 1: 2*identity.
	a := raw64(t, tensor.Shape{2, 2, 2}, 1, 0, 0, 1, 2, 0, 0, 2)
	b := raw64(t, tensor.Shape{2, 2, 3}, 1, 2, 3, 4, 5, 6, 1, 1, 1, 2, 2, 2)
	c := backend.BatchMatMul(a, b)
	assert.True(t, tensor.Shape{2, 2, 3}.Equal(c.Shape()))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 2, 2, 2, 4, 4, 4}, c.AsFloat64())

	assert.Panics(t, func() { backend.BatchMatMul(a, raw64(t, tensor.Shape{3, 2, 3})) })
}

func TestCPUBackend_ReshapeTranspose(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	r := backend.Reshape(x, tensor.Shape{3, 2})
	assert.True(t, tensor.Shape{3, 2}.Equal(r.Shape()))
	assert.Equal(t, x.AsFloat32(), r.AsFloat32())
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4}) })

	tr := backend.Transpose(x)
	assert.True(t, tensor.Shape{3, 2}.Equal(tr.Shape()))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, tr.AsFloat32())

	// (1, 2, 3) -> (1, 3, 2)
	x3 := backend.Reshape(x, tensor.Shape{1, 2, 3})
	tr3 := backend.Transpose(x3, 0, 2, 1)
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, tr3.AsFloat32())

	assert.Panics(t, func() { backend.Transpose(x, 0, 0) })
}

func TestCPUBackend_ReLU(t *testing.T) {
	backend := New()
	x := raw32(t, tensor.Shape{4}, -1, 0, 2, -3)
	assert.Equal(t, []float32{0, 0, 2, 0}, backend.ReLU(x).AsFloat32())
}

func TestCPUBackend_Softmax(t *testing.T) {
	backend := New()

	x := raw64(t, tensor.Shape{2, 3}, 1, 2, 3, 1000, 1000, 1000)

	last := backend.Softmax(x, -1).AsFloat64()
	for row := 0; row < 2; row++ {
		sum := 0.0
		for j := 0; j < 3; j++ {
			sum += last[row*3+j]
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
	assert.InDelta(t, 1.0/3, last[3], 1e-12, "large inputs must not overflow")
	assert.Greater(t, last[2], last[1])

	first := backend.Softmax(x, 0).AsFloat64()
	for j := 0; j < 3; j++ {
		assert.InDelta(t, 1.0, first[j]+first[3+j], 1e-12)
	}

	assert.Panics(t, func() { backend.Softmax(x, 2) })
}

func TestCPUBackend_Sum(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	s := backend.Sum(x)
	assert.Equal(t, 0, s.Shape().Rank())
	assert.Equal(t, float32(21), s.AsFloat32()[0])

	rows := backend.SumDim(x, 1, false)
	assert.True(t, tensor.Shape{2}.Equal(rows.Shape()))
	assert.Equal(t, []float32{6, 15}, rows.AsFloat32())

	cols := backend.SumDim(x, 0, true)
	assert.True(t, tensor.Shape{1, 3}.Equal(cols.Shape()))
	assert.Equal(t, []float32{5, 7, 9}, cols.AsFloat32())
}

func TestCPUBackend_SparseMatMul(t *testing.T) {
	for _, cfg := range []parallel.Config{parallel.Sequential(), {Enabled: true, NumWorkers: 3, MinChunkSize: 1}} {
		backend := NewWithConfig(cfg)

		a, err := tensor.NewSparseFromDense(3, 3, []float64{
			0, 1, 0,
			1, 0, 1,
			0, 2, 0,
		})
		require.NoError(t, err)
		x := raw32(t, tensor.Shape{3, 2}, 1, 2, 3, 4, 5, 6)

		y := backend.SparseMatMul(a, x)
		assert.True(t, tensor.Shape{3, 2}.Equal(y.Shape()))
		assert.Equal(t, []float32{3, 4, 6, 8, 6, 8}, y.AsFloat32())

		assert.Equal(t, x.AsFloat32(), backend.SparseMatMul(tensor.Identity(3), x).AsFloat32())
		assert.Panics(t, func() { backend.SparseMatMul(tensor.Identity(2), x) })
	}
}

func TestCPUBackend_SegmentMax(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{6, 2},
		1, 8,
		3, -2,
		-5, -1,
		-4, -7,
		0, 0,
		2, 9)
	ids := []int32{0, 0, 1, 1, 2, 2}

	y := backend.SegmentMax(x, ids, 3)
	assert.True(t, tensor.Shape{3, 2}.Equal(y.Shape()))
	assert.Equal(t, []float32{3, 8, -4, -1, 2, 9}, y.AsFloat32())

	// Empty trailing segment.
	y = backend.SegmentMax(x, ids, 4)
	assert.Equal(t, []float32{0, 0}, y.AsFloat32()[6:])

	assert.Panics(t, func() { backend.SegmentMax(x, []int32{0, 1, 0, 1, 2, 2}, 3) }, "unsorted ids")
	assert.Panics(t, func() { backend.SegmentMax(x, ids, 2) }, "id out of range")
	assert.Panics(t, func() { backend.SegmentMax(x, ids[:5], 3) }, "length mismatch")
}

func TestCPUBackend_SegmentMean(t *testing.T) {
	backend := New()

	x := raw64(t, tensor.Shape{5, 1}, 1, 3, 10, 20, 30)
	y := backend.SegmentMean(x, []int32{0, 0, 1, 1, 1}, 2)
	assert.Equal(t, []float64{2, 20}, y.AsFloat64())

	assert.Equal(t, []int{2, 3, 0}, SegmentCounts([]int32{0, 0, 1, 1, 1}, 3))
}

func TestCPUBackend_MatMulMatchesNaive(t *testing.T) {
	backend := New()
	m, k, n := 5, 7, 3
	a := raw64(t, tensor.Shape{m, k})
	b := raw64(t, tensor.Shape{k, n})
	for i := range a.AsFloat64() {
		a.AsFloat64()[i] = math.Sin(float64(i))
	}
	for i := range b.AsFloat64() {
		b.AsFloat64()[i] = math.Cos(float64(i))
	}

	want := make([]float64, m*n)
	matmulNaive(want, a.AsFloat64(), b.AsFloat64(), m, k, n)
	got := backend.MatMul(a, b).AsFloat64()
	assert.InDeltaSlice(t, want, got, 1e-12)
}
