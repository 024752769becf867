package autodiff

import (
	"math/rand"
	"testing"

	"github.com/born-ml/gnn/internal/backend/cpu"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/stretchr/testify/require"
)

type testBackend = *AutodiffBackend[*cpu.CPUBackend]

type T64 = tensor.Tensor[float64, testBackend]

// checkGradient compares tape gradients of sum(f(inputs) * w), for a fixed random
// w, against central finite differences.
func checkGradient(t *testing.T, backend testBackend, inputs []*T64, f func(in []*T64) *T64) {
	t.Helper()
	rng := rand.New(rand.NewSource(7))

	tape := backend.Tape()
	tape.Clear()
	tape.StartRecording()
	out := f(inputs)
	tape.StopRecording()
	w := tensor.RandnFrom[float64](rng, out.Shape(), backend)

	loss := func() float64 {
		return f(inputs).Mul(w).Sum().Item()
	}

	tape.Clear()
	tape.StartRecording()
	y := f(inputs).Mul(w).Sum()
	grads := Backward(y, backend)
	tape.StopRecording()
	tape.Clear()

	const h = 1e-6
	for k, in := range inputs {
		grad, ok := grads[in.Raw()]
		require.True(t, ok, "input %d received no gradient", k)
		require.True(t, in.Shape().Equal(grad.Shape()), "input %d: grad shape %v, want %v", k, grad.Shape(), in.Shape())
		analytic := grad.Float64s()

		data := in.Data()
		for i := range data {
			orig := data[i]
			data[i] = orig + h
			plus := loss()
			data[i] = orig - h
			minus := loss()
			data[i] = orig
			numeric := (plus - minus) / (2 * h)
			require.InDelta(t, numeric, analytic[i], 1e-5, "input %d element %d", k, i)
		}
	}
}

func randn(backend testBackend, seed int64, shape ...int) *T64 {
	return tensor.RandnFrom[float64](rand.New(rand.NewSource(seed)), tensor.Shape(shape), backend)
}

func TestGradient_Arithmetic(t *testing.T) {
	backend := New(cpu.New())

	t.Run("AddBroadcast", func(t *testing.T) {
		checkGradient(t, backend, []*T64{randn(backend, 1, 2, 3), randn(backend, 2, 3)}, func(in []*T64) *T64 {
			return in[0].Add(in[1])
		})
	})
	t.Run("SubBroadcast", func(t *testing.T) {
		checkGradient(t, backend, []*T64{randn(backend, 3, 2, 1), randn(backend, 4, 2, 3)}, func(in []*T64) *T64 {
			return in[0].Sub(in[1])
		})
	})
	t.Run("Mul", func(t *testing.T) {
		checkGradient(t, backend, []*T64{randn(backend, 5, 3, 2), randn(backend, 6, 1, 2)}, func(in []*T64) *T64 {
			return in[0].Mul(in[1])
		})
	})
	t.Run("MulScalar", func(t *testing.T) {
		checkGradient(t, backend, []*T64{randn(backend, 7, 4)}, func(in []*T64) *T64 {
			return in[0].MulScalar(-2.5)
		})
	})
	t.Run("ReusedInput", func(t *testing.T) {
		checkGradient(t, backend, []*T64{randn(backend, 8, 3)}, func(in []*T64) *T64 {
			return in[0].Mul(in[0]).Add(in[0])
		})
	})
}

func TestGradient_Products(t *testing.T) {
	backend := New(cpu.New())

	t.Run("MatMul", func(t *testing.T) {
		checkGradient(t, backend, []*T64{randn(backend, 1, 3, 4), randn(backend, 2, 4, 2)}, func(in []*T64) *T64 {
			return in[0].MatMul(in[1])
		})
	})
	t.Run("BatchMatMul", func(t *testing.T) {
		checkGradient(t, backend, []*T64{randn(backend, 3, 2, 3, 4), randn(backend, 4, 2, 4, 2)}, func(in []*T64) *T64 {
			return in[0].BatchMatMul(in[1])
		})
	})
	t.Run("SparseMatMul", func(t *testing.T) {
		a, err := tensor.NewSparseCOO(3, 4,
			[]int{0, 0, 1, 2, 2},
			[]int{1, 3, 0, 2, 3},
			[]float64{0.5, 2, -1, 3, 1})
		require.NoError(t, err)
		checkGradient(t, backend, []*T64{randn(backend, 5, 4, 2)}, func(in []*T64) *T64 {
			return in[0].SparseMatMul(a)
		})
	})
}

func TestGradient_Shape(t *testing.T) {
	backend := New(cpu.New())

	checkGradient(t, backend, []*T64{randn(backend, 1, 2, 3, 4)}, func(in []*T64) *T64 {
		return in[0].Transpose(0, 2, 1).Reshape(8, 3).T()
	})
}

func TestGradient_Activations(t *testing.T) {
	backend := New(cpu.New())

	t.Run("ReLU", func(t *testing.T) {
		x, err := tensor.FromSlice([]float64{-1.5, 0.5, 2, -0.3, 0.7, -2}, tensor.Shape{2, 3}, backend)
		require.NoError(t, err)
		checkGradient(t, backend, []*T64{x}, func(in []*T64) *T64 {
			return in[0].ReLU()
		})
	})
	for _, dim := range []int{0, 1, -1} {
		checkGradient(t, backend, []*T64{randn(backend, 2, 2, 3, 4)}, func(in []*T64) *T64 {
			return in[0].Softmax(dim)
		})
	}
}

func TestGradient_Reductions(t *testing.T) {
	backend := New(cpu.New())

	checkGradient(t, backend, []*T64{randn(backend, 1, 2, 3)}, func(in []*T64) *T64 {
		return in[0].SumDim(0, false)
	})
	checkGradient(t, backend, []*T64{randn(backend, 2, 2, 3)}, func(in []*T64) *T64 {
		return in[0].SumDim(-1, true)
	})
}

func TestGradient_Segments(t *testing.T) {
	backend := New(cpu.New())
	ids := []int32{0, 0, 0, 1, 2, 2}

	checkGradient(t, backend, []*T64{randn(backend, 1, 6, 3)}, func(in []*T64) *T64 {
		return in[0].SegmentMax(ids, 3)
	})
	checkGradient(t, backend, []*T64{randn(backend, 2, 6, 3)}, func(in []*T64) *T64 {
		return in[0].SegmentMean(ids, 3)
	})
}
