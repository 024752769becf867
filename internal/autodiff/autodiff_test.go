package autodiff

import (
	"testing"

	"github.com/born-ml/gnn/internal/backend/cpu"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutodiffBackend_Metadata(t *testing.T) {
	backend := New(cpu.New())
	assert.Equal(t, "Autodiff(CPU)", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.NotNil(t, backend.Inner())
}

func TestTape_RecordsOnlyWhenRecording(t *testing.T) {
	backend := New(cpu.New())
	x := tensor.Ones[float32](tensor.Shape{2}, backend)

	_ = x.Add(x)
	assert.Equal(t, 0, backend.Tape().NumOps())

	backend.Tape().StartRecording()
	_ = x.Add(x).ReLU()
	assert.Equal(t, 2, backend.Tape().NumOps())

	backend.Tape().Clear()
	assert.Equal(t, 0, backend.Tape().NumOps())
	assert.True(t, backend.Tape().IsRecording())
}

func TestBackward_Square(t *testing.T) {
	backend := New(cpu.New())
	backend.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{2, -3}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	y := x.Mul(x).Sum()

	grads := Backward(y, backend)
	assert.Equal(t, []float32{4, -6}, grads[x.Raw()].AsFloat32())
	assert.True(t, backend.Tape().IsRecording(), "recording state restored after Backward")
}

func TestBackward_SeedsGivenOutput(t *testing.T) {
	backend := New(cpu.New())
	backend.Tape().StartRecording()

	x, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	y := x.MulScalar(3).Sum()
	// Recorded after y: must not affect dy/dx.
	_ = x.MulScalar(100).Sum()

	grads := Backward(y, backend)
	assert.Equal(t, []float64{3, 3}, grads[x.Raw()].AsFloat64())
}

func TestBackward_SparseOperatorThroughReshape(t *testing.T) {
	backend := New(cpu.New())
	backend.Tape().StartRecording()

	// A = [[0, 1], [1, 0]], y = sum(A @ reshape(x, (2, 1)) * [1, 10])
	a, err := tensor.NewSparseFromDense(2, 2, []float64{0, 1, 1, 0})
	require.NoError(t, err)
	x, err := tensor.FromSlice([]float64{5, 7}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	w, err := tensor.FromSlice([]float64{1, 10}, tensor.Shape{2, 1}, backend)
	require.NoError(t, err)

	y := x.Reshape(2, 1).SparseMatMul(a).Mul(w).Sum()
	assert.Equal(t, 57.0, y.Item())

	grads := Backward(y, backend)
	assert.Equal(t, []float64{10, 1}, grads[x.Raw()].AsFloat64())
}

func TestBackward_Panics(t *testing.T) {
	backend := New(cpu.New())
	x := tensor.Ones[float32](tensor.Shape{1}, backend)
	assert.Panics(t, func() { Backward(x, backend) }, "empty tape")

	backend.Tape().StartRecording()
	xi := tensor.Ones[int32](tensor.Shape{1}, backend)
	_ = xi.Add(xi)
	assert.Panics(t, func() { Backward(xi, backend) }, "integer output")
}
