package autodiff

import (
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// BackwardCapable is an interface for backends that support the backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes the gradients of t, seeded with ones, using the backend's tape.
//
// Returns a map from RawTensor to its gradient.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones[float32](tensor.Shape{2}, backend)
//	y := x.Mul(x).Sum()
//	gradients := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()]
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		exceptions.Panicf("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}
	if !t.DType().IsFloat() {
		exceptions.Panicf("backward: unsupported dtype %s (only float32/float64 supported)", t.DType())
	}

	outputGrad := tensor.MustNewRaw(t.Shape(), t.DType(), backend.Device())
	outputGrad.Fill(1)
	return tape.Backward(t.Raw(), outputGrad, backend)
}
