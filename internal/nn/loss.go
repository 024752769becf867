package nn

import (
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// MSE returns the mean squared error between predictions and targets as a
// scalar tensor:
//
//	MSE = mean((pred - target)²)
func MSE[B tensor.Backend](pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !pred.Shape().Equal(target.Shape()) {
		exceptions.Panicf("mse: prediction shape %v does not match target shape %v", pred.Shape(), target.Shape())
	}
	diff := pred.Sub(target)
	return diff.Mul(diff).Sum().MulScalar(1 / float64(pred.NumElements()))
}
