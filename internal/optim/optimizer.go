// Package optim implements optimizers that update layer parameters from the
// gradient map produced by autodiff.Backward.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Updates are applied to the parameter buffers directly, so they are never
// recorded on a gradient tape and parameter identity is preserved between steps.
//
// Example usage:
//
//	backend := autodiff.New(cpu.New())
//	layer := nn.NewGCN(nn.GCNConfig{Features: 16}, backend)
//	layer.Build(x.Shape())
//	optimizer := optim.NewAdam(layer.Parameters(), optim.AdamConfig{LR: 0.01}, backend)
//
//	backend.Tape().StartRecording()
//	out := layer.Forward(nn.GraphBatch[...]{Adjacency: adj, Features: x})
//	loss := nn.MSE(out.Features, target)
//	grads := autodiff.Backward(loss, backend)
//	backend.Tape().Clear()
//
//	optimizer.Step(grads)
package optim

import (
	"github.com/born-ml/gnn/internal/nn"
	"github.com/born-ml/gnn/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient in grads.
	// Parameters missing from the map did not take part in the pass and are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradients stored on the parameters.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// getGradient returns the float32 gradient of param, or nil if it has none.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) []float32 {
	if param == nil {
		return nil
	}
	grad, ok := grads[param.Tensor().Raw()]
	if !ok || grad.DType() != tensor.Float32 {
		return nil
	}
	return grad.AsFloat32()
}
