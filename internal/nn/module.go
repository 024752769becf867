// Package nn implements graph neural network layers on top of the tensor engine.
//
// This package provides:
//   - GCN: graph convolution over a set of sparse adjacency operators
//   - SegmentPool: per-graph max/mean readout of a batched node set
//   - DiffPool: differentiable coarsening built from two GCNs
//   - Parameter: trainable weights consumed by internal/optim
//   - Save/Load: SafeTensors checkpoints of layer state dicts
//
// Layers are generic over the backend, so the same layer runs on the plain CPU
// backend for inference and on the autodiff decorator for training.
package nn

import (
	"github.com/born-ml/gnn/internal/tensor"
)

// Module is implemented by every layer that owns trainable parameters.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Parameters returns all trainable parameters of this module, or nil before
	// the module is built.
	Parameters() []*Parameter[B]
}

// Stateful is implemented by layers that can be checkpointed.
type Stateful interface {
	// StateDict returns the layer weights keyed by name. The tensors are shared
	// with the layer, not copied.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies weights into the layer, building it first if needed.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
