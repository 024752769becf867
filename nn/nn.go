// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides graph neural network layers.
//
//   - GCN: graph convolution over one or two sparse propagation operators
//   - SegmentPool: per-graph max or mean readout
//   - DiffPool: differentiable coarsening to K clusters per graph
//
// Example:
//
//	backend := cpu.New()
//	a, _ := adjacency.FromGraph(g, nil)
//	norm, _ := adjacency.Normalized(a)
//	op, _ := adjacency.Repeat(norm, batch)
//
//	gcn := nn.NewGCN(nn.GCNConfig{Features: 16}, backend)
//	h := gcn.Forward(nn.GraphBatch[*cpu.Backend]{Adjacency: nn.AdjacencySet{op}, Features: x})
//	pool, _ := nn.NewSegmentPool(batch, nn.PoolMax, backend)
//	out := pool.Forward(h.Features) // (batch, 16)
package nn

import (
	"github.com/born-ml/gnn/internal/nn"
	"github.com/born-ml/gnn/tensor"
)

// Module is implemented by every layer that owns trainable parameters.
type Module[B tensor.Backend] = nn.Module[B]

// Stateful is implemented by layers that can be checkpointed.
type Stateful = nn.Stateful

// Parameter is a trainable weight.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// CollectGrads stores each parameter's gradient from an autodiff gradient map.
func CollectGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.CollectGrads(params, grads)
}

// AdjacencySet is an ordered list of propagation operators, one per hop.
type AdjacencySet = nn.AdjacencySet

// GraphBatch carries an adjacency set with (B, N, F) node features.
type GraphBatch[B tensor.Backend] = nn.GraphBatch[B]

// Initializer fills freshly allocated weights.
type Initializer = nn.Initializer

// GlorotUniform is the default weight initializer.
type GlorotUniform = nn.GlorotUniform

// Constant initializes weights from fixed values.
type Constant = nn.Constant

// MSE returns the mean squared error between pred and target.
func MSE[B tensor.Backend](pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.MSE(pred, target)
}

// Save writes a layer's weights to a SafeTensors file.
func Save(module Stateful, path string) error {
	return nn.Save(module, path)
}

// Load restores a layer's weights from a file written by Save.
func Load(module Stateful, path string, backend tensor.Backend) error {
	return nn.Load(module, path, backend)
}
