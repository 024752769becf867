// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/gnn/adjacency"
	"github.com/born-ml/gnn/autodiff"
	"github.com/born-ml/gnn/backend/cpu"
	"github.com/born-ml/gnn/nn"
	"github.com/born-ml/gnn/optim"
	"github.com/born-ml/gnn/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
)

type trainBackend = *autodiff.Backend[*cpu.Backend]

func TestPublicAPI_TrainGraphClassifier(t *testing.T) {
	backend := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(3))
	const batch, nodes = 2, 4

	g := simple.NewUndirectedGraph()
	for i := 0; i < nodes-1; i++ {
		g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+1)))
	}
	a, err := adjacency.FromGraph(g, nil)
	require.NoError(t, err)
	norm, err := adjacency.Normalized(a)
	require.NoError(t, err)
	op, err := adjacency.Repeat(norm, batch)
	require.NoError(t, err)

	gcn := nn.NewGCN(nn.GCNConfig{Features: 3, Initializer: nn.Constant{Values: []float32{0.1, 0.2, 0.3, 0.3, 0.2, 0.1}}}, backend)
	pool, err := nn.NewSegmentPool(batch, nn.PoolMean, backend)
	require.NoError(t, err)

	x := tensor.Uniform[float32](rng, tensor.Shape{batch, nodes, 2}, 0, 1, backend)
	target := tensor.Full[float32](tensor.Shape{batch, 3}, 1, backend)
	gcn.Build(x.Shape())
	optimizer := optim.NewAdam(gcn.Parameters(), optim.AdamConfig{LR: 0.05}, backend)

	var first, last float32
	for step := 0; step < 10; step++ {
		backend.Tape().Clear()
		backend.Tape().StartRecording()
		h := gcn.Forward(nn.GraphBatch[trainBackend]{Adjacency: nn.AdjacencySet{op}, Features: x})
		loss := nn.MSE(pool.Forward(h.Features), target)
		grads := autodiff.Backward(loss, backend)
		backend.Tape().StopRecording()

		if step == 0 {
			first = loss.Item()
		}
		last = loss.Item()
		optimizer.Step(grads)
	}
	assert.Less(t, last, first)
}
