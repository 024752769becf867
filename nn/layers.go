// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/gnn/internal/nn"
	"github.com/born-ml/gnn/tensor"
)

// GCN is a graph convolution layer.
type GCN[B tensor.Backend] = nn.GCN[B]

// GCNConfig configures a GCN.
type GCNConfig = nn.GCNConfig

// NewGCN creates an unbuilt graph convolution layer. Panics if cfg.Features <= 0.
func NewGCN[B tensor.Backend](cfg GCNConfig, backend B) *GCN[B] {
	return nn.NewGCN(cfg, backend)
}

// PoolMode selects max or mean segment pooling.
type PoolMode = nn.PoolMode

// Pooling modes.
const (
	PoolMax  = nn.PoolMax
	PoolMean = nn.PoolMean
)

// Configuration errors returned by layer constructors.
var (
	ErrInvalidPoolMode  = nn.ErrInvalidPoolMode
	ErrInvalidBatchSize = nn.ErrInvalidBatchSize
	ErrStateDict        = nn.ErrStateDict
)

// ParsePoolMode accepts "max" and "mean".
func ParsePoolMode(s string) (PoolMode, error) {
	return nn.ParsePoolMode(s)
}

// SegmentIDs returns the per-node graph index of a batch of equal-sized graphs.
func SegmentIDs(batchSize, nodesPerGraph int) []int32 {
	return nn.SegmentIDs(batchSize, nodesPerGraph)
}

// SegmentPool reduces each graph's nodes to one feature row.
type SegmentPool[B tensor.Backend] = nn.SegmentPool[B]

// NewSegmentPool creates a pooling layer for batches of batchSize graphs.
func NewSegmentPool[B tensor.Backend](batchSize int, mode PoolMode, backend B) (*SegmentPool[B], error) {
	return nn.NewSegmentPool(batchSize, mode, backend)
}

// DiffPool coarsens graphs to a fixed number of clusters.
type DiffPool[B tensor.Backend] = nn.DiffPool[B]

// DiffPoolConfig configures a DiffPool.
type DiffPoolConfig = nn.DiffPoolConfig

// Coarsened holds the coarsened adjacency, features and assignment.
type Coarsened[B tensor.Backend] = nn.Coarsened[B]

// NewDiffPool creates an unbuilt DiffPool layer over adj.
func NewDiffPool[B tensor.Backend](adj AdjacencySet, cfg DiffPoolConfig, backend B) *DiffPool[B] {
	return nn.NewDiffPool(adj, cfg, backend)
}
