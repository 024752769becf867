// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package adjacency builds sparse propagation operators from gonum graphs.
package adjacency

import (
	"github.com/born-ml/gnn/internal/adjacency"
	"github.com/born-ml/gnn/tensor"
	"gonum.org/v1/gonum/graph"
)

// ErrNotSquare is returned for operators that must be square.
var ErrNotSquare = adjacency.ErrNotSquare

// FromGraph returns the adjacency matrix of g in the order of nodes
// (nil: all nodes sorted by ID).
func FromGraph(g graph.Graph, nodes []graph.Node) (*tensor.SparseMatrix, error) {
	return adjacency.FromGraph(g, nodes)
}

// Normalized returns D^-1/2 (A + I) D^-1/2.
func Normalized(a *tensor.SparseMatrix) (*tensor.SparseMatrix, error) {
	return adjacency.Normalized(a)
}

// Laplacian returns I - D^-1/2 A D^-1/2.
func Laplacian(a *tensor.SparseMatrix) (*tensor.SparseMatrix, error) {
	return adjacency.Laplacian(a)
}

// ScaledLaplacian returns 2L/λmax - I.
func ScaledLaplacian(a *tensor.SparseMatrix) (*tensor.SparseMatrix, error) {
	return adjacency.ScaledLaplacian(a)
}

// Chebyshev returns the hop operators [I, L̃] for a Chebyshev GCN.
func Chebyshev(a *tensor.SparseMatrix) ([]*tensor.SparseMatrix, error) {
	return adjacency.Chebyshev(a)
}

// BlockDiag stacks per-graph operators into one batch operator.
func BlockDiag(ops ...*tensor.SparseMatrix) (*tensor.SparseMatrix, error) {
	return adjacency.BlockDiag(ops...)
}

// Repeat stacks batch copies of op.
func Repeat(op *tensor.SparseMatrix, batch int) (*tensor.SparseMatrix, error) {
	return adjacency.Repeat(op, batch)
}

// Identity returns the n×n identity operator.
func Identity(n int) *tensor.SparseMatrix {
	return adjacency.Identity(n)
}
