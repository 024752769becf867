// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/gnn/internal/tensor"
)

// SparseMatrix is an immutable CSR matrix used as a graph propagation operator.
type SparseMatrix = tensor.SparseMatrix

// NewSparseCOO builds a CSR matrix from coordinate triplets, summing duplicates.
func NewSparseCOO(rows, cols int, rowIdx, colIdx []int, values []float64) (*SparseMatrix, error) {
	return tensor.NewSparseCOO(rows, cols, rowIdx, colIdx, values)
}

// NewSparseFromDense builds a CSR matrix from a row-major dense slice.
func NewSparseFromDense(rows, cols int, dense []float64) (*SparseMatrix, error) {
	return tensor.NewSparseFromDense(rows, cols, dense)
}

// Identity returns the n×n identity operator.
func Identity(n int) *SparseMatrix {
	return tensor.Identity(n)
}

// BlockDiag stacks matrices along the diagonal.
func BlockDiag(blocks ...*SparseMatrix) (*SparseMatrix, error) {
	return tensor.BlockDiag(blocks...)
}
