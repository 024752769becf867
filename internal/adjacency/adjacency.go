// Package adjacency builds sparse propagation operators for graph layers from
// gonum graphs.
//
// Typical use for a batch of B graphs with N nodes each:
//
//	a, _ := adjacency.FromGraph(g, nil)      // (N, N)
//	norm, _ := adjacency.Normalized(a)       // D^-1/2 (A+I) D^-1/2
//	op, _ := adjacency.BlockDiag(norm, ...)  // (B*N, B*N)
package adjacency

import (
	"math"
	"sort"

	"github.com/born-ml/gnn/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// ErrNotSquare is returned for operators that must be square.
var ErrNotSquare = errors.New("adjacency: matrix is not square")

// FromGraph returns the adjacency matrix of g with rows and columns in the order
// of nodes. A nil nodes uses every node of g sorted by ID. Edge values are 1,
// or the edge weight when g implements graph.Weighted. Edges to nodes outside
// the list are dropped.
func FromGraph(g graph.Graph, nodes []graph.Node) (*tensor.SparseMatrix, error) {
	if nodes == nil {
		nodes = graph.NodesOf(g.Nodes())
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	}
	index := make(map[int64]int, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.ID()]; dup {
			return nil, errors.Errorf("adjacency: node %d listed twice", n.ID())
		}
		index[n.ID()] = i
	}

	weighted, isWeighted := g.(graph.Weighted)
	var rows, cols []int
	var values []float64
	for i, u := range nodes {
		to := g.From(u.ID())
		for to.Next() {
			v := to.Node()
			j, ok := index[v.ID()]
			if !ok {
				continue
			}
			w := 1.0
			if isWeighted {
				w, _ = weighted.Weight(u.ID(), v.ID())
			}
			rows = append(rows, i)
			cols = append(cols, j)
			values = append(values, w)
		}
	}
	return tensor.NewSparseCOO(len(nodes), len(nodes), rows, cols, values)
}

// Normalized returns the self-loop renormalised operator D^-1/2 (A + I) D^-1/2,
// where D is the degree matrix of A + I.
func Normalized(a *tensor.SparseMatrix) (*tensor.SparseMatrix, error) {
	n, err := square(a)
	if err != nil {
		return nil, err
	}
	deg := rowSums(a)
	for i := range deg {
		deg[i]++
	}

	rows, cols, values := entries(a)
	for i := 0; i < n; i++ {
		rows = append(rows, i)
		cols = append(cols, i)
		values = append(values, 1)
	}
	for k := range values {
		values[k] /= math.Sqrt(deg[rows[k]] * deg[cols[k]])
	}
	return tensor.NewSparseCOO(n, n, rows, cols, values)
}

// Laplacian returns the normalised graph Laplacian L = I - D^-1/2 A D^-1/2.
// Rows and columns of isolated nodes are zero.
func Laplacian(a *tensor.SparseMatrix) (*tensor.SparseMatrix, error) {
	n, err := square(a)
	if err != nil {
		return nil, err
	}
	deg := rowSums(a)

	var rows, cols []int
	var values []float64
	for i := 0; i < n; i++ {
		if deg[i] > 0 {
			rows = append(rows, i)
			cols = append(cols, i)
			values = append(values, 1)
		}
	}
	a.DoNonZero(func(i, j int, v float64) {
		if deg[i] <= 0 || deg[j] <= 0 {
			return
		}
		rows = append(rows, i)
		cols = append(cols, j)
		values = append(values, -v/math.Sqrt(deg[i]*deg[j]))
	})
	return tensor.NewSparseCOO(n, n, rows, cols, values)
}

// MaxEigenvalue returns the largest eigenvalue of a symmetric sparse matrix.
func MaxEigenvalue(m *tensor.SparseMatrix) (float64, error) {
	n, err := square(m)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	sym := mat.NewSymDense(n, nil)
	m.DoNonZero(func(i, j int, v float64) {
		if i <= j {
			sym.SetSym(i, j, v)
		}
	})
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return 0, errors.New("adjacency: eigendecomposition did not converge")
	}
	values := eig.Values(nil)
	return values[len(values)-1], nil
}

// ScaledLaplacian returns 2L/λmax - I, the Laplacian rescaled to [-1, 1] for
// Chebyshev filters. A graph without edges uses λmax = 2.
func ScaledLaplacian(a *tensor.SparseMatrix) (*tensor.SparseMatrix, error) {
	l, err := Laplacian(a)
	if err != nil {
		return nil, err
	}
	lambda, err := MaxEigenvalue(l)
	if err != nil {
		return nil, err
	}
	if lambda <= 0 {
		lambda = 2
	}
	klog.V(2).Infof("scaled laplacian: %d node(s), lambda max %.4f", l.Rows(), lambda)

	n := l.Rows()
	rows, cols, values := entries(l)
	for k := range values {
		values[k] *= 2 / lambda
	}
	for i := 0; i < n; i++ {
		rows = append(rows, i)
		cols = append(cols, i)
		values = append(values, -1)
	}
	return tensor.NewSparseCOO(n, n, rows, cols, values)
}

// Chebyshev returns the two hop operators [I, L̃] consumed by a Chebyshev GCN,
// with L̃ the scaled Laplacian of a.
func Chebyshev(a *tensor.SparseMatrix) ([]*tensor.SparseMatrix, error) {
	scaled, err := ScaledLaplacian(a)
	if err != nil {
		return nil, err
	}
	return []*tensor.SparseMatrix{tensor.Identity(a.Rows()), scaled}, nil
}

// BlockDiag stacks per-graph operators into one batch operator.
func BlockDiag(ops ...*tensor.SparseMatrix) (*tensor.SparseMatrix, error) {
	return tensor.BlockDiag(ops...)
}

// Repeat stacks batch copies of the same operator.
func Repeat(op *tensor.SparseMatrix, batch int) (*tensor.SparseMatrix, error) {
	if batch <= 0 {
		return nil, errors.Errorf("adjacency: batch must be positive, got %d", batch)
	}
	ops := make([]*tensor.SparseMatrix, batch)
	for i := range ops {
		ops[i] = op
	}
	return tensor.BlockDiag(ops...)
}

// Identity returns the n×n identity operator.
func Identity(n int) *tensor.SparseMatrix {
	return tensor.Identity(n)
}

func square(m *tensor.SparseMatrix) (int, error) {
	r, c := m.Dims()
	if r != c {
		return 0, errors.Wrapf(ErrNotSquare, "(%d, %d)", r, c)
	}
	return r, nil
}

func rowSums(m *tensor.SparseMatrix) []float64 {
	sums := make([]float64, m.Rows())
	m.DoNonZero(func(i, _ int, v float64) {
		sums[i] += v
	})
	return sums
}

func entries(m *tensor.SparseMatrix) (rows, cols []int, values []float64) {
	m.DoNonZero(func(i, j int, v float64) {
		rows = append(rows, i)
		cols = append(cols, j)
		values = append(values, v)
	})
	return rows, cols, values
}
