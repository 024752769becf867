package adjacency

import (
	"math"
	"testing"

	"github.com/born-ml/gnn/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// path returns the undirected path 0 - 1 - ... - n-1.
func path(n int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i+1 < n; i++ {
		g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+1)))
	}
	return g
}

func TestFromGraph(t *testing.T) {
	a, err := FromGraph(path(3), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{
		0, 1, 0,
		1, 0, 1,
		0, 1, 0,
	}, a.Dense())

	t.Run("NodeOrder", func(t *testing.T) {
		a, err := FromGraph(path(3), []graph.Node{simple.Node(1), simple.Node(0), simple.Node(2)})
		require.NoError(t, err)
		assert.Equal(t, []float64{
			0, 1, 1,
			1, 0, 0,
			1, 0, 0,
		}, a.Dense())
	})

	t.Run("Subset", func(t *testing.T) {
		a, err := FromGraph(path(3), []graph.Node{simple.Node(0), simple.Node(1)})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 1, 0}, a.Dense())
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := FromGraph(path(3), []graph.Node{simple.Node(0), simple.Node(0)})
		assert.Error(t, err)
	})

	t.Run("Weighted", func(t *testing.T) {
		g := simple.NewWeightedUndirectedGraph(0, 0)
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(0), simple.Node(1), 2.5))
		a, err := FromGraph(g, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 2.5, 2.5, 0}, a.Dense())
	})

	t.Run("Directed", func(t *testing.T) {
		g := simple.NewDirectedGraph()
		g.SetEdge(g.NewEdge(simple.Node(0), simple.Node(1)))
		a, err := FromGraph(g, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 0, 0}, a.Dense())
	})
}

func TestNormalized(t *testing.T) {
	a, err := FromGraph(path(3), nil)
	require.NoError(t, err)
	norm, err := Normalized(a)
	require.NoError(t, err)

	// Degrees of A + I are (2, 3, 2).
	s6 := 1 / math.Sqrt(6)
	assert.InDeltaSlice(t, []float64{
		0.5, s6, 0,
		s6, 1.0 / 3, s6,
		0, s6, 0.5,
	}, norm.Dense(), 1e-12)

	_, err = Normalized(must.M1(tensor.NewSparseCOO(2, 3, nil, nil, nil)))
	assert.ErrorIs(t, err, ErrNotSquare)
}

func TestLaplacian_IsolatedNode(t *testing.T) {
	g := path(2)
	g.AddNode(simple.Node(2))
	a, err := FromGraph(g, nil)
	require.NoError(t, err)

	l, err := Laplacian(a)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{
		1, -1, 0,
		-1, 1, 0,
		0, 0, 0,
	}, l.Dense(), 1e-12)
}

func TestChebyshev_PathGraph(t *testing.T) {
	a, err := FromGraph(path(3), nil)
	require.NoError(t, err)

	l, err := Laplacian(a)
	require.NoError(t, err)
	lambda, err := MaxEigenvalue(l)
	require.NoError(t, err)
	// The normalised Laplacian of a path has spectrum {0, 1, 2}.
	assert.InDelta(t, 2.0, lambda, 1e-9)

	ops, err := Chebyshev(a)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, Identity(3).Dense(), ops[0].Dense())

	s2 := 1 / math.Sqrt2
	assert.InDeltaSlice(t, []float64{
		0, -s2, 0,
		-s2, 0, -s2,
		0, -s2, 0,
	}, ops[1].Dense(), 1e-9)
}

func TestScaledLaplacian_NoEdges(t *testing.T) {
	g := simple.NewUndirectedGraph()
	g.AddNode(simple.Node(0))
	g.AddNode(simple.Node(1))
	a, err := FromGraph(g, nil)
	require.NoError(t, err)

	scaled, err := ScaledLaplacian(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 0, -1}, scaled.Dense())
}

func TestRepeat(t *testing.T) {
	a, err := FromGraph(path(2), nil)
	require.NoError(t, err)

	batch, err := Repeat(a, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{
		0, 1, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
	}, batch.Dense())

	mixed, err := BlockDiag(a, Identity(1))
	require.NoError(t, err)
	assert.Equal(t, 3, mixed.Rows())

	_, err = Repeat(a, 0)
	assert.Error(t, err)
}
