package nn

import (
	"math/rand"
	"testing"

	"github.com/born-ml/gnn/internal/autodiff"
	"github.com/born-ml/gnn/internal/backend/cpu"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

type (
	cpuBackend  = *cpu.CPUBackend
	gradBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]
)

// ring returns the adjacency of an n-node cycle.
func ring(t *testing.T, n int) *tensor.SparseMatrix {
	t.Helper()
	rows := make([]int, 0, 2*n)
	cols := make([]int, 0, 2*n)
	vals := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		rows = append(rows, i, j)
		cols = append(cols, j, i)
		vals = append(vals, 1, 1)
	}
	a, err := tensor.NewSparseCOO(n, n, rows, cols, vals)
	require.NoError(t, err)
	return a
}

// batched stacks the same per-graph operator batch times.
func batched(t *testing.T, a *tensor.SparseMatrix, batch int) *tensor.SparseMatrix {
	t.Helper()
	blocks := make([]*tensor.SparseMatrix, batch)
	for i := range blocks {
		blocks[i] = a
	}
	out, err := tensor.BlockDiag(blocks...)
	require.NoError(t, err)
	return out
}

func features[B tensor.Backend](seed int64, backend B, shape ...int) *tensor.Tensor[float32, B] {
	return tensor.RandnFrom[float32](rand.New(rand.NewSource(seed)), tensor.Shape(shape), backend)
}

func seeded(seed int64) Initializer {
	return GlorotUniform{Rand: rand.New(rand.NewSource(seed))}
}

func fromSlice[B tensor.Backend](data []float32, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return must.M1(tensor.FromSlice(data, shape, backend))
}
