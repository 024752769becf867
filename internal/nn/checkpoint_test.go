package nn

import (
	"path/filepath"
	"testing"

	"github.com/born-ml/gnn/internal/backend/cpu"
	"github.com/born-ml/gnn/internal/serialization"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_GCNRoundTrip(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "gcn.safetensors")
	adj := AdjacencySet{tensor.Identity(6), batched(t, ring(t, 3), 2)}
	x := features(31, backend, 2, 3, 4)

	g := NewGCN(GCNConfig{Features: 3, Chebyshev: true, Initializer: seeded(32)}, backend)
	want := g.Forward(GraphBatch[cpuBackend]{Adjacency: adj, Features: x}).Features
	require.NoError(t, Save(g, path))

	restored := NewGCN(GCNConfig{Features: 3, Chebyshev: true}, backend)
	require.NoError(t, Load(restored, path, backend))
	got := restored.Forward(GraphBatch[cpuBackend]{Adjacency: adj, Features: x}).Features
	assert.Equal(t, want.Data(), got.Data())
}

func TestCheckpoint_DiffPoolRoundTrip(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "diffpool.safetensors")
	adj := AdjacencySet{batched(t, ring(t, 4), 2)}
	x := features(33, backend, 2, 4, 3)

	d := NewDiffPool(adj, DiffPoolConfig{Clusters: 2, Initializer: seeded(34)}, backend)
	want := d.Forward(x)
	require.NoError(t, Save(d, path))

	restored := NewDiffPool(adj, DiffPoolConfig{Clusters: 2}, backend)
	require.NoError(t, Load(restored, path, backend))
	got := restored.Forward(x)
	assert.Equal(t, want.Features.Data(), got.Features.Data())
	assert.Equal(t, want.Adjacency.Data(), got.Adjacency.Data())
}

func TestCheckpoint_Errors(t *testing.T) {
	backend := cpu.New()
	dir := t.TempDir()

	assert.Error(t, Save(NewGCN(GCNConfig{Features: 2}, backend), filepath.Join(dir, "unbuilt.safetensors")))
	assert.Error(t, Load(NewGCN(GCNConfig{Features: 2}, backend), filepath.Join(dir, "missing.safetensors"), backend))

	foreign := filepath.Join(dir, "foreign.safetensors")
	w := tensor.MustNewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, serialization.WriteSafeTensors(foreign, map[string]*tensor.RawTensor{"W_0": w}, nil))
	assert.Error(t, Load(NewGCN(GCNConfig{Features: 2}, backend), foreign, backend))
}
