package main

import (
	"math/rand"

	"github.com/born-ml/gnn/adjacency"
	"github.com/born-ml/gnn/backend/cpu"
	"github.com/born-ml/gnn/nn"
	"github.com/born-ml/gnn/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph/simple"
)

type backend = *cpu.Backend

// pipeline is GCN -> DiffPool -> SegmentPool over one synthetic batch.
type pipeline struct {
	x    *tensor.Tensor[float32, backend]
	hops nn.AdjacencySet
	gcn  *nn.GCN[backend]
	diff *nn.DiffPool[backend]
	pool *nn.SegmentPool[backend]
}

// stage is the output of one step of the pipeline.
type stage struct {
	name string
	out  *tensor.Tensor[float32, backend]
}

// ring returns a cycle over n nodes.
func ring(n int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if i != j && !g.HasEdgeBetween(int64(i), int64(j)) {
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
		}
	}
	return g
}

// star returns a hub (node 0) connected to n-1 leaves.
func star(n int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	g.AddNode(simple.Node(0))
	for i := 1; i < n; i++ {
		g.SetEdge(g.NewEdge(simple.Node(0), simple.Node(i)))
	}
	return g
}

// operators holds the block-diagonal batch operators: the GCN hops, and the
// renormalised adjacency DiffPool propagates over.
type operators struct {
	gcn      nn.AdjacencySet
	diffpool nn.AdjacencySet
}

// batchOperators builds the operators of a batch alternating ring and star graphs.
func batchOperators(opts options) (*operators, error) {
	var normalized, identity, scaled []*tensor.SparseMatrix
	for b := 0; b < opts.batch; b++ {
		g := ring(opts.nodes)
		if b%2 == 1 {
			g = star(opts.nodes)
		}
		a, err := adjacency.FromGraph(g, nil)
		if err != nil {
			return nil, err
		}
		norm, err := adjacency.Normalized(a)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, norm)
		if opts.cheb {
			hops, err := adjacency.Chebyshev(a)
			if err != nil {
				return nil, err
			}
			identity = append(identity, hops[0])
			scaled = append(scaled, hops[1])
		}
	}

	norm, err := adjacency.BlockDiag(normalized...)
	if err != nil {
		return nil, err
	}
	ops := &operators{gcn: nn.AdjacencySet{norm}, diffpool: nn.AdjacencySet{norm}}
	if opts.cheb {
		i, err := adjacency.BlockDiag(identity...)
		if err != nil {
			return nil, err
		}
		l, err := adjacency.BlockDiag(scaled...)
		if err != nil {
			return nil, err
		}
		ops.gcn = nn.AdjacencySet{i, l}
	}
	return ops, nil
}

func newPipeline(opts options) (*pipeline, error) {
	switch {
	case opts.batch <= 0:
		return nil, errors.Wrapf(nn.ErrInvalidBatchSize, "-batch=%d", opts.batch)
	case opts.nodes <= 1:
		return nil, errors.Errorf("-nodes must be at least 2, got %d", opts.nodes)
	case opts.features <= 0 || opts.hidden <= 0:
		return nil, errors.Errorf("-features and -hidden must be positive, got %d and %d", opts.features, opts.hidden)
	case opts.clusters < 0:
		return nil, errors.Errorf("-clusters must not be negative, got %d", opts.clusters)
	}
	mode, err := nn.ParsePoolMode(opts.mode)
	if err != nil {
		return nil, err
	}
	ops, err := batchOperators(opts)
	if err != nil {
		return nil, errors.WithMessage(err, "building adjacency operators")
	}

	b := cpu.New()
	rng := rand.New(rand.NewSource(opts.seed))
	init := nn.GlorotUniform{Rand: rng}

	p := &pipeline{
		x:    tensor.RandnFrom[float32](rng, tensor.Shape{opts.batch, opts.nodes, opts.features}, b),
		hops: ops.gcn,
		gcn:  nn.NewGCN(nn.GCNConfig{Features: opts.hidden, Chebyshev: opts.cheb, Initializer: init}, b),
		diff: nn.NewDiffPool(ops.diffpool, nn.DiffPoolConfig{Clusters: opts.clusters, Initializer: init}, b),
	}
	p.pool, err = nn.NewSegmentPool(opts.batch, mode, b)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// forward runs the whole pipeline once.
func (p *pipeline) forward() []stage {
	h := p.gcn.Forward(nn.GraphBatch[backend]{Adjacency: p.hops, Features: p.x})
	coarse := p.diff.Forward(h.Features)
	out := p.pool.Forward(coarse.Features)
	return []stage{
		{"input", p.x},
		{"gcn", h.Features},
		{"diffpool assignment", coarse.Assignment},
		{"diffpool adjacency", coarse.Adjacency},
		{"diffpool features", coarse.Features},
		{"readout (" + p.pool.Mode().String() + ")", out},
	}
}
