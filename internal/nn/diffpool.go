package nn

import (
	"strings"

	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DiffPoolConfig configures a DiffPool layer.
type DiffPoolConfig struct {
	Clusters    int         // Coarse nodes K per graph (default: the input feature count)
	Initializer Initializer // Passed to both inner GCNs (default: GlorotUniform)
}

// Coarsened is the output of DiffPool for a batch of B graphs.
type Coarsened[B tensor.Backend] struct {
	Adjacency  *tensor.Tensor[float32, B] // (B, K, K) = Sᵀ·A·S
	Features   *tensor.Tensor[float32, B] // (B, K, F) = Sᵀ·Z
	Assignment *tensor.Tensor[float32, B] // (B, N, K) = S, rows sum to 1
}

// DiffPool coarsens every graph of a batch from N nodes to K clusters.
//
// Two single-hop GCNs share the adjacency set: "pool" produces the soft
// assignment S = softmax(pool(A, X)) over the cluster axis and "embed" produces
// the node embedding Z = embed(A, X).
type DiffPool[B tensor.Backend] struct {
	adj      AdjacencySet
	clusters int
	init     Initializer
	backend  B

	pool  *GCN[B]
	embed *GCN[B]
	built bool
}

// NewDiffPool creates an unbuilt DiffPool layer over adj. The adjacency set is
// held by reference and its first operator is used for propagation.
//
// Panics if adj is empty or cfg.Clusters is negative.
func NewDiffPool[B tensor.Backend](adj AdjacencySet, cfg DiffPoolConfig, backend B) *DiffPool[B] {
	if len(adj) == 0 {
		exceptions.Panicf("NewDiffPool: empty adjacency set")
	}
	if cfg.Clusters < 0 {
		exceptions.Panicf("NewDiffPool: clusters must not be negative, got %d", cfg.Clusters)
	}
	if cfg.Initializer == nil {
		cfg.Initializer = GlorotUniform{}
	}
	return &DiffPool[B]{adj: adj, clusters: cfg.Clusters, init: cfg.Initializer, backend: backend}
}

// Build creates and builds the pool and embed GCNs for an input shape (B, N, F).
func (d *DiffPool[B]) Build(inputShape tensor.Shape) {
	if d.built {
		return
	}
	if inputShape.Rank() != 3 {
		exceptions.Panicf("diffpool: expected input shape (batch, nodes, features), got %v", inputShape)
	}
	d.pool, d.embed = d.newLayers(inputShape[2])
	d.pool.Build(inputShape)
	d.embed.Build(inputShape)
	d.built = true
	klog.V(1).Infof("diffpool built: %d feature(s) -> %d cluster(s)", inputShape[2], d.pool.Features())
}

// newLayers returns unbuilt pool and embed GCNs for F input features.
func (d *DiffPool[B]) newLayers(features int) (pool, embed *GCN[B]) {
	k := d.clusters
	if k == 0 {
		k = features
	}
	pool = NewGCN(GCNConfig{Features: k, Initializer: d.init, Name: "pool"}, d.backend)
	embed = NewGCN(GCNConfig{Features: features, Initializer: d.init, Name: "embed"}, d.backend)
	return pool, embed
}

// Forward coarsens a (B, N, F) feature tensor.
func (d *DiffPool[B]) Forward(x *tensor.Tensor[float32, B]) Coarsened[B] {
	shape := x.Shape()
	d.Build(shape)
	batch, nodes := shape[0], shape[1]
	k := d.pool.Features()

	in := GraphBatch[B]{Adjacency: d.adj, Features: x}
	s := d.pool.Forward(in).Features.Softmax(-1)
	z := d.embed.Forward(in).Features
	sT := s.T()

	as := s.Reshape(batch*nodes, k).SparseMatMul(d.adj[0]).Reshape(batch, nodes, k)
	return Coarsened[B]{
		Adjacency:  sT.BatchMatMul(as),
		Features:   sT.BatchMatMul(z),
		Assignment: s,
	}
}

// OutputShape returns the coarsened adjacency shape (B, K, K) and feature shape
// (B, K, F) for an input shape (B, N, F).
func (d *DiffPool[B]) OutputShape(inputShape tensor.Shape) (tensor.Shape, tensor.Shape) {
	if inputShape.Rank() != 3 {
		exceptions.Panicf("diffpool: expected input shape (batch, nodes, features), got %v", inputShape)
	}
	batch, features := inputShape[0], inputShape[2]
	k := d.clusters
	if k == 0 {
		k = features
	}
	return tensor.Shape{batch, k, k}, tensor.Shape{batch, k, features}
}

// Pool returns the assignment GCN, or nil before the layer is built.
func (d *DiffPool[B]) Pool() *GCN[B] { return d.pool }

// Embed returns the embedding GCN, or nil before the layer is built.
func (d *DiffPool[B]) Embed() *GCN[B] { return d.embed }

// Built reports whether the inner GCNs have been created.
func (d *DiffPool[B]) Built() bool { return d.built }

// Parameters implements Module: the pool weights followed by the embed weights.
func (d *DiffPool[B]) Parameters() []*Parameter[B] {
	if !d.built {
		return nil
	}
	params := append([]*Parameter[B]{}, d.pool.Parameters()...)
	return append(params, d.embed.Parameters()...)
}

// StateDict implements Stateful with keys "pool.W_0" and "embed.W_0".
func (d *DiffPool[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	if !d.built {
		return state
	}
	for prefix, layer := range d.layers() {
		for name, raw := range layer.StateDict() {
			state[prefix+"."+name] = raw
		}
	}
	return state
}

// LoadStateDict implements Stateful. An unbuilt layer is built from the shape of
// embed.W_0, which is (F, F). Nothing is built or written unless both inner
// state dicts match.
func (d *DiffPool[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	subs := map[string]map[string]*tensor.RawTensor{"pool": {}, "embed": {}}
	for name, raw := range stateDict {
		if prefix, rest, ok := strings.Cut(name, "."); ok && subs[prefix] != nil {
			subs[prefix][rest] = raw
		}
	}

	pool, embed := d.pool, d.embed
	if !d.built {
		w, ok := subs["embed"]["W_0"]
		if !ok {
			return errors.Wrap(ErrStateDict, "diffpool: missing embed.W_0")
		}
		if w.Shape().Rank() != 2 {
			return errors.Wrapf(ErrStateDict, "diffpool: embed.W_0 has shape %v, want 2D", w.Shape())
		}
		pool, embed = d.newLayers(w.Shape()[1])
	}
	finPool, err := pool.checkStateDict(subs["pool"])
	if err != nil {
		return errors.WithMessage(err, "diffpool")
	}
	finEmbed, err := embed.checkStateDict(subs["embed"])
	if err != nil {
		return errors.WithMessage(err, "diffpool")
	}
	if finEmbed != embed.Features() || finPool != finEmbed {
		return errors.Wrapf(ErrStateDict, "diffpool: pool.W_0 reads %d and embed.W_0 reads %d features, want %d",
			finPool, finEmbed, embed.Features())
	}

	d.Build(tensor.Shape{1, 1, finEmbed})
	for prefix, layer := range d.layers() {
		if err := layer.LoadStateDict(subs[prefix]); err != nil {
			return errors.WithMessage(err, "diffpool")
		}
	}
	return nil
}

func (d *DiffPool[B]) layers() map[string]*GCN[B] {
	return map[string]*GCN[B]{"pool": d.pool, "embed": d.embed}
}
