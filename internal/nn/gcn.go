package nn

import (
	"fmt"

	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// maxHops is the largest number of propagation operators a GCN consumes.
const maxHops = 2

// GCNConfig configures a graph convolution layer.
type GCNConfig struct {
	Features    int         // Output features per node (required, > 0)
	Chebyshev   bool        // Use two hops (I and the scaled Laplacian) instead of one
	Initializer Initializer // Weight initializer (default: GlorotUniform)
	Name        string      // Used in logs and errors (default: "gcn")
}

// GCN is a graph convolution layer:
//
//	out = ReLU( sum_i  A_i · (X · W_i) )
//
// over i < Hops(). X has shape (B, N, Fin) and each A_i is a (B*N, B*N) operator,
// usually the block-diagonal stacking of per-graph operators. The weights are
// created on the first observed input shape.
type GCN[B tensor.Backend] struct {
	name     string
	features int
	hops     int
	init     Initializer
	backend  B

	weights    [maxHops]*Parameter[B]
	inFeatures int
	built      bool
}

// NewGCN creates an unbuilt graph convolution layer.
//
// Panics if cfg.Features is not positive.
func NewGCN[B tensor.Backend](cfg GCNConfig, backend B) *GCN[B] {
	if cfg.Features <= 0 {
		exceptions.Panicf("NewGCN: features must be positive, got %d", cfg.Features)
	}
	if cfg.Initializer == nil {
		cfg.Initializer = GlorotUniform{}
	}
	if cfg.Name == "" {
		cfg.Name = "gcn"
	}
	hops := 1
	if cfg.Chebyshev {
		hops = 2
	}
	return &GCN[B]{
		name:     cfg.Name,
		features: cfg.Features,
		hops:     hops,
		init:     cfg.Initializer,
		backend:  backend,
	}
}

// Build allocates one (Fin, Fout) weight per hop from an input shape (B, N, Fin).
// Calling Build on a built layer does nothing.
func (g *GCN[B]) Build(inputShape tensor.Shape) {
	if g.built {
		return
	}
	if inputShape.Rank() != 3 {
		exceptions.Panicf("%s: expected input shape (batch, nodes, features), got %v", g.name, inputShape)
	}
	g.inFeatures = inputShape[2]
	for i := 0; i < g.hops; i++ {
		g.weights[i] = newWeight(fmt.Sprintf("W_%d", i), g.inFeatures, g.features, g.init, g.backend)
	}
	g.built = true
	klog.V(1).Infof("gcn %q built: %d hop(s), weights (%d, %d)", g.name, g.hops, g.inFeatures, g.features)
}

// Forward propagates node features over the adjacency set and returns the
// activated features together with the same adjacency set.
func (g *GCN[B]) Forward(in GraphBatch[B]) GraphBatch[B] {
	shape := in.Features.Shape()
	g.Build(shape)
	if len(in.Adjacency) < g.hops {
		exceptions.Panicf("%s: %d adjacency operator(s) for %d hop(s)", g.name, len(in.Adjacency), g.hops)
	}

	batch, nodes, fin := shape[0], shape[1], shape[2]
	flat := in.Features.Reshape(batch*nodes, fin)

	var sum *tensor.Tensor[float32, B]
	for i := 0; i < g.hops; i++ {
		h := flat.MatMul(g.weights[i].Tensor()).
			SparseMatMul(in.Adjacency[i]).
			Reshape(batch, nodes, g.features)
		if sum == nil {
			sum = h
		} else {
			sum = sum.Add(h)
		}
	}

	return GraphBatch[B]{Adjacency: in.Adjacency, Features: sum.ReLU()}
}

// OutputShape returns (B, N, Fout) for an input shape (B, N, Fin).
func (g *GCN[B]) OutputShape(inputShape tensor.Shape) tensor.Shape {
	if inputShape.Rank() != 3 {
		exceptions.Panicf("%s: expected input shape (batch, nodes, features), got %v", g.name, inputShape)
	}
	return tensor.Shape{inputShape[0], inputShape[1], g.features}
}

// Parameters implements Module.
func (g *GCN[B]) Parameters() []*Parameter[B] {
	return g.Weights()
}

// Weights returns the hop-indexed weights, or nil before the layer is built.
func (g *GCN[B]) Weights() []*Parameter[B] {
	if !g.built {
		return nil
	}
	return g.weights[:g.hops:g.hops]
}

// Hops returns the number of adjacency operators consumed per forward pass.
func (g *GCN[B]) Hops() int { return g.hops }

// Built reports whether the weights have been created.
func (g *GCN[B]) Built() bool { return g.built }

// Features returns the configured output feature count.
func (g *GCN[B]) Features() int { return g.features }

// Name returns the layer name.
func (g *GCN[B]) Name() string { return g.name }

// StateDict implements Stateful. Keys are "W_0" and, for Chebyshev layers, "W_1".
func (g *GCN[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor, g.hops)
	for _, w := range g.Weights() {
		state[w.Name()] = w.Tensor().Raw()
	}
	return state
}

// LoadStateDict implements Stateful. An unbuilt layer is built from the shape of
// W_0. Every weight is checked before the layer is built or written to, so a
// failed load leaves the layer unchanged.
func (g *GCN[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	fin, err := g.checkStateDict(stateDict)
	if err != nil {
		return err
	}
	g.Build(tensor.Shape{1, 1, fin})
	for _, w := range g.Weights() {
		copy(w.Tensor().Raw().AsFloat32(), stateDict[w.Name()].AsFloat32())
	}
	return nil
}

// checkStateDict returns the input feature count implied by stateDict after
// checking that it holds one float32 (Fin, Features) weight per hop. A built
// layer requires its own Fin.
func (g *GCN[B]) checkStateDict(stateDict map[string]*tensor.RawTensor) (int, error) {
	fin := g.inFeatures
	for i := 0; i < g.hops; i++ {
		name := fmt.Sprintf("W_%d", i)
		src, ok := stateDict[name]
		if !ok {
			return 0, errors.Wrapf(ErrStateDict, "%s: missing %s", g.name, name)
		}
		if src.DType() != tensor.Float32 {
			return 0, errors.Wrapf(ErrStateDict, "%s: %s has dtype %s, want float32", g.name, name, src.DType())
		}
		shape := src.Shape()
		if shape.Rank() != 2 {
			return 0, errors.Wrapf(ErrStateDict, "%s: %s has shape %v, want 2D", g.name, name, shape)
		}
		if !g.built && i == 0 {
			fin = shape[0]
		}
		if want := (tensor.Shape{fin, g.features}); !shape.Equal(want) {
			return 0, errors.Wrapf(ErrStateDict, "%s: %s has shape %v, want %v", g.name, name, shape, want)
		}
	}
	return fin, nil
}
