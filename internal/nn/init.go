package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// Initializer fills a freshly allocated (fanIn, fanOut) weight.
type Initializer interface {
	Initialize(data []float32, fanIn, fanOut int)
}

// GlorotUniform samples from U(-limit, limit) with limit = sqrt(6 / (fanIn + fanOut)),
// the Xavier/Glorot uniform scheme.
//
// A nil Rand uses the global math/rand source.
type GlorotUniform struct {
	Rand *rand.Rand
}

// Initialize implements Initializer.
func (g GlorotUniform) Initialize(data []float32, fanIn, fanOut int) {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	for i := range data {
		var u float64
		if g.Rand != nil {
			u = g.Rand.Float64()
		} else {
			u = rand.Float64() //nolint:gosec // Weight init, not crypto.
		}
		data[i] = float32((2*u - 1) * limit)
	}
}

// Constant copies Values into every weight it initializes. Values must hold
// exactly fanIn*fanOut elements.
type Constant struct {
	Values []float32
}

// Initialize implements Initializer.
func (c Constant) Initialize(data []float32, fanIn, fanOut int) {
	if len(c.Values) != len(data) {
		exceptions.Panicf("constant initializer: have %d values for a (%d, %d) weight", len(c.Values), fanIn, fanOut)
	}
	copy(data, c.Values)
}

// newWeight allocates a (fanIn, fanOut) parameter filled by init.
func newWeight[B tensor.Backend](name string, fanIn, fanOut int, init Initializer, backend B) *Parameter[B] {
	w := tensor.Zeros[float32](tensor.Shape{fanIn, fanOut}, backend)
	init.Initialize(w.Data(), fanIn, fanOut)
	return NewParameter(name, w)
}
