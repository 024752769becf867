package tensor

// Backend defines the operations a compute backend must provide for the graph
// layers. Backends receive and return RawTensors and never modify their inputs.
//
// Implementations:
//   - internal/backend/cpu: pure Go kernels, dense GEMM through gonum BLAS.
//
// Decorator backends:
//   - internal/autodiff: records every op on a gradient tape (wraps any backend).
//
// Shape errors are programming errors: backends panic with a message naming the op.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by a scalar.
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// MatMul multiplies two 2D tensors: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul multiplies 3D tensors batch by batch: (B, M, K) @ (B, K, N) -> (B, M, N).
	BatchMatMul(a, b *RawTensor) *RawTensor

	// SparseMatMul multiplies a sparse (M, K) matrix with a dense 2D (K, N) tensor.
	SparseMatMul(a *SparseMatrix, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Activations.
	ReLU(x *RawTensor) *RawTensor
	Softmax(x *RawTensor, dim int) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Segment reductions over the rows of a 2D tensor. segmentIDs has one entry per
	// row, is non-decreasing and lies in [0, numSegments). The result has shape
	// (numSegments, columns).
	SegmentMax(x *RawTensor, segmentIDs []int32, numSegments int) *RawTensor
	SegmentMean(x *RawTensor, segmentIDs []int32, numSegments int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
