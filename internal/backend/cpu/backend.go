// Package cpu implements the CPU backend: generic Go kernels, dense GEMM through
// gonum BLAS and row-parallel sparse products.
package cpu

import (
	"github.com/born-ml/gnn/internal/parallel"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend using all available cores.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallelism configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, binaryAdd)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, binarySub)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, binaryMul)
}

// MulScalar multiplies every element by scalar. For integer tensors the scalar is
// truncated to the element type.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape(), x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		scale(result.AsFloat32(), x.AsFloat32(), float32(scalar))
	case tensor.Float64:
		scale(result.AsFloat64(), x.AsFloat64(), scalar)
	case tensor.Int32:
		scale(result.AsInt32(), x.AsInt32(), int32(scalar))
	case tensor.Int64:
		scale(result.AsInt64(), x.AsInt64(), int64(scalar))
	default:
		exceptions.Panicf("mulScalar: unsupported dtype %s", x.DType())
	}
	return result
}

type binaryKind int

const (
	binaryAdd binaryKind = iota
	binarySub
	binaryMul
)

func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, kind binaryKind) *tensor.RawTensor {
	if a.DType() != b.DType() {
		exceptions.Panicf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType())
	}
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		exceptions.Panicf("%s: %v", name, err)
	}
	result := tensor.MustNewRaw(outShape, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		elementwise(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, needsBroadcast, kind)
	case tensor.Float64:
		elementwise(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, needsBroadcast, kind)
	case tensor.Int32:
		elementwise(result.AsInt32(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), outShape, needsBroadcast, kind)
	case tensor.Int64:
		elementwise(result.AsInt64(), a.AsInt64(), b.AsInt64(), a.Shape(), b.Shape(), outShape, needsBroadcast, kind)
	default:
		exceptions.Panicf("%s: unsupported dtype %s", name, a.DType())
	}
	return result
}
