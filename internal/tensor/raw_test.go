package tensor

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawTensor_Views(t *testing.T) {
	raw, err := NewRaw(Shape{2, 2}, Float32, CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), []float32{1, 2, 3, 4})
	assert.Equal(t, 16, raw.ByteSize())
	assert.Equal(t, []float64{1, 2, 3, 4}, raw.Float64s())

	_, err = NewRaw(Shape{-1}, Float32, CPU)
	require.Error(t, err)
}

// Misuse panics with an error value so callers can recover it with
// exceptions.TryCatch.
func TestRawTensor_MisusePanicsWithError(t *testing.T) {
	raw := MustNewRaw(Shape{3}, Float32, CPU)

	cases := map[string]func(){
		"AsFloat64":  func() { raw.AsFloat64() },
		"AsInt32":    func() { raw.AsInt32() },
		"AsInt64":    func() { raw.AsInt64() },
		"Float64s":   func() { MustNewRaw(Shape{3}, Int32, CPU).Float64s() },
		"MustNewRaw": func() { MustNewRaw(Shape{-1}, Float32, CPU) },
		"Size":       func() { DataType(99).Size() },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			err := exceptions.TryCatch[error](fn)
			require.Error(t, err)
		})
	}

	err := exceptions.TryCatch[error](func() { raw.AsFloat32() })
	require.NoError(t, err)
}
