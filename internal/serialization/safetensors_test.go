package serialization

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/born-ml/gnn/internal/backend/cpu"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeTensorsRoundTrip(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "gcn.safetensors")

	w0 := tensor.MustNewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	for i := range w0.AsFloat32() {
		w0.AsFloat32()[i] = float32(i) * 0.5
	}
	w1 := tensor.MustNewRaw(tensor.Shape{4}, tensor.Float64, tensor.CPU)
	copy(w1.AsFloat64(), []float64{1, -2, 3, -4})
	ids := tensor.MustNewRaw(tensor.Shape{3}, tensor.Int32, tensor.CPU)
	copy(ids.AsInt32(), []int32{0, 0, 1})

	stateDict := map[string]*tensor.RawTensor{"W_0": w0, "W_1": w1, "ids": ids}
	require.NoError(t, WriteSafeTensors(path, stateDict, map[string]string{"layer": "gcn"}))

	loaded, metadata, err := ReadSafeTensors(path, backend)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"layer": "gcn"}, metadata)
	require.Len(t, loaded, 3)

	for name, want := range stateDict {
		got := loaded[name]
		require.NotNil(t, got, name)
		assert.Equal(t, want.DType(), got.DType(), name)
		assert.True(t, want.Shape().Equal(got.Shape()), name)
		assert.Equal(t, want.Data(), got.Data(), name)
	}
}

func TestSafeTensorsNoMetadata(t *testing.T) {
	var buf bytes.Buffer
	x := tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	require.NoError(t, WriteStateDict(&buf, map[string]*tensor.RawTensor{"x": x}, nil))

	loaded, metadata, err := ReadStateDict(&buf, cpu.New())
	require.NoError(t, err)
	assert.Nil(t, metadata)
	assert.Contains(t, loaded, "x")
}

func TestSafeTensorsErrors(t *testing.T) {
	backend := cpu.New()

	t.Run("MissingFile", func(t *testing.T) {
		_, _, err := ReadSafeTensors(filepath.Join(t.TempDir(), "nope.safetensors"), backend)
		assert.Error(t, err)
	})

	t.Run("Truncated", func(t *testing.T) {
		var buf bytes.Buffer
		x := tensor.MustNewRaw(tensor.Shape{8}, tensor.Float64, tensor.CPU)
		require.NoError(t, WriteStateDict(&buf, map[string]*tensor.RawTensor{"x": x}, nil))
		data := buf.Bytes()[:buf.Len()-8]

		_, _, err := ReadStateDict(bytes.NewReader(data), backend)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "got %v", err)
	})

	t.Run("HugeHeader", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1)))
		_, _, err := ReadStateDict(&buf, backend)
		assert.True(t, errors.Is(err, ErrHeaderTooLarge), "got %v", err)
	})

	t.Run("UnknownDType", func(t *testing.T) {
		header := []byte(`{"x":{"dtype":"BF16","shape":[1],"data_offsets":[0,2]}}`)
		var buf bytes.Buffer
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(header))))
		buf.Write(header)
		buf.Write([]byte{0, 0})

		_, _, err := ReadStateDict(&buf, backend)
		assert.True(t, errors.Is(err, ErrUnsupportedDType), "got %v", err)
	})

	rejects := map[string]string{
		"OverflowingShape": `{"x":{"dtype":"F32","shape":[4611686018427387904,4],"data_offsets":[0,0]}}`,
		"HugeShape":        `{"x":{"dtype":"F32","shape":[1000000000],"data_offsets":[0,4]}}`,
		"NegativeDim":      `{"x":{"dtype":"F32","shape":[-1],"data_offsets":[0,4]}}`,
		"InvertedOffsets":  `{"x":{"dtype":"F32","shape":[1],"data_offsets":[4,0]}}`,
	}
	for name, header := range rejects {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(header))))
			buf.WriteString(header)
			buf.Write([]byte{0, 0, 0, 0})

			_, _, err := ReadStateDict(&buf, backend)
			assert.True(t, errors.Is(err, ErrOutOfBounds), "got %v", err)
		})
	}
}
