package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/born-ml/gnn/internal/tensor"
	"github.com/pkg/errors"
)

// ReadSafeTensors loads every tensor of a SafeTensors file, returning the state
// dict and the optional metadata.
func ReadSafeTensors(path string, backend tensor.Backend) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: the path is chosen by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read file")
	}
	stateDict, metadata, err := ReadStateDict(bytes.NewReader(data), backend)
	if err != nil {
		return nil, nil, errors.WithMessage(err, path)
	}
	return stateDict, metadata, nil
}

// ReadStateDict parses SafeTensors content from r.
func ReadStateDict(r io.Reader, backend tensor.Backend) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read header")
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse header")
	}

	var metadata map[string]string
	if raw, ok := entries["__metadata__"]; ok {
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, nil, errors.Wrap(err, "failed to parse metadata")
		}
		delete(entries, "__metadata__")
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read tensor data")
	}

	stateDict := make(map[string]*tensor.RawTensor, len(entries))
	for name, raw := range entries {
		var h SafeTensorHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, nil, errors.Wrapf(err, "tensor %q: bad header entry", name)
		}
		t, err := decodeTensor(h, body, backend)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "tensor %q", name)
		}
		stateDict[name] = t
	}
	return stateDict, metadata, nil
}

func decodeTensor(h SafeTensorHeader, body []byte, backend tensor.Backend) (*tensor.RawTensor, error) {
	dtype, err := dtypeFromSafeTensors(h.DType)
	if err != nil {
		return nil, err
	}
	shape := make(tensor.Shape, len(h.Shape))
	size := int64(dtype.Size())
	for i, d := range h.Shape {
		if d <= 0 || d > math.MaxInt64/size {
			return nil, errors.Wrapf(ErrOutOfBounds, "dimension %d of shape %v", i, h.Shape)
		}
		size *= d
		shape[i] = int(d)
	}

	// Offsets are checked against the header before anything is allocated.
	start, end := h.DataOffsets[0], h.DataOffsets[1]
	if start < 0 || start > end || end > int64(len(body)) || end-start != size {
		return nil, errors.Wrapf(ErrOutOfBounds, "offsets [%d, %d) for %d bytes of %d available",
			start, end, size, len(body))
	}
	t, err := tensor.NewRaw(shape, dtype, backend.Device())
	if err != nil {
		return nil, err
	}
	copy(t.Data(), body[start:end])
	return t, nil
}
