package nn

import (
	"github.com/born-ml/gnn/internal/serialization"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/pkg/errors"
)

// CheckpointFormat is stored in the "format" metadata entry of every checkpoint.
const CheckpointFormat = "gnn-state-dict"

// Save writes the module's state dict to a SafeTensors file.
func Save(module Stateful, path string) error {
	state := module.StateDict()
	if len(state) == 0 {
		return errors.Errorf("save %s: module has no weights (not built)", path)
	}
	metadata := map[string]string{"format": CheckpointFormat}
	if err := serialization.WriteSafeTensors(path, state, metadata); err != nil {
		return errors.WithMessagef(err, "save %s", path)
	}
	return nil
}

// Load reads a SafeTensors file written by Save into the module, building the
// module from the stored shapes if needed. backend only supplies the device for
// the loaded tensors.
func Load(module Stateful, path string, backend tensor.Backend) error {
	state, metadata, err := serialization.ReadSafeTensors(path, backend)
	if err != nil {
		return errors.WithMessagef(err, "load %s", path)
	}
	if format := metadata["format"]; format != CheckpointFormat {
		return errors.Errorf("load %s: unexpected checkpoint format %q", path, format)
	}
	return errors.WithMessagef(module.LoadStateDict(state), "load %s", path)
}
