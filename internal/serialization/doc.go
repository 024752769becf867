// Package serialization persists layer state dicts in the SafeTensors format.
//
//	Format Structure:
//	  [8 bytes: header size N (uint64 LE)]
//	  [N bytes: JSON header]  {"__metadata__": {...}, "W_0": {"dtype": "F32", "shape": [2, 4], "data_offsets": [0, 32]}, ...}
//	  [tensor data: raw little-endian bytes, in header order]
//
// Example usage:
//
//	if err := serialization.WriteSafeTensors("gcn.safetensors", layer.StateDict(), nil); err != nil {
//	    return err
//	}
//	stateDict, metadata, err := serialization.ReadSafeTensors("gcn.safetensors", backend)
package serialization

import "errors"

// Common errors.
var (
	ErrHeaderTooLarge   = errors.New("header exceeds maximum size")
	ErrOutOfBounds      = errors.New("tensor extends beyond data section")
	ErrUnsupportedDType = errors.New("unsupported dtype")
)

// MaxHeaderSize bounds the JSON header accepted by the reader.
const MaxHeaderSize = 100 << 20
