// Package encoder defines the text feature-encoder boundary used by the
// retraining pipeline. An encoder turns a text into a fixed-length numeric
// feature: exactly maxLength float32 values, truncated when the text yields
// more and padded with PadValue when it yields fewer.
//
// The encoder travels with the model artifact as a serialized State, so a
// version directory is self-contained and a consumer never has to guess how
// its features were produced.
package encoder

import (
	"context"
	"fmt"
)

// PadValue fills feature positions beyond the encoded text.
const PadValue float32 = 0

// Known encoder kinds.
const (
	KindHashing = "hashing"
	KindGGUF    = "gguf"
)

// Encoder encodes text into fixed-length numeric features.
type Encoder interface {
	// Encode returns exactly maxLength values for the given text.
	Encode(ctx context.Context, text string, maxLength int) ([]float32, error)

	// State returns the serializable description of this encoder, suitable
	// for bundling into a model version directory.
	State() *State

	// Close releases any resources held by the encoder.
	Close() error
}

// State describes an encoder well enough to reconstruct it. It is persisted
// as the encoder component of a model version.
type State struct {
	Kind      string `json:"kind"`
	Seed      int64  `json:"seed,omitempty"`
	ModelPath string `json:"model_path,omitempty"`
	GPULayers int    `json:"gpu_layers,omitempty"`
}

// Device reports the compute device the encoder runs on, for metadata.
func (s *State) Device() string {
	if s.Kind == KindGGUF {
		return fmt.Sprintf("gguf(gpu_layers=%d)", s.GPULayers)
	}
	return "cpu"
}

// FromState reconstructs the encoder described by st. When st requests a
// GGUF encoder but the binary was built without llama.cpp support or the
// model file is missing, FromState transparently falls back to the hashing
// encoder so a retraining run never fails on an unavailable accelerator.
func FromState(st *State) (Encoder, error) {
	if st == nil {
		return nil, fmt.Errorf("nil encoder state")
	}
	switch st.Kind {
	case KindHashing:
		return NewHashing(st.Seed), nil
	case KindGGUF:
		enc, err := newGGUF(st)
		if err != nil {
			return NewHashing(st.Seed), nil
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("unknown encoder kind %q", st.Kind)
	}
}

// fit truncates or pads values to exactly maxLength entries.
func fit(values []float32, maxLength int) []float32 {
	out := make([]float32, maxLength)
	n := copy(out, values)
	for i := n; i < maxLength; i++ {
		out[i] = PadValue
	}
	return out
}
