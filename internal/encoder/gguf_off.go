//go:build !llamacpp

package encoder

import "fmt"

// newGGUF reports that GGUF support was not compiled in. FromState falls
// back to the hashing encoder in that case.
func newGGUF(st *State) (Encoder, error) {
	return nil, fmt.Errorf("built without llama.cpp support (llamacpp build tag)")
}
