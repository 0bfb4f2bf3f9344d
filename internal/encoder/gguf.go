//go:build llamacpp

package encoder

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	llama "github.com/tcpipuk/llama-go"
)

// GGUF encodes text with a local GGUF embedding model via llama-go and fits
// the embedding to the requested feature length. Thread-safe: all model and
// context access is serialized via mutex.
type GGUF struct {
	modelPath string
	gpuLayers int
	seed      int64

	// mu serializes all llama context access (contexts are not thread-safe)
	mu sync.Mutex

	// Lazy-loaded resources
	model   *llama.Model
	embCtx  *llama.Context
	loadErr error
	once    sync.Once
}

// newGGUF creates a GGUF encoder. The model file must exist; the model
// itself is not loaded until first use.
func newGGUF(st *State) (Encoder, error) {
	if st.ModelPath == "" {
		return nil, fmt.Errorf("no GGUF model path configured")
	}
	if _, err := os.Stat(st.ModelPath); err != nil {
		return nil, fmt.Errorf("GGUF model %s: %w", st.ModelPath, err)
	}
	return &GGUF{
		modelPath: st.ModelPath,
		gpuLayers: st.GPULayers,
		seed:      st.Seed,
	}, nil
}

// loadModel lazy-loads the embedding model and context on first use.
func (g *GGUF) loadModel() error {
	g.once.Do(func() {
		model, err := llama.LoadModel(g.modelPath,
			llama.WithGPULayers(g.gpuLayers),
			llama.WithMMap(true),
			llama.WithSilentLoading(),
		)
		if err != nil {
			g.loadErr = fmt.Errorf("loading model %s: %w", g.modelPath, err)
			return
		}
		g.model = model

		ctx, err := model.NewContext(
			llama.WithEmbeddings(),
			llama.WithThreads(runtime.NumCPU()),
		)
		if err != nil {
			model.Close()
			g.model = nil
			g.loadErr = fmt.Errorf("creating embedding context: %w", err)
			return
		}
		g.embCtx = ctx
	})
	return g.loadErr
}

// Encode implements Encoder.
func (g *GGUF) Encode(ctx context.Context, text string, maxLength int) ([]float32, error) {
	if err := g.loadModel(); err != nil {
		return nil, fmt.Errorf("gguf encode: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	emb, err := g.embCtx.GetEmbeddings(text)
	if err != nil {
		return nil, fmt.Errorf("getting embeddings: %w", err)
	}
	return fit(emb, maxLength), nil
}

// State implements Encoder.
func (g *GGUF) State() *State {
	return &State{
		Kind:      KindGGUF,
		Seed:      g.seed,
		ModelPath: g.modelPath,
		GPULayers: g.gpuLayers,
	}
}

// Close releases the model and context resources.
// Safe to call multiple times.
func (g *GGUF) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.embCtx != nil {
		g.embCtx.Close()
		g.embCtx = nil
	}
	if g.model != nil {
		g.model.Close()
		g.model = nil
	}
	return nil
}
