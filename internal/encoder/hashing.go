package encoder

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"strings"
	"unicode"
)

// Hashing is a deterministic token-hashing encoder. Each token maps to a
// single value in [-1, 1] derived from an FNV-1a hash of the token and the
// seed, one value per feature position. It needs no model files and serves
// as the fallback target when an accelerated encoder is unavailable.
type Hashing struct {
	seed int64
}

// NewHashing creates a hashing encoder with the given seed.
func NewHashing(seed int64) *Hashing {
	return &Hashing{seed: seed}
}

// Encode implements Encoder.
func (h *Hashing) Encode(ctx context.Context, text string, maxLength int) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := tokenize(text)
	values := make([]float32, 0, len(tokens))
	for _, tok := range tokens {
		if len(values) == maxLength {
			break
		}
		values = append(values, h.tokenValue(tok))
	}
	return fit(values, maxLength), nil
}

// State implements Encoder.
func (h *Hashing) State() *State {
	return &State{Kind: KindHashing, Seed: h.seed}
}

// Close implements Encoder.
func (h *Hashing) Close() error { return nil }

// tokenValue maps a token to a value in [-1, 1].
func (h *Hashing) tokenValue(tok string) float32 {
	hash := fnv.New64a()
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], uint64(h.seed))
	hash.Write(seed[:])
	hash.Write([]byte(tok))
	const buckets = 2000001 // odd so both endpoints are reachable
	v := int64(hash.Sum64()%buckets) - 1000000
	return float32(v) / 1000000
}

// tokenize splits text on anything that is not a letter or digit, which
// keeps Arabic and other non-Latin scripts intact.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
