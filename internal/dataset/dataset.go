// Package dataset turns validated correction records into the numeric form
// the training loop consumes: a derived label mapping, fixed-length encoded
// features, and shuffled mini-batches.
package dataset

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/corrections"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/encoder"
)

// Example is one encoded (feature, label index) pair.
type Example struct {
	Feature []float32
	Label   int
}

// Dataset is an ordered sequence of examples plus the LabelMapping used to
// build it. Constructed fresh each pipeline run; never persisted.
type Dataset struct {
	Examples  []Example
	Mapping   *LabelMapping
	MaxLength int
}

// Batch is one training mini-batch.
type Batch struct {
	Features [][]float32
	Labels   []int
}

// Build encodes the given records with enc into a dataset. The label
// mapping is derived from the distinct labels present in records.
func Build(ctx context.Context, records []corrections.Record, enc encoder.Encoder, maxLength int) (*Dataset, error) {
	if maxLength < 1 {
		return nil, fmt.Errorf("max length must be >= 1, got %d", maxLength)
	}
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = r.Label
	}
	mapping := NewLabelMapping(labels)

	examples := make([]Example, 0, len(records))
	for _, r := range records {
		feature, err := enc.Encode(ctx, r.Text, maxLength)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", r.Text, err)
		}
		idx, ok := mapping.Index(r.Label)
		if !ok {
			return nil, fmt.Errorf("label %q missing from derived mapping", r.Label)
		}
		examples = append(examples, Example{Feature: feature, Label: idx})
	}
	return &Dataset{Examples: examples, Mapping: mapping, MaxLength: maxLength}, nil
}

// Len returns the number of examples.
func (d *Dataset) Len() int { return len(d.Examples) }

// Batches returns non-overlapping mini-batches covering every example once,
// in an order shuffled by rng. The last batch may be smaller. Callers that
// need reproducible runs pass an rng seeded with the run seed: each epoch's
// call advances the same rng, so a fixed seed fixes the whole sequence.
func (d *Dataset) Batches(batchSize int, rng *rand.Rand) []Batch {
	if batchSize < 1 {
		batchSize = 1
	}
	perm := rng.Perm(len(d.Examples))

	var batches []Batch
	for start := 0; start < len(perm); start += batchSize {
		end := start + batchSize
		if end > len(perm) {
			end = len(perm)
		}
		b := Batch{
			Features: make([][]float32, 0, end-start),
			Labels:   make([]int, 0, end-start),
		}
		for _, i := range perm[start:end] {
			b.Features = append(b.Features, d.Examples[i].Feature)
			b.Labels = append(b.Labels, d.Examples[i].Label)
		}
		batches = append(batches, b)
	}
	return batches
}
