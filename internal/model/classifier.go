// Package model implements the trainable classification head: a linear
// softmax classifier over encoder features, with its on-disk representation.
// The feature encoder itself is an external collaborator; this package only
// owns the parameters the retraining pipeline actually updates.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/dataset"
)

const initScale = 0.02

// Classifier is a K-class linear head: logits = W*x + b. Parameters are a
// single flat float64 slice (K*D weights row-major, then K biases) so the
// optimizer and gradient clipping operate uniformly.
type Classifier struct {
	dim       int
	numLabels int
	params    []float64
}

// New creates a classifier with deterministic small-random weights and zero
// biases for the given seed.
func New(dim, numLabels int, seed int64) *Classifier {
	c := &Classifier{
		dim:       dim,
		numLabels: numLabels,
		params:    make([]float64, numLabels*dim+numLabels),
	}
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < numLabels*dim; i++ {
		c.params[i] = (rng.Float64()*2 - 1) * initScale
	}
	return c
}

// InputDim returns D, the feature length the head was built for.
func (c *Classifier) InputDim() int { return c.dim }

// NumLabels returns K.
func (c *Classifier) NumLabels() int { return c.numLabels }

// Params returns the live flat parameter slice (weights then biases).
func (c *Classifier) Params() []float64 { return c.params }

// Logits computes W*x + b for one feature vector.
func (c *Classifier) Logits(feature []float32) []float64 {
	logits := make([]float64, c.numLabels)
	for k := 0; k < c.numLabels; k++ {
		row := c.params[k*c.dim : (k+1)*c.dim]
		sum := c.params[c.numLabels*c.dim+k]
		for j, x := range feature {
			sum += row[j] * float64(x)
		}
		logits[k] = sum
	}
	return logits
}

// Predict returns the argmax label index for one feature vector.
func (c *Classifier) Predict(feature []float32) int {
	logits := c.Logits(feature)
	best := 0
	for k, v := range logits {
		if v > logits[best] {
			best = k
		}
	}
	return best
}

// LossAndGrad computes the mean cross-entropy loss over the batch and
// accumulates its gradient into grad, which must have len(Params()) entries
// and arrive zeroed. The softmax is computed max-shifted through
// log-sum-exp; the gradient uses the closed form (p - 1{target}) scaled by
// 1/batch. A degenerate batch (non-finite feature values) surfaces as a
// non-finite loss for the caller's divergence policy rather than an error.
func (c *Classifier) LossAndGrad(features [][]float32, labels []int, grad []float64) (float64, error) {
	if len(features) == 0 {
		return 0, fmt.Errorf("empty batch")
	}
	if len(features) != len(labels) {
		return 0, fmt.Errorf("batch size mismatch: %d features, %d labels", len(features), len(labels))
	}
	if len(grad) != len(c.params) {
		return 0, fmt.Errorf("gradient buffer has %d entries, want %d", len(grad), len(c.params))
	}

	inv := 1.0 / float64(len(features))
	total := 0.0
	for n, feature := range features {
		if len(feature) != c.dim {
			return 0, fmt.Errorf("feature length %d, head expects %d", len(feature), c.dim)
		}
		target := labels[n]
		if target < 0 || target >= c.numLabels {
			return 0, fmt.Errorf("label index %d outside [0, %d)", target, c.numLabels)
		}

		logits := c.Logits(feature)
		maxVal := logits[0]
		for _, v := range logits[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		expSum := 0.0
		for _, v := range logits {
			expSum += math.Exp(v - maxVal)
		}
		logSumExp := math.Log(expSum) + maxVal
		total += logSumExp - logits[target]

		for k := 0; k < c.numLabels; k++ {
			p := math.Exp(logits[k]-maxVal) / expSum
			if k == target {
				p -= 1.0
			}
			g := p * inv
			row := grad[k*c.dim : (k+1)*c.dim]
			for j, x := range feature {
				row[j] += g * float64(x)
			}
			grad[c.numLabels*c.dim+k] += g
		}
	}
	return total * inv, nil
}

// Remap builds a head for a new label mapping. Rows whose label persists
// keep their trained weights and bias; rows for new labels are initialized
// the way New initializes them, deterministically from seed.
func (c *Classifier) Remap(oldMap, newMap *dataset.LabelMapping, seed int64) *Classifier {
	out := New(c.dim, newMap.Len(), seed)
	for k := 0; k < newMap.Len(); k++ {
		label, _ := newMap.Label(k)
		oldIdx, ok := oldMap.Index(label)
		if !ok {
			continue
		}
		copy(out.params[k*c.dim:(k+1)*c.dim], c.params[oldIdx*c.dim:(oldIdx+1)*c.dim])
		out.params[newMap.Len()*c.dim+k] = c.params[c.numLabels*c.dim+oldIdx]
	}
	return out
}

// weightsFile is the on-disk form of a classifier head.
type weightsFile struct {
	InputDim  int       `json:"input_dim"`
	NumLabels int       `json:"num_labels"`
	Params    []float64 `json:"params"`
}

// Save writes the head to path as JSON.
func (c *Classifier) Save(path string) error {
	data, err := json.Marshal(weightsFile{
		InputDim:  c.dim,
		NumLabels: c.numLabels,
		Params:    c.params,
	})
	if err != nil {
		return fmt.Errorf("encoding weights: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing weights: %w", err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler for callers that embed the head in
// a larger artifact write.
func (c *Classifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(weightsFile{
		InputDim:  c.dim,
		NumLabels: c.numLabels,
		Params:    c.params,
	})
}

// Load reads a head previously written by Save.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weights: %w", err)
	}
	var wf weightsFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("decoding weights %s: %w", path, err)
	}
	if wf.InputDim < 1 || wf.NumLabels < 1 {
		return nil, fmt.Errorf("weights %s: invalid dimensions %dx%d", path, wf.NumLabels, wf.InputDim)
	}
	if want := wf.NumLabels*wf.InputDim + wf.NumLabels; len(wf.Params) != want {
		return nil, fmt.Errorf("weights %s: %d parameters, want %d", path, len(wf.Params), want)
	}
	return &Classifier{dim: wf.InputDim, numLabels: wf.NumLabels, params: wf.Params}, nil
}
