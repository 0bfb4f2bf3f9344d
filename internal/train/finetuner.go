// Package train runs the fine-tuning loop: epochs over shuffled
// mini-batches, one AdamW step per batch with gradient clipping, and an
// immediate abort on numeric divergence so an unstable model is never
// handed to persistence.
package train

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/dataset"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/model"
)

// Phase is the fine-tuner lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseTraining
	PhaseSaving
	PhaseSaved
	PhaseFailed
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseTraining:
		return "training"
	case PhaseSaving:
		return "saving"
	case PhaseSaved:
		return "saved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DivergenceError reports a non-finite batch loss. The run aborts before
// any artifact is written.
type DivergenceError struct {
	Epoch int // 1-based
	Batch int // 1-based within the epoch
	Loss  float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("training diverged: non-finite loss %v at epoch %d batch %d", e.Loss, e.Epoch, e.Batch)
}

// EpochStats is the per-epoch report delivered through the Progress
// callback. Observability only; it never affects control flow.
type EpochStats struct {
	Epoch    int
	Batches  int
	MeanLoss float64
}

// Config holds the training hyperparameters.
type Config struct {
	// Epochs is the number of passes over the dataset. No early stopping.
	Epochs int

	// BatchSize is the mini-batch size.
	BatchSize int

	// LearningRate is the initial AdamW step size. It decays linearly to
	// zero over the run's total step count.
	LearningRate float64

	// ClipNorm bounds the global L2 norm of each batch gradient.
	ClipNorm float64

	// Seed fixes the batch shuffle order. Two runs with identical data,
	// configuration, and seed produce identical loss sequences.
	Seed int64

	// Progress, if set, receives per-epoch statistics.
	Progress func(EpochStats)
}

// DefaultConfig returns the standard fine-tuning hyperparameters.
func DefaultConfig() Config {
	return Config{
		Epochs:       3,
		BatchSize:    8,
		LearningRate: 2e-5,
		ClipNorm:     1.0,
		Seed:         42,
	}
}

// Result summarizes a completed run.
type Result struct {
	EpochLosses []float64
	Samples     int
	Steps       int
}

// FineTuner drives the training loop over one dataset and classifier head.
type FineTuner struct {
	cfg   Config
	phase Phase
}

// New creates a fine-tuner, filling zero-valued config fields with defaults.
func New(cfg Config) *FineTuner {
	def := DefaultConfig()
	if cfg.Epochs < 1 {
		cfg.Epochs = def.Epochs
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.ClipNorm <= 0 {
		cfg.ClipNorm = def.ClipNorm
	}
	return &FineTuner{cfg: cfg, phase: PhaseIdle}
}

// Phase returns the current lifecycle state.
func (ft *FineTuner) Phase() Phase { return ft.phase }

// MarkSaved records that the trained state was persisted. Terminal.
func (ft *FineTuner) MarkSaved() { ft.phase = PhaseSaved }

// MarkFailed records a failure outside the loop itself (e.g. persistence).
func (ft *FineTuner) MarkFailed() { ft.phase = PhaseFailed }

// Run executes the configured number of epochs over ds, updating clf in
// place. On success the tuner is left in the saving phase, ready to hand
// the updated state to the version manager. Any error, including a
// *DivergenceError on non-finite loss, leaves the tuner failed and clf in
// whatever state the partial run produced; callers must not persist it.
func (ft *FineTuner) Run(ctx context.Context, ds *dataset.Dataset, clf *model.Classifier) (*Result, error) {
	ft.phase = PhaseLoading
	if ds == nil || ds.Len() == 0 {
		ft.phase = PhaseFailed
		return nil, fmt.Errorf("no training data")
	}
	if clf.NumLabels() != ds.Mapping.Len() {
		ft.phase = PhaseFailed
		return nil, fmt.Errorf("head has %d labels, dataset has %d", clf.NumLabels(), ds.Mapping.Len())
	}

	ft.phase = PhaseTraining
	rng := rand.New(rand.NewSource(ft.cfg.Seed))
	numBatches := (ds.Len() + ft.cfg.BatchSize - 1) / ft.cfg.BatchSize
	opt := newAdamW(len(clf.Params()), ft.cfg.LearningRate, ft.cfg.Epochs*numBatches)
	grad := make([]float64, len(clf.Params()))

	res := &Result{Samples: ds.Len()}
	for epoch := 1; epoch <= ft.cfg.Epochs; epoch++ {
		batches := ds.Batches(ft.cfg.BatchSize, rng)
		total := 0.0
		for bi, b := range batches {
			select {
			case <-ctx.Done():
				ft.phase = PhaseFailed
				return nil, ctx.Err()
			default:
			}

			for i := range grad {
				grad[i] = 0
			}
			loss, err := clf.LossAndGrad(b.Features, b.Labels, grad)
			if err != nil {
				ft.phase = PhaseFailed
				return nil, fmt.Errorf("epoch %d batch %d: %w", epoch, bi+1, err)
			}
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				ft.phase = PhaseFailed
				return nil, &DivergenceError{Epoch: epoch, Batch: bi + 1, Loss: loss}
			}

			clipGrad(grad, ft.cfg.ClipNorm)
			opt.Step(clf.Params(), grad)
			total += loss
			res.Steps++
		}

		mean := total / float64(len(batches))
		res.EpochLosses = append(res.EpochLosses, mean)
		if ft.cfg.Progress != nil {
			ft.cfg.Progress(EpochStats{Epoch: epoch, Batches: len(batches), MeanLoss: mean})
		}
	}

	ft.phase = PhaseSaving
	return res, nil
}

// clipGrad scales grad so its global L2 norm does not exceed maxNorm.
func clipGrad(grad []float64, maxNorm float64) {
	if maxNorm <= 0 {
		return
	}
	sum := 0.0
	for _, g := range grad {
		sum += g * g
	}
	norm := math.Sqrt(sum)
	if norm <= maxNorm {
		return
	}
	scale := maxNorm / norm
	for i := range grad {
		grad[i] *= scale
	}
}
