// Package pipeline orchestrates one retraining run: resolve and load the
// base version, load and validate corrections, build the dataset, fine-tune
// the classifier head, and persist the result as a new immutable version.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/config"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/corrections"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/dataset"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/encoder"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/model"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/train"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/version"
)

// Summary reports a completed run.
type Summary struct {
	BaseVersion string    `json:"base_version"`
	NewVersion  string    `json:"new_version"`
	Samples     int       `json:"samples"`
	Labels      []string  `json:"labels"`
	EpochLosses []float64 `json:"epoch_losses"`
	Device      string    `json:"device"`
}

// Run executes the full retraining pipeline with the given configuration.
// Progress, if non-nil, receives per-epoch statistics.
//
// All validation failures abort before training starts; a save failure
// leaves the previously active version as the resolvable latest. Exactly
// one new version appears, and only on full success.
func Run(ctx context.Context, cfg config.Config, progress func(train.EpochStats)) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ModelDir == "" {
		return nil, fmt.Errorf("model dir is required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output dir is required")
	}

	base, err := version.Resolve(cfg.ModelDir)
	if err != nil {
		return nil, err
	}
	art, err := version.LoadArtifacts(base.Path)
	if err != nil {
		return nil, err
	}

	encState := art.Encoder
	if cfg.EncoderModel != "" {
		encState = &encoder.State{
			Kind:      encoder.KindGGUF,
			Seed:      cfg.Seed,
			ModelPath: cfg.EncoderModel,
			GPULayers: cfg.GPULayers,
		}
	}
	enc, err := encoder.FromState(encState)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	records, err := corrections.Load(ctx, cfg.Corrections)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Build(ctx, records, enc, cfg.MaxLength)
	if err != nil {
		return nil, err
	}

	clf := art.Classifier
	if clf.InputDim() != cfg.MaxLength {
		// A different feature length invalidates the trained rows entirely.
		clf = model.New(cfg.MaxLength, ds.Mapping.Len(), cfg.Seed)
	} else if !ds.Mapping.Equal(art.Mapping) {
		clf = clf.Remap(art.Mapping, ds.Mapping, cfg.Seed)
	}

	ft := train.New(train.Config{
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		Seed:         cfg.Seed,
		Progress:     progress,
	})
	res, err := ft.Run(ctx, ds, clf)
	if err != nil {
		return nil, err
	}

	meta := &version.Metadata{
		CreatedAt:     time.Now().UTC(),
		SourceVersion: base.Path,
		Epochs:        cfg.Epochs,
		LearningRate:  cfg.LearningRate,
		BatchSize:     cfg.BatchSize,
		MaxLength:     cfg.MaxLength,
		Device:        enc.State().Device(),
		SampleCount:   ds.Len(),
		LabelMapping:  ds.Mapping,
	}
	saved, err := version.Save(cfg.OutputDir, clf, enc.State(), ds.Mapping, meta)
	if err != nil {
		ft.MarkFailed()
		return nil, err
	}
	ft.MarkSaved()

	return &Summary{
		BaseVersion: base.Path,
		NewVersion:  saved.Path,
		Samples:     ds.Len(),
		Labels:      ds.Mapping.Labels(),
		EpochLosses: res.EpochLosses,
		Device:      meta.Device,
	}, nil
}
