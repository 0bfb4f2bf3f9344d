// Package config holds the retraining pipeline configuration. Values come
// from three layers: built-in defaults, an optional YAML config file, and
// CLI flags; flags win. There is no implicit "current model" location —
// every path is carried explicitly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full pipeline configuration.
type Config struct {
	// ModelDir is the path of the base version to fine-tune from.
	ModelDir string `yaml:"model_dir"`

	// OutputDir is where the new version directory is written.
	OutputDir string `yaml:"output_dir"`

	// Corrections is the path of the correction store (CSV, JSONL, or SQLite).
	Corrections string `yaml:"corrections"`

	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	MaxLength    int     `yaml:"max_length"`

	// Seed scopes the run's shuffle and initialization randomness.
	Seed int64 `yaml:"seed"`

	// EncoderModel optionally points at a GGUF model file; when unset the
	// encoder bundled with the base version is used.
	EncoderModel string `yaml:"encoder_model"`

	// GPULayers is the number of encoder layers to offload to GPU
	// (0 = CPU only). Ignored when the accelerated encoder is unavailable.
	GPULayers int `yaml:"gpu_layers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Corrections:  "active_learning_data.csv",
		Epochs:       3,
		BatchSize:    8,
		LearningRate: 2e-5,
		MaxLength:    256,
		Seed:         42,
	}
}

// Load reads a YAML config file over the defaults. A missing path simply
// returns the defaults; a present but unreadable or malformed file is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the numeric bounds the pipeline requires.
func (c Config) Validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be >= 1, got %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1, got %d", c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be > 0, got %v", c.LearningRate)
	}
	if c.MaxLength < 1 {
		return fmt.Errorf("max length must be >= 1, got %d", c.MaxLength)
	}
	return nil
}
