package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Corrections != "active_learning_data.csv" {
		t.Errorf("Corrections = %q", cfg.Corrections)
	}
	if cfg.Epochs != 3 || cfg.BatchSize != 8 || cfg.MaxLength != 256 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.LearningRate != 2e-5 {
		t.Errorf("LearningRate = %v, want 2e-5", cfg.LearningRate)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `model_dir: models/v3
output_dir: models/v4
epochs: 5
learning_rate: 1e-4
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ModelDir != "models/v3" || cfg.OutputDir != "models/v4" {
		t.Errorf("paths not loaded: %+v", cfg)
	}
	if cfg.Epochs != 5 {
		t.Errorf("Epochs = %d, want 5", cfg.Epochs)
	}
	if cfg.LearningRate != 1e-4 {
		t.Errorf("LearningRate = %v, want 1e-4", cfg.LearningRate)
	}
	// Untouched keys keep their defaults.
	if cfg.BatchSize != 8 || cfg.Corrections != "active_learning_data.csv" {
		t.Errorf("defaults lost under file layer: %+v", cfg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg != Default() {
		t.Errorf("empty path should yield defaults, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should be an error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte(": not yaml ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("malformed YAML should be an error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero epochs", func(c *Config) { c.Epochs = 0 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"negative learning rate", func(c *Config) { c.LearningRate = -1e-5 }},
		{"zero max length", func(c *Config) { c.MaxLength = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
