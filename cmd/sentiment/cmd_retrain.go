package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/config"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/pipeline"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/train"
)

func newRetrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Fine-tune the model on correction data and save a new version",
		Long: `Run the active-learning retraining pipeline.

Loads the base model version, fine-tunes its classification head on the
correction store, and writes the result as a new immutable version
directory. A failed run leaves the previous version untouched.

Examples:
  sentiment retrain --model-dir models/v3 --output-dir models/v4 --corrections active_learning_data.csv
  sentiment retrain --model-dir models/v3 --output-dir models/v4 --epochs 1 --batch-size 4
  sentiment retrain --config retrain.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			progress := func(st train.EpochStats) {
				if !jsonOut {
					fmt.Printf("epoch %d/%d: mean loss %.4f (%d batches)\n",
						st.Epoch, cfg.Epochs, st.MeanLoss, st.Batches)
				}
			}

			summary, err := pipeline.Run(cmd.Context(), cfg, progress)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(summary)
			}
			fmt.Printf("Trained on %d samples (%d labels) from %s\n",
				summary.Samples, len(summary.Labels), summary.BaseVersion)
			fmt.Printf("Saved new version: %s\n", summary.NewVersion)
			return nil
		},
	}

	def := config.Default()
	cmd.Flags().String("model-dir", "", "Path of the base model version (required)")
	cmd.Flags().String("output-dir", "", "Where the new version is written (required)")
	cmd.Flags().String("corrections", def.Corrections, "Path of the correction store (CSV, JSONL, or SQLite)")
	cmd.Flags().Int("epochs", def.Epochs, "Number of training epochs")
	cmd.Flags().Int("batch-size", def.BatchSize, "Batch size")
	cmd.Flags().Float64("learning-rate", def.LearningRate, "Learning rate")
	cmd.Flags().Int("max-length", def.MaxLength, "Max feature length")
	cmd.Flags().Int64("seed", def.Seed, "Run seed for shuffling and initialization")
	cmd.Flags().String("encoder-model", "", "GGUF encoder model file (overrides the bundled encoder)")
	cmd.Flags().Int("gpu-layers", 0, "Encoder layers to offload to GPU (0 = CPU only)")

	return cmd
}

// resolveConfig layers defaults, the optional config file, and any flags
// the user explicitly set, in that order.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("model-dir") {
		cfg.ModelDir, _ = flags.GetString("model-dir")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("corrections") {
		cfg.Corrections, _ = flags.GetString("corrections")
	}
	if flags.Changed("epochs") {
		cfg.Epochs, _ = flags.GetInt("epochs")
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("learning-rate") {
		cfg.LearningRate, _ = flags.GetFloat64("learning-rate")
	}
	if flags.Changed("max-length") {
		cfg.MaxLength, _ = flags.GetInt("max-length")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("encoder-model") {
		cfg.EncoderModel, _ = flags.GetString("encoder-model")
	}
	if flags.Changed("gpu-layers") {
		cfg.GPULayers, _ = flags.GetInt("gpu-layers")
	}
	return cfg, nil
}
