package version

import (
	"time"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/dataset"
)

// Metadata records exactly how a model version was produced. It is written
// as the metadata.json component of every version directory and is never
// modified afterwards, so the chain doubles as an audit history.
type Metadata struct {
	CreatedAt     time.Time             `json:"created_at"`
	SourceVersion string                `json:"source_version"`
	Epochs        int                   `json:"epochs"`
	LearningRate  float64               `json:"learning_rate"`
	BatchSize     int                   `json:"batch_size"`
	MaxLength     int                   `json:"max_length"`
	Device        string                `json:"device"`
	SampleCount   int                   `json:"sample_count"`
	LabelMapping  *dataset.LabelMapping `json:"label_mapping"`
}
