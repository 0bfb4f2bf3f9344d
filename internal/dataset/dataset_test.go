package dataset

import (
	"context"
	"math/rand"
	"testing"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/corrections"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/encoder"
)

func buildTestDataset(t *testing.T, n, maxLength int) *Dataset {
	t.Helper()
	labels := []string{"negative", "neutral", "positive"}
	records := make([]corrections.Record, n)
	for i := range records {
		records[i] = corrections.Record{
			Text:  string(rune('a'+i%26)) + " sample",
			Label: labels[i%len(labels)],
		}
	}
	ds, err := Build(context.Background(), records, encoder.NewHashing(1), maxLength)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ds
}

func TestBuildEncodesFixedLength(t *testing.T) {
	ds := buildTestDataset(t, 5, 16)
	if ds.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", ds.Len())
	}
	for i, ex := range ds.Examples {
		if len(ex.Feature) != 16 {
			t.Errorf("example %d: feature length %d, want 16", i, len(ex.Feature))
		}
		if ex.Label < 0 || ex.Label >= ds.Mapping.Len() {
			t.Errorf("example %d: label index %d outside mapping", i, ex.Label)
		}
	}
}

func TestBuildDerivesMapping(t *testing.T) {
	records := []corrections.Record{
		{Text: "رائع", Label: "positive"},
		{Text: "سيء", Label: "negative"},
		{Text: "عادي", Label: "neutral"},
	}
	ds, err := Build(context.Background(), records, encoder.NewHashing(1), 8)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"negative", "neutral", "positive"}
	for i, w := range want {
		got, _ := ds.Mapping.Label(i)
		if got != w {
			t.Errorf("Label(%d) = %q, want %q", i, got, w)
		}
	}
}

func TestBuildRejectsInvalidMaxLength(t *testing.T) {
	_, err := Build(context.Background(), nil, encoder.NewHashing(1), 0)
	if err == nil {
		t.Error("Build with max length 0 should fail")
	}
}

func TestBatchesCoverEveryExampleOnce(t *testing.T) {
	tests := []struct {
		name        string
		examples    int
		batchSize   int
		wantBatches int
		wantLast    int
	}{
		{"even split", 8, 4, 2, 4},
		{"short last batch", 7, 3, 3, 1},
		{"batch larger than data", 3, 8, 1, 3},
		{"batch of one", 4, 1, 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := buildTestDataset(t, tt.examples, 8)
			batches := ds.Batches(tt.batchSize, rand.New(rand.NewSource(7)))
			if len(batches) != tt.wantBatches {
				t.Fatalf("got %d batches, want %d", len(batches), tt.wantBatches)
			}
			last := batches[len(batches)-1]
			if len(last.Labels) != tt.wantLast {
				t.Errorf("last batch has %d examples, want %d", len(last.Labels), tt.wantLast)
			}
			total := 0
			for _, b := range batches {
				if len(b.Features) != len(b.Labels) {
					t.Errorf("batch features/labels mismatch: %d vs %d", len(b.Features), len(b.Labels))
				}
				total += len(b.Labels)
			}
			if total != tt.examples {
				t.Errorf("batches cover %d examples, want %d", total, tt.examples)
			}
		})
	}
}

func TestBatchesShuffleIsSeedDeterministic(t *testing.T) {
	ds := buildTestDataset(t, 20, 8)

	order := func(seed int64) []int {
		var labels []int
		for _, b := range ds.Batches(3, rand.New(rand.NewSource(seed))) {
			labels = append(labels, b.Labels...)
		}
		return labels
	}

	a, b := order(42), order(42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orders at %d: %v vs %v", i, a, b)
		}
	}

	c := order(43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical order for 20 examples")
	}
}
