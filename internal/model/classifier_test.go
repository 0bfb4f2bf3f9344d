package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/dataset"
)

func writeFileHelper(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestNewDeterministicInit(t *testing.T) {
	a := New(8, 3, 42)
	b := New(8, 3, 42)
	for i := range a.Params() {
		if a.Params()[i] != b.Params()[i] {
			t.Fatalf("same seed produced different parameters at %d", i)
		}
	}

	c := New(8, 3, 7)
	same := true
	for i := range a.Params() {
		if a.Params()[i] != c.Params()[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical parameters")
	}
}

func TestLogitsShape(t *testing.T) {
	clf := New(4, 3, 1)
	logits := clf.Logits([]float32{0.5, -0.5, 0.25, 0})
	if len(logits) != 3 {
		t.Fatalf("got %d logits, want 3", len(logits))
	}
}

func TestLossAndGradValidation(t *testing.T) {
	clf := New(4, 2, 1)
	grad := make([]float64, len(clf.Params()))

	tests := []struct {
		name     string
		features [][]float32
		labels   []int
		grad     []float64
	}{
		{"empty batch", nil, nil, grad},
		{"size mismatch", [][]float32{{0, 0, 0, 0}}, []int{0, 1}, grad},
		{"bad feature length", [][]float32{{0, 0}}, []int{0}, grad},
		{"label out of range", [][]float32{{0, 0, 0, 0}}, []int{5}, grad},
		{"short grad buffer", [][]float32{{0, 0, 0, 0}}, []int{0}, make([]float64, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := clf.LossAndGrad(tt.features, tt.labels, tt.grad); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// A gradient step against its own gradient must reduce the loss for a
// convex objective with a small enough step.
func TestGradientDescendsLoss(t *testing.T) {
	clf := New(4, 3, 42)
	features := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	labels := []int{0, 1, 2}

	grad := make([]float64, len(clf.Params()))
	before, err := clf.LossAndGrad(features, labels, grad)
	if err != nil {
		t.Fatalf("LossAndGrad: %v", err)
	}

	params := clf.Params()
	for i := range params {
		params[i] -= 0.1 * grad[i]
	}

	for i := range grad {
		grad[i] = 0
	}
	after, err := clf.LossAndGrad(features, labels, grad)
	if err != nil {
		t.Fatalf("LossAndGrad: %v", err)
	}
	if after >= before {
		t.Errorf("loss did not decrease: before %v, after %v", before, after)
	}
}

func TestLossIsFiniteForFiniteInput(t *testing.T) {
	clf := New(4, 2, 1)
	grad := make([]float64, len(clf.Params()))
	loss, err := clf.LossAndGrad([][]float32{{100, -100, 50, -50}}, []int{1}, grad)
	if err != nil {
		t.Fatalf("LossAndGrad: %v", err)
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		t.Errorf("loss = %v, want finite", loss)
	}
}

func TestLossNonFiniteForDegenerateInput(t *testing.T) {
	clf := New(2, 2, 1)
	grad := make([]float64, len(clf.Params()))
	inf := float32(math.Inf(1))
	loss, err := clf.LossAndGrad([][]float32{{inf, 0}}, []int{0}, grad)
	if err != nil {
		t.Fatalf("LossAndGrad: %v", err)
	}
	if !math.IsNaN(loss) && !math.IsInf(loss, 0) {
		t.Errorf("loss = %v, want non-finite for degenerate input", loss)
	}
}

func TestRemapPreservesPersistingRows(t *testing.T) {
	oldMap := dataset.NewLabelMapping([]string{"negative", "positive"})
	newMap := dataset.NewLabelMapping([]string{"negative", "neutral", "positive"})

	clf := New(4, 2, 42)
	remapped := clf.Remap(oldMap, newMap, 7)

	if remapped.NumLabels() != 3 {
		t.Fatalf("NumLabels() = %d, want 3", remapped.NumLabels())
	}
	// negative: old index 0 -> new index 0; positive: old 1 -> new 2
	checkRow := func(oldIdx, newIdx int) {
		t.Helper()
		dim := clf.InputDim()
		for j := 0; j < dim; j++ {
			oldW := clf.Params()[oldIdx*dim+j]
			newW := remapped.Params()[newIdx*dim+j]
			if oldW != newW {
				t.Errorf("row %d->%d weight %d changed: %v vs %v", oldIdx, newIdx, j, oldW, newW)
				return
			}
		}
	}
	checkRow(0, 0)
	checkRow(1, 2)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	clf := New(6, 3, 42)
	if err := clf.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.InputDim() != 6 || loaded.NumLabels() != 3 {
		t.Fatalf("loaded dimensions %dx%d, want 3x6", loaded.NumLabels(), loaded.InputDim())
	}
	for i := range clf.Params() {
		if clf.Params()[i] != loaded.Params()[i] {
			t.Fatalf("parameter %d changed in round trip", i)
		}
	}
}

func TestLoadRejectsCorruptWeights(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "garbage"},
		{"wrong param count", `{"input_dim":4,"num_labels":2,"params":[1,2,3]}`},
		{"zero dims", `{"input_dim":0,"num_labels":0,"params":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := writeFileHelper(path, tt.content); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load should reject corrupt weights")
			}
		})
	}
}
