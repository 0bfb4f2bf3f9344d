// Package version persists trained models as immutable version directories
// and resolves which version a consumer should load, falling back across
// generations when the requested one is missing or incomplete.
//
// A version directory contains exactly four components:
//
//	weights.json        classifier head parameters
//	encoder.json        encoder state bundled with the model
//	label_mapping.json  index -> label string table
//	metadata.json       training provenance
//
// New versions are written to a staging directory and made visible with a
// single rename, so concurrent readers never observe a partial version
// and an interrupted run leaves no trace.
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/dataset"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/encoder"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/model"
)

// Component file names within a version directory.
const (
	WeightsFile      = "weights.json"
	EncoderFile      = "encoder.json"
	LabelMappingFile = "label_mapping.json"
	MetadataFile     = "metadata.json"
)

// components lists every file a structurally complete version must have.
var components = []string{WeightsFile, EncoderFile, LabelMappingFile, MetadataFile}

// ErrModelUnavailable indicates no structurally complete version exists
// anywhere in the requested chain.
var ErrModelUnavailable = errors.New("no model version available")

// SaveError indicates a persistence failure. The staging directory is
// discarded and the previously active version remains the resolvable latest.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving model version %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Version identifies one resolved version directory.
type Version struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Generation int    `json:"generation"` // 0 when the name has no numeric suffix
}

// Info pairs a version with its completeness, for listing.
type Info struct {
	Version
	Complete bool `json:"complete"`
}

// genSuffix splits a version name into prefix and trailing generation number.
var genSuffix = regexp.MustCompile(`^(.*?)(\d+)$`)

func splitGeneration(name string) (prefix string, gen int, ok bool) {
	m := genSuffix.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return m[1], n, true
}

// IsComplete reports whether dir holds all four version components.
func IsComplete(dir string) bool {
	for _, c := range components {
		if _, err := os.Stat(filepath.Join(dir, c)); err != nil {
			return false
		}
	}
	return true
}

// Resolve returns the version a consumer should load for the requested
// path. If the directory is structurally complete it is returned as is;
// otherwise the chain is walked backward through older generations sharing
// the same name prefix (v4 -> v3 -> ... -> v1). Resolution is read-only and
// safe to run concurrently with the creation of the next generation.
func Resolve(path string) (*Version, error) {
	path = filepath.Clean(path)
	name := filepath.Base(path)

	if IsComplete(path) {
		_, gen, ok := splitGeneration(name)
		if !ok {
			gen = 0
		}
		return &Version{Path: path, Name: name, Generation: gen}, nil
	}

	prefix, gen, ok := splitGeneration(name)
	if !ok {
		return nil, fmt.Errorf("%s is incomplete and has no generation suffix to fall back through: %w", path, ErrModelUnavailable)
	}
	parent := filepath.Dir(path)
	for g := gen - 1; g >= 1; g-- {
		cand := filepath.Join(parent, prefix+strconv.Itoa(g))
		if IsComplete(cand) {
			return &Version{Path: cand, Name: prefix + strconv.Itoa(g), Generation: g}, nil
		}
	}
	return nil, fmt.Errorf("no complete version in chain for %s: %w", path, ErrModelUnavailable)
}

// List enumerates version directories under root, newest generation first.
// Dot-prefixed entries are skipped: a staging directory left by a run killed
// before its rename is not a version.
func List(root string) ([]Info, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing versions in %s: %w", root, err)
	}
	var infos []Info
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		_, gen, ok := splitGeneration(e.Name())
		if !ok {
			gen = 0
		}
		infos = append(infos, Info{
			Version:  Version{Path: dir, Name: e.Name(), Generation: gen},
			Complete: IsComplete(dir),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Generation != infos[j].Generation {
			return infos[i].Generation > infos[j].Generation
		}
		return infos[i].Name > infos[j].Name
	})
	return infos, nil
}

// ComponentStatus is one entry of a Verify report.
type ComponentStatus struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// Verify reports per-component completeness for a version directory.
func Verify(dir string) ([]ComponentStatus, bool) {
	statuses := make([]ComponentStatus, 0, len(components))
	complete := true
	for _, c := range components {
		_, err := os.Stat(filepath.Join(dir, c))
		present := err == nil
		complete = complete && present
		statuses = append(statuses, ComponentStatus{Name: c, Present: present})
	}
	return statuses, complete
}

// writeFile is swapped in tests to simulate component write failures.
var writeFile = os.WriteFile

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data, 0644)
}

// Save persists a freshly trained model as the version directory dir. All
// components are written into a uniquely named staging directory next to
// dir first; only after every write succeeds is the staging directory
// renamed into place, so no reader ever observes a partial version. An
// existing dir is never overwritten. Any failure discards the staging
// directory and returns a *SaveError.
func Save(dir string, clf *model.Classifier, encState *encoder.State, mapping *dataset.LabelMapping, meta *Metadata) (*Version, error) {
	dir = filepath.Clean(dir)
	name := filepath.Base(dir)

	if _, err := os.Stat(dir); err == nil {
		return nil, &SaveError{Path: dir, Err: errors.New("version already exists; versions are immutable")}
	}
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, &SaveError{Path: dir, Err: err}
	}

	// Sweep staging leftovers from a run killed before its rename.
	if stale, err := filepath.Glob(filepath.Join(parent, ".staging-"+name+"-*")); err == nil {
		for _, d := range stale {
			os.RemoveAll(d)
		}
	}

	staging, err := os.MkdirTemp(parent, ".staging-"+name+"-")
	if err != nil {
		return nil, &SaveError{Path: dir, Err: err}
	}
	// Cleanup on error; no-op after successful rename.
	defer os.RemoveAll(staging)

	if meta.LabelMapping == nil {
		meta.LabelMapping = mapping
	}
	steps := []struct {
		file  string
		value any
	}{
		{WeightsFile, clf},
		{EncoderFile, encState},
		{LabelMappingFile, mapping},
		{MetadataFile, meta},
	}
	for _, s := range steps {
		if err := writeJSON(filepath.Join(staging, s.file), s.value); err != nil {
			return nil, &SaveError{Path: dir, Err: err}
		}
	}

	if err := os.Rename(staging, dir); err != nil {
		return nil, &SaveError{Path: dir, Err: err}
	}

	_, gen, ok := splitGeneration(name)
	if !ok {
		gen = 0
	}
	return &Version{Path: dir, Name: name, Generation: gen}, nil
}

// Artifacts holds the loaded components of one version.
type Artifacts struct {
	Classifier *model.Classifier
	Encoder    *encoder.State
	Mapping    *dataset.LabelMapping
	Metadata   *Metadata
}

// LoadArtifacts reads all four components of a version directory.
func LoadArtifacts(dir string) (*Artifacts, error) {
	clf, err := model.Load(filepath.Join(dir, WeightsFile))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	var st encoder.State
	if err := readJSON(filepath.Join(dir, EncoderFile), &st); err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	var mapping dataset.LabelMapping
	if err := readJSON(filepath.Join(dir, LabelMappingFile), &mapping); err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	var meta Metadata
	if err := readJSON(filepath.Join(dir, MetadataFile), &meta); err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	return &Artifacts{Classifier: clf, Encoder: &st, Mapping: &mapping, Metadata: &meta}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Init bootstraps a generation-1 version with a fresh classifier head and a
// hashing encoder, so a chain can be started without an external artifact.
func Init(dir string, labels []string, maxLength int, seed int64) (*Version, error) {
	if len(labels) < 2 {
		return nil, fmt.Errorf("need at least 2 labels to initialize a classifier, got %d", len(labels))
	}
	if maxLength < 1 {
		return nil, fmt.Errorf("max length must be >= 1, got %d", maxLength)
	}
	mapping := dataset.NewLabelMapping(labels)
	clf := model.New(maxLength, mapping.Len(), seed)
	st := &encoder.State{Kind: encoder.KindHashing, Seed: seed}
	meta := &Metadata{
		CreatedAt:    time.Now().UTC(),
		Device:       st.Device(),
		MaxLength:    maxLength,
		LabelMapping: mapping,
	}
	return Save(dir, clf, st, mapping, meta)
}
