package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// LabelMapping is a bijection between dense indices [0, K) and label
// strings. Labels are not known at compile time; the mapping is derived
// fresh each run from the distinct labels observed in the loaded
// corrections, sorted lexicographically so the assignment is deterministic
// regardless of record order.
//
// It serializes as a JSON object keyed by decimal index, the format the
// inference consumer reads from label_mapping.json.
type LabelMapping struct {
	labels []string
	index  map[string]int
}

// NewLabelMapping builds a mapping from the given labels, deduplicated and
// sorted lexicographically.
func NewLabelMapping(labels []string) *LabelMapping {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	sorted := make([]string, 0, len(set))
	for l := range set {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)

	index := make(map[string]int, len(sorted))
	for i, l := range sorted {
		index[l] = i
	}
	return &LabelMapping{labels: sorted, index: index}
}

// Len returns K, the number of distinct labels.
func (m *LabelMapping) Len() int { return len(m.labels) }

// Label returns the label for index i.
func (m *LabelMapping) Label(i int) (string, bool) {
	if i < 0 || i >= len(m.labels) {
		return "", false
	}
	return m.labels[i], true
}

// Index returns the dense index for a label.
func (m *LabelMapping) Index(label string) (int, bool) {
	i, ok := m.index[label]
	return i, ok
}

// Labels returns the labels in index order.
func (m *LabelMapping) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Equal reports whether two mappings assign the same indices to the same labels.
func (m *LabelMapping) Equal(other *LabelMapping) bool {
	if other == nil || len(m.labels) != len(other.labels) {
		return false
	}
	for i, l := range m.labels {
		if other.labels[i] != l {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (m *LabelMapping) MarshalJSON() ([]byte, error) {
	obj := make(map[string]string, len(m.labels))
	for i, l := range m.labels {
		obj[strconv.Itoa(i)] = l
	}
	return json.Marshal(obj)
}

// UnmarshalJSON implements json.Unmarshaler. It rejects mappings whose keys
// are not a contiguous 0..K-1 range or whose labels repeat, so a corrupted
// label_mapping.json cannot silently load as a non-bijection.
func (m *LabelMapping) UnmarshalJSON(data []byte) error {
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	labels := make([]string, len(obj))
	for k, v := range obj {
		i, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("label mapping: non-numeric index %q", k)
		}
		if i < 0 || i >= len(obj) {
			return fmt.Errorf("label mapping: index %d outside [0, %d)", i, len(obj))
		}
		labels[i] = v
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := index[l]; dup {
			return fmt.Errorf("label mapping: duplicate label %q", l)
		}
		index[l] = i
	}
	m.labels = labels
	m.index = index
	return nil
}
