// Package weights defines the named coefficient set combining the six match
// subscores into one composite score, plus its persisted JSON document.
package weights

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion is the weights document schema version string.
const SchemaVersion = "1.0"

// FeatureNames lists the six learned subscore features in training order.
var FeatureNames = []string{
	"sem_score",
	"req_score",
	"pay_score",
	"fast_reply_score",
	"load_penalty",
	"interview_score",
}

// Set holds the named non-negative weights for each subscore. The load
// penalty weight is a magnitude; the engine applies it subtractively.
type Set struct {
	Sem         float64 `json:"sem_weight"`
	Req         float64 `json:"req_weight"`
	Pay         float64 `json:"pay_weight"`
	FastReply   float64 `json:"fast_reply_weight"`
	LoadPenalty float64 `json:"load_penalty_weight"`
	Interview   float64 `json:"interview_weight"`
}

// Builtin returns the hard-coded scoring coefficients used until a learned
// set exists. These mirror the engine's base formula and are not normalized
// to sum 1.
func Builtin() Set {
	return Set{
		Sem:         0.05,
		Req:         0.30,
		Pay:         0.05,
		FastReply:   0.35,
		LoadPenalty: 0.05,
		Interview:   0.25,
	}
}

// Default returns the immutable default set the learner emits when training
// is not possible. Unlike Builtin it satisfies the sum-to-one invariant.
func Default() Set {
	return Set{
		Sem:         0.25,
		Req:         0.30,
		Pay:         0.15,
		FastReply:   0.15,
		LoadPenalty: 0.05,
		Interview:   0.10,
	}
}

func (s Set) values() []float64 {
	return []float64{s.Sem, s.Req, s.Pay, s.FastReply, s.LoadPenalty, s.Interview}
}

// Sum returns the sum of absolute coefficient magnitudes.
func (s Set) Sum() float64 {
	var total float64
	for _, v := range s.values() {
		total += math.Abs(v)
	}
	return total
}

// Normalize scales absolute magnitudes so they sum to 1.0. A zero set is
// returned unchanged.
func (s Set) Normalize() Set {
	total := s.Sum()
	if total == 0 {
		return s
	}
	return Set{
		Sem:         math.Abs(s.Sem) / total,
		Req:         math.Abs(s.Req) / total,
		Pay:         math.Abs(s.Pay) / total,
		FastReply:   math.Abs(s.FastReply) / total,
		LoadPenalty: math.Abs(s.LoadPenalty) / total,
		Interview:   math.Abs(s.Interview) / total,
	}
}

// Validate checks the learned-set invariant: non-negative coefficients whose
// magnitudes sum to 1.0 within floating tolerance.
func (s Set) Validate() error {
	for i, v := range s.values() {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %v", FeatureNames[i], v)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s is not finite", FeatureNames[i])
		}
	}
	if sum := s.Sum(); math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights sum to %v, want 1.0", sum)
	}
	return nil
}

// Named returns the set keyed by the persisted weight names.
func (s Set) Named() map[string]float64 {
	return map[string]float64{
		"sem_weight":          s.Sem,
		"req_weight":          s.Req,
		"pay_weight":          s.Pay,
		"fast_reply_weight":   s.FastReply,
		"load_penalty_weight": s.LoadPenalty,
		"interview_weight":    s.Interview,
	}
}

// FromNamed rebuilds a Set from the persisted key names.
func FromNamed(m map[string]float64) (Set, error) {
	s := Set{
		Sem:         m["sem_weight"],
		Req:         m["req_weight"],
		Pay:         m["pay_weight"],
		FastReply:   m["fast_reply_weight"],
		LoadPenalty: m["load_penalty_weight"],
		Interview:   m["interview_weight"],
	}
	for _, name := range []string{"sem_weight", "req_weight", "pay_weight",
		"fast_reply_weight", "load_penalty_weight", "interview_weight"} {
		if _, ok := m[name]; !ok {
			return s, fmt.Errorf("missing weight %q", name)
		}
	}
	return s, nil
}

// Metadata records how a weight set was produced.
type Metadata struct {
	TrainingMethod  string    `json:"training_method"`
	Reason          string    `json:"reason,omitempty"`
	TotalEvents     int       `json:"total_events"`
	LabeledEvents   int       `json:"labeled_events"`
	SuccessRate     *float64  `json:"success_rate,omitempty"`
	CVAccuracy      *float64  `json:"cv_accuracy,omitempty"`
	FeatureNames    []string  `json:"feature_names,omitempty"`
	RawCoefficients []float64 `json:"raw_coefficients,omitempty"`
}

// Document is the persisted weights file.
type Document struct {
	Weights     map[string]float64 `json:"weights"`
	Metadata    Metadata           `json:"metadata"`
	LastUpdated string             `json:"last_updated"`
	Version     string             `json:"version"`
}

// NewDocument wraps a set with metadata and a fresh timestamp.
func NewDocument(s Set, meta Metadata) Document {
	return Document{
		Weights:     s.Named(),
		Metadata:    meta,
		LastUpdated: time.Now().Format(time.RFC3339),
		Version:     SchemaVersion,
	}
}

// Set extracts and validates the weight set from a document.
func (d Document) Set() (Set, error) {
	s, err := FromNamed(d.Weights)
	if err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes the document atomically: temp file in the target directory,
// then rename.
func Save(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling weights: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".weights-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming weights file: %w", err)
	}
	return nil
}

// Load reads a weights document from disk.
func Load(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}
