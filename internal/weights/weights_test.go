package weights

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinMirrorsFormula(t *testing.T) {
	s := Builtin()
	if s.FastReply != 0.35 || s.Interview != 0.25 || s.Req != 0.30 ||
		s.Sem != 0.05 || s.Pay != 0.05 || s.LoadPenalty != 0.05 {
		t.Errorf("unexpected builtin set: %+v", s)
	}
	// The formula coefficients are not a probability simplex.
	if math.Abs(s.Sum()-1.05) > 1e-9 {
		t.Errorf("builtin sum = %v, want 1.05", s.Sum())
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default set must satisfy the learned-set invariant: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	s := Set{Sem: 2, Req: -1, Pay: 1, FastReply: 0, LoadPenalty: 0, Interview: 1}
	n := s.Normalize()
	if err := n.Validate(); err != nil {
		t.Fatalf("normalized set must validate: %v", err)
	}
	// Magnitudes: |2|+|-1|+|1|+|1| = 5.
	if math.Abs(n.Sem-0.4) > 1e-9 || math.Abs(n.Req-0.2) > 1e-9 {
		t.Errorf("unexpected normalization: %+v", n)
	}

	zero := Set{}
	if zero.Normalize() != zero {
		t.Error("zero set normalizes to itself")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     Set
		wantErr bool
	}{
		{"default", Default(), false},
		{"negative weight", Set{Sem: -0.1, Req: 1.1}, true},
		{"sum off", Set{Sem: 0.5, Req: 0.6}, true},
		{"nan", Set{Sem: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNamedRoundTrip(t *testing.T) {
	s := Default()
	back, err := FromNamed(s.Named())
	if err != nil {
		t.Fatalf("FromNamed failed: %v", err)
	}
	if back != s {
		t.Errorf("round trip changed the set: %+v vs %+v", back, s)
	}
}

func TestFromNamed_MissingKey(t *testing.T) {
	m := Default().Named()
	delete(m, "pay_weight")
	if _, err := FromNamed(m); err == nil {
		t.Error("expected error for missing weight key")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.json")

	rate := 0.4
	doc := NewDocument(Default(), Metadata{
		TrainingMethod: "logistic_regression",
		TotalEvents:    25,
		LabeledEvents:  10,
		SuccessRate:    &rate,
		FeatureNames:   FeatureNames,
	})

	if err := Save(path, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Version != SchemaVersion {
		t.Errorf("version = %q, want %q", loaded.Version, SchemaVersion)
	}
	if loaded.Metadata.TrainingMethod != "logistic_regression" {
		t.Errorf("training method = %q", loaded.Metadata.TrainingMethod)
	}
	if loaded.LastUpdated == "" {
		t.Error("expected a timestamp")
	}

	set, err := loaded.Set()
	if err != nil {
		t.Fatalf("loaded document did not validate: %v", err)
	}
	if set != Default() {
		t.Errorf("loaded set = %+v, want default", set)
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the weights file in %s, found %d entries", dir, len(entries))
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed weights file")
	}
}
