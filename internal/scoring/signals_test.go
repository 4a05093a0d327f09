package scoring

import (
	"math"
	"testing"

	"github.com/guidesignal/guidematch/internal/records"
)

func fp(v float64) *float64 { return &v }

func TestPayScore(t *testing.T) {
	tests := []struct {
		name           string
		payMin, payMax *float64
		floor          *float64
		want           float64
	}{
		{"no floor means no constraint", fp(20), fp(30), nil, 1.0},
		{"zero floor means no constraint", fp(20), fp(30), fp(0), 1.0},
		{"missing pay degrades to neutral", nil, nil, fp(25), 0.5},
		{"partial pay degrades to neutral", fp(20), nil, fp(25), 0.5},
		{"midpoint above floor clamps to 1", fp(30), fp(33), fp(25), 1.0},
		{"midpoint at floor", fp(20), fp(30), fp(25), 1.0},
		{"midpoint below floor", fp(10), fp(20), fp(30), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PayScore(tt.payMin, tt.payMax, tt.floor)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PayScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFastReplyScore(t *testing.T) {
	tests := []struct {
		name        string
		prob, hours *float64
		want        float64
	}{
		{"explicit probability wins", fp(0.7), fp(1), 0.7},
		{"probability clamped", fp(1.4), nil, 1.0},
		{"both missing degrades to neutral", nil, nil, 0.5},
		{"negative hours degrades to neutral", nil, fp(-1), 0.5},
		{"zero hours scores 1", nil, fp(0), 1.0},
		{"12h median decays to 1/e", nil, fp(12), math.Exp(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FastReplyScore(tt.prob, tt.hours)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("FastReplyScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadPenalty(t *testing.T) {
	if got := LoadPenalty(nil); got != 0 {
		t.Errorf("missing active apps should cost nothing, got %v", got)
	}
	if got := LoadPenalty(fp(0)); got != 0 {
		t.Errorf("zero active apps should cost nothing, got %v", got)
	}
	if got := LoadPenalty(fp(-3)); got != 0 {
		t.Errorf("negative active apps clamp to zero, got %v", got)
	}
	want := math.Log1p(9)
	if got := LoadPenalty(fp(9)); math.Abs(got-want) > 1e-9 {
		t.Errorf("LoadPenalty(9) = %v, want %v", got, want)
	}
	if LoadPenalty(fp(100)) <= LoadPenalty(fp(10)) {
		t.Error("penalty must keep growing with load")
	}
}

func TestInterviewProxy(t *testing.T) {
	got := InterviewProxy(0.5, 1.0)
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("InterviewProxy(0.5, 1.0) = %v, want 0.6", got)
	}
	if InterviewProxy(1.0, 1.0) != 1.0 {
		t.Error("perfect subscores should proxy to 1.0")
	}
}

func TestTargetingBoost(t *testing.T) {
	job := records.Job{
		EmployerName: "Acme Hospital",
		Title:        "ICU Nurse",
		City:         "Austin",
	}

	tests := []struct {
		name      string
		candidate records.Candidate
		certified bool
		want      float64
	}{
		{
			name:      "no targeting fields",
			candidate: records.Candidate{},
			want:      0,
		},
		{
			name:      "targeting that matches nothing",
			candidate: records.Candidate{TargetEmployer: "Globex"},
			want:      0,
		},
		{
			name:      "one field match",
			candidate: records.Candidate{TargetEmployer: "acme"},
			want:      0.035,
		},
		{
			name: "two field match",
			candidate: records.Candidate{
				TargetEmployer: "Acme",
				TargetJobCity:  "austin",
			},
			want: 0.07,
		},
		{
			name: "three field match stays under cap",
			candidate: records.Candidate{
				TargetEmployer: "Acme",
				TargetJobTitle: "nurse",
				TargetJobCity:  "Austin",
			},
			want: 0.105, // capped below
		},
		{
			name:      "certified bonus",
			candidate: records.Candidate{TargetEmployer: "Acme"},
			certified: true,
			want:      0.055,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := job
			j.FastReplyCertified = tt.certified
			got := TargetingBoost(&tt.candidate, &j)
			want := math.Min(0.10, tt.want)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("TargetingBoost = %v, want %v", got, want)
			}
			if got > 0.10+1e-9 {
				t.Errorf("boost %v exceeds cap", got)
			}
		})
	}
}

func TestTargetingBoost_MoreMatchesNeverScoreLess(t *testing.T) {
	job := records.Job{EmployerName: "Acme", Title: "Nurse", City: "Austin"}
	one := records.Candidate{TargetEmployer: "Acme"}
	two := records.Candidate{TargetEmployer: "Acme", TargetJobCity: "Austin"}
	three := records.Candidate{TargetEmployer: "Acme", TargetJobCity: "Austin", TargetJobTitle: "Nurse"}

	b1 := TargetingBoost(&one, &job)
	b2 := TargetingBoost(&two, &job)
	b3 := TargetingBoost(&three, &job)
	if b1 > b2 || b2 > b3 {
		t.Errorf("boost must be monotone in matches: %v, %v, %v", b1, b2, b3)
	}
}

func TestTagCompatibility(t *testing.T) {
	tags := []string{"python", "sql", "docker"}
	if got := TagCompatibility(tags, nil, nil); got != 1.0 {
		t.Errorf("no must-haves should score 1.0, got %v", got)
	}
	got := TagCompatibility(tags, []string{"python", "go"}, []string{"docker"})
	want := 0.8*0.5 + 0.2*1.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("TagCompatibility = %v, want %v", got, want)
	}
}

func TestCompetition(t *testing.T) {
	tests := []struct {
		name     string
		active   *float64
		capacity *float64
		want     CompetitionLevel
	}{
		{"no data", nil, nil, CompetitionLow},
		{"under capacity", fp(2), fp(5), CompetitionLow},
		{"moderate", fp(10), fp(5), CompetitionModerate},
		{"high", fp(20), fp(5), CompetitionHigh},
		{"saturated", fp(30), fp(5), CompetitionSaturated},
		{"missing capacity defaults to 1", fp(4), nil, CompetitionHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Competition(tt.active, tt.capacity); got != tt.want {
				t.Errorf("Competition = %v, want %v", got, tt.want)
			}
		})
	}
}
