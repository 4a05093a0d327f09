package scoring

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/guidesignal/guidematch/internal/embed"
	"github.com/guidesignal/guidematch/internal/records"
	"github.com/guidesignal/guidematch/internal/weights"
)

func testCandidates() []records.Candidate {
	return []records.Candidate{
		{
			ID:             "c1",
			Name:           "Dana Cole",
			Email:          "dana@example.com",
			TargetPayMin:   fp(20),
			SkillsText:     "python sql data pipelines",
			ResumeText:     "Built python sql data platforms for six years.",
			TargetEmployer: "DataCorp",
		},
		{
			ID:         "c2",
			Name:       "Lee Ortiz",
			Email:      "lee@example.com",
			SkillsText: "nursing triage icu",
			ResumeText: "ICU nursing and patient triage.",
		},
	}
}

func testJobs() []records.Job {
	return []records.Job{
		{
			ID:               "j1",
			EmployerName:     "DataCorp",
			Title:            "Data Engineer",
			City:             "Austin",
			PayMin:           fp(25),
			PayMax:           fp(35),
			MustHaveSkills:   []string{"python", "sql"},
			Description:      "python sql data pipelines and warehousing",
			ResponseFastProb: fp(0.9),
		},
		{
			ID:             "j2",
			EmployerName:   "Mercy Health",
			Title:          "ICU Nurse",
			City:           "Dallas",
			PayMin:         fp(30),
			PayMax:         fp(40),
			MustHaveSkills: []string{"nursing"},
			Description:    "icu nursing triage and patient care",
		},
	}
}

func newTestEngine() *Engine {
	return NewEngine(embed.NewSparse(), weights.Builtin(), zap.NewNop())
}

func TestEngineScore_BestJobPerCandidate(t *testing.T) {
	e := newTestEngine()
	result, err := e.Score(context.Background(), testCandidates(), testJobs())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if result.Strategy != embed.StrategySparse {
		t.Errorf("expected sparse strategy, got %s", result.Strategy)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("expected one match per candidate, got %d", len(result.Matches))
	}
	if len(result.Pairs) != 4 {
		t.Fatalf("expected full cross product of 4 pairs, got %d", len(result.Pairs))
	}

	byApplicant := make(map[string]records.MatchResult)
	for _, m := range result.Matches {
		byApplicant[m.ApplicantID] = m
	}
	if got := byApplicant["c1"].JobID; got != "j1" {
		t.Errorf("data candidate matched %s, want j1", got)
	}
	if got := byApplicant["c2"].JobID; got != "j2" {
		t.Errorf("nursing candidate matched %s, want j2", got)
	}
	if got := byApplicant["c1"].Competition; got != "low" {
		t.Errorf("unloaded job should report low competition, got %q", got)
	}
	for _, p := range result.Pairs {
		if p.Competition == "" {
			t.Errorf("pair (%s, %s) has no competition band", p.ApplicantID, p.JobID)
		}
	}
}

func TestEngineScore_RankedOrdering(t *testing.T) {
	e := newTestEngine()
	result, err := e.Score(context.Background(), testCandidates(), testJobs())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	for i := 1; i < len(result.Matches); i++ {
		if result.Matches[i-1].Score < result.Matches[i].Score {
			t.Errorf("matches not sorted by score: %v before %v",
				result.Matches[i-1].Score, result.Matches[i].Score)
		}
	}

	// Pairs group by applicant, best first within each group.
	for i := 1; i < len(result.Pairs); i++ {
		prev, cur := result.Pairs[i-1], result.Pairs[i]
		if prev.ApplicantID > cur.ApplicantID {
			t.Errorf("pairs not grouped by applicant: %s after %s", cur.ApplicantID, prev.ApplicantID)
		}
		if prev.ApplicantID == cur.ApplicantID && prev.Score < cur.Score {
			t.Errorf("pairs within %s not sorted by score", cur.ApplicantID)
		}
	}
}

func TestEngineScore_Deterministic(t *testing.T) {
	e := newTestEngine()
	first, err := e.Score(context.Background(), testCandidates(), testJobs())
	if err != nil {
		t.Fatalf("first Score failed: %v", err)
	}
	second, err := e.Score(context.Background(), testCandidates(), testJobs())
	if err != nil {
		t.Fatalf("second Score failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input must produce identical results")
	}
}

func TestEngineScore_Explanation(t *testing.T) {
	e := newTestEngine()
	result, err := e.Score(context.Background(), testCandidates(), testJobs())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	var match records.MatchResult
	for _, m := range result.Matches {
		if m.ApplicantID == "c1" {
			match = m
		}
	}

	for _, clause := range []string{
		"Skills fit: ",
		"Must-haves met: 100% (python;sql)",
		"Fast-reply prior: 0.90 (median n/a)",
		"Pay fit: 1.00",
		"Targeting boost: +4%",
		"Crowd penalty applied.",
	} {
		if !strings.Contains(match.Explanation, clause) {
			t.Errorf("explanation missing %q: %q", clause, match.Explanation)
		}
	}
	if !strings.Contains(match.Explanation, " • ") {
		t.Errorf("explanation clauses should be bullet-joined: %q", match.Explanation)
	}
	if !strings.HasSuffix(match.Explanation, "Crowd penalty applied.") {
		t.Errorf("crowd clause must come last: %q", match.Explanation)
	}
}

func TestEngineScore_TargetingAffectsScore(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	targeted, err := e.Score(ctx, testCandidates(), testJobs())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	plain := testCandidates()
	plain[0].TargetEmployer = ""
	untargeted, err := e.Score(ctx, plain, testJobs())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	var with, without float64
	for _, m := range targeted.Matches {
		if m.ApplicantID == "c1" {
			with = m.Score
		}
	}
	for _, m := range untargeted.Matches {
		if m.ApplicantID == "c1" {
			without = m.Score
		}
	}
	if with <= without {
		t.Errorf("targeting should raise the matched score: %v vs %v", with, without)
	}
}

func TestEngineScore_EmptyInputs(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	if _, err := e.Score(ctx, nil, testJobs()); err == nil {
		t.Error("expected error for empty candidates")
	}
	if _, err := e.Score(ctx, testCandidates(), nil); err == nil {
		t.Error("expected error for empty jobs")
	}
}

func TestEngineScore_SingleJobSkipsClustering(t *testing.T) {
	e := newTestEngine()
	result, err := e.Score(context.Background(), testCandidates(), testJobs()[:1])
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if result.ClusterCount != 0 {
		t.Errorf("expected no clusters for a single job, got %d", result.ClusterCount)
	}
	for _, p := range result.Pairs {
		if p.ClusterBoost != 0 {
			t.Errorf("cluster boost must be zero when clustering is skipped, got %v", p.ClusterBoost)
		}
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{0.95, 0.9},
		{0.7, 0.8},
		{0.5, 0.7},
		{0.2, 0.6},
		{-1, 0.6},
	}
	for _, tt := range tests {
		if got := Confidence(tt.score); got != tt.want {
			t.Errorf("Confidence(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
