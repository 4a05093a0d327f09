package scoring

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/guidesignal/guidematch/internal/embed"
)

// stubEmbedder serves canned skill vectors so the dense matching path can
// be exercised without a live embedding service.
type stubEmbedder struct {
	strategy embed.Strategy
	vecs     map[string][]float64
	embedErr error
}

func (s *stubEmbedder) Strategy() embed.Strategy { return s.strategy }

func (s *stubEmbedder) EmbedPair(ctx context.Context, left, right []string) ([][]float64, [][]float64, error) {
	return nil, nil, nil
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = s.vecs[text]
	}
	return out, nil
}

func sparseMatcher(t *testing.T) *SkillMatcher {
	t.Helper()
	return NewSkillMatcher(embed.NewSparse(), zap.NewNop())
}

func TestReqScore_SubstringFallback(t *testing.T) {
	m := sparseMatcher(t)

	tests := []struct {
		name      string
		text      string
		mustHaves []string
		want      float64
	}{
		{"no required skills is no constraint", "python and sql", nil, 1.0},
		{"empty candidate text satisfies nothing", "", []string{"python"}, 0.0},
		{"whitespace-only text satisfies nothing", "   ", []string{"python"}, 0.0},
		{"all skills present", "python and sql pipelines", []string{"python", "sql"}, 1.0},
		{"half the skills present", "python scripting", []string{"python", "kubernetes"}, 0.5},
		{"case-insensitive containment", "Senior Python Engineer", []string{"python"}, 1.0},
		{"none present", "warehouse shift lead", []string{"python", "sql"}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.ReqScore(tt.text, nil, tt.mustHaves); got != tt.want {
				t.Errorf("ReqScore(%q, %v) = %v, want %v", tt.text, tt.mustHaves, got, tt.want)
			}
		})
	}
}

func TestReqScore_DenseThreshold(t *testing.T) {
	// Skill names deliberately absent from the candidate text, so only the
	// embedding similarity can declare them met.
	stub := &stubEmbedder{
		strategy: embed.StrategyDense,
		vecs: map[string][]float64{
			"etl":   {0.6, 0.8},  // dot with candidate = 0.6, at the threshold
			"cobol": {0.59, 0.8}, // dot = 0.59, just below
		},
	}
	m := NewSkillMatcher(stub, zap.NewNop())
	m.Prepare(context.Background(), [][]string{{"etl", "cobol"}})

	candVec := []float64{1, 0}
	if got := m.ReqScore("builds data pipelines", candVec, []string{"etl"}); got != 1.0 {
		t.Errorf("skill at the similarity threshold should be met, got %v", got)
	}
	if got := m.ReqScore("builds data pipelines", candVec, []string{"cobol"}); got != 0.0 {
		t.Errorf("skill below the similarity threshold should not be met, got %v", got)
	}
	if got := m.ReqScore("builds data pipelines", candVec, []string{"etl", "cobol"}); got != 0.5 {
		t.Errorf("mixed skills = %v, want 0.5", got)
	}
}

func TestReqScore_UnpreparedSkillUsesSubstring(t *testing.T) {
	stub := &stubEmbedder{
		strategy: embed.StrategyDense,
		vecs:     map[string][]float64{"etl": {0, 1}},
	}
	m := NewSkillMatcher(stub, zap.NewNop())
	m.Prepare(context.Background(), [][]string{{"etl"}})

	// "sql" was never embedded; containment decides it even on the dense
	// path.
	if got := m.ReqScore("sql reporting", []float64{1, 0}, []string{"sql"}); got != 1.0 {
		t.Errorf("unprepared skill should fall back to containment, got %v", got)
	}
}

func TestPrepare_EmbedFailureFallsBackToSubstring(t *testing.T) {
	stub := &stubEmbedder{
		strategy: embed.StrategyDense,
		embedErr: errors.New("service unavailable"),
	}
	m := NewSkillMatcher(stub, zap.NewNop())
	m.Prepare(context.Background(), [][]string{{"python", "golang"}})

	candVec := []float64{1, 0}
	if got := m.ReqScore("python scripting", candVec, []string{"python", "golang"}); got != 0.5 {
		t.Errorf("after embed failure containment should score 0.5, got %v", got)
	}
}
