package scoring

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/guidesignal/guidematch/internal/embed"
)

// skillSimilarityThreshold is the cosine similarity at which a required
// skill counts as met under the dense strategy.
const skillSimilarityThreshold = 0.6

// SkillMatcher scores required-skill coverage. Under the dense strategy a
// skill is met when its embedding is close to the candidate's profile
// embedding; under the sparse fallback it degrades to case-insensitive
// substring containment.
type SkillMatcher struct {
	embedder embed.Embedder
	log      *zap.Logger

	skillVecs map[string][]float64
	fallback  bool
}

// NewSkillMatcher creates a matcher bound to the run's embedder.
func NewSkillMatcher(embedder embed.Embedder, log *zap.Logger) *SkillMatcher {
	return &SkillMatcher{
		embedder:  embedder,
		log:       log,
		skillVecs: make(map[string][]float64),
		fallback:  embedder.Strategy() != embed.StrategyDense,
	}
}

// Prepare embeds every unique required skill once for the whole batch. An
// embedding failure switches this matcher to the substring fallback for the
// rest of the run, logged once.
func (m *SkillMatcher) Prepare(ctx context.Context, mustHaveLists [][]string) {
	if m.fallback {
		return
	}

	seen := make(map[string]struct{})
	var skills []string
	for _, list := range mustHaveLists {
		for _, skill := range list {
			if _, ok := seen[skill]; !ok {
				seen[skill] = struct{}{}
				skills = append(skills, skill)
			}
		}
	}
	if len(skills) == 0 {
		return
	}

	vecs, err := m.embedder.Embed(ctx, skills)
	if err != nil {
		m.fallback = true
		m.log.Warn("skill embedding failed, using substring matching for this run", zap.Error(err))
		return
	}
	for i, skill := range skills {
		m.skillVecs[skill] = vecs[i]
	}
}

// ReqScore returns the fraction of required skills the candidate satisfies.
// No required skills means no constraint (1.0); an empty candidate profile
// cannot satisfy anything (0.0). candidateVec is the candidate's document
// embedding and is consulted only on the dense path.
func (m *SkillMatcher) ReqScore(candidateText string, candidateVec []float64, mustHaves []string) float64 {
	if len(mustHaves) == 0 {
		return 1.0
	}

	text := strings.ToLower(strings.TrimSpace(candidateText))
	if text == "" {
		return 0.0
	}

	met := 0
	for _, skill := range mustHaves {
		if skill == "" {
			continue
		}
		if m.skillMet(text, candidateVec, skill) {
			met++
		}
	}
	return float64(met) / float64(len(mustHaves))
}

func (m *SkillMatcher) skillMet(candidateText string, candidateVec []float64, skill string) bool {
	if !m.fallback {
		if vec, ok := m.skillVecs[skill]; ok {
			return embed.Dot(candidateVec, vec) >= skillSimilarityThreshold
		}
	}
	return strings.Contains(candidateText, skill)
}
