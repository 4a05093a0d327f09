package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/guidesignal/guidematch/internal/embed"
	"github.com/guidesignal/guidematch/internal/records"
	"github.com/guidesignal/guidematch/internal/weights"
)

// Engine combines all subscores into one composite score per
// (candidate, job) pair and selects the best job per candidate. It is
// stateless across invocations apart from the injected embedder and weight
// set snapshot.
type Engine struct {
	embedder embed.Embedder
	weights  weights.Set
	log      *zap.Logger
}

// Result is the output of one scoring run: a ranked match per candidate and
// the full cross-product subscore table retained for weight learning.
type Result struct {
	Strategy     embed.Strategy
	ClusterCount int
	Matches      []records.MatchResult
	Pairs        []records.PairScore
}

// NewEngine builds an engine scoring with the given weight set. Targeting
// and cluster boosts are fixed additive terms outside the weighted base.
func NewEngine(embedder embed.Embedder, ws weights.Set, log *zap.Logger) *Engine {
	return &Engine{embedder: embedder, weights: ws, log: log}
}

// Score computes the full candidate × job cross product and picks the
// highest-scoring job per candidate, first-seen winning ties.
func (e *Engine) Score(ctx context.Context, candidates []records.Candidate, jobs []records.Job) (*Result, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates to score")
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no jobs to score")
	}

	candTexts := make([]string, len(candidates))
	for i := range candidates {
		candTexts[i] = candidates[i].Document()
	}
	jobTexts := make([]string, len(jobs))
	mustLists := make([][]string, len(jobs))
	for i := range jobs {
		jobTexts[i] = jobs[i].Document()
		mustLists[i] = jobs[i].MustHaveSkills
	}

	candVecs, jobVecs, err := e.embedder.EmbedPair(ctx, candTexts, jobTexts)
	if err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}

	skills := NewSkillMatcher(e.embedder, e.log)
	skills.Prepare(ctx, mustLists)

	clusters := ClusterJobs(jobVecs)

	result := &Result{
		Strategy: e.embedder.Strategy(),
		Pairs:    make([]records.PairScore, 0, len(candidates)*len(jobs)),
	}
	if clusters.Enabled {
		result.ClusterCount = len(clusters.Centers)
	}

	for ci := range candidates {
		cand := &candidates[ci]
		nearest, clusterDist := clusters.Nearest(candVecs[ci])

		bestScore := math.Inf(-1)
		bestJob := -1
		var bestPair records.PairScore

		for ji := range jobs {
			job := &jobs[ji]

			sem := embed.Dot(candVecs[ci], jobVecs[ji])
			req := skills.ReqScore(candTexts[ci], candVecs[ci], job.MustHaveSkills)
			pay := PayScore(job.PayMin, job.PayMax, cand.TargetPayMin)
			fast := FastReplyScore(job.ResponseFastProb, job.ResponseMedianReplyHours)
			loadPen := LoadPenalty(job.ActiveAppsLast24h)
			interview := InterviewProxy(req, sem)

			base := e.weights.FastReply*fast +
				e.weights.Interview*interview +
				e.weights.Req*req +
				e.weights.Sem*sem +
				e.weights.Pay*pay -
				e.weights.LoadPenalty*loadPen

			targetBoost := TargetingBoost(cand, job)
			clusterBoost := clusters.Boost(ji, nearest, clusterDist)
			score := base + targetBoost + clusterBoost

			pair := records.PairScore{
				ApplicantID:             cand.ID,
				ApplicantName:           cand.Name,
				ApplicantEmail:          cand.Email,
				JobID:                   job.ID,
				Employer:                job.EmployerName,
				JobTitle:                job.Title,
				JobCity:                 job.City,
				JobPayMin:               job.PayMin,
				JobPayMax:               job.PayMax,
				Score:                   score,
				SemScore:                sem,
				ReqScore:                req,
				PayScore:                pay,
				FastReplyScore:          fast,
				LoadPenalty:             loadPen,
				InterviewScore:          interview,
				TargetBoost:             targetBoost,
				ClusterBoost:            clusterBoost,
				JobCluster:              clusters.Assignments[ji],
				ApplicantNearestCluster: nearest,
				ClusterDistance:         clusterDist,
				Competition:             string(Competition(job.ActiveAppsLast24h, job.CapacityPerDay)),
			}
			result.Pairs = append(result.Pairs, pair)

			if score > bestScore {
				bestScore = score
				bestJob = ji
				bestPair = pair
			}
		}

		job := &jobs[bestJob]
		result.Matches = append(result.Matches, records.MatchResult{
			ApplicantID:    cand.ID,
			ApplicantName:  cand.Name,
			ApplicantEmail: cand.Email,
			JobID:          job.ID,
			Employer:       job.EmployerName,
			JobTitle:       job.Title,
			JobCity:        job.City,
			JobPayMin:      job.PayMin,
			JobPayMax:      job.PayMax,
			Score:          bestScore,
			Explanation:    e.explain(job, bestPair),
			Confidence:     Confidence(bestScore),
			Competition:    bestPair.Competition,
			TagFit:         TagCompatibility(cand.SkillsTags, job.MustHaveSkills, job.NiceToHave),
		})
	}

	// Ranked output is sorted by score; the detailed table groups pairs by
	// applicant, best first.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Score > result.Matches[j].Score
	})
	sort.SliceStable(result.Pairs, func(i, j int) bool {
		if result.Pairs[i].ApplicantID != result.Pairs[j].ApplicantID {
			return result.Pairs[i].ApplicantID < result.Pairs[j].ApplicantID
		}
		return result.Pairs[i].Score > result.Pairs[j].Score
	})

	return result, nil
}

// explain assembles the plain-English explanation from the dominant
// subscores of the winning pair.
func (e *Engine) explain(job *records.Job, p records.PairScore) string {
	medianText := "n/a"
	if job.ResponseMedianReplyHours != nil {
		medianText = fmt.Sprintf("%.1fh", *job.ResponseMedianReplyHours)
	}

	parts := []string{
		fmt.Sprintf("Skills fit: %d%%", int(math.Round((e.weights.Req*p.ReqScore+e.weights.Sem*p.SemScore)*100))),
		fmt.Sprintf("Must-haves met: %d%% (%s)", int(math.Round(p.ReqScore*100)), strings.Join(job.MustHaveSkills, ";")),
		fmt.Sprintf("Fast-reply prior: %.2f (median %s)", p.FastReplyScore, medianText),
		fmt.Sprintf("Pay fit: %.2f", p.PayScore),
	}

	if p.TargetBoost > 0 {
		boostText := fmt.Sprintf("Targeting boost: +%d%%", int(math.Round(p.TargetBoost*100)))
		if job.FastReplyCertified {
			boostText += " (certified)"
		}
		parts = append(parts, boostText)
	}
	parts = append(parts, "Crowd penalty applied.")

	return strings.Join(parts, " • ")
}

// Confidence bands a composite score into a coarse reliability estimate for
// display alongside the match.
func Confidence(score float64) float64 {
	switch {
	case score > 0.8:
		return 0.9
	case score > 0.6:
		return 0.8
	case score > 0.4:
		return 0.7
	default:
		return 0.6
	}
}
