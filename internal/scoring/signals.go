// Package scoring computes the interpretable subscores for every
// (candidate, job) pair and combines them into one composite match score.
package scoring

import (
	"math"
	"strings"

	"github.com/guidesignal/guidematch/internal/records"
)

const (
	// replyHalfLifeHours shapes the median-reply-hours transform.
	replyHalfLifeHours = 12.0

	// Targeting boost: per matched field, overall cap, certification bonus.
	targetingPerMatch = 0.035
	targetingCap      = 0.10
	certifiedBonus    = 0.02

	neutralScore = 0.5
)

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

// PayScore compares the job's pay midpoint against the candidate's floor.
// No floor means no constraint (1.0); missing or unparsable pay bounds
// degrade to the neutral 0.5.
func PayScore(payMin, payMax, targetFloor *float64) float64 {
	if targetFloor == nil || *targetFloor <= 0 {
		return 1.0
	}
	if payMin == nil || payMax == nil {
		return neutralScore
	}
	mid := (*payMin + *payMax) / 2.0
	return clamp01(mid / *targetFloor)
}

// FastReplyScore prefers the explicit fast-reply probability; otherwise it
// transforms median reply hours with a 12-hour half-life so shorter reply
// times score higher. Unparsable or negative hours degrade to 0.5.
func FastReplyScore(fastProb, medianHours *float64) float64 {
	if fastProb != nil {
		return clamp01(*fastProb)
	}
	if medianHours == nil {
		return neutralScore
	}
	h := *medianHours
	if h < 0 {
		return neutralScore
	}
	return math.Exp(-h / replyHalfLifeHours)
}

// LoadPenalty is the soft penalty for overloaded postings: log(1+x). It is
// subtracted from the composite rather than being a [0,1] score, so growth
// is unbounded and saturated postings keep losing ground.
func LoadPenalty(activeApps *float64) float64 {
	if activeApps == nil {
		return 0.0
	}
	return math.Log1p(math.Max(0.0, *activeApps))
}

// InterviewProxy estimates interview likelihood from requirement coverage
// and semantic similarity, weighted toward demonstrated coverage.
func InterviewProxy(reqScore, semScore float64) float64 {
	return clamp01(0.8*reqScore + 0.2*semScore)
}

// TargetingBoost rewards explicit intent: candidates who asked for a
// specific employer, title, or city get a small additive bonus on jobs that
// match, with an extra nudge for fast-reply certified employers. Capped so
// intent never dominates relevance.
func TargetingBoost(c *records.Candidate, j *records.Job) float64 {
	if !c.HasTargeting() {
		return 0.0
	}

	matches := 0
	if c.TargetEmployer != "" && substringEither(c.TargetEmployer, j.EmployerName) {
		matches++
	}
	if c.TargetJobTitle != "" && wordOverlap(c.TargetJobTitle, j.Title) {
		matches++
	}
	if c.TargetJobCity != "" && substringEither(c.TargetJobCity, j.City) {
		matches++
	}
	if matches == 0 {
		return 0.0
	}

	boost := math.Min(targetingCap, float64(matches)*targetingPerMatch)
	if j.FastReplyCertified {
		boost = math.Min(targetingCap, boost+certifiedBonus)
	}
	return boost
}

// substringEither is a case-insensitive containment check in either
// direction, tolerant of partial employer and city names.
func substringEither(target, actual string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	a := strings.ToLower(strings.TrimSpace(actual))
	if t == "" || a == "" {
		return false
	}
	return strings.Contains(a, t) || strings.Contains(t, a)
}

// wordOverlap reports whether any word of the target title appears in the
// actual title, case-insensitive.
func wordOverlap(target, actual string) bool {
	actualWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(actual)) {
		actualWords[w] = struct{}{}
	}
	for _, w := range strings.Fields(strings.ToLower(target)) {
		if _, ok := actualWords[w]; ok {
			return true
		}
	}
	return false
}

// TagCompatibility scores structured skill-tag coverage: 80% must-have
// coverage, 20% nice-to-have bonus. Used by reporting surfaces, not by the
// composite score.
func TagCompatibility(tags, mustHave, niceToHave []string) float64 {
	if len(mustHave) == 0 {
		return 1.0
	}
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}

	mustHits := 0
	for _, skill := range mustHave {
		if _, ok := tagSet[skill]; ok {
			mustHits++
		}
	}
	coverage := float64(mustHits) / float64(len(mustHave))

	niceBonus := 0.0
	if len(niceToHave) > 0 {
		niceHits := 0
		for _, skill := range niceToHave {
			if _, ok := tagSet[skill]; ok {
				niceHits++
			}
		}
		niceBonus = float64(niceHits) / float64(len(niceToHave))
	}

	return math.Min(1.0, 0.8*coverage+0.2*niceBonus)
}

// CompetitionLevel bands a posting's application pressure against its
// daily capacity.
type CompetitionLevel string

const (
	CompetitionLow       CompetitionLevel = "low"
	CompetitionModerate  CompetitionLevel = "moderate"
	CompetitionHigh      CompetitionLevel = "high"
	CompetitionSaturated CompetitionLevel = "saturated"
)

// Competition classifies the active-applications-to-capacity ratio.
func Competition(activeApps, capacityPerDay *float64) CompetitionLevel {
	active := 0.0
	if activeApps != nil {
		active = math.Max(0, *activeApps)
	}
	capacity := 1.0
	if capacityPerDay != nil && *capacityPerDay > 0 {
		capacity = *capacityPerDay
	}

	switch ratio := active / capacity; {
	case ratio < 1:
		return CompetitionLow
	case ratio < 3:
		return CompetitionModerate
	case ratio < 5:
		return CompetitionHigh
	default:
		return CompetitionSaturated
	}
}
