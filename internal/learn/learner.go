// Package learn retrains the composite weight set from historical outcome
// labels, using the stored subscore vectors as features. Every failure path
// falls back to the documented default weight set; the learner never
// surfaces a training error.
package learn

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/guidesignal/guidematch/internal/records"
	"github.com/guidesignal/guidematch/internal/weights"
)

// Sample is one labeled training row: the six subscore features joined with
// an outcome.
type Sample struct {
	ApplicantID string
	JobID       string
	Features    [6]float64
	Success     bool
}

// Learner trains a weight set from joined outcome data.
type Learner struct {
	// MinEvents is the minimum number of labeled pairs required to fit.
	MinEvents int
	// MinPositive is the minimum number of positive labels required.
	MinPositive int

	Log *zap.Logger
}

// NewLearner creates a learner with the standard data-sufficiency policy.
func NewLearner(log *zap.Logger) *Learner {
	return &Learner{MinEvents: 20, MinPositive: 2, Log: log}
}

// Join pairs outcome events with their stored subscore vectors on
// (applicant id, job id). Events without a matching pair are dropped.
func Join(events []records.OutcomeEvent, pairs []records.PairScore) []Sample {
	type key struct{ applicant, job string }
	index := make(map[key]records.PairScore, len(pairs))
	for _, p := range pairs {
		k := key{p.ApplicantID, p.JobID}
		if _, ok := index[k]; !ok {
			index[k] = p
		}
	}

	var samples []Sample
	for _, e := range events {
		p, ok := index[key{e.ApplicantID, e.JobID}]
		if !ok {
			continue
		}
		samples = append(samples, Sample{
			ApplicantID: e.ApplicantID,
			JobID:       e.JobID,
			Features: [6]float64{
				p.SemScore,
				p.ReqScore,
				p.PayScore,
				p.FastReplyScore,
				p.LoadPenalty,
				p.InterviewScore,
			},
			Success: e.Success(),
		})
	}
	return samples
}

// Train fits the weight set from labeled samples, or emits the default set
// with the recorded reason when the data is insufficient or the fit fails.
func (l *Learner) Train(samples []Sample) weights.Document {
	total := len(samples)
	positives := 0
	for _, s := range samples {
		if s.Success {
			positives++
		}
	}

	if total < l.MinEvents {
		l.Log.Warn("insufficient outcome data, emitting default weights",
			zap.Int("events", total),
			zap.Int("required", l.MinEvents),
		)
		return l.defaultDocument(fmt.Sprintf("insufficient_data_%d_events", total), total, positives)
	}
	if positives < l.MinPositive {
		l.Log.Warn("too few positive outcomes, emitting default weights",
			zap.Int("positives", positives),
			zap.Int("required", l.MinPositive),
		)
		return l.defaultDocument("too_few_positive_examples", total, positives)
	}

	x := make([][]float64, total)
	y := make([]int, total)
	for i, s := range samples {
		x[i] = s.Features[:]
		if s.Success {
			y[i] = 1
		}
	}

	scaled, _, _ := standardize(x)
	fitted, err := fitLogistic(scaled, y)
	if err != nil {
		l.Log.Warn("logistic fit failed, emitting default weights", zap.Error(err))
		return l.defaultDocument("training_failed", total, positives)
	}

	var cvAccuracy *float64
	if total >= 10 {
		folds := total / 2
		if folds > 5 {
			folds = 5
		}
		acc := crossValAccuracy(scaled, y, folds)
		cvAccuracy = &acc
		l.Log.Info("cross-validation complete",
			zap.Int("folds", folds),
			zap.Float64("accuracy", acc),
		)
	}

	learned, err := setFromCoefficients(fitted.coef)
	if err != nil {
		l.Log.Warn("coefficient normalization failed, emitting default weights", zap.Error(err))
		return l.defaultDocument("training_failed", total, positives)
	}

	successRate := float64(positives) / float64(total)
	meta := weights.Metadata{
		TrainingMethod:  "logistic_regression",
		TotalEvents:     total,
		LabeledEvents:   positives,
		SuccessRate:     &successRate,
		CVAccuracy:      cvAccuracy,
		FeatureNames:    weights.FeatureNames,
		RawCoefficients: append([]float64(nil), fitted.coef...),
	}

	l.Log.Info("weight learning complete",
		zap.Int("events", total),
		zap.Int("positives", positives),
		zap.Float64("success_rate", successRate),
	)
	return weights.NewDocument(learned, meta)
}

// setFromCoefficients maps absolute fitted coefficients onto the named
// weights, normalized to sum 1.
func setFromCoefficients(coef []float64) (weights.Set, error) {
	if len(coef) != 6 {
		return weights.Set{}, fmt.Errorf("expected 6 coefficients, got %d", len(coef))
	}
	s := weights.Set{
		Sem:         coef[0],
		Req:         coef[1],
		Pay:         coef[2],
		FastReply:   coef[3],
		LoadPenalty: coef[4],
		Interview:   coef[5],
	}
	normalized := s.Normalize()
	if err := normalized.Validate(); err != nil {
		return weights.Set{}, err
	}
	return normalized, nil
}

func (l *Learner) defaultDocument(reason string, total, positives int) weights.Document {
	return weights.NewDocument(weights.Default(), weights.Metadata{
		TrainingMethod: "default",
		Reason:         reason,
		TotalEvents:    total,
		LabeledEvents:  positives,
	})
}
