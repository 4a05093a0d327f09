package records

import "strings"

// Candidate is one applicant record as supplied by the intake pipeline.
// Optional numeric fields are nil when the source cell was blank or
// unparsable; scorers substitute neutral defaults.
type Candidate struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	City         string   `json:"city"`
	TargetPayMin *float64 `json:"target_pay_min,omitempty"`
	SkillsText   string   `json:"skills_text"`
	SkillsTags   []string `json:"skills_tags"`
	Certs        []string `json:"certs"`
	ResumeText   string   `json:"resume_text"`

	// Explicit targeting, filled in only when the applicant asked for a
	// specific employer, title, or city.
	TargetEmployer string `json:"target_employer,omitempty"`
	TargetJobTitle string `json:"target_job_title,omitempty"`
	TargetJobCity  string `json:"target_job_city,omitempty"`
}

// Document assembles the free-text profile used for embedding: resume text
// first, then skills text, tags, and certs with separators space-joined.
func (c *Candidate) Document() string {
	parts := make([]string, 0, 4)
	if strings.TrimSpace(c.ResumeText) != "" {
		parts = append(parts, c.ResumeText)
	}
	if c.SkillsText != "" {
		parts = append(parts, c.SkillsText)
	}
	if len(c.SkillsTags) > 0 {
		parts = append(parts, strings.Join(c.SkillsTags, " "))
	}
	if len(c.Certs) > 0 {
		parts = append(parts, strings.Join(c.Certs, " "))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// HasTargeting reports whether the candidate supplied any targeting field.
func (c *Candidate) HasTargeting() bool {
	return c.TargetEmployer != "" || c.TargetJobTitle != "" || c.TargetJobCity != ""
}

// Job is one posting record.
type Job struct {
	ID                       string   `json:"id"`
	EmployerName             string   `json:"employer_name"`
	Title                    string   `json:"title"`
	City                     string   `json:"city"`
	PayMin                   *float64 `json:"pay_min,omitempty"`
	PayMax                   *float64 `json:"pay_max,omitempty"`
	MustHaveSkills           []string `json:"must_have_skills"`
	NiceToHave               []string `json:"nice_to_have"`
	Description              string   `json:"description"`
	ResponseFastProb         *float64 `json:"response_fast_prob,omitempty"`
	ResponseMedianReplyHours *float64 `json:"response_median_reply_hours,omitempty"`
	ActiveAppsLast24h        *float64 `json:"active_apps_last_24h,omitempty"`
	CapacityPerDay           *float64 `json:"capacity_per_day,omitempty"`
	FastReplyCertified       bool     `json:"fast_reply_certified"`
}

// Document assembles the job text used for embedding: description plus the
// skill lists with separators space-joined.
func (j *Job) Document() string {
	parts := make([]string, 0, 3)
	if j.Description != "" {
		parts = append(parts, j.Description)
	}
	if len(j.MustHaveSkills) > 0 {
		parts = append(parts, strings.Join(j.MustHaveSkills, " "))
	}
	if len(j.NiceToHave) > 0 {
		parts = append(parts, strings.Join(j.NiceToHave, " "))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// OutcomeEvent is a labeled historical (candidate, job) pair. It is consumed
// only as weight-learner training input and never altered by scoring.
type OutcomeEvent struct {
	ApplicantID string `json:"applicant_id"`
	JobID       string `json:"job_id"`
	Interview   bool   `json:"interview"`
	Hired       bool   `json:"hired"`
}

// Success is the training label: an interview or a hire counts as success.
func (e OutcomeEvent) Success() bool {
	return e.Interview || e.Hired
}

// PairScore is the full subscore vector for one (candidate, job) pair.
// Every pair of the cross product is materialized so that the weight
// learner can join outcomes against it later.
type PairScore struct {
	ApplicantID    string   `json:"applicant_id"`
	ApplicantName  string   `json:"applicant_name"`
	ApplicantEmail string   `json:"applicant_email"`
	JobID          string   `json:"job_id"`
	Employer       string   `json:"employer"`
	JobTitle       string   `json:"job_title"`
	JobCity        string   `json:"job_city"`
	JobPayMin      *float64 `json:"job_pay_min,omitempty"`
	JobPayMax      *float64 `json:"job_pay_max,omitempty"`

	Score          float64 `json:"score"`
	SemScore       float64 `json:"sem_score"`
	ReqScore       float64 `json:"req_score"`
	PayScore       float64 `json:"pay_score"`
	FastReplyScore float64 `json:"fast_reply_score"`
	LoadPenalty    float64 `json:"load_penalty"`
	InterviewScore float64 `json:"interview_score"`
	TargetBoost    float64 `json:"target_boost"`
	ClusterBoost   float64 `json:"cluster_boost"`

	JobCluster              int     `json:"job_cluster"`
	ApplicantNearestCluster int     `json:"applicant_nearest_cluster"`
	ClusterDistance         float64 `json:"cluster_distance"`

	// Competition bands the job's application pressure. It rides along for
	// history aggregation and is not part of the CSV table.
	Competition string `json:"competition"`
}

// MatchResult is the single best job for one candidate.
type MatchResult struct {
	ApplicantID    string   `json:"applicant_id"`
	ApplicantName  string   `json:"applicant_name"`
	ApplicantEmail string   `json:"applicant_email"`
	JobID          string   `json:"job_id"`
	Employer       string   `json:"employer"`
	JobTitle       string   `json:"job_title"`
	JobCity        string   `json:"job_city"`
	JobPayMin      *float64 `json:"job_pay_min,omitempty"`
	JobPayMax      *float64 `json:"job_pay_max,omitempty"`
	Score          float64  `json:"score"`
	Explanation    string   `json:"explanation"`

	// Confidence is a coarse band derived from the score. It is shown on
	// the terminal table and kept in run history, but is not part of the
	// ranked CSV contract.
	Confidence float64 `json:"confidence"`

	// Competition and TagFit are reporting extras for the table and JSON
	// surfaces, also outside the ranked CSV contract.
	Competition string  `json:"competition"`
	TagFit      float64 `json:"tag_fit"`
}

// SplitList splits a semicolon-separated field into trimmed, lowercased
// entries, dropping empties.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
