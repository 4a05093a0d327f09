package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// row gives header-indexed access to one CSV record.
type row struct {
	header map[string]int
	fields []string
}

func (r row) get(col string) string {
	idx, ok := r.header[col]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (r row) getFloat(col string) *float64 {
	return parseFloat(r.get(col))
}

func (r row) getBool(col string) bool {
	switch strings.ToLower(r.get(col)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// parseFloat returns nil for blank or unparsable cells. Degrading to a
// neutral default happens at scoring time, not here.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func readRows(r io.Reader, required []string) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	header := make(map[string]int, len(head))
	for i, col := range head {
		header[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var rows []row
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		rows = append(rows, row{header: header, fields: fields})
	}
	return rows, nil
}

// ReadCandidates parses an applicants table.
func ReadCandidates(r io.Reader) ([]Candidate, error) {
	rows, err := readRows(r, []string{"id"})
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, Candidate{
			ID:             row.get("id"),
			Name:           row.get("name"),
			Email:          row.get("email"),
			City:           row.get("city"),
			TargetPayMin:   row.getFloat("target_pay_min"),
			SkillsText:     row.get("skills_text"),
			SkillsTags:     SplitList(row.get("skills_tags")),
			Certs:          SplitList(row.get("certs")),
			ResumeText:     row.get("resume_text"),
			TargetEmployer: row.get("target_employer"),
			TargetJobTitle: row.get("target_job_title"),
			TargetJobCity:  row.get("target_job_city"),
		})
	}
	return candidates, nil
}

// ReadJobs parses a jobs table.
func ReadJobs(r io.Reader) ([]Job, error) {
	rows, err := readRows(r, []string{"id"})
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, Job{
			ID:                       row.get("id"),
			EmployerName:             row.get("employer_name"),
			Title:                    row.get("title"),
			City:                     row.get("city"),
			PayMin:                   row.getFloat("pay_min"),
			PayMax:                   row.getFloat("pay_max"),
			MustHaveSkills:           SplitList(row.get("must_have_skills")),
			NiceToHave:               SplitList(row.get("nice_to_have")),
			Description:              row.get("description"),
			ResponseFastProb:         row.getFloat("response_fast_prob"),
			ResponseMedianReplyHours: row.getFloat("response_median_reply_hours"),
			ActiveAppsLast24h:        row.getFloat("active_apps_last_24h"),
			CapacityPerDay:           row.getFloat("capacity_per_day"),
			FastReplyCertified:       row.getBool("fast_reply_certified"),
		})
	}
	return jobs, nil
}

// ReadOutcomes parses an outcome events table.
func ReadOutcomes(r io.Reader) ([]OutcomeEvent, error) {
	rows, err := readRows(r, []string{"applicant_id", "job_id"})
	if err != nil {
		return nil, err
	}

	events := make([]OutcomeEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, OutcomeEvent{
			ApplicantID: row.get("applicant_id"),
			JobID:       row.get("job_id"),
			Interview:   row.getBool("interview"),
			Hired:       row.getBool("hired"),
		})
	}
	return events, nil
}

// ReadDetailed parses a detailed subscores table written by a previous run.
func ReadDetailed(r io.Reader) ([]PairScore, error) {
	rows, err := readRows(r, []string{"applicant_id", "job_id", "sem_score", "req_score",
		"pay_score", "fast_reply_score", "load_penalty", "interview_score"})
	if err != nil {
		return nil, err
	}

	pairs := make([]PairScore, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, PairScore{
			ApplicantID:             row.get("applicant_id"),
			ApplicantName:           row.get("applicant_name"),
			ApplicantEmail:          row.get("applicant_email"),
			JobID:                   row.get("job_id"),
			Employer:                row.get("employer"),
			JobTitle:                row.get("job_title"),
			JobCity:                 row.get("job_city"),
			JobPayMin:               row.getFloat("job_pay_min"),
			JobPayMax:               row.getFloat("job_pay_max"),
			Score:                   floatOrZero(row.getFloat("score")),
			SemScore:                floatOrZero(row.getFloat("sem_score")),
			ReqScore:                floatOrZero(row.getFloat("req_score")),
			PayScore:                floatOrZero(row.getFloat("pay_score")),
			FastReplyScore:          floatOrZero(row.getFloat("fast_reply_score")),
			LoadPenalty:             floatOrZero(row.getFloat("load_penalty")),
			InterviewScore:          floatOrZero(row.getFloat("interview_score")),
			TargetBoost:             floatOrZero(row.getFloat("target_boost")),
			ClusterBoost:            floatOrZero(row.getFloat("cluster_boost")),
			JobCluster:              intOrZero(row.get("job_cluster")),
			ApplicantNearestCluster: intOrZero(row.get("applicant_nearest_cluster")),
			ClusterDistance:         floatOrZero(row.getFloat("cluster_distance")),
		})
	}
	return pairs, nil
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// LoadCandidates reads an applicants CSV from disk.
func LoadCandidates(path string) ([]Candidate, error) {
	return loadFile(path, ReadCandidates)
}

// LoadJobs reads a jobs CSV from disk.
func LoadJobs(path string) ([]Job, error) {
	return loadFile(path, ReadJobs)
}

// LoadOutcomes reads an outcome events CSV from disk.
func LoadOutcomes(path string) ([]OutcomeEvent, error) {
	return loadFile(path, ReadOutcomes)
}

// LoadDetailed reads a detailed subscores CSV from disk.
func LoadDetailed(path string) ([]PairScore, error) {
	return loadFile(path, ReadDetailed)
}

func loadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}
