package output

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/guidesignal/guidematch/internal/records"
)

var matchHeader = []string{
	"applicant_id", "applicant_name", "applicant_email",
	"job_id", "employer", "job_title", "job_city",
	"job_pay_min", "job_pay_max", "score", "explanation",
}

var detailedHeader = []string{
	"applicant_id", "applicant_name", "applicant_email",
	"job_id", "employer", "job_title", "job_city",
	"job_pay_min", "job_pay_max", "score",
	"sem_score", "req_score", "pay_score", "fast_reply_score",
	"load_penalty", "interview_score", "target_boost", "cluster_boost",
	"job_cluster", "applicant_nearest_cluster", "cluster_distance",
}

// WriteMatchOutputs writes the ranked match table and the full per-pair
// subscore table for one run. Both files are staged as temp files in their
// target directories and renamed into place only after both flush cleanly,
// so a failed run leaves neither table behind.
func WriteMatchOutputs(matchesPath, detailedPath string, matches []records.MatchResult, pairs []records.PairScore) error {
	matchTmp, err := stageCSV(matchesPath, matchRows(matches))
	if err != nil {
		return err
	}
	defer os.Remove(matchTmp)

	detailedTmp, err := stageCSV(detailedPath, detailedRows(pairs))
	if err != nil {
		return err
	}
	defer os.Remove(detailedTmp)

	if err := os.Rename(matchTmp, matchesPath); err != nil {
		return fmt.Errorf("replacing %s: %w", matchesPath, err)
	}
	if err := os.Rename(detailedTmp, detailedPath); err != nil {
		return fmt.Errorf("replacing %s: %w", detailedPath, err)
	}
	return nil
}

func matchRows(matches []records.MatchResult) [][]string {
	rows := make([][]string, 0, len(matches)+1)
	rows = append(rows, matchHeader)
	for _, m := range matches {
		rows = append(rows, []string{
			m.ApplicantID, m.ApplicantName, m.ApplicantEmail,
			m.JobID, m.Employer, m.JobTitle, m.JobCity,
			formatOptional(m.JobPayMin), formatOptional(m.JobPayMax),
			formatScore(m.Score), m.Explanation,
		})
	}
	return rows
}

func detailedRows(pairs []records.PairScore) [][]string {
	rows := make([][]string, 0, len(pairs)+1)
	rows = append(rows, detailedHeader)
	for _, p := range pairs {
		rows = append(rows, []string{
			p.ApplicantID, p.ApplicantName, p.ApplicantEmail,
			p.JobID, p.Employer, p.JobTitle, p.JobCity,
			formatOptional(p.JobPayMin), formatOptional(p.JobPayMax),
			formatScore(p.Score),
			formatScore(p.SemScore), formatScore(p.ReqScore),
			formatScore(p.PayScore), formatScore(p.FastReplyScore),
			formatScore(p.LoadPenalty), formatScore(p.InterviewScore),
			formatScore(p.TargetBoost), formatScore(p.ClusterBoost),
			strconv.Itoa(p.JobCluster), strconv.Itoa(p.ApplicantNearestCluster),
			formatScore(p.ClusterDistance),
		})
	}
	return rows
}

// stageCSV writes rows to a temp file next to path and returns the temp
// name; the caller renames it into place.
func stageCSV(path string, rows [][]string) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return tmpName, nil
}

// formatScore rounds to four decimals and prints the shortest decimal form,
// so 1.0 renders as "1" and 0.85 stays "0.85".
func formatScore(v float64) string {
	rounded := math.Round(v*10000) / 10000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatScore(*v)
}
