package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guidesignal/guidematch/internal/records"
)

// Run is the stored metadata of one scoring invocation.
type Run struct {
	ID             string    `json:"id"`
	Strategy       string    `json:"strategy"`
	WeightsSource  string    `json:"weights_source"`
	CandidateCount int       `json:"candidate_count"`
	JobCount       int       `json:"job_count"`
	ClusterCount   int       `json:"cluster_count"`
	TopScore       *float64  `json:"top_score,omitempty"`
	MeanScore      *float64  `json:"mean_score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordRun stores a run row plus its complete pair subscore table in one
// transaction.
func (db *DB) RecordRun(ctx context.Context, run *Run, pairs []records.PairScore) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = time.Now()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, strategy, weights_source, candidate_count, job_count,
			cluster_count, top_score, mean_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Strategy, run.WeightsSource, run.CandidateCount, run.JobCount,
		run.ClusterCount, nullFloat(run.TopScore), nullFloat(run.MeanScore), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pair_scores (
			run_id, applicant_id, job_id, score, sem_score, req_score,
			pay_score, fast_reply_score, load_penalty, interview_score,
			target_boost, cluster_boost, job_cluster,
			applicant_nearest_cluster, cluster_distance, competition, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing pair insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		_, err := stmt.ExecContext(ctx,
			run.ID, p.ApplicantID, p.JobID, p.Score, p.SemScore, p.ReqScore,
			p.PayScore, p.FastReplyScore, p.LoadPenalty, p.InterviewScore,
			p.TargetBoost, p.ClusterBoost, p.JobCluster,
			p.ApplicantNearestCluster, p.ClusterDistance, p.Competition, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting pair (%s, %s): %w", p.ApplicantID, p.JobID, err)
		}
	}

	return tx.Commit()
}

// ImportOutcomes upserts outcome events; a later import of the same pair
// overwrites the flags.
func (db *DB) ImportOutcomes(ctx context.Context, events []records.OutcomeEvent) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes (applicant_id, job_id, interview, hired, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(applicant_id, job_id) DO UPDATE SET
			interview = excluded.interview,
			hired = excluded.hired,
			recorded_at = excluded.recorded_at
	`)
	if err != nil {
		return fmt.Errorf("preparing outcome upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.ApplicantID, e.JobID, boolInt(e.Interview), boolInt(e.Hired), now); err != nil {
			return fmt.Errorf("upserting outcome (%s, %s): %w", e.ApplicantID, e.JobID, err)
		}
	}
	return tx.Commit()
}

// LatestPairScores returns the most recently stored subscore vector per
// (applicant, job) pair.
func (db *DB) LatestPairScores(ctx context.Context) ([]records.PairScore, error) {
	// Bare columns resolve to the MAX(created_at) row per SQLite's
	// aggregate-query semantics, so this picks the newest vector per pair.
	rows, err := db.QueryContext(ctx, `
		SELECT applicant_id, job_id, score, sem_score, req_score, pay_score,
		       fast_reply_score, load_penalty, interview_score, target_boost,
		       cluster_boost, job_cluster, applicant_nearest_cluster,
		       cluster_distance, competition, MAX(created_at)
		FROM pair_scores
		GROUP BY applicant_id, job_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying pair scores: %w", err)
	}
	defer rows.Close()

	var pairs []records.PairScore
	for rows.Next() {
		var p records.PairScore
		var latest time.Time
		if err := rows.Scan(
			&p.ApplicantID, &p.JobID, &p.Score, &p.SemScore, &p.ReqScore, &p.PayScore,
			&p.FastReplyScore, &p.LoadPenalty, &p.InterviewScore, &p.TargetBoost,
			&p.ClusterBoost, &p.JobCluster, &p.ApplicantNearestCluster,
			&p.ClusterDistance, &p.Competition, &latest,
		); err != nil {
			return nil, fmt.Errorf("scanning pair score: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// Outcomes returns all stored outcome events.
func (db *DB) Outcomes(ctx context.Context) ([]records.OutcomeEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT applicant_id, job_id, interview, hired FROM outcomes
	`)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var events []records.OutcomeEvent
	for rows.Next() {
		var e records.OutcomeEvent
		var interview, hired int
		if err := rows.Scan(&e.ApplicantID, &e.JobID, &interview, &hired); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		e.Interview = interview != 0
		e.Hired = hired != 0
		events = append(events, e)
	}
	return events, rows.Err()
}

// Stats aggregates the stored history.
type Stats struct {
	Runs          int              `json:"runs"`
	LastRunAt     *time.Time       `json:"last_run_at,omitempty"`
	PairsStored   int              `json:"pairs_stored"`
	Outcomes      int              `json:"outcomes"`
	Interviews    int              `json:"interviews"`
	Hires         int              `json:"hires"`
	MeanTopScore  *float64         `json:"mean_top_score,omitempty"`
	LastStrategy  string           `json:"last_strategy,omitempty"`
	LastRunPairs  int              `json:"last_run_pairs"`
	LastRunWeight string           `json:"last_run_weights,omitempty"`
	JobBands      CompetitionBands `json:"job_competition"`
}

// CompetitionBands counts the last run's jobs by application pressure band.
type CompetitionBands struct {
	Low       int `json:"low"`
	Moderate  int `json:"moderate"`
	High      int `json:"high"`
	Saturated int `json:"saturated"`
}

// GetStats aggregates run and outcome history, optionally restricted to
// runs created after since.
func (db *DB) GetStats(ctx context.Context, since *time.Time) (*Stats, error) {
	stats := &Stats{}

	runFilter := ""
	var args []any
	if since != nil {
		runFilter = " WHERE created_at >= ?"
		args = append(args, *since)
	}

	var lastRun sql.NullTime
	var meanTop sql.NullFloat64
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*), MAX(created_at), AVG(top_score) FROM runs"+runFilter, args...,
	).Scan(&stats.Runs, &lastRun, &meanTop)
	if err != nil {
		return nil, fmt.Errorf("aggregating runs: %w", err)
	}
	if lastRun.Valid {
		stats.LastRunAt = &lastRun.Time
	}
	if meanTop.Valid {
		stats.MeanTopScore = &meanTop.Float64
	}

	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(interview), 0),
		       COALESCE(SUM(hired), 0)
		FROM outcomes
	`).Scan(&stats.Outcomes, &stats.Interviews, &stats.Hires)
	if err != nil {
		return nil, fmt.Errorf("aggregating outcomes: %w", err)
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pair_scores").Scan(&stats.PairsStored); err != nil {
		return nil, fmt.Errorf("counting pairs: %w", err)
	}

	var strategy, weightsSource sql.NullString
	var runID sql.NullString
	err = db.QueryRowContext(ctx, `
		SELECT id, strategy, weights_source FROM runs ORDER BY created_at DESC LIMIT 1
	`).Scan(&runID, &strategy, &weightsSource)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("reading last run: %w", err)
	}
	if runID.Valid {
		stats.LastStrategy = strategy.String
		stats.LastRunWeight = weightsSource.String
		err = db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM pair_scores WHERE run_id = ?", runID.String,
		).Scan(&stats.LastRunPairs)
		if err != nil {
			return nil, fmt.Errorf("counting last run pairs: %w", err)
		}
		if err := db.jobBands(ctx, runID.String, &stats.JobBands); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// jobBands counts the distinct jobs of one run per competition band. The
// band is a job property, so every pair of the same job carries the same
// value.
func (db *DB) jobBands(ctx context.Context, runID string, bands *CompetitionBands) error {
	rows, err := db.QueryContext(ctx, `
		SELECT competition, COUNT(DISTINCT job_id)
		FROM pair_scores
		WHERE run_id = ?
		GROUP BY competition
	`, runID)
	if err != nil {
		return fmt.Errorf("aggregating competition bands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var band string
		var n int
		if err := rows.Scan(&band, &n); err != nil {
			return fmt.Errorf("scanning competition band: %w", err)
		}
		switch band {
		case "low":
			bands.Low = n
		case "moderate":
			bands.Moderate = n
		case "high":
			bands.High = n
		case "saturated":
			bands.Saturated = n
		}
	}
	return rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
