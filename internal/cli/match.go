package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guidesignal/guidematch/internal/config"
	"github.com/guidesignal/guidematch/internal/embed"
	"github.com/guidesignal/guidematch/internal/history"
	"github.com/guidesignal/guidematch/internal/output"
	"github.com/guidesignal/guidematch/internal/records"
	"github.com/guidesignal/guidematch/internal/scoring"
	"github.com/guidesignal/guidematch/internal/weights"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score applicants against jobs and write ranked matches",
	Long: `Score every applicant against every open job, pick the best job per
applicant, and write the ranked match table plus the per-pair subscore
table consumed later by weight learning.

Weights come from a previously learned weights file when one exists;
otherwise the built-in formula weights apply.

Examples:
  guidematch match --applicants=applicants.csv --jobs=jobs.csv
  guidematch match -a applicants.csv -j jobs.csv --detailed top_matches_detailed.csv
  guidematch match -a applicants.csv -j jobs.csv --weights=weights.json --no-history`,
	RunE: runMatch,
}

var (
	matchApplicants string
	matchJobs       string
	matchOut        string
	matchDetailed   string
	matchWeights    string
	matchNoHistory  bool
)

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&matchApplicants, "applicants", "a", "", "applicants CSV file (required)")
	matchCmd.Flags().StringVarP(&matchJobs, "jobs", "j", "", "jobs CSV file (required)")
	matchCmd.Flags().StringVar(&matchOut, "out", "", "ranked matches CSV path (default from config)")
	matchCmd.Flags().StringVar(&matchDetailed, "detailed", "", "per-pair subscore CSV path (default from config)")
	matchCmd.Flags().StringVar(&matchWeights, "weights", "", "weights file path (default from config)")
	matchCmd.Flags().BoolVar(&matchNoHistory, "no-history", false, "skip recording the run in the history database")
	matchCmd.MarkFlagRequired("applicants")
	matchCmd.MarkFlagRequired("jobs")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	candidates, err := records.LoadCandidates(matchApplicants)
	if err != nil {
		return fmt.Errorf("failed to load applicants: %w", err)
	}
	jobs, err := records.LoadJobs(matchJobs)
	if err != nil {
		return fmt.Errorf("failed to load jobs: %w", err)
	}

	ws, wsSource := loadWeights(cfg, log)

	embedder := embed.Select(ctx, embed.Config{
		Endpoint: cfg.Embedding.Endpoint,
		Model:    cfg.Embedding.Model,
		Timeout:  cfg.Embedding.Timeout(),
	}, log)

	engine := scoring.NewEngine(embedder, ws, log)
	result, err := engine.Score(ctx, candidates, jobs)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	outPath := matchOut
	if outPath == "" {
		outPath = cfg.Output.MatchesPath
	}
	detailedPath := matchDetailed
	if detailedPath == "" {
		detailedPath = cfg.Output.DetailedPath
	}
	if err := output.WriteMatchOutputs(outPath, detailedPath, result.Matches, result.Pairs); err != nil {
		return fmt.Errorf("failed to write match tables: %w", err)
	}
	log.Info("wrote match tables",
		zap.String("matches", outPath),
		zap.String("detailed", detailedPath),
		zap.Int("applicants", len(result.Matches)),
		zap.Int("pairs", len(result.Pairs)),
	)

	if !matchNoHistory {
		if err := recordRun(cmd, cfg, wsSource, result, len(candidates), len(jobs)); err != nil {
			// An unwritable history database must not invalidate the
			// matches already on disk.
			log.Warn("failed to record run history", zap.Error(err))
		}
	}

	return output.Output(outputFmt, result.Matches)
}

// loadWeights resolves the scoring weight set: a readable, valid learned
// weights file wins; anything else falls back to the built-in formula.
func loadWeights(cfg *config.Config, log *zap.Logger) (weights.Set, string) {
	path := matchWeights
	if path == "" {
		path = cfg.Output.WeightsPath
	}

	doc, err := weights.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("unreadable weights file, using built-in weights",
				zap.String("path", path), zap.Error(err))
		}
		return weights.Builtin(), "builtin"
	}

	ws, err := doc.Set()
	if err != nil {
		log.Warn("invalid weights file, using built-in weights",
			zap.String("path", path), zap.Error(err))
		return weights.Builtin(), "builtin"
	}

	source := doc.Metadata.TrainingMethod
	if source == "" {
		source = "learned"
	}
	log.Info("loaded weights",
		zap.String("path", path),
		zap.String("source", source),
	)
	return ws, source
}

func recordRun(cmd *cobra.Command, cfg *config.Config, wsSource string, result *scoring.Result, nCandidates, nJobs int) error {
	db, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	run := &history.Run{
		Strategy:       string(result.Strategy),
		WeightsSource:  wsSource,
		CandidateCount: nCandidates,
		JobCount:       nJobs,
		ClusterCount:   result.ClusterCount,
	}
	if len(result.Matches) > 0 {
		top := result.Matches[0].Score
		var sum float64
		for _, m := range result.Matches {
			sum += m.Score
		}
		mean := sum / float64(len(result.Matches))
		run.TopScore = &top
		run.MeanScore = &mean
	}

	return db.RecordRun(cmd.Context(), run, result.Pairs)
}
