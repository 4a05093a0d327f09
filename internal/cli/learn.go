package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guidesignal/guidematch/internal/config"
	"github.com/guidesignal/guidematch/internal/history"
	"github.com/guidesignal/guidematch/internal/learn"
	"github.com/guidesignal/guidematch/internal/output"
	"github.com/guidesignal/guidematch/internal/records"
	"github.com/guidesignal/guidematch/internal/weights"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Learn scoring weights from labeled outcomes",
	Long: `Fit scoring weights from interview and hire outcomes joined against
stored per-pair subscores, then write the weights file the next match
run will pick up.

With too little data the built-in default weights are written instead,
with the reason recorded in the file's metadata.

Examples:
  guidematch learn --events=outcomes.csv --detailed=matches_detailed.csv
  guidematch learn --events=outcomes.csv --from-history
  guidematch learn --from-history --out=weights.json`,
	RunE: runLearn,
}

var (
	learnEvents      string
	learnDetailed    string
	learnFromHistory bool
	learnOut         string
)

func init() {
	rootCmd.AddCommand(learnCmd)

	learnCmd.Flags().StringVar(&learnEvents, "events", "", "outcome events CSV file")
	learnCmd.Flags().StringVar(&learnDetailed, "detailed", "", "detailed subscores CSV from a previous match run")
	learnCmd.Flags().BoolVar(&learnFromHistory, "from-history", false, "join against pair scores stored in the history database")
	learnCmd.Flags().StringVar(&learnOut, "out", "", "weights file path (default from config)")
	learnCmd.MarkFlagsMutuallyExclusive("detailed", "from-history")
}

func runLearn(cmd *cobra.Command, args []string) error {
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

	var events []records.OutcomeEvent
	if learnEvents != "" {
		events, err = records.LoadOutcomes(learnEvents)
		if err != nil {
			return fmt.Errorf("failed to load outcomes: %w", err)
		}
	}

	var pairs []records.PairScore
	switch {
	case learnFromHistory:
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()

		if events != nil {
			// Keep the label store current so later stats reflect these events.
			if err := db.ImportOutcomes(ctx, events); err != nil {
				return fmt.Errorf("failed to import outcomes: %w", err)
			}
		} else {
			events, err = db.Outcomes(ctx)
			if err != nil {
				return fmt.Errorf("failed to read stored outcomes: %w", err)
			}
		}
		pairs, err = db.LatestPairScores(ctx)
		if err != nil {
			return fmt.Errorf("failed to read pair scores: %w", err)
		}
	case learnDetailed != "":
		if events == nil {
			return fmt.Errorf("--events is required with --detailed")
		}
		pairs, err = records.LoadDetailed(learnDetailed)
		if err != nil {
			return fmt.Errorf("failed to load detailed scores: %w", err)
		}
	default:
		return fmt.Errorf("either --detailed or --from-history is required")
	}

	learner := learn.NewLearner(log)
	learner.MinEvents = cfg.Learn.MinEvents
	learner.MinPositive = cfg.Learn.MinPositive

	samples := learn.Join(events, pairs)
	doc := learner.Train(samples)

	outPath := learnOut
	if outPath == "" {
		outPath = cfg.Output.WeightsPath
	}
	if err := weights.Save(outPath, doc); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}
	log.Info("wrote weights",
		zap.String("path", outPath),
		zap.String("method", doc.Metadata.TrainingMethod),
		zap.Int("labeled_events", doc.Metadata.LabeledEvents),
	)

	return output.Output(outputFmt, doc)
}
