package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guidesignal/guidematch/internal/config"
	"github.com/guidesignal/guidematch/internal/output"
	"github.com/guidesignal/guidematch/internal/weights"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Inspect scoring weights",
}

var weightsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current weights file",
	Long: `Display the weights the next match run will use: the learned weights
file if one exists, otherwise the built-in formula weights.

Examples:
  guidematch weights show
  guidematch weights show --file=weights.json
  guidematch weights show -o json`,
	RunE: runWeightsShow,
}

var weightsFile string

func init() {
	rootCmd.AddCommand(weightsCmd)
	weightsCmd.AddCommand(weightsShowCmd)

	weightsShowCmd.Flags().StringVar(&weightsFile, "file", "", "weights file path (default from config)")
}

func runWeightsShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	path := weightsFile
	if path == "" {
		path = cfg.Output.WeightsPath
	}

	doc, err := weights.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No weights file at %s; match runs use built-in weights.\n\n", path)
			doc = weights.NewDocument(weights.Builtin(), weights.Metadata{
				TrainingMethod: "builtin",
			})
			return output.Output(outputFmt, doc)
		}
		return fmt.Errorf("failed to load weights: %w", err)
	}

	return output.Output(outputFmt, doc)
}
