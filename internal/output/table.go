package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/olekukonko/tablewriter"

	"github.com/guidesignal/guidematch/internal/history"
	"github.com/guidesignal/guidematch/internal/records"
	"github.com/guidesignal/guidematch/internal/weights"
)

// Table writes data as a formatted table to stdout.
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer.
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []records.MatchResult:
		return matchesTable(w, v)
	case weights.Document:
		return weightsTable(w, v)
	case *history.Stats:
		return statsTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func matchesTable(w io.Writer, matches []records.MatchResult) error {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}

	table := tablewriter.NewTable(w)
	table.Header("RANK", "CANDIDATE", "EMPLOYER", "TITLE", "CITY", "SCORE", "CONFIDENCE", "COMPETITION")
	for i, m := range matches {
		if err := table.Append(
			strconv.Itoa(i+1),
			truncate(m.ApplicantName, 24),
			truncate(m.Employer, 24),
			truncate(m.JobTitle, 28),
			truncate(m.JobCity, 16),
			formatScore(m.Score),
			fmt.Sprintf("%.1f", m.Confidence),
			m.Competition,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func weightsTable(w io.Writer, doc weights.Document) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WEIGHT\tVALUE")
	fmt.Fprintln(tw, "------\t-----")

	names := make([]string, 0, len(doc.Weights))
	for name := range doc.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%.4f\n", name, doc.Weights[name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Method:      %s\n", doc.Metadata.TrainingMethod)
	if doc.Metadata.Reason != "" {
		fmt.Fprintf(w, "Reason:      %s\n", doc.Metadata.Reason)
	}
	fmt.Fprintf(w, "Events:      %d (%d positive)\n", doc.Metadata.TotalEvents, doc.Metadata.LabeledEvents)
	if doc.Metadata.CVAccuracy != nil {
		fmt.Fprintf(w, "CV accuracy: %.3f\n", *doc.Metadata.CVAccuracy)
	}
	fmt.Fprintf(w, "Updated:     %s\n", doc.LastUpdated)
	return nil
}

func statsTable(w io.Writer, stats *history.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Runs recorded:\t%d\n", stats.Runs)
	if stats.LastRunAt != nil {
		fmt.Fprintf(tw, "Last run:\t%s\n", stats.LastRunAt.Format("2006-01-02 15:04"))
	}
	if stats.LastStrategy != "" {
		fmt.Fprintf(tw, "Last strategy:\t%s\n", stats.LastStrategy)
	}
	if stats.LastRunWeight != "" {
		fmt.Fprintf(tw, "Last weights:\t%s\n", stats.LastRunWeight)
	}
	fmt.Fprintf(tw, "Pairs stored:\t%d\n", stats.PairsStored)
	fmt.Fprintf(tw, "Last run pairs:\t%d\n", stats.LastRunPairs)
	if stats.LastRunPairs > 0 {
		b := stats.JobBands
		fmt.Fprintf(tw, "Job competition:\t%d low, %d moderate, %d high, %d saturated\n",
			b.Low, b.Moderate, b.High, b.Saturated)
	}
	if stats.MeanTopScore != nil {
		fmt.Fprintf(tw, "Mean top score:\t%.4f\n", *stats.MeanTopScore)
	}
	fmt.Fprintf(tw, "Outcomes:\t%d\n", stats.Outcomes)
	fmt.Fprintf(tw, "Interviews:\t%d\n", stats.Interviews)
	fmt.Fprintf(tw, "Hires:\t%d\n", stats.Hires)
	return tw.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
