package cmd

import (
	"fmt"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/pipeline"
	"github.com/loanlens/loanlens/internal/store"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Recent predictions from the local store",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Predictions to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if flagHistoryLimit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", flagHistoryLimit)
	}

	db, err := store.Open(pipeline.CachePath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	total, err := db.PredictionCount(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("\n  No predictions recorded yet.")
		if !appCfg.General.History {
			fmt.Println("  History is off; enable it with `loanlens setup`.")
		}
		return nil
	}

	recs, err := db.RecentPredictions(ctx, flagHistoryLimit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			shortID(r.ID),
			r.Applicant.Grade,
			r.Applicant.Term,
			cli.FormatMoney(r.Applicant.LoanAmount),
			cli.FormatMoney(r.Applicant.AnnualIncome),
			cli.FormatPercent(r.Percent),
			r.Label,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PREDICTIONS  %d of %s", len(recs), cli.FormatNumber(int64(total)))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Time", "ID", "Grade", "Term", "Amount", "Income", "Probability", "Prediction"},
		Rows:    rows,
	}))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
