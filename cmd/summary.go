package cmd

import (
	"fmt"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Overview metrics across all loans",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	result, err := loadDataCLI()
	if err != nil {
		return err
	}

	if result.Dataset.Len() == 0 {
		fmt.Println("\n  No loans found in the dataset.")
		printLoadWarnings(result)
		return nil
	}

	stats, err := pipeline.Summary(result.Dataset)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOAN PORTFOLIO  Overview"))
	fmt.Println()

	rows := [][]string{
		{"Total Loans", cli.FormatNumber(int64(stats.TotalLoans))},
		{"Total Loan Amount", cli.FormatMoney(stats.TotalAmount)},
		{cli.Separator},
		{"Avg Interest Rate", cli.FormatRate(stats.AverageInterestRate)},
		{"Avg Loan Amount", cli.FormatMoney(stats.AverageAmount)},
	}

	if conds, err := pipeline.CountBy(result.Dataset, model.ColLoanCondition, pipeline.ByCountDesc); err == nil && len(conds) > 0 {
		rows = append(rows, []string{cli.Separator})
		for _, c := range conds {
			rows = append(rows, []string{c.Key, cli.FormatNumber(int64(c.Count))})
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	printLoadWarnings(result)
	return nil
}
