package cmd

import (
	"fmt"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/pipeline"

	"github.com/spf13/cobra"
)

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Loan condition and grade distributions",
	RunE:  runPerformance,
}

func init() {
	rootCmd.AddCommand(performanceCmd)
}

func runPerformance(_ *cobra.Command, _ []string) error {
	result, err := loadDataCLI()
	if err != nil {
		return err
	}
	d := result.Dataset

	conditions, err := pipeline.CountBy(d, model.ColLoanCondition, pipeline.ByCountDesc)
	if err != nil {
		return err
	}
	grades, err := pipeline.CountBy(d, model.ColGrade, pipeline.ByKey)
	if err != nil {
		return err
	}

	if d.Len() == 0 {
		fmt.Println("\n  No loans found in the dataset.")
		printLoadWarnings(result)
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOAN PERFORMANCE"))
	fmt.Println()

	total := float64(d.Len())
	rows := make([][]string, 0, len(conditions))
	for _, c := range conditions {
		rows = append(rows, []string{
			c.Key,
			cli.FormatNumber(int64(c.Count)),
			fmt.Sprintf("%.1f%%", float64(c.Count)/total*100),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Loan Condition",
		Headers: []string{"Condition", "Loans", "Share"},
		Rows:    rows,
	}))
	fmt.Println()

	fmt.Println("  Loans per Grade")
	peak := 0
	for _, g := range grades {
		peak = max(peak, g.Count)
	}
	for _, g := range grades {
		fmt.Println(cli.RenderHorizontalBar(g.Key, float64(g.Count), float64(peak), 2, 40))
	}

	printLoadWarnings(result)
	return nil
}
