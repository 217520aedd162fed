package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagCondition string
	flagBins      int
)

var financialCmd = &cobra.Command{
	Use:   "financial",
	Short: "Loan amount distribution for one loan condition",
	Long:  "Loan amount histogram split by term, and loan amount box statistics per purpose and term, for the loans of one condition.",
	RunE:  runFinancial,
}

func init() {
	financialCmd.Flags().StringVarP(&flagCondition, "condition", "c", "", "Loan condition (default: first in dataset)")
	financialCmd.Flags().IntVar(&flagBins, "bins", pipeline.DefaultBins, "Histogram bins")
	rootCmd.AddCommand(financialCmd)
}

func runFinancial(_ *cobra.Command, _ []string) error {
	if flagBins < 1 {
		return fmt.Errorf("--bins must be at least 1, got %d", flagBins)
	}

	result, err := loadDataCLI()
	if err != nil {
		return err
	}

	condition, err := resolveCondition(result.Dataset, flagCondition)
	if err != nil {
		return err
	}
	if condition == "" {
		fmt.Println("\n  No loans found in the dataset.")
		printLoadWarnings(result)
		return nil
	}

	sub, err := pipeline.FilterByCondition(result.Dataset, condition)
	if err != nil {
		return err
	}
	bins, err := pipeline.Histogram(sub, flagBins)
	if err != nil {
		return err
	}
	boxes, err := pipeline.BoxStats(sub)
	if err != nil {
		return err
	}
	terms := pipeline.TermValues(sub)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LOAN AMOUNTS  %s (%s loans)",
		condition, cli.FormatNumber(int64(sub.Len())))))
	fmt.Println()

	headers := append([]string{"Amount"}, terms...)
	headers = append(headers, "Total")
	rows := make([][]string, 0, len(bins))
	for _, b := range bins {
		row := []string{fmt.Sprintf("%s - %s", cli.FormatMoney(b.Lower), cli.FormatMoney(b.Upper))}
		for _, t := range terms {
			row = append(row, cli.FormatNumber(int64(b.ByTerm[t])))
		}
		row = append(row, cli.FormatNumber(int64(b.Count)))
		rows = append(rows, row)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Loan Amount Histogram",
		Headers: headers,
		Rows:    rows,
	}))
	fmt.Println()

	rows = rows[:0]
	for _, b := range boxes {
		rows = append(rows, []string{
			b.Purpose,
			b.Term,
			cli.FormatNumber(int64(b.Count)),
			cli.FormatMoney(b.Min),
			cli.FormatMoney(b.Q1),
			cli.FormatMoney(b.Median),
			cli.FormatMoney(b.Q3),
			cli.FormatMoney(b.Max),
			cli.FormatMoney(b.Mean),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Loan Amount by Purpose and Term",
		Headers: []string{"Purpose", "Term", "Loans", "Min", "Q1", "Median", "Q3", "Max", "Mean"},
		Rows:    rows,
	}))

	printLoadWarnings(result)
	return nil
}

// resolveCondition defaults to the first condition seen in the dataset and
// rejects names the dataset does not contain.
func resolveCondition(d *model.Dataset, want string) (string, error) {
	conds, err := pipeline.ConditionValues(d)
	if err != nil {
		return "", err
	}
	if len(conds) == 0 {
		return "", nil
	}
	if want == "" {
		return conds[0], nil
	}
	if !slices.Contains(conds, want) {
		return "", fmt.Errorf("unknown loan condition %q (have: %s)", want, strings.Join(conds, ", "))
	}
	return want, nil
}
