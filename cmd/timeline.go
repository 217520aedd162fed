package cmd

import (
	"fmt"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagTimelineLast int

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Loans and loan amount per issue date, loans per weekday",
	RunE:  runTimeline,
}

func init() {
	timelineCmd.Flags().IntVarP(&flagTimelineLast, "last", "n", 14, "Issue dates to list (0 = all)")
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(_ *cobra.Command, _ []string) error {
	result, err := loadDataCLI()
	if err != nil {
		return err
	}
	d := result.Dataset

	counts, err := pipeline.CountByDate(d)
	if err != nil {
		return err
	}
	amounts, err := pipeline.SumAmountByDate(d)
	if err != nil {
		return err
	}
	weekdays, err := pipeline.CountByWeekday(d)
	if err != nil {
		return err
	}

	if len(counts) == 0 {
		fmt.Println("\n  No dated loans found.")
		printLoadWarnings(result)
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ISSUANCE  %s to %s",
		cli.FormatDate(counts[0].Date), cli.FormatDate(counts[len(counts)-1].Date))))
	fmt.Println()

	fmt.Println(cli.RenderMetric("Loans per issue date", cli.RenderSparkline(values(counts))))
	fmt.Println(cli.RenderMetric("Amount per issue date", cli.RenderSparkline(values(amounts))))
	fmt.Println()

	amountByDate := make(map[string]float64, len(amounts))
	for _, p := range amounts {
		amountByDate[cli.FormatDate(p.Date)] = p.Value
	}

	shown := counts
	if flagTimelineLast > 0 && len(shown) > flagTimelineLast {
		shown = shown[len(shown)-flagTimelineLast:]
	}
	rows := make([][]string, 0, len(shown))
	for i := len(shown) - 1; i >= 0; i-- {
		date := cli.FormatDate(shown[i].Date)
		rows = append(rows, []string{
			date,
			cli.FormatNumber(int64(shown[i].Value)),
			cli.FormatMoney(amountByDate[date]),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Issue Dates",
		Headers: []string{"Date", "Loans", "Amount"},
		Rows:    rows,
	}))
	fmt.Println()

	fmt.Println("  Loans per Weekday")
	peak := 0
	for _, w := range weekdays {
		peak = max(peak, w.Count)
	}
	for _, w := range weekdays {
		fmt.Println(cli.RenderHorizontalBar(cli.ShortWeekday(w.Key), float64(w.Count), float64(peak), 4, 40))
	}

	printLoadWarnings(result)
	return nil
}

func values(pts []model.DatePoint) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Value
	}
	return out
}
