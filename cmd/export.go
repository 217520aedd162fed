package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/export"

	"github.com/spf13/cobra"
)

var (
	flagExportOut       string
	flagExportCondition string
	flagExportWidth     int
	flagExportHeight    int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render every dashboard chart as PNG",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "charts", "Output directory")
	exportCmd.Flags().StringVarP(&flagExportCondition, "condition", "c", "", "Loan condition for the amount charts (default: first in dataset)")
	exportCmd.Flags().IntVar(&flagExportWidth, "width", 1024, "Chart width in pixels")
	exportCmd.Flags().IntVar(&flagExportHeight, "height", 512, "Chart height in pixels")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	result, err := loadDataCLI()
	if err != nil {
		return err
	}

	condition, err := resolveCondition(result.Dataset, flagExportCondition)
	if err != nil {
		return err
	}

	r := export.New()
	r.Width, r.Height = flagExportWidth, flagExportHeight
	written, errs := r.WriteAll(flagExportOut, result.Dataset, condition)

	fmt.Println()
	rows := make([][]string, 0, len(written))
	for _, path := range written {
		rows = append(rows, []string{path})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Charts (%d of %d)", len(written), len(export.Names)),
		Headers: []string{"File"},
		Rows:    rows,
	}))

	for _, e := range errs {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(e.Error()))
	}
	printLoadWarnings(result)
	if len(written) == 0 && len(errs) > 0 {
		return errors.New("no charts written")
	}
	return nil
}
