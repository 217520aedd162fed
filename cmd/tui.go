package cmd

import (
	"fmt"

	"github.com/loanlens/loanlens/internal/config"
	"github.com/loanlens/loanlens/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Nothing to show without a dataset: ask for one before entering the alt screen.
	if appCfg.General.DataPath == "" {
		if config.Exists() {
			return errNoDataset
		}
		if err := runSetupWizard(0); err != nil {
			return err
		}
		if appCfg.General.DataPath == "" {
			return errNoDataset
		}
	}

	svc, closeStore, err := loadPredictor()
	if err != nil {
		return err
	}
	defer closeStore()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		DataPath:  appCfg.General.DataPath,
		Load:      loadData,
		Predictor: svc,
		Setup:     !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
