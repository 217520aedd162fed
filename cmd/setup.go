package cmd

import (
	"errors"
	"fmt"

	"github.com/loanlens/loanlens/internal/config"
	"github.com/loanlens/loanlens/internal/tui"
	"github.com/loanlens/loanlens/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	loans := 0
	if appCfg.General.DataPath != "" {
		result, err := loadData(nil)
		if err != nil {
			logger.Debug("dataset not loadable during setup", zap.Error(err))
		} else {
			loans = result.Dataset.Len()
		}
	}

	if err := runSetupWizard(loans); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `loanlens setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

// runSetupWizard asks for the setup answers, saves them, and applies them to
// the running process. Flag overrides already in appCfg are not persisted.
func runSetupWizard(loans int) error {
	fileCfg, err := config.Load()
	if err != nil {
		fileCfg = config.DefaultConfig()
	}
	vals := tui.NewSetupValues(fileCfg)
	if vals.DataPath == "" {
		vals.DataPath = appCfg.General.DataPath
	}

	if err := tui.NewSetupForm(loans, vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("setup aborted")
		}
		return fmt.Errorf("setup form: %w", err)
	}

	vals.Apply(&fileCfg)
	if err := config.Save(fileCfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	vals.Apply(&appCfg)
	theme.SetActive(appCfg.Appearance.Theme)
	return nil
}
