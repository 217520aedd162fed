package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/loanlens/loanlens/internal/config"
	"github.com/loanlens/loanlens/internal/tui/theme"
)

// SetupValues holds the first-run wizard answers.
type SetupValues struct {
	DataPath string
	Theme    string
	Cache    bool
	History  bool
}

// NewSetupValues seeds the wizard from cfg.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		DataPath: cfg.General.DataPath,
		Theme:    cfg.Appearance.Theme,
		Cache:    cfg.General.Cache,
		History:  cfg.General.History,
	}
}

// Apply copies the answers into cfg.
func (v *SetupValues) Apply(cfg *config.Config) {
	cfg.General.DataPath = v.DataPath
	cfg.General.Cache = v.Cache
	cfg.General.History = v.History
	cfg.Appearance.Theme = v.Theme
}

// NewSetupForm builds the setup wizard. loans is the size of the dataset
// already loaded, or zero when none is.
func NewSetupForm(loans int, vals *SetupValues) *huh.Form {
	welcome := "Let's configure a few things."
	if loans > 0 {
		welcome = fmt.Sprintf("Found %d loans. Let's configure a few things.", loans)
	}

	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to loanlens").
				Description(welcome),
			huh.NewInput().
				Title("Dataset path").
				Description("CSV file or directory of CSV partitions").
				Value(&vals.DataPath).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := os.Stat(s); err != nil {
						return fmt.Errorf("cannot read %s", s)
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewConfirm().
				Title("Cache parsed partitions?").
				Value(&vals.Cache),
			huh.NewConfirm().
				Title("Record prediction history?").
				Value(&vals.History),
		),
	).WithShowHelp(false)
}

// saveSetup persists wizard answers and activates the chosen theme.
func saveSetup(vals *SetupValues) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	vals.Apply(&cfg)
	theme.SetActive(cfg.Appearance.Theme)
	return config.Save(cfg)
}
