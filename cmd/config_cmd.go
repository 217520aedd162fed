package cmd

import (
	"fmt"

	"github.com/loanlens/loanlens/internal/config"
	"github.com/loanlens/loanlens/internal/pipeline"
	"github.com/loanlens/loanlens/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Dataset:  %s\n", orNotSet(cfg.General.DataPath))
	fmt.Printf("    Cache:    %v (%s)\n", cfg.General.Cache, pipeline.CachePath())
	if n, err := cachedPartitions(); err == nil {
		fmt.Printf("    Cached partitions: %d\n", n)
	}
	fmt.Printf("    History:  %v\n", cfg.General.History)
	fmt.Println()

	fmt.Println("  [Model]")
	fmt.Printf("    Classifier: %s\n", orBundled(cfg.Model.Path))
	fmt.Printf("    Features:   %s\n", orBundled(cfg.Model.FeaturesPath))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Printf("  %s and %s override the file.\n", config.EnvData, config.EnvModel)
	fmt.Println("  Run `loanlens setup` to reconfigure.")
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}

func orBundled(s string) string {
	if s == "" {
		return "bundled"
	}
	return s
}

func cachedPartitions() (int, error) {
	db, err := store.Open(pipeline.CachePath())
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	return db.PartitionCount()
}
