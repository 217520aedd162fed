// Package cmd implements the loanlens CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/config"
	"github.com/loanlens/loanlens/internal/logging"
	"github.com/loanlens/loanlens/internal/pipeline"
	"github.com/loanlens/loanlens/internal/predict"
	"github.com/loanlens/loanlens/internal/store"
	"github.com/loanlens/loanlens/internal/tui/theme"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagDataPath  string
	flagModel     string
	flagFeatures  string
	flagNoCache   bool
	flagQuiet     bool
	flagLogLevel  string
	flagLogFormat string
)

// Resolved once per process in PersistentPreRunE.
var (
	appCfg config.Config
	logger = logging.Nop()
)

var errNoDataset = errors.New("no dataset configured: pass --data, set " + config.EnvData + ", or run `loanlens setup`")

var rootCmd = &cobra.Command{
	Use:               "loanlens",
	Short:             "Loan portfolio analytics and default prediction",
	Long:              "Explore a loan dataset (volumes, performance, amounts) and score single borrowers with a trained classifier.",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataPath, "data", "d", "", "Dataset CSV file or directory of partitions")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Classifier artifact (default: bundled model)")
	rootCmd.PersistentFlags().StringVar(&flagFeatures, "features", "", "Feature schema artifact (default: bundled schema)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: console or json")
}

// initConfig loads the config file and lets flags override it.
func initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if flagDataPath != "" {
		cfg.General.DataPath = flagDataPath
	}
	if flagModel != "" {
		cfg.Model.Path = flagModel
	}
	if flagFeatures != "" {
		cfg.Model.FeaturesPath = flagFeatures
	}
	if flagNoCache {
		cfg.General.Cache = false
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}

	appCfg = cfg
	logger = logging.New(cfg.Log.Level, cfg.Log.Format).With(zap.String("cmd", cmd.Name()))
	theme.SetActive(cfg.Appearance.Theme)
	return nil
}

// progress prints partition parsing progress to stderr.
func progress(current, total int) {
	if flagQuiet {
		return
	}
	if current%10 == 0 || current == total {
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
	}
}

// loadData is the shared data loading path used by all commands.
// Uses the SQLite cache when enabled for fast subsequent runs.
func loadData(progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	path := appCfg.General.DataPath
	if path == "" {
		return nil, errNoDataset
	}

	if appCfg.General.Cache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			logger.Warn("cache unavailable, doing full parse", zap.Error(err))
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(path, cache, progressFn)
			if err == nil {
				logger.Info("dataset loaded",
					zap.String("path", path),
					zap.Int("loans", cr.Dataset.Len()),
					zap.Int("cache_hits", cr.CacheHits),
					zap.Int("reparsed", cr.Reparsed),
					zap.Int("pruned", cr.Pruned),
					zap.Int("write_errors", cr.WriteErrors))
				return &cr.LoadResult, nil
			}
			logger.Warn("cache error, falling back to full parse", zap.Error(err))
		}
	}

	result, err := pipeline.Load(path, progressFn)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("loans", result.Dataset.Len()),
		zap.Int("partitions", result.ParsedFiles))
	return result, nil
}

// loadDataCLI wraps loadData with stderr progress for table commands.
func loadDataCLI() (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading %s...\n", appCfg.General.DataPath)
	}
	result, err := loadData(progress)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Loaded %s loans from %d partitions    \n",
			cli.FormatNumber(int64(result.Dataset.Len())), result.ParsedFiles)
	}
	return result, nil
}

// printLoadWarnings reports skipped rows and unreadable partitions.
func printLoadWarnings(result *pipeline.LoadResult) {
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d rows could not be parsed\n", result.ParseErrors)
	}
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d partitions could not be read\n", result.FileErrors)
	}
}

// loadPredictor loads the model artifacts once and wires the history store
// when it is enabled. The returned closer releases the store.
func loadPredictor() (*predict.Service, func(), error) {
	arts, err := predict.LoadArtifacts(appCfg.Model.Path, appCfg.Model.FeaturesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading model: %w", err)
	}
	logger.Debug("model loaded",
		zap.String("source", arts.Source),
		zap.Int("features", len(arts.Schema)))

	opts := []predict.Option{predict.WithLogger(logger)}
	closer := func() {}
	if appCfg.General.History {
		hist, err := store.Open(pipeline.CachePath())
		if err != nil {
			logger.Warn("prediction history unavailable", zap.Error(err))
		} else {
			opts = append(opts, predict.WithRecorder(hist))
			closer = func() { _ = hist.Close() }
		}
	}

	svc, err := predict.FromArtifacts(arts, opts...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return svc, closer, nil
}
