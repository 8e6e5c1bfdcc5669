// Command jjplan serves and inspects a Brazilian jiu-jitsu game plan.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jjplan/internal/config"
	"jjplan/internal/loader"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	datasetPath string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jjplan",
	Short: "jjplan - BJJ game plan explorer",
	Long: `jjplan serves a graph of grappling positions, the moves available from
each one, and a belt-filtered index of submissions.

Use "jjplan serve" to run the HTTP API, or the validate, export and catalog
commands to work with a dataset from the shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		var path string
		if configPath != "" {
			cfg, path, err = config.LoadFromPath(configPath)
		} else {
			cfg, path, err = config.Load()
		}
		if err != nil {
			return err
		}
		if path != "" {
			logger.Debug("loaded config", zap.String("path", path))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: search "+config.EnvConfigPath+", ./"+config.ConfigFileName+", XDG dirs)")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "Dataset file, .yaml, .json or .toml (default: embedded game plan)")
}

// activeDatasetPath applies the --dataset flag over the config file
func activeDatasetPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("dataset") {
		return datasetPath
	}
	return cfg.Dataset.Path
}

// loadPlan loads the dataset selected by flag or config
func loadPlan(cmd *cobra.Command) (*loader.GamePlan, error) {
	path := activeDatasetPath(cmd)
	plan, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded",
		zap.String("source", plan.Source),
		zap.String("version", plan.Version),
		zap.Int("positions", plan.Graph.Len()),
		zap.Int("catalog", plan.Catalog.Len()),
	)
	return plan, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
