package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/decisionlab/dagraph/internal/config"
	"github.com/decisionlab/dagraph/internal/logging"
	"github.com/decisionlab/dagraph/internal/metrics"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile      string
	verbose      bool
	outputFormat string
	metricsFile  string
	logger       *logging.Logger
	cfg          *config.Config
)

func main() {
	err := rootCmd.Execute()
	if metricsFile != "" {
		if werr := metrics.WriteFile(metricsFile); werr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write metrics to %s: %v\n", metricsFile, werr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dagraph",
	Short: "dagraph - decision graph operator tool",
	Long: `dagraph talks to the decision graph through the same client layer the
API uses. The backend is chosen by the environment: a local Gremlin Server
for "local", Azure Cosmos DB for dev, test, staging and production.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = logrus.DebugLevel.String()
		}
		logger, err = logging.New(logging.Config{
			Level:      level,
			OutputFile: cfg.Logging.File,
			JSONFormat: cfg.Logging.JSON,
			AddSource:  verbose,
		})
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"environment": cfg.Environment,
			"version":     Version,
		}).Debug("configuration loaded")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .dagraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write query metrics in Prometheus text format to this file on exit")

	rootCmd.SetVersionTemplate(`dagraph {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(vertexCmd)
	rootCmd.AddCommand(edgeCmd)
	rootCmd.AddCommand(configCmd)
}
