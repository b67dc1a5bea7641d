package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/chatmon/internal/config"
	"github.com/corey/chatmon/internal/logger"
)

var (
	configFlag   string
	datasetFlag  string
	logLevelFlag string

	// settings is resolved once per invocation by the root pre-run hook.
	settings *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "chatmon",
	Short:         "chatmon: canned-answer help assistant for the Instanza app",
	Long:          "Answers free-text questions from a question/response dataset using exact, greeting, keyword and suggestion matching.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(projectRoot())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// loadSettings reads config, applies flag overrides and starts the logger.
func loadSettings(root string) error {
	cfg, err := config.Load(root, configFlag)
	if err != nil {
		return err
	}
	if datasetFlag != "" {
		cfg.Dataset = datasetFlag
		if !strings.Contains(datasetFlag, "://") {
			if abs, err := filepath.Abs(datasetFlag); err == nil {
				cfg.Dataset = abs
			}
		}
	}
	if logLevelFlag != "" {
		if !logger.ValidLevel(logLevelFlag) {
			return fmt.Errorf("--log-level %q is not one of debug, info, warn, error", logLevelFlag)
		}
		cfg.Log.Level = logLevelFlag
	}
	settings = cfg
	return logger.Initialize(cfg.Log.Level, cfg.Log.File)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default .chatmon/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&datasetFlag, "dataset", "", "dataset file or http(s) URL; bypasses the daemon")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(unansweredCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(configCmd)
}
