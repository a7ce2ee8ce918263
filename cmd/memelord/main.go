// Package main implements the memelord CLI: a thin front end over
// internal/store exposing the same operations a tool-protocol server or a
// lifecycle hook would call.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"memelord/internal/config"
	"memelord/internal/logging"
)

var (
	configPath string
	sessionID  string
	verbose    bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "memelord",
	Short: "memelord - per-project persistent memory for coding agents",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		if err := logging.Initialize(cfg.DataDir); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}

		if sessionID == "" {
			sessionID = os.Getenv("MEMELORD_SESSION_ID")
		}
		if sessionID == "" {
			// No session supplied by the caller or the environment: this
			// invocation gets its own opaque session id, same as a fresh
			// interactive CLI session would under the tool-protocol surface.
			sessionID = uuid.NewString()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a memelord config YAML file")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "session id to attach tasks to (default: $MEMELORD_SESSION_ID or a new random uuid)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(startTaskCmd, reportCmd, endTaskCmd, contradictCmd, statusCmd, purgeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
