// Package cmd provides the storefront CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pupped/storefront/internal/config"
	pkglogger "github.com/pupped/storefront/pkg/logger"
)

var (
	// Loaded configuration and logger, set up before any subcommand runs
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "PUPPED storefront API server",
	Long: `storefront serves the PUPPED product catalog, history articles and
contact-to-inquire flow, plus the password-gated admin area.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, logCloser = pkglogger.New(pkglogger.Options{
			Level:      cfg.Server.LogLevel,
			File:       cfg.Server.LogFile,
			MaxSizeMB:  cfg.Server.LogMaxSizeMB,
			MaxBackups: cfg.Server.LogMaxBackups,
		})
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
