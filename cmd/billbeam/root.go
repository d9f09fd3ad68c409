package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gana36/billbeam/internal/config"
	"github.com/gana36/billbeam/pkg/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "billbeam",
	Short: "Snap a receipt, assign the items, split the bill",
	Long: `billbeam serves the BillBeam web app: receipt capture through Gemini,
item assignment, and a per-person settlement with tax and tip spread proportionally.

Settings come from a .env file, the environment (PORT, DB_PATH, GEMINI_API_KEY, ...)
and flags, with flags taking precedence.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text or json)")

	rootCmd.AddCommand(serveCmd, extractCmd)
}

// loadConfig binds the command's flags to their config keys and loads the config.
// Flags are named like keys with dashes: --db-path sets db_path.
func loadConfig(cmd *cobra.Command, keys ...string) (*config.Config, error) {
	v := viper.New()
	for _, key := range append([]string{"log_level", "log_format"}, keys...) {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flagName(key))); err != nil {
			return nil, fmt.Errorf("failed to bind flag for %s: %w", key, err)
		}
	}
	cfg, err := config.Load(v, envFile)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.SetupWith(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
