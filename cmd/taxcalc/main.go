package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgehrsitz/taxcalc/internal/app"
	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/rgehrsitz/taxcalc/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Populated by rootCmd.PersistentPreRunE
var (
	cfg         *config.Config
	application *app.App
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxcalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "taxcalc",
	Short: "Tax calculation engine CLI",
	Long: `Computes federal, state and sales tax for a tax form, validates deductions,
builds quarterly estimated tax schedules and serves the same operations over HTTP.

Configuration is read from taxcalc.yaml (., ./config, ~/.taxcalc) and TAXCALC_*
environment variables. A .env file in the working directory is loaded first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return bootstrap(cmd)
	},
}

// bootstrap loads configuration and builds the engine
func bootstrap(cmd *cobra.Command) error {
	_ = godotenv.Load()

	var err error
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	application, err = app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./taxcalc.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output for detailed calculations")

	rootCmd.AddCommand(versionCmd())
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if application != nil {
		_ = application.Logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logger returns the application logger or a no-op one before bootstrap
func logger() *zap.Logger {
	if application == nil {
		return zap.NewNop()
	}
	return application.Logger
}
