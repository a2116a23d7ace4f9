package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wwd1015/cloudconduit/cmd/cloudconduit/commands"
	"github.com/wwd1015/cloudconduit/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	cfg := &commands.Config{}

	rootCmd := &cobra.Command{
		Use:   "cloudconduit",
		Short: "Unified access to Snowflake, Databricks, and S3",
		Long: `cloudconduit resolves connection parameters from call-site overrides,
environment variables, the OS keychain, and a defaults file, and manages
the defaults file and keychain entries from the command line.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Defaults file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewConfigCommand(cfg),
		commands.NewCredentialsCommand(cfg),
		commands.NewWhoamiCommand(cfg),
	)

	return rootCmd.Execute()
}
