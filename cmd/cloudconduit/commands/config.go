package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wwd1015/cloudconduit/internal/config"
	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
)

// starterConfig is written by `config init`.
const starterConfig = `# cloudconduit defaults. Values here are the lowest-priority tier:
# call-site overrides, environment variables, and the keychain all win.
#
# Credentials (passwords, tokens, secret keys) belong in the keychain:
#   cloudconduit credentials set snowflake_password

snowflake:
  account: your-account
  warehouse: COMPUTE_WH
  # database: ANALYTICS
  # schema: PUBLIC

databricks:
  server_hostname: adb-0000000000000000.0.azuredatabricks.net
  http_path: /sql/1.0/warehouses/your-warehouse-id
  # catalog: main
  # schema: default

s3:
  region_name: us-east-1
`

func NewConfigCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage the defaults document",
	}

	cmd.AddCommand(
		newConfigShowCommand(cfg),
		newConfigPushCommand(cfg),
		newConfigMappingsCommand(cfg),
		newConfigValidateCommand(cfg),
		newConfigInitCommand(cfg),
	)
	return cmd
}

func (c *Config) defaultsPath() string {
	if c.Path != "" {
		return c.Path
	}
	return config.DefaultPath()
}

func newConfigShowCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the defaults document, masking credential values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.defaultsPath()
			defaults := config.LoadDefaults(path, cfg.Logger)

			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			if len(defaults.Values) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(empty)")
				return nil
			}

			for _, service := range sortedKeys(defaults.Values) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", service)
				for _, key := range sortedKeys(defaults.Values[service]) {
					value := defaults.Values[service][key]
					if credentialKeys[key] {
						value = "[REDACTED]"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", key, value)
				}
			}
			return nil
		},
	}
}

func newConfigPushCommand(cfg *Config) *cobra.Command {
	var override bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Export defaults into the process environment",
		Long: `Export the non-credential defaults as environment variables.

Without --override only variables that are not already set are filled,
so repeated pushes are safe. Credentials are never exported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := config.PushToEnv(cfg.Path, override, cfg.Logger)
			if len(set) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to push")
				return nil
			}
			for _, envKey := range sortedKeys(set) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", envKey, set[envKey])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&override, "override", false, "Overwrite variables that are already set")
	return cmd
}

func newConfigMappingsCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mappings",
		Short: "Print the parameter to environment variable mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			mappings := config.EnvMappings()
			for _, service := range sortedKeys(mappings) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", service)
				for _, key := range sortedKeys(mappings[service]) {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %s\n", key, mappings[service][key])
				}
			}
			return nil
		},
	}
}

func newConfigValidateCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the defaults document against its schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.defaultsPath()
			if err := config.ValidateDefaults(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
			return nil
		},
	}
}

func newConfigInitCommand(cfg *Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter defaults document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.defaultsPath()
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return ccerrors.UserError{
					Message:    fmt.Sprintf("%s already exists", path),
					Suggestion: "Use --force to overwrite it",
				}
			}

			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return ccerrors.UserError{
						Message: fmt.Sprintf("cannot create %s", dir),
						Err:     err,
					}
				}
			}
			if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
				return ccerrors.UserError{
					Message: fmt.Sprintf("cannot write %s", path),
					Err:     err,
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
