package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
)

func NewCredentialsCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Manage credentials in the OS keychain",
		Long: `Store, inspect, and remove credentials in the OS keychain.

Keys follow the environment variable names, lower-cased:
  snowflake_password, databricks_access_token, aws_secret_access_key`,
	}

	cmd.AddCommand(
		newCredentialsSetCommand(cfg),
		newCredentialsGetCommand(cfg),
		newCredentialsDeleteCommand(cfg),
	)
	return cmd
}

func newCredentialsSetCommand(cfg *Config) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if value == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Value for %s: ", key)
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return ccerrors.UserError{
						Message:    "no value provided",
						Suggestion: "Pass --value or pipe the value on stdin",
					}
				}
				value = strings.TrimRight(line, "\r\n")
			}
			if value == "" {
				return ccerrors.UserError{
					Message:    "refusing to store an empty credential",
					Suggestion: "An empty keychain value reads as absent; use delete instead",
				}
			}

			if err := cfg.Resolver().SetCredential(key, value); err != nil {
				return err
			}
			cfg.Logger.Info("stored %s", strings.ToLower(key))
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Credential value (prompts when omitted)")
	return cmd
}

func newCredentialsGetCommand(cfg *Config) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Look up a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			store := cfg.Resolver().Keychain()
			value, ok := store.Get(key)
			if !ok {
				return ccerrors.UserError{
					Message:    fmt.Sprintf("no credential stored for %s", strings.ToLower(key)),
					Suggestion: fmt.Sprintf("Store one with: cloudconduit credentials set %s", strings.ToLower(key)),
				}
			}

			if reveal {
				fmt.Fprintln(cmd.OutOrStdout(), value)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: [REDACTED] (%d chars, --reveal to print)\n",
					strings.ToLower(key), len(value))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the credential value")
	return cmd
}

func newCredentialsDeleteCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Resolver().DeleteCredential(args[0]); err != nil {
				return err
			}
			cfg.Logger.Info("deleted %s", strings.ToLower(args[0]))
			return nil
		},
	}
}
