package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wwd1015/cloudconduit/internal/sysinfo"
)

func NewWhoamiCommand(cfg *Config) *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity used for connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := sysinfo.Info()
			for _, key := range sortedKeys(info) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", key, info[key])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", "default_user_id", sysinfo.DefaultUserID(domain))
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", "keychain_account",
				sysinfo.KeychainAccount("cloudconduit", ""))
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Domain suffix for the derived user id")
	return cmd
}
