package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the available job roles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, log, roles, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		out := cmd.OutOrStdout()
		for _, r := range roles.List() {
			fmt.Fprintf(out, "%-32s %s\n", r.ID, r.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
