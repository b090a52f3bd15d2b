package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xfinds/xfinds-backend/internal/catalog"
)

func (a *app) validateCmd() *cobra.Command {
	var (
		asJSON      bool
		allowIssues bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the catalog files for broken references and malformed offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			issues := catalog.Validate(snap)
			out := cmd.OutOrStdout()

			if asJSON {
				if issues == nil {
					issues = []catalog.Issue{}
				}
				if err := writeJSON(out, issues); err != nil {
					return err
				}
			} else {
				for _, issue := range issues {
					fmt.Fprintln(out, issue.String())
				}
				fmt.Fprintf(out, "%d agents, %d categories, %d products, %d issues\n",
					len(snap.Agents), len(snap.Categories), len(snap.Products), len(issues))
			}

			if len(issues) > 0 && !allowIssues {
				return fmt.Errorf("catalog has %d issues", len(issues))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print issues as JSON")
	cmd.Flags().BoolVar(&allowIssues, "allow-issues", false, "exit zero even when issues are found")
	return cmd
}
