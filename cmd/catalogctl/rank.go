package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xfinds/xfinds-backend/internal/ranking"
)

func (a *app) rankCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rank <product-id-or-slug>",
		Short: "Rank a product's offers the way the storefront shows them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			product, err := findProduct(snap, args[0])
			if err != nil {
				return err
			}
			ranked := ranking.RankOffers(product.Offers, snap.Agents)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ranked)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tAGENT\tPRICE\tSHIP\tLANDED\tDAYS\tSCORE\tREASON")
			for _, r := range ranked {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					r.Rank, r.AgentID, nullable(r.Price.Valid, r.Price.Decimal.StringFixed(2)),
					nullable(r.ShipFee.Valid, r.ShipFee.Decimal.StringFixed(2)),
					nullable(r.LandedCost.Valid, r.LandedCost.Decimal.StringFixed(2)),
					r.EstDays, r.Score, r.Reason)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if best, ok := ranking.Best(ranked); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "\nbest: %s (%s)\n", best.AgentID, best.Reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print ranked offers as JSON")
	return cmd
}

func nullable(valid bool, value string) string {
	if !valid {
		return "-"
	}
	return value
}
