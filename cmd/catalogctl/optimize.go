package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xfinds/xfinds-backend/internal/cart"
	"github.com/xfinds/xfinds-backend/internal/catalog"
	"github.com/xfinds/xfinds-backend/internal/optimizer"
)

func (a *app) optimizeCmd() *cobra.Command {
	var (
		items []string
		opts  optimizer.Options
	)
	cmd := &cobra.Command{
		Use:   "optimize --item <product>:<agent>[:qty] ...",
		Short: "Propose the cheapest agent assignment for an ad-hoc cart",
		Example: `  catalogctl optimize --item retro-runner:cnfans --item trail-shell:cnfans:2
  catalogctl optimize --item p-field-tote:mulebuy --brute-force-limit -1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			lines := make([]cart.Item, 0, len(items))
			for _, raw := range items {
				line, err := parseItem(snap, raw)
				if err != nil {
					return err
				}
				lines = append(lines, line)
			}
			result := optimizer.New(opts, nil).Optimize(lines, snap.Agents, snap.Products)
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&items, "item", nil, "cart line as product:agent[:quantity]; product is an id or slug")
	f.IntVar(&opts.BruteForceLimit, "brute-force-limit", optimizer.DefaultBruteForceLimit, "largest cart searched exhaustively; negative forces greedy")
	f.IntVar(&opts.MaxCombinations, "max-combinations", optimizer.DefaultMaxCombinations, "exhaustive search budget")
	f.BoolVar(&opts.InStockOnly, "in-stock-only", false, "ignore out-of-stock offers")
	return cmd
}

// parseItem resolves product:agent[:qty] into a cart line priced from the catalog.
func parseItem(snap catalog.Snapshot, raw string) (cart.Item, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return cart.Item{}, fmt.Errorf("invalid --item %q, want product:agent[:qty]", raw)
	}
	quantity := 1
	if len(parts) == 3 {
		q, err := strconv.Atoi(parts[2])
		if err != nil || q < 1 {
			return cart.Item{}, fmt.Errorf("invalid quantity in --item %q", raw)
		}
		quantity = q
	}

	product, err := findProduct(snap, parts[0])
	if err != nil {
		return cart.Item{}, err
	}
	offer, ok := product.OfferFor(parts[1])
	if !ok || !offer.WellFormed() {
		return cart.Item{}, fmt.Errorf("agent %q has no usable offer for %s", parts[1], product.ID)
	}
	return cart.Item{
		ProductID: product.ID,
		OfferID:   cart.OfferID(product.ID, offer.AgentID, nil),
		AgentID:   offer.AgentID,
		Price:     offer.Price.Decimal,
		ShipFee:   offer.ShipFee.Decimal,
		Link:      offer.Link,
		Quantity:  quantity,
	}, nil
}
