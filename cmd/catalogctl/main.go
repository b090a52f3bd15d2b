// Command catalogctl inspects, validates and imports the flat-file catalog and runs the
// ranking and cart optimization engines against it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xfinds/xfinds-backend/internal/catalog"
	"github.com/xfinds/xfinds-backend/pkg/config"
	"github.com/xfinds/xfinds-backend/pkg/env"
	"github.com/xfinds/xfinds-backend/pkg/logger"
)

type app struct {
	dataDir  string
	logLevel string
	logg     *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Inspect, validate and import the xfinds catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.logg = logger.New(logger.Options{
				ServiceName: "catalogctl",
				Level:       logger.ParseLevel(a.logLevel),
				Format:      "console",
				Output:      cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.dataDir, "data-dir", env.Get(config.EnvCatalogDataDir, "data"), "directory holding agents.json, categories.json and products.json")
	f.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.validateCmd(),
		a.importCmd(),
		a.rankCmd(),
		a.optimizeCmd(),
	)
	return root
}

func (a *app) snapshot(ctx context.Context) (catalog.Snapshot, error) {
	provider, err := catalog.NewFileProvider(a.dataDir)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	return catalog.LoadSnapshot(ctx, provider)
}

func findProduct(snap catalog.Snapshot, ref string) (catalog.Product, error) {
	for _, p := range snap.Products {
		if p.ID == ref || p.Slug == ref {
			return p, nil
		}
	}
	return catalog.Product{}, fmt.Errorf("product %q not found", ref)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "catalogctl:", err)
		stop()
		os.Exit(1)
	}
}
