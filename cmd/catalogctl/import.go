package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/xfinds/xfinds-backend/internal/catalog"
	"github.com/xfinds/xfinds-backend/pkg/config"
	"github.com/xfinds/xfinds-backend/pkg/db"
	"github.com/xfinds/xfinds-backend/pkg/migrate"
)

func (a *app) importCmd() *cobra.Command {
	var (
		runMigrations bool
		allowIssues   bool
		dryRun        bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert the file catalog into the configured SQL database",
		Long: `Reads the catalog files, validates them and upserts every agent, category and
product in one transaction. Offers of imported products are replaced wholesale.

Database settings come from the XFINDS_DB_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			snap, err := a.snapshot(ctx)
			if err != nil {
				return err
			}
			if issues := catalog.Validate(snap); len(issues) > 0 {
				if !allowIssues {
					return fmt.Errorf("catalog has %d issues, first: %s (use --allow-issues to import anyway)", len(issues), issues[0])
				}
				a.logg.Warn(a.logg.WithField(ctx, "issues", len(issues)), "importing catalog with validation issues")
			}
			if dryRun {
				return writeJSON(cmd.OutOrStdout(), catalog.ImportSummary{
					Agents:     len(snap.Agents),
					Categories: len(snap.Categories),
					Products:   len(snap.Products),
					Offers:     countOffers(snap),
				})
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.DB.EnsureDSN(); err != nil {
				return err
			}
			client, err := db.New(ctx, cfg.DB, a.logg)
			if err != nil {
				return err
			}
			defer client.Close()

			if runMigrations {
				sqlDB, err := client.SQL()
				if err != nil {
					return fmt.Errorf("extracting sql.DB: %w", err)
				}
				if err := migrate.Run(ctx, sqlDB, migrate.Options{Driver: cfg.DB.Driver, Logger: a.logg}, "up"); err != nil {
					return err
				}
			}

			var summary catalog.ImportSummary
			err = client.WithTx(ctx, func(tx *gorm.DB) error {
				var importErr error
				summary, importErr = catalog.NewRepository(tx).ImportSnapshot(ctx, snap)
				return importErr
			})
			if err != nil {
				return fmt.Errorf("import catalog: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&runMigrations, "migrate", false, "apply pending migrations before importing")
	f.BoolVar(&allowIssues, "allow-issues", false, "import even when validation reports issues")
	f.BoolVar(&dryRun, "dry-run", false, "validate and report counts without touching the database")
	return cmd
}

func countOffers(snap catalog.Snapshot) int {
	n := 0
	for _, p := range snap.Products {
		n += len(p.Offers)
	}
	return n
}
