package cron

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/xfinds/xfinds-backend/internal/catalog"
	"github.com/xfinds/xfinds-backend/pkg/logger"
)

const (
	CatalogWarmJobName = "catalog-warm"
	CatalogSyncJobName = "catalog-sync"
)

type catalogRefresher interface {
	Refresh(ctx context.Context) (catalog.Snapshot, error)
}

// NewCatalogWarmJob reloads the in-process catalog cache ahead of its TTL so requests
// never pay for an upstream read.
func NewCatalogWarmJob(logg *logger.Logger, cache catalogRefresher) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cache == nil {
		return nil, fmt.Errorf("catalog cache required")
	}
	return &catalogWarmJob{logg: logg, cache: cache}, nil
}

type catalogWarmJob struct {
	logg  *logger.Logger
	cache catalogRefresher
}

func (j *catalogWarmJob) Name() string { return CatalogWarmJobName }

func (j *catalogWarmJob) Run(ctx context.Context) error {
	snap, err := j.cache.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog cache: %w", err)
	}
	j.logg.Debug(j.logg.WithFields(ctx, map[string]any{
		"agents":   len(snap.Agents),
		"products": len(snap.Products),
	}), "catalog cache warmed")
	return nil
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cacheInvalidator interface {
	Invalidate()
}

type snapshotImporter interface {
	ImportSnapshot(ctx context.Context, snap catalog.Snapshot) (catalog.ImportSummary, error)
}

// CatalogSyncJobParams configure the file to database catalog sync.
type CatalogSyncJobParams struct {
	Logger *logger.Logger
	Source catalog.Provider
	DB     txRunner
	// Importer binds a repository to the sync transaction.
	Importer func(tx *gorm.DB) snapshotImporter
	// Strict aborts the sync when validation reports any issue.
	Strict bool
	// Cache, when set, is dropped after every committed import.
	Cache cacheInvalidator
}

// NewCatalogSyncJob copies the flat-file catalog into the SQL catalog in one transaction.
func NewCatalogSyncJob(params CatalogSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	importer := params.Importer
	if importer == nil {
		importer = func(tx *gorm.DB) snapshotImporter { return catalog.NewRepository(tx) }
	}
	return &catalogSyncJob{
		logg:     params.Logger,
		source:   params.Source,
		db:       params.DB,
		importer: importer,
		strict:   params.Strict,
		cache:    params.Cache,
	}, nil
}

type catalogSyncJob struct {
	logg     *logger.Logger
	source   catalog.Provider
	db       txRunner
	importer func(tx *gorm.DB) snapshotImporter
	strict   bool
	cache    cacheInvalidator
}

func (j *catalogSyncJob) Name() string { return CatalogSyncJobName }

func (j *catalogSyncJob) Run(ctx context.Context) error {
	snap, err := catalog.LoadSnapshot(ctx, j.source)
	if err != nil {
		return fmt.Errorf("load catalog source: %w", err)
	}

	if issues := catalog.Validate(snap); len(issues) > 0 {
		issueCtx := j.logg.WithFields(ctx, map[string]any{
			"issues": len(issues),
			"first":  issues[0].String(),
		})
		if j.strict {
			return fmt.Errorf("catalog has %d validation issues, first: %s", len(issues), issues[0])
		}
		j.logg.Warn(issueCtx, "catalog sync continuing despite validation issues")
	}

	var summary catalog.ImportSummary
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var importErr error
		summary, importErr = j.importer(tx).ImportSnapshot(ctx, snap)
		return importErr
	})
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	if j.cache != nil {
		j.cache.Invalidate()
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"agents":     summary.Agents,
		"categories": summary.Categories,
		"products":   summary.Products,
		"offers":     summary.Offers,
	}), "catalog synced")
	return nil
}
