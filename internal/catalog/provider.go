package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Provider is the read-only catalog surface consumed by the storefront.
type Provider interface {
	Agents(ctx context.Context) ([]Agent, error)
	Categories(ctx context.Context) ([]Category, error)
	Products(ctx context.Context) ([]Product, error)
}

// LoadSnapshot reads the three catalog collections concurrently.
func LoadSnapshot(ctx context.Context, p Provider) (Snapshot, error) {
	if p == nil {
		return Snapshot{}, fmt.Errorf("catalog provider required")
	}

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		agents, err := p.Agents(gctx)
		if err != nil {
			return fmt.Errorf("load agents: %w", err)
		}
		snap.Agents = agents
		return nil
	})
	g.Go(func() error {
		categories, err := p.Categories(gctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		snap.Categories = categories
		return nil
	})
	g.Go(func() error {
		products, err := p.Products(gctx)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		snap.Products = products
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// StaticProvider serves a fixed snapshot. Used by tooling and tests.
type StaticProvider struct {
	Snapshot Snapshot
}

func (s StaticProvider) Agents(context.Context) ([]Agent, error) { return s.Snapshot.Agents, nil }

func (s StaticProvider) Categories(context.Context) ([]Category, error) {
	return s.Snapshot.Categories, nil
}

func (s StaticProvider) Products(context.Context) ([]Product, error) {
	return s.Snapshot.Products, nil
}
