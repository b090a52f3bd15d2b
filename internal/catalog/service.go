package catalog

import (
	"context"
	"strings"

	pkgerrors "github.com/xfinds/xfinds-backend/pkg/errors"
)

// Service exposes the read paths the storefront needs on top of a Provider.
type Service interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Agents(ctx context.Context) ([]Agent, error)
	Agent(ctx context.Context, id string) (*Agent, error)
	Categories(ctx context.Context) ([]Category, error)
	Category(ctx context.Context, id string) (*Category, error)
	CategoriesWithProducts(ctx context.Context) ([]CategorySummary, error)
	ProductBySlug(ctx context.Context, slug string) (*Product, error)
	ProductByID(ctx context.Context, id string) (*Product, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	ByCategory(ctx context.Context, categoryID string) ([]Product, error)
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type service struct {
	provider Provider
	pageSize int
}

// NewService wires the catalog read paths. pageSize <= 0 uses DefaultPageSize.
func NewService(provider Provider, pageSize int) (Service, error) {
	if provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog provider required")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &service{provider: provider, pageSize: pageSize}, nil
}

func (s *service) Snapshot(ctx context.Context) (Snapshot, error) {
	snap, err := LoadSnapshot(ctx, s.provider)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	return snap, nil
}

func (s *service) Agents(ctx context.Context) ([]Agent, error) {
	agents, err := s.provider.Agents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agents")
	}
	return agents, nil
}

func (s *service) Agent(ctx context.Context, id string) (*Agent, error) {
	agents, err := s.Agents(ctx)
	if err != nil {
		return nil, err
	}
	for i := range agents {
		if agents[i].ID == id {
			agent := agents[i]
			return &agent, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
}

func (s *service) Categories(ctx context.Context) ([]Category, error) {
	categories, err := s.provider.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	return categories, nil
}

func (s *service) Category(ctx context.Context, id string) (*Category, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id || categories[i].Slug == id {
			category := categories[i]
			return &category, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

func (s *service) CategoriesWithProducts(ctx context.Context) ([]CategorySummary, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	return CategoriesWithProducts(categories, products), nil
}

func (s *service) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	return s.findProduct(ctx, func(p Product) bool { return p.Slug == slug })
}

func (s *service) ProductByID(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.findProduct(ctx, func(p Product) bool { return p.ID == id })
}

func (s *service) Featured(ctx context.Context, limit int) ([]Product, error) {
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	return Featured(products, limit), nil
}

func (s *service) ByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	return ByCategory(products, categoryID), nil
}

func (s *service) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	if params.MinPrice.Valid && params.MaxPrice.Valid && params.MinPrice.Decimal.GreaterThan(params.MaxPrice.Decimal) {
		return SearchResult{}, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	products, err := s.products(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	if params.PageSize <= 0 {
		params.PageSize = s.pageSize
	}
	return Search(products, params), nil
}

func (s *service) products(ctx context.Context) ([]Product, error) {
	products, err := s.provider.Products(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	return products, nil
}

func (s *service) findProduct(ctx context.Context, match func(Product) bool) (*Product, error) {
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if match(products[i]) {
			product := products[i]
			return &product, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
