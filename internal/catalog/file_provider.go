package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	AgentsFile     = "agents.json"
	CategoriesFile = "categories.json"
	ProductsFile   = "products.json"
)

// FileProvider reads the flat-file catalog from a data directory on every call.
// Wrap it in a CachedProvider for serving.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) (*FileProvider, error) {
	if dir == "" {
		return nil, fmt.Errorf("catalog data dir required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path %q is not a directory", dir)
	}
	return &FileProvider{dir: dir}, nil
}

func (p *FileProvider) Agents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	if err := p.read(ctx, AgentsFile, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (p *FileProvider) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := p.read(ctx, CategoriesFile, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (p *FileProvider) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := p.read(ctx, ProductsFile, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (p *FileProvider) read(ctx context.Context, name string, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(p.dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// WriteSnapshot persists a snapshot as the three catalog files, pretty printed.
func WriteSnapshot(dir string, snap Snapshot) error {
	files := map[string]any{
		AgentsFile:     snap.Agents,
		CategoriesFile: snap.Categories,
		ProductsFile:   snap.Products,
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", dir, err)
	}
	for name, payload := range files {
		buf, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), buf, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
