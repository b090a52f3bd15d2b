package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository serves the catalog from SQL tables and imports snapshots into them.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Agents(ctx context.Context) ([]Agent, error) {
	var rows []agentRecord
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	out := make([]Agent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAgent())
	}
	return out, nil
}

func (r *Repository) Categories(ctx context.Context) ([]Category, error) {
	var rows []categoryRecord
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCategory())
	}
	return out, nil
}

func (r *Repository) Products(ctx context.Context) ([]Product, error) {
	var rows []productRecord
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var offers []offerRecord
	if err := r.db.WithContext(ctx).Order("product_id ASC, position ASC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}

	byProduct := make(map[string][]offerRecord, len(rows))
	for _, o := range offers {
		byProduct[o.ProductID] = append(byProduct[o.ProductID], o)
	}

	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toProduct(byProduct[row.ID]))
	}
	return out, nil
}

// ImportSummary counts the rows written by ImportSnapshot.
type ImportSummary struct {
	Agents     int `json:"agents"`
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Offers     int `json:"offers"`
}

// ImportSnapshot upserts every entity of snap. Offers of imported products are replaced
// wholesale so removed listings disappear. The caller owns the transaction.
func (r *Repository) ImportSnapshot(ctx context.Context, snap Snapshot) (ImportSummary, error) {
	var summary ImportSummary
	db := r.db.WithContext(ctx)
	upsert := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}

	for i, a := range snap.Agents {
		rec := agentToRecord(a, i)
		if err := db.Clauses(upsert).Create(&rec).Error; err != nil {
			return summary, fmt.Errorf("upsert agent %s: %w", a.ID, err)
		}
		summary.Agents++
	}
	for i, c := range snap.Categories {
		rec := categoryToRecord(c, i)
		if err := db.Clauses(upsert).Create(&rec).Error; err != nil {
			return summary, fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
		summary.Categories++
	}
	for i, p := range snap.Products {
		rec, offers := productToRecords(p, i)
		if err := db.Clauses(upsert).Create(&rec).Error; err != nil {
			return summary, fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
		if err := db.Where("product_id = ?", p.ID).Delete(&offerRecord{}).Error; err != nil {
			return summary, fmt.Errorf("clear offers for %s: %w", p.ID, err)
		}
		if len(offers) > 0 {
			if err := db.Create(&offers).Error; err != nil {
				return summary, fmt.Errorf("insert offers for %s: %w", p.ID, err)
			}
		}
		summary.Products++
		summary.Offers += len(offers)
	}
	return summary, nil
}
