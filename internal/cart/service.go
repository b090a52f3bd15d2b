package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/internal/catalog"
	pkgerrors "github.com/xfinds/xfinds-backend/pkg/errors"
	"github.com/xfinds/xfinds-backend/pkg/logger"
	"github.com/xfinds/xfinds-backend/pkg/redis"
)

// DefaultMaxItems caps distinct lines per cart.
const DefaultMaxItems = 50

// Optimizer proposes a cheaper agent assignment for a cart.
type Optimizer interface {
	Optimize(items []Item, agents []catalog.Agent, products []catalog.Product) OptimizationResult
}

type catalogReader interface {
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
	Agents(ctx context.Context) ([]catalog.Agent, error)
	ProductByID(ctx context.Context, id string) (*catalog.Product, error)
}

// Service exposes the cart operations behind the storefront's cart page.
type Service interface {
	Get(ctx context.Context, sessionID string) (Summary, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (Summary, error)
	RemoveItem(ctx context.Context, sessionID, offerID string) (Summary, error)
	Clear(ctx context.Context, sessionID string) error
	SwitchAgent(ctx context.Context, sessionID, offerID, agentID string) (Summary, error)
	PreviewOptimization(ctx context.Context, sessionID string) (OptimizationResult, error)
	ApplyOptimization(ctx context.Context, sessionID string) (ApplyResult, error)
	Restore(ctx context.Context, sessionID string, items []Item) (Summary, error)
	Checkout(ctx context.Context, sessionID string) ([]CheckoutGroup, error)
}

// Options tunes the cart service.
type Options struct {
	MaxItems       int
	TrackingSource string
}

type service struct {
	store     Store
	catalog   catalogReader
	optimizer Optimizer
	logg      *logger.Logger
	opts      Options
}

// NewService builds a cart service backed by the provided stack.
func NewService(store Store, cat catalogReader, optimizer Optimizer, logg *logger.Logger, opts Options) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if optimizer == nil {
		return nil, fmt.Errorf("optimizer required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.TrackingSource == "" {
		opts.TrackingSource = catalog.DefaultTrackingSource
	}
	return &service{store: store, catalog: cat, optimizer: optimizer, logg: logg, opts: opts}, nil
}

// AddItemInput identifies the product, agent offer and variant being added.
type AddItemInput struct {
	ProductID string
	AgentID   string
	SKU       SKUSelection
	Quantity  int
}

// ApplyResult reports an applied optimization together with the cart as it was before,
// so the caller can offer an undo through Restore.
type ApplyResult struct {
	Result   OptimizationResult `json:"result"`
	Cart     Summary            `json:"cart"`
	Previous []Item             `json:"previous"`
}

// CheckoutLink is an outbound deep link for one cart line.
type CheckoutLink struct {
	OfferID   string `json:"offerId"`
	ProductID string `json:"productId"`
	URL       string `json:"url"`
}

// CheckoutGroup bundles the redirect links for one agent.
type CheckoutGroup struct {
	AgentID   string          `json:"agentId"`
	AgentName string          `json:"agentName"`
	Total     decimal.Decimal `json:"total"`
	Links     []CheckoutLink  `json:"links"`
}

func (s *service) Get(ctx context.Context, sessionID string) (Summary, error) {
	if err := requireSession(sessionID); err != nil {
		return Summary{}, err
	}
	items, err := s.store.Items(ctx, sessionID)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.summarize(ctx, items)
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (Summary, error) {
	if err := requireSession(sessionID); err != nil {
		return Summary{}, err
	}
	input.ProductID = strings.TrimSpace(input.ProductID)
	input.AgentID = strings.TrimSpace(input.AgentID)
	if input.ProductID == "" || input.AgentID == "" {
		return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "productId and agentId are required")
	}
	if input.Quantity < 0 {
		return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	product, err := s.catalog.ProductByID(ctx, input.ProductID)
	if err != nil {
		return Summary{}, err
	}
	offer, ok := product.OfferFor(input.AgentID)
	if !ok {
		return Summary{}, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found for agent")
	}
	if !offer.WellFormed() {
		return Summary{}, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is missing price information")
	}
	sku, err := ResolveSKU(*product, input.SKU)
	if err != nil {
		return Summary{}, err
	}

	item := Item{
		ProductID: product.ID,
		OfferID:   OfferID(product.ID, offer.AgentID, sku),
		AgentID:   offer.AgentID,
		Price:     offer.Price.Decimal,
		ShipFee:   offer.ShipFee.Decimal,
		Link:      offer.Link,
		SKU:       sku,
		Quantity:  input.Quantity,
	}

	current, err := s.store.Items(ctx, sessionID)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(current) >= s.opts.MaxItems && !containsLine(current, item.LineKey()) {
		return Summary{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is full").
			WithDetails(map[string]any{"maxItems": s.opts.MaxItems})
	}

	items, err := s.store.Add(ctx, sessionID, item)
	if err != nil {
		return Summary{}, storeError(err, "add cart item")
	}
	return s.summarize(ctx, items)
}

func (s *service) RemoveItem(ctx context.Context, sessionID, offerID string) (Summary, error) {
	if err := requireSession(sessionID); err != nil {
		return Summary{}, err
	}
	items, err := s.store.Remove(ctx, sessionID, offerID)
	if err != nil {
		return Summary{}, storeError(err, "remove cart item")
	}
	return s.summarize(ctx, items)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return storeError(err, "clear cart")
	}
	return nil
}

func (s *service) SwitchAgent(ctx context.Context, sessionID, offerID, agentID string) (Summary, error) {
	if err := requireSession(sessionID); err != nil {
		return Summary{}, err
	}
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "agentId is required")
	}

	items, err := s.store.Items(ctx, sessionID)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	var line *Item
	for i := range items {
		if items[i].OfferID == offerID {
			line = &items[i]
			break
		}
	}
	if line == nil {
		return Summary{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	product, err := s.catalog.ProductByID(ctx, line.ProductID)
	if err != nil {
		return Summary{}, err
	}
	offer, ok := product.OfferFor(agentID)
	if !ok {
		return Summary{}, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found for agent")
	}
	if !offer.WellFormed() {
		return Summary{}, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is missing price information")
	}

	if _, err := s.store.UpdateItemAgent(ctx, sessionID, offerID, offer.AgentID, offer.Price.Decimal, offer.ShipFee.Decimal, offer.Link); err != nil {
		return Summary{}, storeError(err, "switch agent")
	}
	return s.Get(ctx, sessionID)
}

func (s *service) PreviewOptimization(ctx context.Context, sessionID string) (OptimizationResult, error) {
	if err := requireSession(sessionID); err != nil {
		return OptimizationResult{}, err
	}
	items, err := s.store.Items(ctx, sessionID)
	if err != nil {
		return OptimizationResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.optimize(ctx, items)
}

func (s *service) ApplyOptimization(ctx context.Context, sessionID string) (ApplyResult, error) {
	if err := requireSession(sessionID); err != nil {
		return ApplyResult{}, err
	}
	previous, err := s.store.Items(ctx, sessionID)
	if err != nil {
		return ApplyResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	result, err := s.optimize(ctx, previous)
	if err != nil {
		return ApplyResult{}, err
	}

	// Optimized lines line up with the cart they were computed from.
	for i, item := range result.OptimizedItems {
		if i >= len(previous) || item.AgentID == previous[i].AgentID {
			continue
		}
		offerID := previous[i].OfferID
		_, err := s.store.UpdateItemAgent(ctx, sessionID, offerID, item.AgentID, item.Price, item.ShipFee, item.Link)
		if errors.Is(err, ErrItemNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "offer_id", offerID), "optimized line removed before apply")
			continue
		}
		if err != nil {
			return ApplyResult{}, storeError(err, "apply optimization")
		}
	}

	summary, err := s.Get(ctx, sessionID)
	if err != nil {
		return ApplyResult{}, err
	}
	return ApplyResult{Result: result, Cart: summary, Previous: previous}, nil
}

func (s *service) Restore(ctx context.Context, sessionID string, items []Item) (Summary, error) {
	if err := requireSession(sessionID); err != nil {
		return Summary{}, err
	}
	if len(items) > s.opts.MaxItems {
		return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "too many cart items").
			WithDetails(map[string]any{"maxItems": s.opts.MaxItems})
	}
	for i, it := range items {
		if it.OfferID == "" || it.ProductID == "" || it.AgentID == "" {
			return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "cart item is incomplete").
				WithDetails(map[string]any{"index": i})
		}
		if it.Price.IsNegative() || it.ShipFee.IsNegative() {
			return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "cart item amounts must not be negative").
				WithDetails(map[string]any{"index": i})
		}
	}
	canonical := CloneItems(items)
	for i := range canonical {
		canonical[i].OfferID = canonical[i].LineKey()
	}
	restored, err := s.store.Replace(ctx, sessionID, canonical)
	if err != nil {
		return Summary{}, storeError(err, "restore cart")
	}
	return s.summarize(ctx, restored)
}

func (s *service) Checkout(ctx context.Context, sessionID string) ([]CheckoutGroup, error) {
	summary, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	out := make([]CheckoutGroup, 0, len(summary.Groups))
	for _, g := range summary.Groups {
		group := CheckoutGroup{
			AgentID:   g.AgentID,
			AgentName: g.AgentID,
			Total:     g.Total,
			Links:     make([]CheckoutLink, 0, len(g.Items)),
		}
		if g.Agent != nil {
			group.AgentName = g.Agent.Name
		}
		for _, it := range g.Items {
			group.Links = append(group.Links, CheckoutLink{
				OfferID:   it.OfferID,
				ProductID: it.ProductID,
				URL:       catalog.TrackingURL(g.Agent, it.Link, s.opts.TrackingSource),
			})
		}
		out = append(out, group)
	}
	return out, nil
}

func (s *service) optimize(ctx context.Context, items []Item) (OptimizationResult, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return OptimizationResult{}, err
	}
	result := s.optimizer.Optimize(items, snap.Agents, snap.Products)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"strategy": string(result.Strategy),
		"items":    len(items),
		"changes":  len(result.Changes),
		"savings":  result.Savings.String(),
	}), "cart optimized")
	return result, nil
}

func (s *service) summarize(ctx context.Context, items []Item) (Summary, error) {
	agents, err := s.catalog.Agents(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(items, agents), nil
}

// ResolveSKU checks a selection against the product's option axes and returns it in the
// product's option order. Every axis must be chosen with one of its listed values.
func ResolveSKU(product catalog.Product, selection SKUSelection) (SKUSelection, error) {
	chosen := selection.Map()
	if len(product.SKUOptions) == 0 {
		if len(chosen) > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no variants")
		}
		return nil, nil
	}

	var (
		missing []string
		invalid []string
	)
	out := make(SKUSelection, 0, len(product.SKUOptions))
	for _, opt := range product.SKUOptions {
		value, ok := chosen[opt.Name]
		if !ok || value == "" {
			missing = append(missing, opt.Name)
			continue
		}
		if !opt.HasValue(value) {
			invalid = append(invalid, opt.Name)
			continue
		}
		out = append(out, SKUChoice{Name: opt.Name, Value: value})
	}
	for name := range chosen {
		if _, ok := product.SKUOption(name); !ok {
			invalid = append(invalid, name)
		}
	}
	if len(missing) > 0 || len(invalid) > 0 {
		sort.Strings(invalid)
		details := map[string]any{}
		if len(missing) > 0 {
			details["missing"] = missing
		}
		if len(invalid) > 0 {
			details["invalid"] = invalid
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "select every product option").WithDetails(details)
	}
	return out, nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return nil
}

func containsLine(items []Item, key string) bool {
	for _, it := range items {
		if it.LineKey() == key {
			return true
		}
	}
	return false
}

func storeError(err error, action string) error {
	switch {
	case errors.Is(err, ErrItemNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	case errors.Is(err, redis.ErrUpdateConflict):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, action+": cart changed concurrently, retry")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
