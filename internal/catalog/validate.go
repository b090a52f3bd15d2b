package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	structCheck  *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structCheck = validator.New(validator.WithRequiredStructEnabled())
	})
	return structCheck
}

// Issue is a single data problem found in a catalog snapshot.
type Issue struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail"`
}

func (i Issue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("%s %s: %s: %s", i.Entity, i.ID, i.Field, i.Detail)
	}
	return fmt.Sprintf("%s %s: %s", i.Entity, i.ID, i.Detail)
}

// Validate checks a snapshot for the assumptions the ranking and cart engines make:
// unique ids, one offer per agent per product, offers pointing at known agents and
// well-formed prices. Malformed offers are reported but still tolerated at runtime.
func Validate(snap Snapshot) []Issue {
	var issues []Issue
	v := structValidator()

	agents := make(map[string]struct{}, len(snap.Agents))
	for _, a := range snap.Agents {
		issues = append(issues, structIssues(v, "agent", a.ID, a)...)
		if _, dup := agents[a.ID]; dup {
			issues = append(issues, Issue{Entity: "agent", ID: a.ID, Detail: "duplicate agent id"})
		}
		agents[a.ID] = struct{}{}
	}

	categories := make(map[string]struct{}, len(snap.Categories))
	for _, c := range snap.Categories {
		issues = append(issues, structIssues(v, "category", c.ID, c)...)
		if _, dup := categories[c.ID]; dup {
			issues = append(issues, Issue{Entity: "category", ID: c.ID, Detail: "duplicate category id"})
		}
		categories[c.ID] = struct{}{}
	}

	productIDs := make(map[string]struct{}, len(snap.Products))
	slugs := make(map[string]struct{}, len(snap.Products))
	for _, p := range snap.Products {
		issues = append(issues, structIssues(v, "product", p.ID, p)...)
		if _, dup := productIDs[p.ID]; dup {
			issues = append(issues, Issue{Entity: "product", ID: p.ID, Detail: "duplicate product id"})
		}
		productIDs[p.ID] = struct{}{}
		if _, dup := slugs[p.Slug]; dup && p.Slug != "" {
			issues = append(issues, Issue{Entity: "product", ID: p.ID, Field: "slug", Detail: "duplicate slug " + p.Slug})
		}
		slugs[p.Slug] = struct{}{}

		if p.CategoryID != "" {
			if _, ok := categories[p.CategoryID]; !ok {
				issues = append(issues, Issue{Entity: "product", ID: p.ID, Field: "categoryId", Detail: "unknown category " + p.CategoryID})
			}
		}
		if p.PriceGuide.Min.GreaterThan(p.PriceGuide.Max) {
			issues = append(issues, Issue{Entity: "product", ID: p.ID, Field: "priceGuide", Detail: "min exceeds max"})
		}
		issues = append(issues, offerIssues(p, agents)...)
	}
	return issues
}

func offerIssues(p Product, agents map[string]struct{}) []Issue {
	var issues []Issue
	seen := make(map[string]struct{}, len(p.Offers))
	for i, offer := range p.Offers {
		field := fmt.Sprintf("offers[%d]", i)
		if _, dup := seen[offer.AgentID]; dup {
			issues = append(issues, Issue{Entity: "product", ID: p.ID, Field: field, Detail: "duplicate offer for agent " + offer.AgentID})
		}
		seen[offer.AgentID] = struct{}{}
		if _, ok := agents[offer.AgentID]; !ok {
			issues = append(issues, Issue{Entity: "product", ID: p.ID, Field: field, Detail: "unknown agent " + offer.AgentID})
		}
		if !offer.WellFormed() {
			issues = append(issues, Issue{Entity: "product", ID: p.ID, Field: field, Detail: "offer is missing a valid price or ship fee"})
		}
	}
	return issues
}

func structIssues(v *validator.Validate, entity, id string, value any) []Issue {
	err := v.Struct(value)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Entity: entity, ID: id, Detail: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Entity: entity,
			ID:     id,
			Field:  fe.Namespace(),
			Detail: fmt.Sprintf("failed %s", fe.Tag()),
		})
	}
	return issues
}
