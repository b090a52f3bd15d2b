package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xfinds/xfinds-backend/api/responses"
	"github.com/xfinds/xfinds-backend/api/validators"
	"github.com/xfinds/xfinds-backend/internal/catalog"
	"github.com/xfinds/xfinds-backend/internal/ranking"
	pkgerrors "github.com/xfinds/xfinds-backend/pkg/errors"
	"github.com/xfinds/xfinds-backend/pkg/logger"
	"github.com/xfinds/xfinds-backend/pkg/pagination"
)

const (
	maxQueryLength = 120
	maxIDLength    = 64
	maxPage        = 10000
)

// SearchProducts serves the storefront search page. Sorting falls back to relevance.
func SearchProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 0, 0, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), catalog.SearchParams{
			Query:      validators.ParseQueryString(r, "q", maxQueryLength),
			CategoryID: validators.ParseQueryString(r, "cat", maxIDLength),
			AgentID:    validators.ParseQueryString(r, "agent", maxIDLength),
			MinPrice:   minPrice,
			MaxPrice:   maxPrice,
			Sort:       catalog.ParseSortOrder(r.URL.Query().Get("sort")),
			Page:       page,
			PageSize:   pageSize,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func FeaturedProducts(svc catalog.Service, defaultLimit int, logg *logger.Logger) http.HandlerFunc {
	if defaultLimit <= 0 {
		defaultLimit = catalog.DefaultFeaturedLimit
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultLimit, 1, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.Featured(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nonNil(products))
	}
}

// offerView is a ranked offer enriched for display.
type offerView struct {
	ranking.RankedOffer
	Agent       *catalog.Agent `json:"agent"`
	TrackingURL string         `json:"trackingUrl"`
}

type productDetail struct {
	Product   catalog.Product   `json:"product"`
	Category  *catalog.Category `json:"category"`
	BestOffer *offerView        `json:"bestOffer"`
}

// GetProduct returns a product by slug with its category and best ranked offer.
func GetProduct(svc catalog.Service, trackingSource string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		product, err := svc.ProductBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offers, err := rankedOffers(r, svc, *product, trackingSource)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail := productDetail{Product: *product}
		if len(offers) > 0 {
			detail.BestOffer = &offers[0]
		}
		if product.CategoryID != "" {
			category, err := svc.Category(r.Context(), product.CategoryID)
			switch {
			case err == nil:
				detail.Category = category
			case !pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, detail)
	}
}

// ProductOffers returns every offer of a product, ranked best first.
func ProductOffers(svc catalog.Service, trackingSource string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		product, err := svc.ProductBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offers, err := rankedOffers(r, svc, *product, trackingSource)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers)
	}
}

func rankedOffers(r *http.Request, svc catalog.Service, product catalog.Product, trackingSource string) ([]offerView, error) {
	agents, err := svc.Agents(r.Context())
	if err != nil {
		return nil, err
	}
	index := catalog.IndexAgents(agents)
	ranked := ranking.RankOffers(product.Offers, agents)
	out := make([]offerView, 0, len(ranked))
	for _, offer := range ranked {
		agent := index.Lookup(offer.AgentID)
		out = append(out, offerView{
			RankedOffer: offer,
			Agent:       agent,
			TrackingURL: catalog.TrackingURL(agent, offer.Link, trackingSource),
		})
	}
	return out, nil
}
