package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xfinds/xfinds-backend/api/controllers"
	cartcontrollers "github.com/xfinds/xfinds-backend/api/controllers/cart"
	"github.com/xfinds/xfinds-backend/api/middleware"
	"github.com/xfinds/xfinds-backend/api/responses"
	"github.com/xfinds/xfinds-backend/internal/cart"
	"github.com/xfinds/xfinds-backend/internal/catalog"
	"github.com/xfinds/xfinds-backend/pkg/config"
	pkgerrors "github.com/xfinds/xfinds-backend/pkg/errors"
	"github.com/xfinds/xfinds-backend/pkg/logger"
)

// RateLimiter is the fixed-window counter behind the optimizer throttle, normally pkg/redis.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies bundles what the router wires into handlers. Nil optional fields disable
// the matching feature: no RateLimiter means no throttling, no Metrics means no /metrics.
type Dependencies struct {
	Catalog     catalog.Service
	Cart        cart.Service
	RateLimiter RateLimiter
	Metrics     http.Handler
	Readiness   []controllers.ReadinessCheck
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	optimizePolicy := middleware.NewRateLimitPolicy(
		"optimize",
		cfg.RateLimit.OptimizeWindow,
		cfg.RateLimit.OptimizeIPLimit,
		cfg.RateLimit.OptimizeSessionLimit,
	)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", controllers.ListAgents(deps.Catalog, logg))
			r.Get("/{agentId}", controllers.GetAgent(deps.Catalog, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(deps.Catalog, logg))
			r.Get("/featured", controllers.FeaturedCategories(deps.Catalog, logg))
			r.Get("/{categoryId}", controllers.GetCategory(deps.Catalog, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.SearchProducts(deps.Catalog, logg))
			r.Get("/featured", controllers.FeaturedProducts(deps.Catalog, cfg.Search.FeaturedSize, logg))
			r.Get("/{slug}", controllers.GetProduct(deps.Catalog, cfg.App.PublicSource, logg))
			r.Get("/{slug}/offers", controllers.ProductOffers(deps.Catalog, cfg.App.PublicSource, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(logg))

			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(deps.Cart, logg))
			r.Put("/items", cartcontrollers.CartRestore(deps.Cart, logg))
			r.Delete("/items/{offerId}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
			r.Patch("/items/{offerId}/agent", cartcontrollers.CartSwitchAgent(deps.Cart, logg))
			r.Get("/checkout", cartcontrollers.CartCheckout(deps.Cart, logg))

			r.Group(func(r chi.Router) {
				if deps.RateLimiter != nil {
					r.Use(middleware.RateLimit(optimizePolicy, deps.RateLimiter, logg))
				}
				r.Post("/optimize", cartcontrollers.CartOptimizePreview(deps.Cart, logg))
				r.Post("/optimize/apply", cartcontrollers.CartOptimizeApply(deps.Cart, logg))
			})
		})
	})

	return r
}
