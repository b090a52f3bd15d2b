package cart

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/xfinds/xfinds-backend/api/controllers/cart/dto"
	"github.com/xfinds/xfinds-backend/api/middleware"
	"github.com/xfinds/xfinds-backend/api/responses"
	"github.com/xfinds/xfinds-backend/api/validators"
	cartsvc "github.com/xfinds/xfinds-backend/internal/cart"
	pkgerrors "github.com/xfinds/xfinds-backend/pkg/errors"
	"github.com/xfinds/xfinds-backend/pkg/logger"
)

// CartFetch returns the session's cart with per-agent groups and the grand total.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		summary, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.NewCart(sessionID, summary))
	}
}

// CartAddItem snapshots the chosen offer into the cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.AddItem(r.Context(), sessionID, payload.ToInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cartdto.NewCart(sessionID, summary))
	}
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		summary, err := svc.RemoveItem(r.Context(), sessionID, offerIDParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.NewCart(sessionID, summary))
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.NewCart(sessionID, cartsvc.Summarize(nil, nil)))
	}
}

// CartSwitchAgent moves one line to another agent's offer for the same product.
func CartSwitchAgent(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		var payload cartdto.SwitchAgentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.SwitchAgent(r.Context(), sessionID, offerIDParam(r), payload.AgentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.NewCart(sessionID, summary))
	}
}

// CartOptimizePreview reports the cheapest assignment without touching the cart.
func CartOptimizePreview(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		result, err := svc.PreviewOptimization(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartOptimizeApply(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		applied, err := svc.ApplyOptimization(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.NewAppliedOptimization(sessionID, applied))
	}
}

// CartRestore replaces the cart with a client-held snapshot.
func CartRestore(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		var payload cartdto.RestoreRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Restore(r.Context(), sessionID, payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.NewCart(sessionID, summary))
	}
}

// CartCheckout returns the tracked agent links for each group in the cart.
func CartCheckout(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := sessionOrFail(w, r, svc, logg)
		if !ok {
			return
		}
		groups, err := svc.Checkout(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.Checkout{Groups: groups})
	}
}

func sessionOrFail(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger) (string, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return "", false
	}
	sessionID := middleware.CartSessionFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
		return "", false
	}
	return sessionID, true
}

// offerIDParam decodes the offer id path segment. Offer ids embed the SKU as JSON, so
// clients send them percent-encoded.
func offerIDParam(r *http.Request) string {
	raw := chi.URLParam(r, "offerId")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
