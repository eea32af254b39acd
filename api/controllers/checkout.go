package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/smartsales/api/responses"
	"github.com/angelmondragon/smartsales/internal/cart"
	"github.com/angelmondragon/smartsales/internal/checkout"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
)

// CheckoutCreate starts a payment session for the current cart contents. With
// ?redirect=true the client is sent straight to the payment page.
func CheckoutCreate(carts cart.Service, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		store, err := openCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Create(r.Context(), store.Snapshot().CheckoutItems())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if strings.EqualFold(r.URL.Query().Get("redirect"), "true") && session.URL != "" {
			http.Redirect(w, r, session.URL, http.StatusSeeOther)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// CheckoutVerify reports the payment outcome for ?session_id=. Failure is a
// verification state, so the response is always 200.
func CheckoutVerify(carts cart.Service, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var clearer checkout.CartClearer
		if store, err := openCart(r, carts); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cart unavailable during verification")
			}
		} else {
			clearer = store
		}

		responses.WriteSuccess(w, svc.Verify(r.Context(), r.URL.Query().Get("session_id"), clearer))
	}
}
