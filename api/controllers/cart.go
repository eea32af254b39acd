package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/smartsales/api/middleware"
	"github.com/angelmondragon/smartsales/api/responses"
	"github.com/angelmondragon/smartsales/api/validators"
	"github.com/angelmondragon/smartsales/internal/cart"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

type productGetter interface {
	GetProduct(ctx context.Context, id int64) (smartsales.Product, error)
}

type cartLineResponse struct {
	Product  smartsales.Product `json:"product"`
	Quantity int                `json:"quantity"`
	Subtotal string             `json:"subtotal"`
}

type cartResponse struct {
	CartID     string             `json:"cart_id"`
	Lines      []cartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items"`
	TotalPrice string             `json:"total_price"`
}

func newCartResponse(store *cart.Store) cartResponse {
	snapshot := store.Snapshot()
	lines := make([]cartLineResponse, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		lines = append(lines, cartLineResponse{
			Product:  line.Product,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal().StringFixed(2),
		})
	}
	return cartResponse{
		CartID:     store.Key(),
		Lines:      lines,
		TotalItems: snapshot.TotalItems(),
		TotalPrice: snapshot.TotalPrice().StringFixed(2),
	}
}

func openCart(r *http.Request, svc cart.Service) (*cart.Store, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
	}
	return svc.Open(r.Context(), middleware.CartIDFromContext(r.Context()))
}

// CartGet returns the visitor cart with its totals.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := openCart(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// CartAddItem snapshots the product from the catalog and adds one unit of it.
func CartAddItem(svc cart.Service, products productGetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := openCart(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if product.Stock <= 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock").WithDetails(map[string]any{"product_id": product.ID}))
			return
		}
		if lineQuantity(store.Snapshot(), product.ID) >= product.Stock {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeConflict, "quantity exceeds available stock").WithDetails(map[string]any{
					"product_id": product.ID,
					"stock":      product.Stock,
				}))
			return
		}

		if err := store.AddToCart(r.Context(), product); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartUpdateItem sets a line quantity; zero or less removes the line and
// quantities above the snapshot stock are clamped to it.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := openCart(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := clampToStock(store.Snapshot(), productID, *req.Quantity)
		if err := store.UpdateQuantity(r.Context(), productID, quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

func lineQuantity(snapshot cart.Cart, productID int64) int {
	for _, line := range snapshot.Lines {
		if line.Product.ID == productID {
			return line.Quantity
		}
	}
	return 0
}

func clampToStock(snapshot cart.Cart, productID int64, quantity int) int {
	for _, line := range snapshot.Lines {
		if line.Product.ID != productID {
			continue
		}
		if stock := line.Product.Stock; stock > 0 && quantity > stock {
			return stock
		}
		break
	}
	return quantity
}

// CartRemoveItem drops a line; removing an absent product is not an error.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := openCart(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.RemoveFromCart(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := openCart(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.ClearCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store))
	}
}
