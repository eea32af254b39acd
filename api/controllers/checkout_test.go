package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/smartsales/internal/cart"
	"github.com/angelmondragon/smartsales/internal/checkout"
	"github.com/angelmondragon/smartsales/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

type stubCheckout struct {
	items   []smartsales.CheckoutItem
	session smartsales.CheckoutSession
	err     error
	clear   bool
	cleared bool
}

func (s *stubCheckout) Create(_ context.Context, items []smartsales.CheckoutItem) (smartsales.CheckoutSession, error) {
	s.items = items
	if len(items) == 0 {
		return smartsales.CheckoutSession{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return s.session, s.err
}

func (s *stubCheckout) Verify(ctx context.Context, sessionID string, c checkout.CartClearer) *checkout.Verification {
	v := &checkout.Verification{SessionID: sessionID, State: enums.VerificationStateSuccess}
	if s.clear && c != nil {
		s.cleared = c.ClearCart(ctx) == nil
		v.CartCleared = s.cleared
	}
	return v
}

func seededCart(t *testing.T) cart.Service {
	t.Helper()
	svc := newCartService(t)
	add := CartAddItem(svc, stubProducts{1: testProduct(1, "19.99", 10)}, nil)
	for i := 0; i < 2; i++ {
		add.ServeHTTP(httptest.NewRecorder(), cartRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`, "cart-1", nil))
	}
	return svc
}

func TestCheckoutCreateUsesCartSnapshot(t *testing.T) {
	carts := seededCart(t)
	svc := &stubCheckout{session: smartsales.CheckoutSession{SessionID: "cs_1", URL: "https://pay.example/cs_1"}}

	resp := httptest.NewRecorder()
	CheckoutCreate(carts, svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/v1/checkout", "", "cart-1", nil))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(svc.items) != 1 || svc.items[0].ProductID != 1 || svc.items[0].Quantity != 2 {
		t.Fatalf("unexpected checkout items %+v", svc.items)
	}
	var envelope struct {
		Data smartsales.CheckoutSession `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.URL != "https://pay.example/cs_1" {
		t.Fatalf("unexpected url %q", envelope.Data.URL)
	}

	// the cart is never touched by checkout creation
	store, err := carts.Open(context.Background(), "cart-1")
	if err != nil || store.TotalItems() != 2 {
		t.Fatalf("cart changed by checkout: err=%v", err)
	}
}

func TestCheckoutCreateRedirects(t *testing.T) {
	svc := &stubCheckout{session: smartsales.CheckoutSession{SessionID: "cs_1", URL: "https://pay.example/cs_1"}}

	resp := httptest.NewRecorder()
	CheckoutCreate(seededCart(t), svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/v1/checkout?redirect=true", "", "cart-1", nil))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if resp.Header().Get("Location") != "https://pay.example/cs_1" {
		t.Fatalf("unexpected location %q", resp.Header().Get("Location"))
	}
}

func TestCheckoutCreateEmptyCart(t *testing.T) {
	resp := httptest.NewRecorder()
	CheckoutCreate(newCartService(t), &stubCheckout{}, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/v1/checkout", "", "cart-empty", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutCreateSurfacesBackendError(t *testing.T) {
	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeDependency, "could not reach server")}

	resp := httptest.NewRecorder()
	CheckoutCreate(seededCart(t), svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/v1/checkout", "", "cart-1", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestCheckoutVerifyClearsVisitorCart(t *testing.T) {
	carts := seededCart(t)
	svc := &stubCheckout{clear: true}

	resp := httptest.NewRecorder()
	CheckoutVerify(carts, svc, nil).ServeHTTP(resp, cartRequest(http.MethodGet, "/api/v1/checkout/verify?session_id=cs_1", "", "cart-1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data checkout.Verification `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.SessionID != "cs_1" || !envelope.Data.CartCleared {
		t.Fatalf("unexpected verification %+v", envelope.Data)
	}
	store, _ := carts.Open(context.Background(), "cart-1")
	if !store.Snapshot().IsEmpty() {
		t.Fatalf("expected visitor cart cleared")
	}
}

func TestCheckoutVerifyWithoutCartStillVerifies(t *testing.T) {
	svc := &stubCheckout{clear: true}

	resp := httptest.NewRecorder()
	CheckoutVerify(newCartService(t), svc, nil).ServeHTTP(resp, cartRequest(http.MethodGet, "/api/v1/checkout/verify?session_id=cs_1", "", "", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.cleared {
		t.Fatalf("no cart should have been cleared")
	}
}
