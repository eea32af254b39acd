package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/smartsales/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
	"github.com/angelmondragon/smartsales/pkg/types"
)

type stubOrders struct {
	status   enums.SaleStatus
	history  smartsales.PurchaseHistory
	sale     smartsales.Sale
	refunded int64
	err      error
}

func (s *stubOrders) List(_ context.Context, status enums.SaleStatus) (smartsales.PurchaseHistory, error) {
	s.status = status
	return s.history, s.err
}

func (s *stubOrders) Get(_ context.Context, id int64) (smartsales.Sale, error) {
	if s.err != nil {
		return smartsales.Sale{}, s.err
	}
	return s.sale, nil
}

func (s *stubOrders) RequestRefund(_ context.Context, id int64) (string, error) {
	s.refunded = id
	return "Reembolso solicitado", s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestOrdersListReturnsStatsInMeta(t *testing.T) {
	svc := &stubOrders{history: smartsales.PurchaseHistory{
		Purchases: []smartsales.Sale{{ID: 1, Status: enums.SaleStatusPaid}},
		Stats: smartsales.PurchaseStats{
			TotalOrders: 1,
			Paid:        1,
			TotalSpent:  types.Money{Decimal: decimal.RequireFromString("59.97")},
		},
	}}

	resp := httptest.NewRecorder()
	OrdersList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders?estado=pagada", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.status != enums.SaleStatusPaid {
		t.Fatalf("expected status filter forwarded, got %q", svc.status)
	}

	var envelope struct {
		Data []map[string]any         `json:"data"`
		Meta smartsales.PurchaseStats `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Meta.TotalOrders != 1 || !envelope.Meta.TotalSpent.Equal(decimal.RequireFromString("59.97")) {
		t.Fatalf("unexpected payload %+v", envelope)
	}
}

func TestOrdersListPropagatesValidation(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeValidation, "invalid status")}

	resp := httptest.NewRecorder()
	OrdersList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders?estado=nope", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderGetRejectsBadID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/abc", nil), "id", "abc")
	resp := httptest.NewRecorder()
	OrderGet(&stubOrders{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderGetNotFound(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/5", nil), "id", "5")
	resp := httptest.NewRecorder()
	OrderGet(&stubOrders{err: pkgerrors.New(pkgerrors.CodeNotFound, "Venta no encontrada")}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestOrderRefundAccepted(t *testing.T) {
	svc := &stubOrders{}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/orders/12/refund", nil), "id", "12")
	resp := httptest.NewRecorder()
	OrderRefund(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", resp.Code)
	}
	if svc.refunded != 12 {
		t.Fatalf("expected refund for 12, got %d", svc.refunded)
	}
}
