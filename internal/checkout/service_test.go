package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/smartsales/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/metrics"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
	"github.com/angelmondragon/smartsales/pkg/types"
)

type stubBackend struct {
	createCalls int
	verifyCalls int
	createItems []smartsales.CheckoutItem
	session     smartsales.CheckoutSession
	createErr   error
	verify      smartsales.Verification
	verifyErr   error
}

func (s *stubBackend) CreateCheckout(_ context.Context, items []smartsales.CheckoutItem) (smartsales.CheckoutSession, error) {
	s.createCalls++
	s.createItems = items
	return s.session, s.createErr
}

func (s *stubBackend) VerifyCheckout(_ context.Context, _ string) (smartsales.Verification, error) {
	s.verifyCalls++
	return s.verify, s.verifyErr
}

type stubCart struct {
	cleared  int
	clearErr error
}

func (s *stubCart) ClearCart(context.Context) error {
	s.cleared++
	return s.clearErr
}

func newTestService(t *testing.T, backend *stubBackend) (Service, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc, err := NewService(backend, metrics.NewCheckoutMetrics(reg), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, reg
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func paidVerification(status enums.SaleStatus) smartsales.Verification {
	return smartsales.Verification{
		OK: true,
		Sale: &smartsales.SaleSummary{
			ID:     77,
			Status: status,
			Total:  types.Money{Decimal: decimal.RequireFromString("59.97")},
		},
	}
}

func TestCreateRejectsEmptyItemsWithoutNetwork(t *testing.T) {
	backend := &stubBackend{}
	svc, _ := newTestService(t, backend)

	_, err := svc.Create(context.Background(), nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.createCalls != 0 {
		t.Fatalf("expected no backend call, got %d", backend.createCalls)
	}
}

func TestCreateRejectsNonPositiveQuantity(t *testing.T) {
	backend := &stubBackend{}
	svc, _ := newTestService(t, backend)

	_, err := svc.Create(context.Background(), []smartsales.CheckoutItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 0},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.createCalls != 0 {
		t.Fatalf("expected no backend call")
	}
}

func TestCreateReturnsRedirectSession(t *testing.T) {
	backend := &stubBackend{session: smartsales.CheckoutSession{SessionID: "cs_1", URL: "https://pay.example/cs_1"}}
	svc, reg := newTestService(t, backend)

	items := []smartsales.CheckoutItem{{ProductID: 1, Quantity: 3}}
	session, err := svc.Create(context.Background(), items)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.URL != "https://pay.example/cs_1" {
		t.Fatalf("unexpected url %q", session.URL)
	}
	if len(backend.createItems) != 1 || backend.createItems[0].Quantity != 3 {
		t.Fatalf("items not forwarded: %+v", backend.createItems)
	}
	if got := counterValue(t, reg, "checkout_sessions_total", "outcome", "created"); got != 1 {
		t.Fatalf("expected created counter 1, got %v", got)
	}
}

func TestCreatePassesBackendErrorThrough(t *testing.T) {
	backendErr := pkgerrors.New(pkgerrors.CodeValidation, "Stock insuficiente")
	backend := &stubBackend{createErr: backendErr}
	svc, _ := newTestService(t, backend)

	_, err := svc.Create(context.Background(), []smartsales.CheckoutItem{{ProductID: 1, Quantity: 1}})
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestVerifyPaidClearsCart(t *testing.T) {
	backend := &stubBackend{verify: paidVerification(enums.SaleStatusPaid)}
	svc, reg := newTestService(t, backend)
	cart := &stubCart{}

	v := svc.Verify(context.Background(), "cs_1", cart)
	if v.State != enums.VerificationStateSuccess {
		t.Fatalf("expected success, got %s (%s)", v.State, v.Reason)
	}
	if v.SaleID != 77 || !v.Total.Equal(decimal.RequireFromString("59.97")) {
		t.Fatalf("expected sale details captured, got %+v", v)
	}
	if cart.cleared != 1 || !v.CartCleared {
		t.Fatalf("expected cart cleared once, got %d", cart.cleared)
	}
	if got := counterValue(t, reg, "payment_verifications_total", "state", "success"); got != 1 {
		t.Fatalf("expected success counter 1, got %v", got)
	}
}

func TestVerifyNonPaidStatusFailsWithoutClearing(t *testing.T) {
	for _, status := range []enums.SaleStatus{
		enums.SaleStatusPending,
		enums.SaleStatusFailed,
		enums.SaleStatusCancelled,
		enums.SaleStatusRefunded,
	} {
		backend := &stubBackend{verify: paidVerification(status)}
		svc, _ := newTestService(t, backend)
		cart := &stubCart{}

		v := svc.Verify(context.Background(), "cs_1", cart)
		if v.State != enums.VerificationStateFailure {
			t.Fatalf("%s: expected failure, got %s", status, v.State)
		}
		if v.Reason != "payment status: "+status.String() {
			t.Fatalf("%s: unexpected reason %q", status, v.Reason)
		}
		if cart.cleared != 0 {
			t.Fatalf("%s: cart must not be cleared", status)
		}
	}
}

func TestVerifyMissingSessionSkipsNetwork(t *testing.T) {
	backend := &stubBackend{}
	svc, _ := newTestService(t, backend)
	cart := &stubCart{}

	v := svc.Verify(context.Background(), " ", cart)
	if v.State != enums.VerificationStateFailure || v.Reason != ReasonMissingSession {
		t.Fatalf("unexpected verification %+v", v)
	}
	if backend.verifyCalls != 0 || cart.cleared != 0 {
		t.Fatalf("expected no side effects")
	}
}

func TestVerifyTransportFailureIsGeneric(t *testing.T) {
	backend := &stubBackend{verifyErr: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp: refused"), "could not reach server")}
	svc, _ := newTestService(t, backend)
	cart := &stubCart{}

	v := svc.Verify(context.Background(), "cs_1", cart)
	if v.State != enums.VerificationStateFailure || v.Reason != ReasonGeneric {
		t.Fatalf("unexpected verification %+v", v)
	}
	if cart.cleared != 0 {
		t.Fatalf("cart must not be cleared")
	}
}

func TestVerifyBackendErrorMessageSurfaces(t *testing.T) {
	backend := &stubBackend{verifyErr: pkgerrors.New(pkgerrors.CodeNotFound, "Sesión no encontrada")}
	svc, _ := newTestService(t, backend)

	v := svc.Verify(context.Background(), "cs_1", &stubCart{})
	if v.Reason != "Sesión no encontrada" {
		t.Fatalf("expected backend message, got %q", v.Reason)
	}
}

func TestVerifyNotOKUsesBackendError(t *testing.T) {
	backend := &stubBackend{verify: smartsales.Verification{OK: false, Error: "Pago rechazado"}}
	svc, _ := newTestService(t, backend)

	v := svc.Verify(context.Background(), "cs_1", &stubCart{})
	if v.State != enums.VerificationStateFailure || v.Reason != "Pago rechazado" {
		t.Fatalf("unexpected verification %+v", v)
	}

	backend.verify = smartsales.Verification{OK: false}
	v = svc.Verify(context.Background(), "cs_1", &stubCart{})
	if v.Reason != ReasonGeneric {
		t.Fatalf("expected generic reason, got %q", v.Reason)
	}
}

func TestVerifyClearFailureKeepsSuccess(t *testing.T) {
	backend := &stubBackend{verify: paidVerification(enums.SaleStatusPaid)}
	svc, _ := newTestService(t, backend)
	cart := &stubCart{clearErr: errors.New("redis down")}

	v := svc.Verify(context.Background(), "cs_1", cart)
	if v.State != enums.VerificationStateSuccess {
		t.Fatalf("expected success despite clear failure, got %s", v.State)
	}
	if v.CartCleared {
		t.Fatalf("expected cart_cleared false")
	}
}

func TestVerificationTerminalStatesAreFinal(t *testing.T) {
	v := newVerification("cs_1")
	if !v.fail("first") {
		t.Fatalf("expected first transition to apply")
	}
	if v.succeed(smartsales.SaleSummary{ID: 1, Status: enums.SaleStatusPaid}) {
		t.Fatalf("expected no re-entry from failure")
	}
	if v.fail("second") || v.Reason != "first" {
		t.Fatalf("terminal reason changed to %q", v.Reason)
	}
}
