package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/smartsales/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/metrics"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

type salesBackend interface {
	CreateCheckout(ctx context.Context, items []smartsales.CheckoutItem) (smartsales.CheckoutSession, error)
	VerifyCheckout(ctx context.Context, sessionID string) (smartsales.Verification, error)
}

// CartClearer is the part of the visitor cart touched by a confirmed payment.
type CartClearer interface {
	ClearCart(ctx context.Context) error
}

// Service starts checkouts and verifies their payment outcome.
type Service interface {
	Create(ctx context.Context, items []smartsales.CheckoutItem) (smartsales.CheckoutSession, error)
	Verify(ctx context.Context, sessionID string, cart CartClearer) *Verification
}

type service struct {
	backend salesBackend
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

// NewService builds the checkout service.
func NewService(backend salesBackend, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("sales backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: backend, metrics: m, logg: logg}, nil
}

// Create validates the snapshot locally and asks the backend for a payment session.
// Product existence and stock are validated by the backend.
func (s *service) Create(ctx context.Context, items []smartsales.CheckoutItem) (smartsales.CheckoutSession, error) {
	if err := validateItems(items); err != nil {
		s.metrics.IncCheckout("rejected")
		return smartsales.CheckoutSession{}, err
	}

	session, err := s.backend.CreateCheckout(ctx, items)
	if err != nil {
		s.metrics.IncCheckout("failed")
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout creation failed")
		return smartsales.CheckoutSession{}, err
	}

	s.metrics.IncCheckout("created")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"session_id": session.SessionID,
		"sale_id":    session.SaleID,
		"item_count": len(items),
	}), "checkout session created")
	return session, nil
}

func validateItems(items []smartsales.CheckoutItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d has an invalid product id", i)).
				WithDetails(map[string]any{"index": i})
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d quantity must be positive", i)).
				WithDetails(map[string]any{"index": i, "product_id": item.ProductID})
		}
	}
	return nil
}

// Verify runs the verification state machine for sessionID. The cart is cleared
// only after the backend confirms the sale as paid.
func (s *service) Verify(ctx context.Context, sessionID string, cart CartClearer) *Verification {
	sessionID = strings.TrimSpace(sessionID)
	v := newVerification(sessionID)
	defer func() {
		s.metrics.IncVerification(v.State.String())
	}()

	if sessionID == "" {
		v.fail(ReasonMissingSession)
		return v
	}

	ctx = s.logg.WithField(ctx, "session_id", sessionID)
	result, err := s.backend.VerifyCheckout(ctx, sessionID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "payment verification request failed")
		v.fail(failureReason(err))
		return v
	}

	if !result.OK {
		reason := strings.TrimSpace(result.Error)
		if reason == "" {
			reason = ReasonGeneric
		}
		v.fail(reason)
		return v
	}

	if result.Sale == nil {
		v.fail(ReasonGeneric)
		return v
	}
	sale := *result.Sale
	if sale.Status != enums.SaleStatusPaid {
		v.SaleID = sale.ID
		v.Status = sale.Status
		v.fail(statusReason(sale.Status))
		return v
	}

	v.succeed(sale)
	if cart == nil {
		return v
	}
	if err := cart.ClearCart(ctx); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "sale_id", sale.ID), "failed to clear cart after confirmed payment", err)
		return v
	}
	v.CartCleared = true
	return v
}

// failureReason keeps backend-provided messages and hides transport details.
func failureReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return ReasonGeneric
	}
	switch typed.Code() {
	case pkgerrors.CodeDependency, pkgerrors.CodeUpstream, pkgerrors.CodeInternal:
		return ReasonGeneric
	}
	if msg := strings.TrimSpace(typed.Message()); msg != "" {
		return msg
	}
	return ReasonGeneric
}
