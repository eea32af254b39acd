package orders

import (
	"context"
	"fmt"

	"github.com/angelmondragon/smartsales/pkg/enums"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

type purchasesBackend interface {
	ListPurchases(ctx context.Context, status enums.SaleStatus) (smartsales.PurchaseHistory, error)
	GetPurchase(ctx context.Context, id int64) (smartsales.Sale, error)
	RequestRefund(ctx context.Context, id int64) (string, error)
}

// Service reads the caller's purchase history. Every call goes to the backend;
// nothing is cached or recomputed locally.
type Service interface {
	List(ctx context.Context, status enums.SaleStatus) (smartsales.PurchaseHistory, error)
	Get(ctx context.Context, id int64) (smartsales.Sale, error)
	RequestRefund(ctx context.Context, id int64) (string, error)
}

type service struct {
	backend purchasesBackend
	logg    *logger.Logger
}

// NewService constructs the orders service.
func NewService(backend purchasesBackend, logg *logger.Logger) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("purchases backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: backend, logg: logg}, nil
}

func (s *service) List(ctx context.Context, status enums.SaleStatus) (smartsales.PurchaseHistory, error) {
	if status != "" && !status.IsValid() {
		return smartsales.PurchaseHistory{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}
	history, err := s.backend.ListPurchases(ctx, status)
	if err != nil {
		return smartsales.PurchaseHistory{}, err
	}
	if history.Purchases == nil {
		history.Purchases = []smartsales.Sale{}
	}
	return history, nil
}

func (s *service) Get(ctx context.Context, id int64) (smartsales.Sale, error) {
	if id <= 0 {
		return smartsales.Sale{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	return s.backend.GetPurchase(ctx, id)
}

// RequestRefund forwards a refund request; eligibility is decided by the backend.
func (s *service) RequestRefund(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	msg, err := s.backend.RequestRefund(ctx, id)
	if err != nil {
		return "", err
	}
	s.logg.Info(s.logg.WithField(ctx, "sale_id", id), "refund requested")
	return msg, nil
}
