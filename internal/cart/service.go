package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
)

// Service opens visitor cart stores.
type Service interface {
	Open(ctx context.Context, key string) (*Store, error)
}

type service struct {
	persister Persister
	logg      *logger.Logger
}

// NewService binds the cart service to a snapshot persister.
func NewService(persister Persister, logg *logger.Logger) (Service, error) {
	if persister == nil {
		return nil, fmt.Errorf("cart persister required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{persister: persister, logg: logg}, nil
}

// Open loads the stored cart for key into a fresh Store.
func (s *service) Open(ctx context.Context, key string) (*Store, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	cart, err := s.persister.Load(ctx, key)
	if err != nil {
		s.logg.Error(s.logg.WithCartID(ctx, key), "failed to load cart", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not load cart")
	}
	return newStore(key, cart, s.persister), nil
}
