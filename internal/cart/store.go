package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

// Store is the visitor's cart. Every mutation persists the full cart; when the
// write fails the mutation is undone and the error returned.
type Store struct {
	mu        sync.Mutex
	key       string
	cart      Cart
	persister Persister
}

func newStore(key string, cart Cart, persister Persister) *Store {
	return &Store{key: key, cart: cart, persister: persister}
}

// Key returns the visitor cart id backing the store.
func (s *Store) Key() string {
	return s.key
}

// AddToCart increments the product's line or appends a new line with quantity 1.
func (s *Store) AddToCart(ctx context.Context, product smartsales.Product) error {
	return s.mutate(ctx, func(c *Cart) {
		c.add(product)
	})
}

// RemoveFromCart drops the product's line. Absent products are a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func(c *Cart) {
		c.remove(productID)
	})
}

// UpdateQuantity replaces the line quantity; quantity <= 0 removes the line.
// Stock is not checked here.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	return s.mutate(ctx, func(c *Cart) {
		c.setQuantity(productID, quantity)
	})
}

// ClearCart empties the cart and persists the empty state.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// an absent snapshot loads as an empty cart
	if err := s.persister.Delete(ctx, s.key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not save cart")
	}
	s.cart = Cart{}
	return nil
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.clone()
}

func (s *Store) mutate(ctx context.Context, fn func(*Cart)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cart.clone()
	fn(&next)
	if err := s.persister.Save(ctx, s.key, next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not save cart")
	}
	s.cart = next
	return nil
}
