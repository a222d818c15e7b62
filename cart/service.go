// Package cart implements the cart ledger: add/remove/list over persisted
// cart lines keyed by normalized product name, price enrichment from the
// catalog, and the checkout transition.
package cart

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/voicecart/voicecart/models"
)

// Line is a cart line enriched with catalog pricing. Price and TotalPrice
// are derived on read and never persisted.
type Line struct {
	Product    string          `json:"product"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"-"`
	TotalPrice decimal.Decimal `json:"-"`
}

// CartStore is the persistence surface the ledger needs.
type CartStore interface {
	Upsert(product string, qty int) (*models.CartLine, error)
	Decrement(product string, qty int) error
	GetAll() ([]models.CartLine, error)
}

// OrderStore performs the transactional checkout snapshot.
type OrderStore interface {
	Checkout(pricer models.Pricer) (*models.Order, error)
}

// Service owns all cart mutations. Callers never touch cart rows directly.
type Service struct {
	store   CartStore
	orders  OrderStore
	catalog models.Pricer
	logger  *slog.Logger
}

func NewService(store CartStore, orders OrderStore, catalog models.Pricer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		orders:  orders,
		catalog: catalog,
		logger:  logger.With("component", "cart"),
	}
}

// Normalize returns the cart key form of a product name: lowercase, trimmed.
func Normalize(product string) string {
	return strings.ToLower(strings.TrimSpace(product))
}

// Add increments the line for product by qty, creating it if absent, and
// returns the enriched resulting line. Quantities below one clamp to one so
// a line is never persisted with a non-positive quantity.
func (s *Service) Add(product string, qty int) (Line, error) {
	if qty < 1 {
		qty = 1
	}
	key := Normalize(product)
	s.logger.Info("adding to cart", "product", key, "quantity", qty)

	line, err := s.store.Upsert(key, qty)
	if err != nil {
		return Line{}, fmt.Errorf("cart add: %w", err)
	}
	return s.enrich(*line), nil
}

// Remove decrements the line for product by qty; the line is deleted when
// the result reaches zero or below. A missing line is a no-op, logged but
// not an error.
func (s *Service) Remove(product string, qty int) error {
	key := Normalize(product)
	s.logger.Info("removing from cart", "product", key, "quantity", qty)

	err := s.store.Decrement(key, qty)
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrLineNotFound) {
		s.logger.Warn("product not in cart", "product", key)
		return nil
	}
	return fmt.Errorf("cart remove: %w", err)
}

// List returns all cart lines enriched with catalog pricing. No ordering
// is guaranteed.
func (s *Service) List() ([]Line, error) {
	rows, err := s.store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("cart list: %w", err)
	}
	lines := make([]Line, len(rows))
	for i, row := range rows {
		lines[i] = s.enrich(row)
	}
	return lines, nil
}

// Checkout snapshots the cart into an immutable order and clears the
// ledger. Returns models.ErrEmptyCart when there is nothing to check out.
func (s *Service) Checkout() (*models.Order, error) {
	order, err := s.orders.Checkout(s.catalog)
	if err != nil {
		return nil, err
	}
	s.logger.Info("checkout completed", "order_id", order.ID, "lines", len(order.Lines))
	return order, nil
}

// Subtotal sums TotalPrice over the given lines, rounded to two decimal
// places. The result does not depend on line order.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.TotalPrice)
	}
	return sum.Round(2)
}

func (s *Service) enrich(row models.CartLine) Line {
	price := s.catalog.PriceOf(row.Product)
	return Line{
		Product:    row.Product,
		Quantity:   row.Quantity,
		Price:      price,
		TotalPrice: price.Mul(decimal.NewFromInt(int64(row.Quantity))),
	}
}
