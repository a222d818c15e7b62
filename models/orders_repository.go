package models

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEmptyCart is returned when checkout is attempted against an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// Pricer resolves a product name to its catalog price; unknown products
// price at zero.
type Pricer interface {
	PriceOf(name string) decimal.Decimal
}

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		db: db,
	}
}

// Checkout atomically snapshots the cart into a completed order and clears
// the snapshotted lines. The read, the order write and the clear share one
// transaction: if the order write fails the cart is left intact, and the
// row locks taken on the read serialize against concurrent cart mutations
// and a second checkout. Only snapshotted products are deleted, so a line
// added concurrently for a new product is never silently dropped.
func (r *OrdersRepository) Checkout(pricer Pricer) (*Order, error) {
	var order Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var lines []CartLine
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		order = Order{
			Status: OrderStatusCompleted,
			Lines:  make([]OrderLine, len(lines)),
		}
		products := make([]string, len(lines))
		for i, l := range lines {
			price := pricer.PriceOf(l.Product)
			order.Lines[i] = OrderLine{
				Product:    l.Product,
				Quantity:   l.Quantity,
				Price:      price,
				TotalPrice: price.Mul(decimal.NewFromInt(int64(l.Quantity))),
			}
			products[i] = l.Product
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Where("product IN ?", products).Delete(&CartLine{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
