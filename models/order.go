package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusCompleted is the only status checkout produces; orders are
// immutable once written.
const OrderStatusCompleted = "completed"

// Order is an immutable snapshot of the cart taken at checkout.
type Order struct {
	ID        uint        `gorm:"primaryKey"`
	Status    string      `gorm:"not null"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderLine is one priced cart line frozen into an order. Price and
// TotalPrice are captured at checkout time from the catalog.
type OrderLine struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"not null"`
	Product    string          `gorm:"not null"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (l *OrderLine) TableName() string {
	return "order_lines"
}
