package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLineNotFound is returned when a cart line does not exist for the
// requested product.
var ErrLineNotFound = errors.New("cart line not found")

// CartRepository is the single writer of cart_lines rows.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		db: db,
	}
}

// Upsert creates the line for the given normalized product or atomically
// increments its quantity by qty. The increment runs as a single
// ON CONFLICT statement, so concurrent callers on the same product cannot
// lose updates. Returns the resulting line.
func (r *CartRepository) Upsert(product string, qty int) (*CartLine, error) {
	line := CartLine{Product: product, Quantity: qty}
	// RETURNING reads the summed quantity back in the same statement, so
	// there is no window for a concurrent delete between insert and read.
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_lines.quantity + excluded.quantity"),
		}),
	}, clause.Returning{}).Create(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Decrement lowers the line's quantity by qty, deleting the line entirely
// when the result would be zero or negative. Removing more than is present
// is legal and simply zeroes the line. Returns ErrLineNotFound when no line
// exists for the product.
func (r *CartRepository) Decrement(product string, qty int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var line CartLine
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product = ?", product).
			First(&line).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLineNotFound
			}
			return err
		}

		if line.Quantity-qty <= 0 {
			return tx.Delete(&line).Error
		}
		return tx.Model(&line).Update("quantity", line.Quantity-qty).Error
	})
}

// GetAll returns every cart line. No ordering is guaranteed.
func (r *CartRepository) GetAll() ([]CartLine, error) {
	var lines []CartLine
	if err := r.db.Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
