package models

// CartLine is one row of the cart ledger. Product holds the normalized
// (lowercase, trimmed) name and is unique: there is at most one line per
// product at any time. Quantity is always positive while the line exists;
// lines that would reach zero are deleted instead.
type CartLine struct {
	ID       uint   `gorm:"primaryKey"`
	Product  string `gorm:"uniqueIndex;not null"`
	Quantity int    `gorm:"not null"`
}

func (l *CartLine) TableName() string {
	return "cart_lines"
}
