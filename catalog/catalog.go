package catalog

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a single catalog entry. The catalog is reference data: it is
// loaded once at startup and never mutated afterwards.
type Product struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Catalog maps product names to prices. Lookups are case-insensitive.
// A zero-value Catalog is usable and prices everything at zero.
type Catalog struct {
	products []Product
	prices   map[string]decimal.Decimal
}

// Load reads the product reference file. A missing or malformed file is not
// fatal: the system degrades to an empty catalog where every lookup returns
// zero, and the condition is logged as a warning.
func Load(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("catalog file unreadable, starting with empty catalog", "path", path, "error", err)
		return New(nil)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		logger.Warn("catalog file malformed, starting with empty catalog", "path", path, "error", err)
		return New(nil)
	}

	logger.Info("catalog loaded", "path", path, "products", len(products))
	return New(products)
}

// New builds a Catalog from the given products, preserving their order.
func New(products []Product) *Catalog {
	c := &Catalog{
		products: products,
		prices:   make(map[string]decimal.Decimal, len(products)),
	}
	for _, p := range products {
		c.prices[normalize(p.Name)] = p.Price
	}
	return c
}

// PriceOf returns the price for the given product name, matched
// case-insensitively. Unknown products price at zero; absence is a
// legitimate outcome, not an error.
func (c *Catalog) PriceOf(name string) decimal.Decimal {
	if price, ok := c.prices[normalize(name)]; ok {
		return price
	}
	return decimal.Zero
}

// Names returns the catalog display names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.products))
	for i, p := range c.products {
		names[i] = p.Name
	}
	return names
}

// Products returns all catalog entries in catalog order.
func (c *Catalog) Products() []Product {
	return c.products
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
