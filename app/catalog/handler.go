package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/voicecart/voicecart/catalog"
)

type Product struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type CatalogProvider interface {
	Products() []catalog.Product
}

type CatalogHandler struct {
	catalog CatalogProvider
}

func NewCatalogHandler(c CatalogProvider) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
	}
}

// HandleGet serves the product reference catalog.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	src := h.catalog.Products()

	products := make([]Product, len(src))
	for i, p := range src {
		products[i] = Product{
			Name:  p.Name,
			Price: p.Price.InexactFloat64(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
