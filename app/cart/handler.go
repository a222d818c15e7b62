package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/voicecart/voicecart/cart"
	"github.com/voicecart/voicecart/models"
)

type Line struct {
	Product    string  `json:"product"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"total_price"`
}

type Response struct {
	Items    []Line  `json:"items"`
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
}

type OrderResponse struct {
	ID        uint      `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Items     []Line    `json:"items"`
}

type CartProvider interface {
	List() ([]cart.Line, error)
	Checkout() (*models.Order, error)
}

type CartHandler struct {
	svc CartProvider
}

func NewCartHandler(svc CartProvider) *CartHandler {
	return &CartHandler{
		svc: svc,
	}
}

// HandleGet returns the current cart with per-line pricing and totals.
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	lines, err := h.svc.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}

	subtotal := cart.Subtotal(lines).InexactFloat64()
	response := Response{
		Items:    toLines(lines),
		Subtotal: subtotal,
		Total:    subtotal,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleCheckout snapshots the cart into an order and clears it. An empty
// cart is an input error, not a processing failure.
func (h *CartHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Checkout()
	if err != nil {
		if errors.Is(err, models.ErrEmptyCart) {
			writeError(w, http.StatusBadRequest, "Cannot checkout an empty cart")
			return
		}
		writeError(w, http.StatusInternalServerError, "Checkout failed")
		return
	}

	items := make([]Line, len(order.Lines))
	for i, l := range order.Lines {
		items[i] = Line{
			Product:    l.Product,
			Quantity:   l.Quantity,
			Price:      l.Price.InexactFloat64(),
			TotalPrice: l.TotalPrice.InexactFloat64(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(OrderResponse{
		ID:        order.ID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		Items:     items,
	})
}

func toLines(lines []cart.Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{
			Product:    l.Product,
			Quantity:   l.Quantity,
			Price:      l.Price.InexactFloat64(),
			TotalPrice: l.TotalPrice.InexactFloat64(),
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
