package domain

import (
	"math"
	"time"
)

// MaxQuantity is the largest line quantity the INTEGER quantity columns can hold.
const MaxQuantity = math.MaxInt32

// CartItem is one server-tracked cart line. Lines are unique per (user, product, color, size).
type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Product   *Product  `json:"product,omitempty"`
}
