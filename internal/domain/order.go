package domain

import "time"

const OrderStatusPending = "pending"

type ShippingAddress struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	UserEmail  string          `json:"user_email"`
	Status     string          `json:"status"`
	TotalCents int64           `json:"total_cents"`
	Currency   string          `json:"currency"`
	Shipping   ShippingAddress `json:"shipping"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []OrderItem     `json:"items"`
}

// OrderItem snapshots the unit price and product name at checkout time.
type OrderItem struct {
	ID              string  `json:"id"`
	OrderID         string  `json:"order_id"`
	ProductID       *string `json:"product_id"`
	ProductName     string  `json:"product_name"`
	ProductImageURL string  `json:"product_image_url"`
	Quantity        int     `json:"quantity"`
	UnitPriceCents  int64   `json:"unit_price_cents"`
	Color           string  `json:"color"`
	Size            string  `json:"size"`
}

// LineRequest names a product and quantity to check out; prices are never taken from it.
type LineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}
