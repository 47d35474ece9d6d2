package httpserver

import (
	"time"

	"cartify/internal/domain"
	productsvc "cartify/internal/service/product"
	"github.com/shopspring/decimal"
)

type productView struct {
	ID          string          `json:"id"`
	CategoryID  *string         `json:"category_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	InStock     bool            `json:"in_stock"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type cartItemView struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Color     string       `json:"color"`
	Size      string       `json:"size"`
	CreatedAt time.Time    `json:"created_at"`
	Product   *productView `json:"product,omitempty"`
}

type orderItemView struct {
	ID              string          `json:"id"`
	ProductID       *string         `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImageURL string          `json:"product_image_url"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Color           string          `json:"color"`
	Size            string          `json:"size"`
}

type orderView struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	UserEmail string                 `json:"user_email"`
	Status    string                 `json:"status"`
	Total     decimal.Decimal        `json:"total"`
	Currency  string                 `json:"currency"`
	Shipping  domain.ShippingAddress `json:"shipping"`
	CreatedAt time.Time              `json:"created_at"`
	Items     []orderItemView        `json:"items"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       productsvc.FromCents(p.PriceCents),
		Currency:    p.Currency,
		InStock:     p.InStock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductViews(products []domain.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p))
	}
	return out
}

func toCartItemView(it domain.CartItem) cartItemView {
	v := cartItemView{
		ID:        it.ID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Color:     it.Color,
		Size:      it.Size,
		CreatedAt: it.CreatedAt,
	}
	if it.Product != nil {
		pv := toProductView(*it.Product)
		v.Product = &pv
	}
	return v
}

func toCartItemViews(items []domain.CartItem) []cartItemView {
	out := make([]cartItemView, 0, len(items))
	for _, it := range items {
		out = append(out, toCartItemView(it))
	}
	return out
}

func toOrderView(o domain.Order) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemView{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			ProductImageURL: it.ProductImageURL,
			Quantity:        it.Quantity,
			UnitPrice:       productsvc.FromCents(it.UnitPriceCents),
			Color:           it.Color,
			Size:            it.Size,
		})
	}
	return orderView{
		ID:        o.ID,
		UserID:    o.UserID,
		UserEmail: o.UserEmail,
		Status:    o.Status,
		Total:     productsvc.FromCents(o.TotalCents),
		Currency:  o.Currency,
		Shipping:  o.Shipping,
		CreatedAt: o.CreatedAt,
		Items:     items,
	}
}

func toOrderViews(orders []domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	return out
}
