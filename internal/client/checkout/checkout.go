package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"cartify/internal/client/apiclient"
	"cartify/internal/client/cartstore"
	"cartify/internal/domain"
	"github.com/shopspring/decimal"
)

type State int

const (
	FormEntry State = iota
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case FormEntry:
		return "form_entry"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrLoginRequired = errors.New("login required")
	ErrCartEmpty     = errors.New("cart is empty")
	ErrNotEditable   = errors.New("checkout is not accepting submissions")
)

var (
	freeShippingOver = decimal.NewFromInt(50)
	flatShipping     = decimal.RequireFromString("9.99")
	taxRate          = decimal.RequireFromString("0.08")
)

type requester interface {
	Do(ctx context.Context, path string, req apiclient.Request, out any) error
}

type tokenSource interface {
	Token() string
}

// Order is the confirmation returned by the API.
type Order struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}

// Quote is the display summary shown next to the form. The server computes the charged total.
type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Flow is one checkout session.
type Flow struct {
	mu        sync.Mutex
	state     State
	lastError string
	order     *Order

	cart     *cartstore.Store
	sessions tokenSource
	api      requester
}

// Begin opens a checkout. It fails with ErrLoginRequired without a session and ErrCartEmpty
// for an empty cart, in that order.
func Begin(cart *cartstore.Store, sessions tokenSource, api requester) (*Flow, error) {
	if err := guard(cart, sessions); err != nil {
		return nil, err
	}
	return &Flow{state: FormEntry, cart: cart, sessions: sessions, api: api}, nil
}

func guard(cart *cartstore.Store, sessions tokenSource) error {
	if sessions.Token() == "" {
		return ErrLoginRequired
	}
	if cart.Count() == 0 {
		return ErrCartEmpty
	}
	return nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError is the server message from the most recent failed submission.
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}

func (f *Flow) Order() *Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.order
}

func (f *Flow) Quote() Quote {
	return QuoteFor(f.cart.Total())
}

// QuoteFor applies free shipping over 50, otherwise a flat 9.99, and 8% tax on the subtotal.
func QuoteFor(subtotal decimal.Decimal) Quote {
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate).Round(2)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

type orderRequest struct {
	Shipping domain.ShippingAddress `json:"shipping"`
	Items    []domain.LineRequest   `json:"items"`
	Total    decimal.Decimal        `json:"total"`
}

// Submit posts the order. On success the cart is cleared. A rejected submission returns to
// FormEntry with the server message kept in LastError and the cart untouched. Losing the
// session or the cart in the meantime ends the flow in Failed.
func (f *Flow) Submit(ctx context.Context, shipping domain.ShippingAddress) (*Order, error) {
	f.mu.Lock()
	if f.state != FormEntry {
		f.mu.Unlock()
		return nil, ErrNotEditable
	}
	if err := guard(f.cart, f.sessions); err != nil {
		f.state = Failed
		f.lastError = err.Error()
		f.mu.Unlock()
		return nil, err
	}
	f.state = Submitting
	f.lastError = ""
	f.mu.Unlock()

	lines := f.cart.Lines()
	req := orderRequest{
		Shipping: shipping,
		Items:    make([]domain.LineRequest, 0, len(lines)),
		Total:    f.cart.Total(),
	}
	for _, l := range lines {
		req.Items = append(req.Items, domain.LineRequest{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Color:     l.Color,
			Size:      l.Size,
		})
	}

	var resp struct {
		Order Order `json:"order"`
	}
	err := f.api.Do(ctx, "/orders", apiclient.Request{
		Method:  http.MethodPost,
		Body:    req,
		Headers: map[string]string{"Authorization": "Bearer " + f.sessions.Token()},
	}, &resp)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = FormEntry
		f.lastError = errorMessage(err)
		return nil, err
	}

	order := resp.Order
	f.order = &order
	f.state = Success
	// the order exists either way; the store logs a failed write
	_ = f.cart.Clear()
	return &order, nil
}

func errorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "checkout failed"
}
