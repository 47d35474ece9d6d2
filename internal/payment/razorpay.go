package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"cartify/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotConfigured is returned when provider credentials are missing.
var ErrNotConfigured = errors.New("payment provider not configured")

// Order is the provider-side payment order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// OrderRequest is sent to the provider. Amount is in the smallest currency unit.
type OrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

// Gateway creates provider payment orders.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	Status      int
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("razorpay status=%d code=%s: %s", e.Status, e.Code, e.Description)
}

// RazorpayClient speaks the Razorpay orders API.
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
	logger    *log.Logger
}

var _ Gateway = (*RazorpayClient)(nil)

func NewRazorpay(cfg config.PaymentConfig, logger *log.Logger) *RazorpayClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RazorpayClient{
		baseURL:   cfg.APIURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, in OrderRequest) (*Order, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, ErrNotConfigured
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("payment: create order receipt=%s error=%v", in.Receipt, err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)
		perr := &ProviderError{Status: resp.StatusCode, Code: payload.Error.Code, Description: payload.Error.Description}
		c.logger.Printf("payment: create order receipt=%s error=%v", in.Receipt, perr)
		return nil, perr
	}

	var out Order
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	c.logger.Printf("payment: created order id=%s amount=%d currency=%s", out.ID, out.Amount, out.Currency)
	return &out, nil
}
