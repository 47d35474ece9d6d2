package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"cartify/internal/payment"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type paymentOrderRequest struct {
	Amount   json.RawMessage `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func (a *api) createPaymentOrder(c *gin.Context) {
	var req paymentOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		a.deps.Metrics.PaymentOrder(c.Request.Context(), "invalid")
		badRequest(c, "amount must be a positive number")
		return
	}
	order, err := a.deps.PaymentSvc.CreateOrder(c.Request.Context(), payment.CreateOrderInput{
		Amount:   amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	})
	if err != nil {
		a.deps.Metrics.PaymentOrder(c.Request.Context(), "error")
		writeError(c, a.logger, err)
		return
	}
	a.deps.Metrics.PaymentOrder(c.Request.Context(), "created")
	c.JSON(http.StatusOK, gin.H{
		"orderId":  order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
	})
}

func (a *api) verifyPayment(c *gin.Context) {
	var req verifyRequest
	if !bindJSON(c, &req) {
		return
	}
	err := a.deps.PaymentSvc.Verify(payment.VerifyInput{
		OrderID:   strings.TrimSpace(req.OrderID),
		PaymentID: strings.TrimSpace(req.PaymentID),
		Signature: strings.TrimSpace(req.Signature),
	})
	if err != nil {
		a.deps.Metrics.PaymentVerification(c.Request.Context(), "rejected")
		writeError(c, a.logger, err)
		return
	}
	a.deps.Metrics.PaymentVerification(c.Request.Context(), "verified")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseAmount accepts a JSON number or a numeric string. A missing or null amount yields (nil, true)
// so the service reports it as required.
func parseAmount(raw json.RawMessage) (*decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return nil, false
	}
	return &d, true
}
