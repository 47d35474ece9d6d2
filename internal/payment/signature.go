package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the hex HMAC-SHA256 of message under secret.
func Sign(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayment checks a checkout callback signature over "orderId|paymentId".
func VerifyPayment(secret, orderID, paymentID, signature string) bool {
	return verify(secret, []byte(orderID+"|"+paymentID), signature)
}

// VerifyWebhook checks a signature over the raw request body.
func VerifyWebhook(secret string, body []byte, signature string) bool {
	return verify(secret, body, signature)
}

func verify(secret string, message []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, message)
	return hmac.Equal([]byte(expected), []byte(signature))
}
