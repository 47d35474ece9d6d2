package httpserver

import (
	"net/http"

	webhooksvc "cartify/internal/service/webhook"
	"github.com/gin-gonic/gin"
)

func (a *api) webhookEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "unreadable body")
		return
	}
	status, err := a.deps.WebhookSvc.Handle(c.Request.Context(), webhooksvc.Delivery{
		Body:      body,
		Signature: c.GetHeader("x-webhook-signature"),
		EventID:   c.GetHeader("x-webhook-id"),
	})
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
