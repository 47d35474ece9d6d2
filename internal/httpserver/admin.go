package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultWebhookLimit = 50
	maxWebhookLimit     = 500
)

type targetRequest struct {
	UserID string `json:"userId"`
}

func (a *api) adminUsers(c *gin.Context) {
	users, err := a.deps.AccountSvc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (a *api) adminOrders(c *gin.Context) {
	orders, err := a.deps.OrderSvc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderViews(orders)})
}

func (a *api) adminWebhooks(c *gin.Context) {
	limit := defaultWebhookLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "invalid limit")
			return
		}
		limit = min(n, maxWebhookLimit)
	}
	events, err := a.deps.WebhookSvc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *api) revokeSession(c *gin.Context) {
	caller, _ := currentUser(c)
	req, ok := bindTarget(c)
	if !ok {
		return
	}
	target, err := a.deps.AccountSvc.RevokeSessions(c.Request.Context(), caller, req.UserID)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userId": target})
}

func (a *api) deleteAccount(c *gin.Context) {
	caller, _ := currentUser(c)
	req, ok := bindTarget(c)
	if !ok {
		return
	}
	target, err := a.deps.AccountSvc.DeleteAccount(c.Request.Context(), caller, req.UserID)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userId": target})
}

// bindTarget accepts an empty body, meaning "act on myself".
func bindTarget(c *gin.Context) (targetRequest, bool) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid json")
		return req, false
	}
	return req, true
}
