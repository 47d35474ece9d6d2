package httpserver

import (
	"net/http"

	accountsvc "cartify/internal/service/account"
	"github.com/gin-gonic/gin"
)

type resendRequest struct {
	Email string `json:"email"`
}

func (a *api) register(c *gin.Context) {
	var req accountsvc.Credentials
	if !bindJSON(c, &req) {
		return
	}
	user, err := a.deps.AccountSvc.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "check your email to confirm your account",
	})
}

func (a *api) login(c *gin.Context) {
	var req accountsvc.Credentials
	if !bindJSON(c, &req) {
		return
	}
	sess, err := a.deps.AccountSvc.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": sess.AccessToken,
		"expires_in":   sess.ExpiresIn,
		"user":         sess.User,
	})
}

func (a *api) me(c *gin.Context) {
	user, _ := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a *api) resendConfirmation(c *gin.Context) {
	var req resendRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.deps.AccountSvc.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
