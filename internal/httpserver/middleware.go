package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"

	"cartify/internal/domain"
	"github.com/gin-gonic/gin"
)

const userCtxKey = "cartify.user"

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// requireUser exchanges the bearer token for a user and stores it on the context.
func requireUser(auth authenticator, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.Set(userCtxKey, *user)
		c.Next()
	}
}

// requireAdmin must run after requireUser.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
