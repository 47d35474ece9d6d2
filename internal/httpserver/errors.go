package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"cartify/internal/domain"
	"github.com/gin-gonic/gin"
)

const internalMessage = "internal server error"

// writeError maps err to a status and a {"error": msg} body. Unclassified errors are logged with
// detail and answered with a generic message.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Printf("http: %s %s status=%d error=%v", c.Request.Method, c.FullPath(), status, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func classify(err error) (int, string) {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			return http.StatusBadRequest, de.Message
		case domain.KindAuth:
			return http.StatusUnauthorized, de.Message
		case domain.KindForbidden:
			return http.StatusForbidden, de.Message
		case domain.KindNotFound:
			return http.StatusNotFound, de.Message
		case domain.KindProvider:
			if de.CallerCaused {
				return http.StatusBadRequest, de.Message
			}
			return http.StatusInternalServerError, de.Message
		default:
			return http.StatusInternalServerError, internalMessage
		}
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	default:
		return http.StatusInternalServerError, internalMessage
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bindJSON decodes the body into dst and answers 400 on failure, naming the offending field when the
// decoder reports one.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		badRequest(c, "invalid "+field)
		return false
	}
	badRequest(c, "invalid json")
	return false
}
