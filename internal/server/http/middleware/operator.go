package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/stampcard/internal/pkg/auth"
)

// OperatorKeyHeader carries the shared staff key.
const OperatorKeyHeader = "X-Operator-Key"

// KeyVerifier checks an operator key.
type KeyVerifier interface {
	Verify(key string) error
}

// OperatorRequired rejects requests that do not present a valid operator key.
func OperatorRequired(verifier KeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := verifier.Verify(c.GetHeader(OperatorKeyHeader))
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, pkgAuth.ErrInvalidKey):
			c.AbortWithStatus(http.StatusUnauthorized)
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}
