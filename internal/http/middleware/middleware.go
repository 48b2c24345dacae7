// Package middleware holds gin middleware that depends on the application logger.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"phonebook_backend/platform/httpkit"
	"phonebook_backend/platform/logger"
)

// Recovery turns a panic into a 500 envelope and logs it with the request ID.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithContext(c.Request.Context()).Error("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
		)
		httpkit.Error(c, http.StatusInternalServerError, "internal server error", nil)
	})
}
