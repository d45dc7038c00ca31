package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/clinic/errors"
	"github.com/kbukum/clinic/logger"
)

// Recovery turns a panic in a handler into a 500 with the standard error
// body and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.WithContext(c.Request.Context()).Error("panic recovered", map[string]interface{}{
				logger.FieldError: fmt.Sprintf("%v", rec),
				"stack":           string(debug.Stack()),
				"method":          c.Request.Method,
				"path":            c.Request.URL.Path,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.Internal(nil).ToResponse())
		}()
		c.Next()
	}
}
