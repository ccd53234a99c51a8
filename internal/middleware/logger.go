package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs each request line and recovers from panics, turning
// them into a 500 without killing the worker.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				log.Printf(
					"panic method=%s path=%s client_ip=%s user_id=%d error=%q stack=%s",
					c.Request.Method, c.Request.URL.Path, c.ClientIP(),
					c.GetInt64("user_id"), err.Error(), string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":      500,
					"message":   "internal server error",
					"success":   false,
					"timestamp": time.Now().UnixMilli(),
				})
				return
			}

			log.Printf(
				"request status=%d method=%s path=%s client_ip=%s user_id=%d latency=%s",
				c.Writer.Status(), c.Request.Method, c.Request.URL.Path,
				c.ClientIP(), c.GetInt64("user_id"), time.Since(start),
			)
		}()

		c.Next()
	}
}
