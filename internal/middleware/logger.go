package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request and recovers from handler panics.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf(
					"panic method=%s path=%s client_ip=%s panic=%v stack=%s",
					c.Request.Method, c.Request.URL.Path, c.ClientIP(), recovered, debug.Stack(),
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "generic",
						"message": "Internal server error",
					},
				})
				c.Abort()
				return
			}

			fields := fmt.Sprintf(
				"status=%d method=%s path=%s client_ip=%s latency=%s",
				c.Writer.Status(), c.Request.Method, c.Request.URL.Path, c.ClientIP(), time.Since(start),
			)
			if c.Writer.Status() >= http.StatusInternalServerError {
				log.Printf("request_error %s errors=%q", fields, c.Errors.String())
			} else {
				log.Printf("request %s", fields)
			}
		}()

		c.Next()
	}
}
