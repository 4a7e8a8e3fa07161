package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abramau/gavrila/internal/common"
)

// Recovery converts panics into the standard error envelope instead of a
// bare 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("httpapi: panic: %v", r)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
