package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit enforces a request body ceiling before the handler runs.
//
// A declared Content-Length above limit is answered with 413 without reading
// the body. When requireLength is set, requests that do not declare a length
// get 411. The body is additionally wrapped in http.MaxBytesReader so that a
// lying client trips a *http.MaxBytesError while streaming.
func BodyLimit(limit int64, requireLength bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		length := c.Request.ContentLength
		if length < 0 && requireLength {
			c.AbortWithStatus(http.StatusLengthRequired)
			return
		}
		if length > limit {
			c.Header("Connection", "close")
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
