package middleware

import "github.com/gin-gonic/gin"

// SecureHeaders sets conservative security headers on every response.
// Cross-origin resource loading stays allowed so a separately hosted
// frontend can embed product images.
func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}
