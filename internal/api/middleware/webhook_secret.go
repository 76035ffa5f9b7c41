package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebhookSecret rejects webhook calls whose secret-token header does not match
// the value registered with setWebhook. An empty configured secret disables
// the check, matching a deployment behind an opaque URL.
func WebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		got := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			log.Printf("❌ [Webhook] Rejected request with bad secret token - Path: %s", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
			c.Abort()
			return
		}
		c.Next()
	}
}
