package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mihajloslav/fnflx/internal/models"
	"github.com/mihajloslav/fnflx/internal/service"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

// ============================================
// Webhook Handler
// ============================================

type WebhookHandler struct {
	webhookService service.WebhookService
}

// Handle acknowledges every parsable payload. Telegram retries failed
// deliveries, so the only rejection is malformed JSON (which it never
// retries the same way): erroring on recognized events would only cause
// redelivery of data we already acted on.
func (h *WebhookHandler) Handle(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid JSON"})
		return
	}

	if err := h.webhookService.HandleUpdate(c.Request.Context(), &update); err != nil {
		log.Printf("❌ [Webhook] Processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, models.WebhookAck{Success: true})
}
