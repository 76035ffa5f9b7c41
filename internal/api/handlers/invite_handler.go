package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mihajloslav/fnflx/internal/models"
	"github.com/mihajloslav/fnflx/internal/service"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

// ============================================
// Invite Handler
// ============================================

type InviteHandler struct {
	inviteService service.InviteService
}

// Generate issues a single-use invite link for a verified identity. Unlike
// the webhook, this path has a synchronous caller awaiting a definitive
// answer, so failures come back as structured errors with real status codes.
func (h *InviteHandler) Generate(c *gin.Context) {
	var req models.GenerateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing or invalid request fields"})
		return
	}
	if req.Action != "generate_invite" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unsupported action"})
		return
	}

	inviteLink, err := h.inviteService.GenerateInvite(c.Request.Context(), req.Subject(), req.Email)
	if err != nil {
		status := http.StatusInternalServerError
		message := "failed to generate invite link"
		var apiErr *telegram.Error
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			status = http.StatusBadRequest
			message = err.Error()
		case errors.Is(err, service.ErrUserNotFound):
			status = http.StatusNotFound
			message = "no identity record for the given subject and email"
		case errors.As(err, &apiErr):
			status = http.StatusBadGateway
			message = "messaging platform rejected the invite request"
		}
		log.Printf("❌ [Invite] Request for %s failed: %v", req.Email, err)
		c.JSON(status, models.ErrorResponse{Error: message})
		return
	}

	c.JSON(http.StatusOK, models.GenerateInviteResponse{
		Success:    true,
		InviteLink: inviteLink,
		Message:    "Invite link generated successfully",
	})
}
