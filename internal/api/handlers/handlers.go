package handlers

import (
	"github.com/mihajloslav/fnflx/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Webhook *WebhookHandler
	Invite  *InviteHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Webhook: &WebhookHandler{webhookService: services.Webhook},
		Invite:  &InviteHandler{inviteService: services.Invite},
	}
}
