package service

import (
	"errors"

	"github.com/mihajloslav/fnflx/internal/config"
	"github.com/mihajloslav/fnflx/internal/repository"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Invite  InviteService
	Command CommandService
	Webhook WebhookService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config *config.Config
	Repos  *repository.Repositories
	Bot    telegram.BotAPI
	// BotID is the bot's own user id, fetched once at startup. The bot's
	// identity does not change at runtime, so it is never re-fetched per event.
	BotID int64
}

func NewServices(deps *ServiceDeps) *Services {
	commandService := NewCommandService(deps.Bot, deps.Repos.IdentityRepo, deps.Config.GroupID)

	return &Services{
		Invite:  NewInviteService(deps.Bot, deps.Repos.IdentityRepo, deps.Config.GroupID),
		Command: commandService,
		Webhook: NewWebhookService(deps.Bot, deps.Repos.IdentityRepo, commandService, deps.Config.GroupID, deps.BotID),
	}
}
