package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mihajloslav/fnflx/internal/repository"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

// inviteTTL bounds how long an issued link stays consumable. The platform
// enforces both the expiry and the single-use member limit.
const inviteTTL = 24 * time.Hour

type InviteService interface {
	// GenerateInvite creates a single-use, time-boxed invite link bound to the
	// identity record matching both the subject id and the email, and returns
	// the link URL. Re-issuing overwrites the stored link; the superseded link
	// stays valid on the platform until its own expiry or consumption.
	GenerateInvite(ctx context.Context, subjectID, email string) (string, error)
}

type inviteService struct {
	bot          telegram.BotAPI
	identityRepo repository.IdentityRepository
	groupID      string
}

func NewInviteService(bot telegram.BotAPI, identityRepo repository.IdentityRepository, groupID string) InviteService {
	return &inviteService{bot: bot, identityRepo: identityRepo, groupID: groupID}
}

func (s *inviteService) GenerateInvite(ctx context.Context, subjectID, email string) (string, error) {
	subjectID = strings.TrimSpace(subjectID)
	email = strings.ToLower(strings.TrimSpace(email))
	if subjectID == "" || email == "" {
		return "", fmt.Errorf("%w: subject id and email are required", ErrInvalidInput)
	}
	if _, err := uuid.Parse(subjectID); err != nil {
		return "", fmt.Errorf("%w: subject id must be a UUID", ErrInvalidInput)
	}

	// Best-effort diagnostic only: a failed check never blocks issuance, the
	// createChatInviteLink call itself is the authority.
	s.checkBotAdmin(ctx)

	link, err := s.bot.CreateInviteLink(ctx, s.groupID, "Invite for "+email, 1, time.Now().Add(inviteTTL))
	if err != nil {
		log.Printf("❌ [Invite] Failed to create invite link for %s: %v", email, err)
		return "", err
	}

	updated, err := s.identityRepo.UpsertInviteLink(ctx, subjectID, email, link.InviteLink)
	if err != nil {
		return "", fmt.Errorf("failed to store invite link: %w", err)
	}
	if !updated {
		return "", ErrUserNotFound
	}

	log.Printf("✅ [Invite] Issued invite link for %s", email)
	return link.InviteLink, nil
}

func (s *inviteService) checkBotAdmin(ctx context.Context) {
	me, err := s.bot.GetMe(ctx)
	if err != nil {
		log.Printf("⚠️  [Invite] Could not fetch bot identity for admin check: %v", err)
		return
	}
	member, err := s.bot.GetChatMember(ctx, s.groupID, me.ID)
	if err != nil {
		log.Printf("⚠️  [Invite] Could not check bot status in group: %v", err)
		return
	}
	if member.Status != telegram.StatusAdministrator && member.Status != telegram.StatusCreator {
		log.Printf("⚠️  [Invite] Bot is not admin in group (status: %s), invite creation will likely fail", member.Status)
	}
}
