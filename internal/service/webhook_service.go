package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mihajloslav/fnflx/internal/policy"
	"github.com/mihajloslav/fnflx/internal/repository"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

// UpdateKind is the classified shape of an inbound webhook payload. Updates
// decode into exactly one variant, tried in a fixed priority order; everything
// unmatched falls through to UpdateUnrecognized and is acknowledged untouched.
type UpdateKind int

const (
	UpdateUnrecognized UpdateKind = iota
	UpdateAdminCommand
	UpdateMemberJoin
	UpdateLegacyMembers
	UpdateBotStatus
)

// ClassifyUpdate routes an update to its handler variant. First match wins.
func ClassifyUpdate(update *telegram.Update) UpdateKind {
	switch {
	case update == nil:
		return UpdateUnrecognized
	case update.Message != nil && strings.HasPrefix(update.Message.Text, "/"):
		return UpdateAdminCommand
	case update.ChatMember != nil:
		return UpdateMemberJoin
	case update.Message != nil && len(update.Message.NewChatMembers) > 0:
		return UpdateLegacyMembers
	case update.MyChatMember != nil:
		return UpdateBotStatus
	default:
		return UpdateUnrecognized
	}
}

type WebhookService interface {
	// HandleUpdate processes one inbound event. Events are independent and
	// safely repeatable; the platform may redeliver them. An error is returned
	// only for an internal fault on an event that was classified as requiring
	// action - everything else is handled or deliberately ignored.
	HandleUpdate(ctx context.Context, update *telegram.Update) error
}

type webhookService struct {
	bot          telegram.BotAPI
	identityRepo repository.IdentityRepository
	commands     CommandService
	groupID      string
	botID        int64
}

func NewWebhookService(bot telegram.BotAPI, identityRepo repository.IdentityRepository, commands CommandService, groupID string, botID int64) WebhookService {
	return &webhookService{
		bot:          bot,
		identityRepo: identityRepo,
		commands:     commands,
		groupID:      groupID,
		botID:        botID,
	}
}

func (s *webhookService) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	switch ClassifyUpdate(update) {
	case UpdateAdminCommand:
		return s.commands.Handle(ctx, update.Message)

	case UpdateMemberJoin:
		return s.handleMemberJoin(ctx, update.ChatMember)

	case UpdateLegacyMembers:
		return s.handleLegacyMembers(ctx, update.Message)

	case UpdateBotStatus:
		cm := update.MyChatMember
		log.Printf("ℹ️  [Webhook] Bot status in chat %d changed to %s", cm.Chat.ID, cm.NewChatMember.Status)
		return nil

	default:
		return nil
	}
}

func (s *webhookService) handleMemberJoin(ctx context.Context, cm *telegram.ChatMemberUpdated) error {
	if fmt.Sprintf("%d", cm.Chat.ID) != s.groupID {
		log.Printf("ℹ️  [Webhook] Ignoring chat_member update from other chat %d", cm.Chat.ID)
		return nil
	}
	if cm.NewChatMember.Status != telegram.StatusMember {
		return nil
	}

	inviteLink := ""
	if cm.InviteLink != nil {
		inviteLink = cm.InviteLink.InviteLink
	}
	return s.enforce(ctx, cm.NewChatMember.User, inviteLink)
}

func (s *webhookService) handleLegacyMembers(ctx context.Context, msg *telegram.Message) error {
	if fmt.Sprintf("%d", msg.Chat.ID) != s.groupID {
		return nil
	}
	for _, member := range msg.NewChatMembers {
		if err := s.enforce(ctx, member, ""); err != nil {
			return err
		}
	}
	return nil
}

// enforce runs the authorization policy for one joining user and applies the
// outcome. Failures of the kick or the registry update are logged and the
// event still acks, because re-running a kick off redelivered stale event
// data is not safe. A failed denial notice never masks the kick it describes.
func (s *webhookService) enforce(ctx context.Context, user telegram.User, inviteLink string) error {
	lookup := func(ctx context.Context, username string) (bool, error) {
		record, err := s.identityRepo.FindByUsername(ctx, username)
		if err != nil {
			return false, err
		}
		return record != nil, nil
	}

	decision, err := policy.Decide(ctx, user, lookup)
	if err != nil {
		return fmt.Errorf("authorization lookup failed for %q: %w", user.Username, err)
	}

	switch decision.Outcome {
	case policy.Ignore:
		log.Printf("ℹ️  [Webhook] Skipping bot user %s (ID: %d)", user.FullName(), user.ID)
		return nil

	case policy.Deny:
		// Independent self check by id, beyond the is_bot flag the policy saw.
		if user.ID == s.botID {
			log.Printf("ℹ️  [Webhook] Skipping self (bot ID: %d)", user.ID)
			return nil
		}
		s.kickAndNotify(ctx, user, decision.Reason)
		return nil

	case policy.Admit:
		log.Printf("✅ [Webhook] Authorized user joined: %s (@%s)", user.FullName(), user.Username)
		if inviteLink != "" {
			s.markVerified(ctx, inviteLink)
		}
		return nil
	}
	return nil
}

func (s *webhookService) kickAndNotify(ctx context.Context, user telegram.User, reason policy.DenyReason) {
	log.Printf("🚫 [Webhook] Removing unauthorized user %s (@%s, ID: %d): %s",
		user.FullName(), user.Username, user.ID, reason)

	if err := s.bot.KickMember(ctx, s.groupID, user.ID); err != nil {
		log.Printf("❌ [Webhook] Failed to kick user %d: %v", user.ID, err)
	}

	username := "no username"
	requirement := "The user must have a Telegram username to access the group."
	if reason == policy.ReasonNotRegistered {
		username = "@" + user.Username
		requirement = "The user must sign up with a faculty email to access the group."
	}
	notice := "🚫 *USER REMOVED*\n\n" +
		fmt.Sprintf("👤 *Name:* %s\n", user.FullName()) +
		fmt.Sprintf("🆔 *ID:* %d\n", user.ID) +
		fmt.Sprintf("👨‍💻 *Username:* %s\n", username) +
		fmt.Sprintf("❌ *Reason:* %s\n\n", reason) +
		"⚠️ " + requirement

	// Advisory only; a send failure never undoes or fails the enforcement.
	if err := s.bot.SendMessage(ctx, s.groupID, notice); err != nil {
		log.Printf("⚠️  [Webhook] Failed to send removal notice for user %d: %v", user.ID, err)
	}
}

func (s *webhookService) markVerified(ctx context.Context, inviteLink string) {
	updated, err := s.identityRepo.MarkVerifiedByInviteLink(ctx, inviteLink)
	if err != nil {
		log.Printf("❌ [Webhook] Failed to mark invite link as used: %v", err)
		return
	}
	if !updated {
		log.Printf("⚠️  [Webhook] No identity record holds invite link %s", inviteLink)
		return
	}
	log.Printf("✅ [Webhook] Marked user as verified for invite link %s", inviteLink)
}
