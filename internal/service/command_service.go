package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mihajloslav/fnflx/internal/repository"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

// maxMessageLength is the per-message character budget; longer reports are
// chunked on line boundaries before sending.
const maxMessageLength = 4000

const refusalMessage = "❌ This command is available to admins only."

type CommandService interface {
	// Handle processes one slash command from the configured group. The sender's
	// privilege is re-checked live on every invocation; unauthorized senders get
	// a fixed refusal and nothing is queried on their behalf.
	Handle(ctx context.Context, msg *telegram.Message) error
}

type commandService struct {
	bot          telegram.BotAPI
	identityRepo repository.IdentityRepository
	groupID      string
	chunkDelay   time.Duration
}

func NewCommandService(bot telegram.BotAPI, identityRepo repository.IdentityRepository, groupID string) CommandService {
	return &commandService{
		bot:          bot,
		identityRepo: identityRepo,
		groupID:      groupID,
		chunkDelay:   500 * time.Millisecond,
	}
}

func (s *commandService) Handle(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.From == nil {
		return nil
	}
	chatID := fmt.Sprintf("%d", msg.Chat.ID)
	if chatID != s.groupID {
		return nil
	}

	isAdmin, err := s.isAdmin(ctx, msg.From.ID)
	if err != nil {
		log.Printf("❌ [Command] Failed to check admin status for %d: %v", msg.From.ID, err)
		return nil
	}
	if !isAdmin {
		// Fail closed: no data is queried for unauthorized senders.
		s.send(ctx, refusalMessage)
		return nil
	}

	command, arg := ParseCommand(msg.Text)
	switch command {
	case "/status":
		s.handleStatus(ctx)
	case "/check":
		s.handleCheck(ctx, arg)
	case "/purge":
		s.handlePurge(ctx)
	case "/members":
		s.handleMembers(ctx)
	case "/help":
		s.handleHelp(ctx)
	default:
		// Not a recognized admin command, ignore
	}
	return nil
}

// ParseCommand splits a message into the command literal and its first
// argument. A "@botname" suffix on the command is stripped, since Telegram
// appends it in groups.
func ParseCommand(text string) (command, arg string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	command = strings.ToLower(fields[0])
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	if len(fields) > 1 {
		arg = fields[1]
	}
	return command, arg
}

func (s *commandService) isAdmin(ctx context.Context, userID int64) (bool, error) {
	member, err := s.bot.GetChatMember(ctx, s.groupID, userID)
	if err != nil {
		return false, err
	}
	return member.Status == telegram.StatusCreator || member.Status == telegram.StatusAdministrator, nil
}

// ============================================
// /status
// ============================================

func (s *commandService) handleStatus(ctx context.Context) {
	// Counts are computed independently so one stale denominator cannot
	// silently poison the rest of the report.
	totalUsers := s.count(ctx, repository.CountFilter{})
	usersWithUsername := s.count(ctx, repository.CountFilter{HasUsername: true})
	verifiedUsers := s.count(ctx, repository.CountFilter{Verified: true})
	usersWithInviteLink := s.count(ctx, repository.CountFilter{HasInviteLink: true})

	yesterday := time.Now().Add(-24 * time.Hour)
	recentInvites := s.count(ctx, repository.CountFilter{HasInviteLink: true, UpdatedSince: &yesterday})

	memberCount, err := s.bot.GetChatMemberCount(ctx, s.groupID)
	if err != nil {
		log.Printf("⚠️  [Command] Failed to get group member count: %v", err)
		memberCount = 0
	}

	report := "📊 *STATUS REPORT*\n\n" +
		"👥 *Database:*\n" +
		fmt.Sprintf("• Total users: %d\n", totalUsers) +
		fmt.Sprintf("• With Telegram username: %d\n", usersWithUsername) +
		fmt.Sprintf("• Verified (in group): %d\n", verifiedUsers) +
		fmt.Sprintf("• With invite link: %d\n\n", usersWithInviteLink) +
		"💬 *Telegram group:*\n" +
		fmt.Sprintf("• Total members: %d\n\n", memberCount) +
		"⚠️ *Potential problems:*\n" +
		fmt.Sprintf("• Without username: %d\n", clampZero(totalUsers-usersWithUsername)) +
		fmt.Sprintf("• Unverified: %d\n\n", clampZero(usersWithUsername-verifiedUsers)) +
		"📈 *Last 24h:*\n" +
		fmt.Sprintf("• New invite links: %d\n\n", recentInvites) +
		"ℹ️ *Notes:*\n" +
		"• Telegram restricts access to the full member list\n" +
		"• The bot removes unauthorized members automatically\n" +
		"• Use `/check @username` to inspect a user\n" +
		"• Use `/purge` for a reconciliation report"

	s.sendChunked(ctx, report)
}

// clampZero keeps racy independent counts from rendering a negative
// difference; both raw numbers are already in the report.
func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (s *commandService) count(ctx context.Context, filter repository.CountFilter) int {
	n, err := s.identityRepo.Count(ctx, filter)
	if err != nil {
		log.Printf("⚠️  [Command] Count query failed: %v", err)
		return 0
	}
	return n
}

// ============================================
// /check
// ============================================

func (s *commandService) handleCheck(ctx context.Context, arg string) {
	if arg == "" {
		s.send(ctx, "❌ *INVALID COMMAND*\n\n"+
			"Usage: `/check @username`\n"+
			"Example: `/check @marko123`")
		return
	}
	username := strings.TrimPrefix(arg, "@")

	record, err := s.identityRepo.FindByUsername(ctx, username)
	if err != nil {
		log.Printf("❌ [Command] Check lookup failed for %s: %v", username, err)
		s.send(ctx, "❌ Error while checking the user.")
		return
	}
	if record == nil {
		s.send(ctx, "❌ *USER NOT FOUND*\n\n"+
			fmt.Sprintf("User `@%s` was not found in the database.\n\n", username)+
			"Possible reasons:\n"+
			"• The user has not signed up with a faculty email\n"+
			"• The username is misspelled\n"+
			"• The user has not entered a Telegram username")
		return
	}

	// The admin list is the only membership signal the Bot API exposes, so
	// presence can be confirmed but absence can never be.
	confidence := "❓ Unknown (cannot verify non-admin members)"
	if s.isGroupAdminByUsername(ctx, username) {
		confidence = "✅ Confirmed (group admin)"
	}

	hasInviteLink := "❌ No"
	if record.InviteLink != nil {
		hasInviteLink = "✅ Yes"
	}
	verified := "❌ No"
	if record.Added {
		verified = "✅ Yes"
	}

	info := "👤 *USER INFO*\n\n" +
		fmt.Sprintf("💬 *Telegram:* @%s\n", username) +
		fmt.Sprintf("📅 *Registered:* %s\n", record.CreatedAt.Format("02.01.2006")) +
		fmt.Sprintf("🔄 *Last updated:* %s\n", record.UpdatedAt.Format("02.01.2006")) +
		fmt.Sprintf("🔗 *Has invite link:* %s\n", hasInviteLink) +
		fmt.Sprintf("✔️ *Verified:* %s\n", verified) +
		fmt.Sprintf("👥 *Group membership:* %s", confidence)

	s.send(ctx, info)
}

func (s *commandService) isGroupAdminByUsername(ctx context.Context, username string) bool {
	admins, err := s.bot.GetChatAdministrators(ctx, s.groupID)
	if err != nil {
		log.Printf("⚠️  [Command] Failed to fetch administrators: %v", err)
		return false
	}
	for _, admin := range admins {
		if strings.EqualFold(admin.User.Username, username) {
			return true
		}
	}
	return false
}

// ============================================
// /purge
// ============================================

func (s *commandService) handlePurge(ctx context.Context) {
	admins, err := s.bot.GetChatAdministrators(ctx, s.groupID)
	if err != nil || len(admins) == 0 {
		if err != nil {
			log.Printf("⚠️  [Command] Failed to fetch administrators: %v", err)
		}
		s.send(ctx, "❌ *Could not fetch the member list*\n\n"+
			"Telegram restricts access to the full member list.\n"+
			"New members are checked automatically when they join.\n\n"+
			"🤖 *Automatic protection is active:*\n"+
			"• New members without a username are removed automatically\n"+
			"• New members missing from the database are removed automatically")
		return
	}

	registered, err := s.registeredUsernames(ctx)
	if err != nil {
		log.Printf("❌ [Command] Failed to load registered usernames: %v", err)
		s.send(ctx, "❌ Error while building the reconciliation report.")
		return
	}

	var problematic []telegram.ChatMember
	for _, admin := range admins {
		if admin.User.IsBot {
			continue
		}
		if admin.User.Username == "" || !registered[strings.ToLower(admin.User.Username)] {
			problematic = append(problematic, admin)
		}
	}

	if len(problematic) == 0 {
		s.send(ctx, "✅ No problematic members in the visible (admin) list!\n\n"+
			"ℹ️ Ordinary members cannot be enumerated, so this covers admins only.")
		return
	}

	report := fmt.Sprintf("⚠️ *PROBLEMATIC MEMBERS* (%d)\n\n", len(problematic)) +
		"Administrators not matched in the database:\n\n"
	for i, member := range problematic {
		reason := "Username not in the database"
		username := "no username"
		if member.User.Username == "" {
			reason = "No username"
		} else {
			username = "@" + member.User.Username
		}
		report += fmt.Sprintf("%d. 👤 *%s*\n", i+1, member.User.FullName())
		report += fmt.Sprintf("   🆔 ID: %d\n", member.User.ID)
		report += fmt.Sprintf("   👨‍💻 Username: %s\n", username)
		report += fmt.Sprintf("   ❌ Reason: %s\n\n", reason)
	}
	report += "ℹ️ Only administrators are visible to the bot; this report is\n" +
		"partial information, not a full unauthorized-member list.\n" +
		"🤖 *New problematic members are removed automatically on join*"

	s.sendChunked(ctx, report)
}

func (s *commandService) registeredUsernames(ctx context.Context) (map[string]bool, error) {
	usernames, err := s.identityRepo.ListUsernames(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		set[strings.ToLower(u)] = true
	}
	return set, nil
}

// ============================================
// /members
// ============================================

func (s *commandService) handleMembers(ctx context.Context) {
	members, err := s.bot.GetChatAdministrators(ctx, s.groupID)
	if err != nil || len(members) == 0 {
		if err != nil {
			log.Printf("⚠️  [Command] Failed to fetch administrators: %v", err)
		}
		s.send(ctx, "❌ *Could not fetch the member list*\n\n"+
			"Telegram restricts access to the full member list.\n"+
			"The bot may lack permissions, or the group is too large.\n\n"+
			"Alternatively you can use:\n"+
			"• `/check @username` - inspect a specific user\n"+
			"• `/status` - basic statistics")
		return
	}

	registered, err := s.registeredUsernames(ctx)
	if err != nil {
		log.Printf("❌ [Command] Failed to load registered usernames: %v", err)
		registered = map[string]bool{}
	}

	report := fmt.Sprintf("👥 *GROUP MEMBERS* (%d visible)\n\n", len(members))
	for i, member := range members {
		username := "no username"
		if member.User.Username != "" {
			username = "@" + member.User.Username
		}
		inDB := member.User.Username != "" && registered[strings.ToLower(member.User.Username)]

		icon := "❌"
		annotation := "Not in the database"
		switch {
		case member.User.Username == "":
			icon = "⚠️"
			annotation = "No username"
		case inDB:
			icon = "✅"
			annotation = "Registered"
		}

		report += fmt.Sprintf("%d. %s *%s*\n", i+1, icon, member.User.FullName())
		report += fmt.Sprintf("   👤 %s\n", username)
		report += fmt.Sprintf("   🆔 %d\n", member.User.ID)
		report += fmt.Sprintf("   📊 %s\n", member.Status)
		report += fmt.Sprintf("   %s %s\n\n", icon, annotation)
	}
	report += "ℹ️ Only administrators are visible; ordinary members cannot be listed."

	s.sendChunked(ctx, report)
}

// ============================================
// /help
// ============================================

func (s *commandService) handleHelp(ctx context.Context) {
	help := "🤖 *ADMIN COMMANDS*\n\n" +
		"📊 */status* - system report\n" +
		"• Database statistics\n" +
		"• Group member count\n" +
		"• Potential problems\n" +
		"• Activity in the last 24h\n\n" +
		"👥 */members* - visible group members\n" +
		"• Names, usernames and IDs\n" +
		"• Verification status per entry\n\n" +
		"🧹 */purge* - reconciliation report\n" +
		"• Visible members missing from the database\n" +
		"• Members without a username\n\n" +
		"👤 */check @username* - inspect a user\n" +
		"• Registration and verification status\n" +
		"• Group-membership confidence\n\n" +
		"❓ */help* - show this message\n\n" +
		"ℹ️ *Notes:*\n" +
		"• All commands are admin-only\n" +
		"• Unauthorized members are removed automatically\n" +
		"• Group access requires a faculty email and a Telegram username"

	s.send(ctx, help)
}

// ============================================
// Sending
// ============================================

func (s *commandService) send(ctx context.Context, text string) {
	if err := s.bot.SendMessage(ctx, s.groupID, text); err != nil {
		log.Printf("⚠️  [Command] Failed to send message: %v", err)
	}
}

func (s *commandService) sendChunked(ctx context.Context, text string) {
	chunks := SplitMessage(text, maxMessageLength)
	for i, chunk := range chunks {
		if i > 0 {
			// Courtesy pause so multi-part reports do not trip flood limits.
			time.Sleep(s.chunkDelay)
		}
		s.send(ctx, chunk)
	}
}

// SplitMessage splits text into chunks of at most maxLength characters,
// breaking only on line boundaries.
func SplitMessage(text string, maxLength int) []string {
	var chunks []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if current.Len() > 0 && current.Len()+len(line)+1 > maxLength {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}
