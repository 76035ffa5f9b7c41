package service

import (
	"context"
	"strings"
	"time"

	"github.com/mihajloslav/fnflx/internal/repository"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

// ============================================
// Bot API fake
// ============================================

type createdInvite struct {
	chatID      string
	name        string
	memberLimit int
	expireAt    time.Time
}

type fakeBot struct {
	me          *telegram.User
	meErr       error
	members     map[int64]*telegram.ChatMember
	memberErr   error
	admins      []telegram.ChatMember
	adminsErr   error
	memberCount int
	inviteLink  *telegram.ChatInviteLink
	inviteErr   error
	kickErr     error
	sendErr     error

	kicked         []int64
	sent           []string
	createdInvites []createdInvite
	adminListCalls int
}

func (f *fakeBot) GetMe(ctx context.Context) (*telegram.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.me == nil {
		return &telegram.User{ID: 999, IsBot: true, Username: "fnflx_bot"}, nil
	}
	return f.me, nil
}

func (f *fakeBot) GetChatMember(ctx context.Context, chatID string, userID int64) (*telegram.ChatMember, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	if member, found := f.members[userID]; found {
		return member, nil
	}
	return nil, &telegram.Error{Kind: telegram.KindNotFound, Method: "getChatMember", Description: "user not found"}
}

func (f *fakeBot) GetChatAdministrators(ctx context.Context, chatID string) ([]telegram.ChatMember, error) {
	f.adminListCalls++
	if f.adminsErr != nil {
		return nil, f.adminsErr
	}
	return f.admins, nil
}

func (f *fakeBot) GetChatMemberCount(ctx context.Context, chatID string) (int, error) {
	return f.memberCount, nil
}

func (f *fakeBot) CreateInviteLink(ctx context.Context, chatID, name string, memberLimit int, expireAt time.Time) (*telegram.ChatInviteLink, error) {
	if f.inviteErr != nil {
		return nil, f.inviteErr
	}
	f.createdInvites = append(f.createdInvites, createdInvite{chatID: chatID, name: name, memberLimit: memberLimit, expireAt: expireAt})
	if f.inviteLink == nil {
		return &telegram.ChatInviteLink{InviteLink: "https://t.me/+generated", MemberLimit: memberLimit}, nil
	}
	return f.inviteLink, nil
}

func (f *fakeBot) KickMember(ctx context.Context, chatID string, userID int64) error {
	f.kicked = append(f.kicked, userID)
	return f.kickErr
}

func (f *fakeBot) SendMessage(ctx context.Context, chatID string, text string) error {
	f.sent = append(f.sent, text)
	return f.sendErr
}

// ============================================
// Identity repository fake
// ============================================

type upsertCall struct {
	subjectID string
	email     string
	url       string
}

type fakeIdentityRepo struct {
	records   []*repository.IdentityRecord
	findErr   error
	listErr   error
	countErr  error
	upsertErr error
	verifyErr error

	upsertUpdated bool
	verifyUpdated bool
	counts        func(repository.CountFilter) int

	upserts    []upsertCall
	verified   []string
	queryCalls int
}

func (f *fakeIdentityRepo) FindByUsername(ctx context.Context, username string) (*repository.IdentityRecord, error) {
	f.queryCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, rec := range f.records {
		if rec.TelegramUsername != nil && strings.EqualFold(*rec.TelegramUsername, username) {
			return rec, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityRepo) FindByEmail(ctx context.Context, email string) (*repository.IdentityRecord, error) {
	f.queryCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, rec := range f.records {
		if strings.EqualFold(rec.Email, email) {
			return rec, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityRepo) UpsertInviteLink(ctx context.Context, subjectID, email, url string) (bool, error) {
	f.queryCalls++
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{subjectID: subjectID, email: email, url: url})
	return f.upsertUpdated, nil
}

func (f *fakeIdentityRepo) MarkVerifiedByInviteLink(ctx context.Context, url string) (bool, error) {
	f.queryCalls++
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	f.verified = append(f.verified, url)
	return f.verifyUpdated, nil
}

func (f *fakeIdentityRepo) Count(ctx context.Context, filter repository.CountFilter) (int, error) {
	f.queryCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	if f.counts == nil {
		return 0, nil
	}
	return f.counts(filter), nil
}

func (f *fakeIdentityRepo) ListUsernames(ctx context.Context) ([]string, error) {
	f.queryCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var usernames []string
	for _, rec := range f.records {
		if rec.TelegramUsername != nil {
			usernames = append(usernames, strings.ToLower(*rec.TelegramUsername))
		}
	}
	return usernames, nil
}

func strPtr(s string) *string { return &s }
