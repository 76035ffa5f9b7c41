package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihajloslav/fnflx/internal/telegram"
)

const testSubjectID = "3f1c6a0e-5a4b-4a39-9c5e-6f7b8d9e0a1b"

func newInviteService(bot *fakeBot, repo *fakeIdentityRepo) InviteService {
	return NewInviteService(bot, repo, testGroupID)
}

func TestGenerateInvite(t *testing.T) {
	bot := &fakeBot{
		me:         &telegram.User{ID: 999, IsBot: true, Username: "fnflx_bot"},
		members:    map[int64]*telegram.ChatMember{999: {Status: telegram.StatusAdministrator}},
		inviteLink: &telegram.ChatInviteLink{InviteLink: "https://t.me/+abc", MemberLimit: 1},
	}
	repo := &fakeIdentityRepo{upsertUpdated: true}
	svc := newInviteService(bot, repo)

	before := time.Now()
	url, err := svc.GenerateInvite(context.Background(), testSubjectID, "Marko@FON.rs")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+abc", url)

	require.Len(t, bot.createdInvites, 1)
	created := bot.createdInvites[0]
	assert.Equal(t, testGroupID, created.chatID)
	assert.Equal(t, "Invite for marko@fon.rs", created.name)
	assert.Equal(t, 1, created.memberLimit)
	assert.WithinDuration(t, before.Add(24*time.Hour), created.expireAt, 5*time.Second)

	require.Len(t, repo.upserts, 1)
	assert.Equal(t, testSubjectID, repo.upserts[0].subjectID)
	assert.Equal(t, "marko@fon.rs", repo.upserts[0].email)
	assert.Equal(t, "https://t.me/+abc", repo.upserts[0].url)
}

func TestGenerateInviteValidation(t *testing.T) {
	tests := []struct {
		name      string
		subjectID string
		email     string
	}{
		{"missing subject", "", "marko@fon.rs"},
		{"missing email", testSubjectID, ""},
		{"blank email", testSubjectID, "   "},
		{"subject not a uuid", "not-a-uuid", "marko@fon.rs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &fakeBot{}
			svc := newInviteService(bot, &fakeIdentityRepo{})

			_, err := svc.GenerateInvite(context.Background(), tt.subjectID, tt.email)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, bot.createdInvites)
		})
	}
}

func TestGenerateInviteUnknownIdentity(t *testing.T) {
	bot := &fakeBot{}
	repo := &fakeIdentityRepo{upsertUpdated: false}
	svc := newInviteService(bot, repo)

	_, err := svc.GenerateInvite(context.Background(), testSubjectID, "marko@fon.rs")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGenerateInvitePlatformFailure(t *testing.T) {
	apiErr := &telegram.Error{Kind: telegram.KindRejected, Method: "createChatInviteLink", Description: "not enough rights"}
	bot := &fakeBot{inviteErr: apiErr}
	repo := &fakeIdentityRepo{upsertUpdated: true}
	svc := newInviteService(bot, repo)

	_, err := svc.GenerateInvite(context.Background(), testSubjectID, "marko@fon.rs")
	require.Error(t, err)
	assert.Equal(t, apiErr, err)
	assert.Empty(t, repo.upserts)
}

func TestGenerateInviteAdminCheckIsBestEffort(t *testing.T) {
	// The diagnostic must never block issuance; the platform call decides.
	bot := &fakeBot{
		meErr:      &telegram.Error{Kind: telegram.KindTransient, Method: "getMe", Description: "timeout"},
		inviteLink: &telegram.ChatInviteLink{InviteLink: "https://t.me/+xyz"},
	}
	repo := &fakeIdentityRepo{upsertUpdated: true}
	svc := newInviteService(bot, repo)

	url, err := svc.GenerateInvite(context.Background(), testSubjectID, "marko@fon.rs")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+xyz", url)
}

func TestGenerateInviteReissueOverwrites(t *testing.T) {
	bot := &fakeBot{}
	repo := &fakeIdentityRepo{upsertUpdated: true}
	svc := newInviteService(bot, repo)

	_, err := svc.GenerateInvite(context.Background(), testSubjectID, "marko@fon.rs")
	require.NoError(t, err)
	_, err = svc.GenerateInvite(context.Background(), testSubjectID, "marko@fon.rs")
	require.NoError(t, err)

	// Same record targeted both times; the latest link simply replaces it.
	require.Len(t, repo.upserts, 2)
	assert.Equal(t, repo.upserts[0].subjectID, repo.upserts[1].subjectID)
	assert.Equal(t, repo.upserts[0].email, repo.upserts[1].email)
}

func TestGenerateInviteStoreFailure(t *testing.T) {
	bot := &fakeBot{}
	repo := &fakeIdentityRepo{upsertErr: errors.New("connection refused")}
	svc := newInviteService(bot, repo)

	_, err := svc.GenerateInvite(context.Background(), testSubjectID, "marko@fon.rs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store invite link")
}
