package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihajloslav/fnflx/internal/service"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

type fakeInviteService struct {
	url       string
	err       error
	subjectID string
	email     string
	calls     int
}

func (f *fakeInviteService) GenerateInvite(ctx context.Context, subjectID, email string) (string, error) {
	f.calls++
	f.subjectID = subjectID
	f.email = email
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func postInvite(svc *fakeInviteService, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &InviteHandler{inviteService: svc}
	r.POST("/api/invite", h.Generate)

	req := httptest.NewRequest(http.MethodPost, "/api/invite", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateInviteSuccess(t *testing.T) {
	svc := &fakeInviteService{url: "https://t.me/+abc"}

	w := postInvite(svc, `{"action": "generate_invite", "subject_id": "uuid-here", "email": "marko@fon.rs"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"invite_link":"https://t.me/+abc"`)
	assert.Equal(t, "uuid-here", svc.subjectID)
	assert.Equal(t, "marko@fon.rs", svc.email)
}

func TestGenerateInviteAcceptsLegacyUserIDKey(t *testing.T) {
	svc := &fakeInviteService{url: "https://t.me/+abc"}

	w := postInvite(svc, `{"action": "generate_invite", "user_id": "uuid-here", "email": "marko@fon.rs"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uuid-here", svc.subjectID)
}

func TestGenerateInviteRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"action":`},
		{"missing action", `{"email": "marko@fon.rs"}`},
		{"unknown action", `{"action": "delete_everything", "email": "marko@fon.rs"}`},
		{"missing email", `{"action": "generate_invite", "subject_id": "x"}`},
		{"invalid email", `{"action": "generate_invite", "subject_id": "x", "email": "not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeInviteService{}
			w := postInvite(svc, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
			assert.Zero(t, svc.calls)
		})
	}
}

func TestGenerateInviteErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest},
		{"unknown identity", service.ErrUserNotFound, http.StatusNotFound},
		{
			"platform rejection",
			&telegram.Error{Kind: telegram.KindRejected, Method: "createChatInviteLink", Description: "not enough rights"},
			http.StatusBadGateway,
		},
		{"internal fault", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeInviteService{err: tt.err}
			w := postInvite(svc, `{"action": "generate_invite", "subject_id": "x", "email": "marko@fon.rs"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), "error")
		})
	}
}
