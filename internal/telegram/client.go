// Package telegram is a thin typed wrapper over the Telegram Bot API. It does
// request/response mapping and error classification only; it never retries.
// Every mutating call is an at-most-once network effect: on an ambiguous
// failure (timeout after the request went out) callers must not re-issue it.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies a failed Bot API call.
type ErrorKind string

const (
	// KindTransient covers network faults and platform 5xx responses.
	KindTransient ErrorKind = "transient-network"
	// KindRejected covers credential, permission and bad-parameter rejections.
	KindRejected ErrorKind = "platform-rejected"
	// KindNotFound covers unknown chats, users and members.
	KindNotFound ErrorKind = "not-found"
)

// Error is a classified Bot API failure.
type Error struct {
	Kind        ErrorKind
	Method      string
	StatusCode  int
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("telegram %s: %s (%s)", e.Method, e.Description, e.Kind)
}

// BotAPI is the operation surface services depend on; tests substitute fakes.
type BotAPI interface {
	GetMe(ctx context.Context) (*User, error)
	GetChatMember(ctx context.Context, chatID string, userID int64) (*ChatMember, error)
	GetChatAdministrators(ctx context.Context, chatID string) ([]ChatMember, error)
	GetChatMemberCount(ctx context.Context, chatID string) (int, error)
	CreateInviteLink(ctx context.Context, chatID, name string, memberLimit int, expireAt time.Time) (*ChatInviteLink, error)
	KickMember(ctx context.Context, chatID string, userID int64) error
	SendMessage(ctx context.Context, chatID string, text string) error
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a Bot API client. The client timeout is the only bound on
// outbound platform calls; callers do not poll.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.telegram.org",
		token:      token,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// apiResponse is the Bot API envelope shared by every method.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	var body bytes.Buffer
	if params != nil {
		if err := json.NewEncoder(&body).Encode(params); err != nil {
			return &Error{Kind: KindRejected, Method: method, Description: err.Error()}
		}
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return &Error{Kind: KindRejected, Method: method, Description: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransient, Method: method, Description: err.Error()}
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &Error{Kind: KindTransient, Method: method, StatusCode: resp.StatusCode, Description: "invalid response body: " + err.Error()}
	}

	if !envelope.OK {
		return &Error{
			Kind:        classify(envelope.ErrorCode, envelope.Description),
			Method:      method,
			StatusCode:  envelope.ErrorCode,
			Description: envelope.Description,
		}
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return &Error{Kind: KindTransient, Method: method, Description: "invalid result payload: " + err.Error()}
		}
	}
	return nil
}

func classify(errorCode int, description string) ErrorKind {
	switch {
	case errorCode >= 500:
		return KindTransient
	case errorCode == http.StatusNotFound:
		return KindNotFound
	case strings.Contains(strings.ToLower(description), "not found"):
		return KindNotFound
	default:
		return KindRejected
	}
}

// IsNotFound reports whether err is a not-found Bot API failure.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Kind == KindNotFound
}

// ============================================
// Operations
// ============================================

func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "getMe", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetChatMember(ctx context.Context, chatID string, userID int64) (*ChatMember, error) {
	params := map[string]any{"chat_id": chatID, "user_id": userID}
	var member ChatMember
	if err := c.call(ctx, "getChatMember", params, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) GetChatAdministrators(ctx context.Context, chatID string) ([]ChatMember, error) {
	params := map[string]any{"chat_id": chatID}
	var admins []ChatMember
	if err := c.call(ctx, "getChatAdministrators", params, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (c *Client) GetChatMemberCount(ctx context.Context, chatID string) (int, error) {
	params := map[string]any{"chat_id": chatID}
	var count int
	if err := c.call(ctx, "getChatMemberCount", params, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateInviteLink creates a fresh invite link. The platform, not this
// service, enforces the member limit and expiry on consumption.
func (c *Client) CreateInviteLink(ctx context.Context, chatID, name string, memberLimit int, expireAt time.Time) (*ChatInviteLink, error) {
	params := map[string]any{
		"chat_id":      chatID,
		"name":         name,
		"member_limit": memberLimit,
		"expire_date":  expireAt.Unix(),
	}
	var link ChatInviteLink
	if err := c.call(ctx, "createChatInviteLink", params, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// KickMember removes a member from the chat. banChatMember is the current
// name of the legacy kickChatMember call.
func (c *Client) KickMember(ctx context.Context, chatID string, userID int64) error {
	params := map[string]any{"chat_id": chatID, "user_id": userID}
	return c.call(ctx, "banChatMember", params, nil)
}

func (c *Client) SendMessage(ctx context.Context, chatID string, text string) error {
	params := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	return c.call(ctx, "sendMessage", params, nil)
}
