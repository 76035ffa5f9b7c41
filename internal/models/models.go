package models

// ============================================
// Invite DTOs
// ============================================

// GenerateInviteRequest is the frontend-facing invite request. The original
// client posted the subject identifier as user_id; both keys are accepted.
type GenerateInviteRequest struct {
	Action    string `json:"action" binding:"required"`
	SubjectID string `json:"subject_id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email" binding:"required,email"`
}

// Subject returns whichever subject identifier key the caller used.
func (r GenerateInviteRequest) Subject() string {
	if r.SubjectID != "" {
		return r.SubjectID
	}
	return r.UserID
}

type GenerateInviteResponse struct {
	Success    bool   `json:"success"`
	InviteLink string `json:"invite_link"`
	Message    string `json:"message,omitempty"`
}

// ============================================
// Webhook DTOs
// ============================================

type WebhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
