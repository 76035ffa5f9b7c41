package telegram

// ============================================
// Bot API Types
// ============================================

// User is a Telegram user or bot.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// FullName joins first and last name the way Telegram displays them.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// ChatMember describes a user's standing in a chat. Status is one of
// creator, administrator, member, restricted, left, kicked.
type ChatMember struct {
	User   User   `json:"user"`
	Status string `json:"status"`
}

type ChatInviteLink struct {
	InviteLink  string `json:"invite_link"`
	Name        string `json:"name,omitempty"`
	MemberLimit int    `json:"member_limit,omitempty"`
	ExpireDate  int64  `json:"expire_date,omitempty"`
}

type Message struct {
	MessageID      int64  `json:"message_id"`
	From           *User  `json:"from,omitempty"`
	Chat           Chat   `json:"chat"`
	Text           string `json:"text,omitempty"`
	NewChatMembers []User `json:"new_chat_members,omitempty"`
}

// ChatMemberUpdated is delivered when a member's status changes. When the
// member joined through an invite link, Telegram attaches the consumed link.
type ChatMemberUpdated struct {
	Chat          Chat            `json:"chat"`
	From          User            `json:"from"`
	OldChatMember *ChatMember     `json:"old_chat_member,omitempty"`
	NewChatMember ChatMember      `json:"new_chat_member"`
	InviteLink    *ChatInviteLink `json:"invite_link,omitempty"`
}

// Update is a single inbound webhook payload. Exactly one of the optional
// fields is set per delivery; a body with none of them is unrecognized.
type Update struct {
	UpdateID     *int64             `json:"update_id,omitempty"`
	Message      *Message           `json:"message,omitempty"`
	ChatMember   *ChatMemberUpdated `json:"chat_member,omitempty"`
	MyChatMember *ChatMemberUpdated `json:"my_chat_member,omitempty"`
}

// Member statuses that count as privileged for admin commands.
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
	StatusMember        = "member"
)
