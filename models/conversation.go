package models

// Conversation is the derived, per-match summary shown in the chat list.
// It is recomputed wholesale on every change notification and never mutated
// in place.
type Conversation struct {
	MatchID     string      `json:"matchId"`
	UserID      string      `json:"userId"` // the counterpart
	User        UserSummary `json:"user"`
	LastMessage *Message    `json:"lastMessage,omitempty"`
	UnreadCount int         `json:"unreadCount"`
	UpdatedAt   string      `json:"updatedAt"` // LastMessage.CreatedAt, else Match.CreatedAt
}
