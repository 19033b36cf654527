package models

type Message struct {
	MessageID   string  `dynamodbav:"messageId" json:"messageId"`
	MatchID     string  `dynamodbav:"matchId" json:"matchId"`
	SenderID    string  `dynamodbav:"senderId" json:"senderId"`
	RecipientID string  `dynamodbav:"recipientId" json:"recipientId"`
	Type        string  `dynamodbav:"type" json:"type"` // text, image, audio, gif, icebreaker
	Content     string  `dynamodbav:"content" json:"content"`
	CreatedAt   string  `dynamodbav:"createdAt" json:"createdAt"` // RFC3339, sort key
	ReadAt      *string `dynamodbav:"readAt,omitempty" json:"readAt"`
}

// IsUnread reports whether the message has not been read by its recipient.
func (m Message) IsUnread() bool {
	return m.ReadAt == nil
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
