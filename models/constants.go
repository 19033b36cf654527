package models

// Match statuses
const (
	MatchStatusPending   = "pending"
	MatchStatusMatched   = "matched"
	MatchStatusUnmatched = "unmatched"
)

// Message types
const (
	MessageTypeText       = "text"
	MessageTypeImage      = "image"
	MessageTypeAudio      = "audio"
	MessageTypeGif        = "gif"
	MessageTypeIcebreaker = "icebreaker"
)
