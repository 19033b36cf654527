package services

import (
	"context"
	"fmt"

	"emberly_server/models"
	"emberly_server/realtime"
)

// ConversationService produces one-shot conversation lists over REST. The
// live, incrementally updated list is served by realtime.Engine through the
// socket layer; both share the same Builder.
type ConversationService struct {
	Matches *MatchService
	Builder *realtime.Builder
}

// ListConversations fetches the user's matched records and assembles the
// ordered conversation list.
func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	matches, err := s.Matches.ListMatched(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	conversations := s.Builder.BuildAll(ctx, matches, userID)
	realtime.SortConversations(conversations)
	return conversations, nil
}
