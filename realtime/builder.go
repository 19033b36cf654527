package realtime

import (
	"context"
	"log"
	"sort"
	"sync"

	"emberly_server/models"
)

// ProfileFetcher is a point read of the counterpart's profile summary.
type ProfileFetcher interface {
	GetUserSummary(ctx context.Context, userID string) (*models.UserSummary, error)
}

// LastMessageFetcher returns the most recent message for a match, or nil when
// the match has no messages yet.
type LastMessageFetcher interface {
	GetLastMessage(ctx context.Context, matchID string) (*models.Message, error)
}

// UnreadCounter counts unread messages addressed to recipientID in a match.
type UnreadCounter interface {
	CountUnread(ctx context.Context, matchID string, recipientID string) (int, error)
}

// Builder assembles one Conversation per match. The three sub-reads behind a
// conversation row are independent, so they are issued concurrently; each one
// degrades to a documented fallback on failure rather than failing the row.
type Builder struct {
	Profiles ProfileFetcher
	Messages LastMessageFetcher
	Unread   UnreadCounter
}

// Build assembles the Conversation for one matched record as seen by
// observingUserID. It never fails: a missing profile becomes the Unknown
// user, a missing last message stays nil, and an unreadable unread count
// defaults to zero.
func (b *Builder) Build(ctx context.Context, match models.Match, observingUserID string) models.Conversation {
	counterpartID := match.Counterpart(observingUserID)

	var (
		user        models.UserSummary
		lastMessage *models.Message
		unreadCount int
	)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		summary, err := b.Profiles.GetUserSummary(ctx, counterpartID)
		if err != nil || summary == nil {
			if err != nil {
				log.Printf("⚠️ Warning: failed to fetch profile for %s: %v", counterpartID, err)
			}
			user = models.UnknownUser(counterpartID)
			return
		}
		user = *summary
	}()

	go func() {
		defer wg.Done()
		message, err := b.Messages.GetLastMessage(ctx, match.MatchID)
		if err != nil {
			log.Printf("⚠️ Warning: failed to fetch last message for match %s: %v", match.MatchID, err)
			return
		}
		lastMessage = message
	}()

	go func() {
		defer wg.Done()
		count, err := b.Unread.CountUnread(ctx, match.MatchID, observingUserID)
		if err != nil {
			log.Printf("⚠️ Warning: failed to count unread for match %s: %v", match.MatchID, err)
			return
		}
		unreadCount = count
	}()

	wg.Wait()

	updatedAt := match.CreatedAt
	if lastMessage != nil {
		updatedAt = lastMessage.CreatedAt
	}

	return models.Conversation{
		MatchID:     match.MatchID,
		UserID:      counterpartID,
		User:        user,
		LastMessage: lastMessage,
		UnreadCount: unreadCount,
		UpdatedAt:   updatedAt,
	}
}

// BuildAll assembles conversations for every match in parallel. Order of the
// result is unspecified; callers sort with SortConversations.
func (b *Builder) BuildAll(ctx context.Context, matches []models.Match, observingUserID string) []models.Conversation {
	conversations := make([]models.Conversation, len(matches))

	var wg sync.WaitGroup
	for i, match := range matches {
		wg.Add(1)
		go func(i int, match models.Match) {
			defer wg.Done()
			conversations[i] = b.Build(ctx, match, observingUserID)
		}(i, match)
	}
	wg.Wait()

	return conversations
}

// SortConversations orders by most recent activity first; ties break on
// matchId ascending so identical inputs always produce identical output.
func SortConversations(conversations []models.Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		if conversations[i].UpdatedAt != conversations[j].UpdatedAt {
			return conversations[i].UpdatedAt > conversations[j].UpdatedAt
		}
		return conversations[i].MatchID < conversations[j].MatchID
	})
}
