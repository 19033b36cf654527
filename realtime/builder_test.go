package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"emberly_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implements ProfileFetcher, LastMessageFetcher and UnreadCounter
// against in-memory maps. Entries in the err maps take precedence; gates block
// last-message reads until released or the context is cancelled.
type fakeStore struct {
	mu           sync.Mutex
	profiles     map[string]models.UserSummary
	profileErrs  map[string]error
	lastMessages map[string]models.Message
	messageErrs  map[string]error
	unread       map[string]int
	unreadErrs   map[string]error
	gates        map[string]chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:     map[string]models.UserSummary{},
		profileErrs:  map[string]error{},
		lastMessages: map[string]models.Message{},
		messageErrs:  map[string]error{},
		unread:       map[string]int{},
		unreadErrs:   map[string]error{},
		gates:        map[string]chan struct{}{},
	}
}

func (f *fakeStore) GetUserSummary(ctx context.Context, userID string) (*models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.profileErrs[userID]; ok {
		return nil, err
	}
	if summary, ok := f.profiles[userID]; ok {
		return &summary, nil
	}
	return nil, errors.New("item not found")
}

func (f *fakeStore) GetLastMessage(ctx context.Context, matchID string) (*models.Message, error) {
	f.mu.Lock()
	gate := f.gates[matchID]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.messageErrs[matchID]; ok {
		return nil, err
	}
	if message, ok := f.lastMessages[matchID]; ok {
		return &message, nil
	}
	return nil, nil
}

func (f *fakeStore) CountUnread(ctx context.Context, matchID string, recipientID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.unreadErrs[matchID]; ok {
		return 0, err
	}
	return f.unread[matchID], nil
}

func (f *fakeStore) setLastMessage(message models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMessages[message.MatchID] = message
}

func (f *fakeStore) gate(matchID string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[matchID] = gate
	f.mu.Unlock()
	return gate
}

func strPtr(s string) *string { return &s }

func matchedAt(matchID, a, b, createdAt string) models.Match {
	return models.Match{
		MatchID:      matchID,
		ParticipantA: a,
		ParticipantB: b,
		Status:       models.MatchStatusMatched,
		CreatedAt:    createdAt,
	}
}

func TestBuildAssemblesConversation(t *testing.T) {
	store := newFakeStore()
	store.profiles["bob"] = models.UserSummary{UserID: "bob", DisplayName: "Bob", PhotoURL: strPtr("https://cdn/bob.jpg")}
	store.setLastMessage(models.Message{
		MessageID:   "msg-1",
		MatchID:     "match-1",
		SenderID:    "bob",
		RecipientID: "alice",
		Type:        models.MessageTypeText,
		Content:     "hey!",
		CreatedAt:   "2024-06-01T00:00:10Z",
	})
	store.unread["match-1"] = 3

	builder := &Builder{Profiles: store, Messages: store, Unread: store}
	match := matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z")

	conversation := builder.Build(context.Background(), match, "alice")

	assert.Equal(t, "match-1", conversation.MatchID)
	assert.Equal(t, "bob", conversation.UserID)
	assert.Equal(t, "Bob", conversation.User.DisplayName)
	require.NotNil(t, conversation.LastMessage)
	assert.Equal(t, "hey!", conversation.LastMessage.Content)
	assert.Equal(t, 3, conversation.UnreadCount)
	assert.Equal(t, "2024-06-01T00:00:10Z", conversation.UpdatedAt)
}

func TestBuildCounterpartEitherSide(t *testing.T) {
	store := newFakeStore()
	store.profiles["alice"] = models.UserSummary{UserID: "alice", DisplayName: "Alice"}
	builder := &Builder{Profiles: store, Messages: store, Unread: store}
	match := matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z")

	conversation := builder.Build(context.Background(), match, "bob")

	assert.Equal(t, "alice", conversation.UserID)
	assert.Equal(t, "Alice", conversation.User.DisplayName)
}

func TestBuildProfileFailureFallsBackToUnknown(t *testing.T) {
	store := newFakeStore()
	store.profileErrs["bob"] = errors.New("permission denied")
	builder := &Builder{Profiles: store, Messages: store, Unread: store}
	match := matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z")

	conversation := builder.Build(context.Background(), match, "alice")

	assert.Equal(t, "Unknown", conversation.User.DisplayName)
	assert.Nil(t, conversation.User.PhotoURL)
	assert.Equal(t, "bob", conversation.User.UserID)
}

func TestBuildMissingProfileFallsBackToUnknown(t *testing.T) {
	store := newFakeStore() // no profile for bob at all
	builder := &Builder{Profiles: store, Messages: store, Unread: store}
	match := matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z")

	conversation := builder.Build(context.Background(), match, "alice")

	assert.Equal(t, "Unknown", conversation.User.DisplayName)
	assert.Nil(t, conversation.User.PhotoURL)
}

func TestBuildNoMessagesUsesMatchCreatedAt(t *testing.T) {
	store := newFakeStore()
	store.profiles["bob"] = models.UserSummary{UserID: "bob", DisplayName: "Bob"}
	builder := &Builder{Profiles: store, Messages: store, Unread: store}
	match := matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z")

	conversation := builder.Build(context.Background(), match, "alice")

	assert.Nil(t, conversation.LastMessage)
	assert.Equal(t, "2024-06-01T00:00:05Z", conversation.UpdatedAt)
}

func TestBuildLastMessageFailureLeavesNil(t *testing.T) {
	store := newFakeStore()
	store.profiles["bob"] = models.UserSummary{UserID: "bob", DisplayName: "Bob"}
	store.messageErrs["match-1"] = errors.New("throttled")
	builder := &Builder{Profiles: store, Messages: store, Unread: store}
	match := matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z")

	conversation := builder.Build(context.Background(), match, "alice")

	assert.Nil(t, conversation.LastMessage)
	assert.Equal(t, match.CreatedAt, conversation.UpdatedAt)
}

func TestBuildUnreadFailureDefaultsToZero(t *testing.T) {
	store := newFakeStore()
	store.profiles["bob"] = models.UserSummary{UserID: "bob", DisplayName: "Bob"}
	store.unreadErrs["match-1"] = errors.New("throttled")
	builder := &Builder{Profiles: store, Messages: store, Unread: store}
	match := matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z")

	conversation := builder.Build(context.Background(), match, "alice")

	assert.Equal(t, 0, conversation.UnreadCount)
	assert.GreaterOrEqual(t, conversation.UnreadCount, 0)
}

func TestBuildAllReturnsOneConversationPerMatch(t *testing.T) {
	store := newFakeStore()
	store.profiles["bob"] = models.UserSummary{UserID: "bob", DisplayName: "Bob"}
	store.profiles["carol"] = models.UserSummary{UserID: "carol", DisplayName: "Carol"}
	builder := &Builder{Profiles: store, Messages: store, Unread: store}

	matches := []models.Match{
		matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z"),
		matchedAt("match-2", "alice", "carol", "2024-06-01T00:00:06Z"),
	}

	conversations := builder.BuildAll(context.Background(), matches, "alice")

	require.Len(t, conversations, 2)
	assert.Equal(t, "match-1", conversations[0].MatchID)
	assert.Equal(t, "match-2", conversations[1].MatchID)
}

func TestSortConversationsOrdersByUpdatedAtDesc(t *testing.T) {
	conversations := []models.Conversation{
		{MatchID: "match-2", UpdatedAt: "2024-06-01T00:00:05Z"},
		{MatchID: "match-1", UpdatedAt: "2024-06-01T00:00:10Z"},
		{MatchID: "match-3", UpdatedAt: "2024-06-01T00:00:20Z"},
	}

	SortConversations(conversations)

	assert.Equal(t, "match-3", conversations[0].MatchID)
	assert.Equal(t, "match-1", conversations[1].MatchID)
	assert.Equal(t, "match-2", conversations[2].MatchID)
}

func TestSortConversationsBreaksTiesByMatchID(t *testing.T) {
	conversations := []models.Conversation{
		{MatchID: "match-b", UpdatedAt: "2024-06-01T00:00:10Z"},
		{MatchID: "match-a", UpdatedAt: "2024-06-01T00:00:10Z"},
		{MatchID: "match-c", UpdatedAt: "2024-06-01T00:00:10Z"},
	}

	SortConversations(conversations)

	assert.Equal(t, "match-a", conversations[0].MatchID)
	assert.Equal(t, "match-b", conversations[1].MatchID)
	assert.Equal(t, "match-c", conversations[2].MatchID)
}

func TestBuildAllIsDeterministic(t *testing.T) {
	store := newFakeStore()
	store.profiles["bob"] = models.UserSummary{UserID: "bob", DisplayName: "Bob"}
	store.profileErrs["carol"] = errors.New("unavailable")
	store.setLastMessage(models.Message{
		MessageID: "msg-1", MatchID: "match-1", SenderID: "bob",
		RecipientID: "alice", Content: "hi", CreatedAt: "2024-06-01T00:00:10Z",
	})
	store.unread["match-1"] = 2
	builder := &Builder{Profiles: store, Messages: store, Unread: store}

	matches := []models.Match{
		matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:05Z"),
		matchedAt("match-2", "alice", "carol", "2024-06-01T00:00:06Z"),
	}

	first := builder.BuildAll(context.Background(), matches, "alice")
	SortConversations(first)
	second := builder.BuildAll(context.Background(), matches, "alice")
	SortConversations(second)

	assert.Equal(t, first, second)
}
