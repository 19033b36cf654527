package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"emberly_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu      sync.Mutex
	matches []models.Match
	err     error
}

func (f *fakeLister) ListMatched(ctx context.Context, userID string) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func (f *fakeLister) set(matches []models.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = matches
}

func waitSnapshot(t *testing.T, sub Subscription) []models.Match {
	t.Helper()
	select {
	case matches := <-sub.Snapshots():
		return matches
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestPollSourceEmitsInitialSnapshot(t *testing.T) {
	lister := &fakeLister{matches: []models.Match{matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:01Z")}}
	source := &PollSource{Matches: lister, Interval: time.Hour}

	sub, err := source.Subscribe(context.Background(), "alice")
	require.NoError(t, err)
	defer sub.Close()

	matches := waitSnapshot(t, sub)
	require.Len(t, matches, 1)
	assert.Equal(t, "match-1", matches[0].MatchID)
}

func TestPollSourceEmitsOnTick(t *testing.T) {
	lister := &fakeLister{}
	source := &PollSource{Matches: lister, Interval: 10 * time.Millisecond}

	sub, err := source.Subscribe(context.Background(), "alice")
	require.NoError(t, err)
	defer sub.Close()

	assert.Empty(t, waitSnapshot(t, sub))

	lister.set([]models.Match{matchedAt("match-1", "alice", "bob", "2024-06-01T00:00:01Z")})

	// The next ticks re-query and pick up the new match.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case matches := <-sub.Snapshots():
			if len(matches) == 1 {
				assert.Equal(t, "match-1", matches[0].MatchID)
				return
			}
		case <-deadline:
			t.Fatal("poll source never picked up the new match")
		}
	}
}

func TestPollSourceInitialErrorIsTerminal(t *testing.T) {
	queryErr := errors.New("table unavailable")
	lister := &fakeLister{err: queryErr}
	source := &PollSource{Matches: lister, Interval: time.Hour}

	sub, err := source.Subscribe(context.Background(), "alice")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case err := <-sub.Errors():
		assert.Equal(t, queryErr, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription error")
	}
}

func TestPollSourceCloseStopsFeed(t *testing.T) {
	lister := &fakeLister{}
	source := &PollSource{Matches: lister, Interval: 10 * time.Millisecond}

	sub, err := source.Subscribe(context.Background(), "alice")
	require.NoError(t, err)

	waitSnapshot(t, sub)
	sub.Close()

	// Drain anything emitted before the close landed, then expect silence.
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case <-sub.Snapshots():
			continue
		default:
		}
		break
	}

	select {
	case matches := <-sub.Snapshots():
		t.Fatalf("snapshot after close: %+v", matches)
	case <-time.After(50 * time.Millisecond):
	}
}
