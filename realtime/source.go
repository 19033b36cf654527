// Package realtime derives live, ordered conversation lists from the raw
// match, message, and profile records. A ChangeSource feeds snapshots of a
// user's match rows into an Engine, which fans out one Builder call per match
// and publishes the merged, sorted result.
package realtime

import (
	"context"
	"time"

	"emberly_server/models"
)

// MatchLister is the read side of the Matches table needed to take a snapshot.
type MatchLister interface {
	ListMatched(ctx context.Context, userID string) ([]models.Match, error)
}

// Subscription is a live feed of match snapshots for one user. Snapshots
// carries the initial state and every subsequent change; Errors carries at
// most one terminal subscription failure. Close releases the feed.
type Subscription interface {
	Snapshots() <-chan []models.Match
	Errors() <-chan error
	Close()
}

// ChangeSource opens subscriptions against the backing store.
type ChangeSource interface {
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

type subscription struct {
	snapshots chan []models.Match
	errs      chan error
	cancel    context.CancelFunc
}

func newSubscription(cancel context.CancelFunc) *subscription {
	return &subscription{
		snapshots: make(chan []models.Match, 1),
		errs:      make(chan error, 1),
		cancel:    cancel,
	}
}

func (s *subscription) Snapshots() <-chan []models.Match { return s.snapshots }
func (s *subscription) Errors() <-chan error             { return s.errs }
func (s *subscription) Close()                           { s.cancel() }

// emit delivers a snapshot unless the subscription has been closed.
func (s *subscription) emit(ctx context.Context, matches []models.Match) {
	select {
	case s.snapshots <- matches:
	case <-ctx.Done():
	}
}

// fail delivers a terminal subscription error.
func (s *subscription) fail(ctx context.Context, err error) {
	select {
	case s.errs <- err:
	case <-ctx.Done():
	}
}

// PollSource is an interval-based ChangeSource used when no DynamoDB stream
// is configured. A poll cannot observe message writes, so every tick emits a
// fresh snapshot and lets the engine rebuild previews and unread counts.
type PollSource struct {
	Matches  MatchLister
	Interval time.Duration
}

func (p *PollSource) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)

	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	go func() {
		matches, err := p.Matches.ListMatched(ctx, userID)
		if err != nil {
			sub.fail(ctx, err)
			return
		}
		sub.emit(ctx, matches)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				matches, err := p.Matches.ListMatched(ctx, userID)
				if err != nil {
					sub.fail(ctx, err)
					return
				}
				sub.emit(ctx, matches)
			}
		}
	}()

	return sub, nil
}
