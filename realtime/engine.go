package realtime

import (
	"context"
	"errors"
	"log"
	"sync"

	"emberly_server/models"
)

// State is the engine's published output. Conversations is replaced wholesale
// on every successful build and is never mutated in place.
type State struct {
	Conversations []models.Conversation
	Loading       bool
	Err           error
}

// ErrAlreadyStarted is returned when Start is called on a running engine.
var ErrAlreadyStarted = errors.New("engine already started")

// Engine maintains a live, ordered conversation list for one observing user.
//
// A single run loop consumes snapshots from the change source. Each snapshot
// gets a monotonically increasing sequence number and is built in its own
// goroutine; the loop publishes a finished build only if its sequence number
// is still the latest, so a stale build can never overwrite a newer one.
// After Stop, in-flight builds are discarded and no further publish occurs.
type Engine struct {
	source   ChangeSource
	builder  *Builder
	onUpdate func(State)

	mu      sync.Mutex
	state   State
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEngine creates an engine. onUpdate is invoked from the engine's run loop
// on every publish; it may be nil when callers only poll State.
func NewEngine(source ChangeSource, builder *Builder, onUpdate func(State)) *Engine {
	return &Engine{
		source:   source,
		builder:  builder,
		onUpdate: onUpdate,
	}
}

// Start subscribes to the change source for userID and begins publishing.
func (e *Engine) Start(ctx context.Context, userID string) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	sub, err := e.source.Subscribe(ctx, userID)
	if err != nil {
		cancel()
		e.mu.Unlock()
		return err
	}

	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})
	e.state = State{Loading: true}
	done := e.done
	e.mu.Unlock()

	go e.run(ctx, sub, userID, done)
	return nil
}

// Stop cancels the subscription and waits for the run loop to exit. Once it
// returns, no further update is delivered even if reads started before the
// stop resolve later.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done
}

// State returns the most recently published state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

type buildResult struct {
	seq           uint64
	conversations []models.Conversation
}

func (e *Engine) run(ctx context.Context, sub Subscription, userID string, done chan struct{}) {
	defer close(done)
	defer sub.Close()

	var seq uint64
	results := make(chan buildResult, 1)

	for {
		select {
		case <-ctx.Done():
			return

		case matches, ok := <-sub.Snapshots():
			if ctx.Err() != nil || !ok {
				return
			}
			seq++
			go e.build(ctx, seq, userID, matches, results)

		case err := <-sub.Errors():
			if ctx.Err() != nil {
				return
			}
			// The subscription is dead, but a previously published list is
			// still good: keep it visible under the error.
			log.Printf("❌ Conversation subscription failed for %s: %v", userID, err)
			e.mu.Lock()
			e.state = State{Conversations: e.state.Conversations, Loading: false, Err: err}
			state := e.state
			e.mu.Unlock()
			e.publish(state)

		case result := <-results:
			if ctx.Err() != nil {
				return
			}
			if result.seq != seq {
				// A newer snapshot superseded this build while it was in
				// flight. Last snapshot wins.
				continue
			}
			e.mu.Lock()
			e.state = State{Conversations: result.conversations, Loading: false}
			state := e.state
			e.mu.Unlock()
			e.publish(state)
		}
	}
}

// build runs one full fan-out over a snapshot and reports back to the run
// loop tagged with the snapshot's sequence number.
func (e *Engine) build(ctx context.Context, seq uint64, userID string, matches []models.Match, results chan<- buildResult) {
	// The source may not be able to express the participant predicate
	// natively, so qualifying records are always re-filtered here.
	qualifying := matches[:0:0]
	for _, match := range matches {
		if match.IsMatched() && match.Involves(userID) {
			qualifying = append(qualifying, match)
		}
	}

	conversations := e.builder.BuildAll(ctx, qualifying, userID)
	SortConversations(conversations)

	select {
	case results <- buildResult{seq: seq, conversations: conversations}:
	case <-ctx.Done():
	}
}

func (e *Engine) publish(state State) {
	if e.onUpdate != nil {
		e.onUpdate(state)
	}
}
