package socket

import (
	"context"
	"log"
	"sync"
	"time"

	"emberly_server/models"
	"emberly_server/realtime"
	"emberly_server/services"

	"github.com/google/uuid"
	socketio "github.com/googollee/go-socket.io"
)

type conversationsUpdate struct {
	Conversations []models.Conversation `json:"conversations"`
	Loading       bool                  `json:"loading"`
	Error         string                `json:"error,omitempty"`
}

func updatePayload(state realtime.State) conversationsUpdate {
	payload := conversationsUpdate{
		Conversations: state.Conversations,
		Loading:       state.Loading,
	}
	if state.Err != nil {
		payload.Error = state.Err.Error()
	}
	return payload
}

// NewSocketServer initializes and returns a new Socket.IO server. Besides the
// per-match chat rooms, each connection can subscribe to its user's live
// conversation list; an aggregation engine runs per connection and is torn
// down on disconnect.
func NewSocketServer(source realtime.ChangeSource, builder *realtime.Builder, chatService *services.ChatService) *socketio.Server {
	server := socketio.NewServer(nil)

	var mu sync.Mutex
	engines := map[string]*realtime.Engine{}

	stopEngine := func(socketID string) {
		mu.Lock()
		engine := engines[socketID]
		delete(engines, socketID)
		mu.Unlock()
		if engine != nil {
			engine.Stop()
		}
	}

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, data map[string]string) {
		matchID := data["matchId"]
		if matchID == "" {
			log.Println("❌ Invalid matchId in join request")
			return
		}
		log.Printf("👥 Socket %s joined match %s\n", c.ID(), matchID)
		c.Join(matchID)
	})

	server.OnEvent("/", "sendMessage", func(c socketio.Conn, message models.Message) {
		if message.MatchID == "" || message.SenderID == "" || message.RecipientID == "" {
			log.Println("❌ Invalid sendMessage payload")
			return
		}
		if message.MessageID == "" {
			message.MessageID = uuid.New().String()
		}
		if message.Type == "" {
			message.Type = models.MessageTypeText
		}
		message.CreatedAt = time.Now().Format(time.RFC3339)

		if err := chatService.SendMessage(context.Background(), message); err != nil {
			log.Printf("❌ Failed to store message: %v", err)
			return
		}
		server.BroadcastToRoom("/", message.MatchID, "newMessage", message)
	})

	server.OnEvent("/", "conversations:subscribe", func(c socketio.Conn, userID string) {
		if userID == "" {
			log.Println("❌ Invalid userId in conversations:subscribe")
			return
		}

		engine := realtime.NewEngine(source, builder, func(state realtime.State) {
			c.Emit("conversations:update", updatePayload(state))
		})
		if err := engine.Start(context.Background(), userID); err != nil {
			log.Printf("❌ Failed to start conversation feed for %s: %v", userID, err)
			c.Emit("conversations:update", conversationsUpdate{Error: err.Error()})
			return
		}

		stopEngine(c.ID()) // replace an earlier subscription on the same socket
		mu.Lock()
		engines[c.ID()] = engine
		mu.Unlock()

		log.Printf("📡 Conversation feed started for user %s on socket %s", userID, c.ID())
	})

	server.OnEvent("/", "conversations:unsubscribe", func(c socketio.Conn) {
		stopEngine(c.ID())
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID())
		stopEngine(c.ID())
	})

	return server
}
