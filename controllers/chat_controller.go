package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"emberly_server/models"
	"emberly_server/services"

	"github.com/google/uuid"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService) *ChatController {
	return &ChatController{ChatService: service}
}

// HandleGetMessages - Fetch messages based on matchId
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	limitStr := r.URL.Query().Get("limit")

	if matchID == "" {
		http.Error(w, `{"error": "matchId is required"}`, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 50 // Default to 50 messages
	}

	messages, err := c.ChatService.GetMessagesByMatchID(r.Context(), matchID, limit)
	if err != nil {
		log.Printf("❌ Error fetching messages: %v", err)
		http.Error(w, `{"error": "Failed to fetch messages"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// HandleSendMessage - Handles sending a new message
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var message models.Message

	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if message.MatchID == "" || message.SenderID == "" || message.RecipientID == "" || message.Content == "" {
		http.Error(w, `{"error": "Missing required fields: matchId, senderId, recipientId, or content"}`, http.StatusBadRequest)
		return
	}

	if message.MessageID == "" {
		message.MessageID = uuid.New().String()
	}
	if message.Type == "" {
		message.Type = models.MessageTypeText
	}
	message.CreatedAt = time.Now().Format(time.RFC3339)
	message.ReadAt = nil

	if err := c.ChatService.SendMessage(r.Context(), message); err != nil {
		log.Printf("❌ Failed to send message: %v", err)
		http.Error(w, `{"error": "Failed to send message"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(message)
}

// HandleMarkMessagesAsRead - Mark messages received by user as read
func (c *ChatController) HandleMarkMessagesAsRead(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MatchID string `json:"matchId"`
		UserID  string `json:"userId"` // who is marking messages as read
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.MatchID == "" || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: matchId, userId"}`, http.StatusBadRequest)
		return
	}

	if err := c.ChatService.MarkMessagesAsRead(r.Context(), request.MatchID, request.UserID); err != nil {
		http.Error(w, `{"error": "Failed to mark messages as read"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}
