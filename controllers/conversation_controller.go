package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"emberly_server/models"
	"emberly_server/services"
)

// ConversationController serves the one-shot conversation list. Clients that
// want live updates subscribe over the socket instead.
type ConversationController struct {
	ConversationService *services.ConversationService
}

// NewConversationController initializes the conversation controller
func NewConversationController(service *services.ConversationService) *ConversationController {
	return &ConversationController{ConversationService: service}
}

// HandleListConversations - Returns the ordered conversation list for a user
func (c *ConversationController) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, `{"error": "userId is required"}`, http.StatusBadRequest)
		return
	}

	conversations, err := c.ConversationService.ListConversations(r.Context(), userID)
	if err != nil {
		log.Printf("❌ Failed to list conversations: %v", err)
		http.Error(w, `{"error": "Failed to list conversations"}`, http.StatusInternalServerError)
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conversations)
}
