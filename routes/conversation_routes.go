package routes

import (
	"emberly_server/controllers"
	"emberly_server/services"

	"github.com/gorilla/mux"
)

// RegisterConversationRoutes sets up the one-shot conversation list endpoint
func RegisterConversationRoutes(r *mux.Router, conversationService *services.ConversationService) {
	controller := controllers.NewConversationController(conversationService)

	r.HandleFunc("/api/conversations", controller.HandleListConversations).Methods("GET")
}
