package routes

import (
	"emberly_server/controllers"
	"emberly_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService) {
	controller := controllers.NewChatController(chatService)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()

	chatRouter.HandleFunc("/message", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/messages/mark-as-read", controller.HandleMarkMessagesAsRead).Methods("POST")
}
