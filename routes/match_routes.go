package routes

import (
	"emberly_server/controllers"
	"emberly_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for match-related operations under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()

	matchRouter.HandleFunc("", controller.HandleCreateMatch).Methods("POST")
	matchRouter.HandleFunc("", controller.HandleListMatches).Methods("GET")
	matchRouter.HandleFunc("/unmatch", controller.HandleUnmatch).Methods("POST")
}
