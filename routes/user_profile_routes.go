package routes

import (
	"emberly_server/controllers"
	"emberly_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for profile operations under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, userProfileService *services.UserProfileService) {
	controller := controllers.NewUserProfileController(userProfileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()

	profileRouter.HandleFunc("", controller.HandlePutProfile).Methods("PUT")
	profileRouter.HandleFunc("/{userId}", controller.HandleGetProfile).Methods("GET")
}
