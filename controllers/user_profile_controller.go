package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"emberly_server/models"
	"emberly_server/services"

	"github.com/gorilla/mux"
)

// UserProfileController struct
type UserProfileController struct {
	UserProfileService *services.UserProfileService
}

// NewUserProfileController initializes the user profile controller
func NewUserProfileController(service *services.UserProfileService) *UserProfileController {
	return &UserProfileController{UserProfileService: service}
}

// HandleGetProfile - Fetch a user profile by ID
func (c *UserProfileController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, `{"error": "userId is required"}`, http.StatusBadRequest)
		return
	}

	profile, err := c.UserProfileService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to fetch profile: %v", err)
		http.Error(w, `{"error": "Failed to fetch profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// HandlePutProfile - Create or replace a user profile
func (c *UserProfileController) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile

	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if profile.UserID == "" {
		http.Error(w, `{"error": "userId is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.UserProfileService.PutProfile(r.Context(), profile); err != nil {
		log.Printf("❌ Failed to store profile: %v", err)
		http.Error(w, `{"error": "Failed to store profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
