package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"emberly_server/services"
)

// MatchController struct
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController initializes the match controller
func NewMatchController(service *services.MatchService) *MatchController {
	return &MatchController{MatchService: service}
}

// HandleCreateMatch - Creates a matched record between two users
func (c *MatchController) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ParticipantA string `json:"participantA"`
		ParticipantB string `json:"participantB"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.ParticipantA == "" || request.ParticipantB == "" || request.ParticipantA == request.ParticipantB {
		http.Error(w, `{"error": "participantA and participantB must be two distinct users"}`, http.StatusBadRequest)
		return
	}

	match, err := c.MatchService.CreateMatch(r.Context(), request.ParticipantA, request.ParticipantB)
	if err != nil {
		log.Printf("❌ Failed to create match: %v", err)
		http.Error(w, `{"error": "Failed to create match"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(match)
}

// HandleListMatches - Lists matched records for a user
func (c *MatchController) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, `{"error": "userId is required"}`, http.StatusBadRequest)
		return
	}

	matches, err := c.MatchService.ListMatched(r.Context(), userID)
	if err != nil {
		log.Printf("❌ Failed to list matches: %v", err)
		http.Error(w, `{"error": "Failed to list matches"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}

// HandleUnmatch - Flips a match to unmatched
func (c *MatchController) HandleUnmatch(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MatchID string `json:"matchId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.MatchID == "" {
		http.Error(w, `{"error": "matchId is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.MatchService.Unmatch(r.Context(), request.MatchID); err != nil {
		log.Printf("❌ Failed to unmatch: %v", err)
		http.Error(w, `{"error": "Failed to unmatch"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}
