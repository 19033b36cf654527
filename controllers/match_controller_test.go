package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleCreateMatchRequiresDistinctParticipants(t *testing.T) {
	controller := NewMatchController(nil)

	body := `{"participantA": "alice", "participantB": "alice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/matches", strings.NewReader(body))
	rec := httptest.NewRecorder()

	controller.HandleCreateMatch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListMatchesRequiresUserID(t *testing.T) {
	controller := NewMatchController(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
	rec := httptest.NewRecorder()

	controller.HandleListMatches(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUnmatchRequiresMatchID(t *testing.T) {
	controller := NewMatchController(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/matches/unmatch", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	controller.HandleUnmatch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListConversationsRequiresUserID(t *testing.T) {
	controller := NewConversationController(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	rec := httptest.NewRecorder()

	controller.HandleListConversations(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
