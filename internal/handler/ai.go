package handler

import (
	"net/http"

	"github.com/soulsync/soulsync/internal/auth"
	"github.com/soulsync/soulsync/internal/chat"
)

// AIHandler serves the conversational endpoints.
type AIHandler struct {
	chats *chat.Service
}

// NewAIHandler returns an AIHandler.
func NewAIHandler(chats *chat.Service) *AIHandler {
	return &AIHandler{chats: chats}
}

type sendRequest struct {
	Message string `json:"message"`
}

// Send runs one conversational turn and returns the bot's reply.
func (h *AIHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.chats.SendMessage(r.Context(), auth.UserID(r.Context()), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RelationshipStatus reports the relationship stage and progress.
func (h *AIHandler) RelationshipStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.chats.RelationshipStatus(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
