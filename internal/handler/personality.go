package handler

import (
	"context"
	"net/http"

	"github.com/soulsync/soulsync/internal/apperr"
	"github.com/soulsync/soulsync/internal/auth"
	"github.com/soulsync/soulsync/internal/types"
)

// PersonalityStore mutates the bot persona settings.
type PersonalityStore interface {
	SetPersonality(ctx context.Context, id, mode string) error
	SetRelationshipMode(ctx context.Context, id, mode string) error
}

// PersonalityHandler serves the persona-tuning endpoints.
type PersonalityHandler struct {
	users PersonalityStore
}

// NewPersonalityHandler returns a PersonalityHandler.
func NewPersonalityHandler(users PersonalityStore) *PersonalityHandler {
	return &PersonalityHandler{users: users}
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// SetPersonality switches the bot's personality mode.
func (h *PersonalityHandler) SetPersonality(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !types.ValidPersonality(req.Mode) {
		writeMsg(w, http.StatusBadRequest, "Invalid personality mode")
		return
	}

	if err := h.users.SetPersonality(r.Context(), auth.UserID(r.Context()), req.Mode); err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to set personality", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"personality": req.Mode})
}

// SetRelationshipMode overrides the relationship mode directly.
func (h *PersonalityHandler) SetRelationshipMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !types.ValidRelationshipMode(req.Mode) {
		writeMsg(w, http.StatusBadRequest, "Invalid relationship mode")
		return
	}

	if err := h.users.SetRelationshipMode(r.Context(), auth.UserID(r.Context()), req.Mode); err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to set relationship mode", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"relationshipMode": req.Mode})
}
