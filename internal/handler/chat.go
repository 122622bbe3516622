package handler

import (
	"net/http"
	"strconv"

	"github.com/soulsync/soulsync/internal/auth"
	"github.com/soulsync/soulsync/internal/chat"
)

// ChatHandler serves raw chat persistence endpoints.
type ChatHandler struct {
	chats        *chat.Service
	historyLimit int
}

// NewChatHandler returns a ChatHandler. historyLimit bounds GET /chat/history
// when the client does not ask for a limit.
func NewChatHandler(chats *chat.Service, historyLimit int) *ChatHandler {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &ChatHandler{chats: chats, historyLimit: historyLimit}
}

type saveRequest struct {
	From    string `json:"from"`
	Message string `json:"message"`
	Image   string `json:"image"`
}

// Save appends one chat message verbatim.
func (h *ChatHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.chats.Save(r.Context(), auth.UserID(r.Context()), req.From, req.Message, req.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// SaveImage stores an image chat message.
func (h *ChatHandler) SaveImage(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Image == "" {
		writeMsg(w, http.StatusBadRequest, "image is required")
		return
	}

	msg, err := h.chats.Save(r.Context(), auth.UserID(r.Context()), req.From, req.Message, req.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// History returns the stored conversation, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	msgs, err := h.chats.History(r.Context(), auth.UserID(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
