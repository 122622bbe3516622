package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/soulsync/soulsync/internal/apperr"
	"github.com/soulsync/soulsync/internal/auth"
	"github.com/soulsync/soulsync/internal/types"
)

const (
	defaultMemoryListLimit = 100
	defaultImportanceFloor = 7
	dateLayout             = "2006-01-02"
)

// MemoryStore is the persistence surface the memory endpoints need.
type MemoryStore interface {
	Add(ctx context.Context, mem *types.Memory) error
	GetAll(ctx context.Context, userID string, limit int) ([]types.Memory, error)
	GetImportant(ctx context.Context, userID string, minImportance, limit int) ([]types.Memory, error)
	GetByTag(ctx context.Context, userID, tag string) ([]types.Memory, error)
	Delete(ctx context.Context, userID string, id int) (*types.Memory, error)
}

// MemorySearcher runs the combined keyword/semantic search.
type MemorySearcher interface {
	Search(ctx context.Context, userID, query string) ([]types.Memory, error)
}

// DiaryReader reads stored diary summaries.
type DiaryReader interface {
	GetByDate(ctx context.Context, userID, date string) (*types.DiarySummary, error)
	GetRange(ctx context.Context, userID string, start, end time.Time) ([]types.DiarySummary, error)
}

// DailyGenerator triggers the daily summary on demand.
type DailyGenerator interface {
	GenerateDaily(ctx context.Context, userID string) (*types.DiarySummary, error)
}

// MemoryHandler serves the memory and diary-lookup endpoints.
type MemoryHandler struct {
	memories MemoryStore
	searcher MemorySearcher
	diaries  DiaryReader
	daily    DailyGenerator
}

// NewMemoryHandler returns a MemoryHandler.
func NewMemoryHandler(memories MemoryStore, searcher MemorySearcher, diaries DiaryReader, daily DailyGenerator) *MemoryHandler {
	return &MemoryHandler{memories: memories, searcher: searcher, diaries: diaries, daily: daily}
}

type addMemoryRequest struct {
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Context    string   `json:"context"`
	Tags       []string `json:"tags"`
	Importance int      `json:"importance"`
}

// Add stores a memory supplied by the client.
func (h *MemoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addMemoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Title == "" || req.Content == "" {
		writeMsg(w, http.StatusBadRequest, "title and content are required")
		return
	}
	if req.Type == "" || !types.ValidMemoryType(req.Type) {
		req.Type = types.MemoryTypeFact
	}
	if req.Importance < 1 || req.Importance > 10 {
		req.Importance = 5
	}

	now := time.Now()
	mem := &types.Memory{
		UserID:         auth.UserID(r.Context()),
		Type:           req.Type,
		Title:          req.Title,
		Content:        req.Content,
		Context:        req.Context,
		Tags:           req.Tags,
		Importance:     req.Importance,
		FirstMentioned: now,
		LastMentioned:  now,
		Frequency:      1,
	}
	if err := h.memories.Add(r.Context(), mem); err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to save memory", err))
		return
	}
	writeJSON(w, http.StatusCreated, mem)
}

// All lists the user's memories, most recently referenced first.
func (h *MemoryHandler) All(w http.ResponseWriter, r *http.Request) {
	memories, err := h.memories.GetAll(r.Context(), auth.UserID(r.Context()), defaultMemoryListLimit)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to load memories", err))
		return
	}
	writeJSON(w, http.StatusOK, memories)
}

// Important lists memories at or above the importance floor.
func (h *MemoryHandler) Important(w http.ResponseWriter, r *http.Request) {
	memories, err := h.memories.GetImportant(r.Context(), auth.UserID(r.Context()), defaultImportanceFloor, defaultMemoryListLimit)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to load memories", err))
		return
	}
	writeJSON(w, http.StatusOK, memories)
}

// ByTag lists memories carrying the path tag.
func (h *MemoryHandler) ByTag(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	memories, err := h.memories.GetByTag(r.Context(), auth.UserID(r.Context()), tag)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to load memories", err))
		return
	}
	writeJSON(w, http.StatusOK, memories)
}

// Search matches memories against the path query.
func (h *MemoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["query"]
	memories, err := h.searcher.Search(r.Context(), auth.UserID(r.Context()), query)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to search memories", err))
		return
	}
	writeJSON(w, http.StatusOK, memories)
}

// Daily returns the diary summary stored for one date.
func (h *MemoryHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if _, err := time.Parse(dateLayout, date); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	diary, err := h.diaries.GetByDate(r.Context(), auth.UserID(r.Context()), date)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to load diary", err))
		return
	}
	if diary == nil {
		writeMsg(w, http.StatusNotFound, "No summary for this date")
		return
	}
	writeJSON(w, http.StatusOK, diary)
}

// Range returns all diary summaries between two dates, inclusive.
func (h *MemoryHandler) Range(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	start, err := time.Parse(dateLayout, vars["start"])
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, vars["end"])
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		return
	}

	diaries, err := h.diaries.GetRange(r.Context(), auth.UserID(r.Context()), start, end)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to load diaries", err))
		return
	}
	writeJSON(w, http.StatusOK, diaries)
}

// GenerateDaily builds today's summary on demand.
func (h *MemoryHandler) GenerateDaily(w http.ResponseWriter, r *http.Request) {
	diary, err := h.daily.GenerateDaily(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindUpstream, "failed to generate summary", err))
		return
	}
	if diary == nil {
		writeMsg(w, http.StatusOK, "Not enough conversation today for a summary")
		return
	}
	writeJSON(w, http.StatusOK, diary)
}

// Delete removes one memory owned by the user.
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid memory id")
		return
	}

	removed, err := h.memories.Delete(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to delete memory", err))
		return
	}
	if removed == nil {
		writeMsg(w, http.StatusNotFound, "Memory not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Memory deleted"})
}
