package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/soulsync/soulsync/internal/apperr"
	"github.com/soulsync/soulsync/internal/auth"
)

// DiaryRewriter re-summarizes a stored diary into a few warm sentences.
type DiaryRewriter interface {
	Rewrite(ctx context.Context, userID, date string) (string, error)
}

// DiaryHandler serves the diary endpoints.
type DiaryHandler struct {
	rewriter DiaryRewriter
	diaries  DiaryReader
}

// NewDiaryHandler returns a DiaryHandler.
func NewDiaryHandler(rewriter DiaryRewriter, diaries DiaryReader) *DiaryHandler {
	return &DiaryHandler{rewriter: rewriter, diaries: diaries}
}

type generateRequest struct {
	Date string `json:"date"`
}

// Generate rewrites the diary for a date into a short emotional summary.
func (h *DiaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	summary, err := h.rewriter.Rewrite(r.Context(), auth.UserID(r.Context()), req.Date)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindUpstream, "failed to generate diary", err))
		return
	}
	if summary == "" {
		writeMsg(w, http.StatusNotFound, "No diary found for this date")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary, "date": req.Date})
}

// Get returns the stored diary for a date.
func (h *DiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		writeMsg(w, http.StatusNotFound, "No diary found for this date")
		return
	}
	writeJSON(w, http.StatusOK, diary)
}
