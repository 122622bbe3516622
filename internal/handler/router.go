package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/soulsync/soulsync/internal/auth"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *AuthHandler
	AI          *AIHandler
	Chat        *ChatHandler
	Memory      *MemoryHandler
	Diary       *DiaryHandler
	Personality *PersonalityHandler
	Issuer      *auth.TokenIssuer
}

// NewRouter mounts every endpoint. Signup, login, and the health check are
// public; everything else sits behind the bearer-token middleware.
func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/signup", h.Auth.Signup).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)

	protect := auth.Middleware(h.Issuer)

	profile := r.PathPrefix("/auth").Subrouter()
	profile.Use(protect)
	profile.HandleFunc("/profile", h.Auth.UpdateProfile).Methods(http.MethodPut)

	ai := r.PathPrefix("/ai").Subrouter()
	ai.Use(protect)
	ai.HandleFunc("/send", h.AI.Send).Methods(http.MethodPost)
	ai.HandleFunc("/relationship-status", h.AI.RelationshipStatus).Methods(http.MethodGet)

	chat := r.PathPrefix("/chat").Subrouter()
	chat.Use(protect)
	chat.HandleFunc("/save", h.Chat.Save).Methods(http.MethodPost)
	chat.HandleFunc("/history", h.Chat.History).Methods(http.MethodGet)
	chat.HandleFunc("/image", h.Chat.SaveImage).Methods(http.MethodPost)

	memory := r.PathPrefix("/memory").Subrouter()
	memory.Use(protect)
	memory.HandleFunc("/add", h.Memory.Add).Methods(http.MethodPost)
	memory.HandleFunc("/all", h.Memory.All).Methods(http.MethodGet)
	memory.HandleFunc("/important", h.Memory.Important).Methods(http.MethodGet)
	memory.HandleFunc("/tag/{tag}", h.Memory.ByTag).Methods(http.MethodGet)
	memory.HandleFunc("/search/{query}", h.Memory.Search).Methods(http.MethodGet)
	memory.HandleFunc("/daily/{date}", h.Memory.Daily).Methods(http.MethodGet)
	memory.HandleFunc("/range/{start}/{end}", h.Memory.Range).Methods(http.MethodGet)
	memory.HandleFunc("/generate-daily", h.Memory.GenerateDaily).Methods(http.MethodPost)
	memory.HandleFunc("/{id:[0-9]+}", h.Memory.Delete).Methods(http.MethodDelete)

	diary := r.PathPrefix("/diary").Subrouter()
	diary.Use(protect)
	diary.HandleFunc("/generate", h.Diary.Generate).Methods(http.MethodPost)
	diary.HandleFunc("/{date}", h.Diary.Get).Methods(http.MethodGet)

	personality := r.PathPrefix("/personality").Subrouter()
	personality.Use(protect)
	personality.HandleFunc("/set", h.Personality.SetPersonality).Methods(http.MethodPost)
	personality.HandleFunc("/relationship", h.Personality.SetRelationshipMode).Methods(http.MethodPost)

	return r
}
