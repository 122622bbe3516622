package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soulsync/soulsync/internal/apperr"
	"github.com/soulsync/soulsync/internal/auth"
	"github.com/soulsync/soulsync/internal/types"
)

// UserStore is the account persistence surface the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, user *types.User) error
	GetByID(ctx context.Context, id string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	Save(ctx context.Context, user *types.User) error
}

// AuthHandler serves signup, login, and profile updates.
type AuthHandler struct {
	users  UserStore
	issuer *auth.TokenIssuer
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(users UserStore, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer}
}

type signupRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BotName   string `json:"botName"`
	BotAge    int    `json:"botAge"`
	BotGender string `json:"botGender"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

// Signup creates an account with a fresh bot persona and returns a token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeMsg(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	existing, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to check email", err))
		return
	}
	if existing != nil {
		writeMsg(w, http.StatusBadRequest, "User already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to hash password", err))
		return
	}

	user := &types.User{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Email:            req.Email,
		PasswordHash:     hash,
		Language:         "en",
		BotName:          req.BotName,
		BotAge:           req.BotAge,
		BotGender:        req.BotGender,
		RelationshipMode: types.RelationshipModeFriend,
		Personality:      types.PersonalityCaring,
	}
	if user.BotName == "" {
		user.BotName = "Aria"
	}
	if user.BotAge == 0 {
		user.BotAge = 22
	}
	if !types.ValidGender(user.BotGender) {
		user.BotGender = types.GenderFemale
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to create user", err))
		return
	}

	token, err := h.issuer.Issue(user.ID, time.Now())
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to issue token", err))
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to load user", err))
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeMsg(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.issuer.Issue(user.ID, time.Now())
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to issue token", err))
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

type profileRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Age       *int    `json:"age"`
	Language  *string `json:"language"`
	BotName   *string `json:"botName"`
	BotAge    *int    `json:"botAge"`
	BotGender *string `json:"botGender"`
}

// UpdateProfile applies the provided fields to the authenticated user.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to load user", err))
		return
	}
	if user == nil {
		writeMsg(w, http.StatusNotFound, "User not found")
		return
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			taken, err := h.users.EmailTaken(r.Context(), email, user.ID)
			if err != nil {
				writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to check email", err))
				return
			}
			if taken {
				writeMsg(w, http.StatusBadRequest, "Email already in use")
				return
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Age != nil {
		user.Age = *req.Age
	}
	if req.Language != nil {
		user.Language = *req.Language
	}
	if req.BotName != nil && *req.BotName != "" {
		user.BotName = *req.BotName
	}
	if req.BotAge != nil && *req.BotAge > 0 {
		user.BotAge = *req.BotAge
	}
	if req.BotGender != nil {
		if !types.ValidGender(*req.BotGender) {
			writeMsg(w, http.StatusBadRequest, "invalid bot gender")
			return
		}
		user.BotGender = *req.BotGender
	}

	if err := h.users.Save(r.Context(), user); err != nil {
		writeError(w, apperr.Wrap(apperr.KindPersistence, "failed to save profile", err))
		return
	}
	writeJSON(w, http.StatusOK, user)
}
