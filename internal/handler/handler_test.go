package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/soulsync/soulsync/internal/auth"
	"github.com/soulsync/soulsync/internal/background"
	"github.com/soulsync/soulsync/internal/chat"
	"github.com/soulsync/soulsync/internal/models"
	"github.com/soulsync/soulsync/internal/types"
)

type fakeUsers struct {
	byEmail map[string]*types.User
	byID    map[string]*types.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*types.User{}, byID: map[string]*types.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *types.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*types.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*types.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUsers) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	user, ok := f.byEmail[email]
	return ok && user.ID != excludeID, nil
}

func (f *fakeUsers) Save(_ context.Context, user *types.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) UpdateRelationship(_ context.Context, id string, stage, indicators int, mode string, lastShift *time.Time) error {
	user := f.byID[id]
	user.RelationshipStage = stage
	user.RomanticIndicators = indicators
	user.RelationshipMode = mode
	user.LastRelationshipShift = lastShift
	return nil
}

func (f *fakeUsers) SetPersonality(_ context.Context, id, mode string) error {
	f.byID[id].Personality = mode
	return nil
}

func (f *fakeUsers) SetRelationshipMode(_ context.Context, id, mode string) error {
	f.byID[id].RelationshipMode = mode
	return nil
}

type fakeChats struct {
	added []types.ChatMessage
}

func (f *fakeChats) Add(_ context.Context, msg *types.ChatMessage) error {
	f.added = append(f.added, *msg)
	return nil
}

func (f *fakeChats) GetRecent(_ context.Context, _ string, _ int) ([]types.ChatMessage, error) {
	return nil, nil
}

func (f *fakeChats) GetHistory(_ context.Context, _ string, _ int) ([]types.ChatMessage, error) {
	return f.added, nil
}

type fakeMemories struct {
	byID map[int]*types.Memory
}

func (f *fakeMemories) Add(_ context.Context, mem *types.Memory) error {
	mem.ID = len(f.byID) + 1
	f.byID[mem.ID] = mem
	return nil
}

func (f *fakeMemories) GetAll(_ context.Context, _ string, _ int) ([]types.Memory, error) {
	out := make([]types.Memory, 0, len(f.byID))
	for _, mem := range f.byID {
		out = append(out, *mem)
	}
	return out, nil
}

func (f *fakeMemories) GetImportant(_ context.Context, _ string, _, _ int) ([]types.Memory, error) {
	return nil, nil
}

func (f *fakeMemories) GetByTag(_ context.Context, _, _ string) ([]types.Memory, error) {
	return nil, nil
}

func (f *fakeMemories) Delete(_ context.Context, _ string, id int) (*types.Memory, error) {
	mem, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	delete(f.byID, id)
	return mem, nil
}

type fakeSearcher struct{}

func (fakeSearcher) Search(_ context.Context, _, _ string) ([]types.Memory, error) {
	return nil, nil
}

type fakeDiaries struct {
	byDate map[string]*types.DiarySummary
}

func (f *fakeDiaries) GetByDate(_ context.Context, _, date string) (*types.DiarySummary, error) {
	return f.byDate[date], nil
}

func (f *fakeDiaries) GetRange(_ context.Context, _ string, _, _ time.Time) ([]types.DiarySummary, error) {
	return nil, nil
}

type fakeDaily struct{}

func (fakeDaily) GenerateDaily(_ context.Context, _ string) (*types.DiarySummary, error) {
	return nil, nil
}

type fakeRewriter struct{}

func (fakeRewriter) Rewrite(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

type fakeContext struct{}

func (fakeContext) RelevantContext(_ context.Context, _ string) ([]types.Memory, *types.DiarySummary, error) {
	return nil, nil, nil
}

type fakeExtractor struct{}

func (fakeExtractor) ExtractFromMessage(_ context.Context, _, _ string) error { return nil }

type fakeCompleter struct{}

func (fakeCompleter) Complete(_ context.Context, _ models.CompletionRequest) (string, error) {
	return "hello back", nil
}

type dropQueue struct{}

func (dropQueue) Submit(_ background.Task) {}

type env struct {
	router  http.Handler
	users   *fakeUsers
	issuer  *auth.TokenIssuer
	chats   *fakeChats
	mems    *fakeMemories
	diaries *fakeDiaries
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := newFakeUsers()
	chats := &fakeChats{}
	mems := &fakeMemories{byID: map[int]*types.Memory{}}
	diaries := &fakeDiaries{byDate: map[string]*types.DiarySummary{}}
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	chatService := chat.NewService(users, chats, fakeContext{}, fakeExtractor{}, fakeDaily{}, fakeCompleter{}, dropQueue{}, 6)

	router := NewRouter(Handlers{
		Auth:        NewAuthHandler(users, issuer),
		AI:          NewAIHandler(chatService),
		Chat:        NewChatHandler(chatService, 50),
		Memory:      NewMemoryHandler(mems, fakeSearcher{}, diaries, fakeDaily{}),
		Diary:       NewDiaryHandler(fakeRewriter{}, diaries),
		Personality: NewPersonalityHandler(users),
		Issuer:      issuer,
	})

	return &env{router: router, users: users, issuer: issuer, chats: chats, mems: mems, diaries: diaries}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) signup(t *testing.T) (string, *types.User) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"name":     "Sam",
		"email":    "sam@example.com",
		"password": "hunter2!",
		"botName":  "Aria",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string     `json:"token"`
		User  types.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode signup response: %v", err)
	}
	return resp.Token, &resp.User
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSignupAndLogin(t *testing.T) {
	e := newEnv(t)
	token, user := e.signup(t)
	if token == "" {
		t.Fatalf("signup should return a token")
	}
	if user.RelationshipMode != types.RelationshipModeFriend || user.Personality != types.PersonalityCaring {
		t.Fatalf("unexpected defaults: %+v", user)
	}

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "hunter2!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong password status = %d, want 400", rec.Code)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.signup(t)

	rec := e.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"name": "Sam2", "email": "sam@example.com", "password": "other",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newEnv(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/ai/send"},
		{http.MethodGet, "/ai/relationship-status"},
		{http.MethodGet, "/chat/history"},
		{http.MethodGet, "/memory/all"},
		{http.MethodPost, "/diary/generate"},
		{http.MethodPost, "/personality/set"},
	}
	for _, p := range paths {
		rec := e.do(t, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestSendEndpoint(t *testing.T) {
	e := newEnv(t)
	token, _ := e.signup(t)

	rec := e.do(t, http.MethodPost, "/ai/send", token, map[string]string{"message": "hi there"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp chat.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Reply != "hello back" {
		t.Fatalf("unexpected reply: %s", resp.Reply)
	}
	if len(e.chats.added) != 2 {
		t.Fatalf("expected both turns persisted, got %d", len(e.chats.added))
	}
}

func TestSendEndpointEmptyMessage(t *testing.T) {
	e := newEnv(t)
	token, _ := e.signup(t)

	rec := e.do(t, http.MethodPost, "/ai/send", token, map[string]string{"message": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRelationshipStatusEndpoint(t *testing.T) {
	e := newEnv(t)
	token, _ := e.signup(t)

	rec := e.do(t, http.MethodGet, "/ai/relationship-status", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var status chat.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.CurrentStage != "Friend" || status.NextMilestone != 5 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestMemoryAddAndDelete(t *testing.T) {
	e := newEnv(t)
	token, _ := e.signup(t)

	rec := e.do(t, http.MethodPost, "/memory/add", token, map[string]any{
		"title": "Job", "content": "works as a nurse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodDelete, "/memory/1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodDelete, "/memory/1", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestMemoryAddValidation(t *testing.T) {
	e := newEnv(t)
	token, _ := e.signup(t)

	rec := e.do(t, http.MethodPost, "/memory/add", token, map[string]any{"title": "no content"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDiaryGetNotFound(t *testing.T) {
	e := newEnv(t)
	token, _ := e.signup(t)

	rec := e.do(t, http.MethodGet, "/diary/2026-03-14", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/diary/not-a-date", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPersonalityEndpoints(t *testing.T) {
	e := newEnv(t)
	token, user := e.signup(t)

	rec := e.do(t, http.MethodPost, "/personality/set", token, map[string]string{"mode": "playful"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if e.users.byID[user.ID].Personality != types.PersonalityPlayful {
		t.Fatalf("personality not stored")
	}

	rec = e.do(t, http.MethodPost, "/personality/set", token, map[string]string{"mode": "grumpy"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid mode status = %d, want 400", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/personality/relationship", token, map[string]string{"mode": "girlfriend"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if e.users.byID[user.ID].RelationshipMode != types.RelationshipModeGirlfriend {
		t.Fatalf("relationship mode not stored")
	}
}

func TestProfileUpdate(t *testing.T) {
	e := newEnv(t)
	token, user := e.signup(t)

	rec := e.do(t, http.MethodPut, "/auth/profile", token, map[string]any{
		"botName": "Kai", "botGender": "male",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	stored := e.users.byID[user.ID]
	if stored.BotName != "Kai" || stored.BotGender != types.GenderMale {
		t.Fatalf("profile not updated: %+v", stored)
	}

	rec = e.do(t, http.MethodPut, "/auth/profile", token, map[string]any{"botGender": "robot"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid gender status = %d, want 400", rec.Code)
	}
}

func TestChatSaveAndHistory(t *testing.T) {
	e := newEnv(t)
	token, _ := e.signup(t)

	rec := e.do(t, http.MethodPost, "/chat/save", token, map[string]string{"message": "saved line"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/chat/history", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d: %s", rec.Code, rec.Body.String())
	}

	var msgs []types.ChatMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Message != "saved line" {
		t.Fatalf("unexpected history: %+v", msgs)
	}
}
