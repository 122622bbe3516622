// Package main runs the companion API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soulsync/soulsync/internal/auth"
	"github.com/soulsync/soulsync/internal/background"
	"github.com/soulsync/soulsync/internal/chat"
	"github.com/soulsync/soulsync/internal/config"
	"github.com/soulsync/soulsync/internal/diary"
	"github.com/soulsync/soulsync/internal/handler"
	"github.com/soulsync/soulsync/internal/logging"
	"github.com/soulsync/soulsync/internal/memory"
	"github.com/soulsync/soulsync/internal/models"
	"github.com/soulsync/soulsync/internal/repository"
)

func main() {
	logging.Init()

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	completer, err := models.NewOpenAICompleter(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	var embedder memory.Embedder
	if cfg.GoogleAPIKey != "" {
		genaiEmbedder, err := memory.NewGenAIEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		embedder = genaiEmbedder
	} else {
		slog.Info("no google api key configured, semantic memory search disabled")
	}

	runner := background.NewRunner()
	defer runner.Shutdown()

	memoryService := memory.NewService(completer, embedder, store.Memories, store.Diaries, cfg.MemoryLimit)
	diaryService := diary.NewService(completer, store.Chats, store.Diaries)
	chatService := chat.NewService(store.Users, store.Chats, memoryService, memoryService, diaryService, completer, runner, cfg.HistoryLimit)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	router := handler.NewRouter(handler.Handlers{
		Auth:        handler.NewAuthHandler(store.Users, issuer),
		AI:          handler.NewAIHandler(chatService),
		Chat:        handler.NewChatHandler(chatService, 0),
		Memory:      handler.NewMemoryHandler(store.Memories, memoryService, store.Diaries, diaryService),
		Diary:       handler.NewDiaryHandler(diaryService, store.Diaries),
		Personality: handler.NewPersonalityHandler(store.Users),
		Issuer:      issuer,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
