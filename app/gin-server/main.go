package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yoockh/videoinsight/config"
	"github.com/yoockh/videoinsight/internal/api/handlers"
	"github.com/yoockh/videoinsight/internal/api/middleware"
	"github.com/yoockh/videoinsight/internal/api/routes"
	"github.com/yoockh/videoinsight/internal/events"
	"github.com/yoockh/videoinsight/internal/logger"
	"github.com/yoockh/videoinsight/internal/providers/gemini"
	"github.com/yoockh/videoinsight/internal/services"
	"github.com/yoockh/videoinsight/internal/storage"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	cfg, err := config.Load()
	if err != nil {
		l.WithError(err).Fatal("config error")
	}

	store, err := storage.NewLocalStore(cfg.UploadsDir, cfg.MaxUploadBytes)
	if err != nil {
		l.WithError(err).Fatal("storage init error")
	}

	ai := gemini.New(gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Generation: &gemini.GenerationConfig{
			Temperature:     &cfg.GenTemperature,
			TopK:            &cfg.GenTopK,
			TopP:            &cfg.GenTopP,
			MaxOutputTokens: &cfg.GenMaxOutputTokens,
		},
	})
	if cfg.GeminiAPIKey == "" {
		l.Warn("GEMINI_API_KEY is not set; AI endpoints will return initialization errors")
	}

	svc := services.NewAnalysisService(store, ai, l)
	hub := events.NewHub()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))
	r.Use(middleware.CORS(cfg.ClientOrigin))
	// Headroom above the upload ceiling for multipart framing.
	r.Use(middleware.MaxBodySize(cfg.MaxUploadBytes + 1<<20))

	routes.RegisterRoutes(r, routes.Deps{
		Video:      handlers.NewVideoHandler(svc, cfg.MaxUploadBytes),
		AI:         handlers.NewAIHandler(svc),
		WS:         handlers.NewWSHandler(hub, l, cfg.ClientOrigin),
		UploadsDir: cfg.UploadsDir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		// Remote-file processing can hold a response for ~60s of polling
		// plus the generation call itself.
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		l.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.WithError(err).Fatal("server forced to shutdown")
	}

	l.Info("server exited")
}
