package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/api"
	"github.com/siarkonyar/fitnessChronicleServer/internal/auth"
	"github.com/siarkonyar/fitnessChronicleServer/internal/config"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	var repos *storage.Repositories
	switch cfg.DBType {
	case "postgres":
		repos, err = storage.NewPostgresRepositories(cfg.DBDSN, logger)
	default:
		if _, serr := os.Stat(cfg.DataDir); os.IsNotExist(serr) {
			_ = os.MkdirAll(cfg.DataDir, 0755)
		}
		repos, err = storage.NewFileRepositories(cfg.FileLabels, cfg.FileAssignments, cfg.FileExercises, cfg.FileNames, logger)
	}
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalAuthProvider(cfg.LocalAuthToken, logger)
	} else {
		provider = auth.NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.RequestIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := r.Group("/")
	protected.Use(auth.Middleware(provider, cfg))
	api.Routes(protected, api.NewApp(logger, repos))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		logger.Infof("server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if err := repos.Close(); err != nil {
		logger.Errorf("storage close: %v", err)
	}
}
