package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/hepatostage/internal/config"
	"github.com/Skufu/hepatostage/internal/logging"
	"github.com/Skufu/hepatostage/internal/model"
	"github.com/Skufu/hepatostage/internal/prediction"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config error")
	}
	gin.SetMode(cfg.GinMode)

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		logrus.WithError(err).Fatal("logger setup failed")
	}

	ctx := context.Background()
	var db HealthChecker
	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("database connection failed")
		}
		defer pool.Close()
		db = pool
	}

	holder := model.NewHolder(cfg.ModelPath, model.LoadArtifact, log)
	if cfg.PreloadModel {
		if _, err := holder.Get(); err != nil {
			log.WithError(err).Warn("model preload failed; predictions will report the model as unavailable")
		}
	}

	svc, err := prediction.NewService(holder,
		prediction.WithLogger(log),
		prediction.WithCacheSize(cfg.CacheSize),
	)
	if err != nil {
		log.WithError(err).Fatal("prediction service setup failed")
	}

	router := setupRouter(&handlers{
		db:        db,
		predictor: svc,
		models:    holder,
		log:       log,
	}, routerOptions{
		MaxBodyBytes: cfg.MaxBodyBytes,
		RateLimitRPS: cfg.RateLimitRPS,
		RateBurst:    cfg.RateBurst,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	log.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"model": cfg.ModelPath,
	}).Info("server listening")
	waitForShutdown(server, log)
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func waitForShutdown(server *http.Server, log logrus.FieldLogger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
