package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinche/internal/config"
	"coinche/internal/ports"
	"coinche/internal/ports/ws"
	"coinche/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadServerConfig()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	gameCfg := config.Defaults()
	if cfg.GameConfigPath != "" {
		c, err := config.ReadGameConfig(cfg.GameConfigPath)
		if err != nil {
			logger.Fatal("game config", zap.String("path", cfg.GameConfigPath), zap.Error(err))
		}
		gameCfg = c
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder ports.MatchRecorder
	var history ws.MatchHistory
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("open database", zap.Error(err))
		}
		defer db.Close()
		if err := db.Ping(ctx); err != nil {
			logger.Fatal("ping database", zap.Error(err))
		}
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx, db); err != nil {
				logger.Fatal("migrate", zap.Error(err))
			}
			logger.Info("schema migrated")
		}
		recorder, history = db, db
	} else {
		logger.Warn("DATABASE_URL not set, match history disabled")
	}

	if cfg.SessionSecret == "" {
		logger.Fatal("SESSION_SECRET is required")
	}

	srv := &ws.Server{
		Hub:      ws.NewHub(ctx, gameCfg, recorder, logger),
		Sessions: ws.NewSessionIssuer(cfg.SessionSecret),
		History:  history,
		Origins:  cfg.OriginAllowlist,
		Logger:   logger,
	}
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownSeconds)*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr), zap.Int("targetScore", gameCfg.TargetScore))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.ServerConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.DevLog {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build()
}
