package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garment_whatsapp_backend/internal/bot"
	"garment_whatsapp_backend/internal/bot/session"
	"garment_whatsapp_backend/internal/directory"
	"garment_whatsapp_backend/internal/http/router"
	"garment_whatsapp_backend/internal/orders"
	"garment_whatsapp_backend/internal/stock"
	"garment_whatsapp_backend/internal/whatsapp"
	"garment_whatsapp_backend/platform/config"
	"garment_whatsapp_backend/platform/logger"
	"garment_whatsapp_backend/platform/sheets"
	"garment_whatsapp_backend/platform/validator"
)

const memorySweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	sheetsClient := sheets.NewClient(cfg, log)

	waClient := whatsapp.NewClient(cfg, log)
	if waClient == nil {
		log.Warn("WHATSAPP_BASE_URL not configured; outbound replies disabled")
	}

	sessions, closeSessions := initSessionStore(ctx, cfg, log)
	if closeSessions != nil {
		defer closeSessions()
	}

	stageTable, err := orders.LoadStageTable(cfg.GetStageTableFile())
	if err != nil {
		log.Error("failed to load stage table", "error", err)
		panic("failed to load stage table: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	dirService := directory.NewService(sheetsClient, cfg, log)
	orderService := orders.NewService(sheetsClient, stageTable, cfg, log)
	stockService := stock.NewService(sheetsClient, cfg, log)

	botModule := bot.NewModule(sessions, dirService, orderService, stockService, waClient, cfg, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	engine := router.New(cfg, botModule, log)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initSessionStore picks Redis when configured and reachable, otherwise
// an in-memory store with a periodic expiry sweep.
func initSessionStore(ctx context.Context, cfg config.SessionConfig, log *logger.Logger) (session.Store, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; using in-memory session store")
		return memoryStore(ctx, cfg, log), nil
	}

	store, err := session.NewRedisStore(cfg.GetRedisURL(), cfg.GetSessionTTL())
	if err != nil {
		log.Error("failed to initialize redis session store", "error", err)
		return memoryStore(ctx, cfg, log), nil
	}
	if err := store.Ping(ctx); err != nil {
		log.Warn("redis unreachable; using in-memory session store", "error", err)
		_ = store.Close()
		return memoryStore(ctx, cfg, log), nil
	}

	log.Info("redis session store initialized")
	return store, func() {
		_ = store.Close()
	}
}

func memoryStore(ctx context.Context, cfg config.SessionConfig, log *logger.Logger) *session.MemoryStore {
	store := session.NewMemoryStore(cfg.GetSessionTTL())

	go func() {
		ticker := time.NewTicker(memorySweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.Sweep(); removed > 0 {
					log.Debug("session sweep", "removed", removed)
				}
			}
		}
	}()

	return store
}
