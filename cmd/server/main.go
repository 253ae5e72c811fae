package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/kodbank/internal/config"
	"github.com/iliyamo/kodbank/internal/database"
	"github.com/iliyamo/kodbank/internal/queue"
	"github.com/iliyamo/kodbank/internal/repository"
	"github.com/iliyamo/kodbank/internal/router"
	"github.com/iliyamo/kodbank/internal/service"
	"github.com/iliyamo/kodbank/internal/utils"
)

func main() {
	cfg := config.Load()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg); err != nil {
			log.Fatalf("[main] migrate: %v", err)
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("[main] open %s: %v", cfg.DBDriver, err)
	}
	defer db.Close()

	hasher, err := utils.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	if _, ok := hasher.(utils.SHA256Hasher); ok {
		log.Printf("[main] PASSWORD_HASHER=sha256: digests are unsalted; set PASSWORD_HASHER=bcrypt for new deployments")
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Printf("[main] redis unavailable: in-process rate limiting, response cache off")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewRabbitPublisher(cfg.RabbitURL)
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.RabbitURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[audit] consumer stopped: %v", err)
			}
		}()
	}

	go purgeSessions(ctx, repository.NewSessionRepo(db), time.Hour)

	e := router.New(router.Deps{
		Cfg:       cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		DB:        db,
		Redis:     rdb,
		Tokens:    utils.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL),
		Hasher:    hasher,
		Events:    events,
		Chat:      service.NewChatClient(cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatModel, cfg.ChatTimeout),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("[main] listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}

// purgeSessions deletes expired session rows every interval until ctx ends.
func purgeSessions(ctx context.Context, sessions *repository.SessionRepo, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := sessions.PurgeExpired(ctx, now)
			if err != nil {
				log.Printf("[main] purge sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[main] purged %d expired sessions", n)
			}
		}
	}
}
