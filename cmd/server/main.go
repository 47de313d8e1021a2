package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/api"
	"github.com/makerspace/membership-service/internal/api/handler"
	"github.com/makerspace/membership-service/internal/core/ports"
	"github.com/makerspace/membership-service/internal/core/service"
	"github.com/makerspace/membership-service/internal/infrastructure/broker"
	"github.com/makerspace/membership-service/internal/infrastructure/config"
	mongodb "github.com/makerspace/membership-service/internal/infrastructure/db/mongo"
	redisdb "github.com/makerspace/membership-service/internal/infrastructure/db/redis"
	"github.com/makerspace/membership-service/internal/infrastructure/discord"
	"github.com/makerspace/membership-service/internal/infrastructure/queue"
	"github.com/makerspace/membership-service/internal/infrastructure/scheduler"
	"github.com/makerspace/membership-service/internal/infrastructure/square"
	"github.com/makerspace/membership-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: "membership-service"})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "membership-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	store, err := mongodb.Open(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(dctx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connection established")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", rdb.Options().Addr).Int("db", rdb.Options().DB).Msg("redis connection established")

	db := store.Database()
	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	audit := mongodb.NewWebhookEventRepository(db)
	dedup := redisdb.NewWebhookDeduper(rdb, cfg.Redis.DedupTTL)
	reconcileQueue := redisdb.NewReconcileQueue(rdb)

	// --- External platforms ---
	payments := square.NewClient(square.Config{
		BaseURL:     cfg.Square.BaseURL,
		AccessToken: cfg.Square.AccessToken,
		Version:     cfg.Square.Version,
		LocationID:  cfg.Square.LocationID,
		Timeout:     cfg.Square.Timeout,
	})
	verifier := square.NewVerifier(cfg.Square.WebhookSignatureKey, cfg.Square.NotificationURL)
	if !verifier.Enabled() {
		log.Warn().Msg("SQUARE_WEBHOOK_SIGNATURE_KEY not set, webhook signatures are not verified")
	}

	var chat ports.ChatGateway = discord.NopClient{}
	if cfg.Discord.BotToken != "" {
		dc, err := discord.NewClient(discord.Config{
			BotToken: cfg.Discord.BotToken,
			GuildID:  cfg.Discord.GuildID,
			Timeout:  cfg.Discord.Timeout,
		})
		if err != nil {
			return err
		}
		chat = dc
	} else {
		log.Warn().Msg("DISCORD_BOT_TOKEN not set, chat role sync is disabled")
	}

	var publisher ports.EventPublisher = broker.NopPublisher{}
	if cfg.AMQP.URL != "" {
		p, err := broker.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("rabbitmq publisher ready")
	}

	// --- Services ---
	roleSync := service.NewRoleSyncService(
		users, chat, reconcileQueue,
		cfg.Discord.MemberRoleID, cfg.Discord.CreatorRoles(),
		logger.Component("role_sync"),
	)
	dispatcher := queue.NewDispatcher(cfg.RoleSyncWorkers, roleSync, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	membership := service.NewMembershipService(users, payments, dispatcher, reconcileQueue, publisher, logger.Component("membership"))
	reconcile := service.NewReconcileService(reconcileQueue, roleSync, users, payments, cfg.Reconcile.MaxAttempts, logger.Component("reconcile"))
	chatSvc := service.NewChatService(users, chat, service.ChatConfig{
		InviteChannel:   cfg.Discord.InviteChannel,
		AnnounceChannel: cfg.Discord.AnnounceChannel,
		InviteMaxAge:    cfg.Discord.InviteMaxAge,
	}, logger.Component("chat"))
	auth := service.NewAuthService(users, cfg.JWTSecret, 24*time.Hour)
	members := service.NewMemberService(users, roleSync, payments, service.CheckoutConfig{
		Currency:              cfg.Square.Currency,
		MembershipAmountCents: cfg.Square.MembershipAmount,
		MembershipPlanID:      cfg.Square.MembershipPlanID,
		SponsorshipPlanID:     cfg.Square.SponsorshipPlanID,
		RedirectURL:           cfg.Square.RedirectURL,
	}, logger.Component("members"))

	sched := scheduler.New(reconcile, reconcileQueue, scheduler.Config{
		Schedule:  cfg.Reconcile.Schedule,
		BatchSize: cfg.Reconcile.BatchSize,
	}, logger.Component("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() { <-sched.Stop().Done() }()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:       auth,
		Membership: membership,
		Members:    members,
		Roles:      roleSync,
		Reconcile:  reconcile,
		Chat:       chatSvc,
		Dedup:      dedup,
		Audit:      audit,
		Verifier:   verifier,
		Health: map[string]handler.HealthCheck{
			"mongodb": store.Ping,
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}
