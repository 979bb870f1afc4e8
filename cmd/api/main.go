package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/persome/account-system/internal/api"
	"github.com/persome/account-system/internal/core/service"
	"github.com/persome/account-system/internal/core/session"
	"github.com/persome/account-system/internal/eventbus"
	"github.com/persome/account-system/internal/infrastructure/config"
	mongodb "github.com/persome/account-system/internal/infrastructure/db/mongo"
	redisdb "github.com/persome/account-system/internal/infrastructure/db/redis"
	"github.com/persome/account-system/internal/infrastructure/kafka"
	"github.com/persome/account-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("loading configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	tokenTTL, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.TokenTTL).Msg("invalid TOKEN_TTL")
	}

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to mongo")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("disconnecting mongo")
		}
	}()

	redisClient, err := redisdb.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("closing redis client")
		}
	}()

	sessionStore := redisdb.NewSessionStore(redisClient)
	defer sessionStore.Close()

	users := mongodb.NewUserRepository(db)
	results := mongodb.NewResultRepository(db)

	// --- Event bus and session coordination ---
	bus := eventbus.New(logger.Named("eventbus"))
	defer bus.Close()

	coordinator := session.New(sessionStore, bus, logger.Named("session"))
	coordinator.Initialize(ctx)
	defer coordinator.Close()

	var relay *kafka.Relay
	if len(cfg.Kafka.Brokers) > 0 {
		relay = kafka.NewRelay(cfg.Kafka.Brokers, cfg.Kafka.Topic, bus, logger.Named("kafka"))
		defer func() {
			if err := relay.Close(); err != nil {
				log.Error().Err(err).Msg("closing kafka relay")
			}
		}()
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).
			Msg("kafka event relay enabled")
	}

	// --- Services ---
	authService := service.NewAuthService(users, sessionStore, bus, cfg.JWTSecret, tokenTTL, logger.Named("auth"))
	profileService := service.NewProfileService(users, sessionStore, bus, logger.Named("profile"))
	personalityService := service.NewPersonalityService(results, logger.Named("personality"))

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Auth:        authService,
		Profiles:    profileService,
		Personality: personalityService,
		Coordinator: coordinator,
		Mongo:       db,
		Redis:       redisClient,
		JWTSecret:   cfg.JWTSecret,
		Log:         log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutting down HTTP server")
	}
	log.Info().Msg("server stopped")
}
