// Package app assembles the engine: datastore connections, services,
// transports, and the HTTP handler the server binary runs.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minigames/config"
	"minigames/internal/cache"
	"minigames/internal/repository"
	"minigames/internal/scheduler"
	"minigames/internal/service"
	"minigames/internal/transport/rest"
	"minigames/internal/transport/ws"
)

// App is the wired engine. Handler serves the whole HTTP surface (REST
// and WebSocket).
type App struct {
	Handler http.Handler

	mongoClient *mongo.Client
	redisClient *redis.Client
}

// New connects to Mongo and Redis and builds the full dependency graph.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := mongoClient.Database(cfg.MongoDB)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	hub := ws.NewHub(log)
	store := cache.NewSessionStore(rdb, cfg.LiveTTL, cfg.EndedTTL)
	statsRepo := repository.NewStatsRepo(db)
	sched := scheduler.New()

	authSvc := service.NewAuthService()
	bcast := service.NewSessionBroadcaster(hub, cfg.TurnDuration, log)
	sessionSvc := service.NewSessionService(
		store,
		statsRepo,
		sched,
		bcast,
		service.NewNicknameIdentity(),
		service.Timings{
			TurnDuration:     cfg.TurnDuration,
			DrawInterval:     cfg.DrawInterval,
			ClearDelay:       cfg.ClearDelay,
			CountdownSeconds: cfg.CountdownSeconds,
		},
		cfg.MaxPlayers,
		log,
	)

	router := rest.NewRouter(&rest.Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		StatsRepo:      statsRepo,
		WSHub:          hub,
		Log:            log,
	})

	return &App{
		Handler:     router,
		mongoClient: mongoClient,
		redisClient: rdb,
	}, nil
}

// Close releases the datastore connections.
func (a *App) Close(ctx context.Context) {
	a.redisClient.Close()
	a.mongoClient.Disconnect(ctx)
}
