package server

import (
	"context"
	"fmt"
	"log"

	"backend-pathrecorder/internal/auth"
	"backend-pathrecorder/internal/config"
	"backend-pathrecorder/internal/db"
	"backend-pathrecorder/internal/path"
	"backend-pathrecorder/internal/recorder"
	"backend-pathrecorder/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       db.Querier
	Redis    *redis.Client
	Stream   *stream.Hub
	Store    path.Store
	Auth     *auth.Service
	Recorder *recorder.Recorder
}

func NewServer(cfg config.Config, querier db.Querier, redisClient *redis.Client) (*Server, error) {
	if querier == nil {
		return nil, fmt.Errorf("auth storage requires a database connection; check POSTGRES_URL")
	}

	store, err := newStore(cfg, querier, redisClient)
	if err != nil {
		return nil, err
	}

	authSvc := auth.NewService(cfg.JWTSecret, querier)
	// Boot continues on bootstrap failure so local store backends still
	// serve; auth requests surface the database error themselves.
	if err := authSvc.EnsureSchema(context.Background()); err != nil {
		log.Printf("auth schema bootstrap failed: %v", err)
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	rec := recorder.New(store, hub)
	if err := rec.Restore(context.Background()); err != nil {
		log.Printf("restore checkpointed session: %v", err)
	}

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       querier,
		Redis:    redisClient,
		Stream:   hub,
		Store:    store,
		Auth:     authSvc,
		Recorder: rec,
	}

	registerRoutes(s)
	return s, nil
}

// newStore picks the persistence backend. File is the default and needs
// no external services.
func newStore(cfg config.Config, querier db.Querier, redisClient *redis.Client) (path.Store, error) {
	switch cfg.StoreBackend {
	case "", "file":
		return path.NewFileStore(cfg.DataDir)
	case "sqlite":
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return path.NewSQLiteStore(sqlDB)
	case "postgres":
		if querier == nil {
			return nil, fmt.Errorf("store backend postgres requires a database connection")
		}
		store := path.NewPGStore(querier)
		if err := store.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		return store, nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("store backend redis requires a redis connection")
		}
		return path.NewRedisStore(redisClient), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), s.Auth)
	recorder.RegisterRoutes(s.App.Group("/recorder"), s.Recorder, s.Store, jwtMiddleware)
	path.RegisterRoutes(s.App.Group("/paths"), s.Store, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
