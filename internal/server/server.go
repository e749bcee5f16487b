// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"strings"
	"time"

	"agora/internal/config"
	"agora/internal/contentstore"
	"agora/internal/database"
	"agora/internal/journal"
	"agora/internal/ledger"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	social     *ledger.SocialLedger
	governance *ledger.GovernanceLedger
	journal    journal.Store
	content    contentstore.Store
	notifier   *notifications.Notifier
	hub        *notifications.Hub
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	redisClient := connectRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by bootstrap layers that establish DB/Redis themselves.
// The event journal is replayed into fresh ledgers before the server accepts
// any request, so ledger state survives restarts.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	store := journal.NewStore(db)
	hub := notifications.NewHub()
	notifier := notifications.NewNotifier(redisClient)

	// Commit path: journal first (assigns sequence numbers), then fan-out.
	fanout := notifications.NewSink(notifier, hub, observability.Logger)
	sink := journal.NewSink(store, observability.Logger, fanout, metricsSink{})

	social := ledger.NewSocialLedger(sink, nil)
	governance := ledger.NewGovernanceLedger(cfg.LedgerOwner, cfg.MinVotingPeriod, cfg.QuorumPercent, sink, nil)

	replayCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := journal.Replay(replayCtx, store, social, governance); err != nil {
		return nil, err
	}

	var content contentstore.Store
	if redisClient != nil {
		content = contentstore.NewRedisStore(redisClient)
	} else {
		content = contentstore.NewMemoryStore()
	}

	middleware.InitMiddleware(cfg)

	prom := fiberprometheus.New("agora")

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		social:         social,
		governance:     governance,
		journal:        store,
		content:        content,
		notifier:       notifier,
		hub:            hub,
	}, nil
}

// connectRedis dials Redis and returns nil when it is unreachable: the server
// runs degraded (no pub/sub fan-out, in-memory content store) rather than
// refusing to start.
func connectRedis(addr string) *redis.Client {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("Redis warning: invalid REDIS_URL %q: %v (continuing without redis)", addr, err)
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis warning: %v (continuing without redis)", err)
		return nil
	}
	return client
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(middleware.RequestLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, "register", 3, 10*time.Minute), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, "login", 10, 5*time.Minute), s.Login)

	// Public reads
	posts := api.Group("/posts")
	posts.Get("/total", s.GetTotalPosts)
	posts.Get("/:id/likes/:account", s.HasLiked)
	posts.Get("/:id/events", s.GetPostEvents)
	posts.Get("/:id", s.GetPost)

	profiles := api.Group("/profiles")
	profiles.Get("/:account/following/:target", s.IsFollowing)
	profiles.Get("/:account", s.GetProfile)

	proposals := api.Group("/proposals")
	proposals.Get("/:id/votes/:account", s.HasVoted)
	proposals.Get("/:id", s.GetProposal)

	api.Get("/events", s.ListEvents)
	api.Get("/content/:ref", s.GetContent)

	// Protected routes: every mutating operation requires a principal.
	protected := api.Group("", middleware.AuthRequired)

	protected.Post("/profiles", s.CreateProfile)
	protected.Put("/profiles/me", s.UpdateProfile)

	protected.Post("/posts", middleware.RateLimit(s.redis, "create_post", 12, time.Minute), s.CreatePost)
	protected.Post("/posts/:id/like", s.LikePost)
	protected.Delete("/posts/:id/like", s.UnlikePost)
	protected.Post("/posts/:id/comments", middleware.RateLimit(s.redis, "create_comment", 30, time.Minute), s.CreateComment)

	protected.Post("/follows/:account", s.Follow)
	protected.Delete("/follows/:account", s.Unfollow)

	protected.Post("/content", s.UploadContent)

	protected.Post("/proposals", s.CreateProposal)
	protected.Post("/proposals/:id/votes", s.CastVote)
	protected.Post("/proposals/:id/execute", s.ExecuteProposal)
	protected.Post("/proposals/:id/cancel", s.CancelProposal)

	// Event feed websocket
	api.Get("/ws/events", middleware.WebSocketAuthRequired, s.EventFeedHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"total_posts": s.social.TotalPosts(),
		"time":        time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Agora Ledger API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Bridge redis pub/sub into the local websocket hub.
	if s.notifier.Enabled() {
		if err := s.notifier.StartSubscriber(s.shutdownCtx, s.hub.Broadcast); err != nil {
			log.Printf("failed to start event subscriber: %v", err)
		}
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		log.Printf("error shutting down %s: %v", s.hub.Name(), err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
