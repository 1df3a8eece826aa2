package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"forest-tails/server/internal/executor"
	"forest-tails/server/internal/mail"
	"forest-tails/server/internal/services/auth"
	"forest-tails/server/internal/services/friends"
	"forest-tails/server/internal/services/stats"
	"forest-tails/server/internal/session"
	"forest-tails/server/internal/store"
	"forest-tails/server/internal/transport/ws"
	"forest-tails/server/pkg/config"
)

// Gateway owns the Fiber app, the session registry, and the service wiring.
// HTTP only carries the health endpoint and the websocket upgrade; all game
// traffic flows over the upgraded connections.
type Gateway struct {
	router   *fiber.App
	logger   *zap.Logger
	cfg      config.Config
	registry *session.Registry
}

// NewGateway builds the app with its middleware, wires the services against
// the given database handle, and mounts the websocket endpoint.
func NewGateway(cfg config.Config, logger *zap.Logger, db *sql.DB) *Gateway {
	app := fiber.New(fiber.Config{
		AppName: "Forest Tails Gateway",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error("gateway error", zap.Error(err))
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	gw := &Gateway{
		router:   app,
		logger:   logger,
		cfg:      cfg,
		registry: session.NewRegistry(logger),
	}

	gw.applyMiddleware()
	gw.setupHealthCheck()

	if db != nil {
		gw.mountWebsocket(db)
	}

	return gw
}

func (g *Gateway) mountWebsocket(db *sql.DB) {
	ex := executor.New(g.logger)
	notifier := session.NewNotifier(g.registry, g.logger, g.cfg.Session.PushTimeout)

	users := store.NewUsers(db)
	friendships := store.NewFriendships(db)
	sanctions := store.NewSanctions(db)
	codes := store.NewVerificationCodes(db)
	statistics := store.NewStatistics(db)

	notifications := mail.NewNotifications(mail.NewSMTPSender(g.cfg.SMTP, g.logger), g.logger)

	authSvc := auth.NewAuthService(g.cfg, g.logger, ex, users, sanctions, codes, notifications, g.registry)
	friendsSvc := friends.NewFriendsService(g.logger, ex, friendships, users, g.registry, notifier)
	statsSvc := stats.NewStatsService(g.logger, ex, statistics)

	handler := ws.NewHandler(g.cfg.Session, g.logger, g.registry, notifier, authSvc, friendsSvc, statsSvc)

	g.router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	g.router.Get("/ws", websocket.New(handler.Serve))
}

// applyMiddleware sets up global middleware for the gateway.
func (g *Gateway) applyMiddleware() {
	g.router.Use(cors.New(cors.Config{
		AllowOrigins: g.cfg.Server.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	g.router.Use(fiberLogger.New())
	g.router.Use(recover.New())
	// The limiter only guards the upgrade handshake; established websocket
	// sessions are not rate limited here.
	g.router.Use(limiter.New(limiter.Config{
		Max:        g.cfg.Server.RateLimitMax,
		Expiration: g.cfg.Server.RateLimitDuration,
	}))
}

// setupHealthCheck adds a basic health check endpoint to the gateway.
func (g *Gateway) setupHealthCheck() {
	g.router.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"online": len(g.registry.OnlineUsers()),
		})
	})
}

// Registry exposes the session registry (useful for testing).
func (g *Gateway) Registry() *session.Registry {
	return g.registry
}

// Router returns the underlying Fiber app (useful for testing).
func (g *Gateway) Router() *fiber.App {
	return g.router
}

// Start begins listening on the configured host and port.
func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.cfg.Server.Host, g.cfg.Server.Port)
	g.logger.Info("Starting gateway", zap.String("address", addr))
	return g.router.Listen(addr)
}

// Shutdown gracefully stops the gateway.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("Shutting down gateway...")
	return g.router.ShutdownWithContext(ctx)
}
