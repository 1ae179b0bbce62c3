package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/paisabot/paisabot/internal/chat"
	"github.com/paisabot/paisabot/internal/config"
	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/metrics"
)

// Server exposes the chat and analytics surface over HTTP.
type Server struct {
	app         *fiber.App
	config      *config.Config
	store       *ledger.Store
	chatService *chat.Service
	metrics     *metrics.Metrics
	logger      *zap.Logger
	chatLimiter *rate.Limiter
}

// New creates the API server.
func New(cfg *config.Config, store *ledger.Store, chatService *chat.Service, m *metrics.Metrics, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	s := &Server{
		app:         app,
		config:      cfg,
		store:       store,
		chatService: chatService,
		metrics:     m,
		logger:      logger,
		// Bursty typing is fine, sustained flooding is not.
		chatLimiter: rate.NewLimiter(rate.Limit(5), 10),
	}

	s.setupRoutes()
	return s
}

// Listen starts serving on the configured address.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	s.logger.Info("starting API server", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
