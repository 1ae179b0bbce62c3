package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Security.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", s.handleMetrics)
	s.app.Get("/api/metrics", s.handleMetricsJSON)

	api := s.app.Group("/api")

	api.Post("/auth/login", s.handleLogin)

	protected := api.Use(s.authMiddleware())

	protected.Post("/chat", s.rateLimited(s.handleChat))

	protected.Get("/transactions", s.handleListTransactions)
	protected.Delete("/transactions/:id", s.handleDeleteTransaction)

	protected.Get("/summary", s.handleSummary)
	protected.Get("/breakdown", s.handleBreakdown)
	protected.Get("/balance", s.handleBalance)
	protected.Get("/comparison", s.handleComparison)

	protected.Get("/budget", s.handleGetBudget)
	protected.Put("/budget", s.handleUpdateBudget)

	protected.Get("/vocabularies", s.handleGetVocabularies)
	protected.Put("/vocabularies", s.handleUpdateVocabularies)
}

func (s *Server) rateLimited(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.chatLimiter.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		}
		return handler(c)
	}
}
