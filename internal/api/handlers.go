package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/paisabot/paisabot/internal/analytics"
	apperrors "github.com/paisabot/paisabot/internal/errors"
	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
	"github.com/paisabot/paisabot/internal/period"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "paisabot",
	})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/plain; version=0.0.4")
	return c.SendString(s.metrics.Prometheus())
}

func (s *Server) handleMetricsJSON(c *fiber.Ctx) error {
	return c.JSON(s.metrics.Snapshot())
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	if s.config.Security.JWTSecret == "" || s.config.Security.AdminPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "auth not configured"})
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Password != s.config.Security.AdminPassword {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := s.issueToken()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
	}
	return c.JSON(LoginResponse{Token: token})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}

	resp, err := s.chatService.HandleMessage(c.Context(), req.Message)
	if err != nil {
		s.logger.Error("chat handling failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to process message"})
	}
	return c.JSON(ChatResponse{Response: resp})
}

func (s *Server) handleListTransactions(c *fiber.Ctx) error {
	filters := ledger.Filters{
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit"),
	}
	if p := c.Query("period"); p != "" {
		filters.Since = period.RollingCutoff(period.ParseGranularity(p), time.Now())
	}

	txs, err := s.store.ListFiltered(filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list transactions"})
	}
	return c.JSON(TransactionList{Transactions: txs, Total: len(txs)})
}

func (s *Server) handleDeleteTransaction(c *fiber.Ctx) error {
	err := s.store.Remove(c.Params("id"))
	if errors.Is(err, apperrors.ErrTransactionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "transaction not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete transaction"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	g := period.ParseGranularity(c.Query("period"))

	txs, err := s.store.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read ledger"})
	}

	filtered := analytics.FilterByPeriod(txs, g, time.Now())
	totals := analytics.Sum(filtered)
	return c.JSON(fiber.Map{
		"period":   string(g),
		"count":    len(filtered),
		"currency": s.config.Currency,
		"totals":   totals,
	})
}

func (s *Server) handleBreakdown(c *fiber.Ctx) error {
	g := period.ParseGranularity(c.Query("period"))

	txs, err := s.store.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read ledger"})
	}

	filtered := analytics.FilterByPeriod(txs, g, time.Now())
	return c.JSON(fiber.Map{
		"period":    string(g),
		"breakdown": analytics.CategoryBreakdown(filtered),
	})
}

func (s *Server) handleBalance(c *fiber.Ctx) error {
	txs, err := s.store.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read ledger"})
	}

	budget, found, err := s.store.LoadBudget()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load budget"})
	}
	if !found {
		budget = s.config.Budget
	}

	return c.JSON(analytics.ComputeBalance(txs, budget, time.Now()))
}

func (s *Server) handleComparison(c *fiber.Ctx) error {
	dateA, errA := time.Parse("2006-01-02", c.Query("date_a"))
	dateB, errB := time.Parse("2006-01-02", c.Query("date_b"))
	if errA != nil || errB != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_a and date_b must be YYYY-MM-DD"})
	}
	g := period.ParseGranularity(c.Query("granularity"))
	if g == period.All {
		g = period.Month
	}

	txs, err := s.store.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read ledger"})
	}

	return c.JSON(analytics.ComparePeriods(txs, dateA, dateB, g, time.Now()))
}

func (s *Server) handleGetBudget(c *fiber.Ctx) error {
	budget, found, err := s.store.LoadBudget()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load budget"})
	}
	if !found {
		budget = s.config.Budget
	}
	return c.JSON(budget)
}

func (s *Server) handleUpdateBudget(c *fiber.Ctx) error {
	var req BudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Amount < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount cannot be negative"})
	}

	budget := ledger.BudgetConfig{Amount: req.Amount, Period: ledger.BudgetPeriod(req.Period)}
	switch budget.Period {
	case ledger.BudgetWeekly, ledger.BudgetMonthly, ledger.BudgetYearly:
	case "":
		budget.Period = ledger.BudgetMonthly
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "period must be weekly, monthly or yearly"})
	}

	if err := s.store.SaveBudget(budget); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save budget"})
	}
	return c.JSON(budget)
}

func (s *Server) handleGetVocabularies(c *fiber.Ctx) error {
	vocab, err := s.store.LoadVocabularies()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load vocabularies"})
	}
	return c.JSON(vocab)
}

func (s *Server) handleUpdateVocabularies(c *fiber.Ctx) error {
	var vocab lexicon.Vocabularies
	if err := c.BodyParser(&vocab); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.store.SaveVocabularies(vocab); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save vocabularies"})
	}
	return c.JSON(vocab)
}
