package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/paisabot/paisabot/internal/chat"
	"github.com/paisabot/paisabot/internal/config"
	apperrors "github.com/paisabot/paisabot/internal/errors"
	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
	"github.com/paisabot/paisabot/internal/metrics"
)

func setupServer(t *testing.T, cfg *config.Config) (*Server, *ledger.Store) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	store, err := ledger.NewStore(db, kv)
	require.NoError(t, err)

	logger := zap.NewNop()
	m := metrics.New()
	router := chat.NewRouter(lexicon.Default(), cfg.Currency, logger)
	service := chat.NewService(store, router, m, logger)

	return New(cfg, store, service, m, logger), store
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Address:      "127.0.0.1",
			Port:         0,
			ReadTimeout:  10,
			WriteTimeout: 10,
		},
		Currency:     "₹",
		Vocabularies: lexicon.DefaultVocabularies(),
		Budget:       ledger.BudgetConfig{Amount: 10000, Period: ledger.BudgetMonthly},
	}
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *http.Response {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	resp := doJSON(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestChatAddsTransaction(t *testing.T) {
	s, store := setupServer(t, testConfig())

	resp := doJSON(t, s, http.MethodPost, "/api/chat", ChatRequest{Message: "Paid 800 for Shoes via GPay"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ChatResponse
	decode(t, resp, &body)
	assert.Equal(t, chat.KindAdded, body.Response.Kind)

	txs, err := store.List()
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Shoes", txs[0].Title)
	assert.Equal(t, 800.0, txs[0].Amount)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	resp := doJSON(t, s, http.MethodPost, "/api/chat", ChatRequest{Message: ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListAndDeleteTransaction(t *testing.T) {
	s, store := setupServer(t, testConfig())

	tx := &ledger.Transaction{
		Type:        ledger.TypeExpense,
		Title:       "Coffee",
		Amount:      120,
		Category:    "Food",
		PaymentMode: "Cash",
		Date:        time.Now(),
	}
	require.NoError(t, store.Append(tx))

	resp := doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list TransactionList
	decode(t, resp, &list)
	require.Equal(t, 1, list.Total)

	resp = doJSON(t, s, http.MethodDelete, "/api/transactions/"+tx.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodDelete, "/api/transactions/"+tx.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBudgetRoundTrip(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	// Unset budget falls back to the configured default.
	resp := doJSON(t, s, http.MethodGet, "/api/budget", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var budget ledger.BudgetConfig
	decode(t, resp, &budget)
	assert.Equal(t, 10000.0, budget.Amount)

	resp = doJSON(t, s, http.MethodPut, "/api/budget", BudgetRequest{Amount: 5000, Period: "weekly"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/budget", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &budget)
	assert.Equal(t, 5000.0, budget.Amount)
	assert.Equal(t, ledger.BudgetWeekly, budget.Period)
}

func TestBudgetRejectsBadPeriod(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	resp := doJSON(t, s, http.MethodPut, "/api/budget", BudgetRequest{Amount: 100, Period: "fortnightly"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVocabulariesRoundTrip(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	vocab := lexicon.Vocabularies{
		Categories:   []string{"Food", "Travel", "Other"},
		PaymentModes: []string{"Cash", "Card"},
		UPIApps:      []string{"GPay"},
	}
	resp := doJSON(t, s, http.MethodPut, "/api/vocabularies", vocab)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/vocabularies", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got lexicon.Vocabularies
	decode(t, resp, &got)
	assert.Equal(t, vocab.Categories, got.Categories)
}

func TestAuthRequiredWhenSecretSet(t *testing.T) {
	cfg := testConfig()
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.AdminPassword = "hunter2"
	s, _ := setupServer(t, cfg)

	resp := doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var errBody map[string]string
	decode(t, resp, &errBody)
	assert.Equal(t, apperrors.ErrUnauthorized.Message, errBody["error"])

	// Health stays open.
	resp = doJSON(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodPost, "/api/auth/login", LoginRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, s, http.MethodPost, "/api/auth/login", LoginRequest{Password: "hunter2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login LoginResponse
	decode(t, resp, &login)
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.Token))
	authed, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, authed.StatusCode)
}

func TestSummaryAndBreakdown(t *testing.T) {
	s, store := setupServer(t, testConfig())

	now := time.Now()
	for _, tx := range []*ledger.Transaction{
		{Type: ledger.TypeExpense, Title: "Dinner", Amount: 250, Category: "Food", PaymentMode: "Cash", Date: now},
		{Type: ledger.TypeExpense, Title: "Shoes", Amount: 800, Category: "Shopping", PaymentMode: "UPI", Date: now},
		{Type: ledger.TypeIncome, Title: "Salary", Amount: 5000, Category: "Income", PaymentMode: "Bank", Date: now},
	} {
		require.NoError(t, store.Append(tx))
	}

	resp := doJSON(t, s, http.MethodGet, "/api/summary?period=month", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		Count  int `json:"count"`
		Totals struct {
			Income  float64 `json:"income"`
			Expense float64 `json:"expense"`
		} `json:"totals"`
	}
	decode(t, resp, &summary)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 5000.0, summary.Totals.Income)
	assert.Equal(t, 1050.0, summary.Totals.Expense)

	resp = doJSON(t, s, http.MethodGet, "/api/breakdown?period=month", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var breakdown struct {
		Breakdown []struct {
			Category string  `json:"category"`
			Total    float64 `json:"total"`
		} `json:"breakdown"`
	}
	decode(t, resp, &breakdown)
	require.Len(t, breakdown.Breakdown, 2)
	assert.Equal(t, "Shopping", breakdown.Breakdown[0].Category)
}

func TestBalanceUsesConfiguredBudget(t *testing.T) {
	s, store := setupServer(t, testConfig())

	require.NoError(t, store.Append(&ledger.Transaction{
		Type: ledger.TypeExpense, Title: "Groceries", Amount: 1500,
		Category: "Food", PaymentMode: "Cash", Date: time.Now(),
	}))

	resp := doJSON(t, s, http.MethodGet, "/api/balance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balance struct {
		SpentThisPeriod  float64 `json:"spent_this_period"`
		AvailableBalance float64 `json:"available_balance"`
	}
	decode(t, resp, &balance)
	assert.Equal(t, 1500.0, balance.SpentThisPeriod)
	assert.Equal(t, 8500.0, balance.AvailableBalance)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	doJSON(t, s, http.MethodPost, "/api/chat", ChatRequest{Message: "Dinner 250"})

	resp := doJSON(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "paisabot_messages_routed_total")
}
