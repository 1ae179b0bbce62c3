package api

import (
	"github.com/paisabot/paisabot/internal/chat"
	"github.com/paisabot/paisabot/internal/ledger"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse wraps the router's response for the wire.
type ChatResponse struct {
	Response chat.Response `json:"response"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// BudgetRequest is the body of PUT /api/budget.
type BudgetRequest struct {
	Amount float64 `json:"amount"`
	Period string  `json:"period"`
}

// TransactionList is the payload of GET /api/transactions.
type TransactionList struct {
	Transactions []ledger.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
}
