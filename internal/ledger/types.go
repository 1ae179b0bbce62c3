package ledger

import (
	"fmt"
	"time"

	"github.com/paisabot/paisabot/internal/period"
)

// TransactionType distinguishes money out from money in.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// Transaction is a single ledger entry. Entries are immutable once created;
// an edit replaces the record wholesale.
type Transaction struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	Type        TransactionType `json:"type" gorm:"index"`
	Title       string          `json:"title"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category" gorm:"index"`
	PaymentMode string          `json:"payment_mode"`
	PaymentApp  string          `json:"payment_app,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date" gorm:"index"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsIncome reports whether the entry adds to the balance.
func (t *Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// FormatAmount renders the amount with the configured currency symbol.
// The symbol is presentation only; it never enters arithmetic.
func (t *Transaction) FormatAmount(symbol string) string {
	if t.IsIncome() {
		return fmt.Sprintf("+%s%.2f", symbol, t.Amount)
	}
	return fmt.Sprintf("%s%.2f", symbol, t.Amount)
}

// BudgetPeriod is the cadence a budget resets on.
type BudgetPeriod string

const (
	BudgetWeekly  BudgetPeriod = "weekly"
	BudgetMonthly BudgetPeriod = "monthly"
	BudgetYearly  BudgetPeriod = "yearly"
)

// BudgetConfig is the user's spending budget for the current period.
type BudgetConfig struct {
	Amount float64      `json:"amount" mapstructure:"amount"`
	Period BudgetPeriod `json:"period" mapstructure:"period"`
}

// Granularity maps the budget period onto the window resolver.
func (b BudgetConfig) Granularity() period.Granularity {
	switch b.Period {
	case BudgetWeekly:
		return period.Week
	case BudgetYearly:
		return period.Year
	default:
		return period.Month
	}
}
