// Package analytics computes window filters, category breakdowns and
// budget balances over ledger snapshots. Everything here is a pure
// projection: the same inputs always produce the same outputs and no state
// is retained between calls.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/period"
)

// CategoryTotal is one slice of a category breakdown.
type CategoryTotal struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Totals sums a set of transactions by direction.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// BalanceData is the budget-versus-spend projection for the current period.
type BalanceData struct {
	SpentThisPeriod  float64       `json:"spent_this_period"`
	IncomeThisPeriod float64       `json:"income_this_period"`
	AvailableBalance float64       `json:"available_balance"`
	Window           period.Window `json:"window"`
}

// CategoryDelta is one category's change between two compared windows.
type CategoryDelta struct {
	Category string  `json:"category"`
	TotalA   float64 `json:"total_a"`
	TotalB   float64 `json:"total_b"`
	Delta    float64 `json:"delta"`
}

// Comparison reports spending in two aligned windows and what changed.
type Comparison struct {
	TotalA  float64         `json:"total_a"`
	TotalB  float64         `json:"total_b"`
	LabelA  string          `json:"label_a"`
	LabelB  string          `json:"label_b"`
	WindowA period.Window   `json:"window_a"`
	WindowB period.Window   `json:"window_b"`
	Deltas  []CategoryDelta `json:"deltas"`
}

// FilterByPeriod keeps transactions at or after the rolling cutoff for the
// granularity. All is the identity.
func FilterByPeriod(txs []ledger.Transaction, g period.Granularity, now time.Time) []ledger.Transaction {
	if g == period.All {
		return txs
	}
	cutoff := period.RollingCutoff(g, now)
	filtered := make([]ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.Before(cutoff) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// CategoryBreakdown totals expense amounts per category, sorted descending
// by total. Percentages sum to 100 for a non-empty spend; a zero spend
// yields 0% for every entry.
func CategoryBreakdown(txs []ledger.Transaction) []CategoryTotal {
	totals := make(map[string]float64)
	var sum float64
	for _, tx := range txs {
		if tx.IsIncome() {
			continue
		}
		totals[tx.Category] += tx.Amount
		sum += tx.Amount
	}

	breakdown := make([]CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		pct := 0.0
		if sum > 0 {
			pct = 100 * total / sum
		}
		breakdown = append(breakdown, CategoryTotal{Category: cat, Total: total, Percentage: pct})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// Sum computes income, expense and net totals.
func Sum(txs []ledger.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		if tx.IsIncome() {
			t.Income += tx.Amount
		} else {
			t.Expense += tx.Amount
		}
	}
	t.Net = t.Income - t.Expense
	return t
}

// ComputeBalance recomputes the budget balance from the full ledger. Income
// inside the active period carries over into the available balance.
func ComputeBalance(txs []ledger.Transaction, budget ledger.BudgetConfig, now time.Time) BalanceData {
	window := period.AlignedWindow(budget.Granularity(), now)

	var spent, income float64
	for _, tx := range txs {
		if !window.Contains(tx.Date) {
			continue
		}
		if tx.IsIncome() {
			income += tx.Amount
		} else {
			spent += tx.Amount
		}
	}

	return BalanceData{
		SpentThisPeriod:  spent,
		IncomeThisPeriod: income,
		AvailableBalance: budget.Amount + income - spent,
		Window:           window,
	}
}

// ComparePeriods totals expense spending in the aligned windows around two
// reference dates and ranks categories by how much they changed.
func ComparePeriods(txs []ledger.Transaction, dateA, dateB time.Time, g period.Granularity, now time.Time) Comparison {
	windowA := period.AlignedWindow(g, dateA)
	windowB := period.AlignedWindow(g, dateB)

	totalsA := expenseTotalsIn(txs, windowA)
	totalsB := expenseTotalsIn(txs, windowB)

	categories := make(map[string]struct{})
	for cat := range totalsA {
		categories[cat] = struct{}{}
	}
	for cat := range totalsB {
		categories[cat] = struct{}{}
	}

	deltas := make([]CategoryDelta, 0, len(categories))
	var totalA, totalB float64
	for cat := range categories {
		a, b := totalsA[cat], totalsB[cat]
		deltas = append(deltas, CategoryDelta{Category: cat, TotalA: a, TotalB: b, Delta: b - a})
	}
	for _, v := range totalsA {
		totalA += v
	}
	for _, v := range totalsB {
		totalB += v
	}
	sort.Slice(deltas, func(i, j int) bool {
		di, dj := math.Abs(deltas[i].Delta), math.Abs(deltas[j].Delta)
		if di != dj {
			return di > dj
		}
		return deltas[i].Category < deltas[j].Category
	})

	return Comparison{
		TotalA:  totalA,
		TotalB:  totalB,
		LabelA:  period.Label(windowA, now),
		LabelB:  period.Label(windowB, now),
		WindowA: windowA,
		WindowB: windowB,
		Deltas:  deltas,
	}
}

// TopExpense returns the single largest expense, nil when there is none.
func TopExpense(txs []ledger.Transaction) *ledger.Transaction {
	var top *ledger.Transaction
	for i := range txs {
		if txs[i].IsIncome() {
			continue
		}
		if top == nil || txs[i].Amount > top.Amount {
			top = &txs[i]
		}
	}
	return top
}

func expenseTotalsIn(txs []ledger.Transaction, w period.Window) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.IsIncome() || !w.Contains(tx.Date) {
			continue
		}
		totals[tx.Category] += tx.Amount
	}
	return totals
}
