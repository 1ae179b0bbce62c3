// Package chat classifies utterances into intents and dispatches them to the
// extractor or the analytics engine. The classifier is a fixed priority list:
// the first matching rule wins and there is no backtracking.
package chat

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/paisabot/paisabot/internal/analytics"
	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
	"github.com/paisabot/paisabot/internal/parse"
	"github.com/paisabot/paisabot/internal/period"
)

// ResponseKind tags what the router produced.
type ResponseKind string

const (
	KindAdded         ResponseKind = "added"
	KindUndone        ResponseKind = "undone"
	KindSummary       ResponseKind = "summary"
	KindChart         ResponseKind = "chart"
	KindTopExpense    ResponseKind = "top_expense"
	KindNeedsInput    ResponseKind = "needs_input"
	KindNotUnderstood ResponseKind = "not_understood"
	KindEmptyLedger   ResponseKind = "empty_ledger"
)

// Mutation is the ledger change the caller must commit. The router never
// touches storage itself.
type Mutation struct {
	Append   *ledger.Transaction
	RemoveID string
}

// Response is what the UI renders as a chat bubble or chart payload.
type Response struct {
	Kind        ResponseKind              `json:"kind"`
	Text        string                    `json:"text"`
	Transaction *ledger.Transaction       `json:"transaction,omitempty"`
	Breakdown   []analytics.CategoryTotal `json:"breakdown,omitempty"`
	Totals      *analytics.Totals         `json:"totals,omitempty"`
	Mutation    *Mutation                 `json:"-"`
}

var digitRe = regexp.MustCompile(`\d`)

var confirmations = []string{
	"Got it! Added %s%.2f under %s.",
	"Done, %s%.2f logged in %s.",
	"Noted! %s%.2f filed under %s.",
	"Saved: %s%.2f in %s.",
}

const (
	promptMissingAmount = "I couldn't spot an amount in that. Try something like \"Dinner 250\"."
	helpText            = "I didn't get that. You can say things like \"Dinner 250\", \"summary this week\", \"chart\", \"biggest expense\" or \"undo\"."
	emptyLedgerText     = "Nothing recorded yet. Add an expense first, like \"Coffee 80\"."
)

// Router dispatches chat input. It carries one piece of session state: the
// last transaction it created, so a single "undo" can revert it.
type Router struct {
	lexicon  lexicon.Lexicon
	currency string
	logger   *zap.Logger

	mu        sync.Mutex
	lastAdded *ledger.Transaction
}

// NewRouter creates a router. The currency symbol is presentation only.
func NewRouter(lex lexicon.Lexicon, currency string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		lexicon:  lex,
		currency: currency,
		logger:   logger,
	}
}

// Route classifies the utterance and returns a response plus any mutation
// intent. The ledger snapshot and vocabularies are per-call inputs; the
// router holds no copy of either.
func (r *Router) Route(utterance string, snapshot []ledger.Transaction, vocab lexicon.Vocabularies, now time.Time) Response {
	text := strings.TrimSpace(utterance)
	lower := strings.ToLower(text)

	// Rule 1: undo, only when there is something to undo.
	if lower == "undo" {
		if resp, ok := r.tryUndo(); ok {
			return resp
		}
	}

	// Rule 2: add.
	if digitRe.MatchString(text) && r.looksLikeAdd(lower, vocab) {
		return r.handleAdd(text, vocab, now)
	}

	// Rule 3: summary.
	if strings.Contains(lower, "summary") || strings.Contains(lower, "total") {
		return r.handleSummary(lower, snapshot, now)
	}

	// Rule 4: chart.
	if strings.Contains(lower, "chart") || strings.Contains(lower, "graph") {
		return r.handleChart(snapshot)
	}

	// Rule 5: biggest expense.
	if strings.Contains(lower, "biggest") || strings.Contains(lower, "highest") {
		return r.handleTopExpense(snapshot)
	}

	return Response{Kind: KindNotUnderstood, Text: helpText}
}

// ConfirmAppend records the committed transaction in the undo slot. Callers
// invoke it after persistence succeeds, so an aborted write leaves nothing
// to undo.
func (r *Router) ConfirmAppend(tx *ledger.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastAdded = tx
}

// LastAdded returns the transaction currently held in the undo slot.
func (r *Router) LastAdded() *ledger.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastAdded
}

// ConfirmUndo clears the undo slot. Callers invoke it after the removal is
// committed, so a failed remove keeps the slot for a retry.
func (r *Router) ConfirmUndo() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastAdded = nil
}

func (r *Router) tryUndo() (Response, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastAdded == nil {
		return Response{}, false
	}
	last := r.lastAdded

	r.logger.Info("undoing last added transaction", zap.String("id", last.ID))
	return Response{
		Kind:     KindUndone,
		Text:     fmt.Sprintf("Removed %s (%s%.2f).", last.Title, r.currency, last.Amount),
		Mutation: &Mutation{RemoveID: last.ID},
	}, true
}

func (r *Router) looksLikeAdd(lower string, vocab lexicon.Vocabularies) bool {
	if strings.Contains(lower, "add") || strings.Contains(lower, "spent") {
		return true
	}
	if strings.Contains(lower, "yesterday") {
		return true
	}
	return parse.HasCategoryCue(lower, r.lexicon, vocab)
}

func (r *Router) handleAdd(text string, vocab lexicon.Vocabularies, now time.Time) Response {
	result := parse.NewParser(r.lexicon).WithReference(now).Extract(text, vocab)

	switch result.Status {
	case parse.StatusSuccess:
		tx := result.Transaction
		r.logger.Info("parsed transaction from chat",
			zap.Float64("amount", tx.Amount),
			zap.String("category", tx.Category),
		)
		// Top-level rand is safe for concurrent Route calls.
		template := confirmations[rand.Intn(len(confirmations))]
		return Response{
			Kind:        KindAdded,
			Text:        fmt.Sprintf(template, r.currency, tx.Amount, tx.Category),
			Transaction: tx,
			Mutation:    &Mutation{Append: tx},
		}
	case parse.StatusNeedsInput:
		return Response{Kind: KindNeedsInput, Text: promptMissingAmount}
	default:
		return Response{Kind: KindNotUnderstood, Text: helpText}
	}
}

func (r *Router) handleSummary(lower string, snapshot []ledger.Transaction, now time.Time) Response {
	granularity := period.All
	label := "overall"
	switch {
	case strings.Contains(lower, "today"):
		granularity = period.Day
		label = "today"
	case strings.Contains(lower, "week"):
		granularity = period.Week
		label = "this week"
	}

	filtered := analytics.FilterByPeriod(snapshot, granularity, now)
	totals := analytics.Sum(filtered)
	return Response{
		Kind:   KindSummary,
		Text:   fmt.Sprintf("You spent %s%.2f %s.", r.currency, totals.Expense, label),
		Totals: &totals,
	}
}

func (r *Router) handleChart(snapshot []ledger.Transaction) Response {
	if len(snapshot) == 0 {
		return Response{Kind: KindEmptyLedger, Text: emptyLedgerText}
	}
	breakdown := analytics.CategoryBreakdown(snapshot)
	return Response{
		Kind:      KindChart,
		Text:      "Here's your spending by category.",
		Breakdown: breakdown,
	}
}

func (r *Router) handleTopExpense(snapshot []ledger.Transaction) Response {
	top := analytics.TopExpense(snapshot)
	if top == nil {
		return Response{Kind: KindEmptyLedger, Text: emptyLedgerText}
	}
	return Response{
		Kind:        KindTopExpense,
		Text:        fmt.Sprintf("Your biggest expense is %s at %s%.2f (%s).", top.Title, r.currency, top.Amount, top.Category),
		Transaction: top,
	}
}
