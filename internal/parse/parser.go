// Package parse turns a free-form chat utterance into a structured
// transaction draft. The rules are deliberately simple and ordered: literal
// category names beat lexicon keywords, UPI app names beat generic payment
// modes, and the first match always wins.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
	"github.com/paisabot/paisabot/internal/period"
)

// Status tags the outcome of an extraction.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusNeedsInput   Status = "needs_input"
	StatusUnrecognized Status = "unrecognized"
)

// Result is the extractor's outcome. Exactly one of Transaction or
// MissingField is set depending on Status.
type Result struct {
	Status       Status
	Transaction  *ledger.Transaction
	MissingField string
}

var amountRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

var yesterdayRe = regexp.MustCompile(`(?i)\byesterday\b`)

// stopwords are stripped from the utterance before the residue becomes the
// transaction title.
var stopwords = []string{"yesterday", "add", "spent", "paid", "bought", "via", "on", "for"}

// Parser extracts transactions from utterances. The reference time is
// injectable so extraction stays deterministic under test.
type Parser struct {
	lexicon       lexicon.Lexicon
	referenceTime time.Time
}

// NewParser creates a parser over a keyword table.
func NewParser(lex lexicon.Lexicon) *Parser {
	return &Parser{
		lexicon:       lex,
		referenceTime: time.Now(),
	}
}

// WithReference sets the reference time.
func (p *Parser) WithReference(t time.Time) *Parser {
	p.referenceTime = t
	return p
}

// Extract parses an utterance against the configured vocabularies. A missing
// amount is the only hard failure; everything else falls back to defaults.
func (p *Parser) Extract(utterance string, vocab lexicon.Vocabularies) Result {
	text := strings.TrimSpace(utterance)

	amountStr := amountRe.FindString(text)
	if amountStr == "" {
		return Result{Status: StatusNeedsInput, MissingField: "amount"}
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return Result{Status: StatusNeedsInput, MissingField: "amount"}
	}

	date := p.referenceTime
	if yesterdayRe.MatchString(text) {
		date = period.ShiftRelative("yesterday", p.referenceTime)
	}

	category, matchedToken := p.matchCategory(text, vocab)
	mode, app, paymentToken := matchPayment(text, vocab)

	title := buildTitle(text, amountStr, matchedToken, paymentToken, category)

	tx := &ledger.Transaction{
		ID:          uuid.NewString(),
		Type:        ledger.TypeExpense,
		Title:       title,
		Amount:      amount,
		Category:    category,
		PaymentMode: mode,
		PaymentApp:  app,
		Description: fmt.Sprintf("Added from chat: %q", utterance),
		Date:        date,
	}
	return Result{Status: StatusSuccess, Transaction: tx}
}

// matchCategory returns the category and the token that matched it. Literal
// configured names take priority over keyword inference; the scan follows
// vocabulary order so the first match wins.
func (p *Parser) matchCategory(text string, vocab lexicon.Vocabularies) (category, token string) {
	for _, name := range vocab.Categories {
		if name == lexicon.CategoryOther {
			continue
		}
		if containsWord(text, name) {
			return name, name
		}
	}
	for _, name := range vocab.Categories {
		for _, kw := range p.lexicon.Keywords(name) {
			if containsWord(text, kw) {
				return name, kw
			}
		}
	}
	return lexicon.CategoryOther, ""
}

// matchPayment resolves the payment channel. An app name implies UPI even
// when another mode keyword also appears in the utterance.
func matchPayment(text string, vocab lexicon.Vocabularies) (mode, app, token string) {
	for _, name := range vocab.UPIApps {
		if containsWord(text, name) {
			return "UPI", name, name
		}
	}
	for _, name := range vocab.PaymentModes {
		if containsWord(text, name) {
			return name, "", name
		}
	}
	return lexicon.DefaultPaymentMode, "", ""
}

// buildTitle strips the amount, stopwords and matched tokens out of the
// utterance and uses the residue as the title. When nothing useful remains it
// falls back to the capitalised matched token, then to the category name.
func buildTitle(text, amountStr, categoryToken, paymentToken, category string) string {
	residue := strings.Replace(text, amountStr, " ", 1)
	for _, w := range stopwords {
		residue = removeWord(residue, w)
	}
	if categoryToken != "" {
		residue = removeWord(residue, categoryToken)
	}
	if paymentToken != "" {
		residue = removeWord(residue, paymentToken)
	}
	residue = strings.TrimSpace(strings.Join(strings.Fields(residue), " "))

	if len(residue) > 1 {
		return residue
	}
	if categoryToken != "" {
		return capitalize(categoryToken)
	}
	return category
}

// HasCategoryCue reports whether the utterance names a configured category
// or one of its keywords. The router uses this to decide whether a sentence
// with a number is an add command.
func HasCategoryCue(text string, lex lexicon.Lexicon, vocab lexicon.Vocabularies) bool {
	for _, name := range vocab.Categories {
		if name == lexicon.CategoryOther {
			continue
		}
		if containsWord(text, name) {
			return true
		}
		for _, kw := range lex.Keywords(name) {
			if containsWord(text, kw) {
				return true
			}
		}
	}
	return false
}

func containsWord(text, word string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}

func removeWord(text, word string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.ReplaceAllString(text, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
