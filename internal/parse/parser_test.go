package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func testParser() *Parser {
	return NewParser(lexicon.Default()).WithReference(testNow)
}

func TestExtract_YesterdayDinner(t *testing.T) {
	result := testParser().Extract("Yesterday Dinner 250", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	tx := result.Transaction
	assert.Equal(t, 250.0, tx.Amount)
	assert.Equal(t, "Food", tx.Category)
	assert.Equal(t, "Cash", tx.PaymentMode)
	assert.Equal(t, "Dinner", tx.Title)
	assert.Equal(t, 9, tx.Date.Day())
	assert.Equal(t, time.March, tx.Date.Month())
}

func TestExtract_UPIApp(t *testing.T) {
	result := testParser().Extract("Paid 800 for Shoes via GPay", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	tx := result.Transaction
	assert.Equal(t, 800.0, tx.Amount)
	assert.Equal(t, "Shopping", tx.Category)
	assert.Equal(t, "UPI", tx.PaymentMode)
	assert.Equal(t, "GPay", tx.PaymentApp)
	assert.Equal(t, "Shoes", tx.Title)
}

func TestExtract_AppNameBeatsModeKeyword(t *testing.T) {
	// "cash" also appears, but the app name wins and implies UPI.
	result := testParser().Extract("Paid 100 cash via PhonePe", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "UPI", result.Transaction.PaymentMode)
	assert.Equal(t, "PhonePe", result.Transaction.PaymentApp)
}

func TestExtract_MissingAmount(t *testing.T) {
	result := testParser().Extract("bought groceries", lexicon.DefaultVocabularies())

	assert.Equal(t, StatusNeedsInput, result.Status)
	assert.Equal(t, "amount", result.MissingField)
	assert.Nil(t, result.Transaction)
}

func TestExtract_NoKeywordFallsBackToOther(t *testing.T) {
	result := testParser().Extract("add 42 something obscure", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, lexicon.CategoryOther, result.Transaction.Category)
}

func TestExtract_LiteralCategoryBeatsKeyword(t *testing.T) {
	// "dinner" is a Food keyword, but the literal category "Travel" outranks
	// keyword inference.
	result := testParser().Extract("Travel dinner 500", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "Travel", result.Transaction.Category)
}

func TestExtract_DecimalAmount(t *testing.T) {
	result := testParser().Extract("coffee 45.50", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	assert.InDelta(t, 45.50, result.Transaction.Amount, 0.001)
}

func TestExtract_DefaultsToday(t *testing.T) {
	result := testParser().Extract("lunch 120", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, testNow, result.Transaction.Date)
}

func TestExtract_EmptyVocabulariesDegrade(t *testing.T) {
	result := testParser().Extract("spent 300 on dinner", lexicon.Vocabularies{})

	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, lexicon.CategoryOther, result.Transaction.Category)
	assert.Equal(t, lexicon.DefaultPaymentMode, result.Transaction.PaymentMode)
	assert.Empty(t, result.Transaction.PaymentApp)
}

func TestExtract_TitleUsesResidue(t *testing.T) {
	result := testParser().Extract("add 60 birthday gift wrap", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "birthday gift wrap", result.Transaction.Title)
}

func TestExtract_ProvenanceDescription(t *testing.T) {
	result := testParser().Extract("Dinner 250", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	assert.Contains(t, result.Transaction.Description, "Dinner 250")
}

func TestExtract_AlwaysExpense(t *testing.T) {
	result := testParser().Extract("Dinner 250", lexicon.DefaultVocabularies())

	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, ledger.TypeExpense, result.Transaction.Type)
	assert.NotEmpty(t, result.Transaction.ID)
}
