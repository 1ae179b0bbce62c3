package app

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/paisabot/paisabot/internal/chat"
	"github.com/paisabot/paisabot/internal/config"
	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
)

func setupApp(t *testing.T) *App {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	store, err := ledger.NewStore(db, kv)
	require.NoError(t, err)

	cfg := &config.Config{Currency: "₹"}
	return New(cfg, store, zap.NewNop(), "test")
}

func TestNewWiresService(t *testing.T) {
	app := setupApp(t)

	require.NotNil(t, app.Service)
	assert.Equal(t, "test", app.Version)
}

func TestEndToEndChatFlow(t *testing.T) {
	app := setupApp(t)
	ctx := context.Background()

	resp, err := app.Service.HandleMessage(ctx, "Paid 800 for Shoes via GPay")
	require.NoError(t, err)
	assert.Equal(t, chat.KindAdded, resp.Kind)

	resp, err = app.Service.HandleMessage(ctx, "show summary")
	require.NoError(t, err)
	assert.Equal(t, chat.KindSummary, resp.Kind)
	assert.Contains(t, resp.Text, "800")

	resp, err = app.Service.HandleMessage(ctx, "undo")
	require.NoError(t, err)
	assert.Equal(t, chat.KindUndone, resp.Kind)

	txs, err := app.Store.List()
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestNewSeedsConfiguredVocabularies(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	store, err := ledger.NewStore(db, kv)
	require.NoError(t, err)

	cfg := &config.Config{
		Currency: "₹",
		Vocabularies: lexicon.Vocabularies{
			Categories:   []string{"Food", "Rent", "Other"},
			PaymentModes: []string{"Cash"},
		},
	}
	New(cfg, store, zap.NewNop(), "test")

	got, err := store.LoadVocabularies()
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Rent", "Other"}, got.Categories)
}
