package chat

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
	"github.com/paisabot/paisabot/internal/metrics"
)

func setupService(t *testing.T) (*Service, *ledger.Store) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	store, err := ledger.NewStore(db, kv)
	require.NoError(t, err)

	router := NewRouter(lexicon.Default(), "₹", nil)
	svc := NewService(store, router, metrics.New(), nil).
		WithClock(func() time.Time { return now })
	return svc, store
}

func TestService_AddPersists(t *testing.T) {
	svc, store := setupService(t)

	resp, err := svc.HandleMessage(context.Background(), "Dinner 250")
	require.NoError(t, err)
	assert.Equal(t, KindAdded, resp.Kind)

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dinner", list[0].Title)
	assert.Equal(t, 250.0, list[0].Amount)
}

func TestService_AddThenUndoRestoresLedger(t *testing.T) {
	svc, store := setupService(t)

	before, err := store.List()
	require.NoError(t, err)

	_, err = svc.HandleMessage(context.Background(), "Coffee 80")
	require.NoError(t, err)

	undone, err := svc.HandleMessage(context.Background(), "undo")
	require.NoError(t, err)
	assert.Equal(t, KindUndone, undone.Kind)

	after, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_SummaryReadsLedger(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.HandleMessage(context.Background(), "Dinner 250")
	require.NoError(t, err)
	_, err = svc.HandleMessage(context.Background(), "Cab 150")
	require.NoError(t, err)

	resp, err := svc.HandleMessage(context.Background(), "summary")
	require.NoError(t, err)
	require.NotNil(t, resp.Totals)
	assert.Equal(t, 400.0, resp.Totals.Expense)
}

func TestService_ReadOnlyFlowsDoNotMutate(t *testing.T) {
	svc, store := setupService(t)

	for _, msg := range []string{"chart", "summary", "biggest expense", "gibberish"} {
		_, err := svc.HandleMessage(context.Background(), msg)
		require.NoError(t, err)
	}

	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_UndoAfterFailedAppendIsImpossible(t *testing.T) {
	svc, _ := setupService(t)

	resp, err := svc.HandleMessage(context.Background(), "undo")
	require.NoError(t, err)
	assert.Equal(t, KindNotUnderstood, resp.Kind, "nothing was added, so undo has nothing to do")
}

func TestService_FailedUndoKeepsSlot(t *testing.T) {
	svc, store := setupService(t)

	added, err := svc.HandleMessage(context.Background(), "Dinner 250")
	require.NoError(t, err)
	require.Equal(t, KindAdded, added.Kind)

	// Pull the row out from under the service so the removal fails.
	require.NoError(t, store.Remove(added.Transaction.ID))

	_, err = svc.HandleMessage(context.Background(), "undo")
	require.Error(t, err)
	assert.NotNil(t, svc.router.LastAdded(), "slot survives a failed remove")
}
