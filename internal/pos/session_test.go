package pos

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"agronorte-pos/internal/history"
	"agronorte-pos/internal/models"
)

// failStore persists nothing and fails every save.
type failStore struct {
	saveErr error
}

func (s *failStore) Load() ([]models.Sale, error) { return nil, nil }
func (s *failStore) Save([]models.Sale) error     { return s.saveErr }

func newTestSession(t *testing.T, store history.Store, now time.Time) *Session {
	t.Helper()
	logger := zaptest.NewLogger(t)
	hist := history.NewManager(store, logger)

	session, err := NewSession(hist, logger, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return session
}

func TestSessionStartsWithEmptyOpenSale(t *testing.T) {
	session := newTestSession(t, history.NewMemoryStore(), time.Now())

	sale := session.CurrentSale()
	assert.NotZero(t, sale.ID)
	assert.Equal(t, 1, sale.DisplaySequence)
	assert.Empty(t, sale.Items)
	assert.False(t, sale.Finalized)
	assert.True(t, sale.Total.IsZero())
}

func TestDailyNumberingCountsSameDayOnly(t *testing.T) {
	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	store := history.NewMemoryStore()

	// Two finalized sales on the same day, one the day before.
	seed := []models.Sale{
		{ID: 3, DisplaySequence: 2, Timestamp: day.Add(-1 * time.Hour), Finalized: true},
		{ID: 2, DisplaySequence: 1, Timestamp: day.Add(-2 * time.Hour), Finalized: true},
		{ID: 1, DisplaySequence: 5, Timestamp: day.AddDate(0, 0, -1), Finalized: true},
	}
	require.NoError(t, store.Save(seed))

	session := newTestSession(t, store, day)
	assert.Equal(t, 3, session.CurrentSale().DisplaySequence)
}

func TestFinalizeMovesSaleToHistoryAndOpensNext(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 0, 0, 0, time.Local)
	store := history.NewMemoryStore()
	session := newTestSession(t, store, now)

	_, err := session.AddItem(validItem())
	require.NoError(t, err)

	finalized, err := session.Finalize(FinalizeInput{PaymentMethod: "Dinheiro"})
	require.NoError(t, err)

	assert.True(t, finalized.Finalized)
	assert.Equal(t, 1, finalized.DisplaySequence)
	assert.Equal(t, now, finalized.Timestamp)

	// History gained exactly one durable entry.
	hist := session.History()
	require.Len(t, hist, 1)
	assert.Equal(t, finalized.ID, hist[0].ID)
	persisted, err := store.Load()
	require.NoError(t, err)
	require.Len(t, persisted, 1)

	// A fresh empty sale is open, numbered after the finalized one.
	next := session.CurrentSale()
	assert.NotEqual(t, finalized.ID, next.ID)
	assert.Equal(t, 2, next.DisplaySequence)
	assert.Empty(t, next.Items)
}

func TestFinalizeEmptySaleLeavesStateUnchanged(t *testing.T) {
	session := newTestSession(t, history.NewMemoryStore(), time.Now())
	before := session.CurrentSale()

	_, err := session.Finalize(FinalizeInput{})
	assert.ErrorIs(t, err, ErrEmptySale)

	after := session.CurrentSale()
	assert.Equal(t, before.ID, after.ID)
	assert.False(t, after.Finalized)
	assert.Empty(t, session.History())
}

func TestFinalizeRollsBackOnFailedSave(t *testing.T) {
	store := &failStore{saveErr: errors.New("disk full")}
	session := newTestSession(t, store, time.Now())

	_, err := session.AddItem(validItem())
	require.NoError(t, err)
	saleID := session.CurrentSale().ID

	_, err = session.Finalize(FinalizeInput{})
	require.Error(t, err)

	// The sale stays open and mutable, history stays empty.
	current := session.CurrentSale()
	assert.Equal(t, saleID, current.ID)
	assert.False(t, current.Finalized)
	assert.Empty(t, session.History())

	_, err = session.AddItem(validItem())
	assert.NoError(t, err, "a sale that failed to persist must remain editable")
}

func TestTwoPhaseClear(t *testing.T) {
	session := newTestSession(t, history.NewMemoryStore(), time.Now())

	// Nothing to clear yet.
	_, err := session.RequestClear()
	assert.ErrorIs(t, err, ErrEmptySale)

	_, err = session.AddItem(validItem())
	require.NoError(t, err)
	abandonedID := session.CurrentSale().ID

	// Confirming without (or with a wrong) token is rejected.
	_, err = session.ConfirmClear("bogus")
	assert.ErrorIs(t, err, ErrNoPendingClear)

	token, err := session.RequestClear()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	replacement, err := session.ConfirmClear(token)
	require.NoError(t, err)
	assert.NotEqual(t, abandonedID, replacement.ID)
	assert.Empty(t, replacement.Items)

	// The token is single-use.
	_, err = session.ConfirmClear(token)
	assert.ErrorIs(t, err, ErrNoPendingClear)
}

func TestClearedSaleNumberIsReused(t *testing.T) {
	session := newTestSession(t, history.NewMemoryStore(), time.Now())

	first := session.CurrentSale()
	_, err := session.AddItem(validItem())
	require.NoError(t, err)

	token, err := session.RequestClear()
	require.NoError(t, err)
	replacement, err := session.ConfirmClear(token)
	require.NoError(t, err)

	// The abandoned sale never entered history, so its slot is free again.
	assert.Equal(t, first.DisplaySequence, replacement.DisplaySequence)
}

func TestFinalizeScenario(t *testing.T) {
	// The reference flow: two items, one removal, finalize.
	session := newTestSession(t, history.NewMemoryStore(), time.Now())

	sale, err := session.AddItem(ItemInput{
		ProductName:  "Ração 10kg",
		Quantity:     dec("2"),
		QuantityUnit: models.UnitPiece,
		UnitPrice:    dec("50.00"),
	})
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(dec("100.00")))

	sale, err = session.AddItem(ItemInput{
		ProductName:  "Areia p/ gato",
		Quantity:     dec("1.5"),
		QuantityUnit: models.UnitKilogram,
		UnitPrice:    dec("20.00"),
	})
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(dec("130.00")))

	sale, err = session.RemoveItem(sale.Items[0].ID)
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(dec("30.00")))

	finalized, err := session.Finalize(FinalizeInput{})
	require.NoError(t, err)

	hist := session.History()
	require.Len(t, hist, 1)
	assert.True(t, hist[0].Total.Equal(dec("30.00")))
	assert.Equal(t, 1, finalized.DisplaySequence)
}
