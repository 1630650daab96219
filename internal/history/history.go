package history

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"agronorte-pos/internal/models"
)

// ErrSaleNotFound is returned when no sale in the history matches the given ID.
var ErrSaleNotFound = errors.New("sale not found")

// Store persists the whole history as one snapshot. Save overwrites the
// previous state wholesale; there is no incremental append.
type Store interface {
	Load() ([]models.Sale, error)
	Save(sales []models.Sale) error
}

// Manager owns the ordered list of finalized sales, most-recent-first.
// It is single-owner: callers (the POS session) serialize access to it.
type Manager struct {
	store  Store
	logger *zap.Logger
	sales  []models.Sale
}

// NewManager creates a Manager on top of the given store and loads the
// persisted history. A storage failure on load is logged and recovered by
// starting from an empty history - the terminal must stay usable even when
// the stored snapshot is missing or corrupt.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		store:  store,
		logger: logger,
	}

	sales, err := store.Load()
	if err != nil {
		m.logger.Warn("failed to load sales history, starting empty", zap.Error(err))
		sales = nil
	}
	m.sales = sales

	return m
}

// Len returns the number of finalized sales in the history.
func (m *Manager) Len() int {
	return len(m.sales)
}

// Sales returns a deep copy of the history, most-recent-first.
func (m *Manager) Sales() []models.Sale {
	out := make([]models.Sale, len(m.sales))
	for i := range m.sales {
		out[i] = m.sales[i].Clone()
	}
	return out
}

// Append inserts a finalized sale at the front of the history. It is not
// idempotent: appending the same sale twice produces a duplicate entry, so
// callers append exactly once per finalize. Prefer AppendDurable, which
// keeps the in-memory list in step with storage.
func (m *Manager) Append(sale models.Sale) {
	m.sales = append([]models.Sale{sale}, m.sales...)
}

// Save writes the full history snapshot to the store.
func (m *Manager) Save() error {
	if err := m.store.Save(m.sales); err != nil {
		return fmt.Errorf("failed to save sales history: %w", err)
	}
	return nil
}

// AppendDurable appends the sale and persists the snapshot. When the write
// fails the append is rolled back, so the in-memory history never claims a
// sale that durable storage does not have.
func (m *Manager) AppendDurable(sale models.Sale) error {
	m.Append(sale)
	if err := m.Save(); err != nil {
		m.sales = m.sales[1:]
		return err
	}
	return nil
}

// FindByID locates a finalized sale by its unique ID.
// Returns ErrSaleNotFound when no sale matches.
func (m *Manager) FindByID(id int64) (models.Sale, error) {
	for i := range m.sales {
		if m.sales[i].ID == id {
			return m.sales[i].Clone(), nil
		}
	}
	return models.Sale{}, fmt.Errorf("%w: %d", ErrSaleNotFound, id)
}

// CountOnDate counts finalized sales whose stored timestamp falls on the
// same local calendar day as t. The sale aggregator uses this to hand out
// the next daily display number.
func (m *Manager) CountOnDate(t time.Time) int {
	y, mo, d := t.Local().Date()
	count := 0
	for i := range m.sales {
		sy, smo, sd := m.sales[i].Timestamp.Local().Date()
		if sy == y && smo == mo && sd == d {
			count++
		}
	}
	return count
}

// DayGroup is one calendar day's worth of sales for display.
type DayGroup struct {
	Date  string        `json:"data"` // DD/MM/YYYY
	Sales []models.Sale `json:"vendas"`
}

// GroupByCalendarDate buckets the history by each sale's local calendar
// date. Order within a bucket follows history order (most-recent-first);
// the day groups themselves come back most recent date first. Grouping is
// a view: the stored history order is never touched.
func (m *Manager) GroupByCalendarDate() []DayGroup {
	type dayKey struct {
		year  int
		month time.Month
		day   int
	}

	buckets := map[dayKey][]models.Sale{}
	var keys []dayKey

	for i := range m.sales {
		y, mo, d := m.sales[i].Timestamp.Local().Date()
		k := dayKey{y, mo, d}
		if _, seen := buckets[k]; !seen {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], m.sales[i].Clone())
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.year != b.year {
			return a.year > b.year
		}
		if a.month != b.month {
			return a.month > b.month
		}
		return a.day > b.day
	})

	groups := make([]DayGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, DayGroup{
			Date:  fmt.Sprintf("%02d/%02d/%04d", k.day, k.month, k.year),
			Sales: buckets[k],
		})
	}
	return groups
}
