package pos

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agronorte-pos/internal/history"
	"agronorte-pos/internal/models"
)

// Session is the single-terminal POS aggregate: it owns the one open sale
// and the sales history, replacing the process-wide variables the first
// version of the system relied on. All mutations run under one mutex and
// complete (including the durable write) before the call returns.
type Session struct {
	mu      sync.Mutex
	node    *snowflake.Node
	history *history.Manager
	logger  *zap.Logger
	now     func() time.Time

	current      *models.Sale
	pendingClear string
}

// Option tweaks a Session at construction time.
type Option func(*Session)

// WithClock overrides the session's time source. Tests use it to pin the
// calendar day the daily numbering sees.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession builds a session over the given history and opens the first
// empty sale, so there is always exactly one open sale.
func NewSession(hist *history.Manager, logger *zap.Logger, opts ...Option) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to init sale ID generator: %w", err)
	}

	s := &Session{
		node:    node,
		history: hist,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.current = s.newSale()
	return s, nil
}

// newSale opens an empty sale. The daily display number is reserved here,
// at open time: count of history sales stamped on today's calendar day,
// plus one. An opened-then-abandoned sale never enters history, so its
// number is handed out again - the scheme is best-effort, not gap-free.
func (s *Session) newSale() *models.Sale {
	now := s.now()
	sale := &models.Sale{
		ID:              s.node.Generate().Int64(),
		DisplaySequence: s.history.CountOnDate(now) + 1,
		Items:           []models.LineItem{},
		Timestamp:       now,
	}
	sale.RecomputeTotal()

	s.logger.Info("opened new sale",
		zap.Int64("sale_id", sale.ID),
		zap.Int("numero_venda", sale.DisplaySequence),
	)
	return sale
}

// CurrentSale returns a read-only snapshot of the open sale.
func (s *Session) CurrentSale() models.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// AddItem appends a validated line item to the open sale and returns the
// updated snapshot.
func (s *Session) AddItem(in ItemInput) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := AddItem(s.current, in)
	if err != nil {
		return models.Sale{}, err
	}

	s.logger.Info("item added",
		zap.Int64("sale_id", s.current.ID),
		zap.String("item_id", item.ID),
		zap.String("nome_produto", item.ProductName),
		zap.String("subtotal", item.Subtotal.String()),
	)
	return s.current.Clone(), nil
}

// RemoveItem drops a line item from the open sale by ID and returns the
// updated snapshot.
func (s *Session) RemoveItem(itemID string) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := RemoveItem(s.current, itemID); err != nil {
		return models.Sale{}, err
	}

	s.logger.Info("item removed",
		zap.Int64("sale_id", s.current.ID),
		zap.String("item_id", itemID),
	)
	return s.current.Clone(), nil
}

// RequestClear starts the two-phase clear of the open sale and returns an
// opaque confirmation token. It fails with ErrEmptySale when there is
// nothing to clear. A second request replaces any earlier pending token.
func (s *Session) RequestClear() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.current.Items) == 0 {
		return "", ErrEmptySale
	}

	s.pendingClear = uuid.NewString()
	return s.pendingClear, nil
}

// ConfirmClear consumes a pending clear token and replaces the open sale
// with a fresh empty one. The abandoned sale never reaches history, so the
// replacement may reuse its daily number.
func (s *Session) ConfirmClear(token string) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" || token != s.pendingClear {
		return models.Sale{}, ErrNoPendingClear
	}
	s.pendingClear = ""

	s.logger.Info("sale cleared", zap.Int64("sale_id", s.current.ID))
	s.current = s.newSale()
	return s.current.Clone(), nil
}

// Finalize freezes the open sale, appends it to history, persists the
// snapshot and opens the next empty sale. When the durable write fails the
// append is rolled back and the sale reopens untouched: finalize never
// reports success for a sale the store did not keep.
func (s *Session) Finalize(in FinalizeInput) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale := s.current
	prevTimestamp := sale.Timestamp
	prevCustomer := sale.CustomerName
	prevPayment := sale.PaymentMethod

	if err := Finalize(sale, in, s.now()); err != nil {
		return models.Sale{}, err
	}

	if err := s.history.AppendDurable(sale.Clone()); err != nil {
		// The durable write failed: reopen the sale exactly as it was.
		sale.Finalized = false
		sale.Timestamp = prevTimestamp
		sale.CustomerName = prevCustomer
		sale.PaymentMethod = prevPayment
		s.logger.Error("failed to persist finalized sale",
			zap.Int64("sale_id", sale.ID),
			zap.Error(err),
		)
		return models.Sale{}, err
	}

	finalized := sale.Clone()
	s.logger.Info("sale finalized",
		zap.Int64("sale_id", finalized.ID),
		zap.Int("numero_venda", finalized.DisplaySequence),
		zap.String("total", finalized.Total.String()),
	)

	s.pendingClear = ""
	s.current = s.newSale()
	return finalized, nil
}

// History returns a snapshot of the finalized sales, most-recent-first.
func (s *Session) History() []models.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Sales()
}

// GroupedHistory returns the history bucketed by calendar day for display.
func (s *Session) GroupedHistory() []history.DayGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.GroupByCalendarDate()
}

// FindSale locates a finalized sale by ID, e.g. for receipt generation.
func (s *Session) FindSale(id int64) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.FindByID(id)
}
