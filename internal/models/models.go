package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// QuantityUnit tells whether a line item is sold by piece or by weight.
// The stored values ("unidade"/"kg") match the legacy snapshot format.
type QuantityUnit string

const (
	UnitPiece    QuantityUnit = "unidade"
	UnitKilogram QuantityUnit = "kg"
)

// Valid reports whether the unit is one of the two known values.
func (u QuantityUnit) Valid() bool {
	return u == UnitPiece || u == UnitKilogram
}

// Label returns the short display form used on receipts ("unid." or "kg").
func (u QuantityUnit) Label() string {
	if u == UnitKilogram {
		return "kg"
	}
	return "unid."
}

// LineItem - one product entry inside a sale.
// Subtotal is always Quantity × UnitPrice; it is recomputed by the
// aggregator and never mutated on its own.
type LineItem struct {
	ID           string          `json:"id"`
	ProductName  string          `json:"nome_produto"`
	Quantity     decimal.Decimal `json:"quantidade"`
	QuantityUnit QuantityUnit    `json:"tipo_quantidade"`
	UnitPrice    decimal.Decimal `json:"preco_unitario"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// Sale - one customer transaction, open or finalized.
// The JSON field names are the ones the original frontend and the stored
// snapshots use, so persisted history stays readable across versions.
type Sale struct {
	ID              int64           `json:"id"`           // globally unique, time-ordered
	DisplaySequence int             `json:"numero_venda"` // per-day human-facing number
	Items           []LineItem      `json:"itens"`
	Total           decimal.Decimal `json:"total"`
	Timestamp       time.Time       `json:"data_venda"` // finalize time once the sale is closed
	Finalized       bool            `json:"finalizada"`
	CustomerName    string          `json:"nome_cliente,omitempty"`
	PaymentMethod   string          `json:"forma_pagamento,omitempty"`
}

// RecomputeTotal re-derives Total from the current items' subtotals.
func (s *Sale) RecomputeTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal)
	}
	s.Total = total
}

// Clone returns a deep copy safe to hand out as a read-only snapshot.
func (s *Sale) Clone() Sale {
	out := *s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}

// HistorySnapshot is the single storage row holding the whole serialized
// sales history, mirroring the one-key document the first version of the
// system kept in browser storage.
type HistorySnapshot struct {
	Key       string         `gorm:"primaryKey;size:64" json:"key"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	UpdatedAt time.Time      `json:"updated_at"`
}
