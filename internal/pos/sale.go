package pos

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agronorte-pos/internal/models"
)

// ItemInput is one product line as entered at the terminal.
type ItemInput struct {
	ProductName  string
	Quantity     decimal.Decimal
	QuantityUnit models.QuantityUnit
	UnitPrice    decimal.Decimal
}

// FinalizeInput carries the optional fields attached when a sale closes.
type FinalizeInput struct {
	CustomerName  string
	PaymentMethod string
}

// AddItem validates the input and appends a line item to an open sale,
// recomputing the running total. On a validation failure the sale is not
// mutated. The item gets a fresh unique ID and a subtotal derived from
// quantity × unit price.
func AddItem(sale *models.Sale, in ItemInput) (models.LineItem, error) {
	if sale.Finalized {
		return models.LineItem{}, ErrSaleFinalized
	}

	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return models.LineItem{}, invalid("product name must not be empty")
	}
	if !in.Quantity.IsPositive() {
		return models.LineItem{}, invalid("quantity must be greater than zero")
	}
	if !in.UnitPrice.IsPositive() {
		return models.LineItem{}, invalid("unit price must be greater than zero")
	}

	unit := in.QuantityUnit
	if unit == "" {
		unit = models.UnitPiece
	}
	if !unit.Valid() {
		return models.LineItem{}, invalid("unknown quantity unit: " + string(unit))
	}

	item := models.LineItem{
		ID:           uuid.NewString(),
		ProductName:  name,
		Quantity:     in.Quantity,
		QuantityUnit: unit,
		UnitPrice:    in.UnitPrice,
		Subtotal:     in.Quantity.Mul(in.UnitPrice),
	}

	sale.Items = append(sale.Items, item)
	sale.RecomputeTotal()
	return item, nil
}

// RemoveItem takes the item with the given ID out of an open sale and
// recomputes the total. Returns ErrItemNotFound when the ID is absent.
func RemoveItem(sale *models.Sale, itemID string) error {
	if sale.Finalized {
		return ErrSaleFinalized
	}

	for i := range sale.Items {
		if sale.Items[i].ID == itemID {
			sale.Items = append(sale.Items[:i], sale.Items[i+1:]...)
			sale.RecomputeTotal()
			return nil
		}
	}
	return ErrItemNotFound
}

// Finalize freezes the sale: it must contain at least one item, gets its
// timestamp stamped to the finalize moment and picks up the optional
// customer name and payment method when they are non-empty. After this the
// sale is immutable.
func Finalize(sale *models.Sale, in FinalizeInput, now time.Time) error {
	if sale.Finalized {
		return ErrSaleFinalized
	}
	if len(sale.Items) == 0 {
		return ErrEmptySale
	}

	sale.Finalized = true
	sale.Timestamp = now

	if name := strings.TrimSpace(in.CustomerName); name != "" {
		sale.CustomerName = name
	}
	if method := strings.TrimSpace(in.PaymentMethod); method != "" {
		sale.PaymentMethod = method
	}
	return nil
}
