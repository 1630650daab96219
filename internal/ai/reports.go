package ai

import (
	"time"

	"github.com/shopspring/decimal"

	"agronorte-pos/internal/models"
)

// SalesReportResult holds the aggregate the assistant reads back.
type SalesReportResult struct {
	TotalRevenue decimal.Decimal
	TotalCount   int
}

// RangeReport sums revenue and counts sales whose timestamp falls inside
// [start, end]. It runs over a history snapshot; there is no query layer
// to push this down to.
func RangeReport(sales []models.Sale, start, end time.Time) SalesReportResult {
	result := SalesReportResult{TotalRevenue: decimal.Zero}

	for i := range sales {
		ts := sales[i].Timestamp
		if ts.Before(start) || ts.After(end) {
			continue
		}
		result.TotalRevenue = result.TotalRevenue.Add(sales[i].Total)
		result.TotalCount++
	}
	return result
}
