package expiry

import (
	"github.com/shopspring/decimal"

	"shelfkeeper/internal/domain"
)

const UnknownProductName = "Unknown Product"

// EnrichedBatch is a batch joined with its product. It is derived on every
// read and never stored.
type EnrichedBatch struct {
	domain.Batch
	ProductName     string          `json:"productName"`
	Category        domain.Category `json:"category"`
	Price           decimal.Decimal `json:"price"`
	DaysUntilExpiry int             `json:"daysUntilExpiry"`
}

// Value is price times quantity.
func (b EnrichedBatch) Value() decimal.Decimal {
	return b.Price.Mul(decimal.NewFromInt(int64(b.Quantity)))
}

// DaysUntil is the whole-day distance from today to expiry. Negative once
// the date has passed.
func DaysUntil(expiry, today domain.Date) int {
	return expiry.DaysSince(today)
}

// Enrich joins batches with products and keeps only active batches. This is
// the dashboard set; use EnrichAll when other statuses matter.
func Enrich(batches []domain.Batch, products []domain.Product, today domain.Date) []EnrichedBatch {
	all := EnrichAll(batches, products, today)
	out := all[:0]
	for _, b := range all {
		if b.Status == domain.StatusActive {
			out = append(out, b)
		}
	}
	return out
}

// EnrichAll joins every batch with its product regardless of status. A
// missing product reads as "Unknown Product" in Household at price zero.
func EnrichAll(batches []domain.Batch, products []domain.Product, today domain.Date) []EnrichedBatch {
	byBarcode := indexProducts(products)
	out := make([]EnrichedBatch, 0, len(batches))
	for _, b := range batches {
		e := EnrichedBatch{
			Batch:           b,
			ProductName:     UnknownProductName,
			Category:        domain.CategoryHousehold,
			Price:           decimal.Zero,
			DaysUntilExpiry: DaysUntil(b.ExpiryDate, today),
		}
		if p, ok := byBarcode[b.Barcode]; ok {
			e.ProductName = p.Name
			e.Category = p.Category
			e.Price = p.Price
		}
		out = append(out, e)
	}
	return out
}

// indexProducts keeps the first product seen for each barcode.
func indexProducts(products []domain.Product) map[string]domain.Product {
	m := make(map[string]domain.Product, len(products))
	for _, p := range products {
		if _, seen := m[p.Barcode]; !seen {
			m[p.Barcode] = p
		}
	}
	return m
}
