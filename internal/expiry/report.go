package expiry

import (
	"github.com/shopspring/decimal"

	"shelfkeeper/internal/domain"
)

// RecoveryRate is the share of the selling price assumed recovered on a
// reduced batch.
var RecoveryRate = decimal.NewFromFloat(0.5)

type StatusCounts struct {
	Active  int `json:"active"`
	Reduced int `json:"reduced"`
	Wasted  int `json:"wasted"`
	Sold    int `json:"sold"`
}

type Report struct {
	Counts           StatusCounts    `json:"counts"`
	WastedCost       decimal.Decimal `json:"wastedCost"`
	RecoveredRevenue decimal.Decimal `json:"recoveredRevenue"`
}

// BuildReport covers batches of every status. Unmatched barcodes price at zero.
func BuildReport(batches []domain.Batch, products []domain.Product) Report {
	byBarcode := indexProducts(products)
	r := Report{WastedCost: decimal.Zero, RecoveredRevenue: decimal.Zero}
	for _, b := range batches {
		price := decimal.Zero
		if p, ok := byBarcode[b.Barcode]; ok {
			price = p.Price
		}
		value := price.Mul(decimal.NewFromInt(int64(b.Quantity)))
		switch b.Status {
		case domain.StatusActive:
			r.Counts.Active++
		case domain.StatusReduced:
			r.Counts.Reduced++
			r.RecoveredRevenue = r.RecoveredRevenue.Add(value.Mul(RecoveryRate))
		case domain.StatusWasted:
			r.Counts.Wasted++
			r.WastedCost = r.WastedCost.Add(value)
		case domain.StatusSold:
			r.Counts.Sold++
		}
	}
	return r
}
