package expiry_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"shelfkeeper/internal/domain"
	"shelfkeeper/internal/expiry"
)

var today = domain.NewDate(2024, time.January, 10)

func milk() domain.Product {
	return domain.Product{
		Barcode:  "5010123456789",
		Name:     "Semi Skimmed Milk 1L",
		Category: domain.CategoryDairy,
		Price:    decimal.RequireFromString("1.25"),
	}
}

func batch(id, barcode string, expires domain.Date, qty int, status domain.BatchStatus) domain.Batch {
	return domain.Batch{
		ID:         id,
		Barcode:    barcode,
		ExpiryDate: expires,
		Quantity:   qty,
		Status:     status,
		AddedDate:  today.AddDays(-3),
	}
}

func TestDaysUntil_CalendarDays(t *testing.T) {
	if d := expiry.DaysUntil(domain.NewDate(2024, time.January, 12), today); d != 2 {
		t.Fatalf("want 2, got %d", d)
	}
	if d := expiry.DaysUntil(domain.NewDate(2024, time.January, 5), today); d != -5 {
		t.Fatalf("want -5, got %d", d)
	}
	// across a month and a leap day
	if d := expiry.DaysUntil(domain.NewDate(2024, time.March, 1), domain.NewDate(2024, time.February, 28)); d != 2 {
		t.Fatalf("leap year: want 2, got %d", d)
	}
	// late evening local time still counts as that calendar day
	loc := time.FixedZone("BST", 3600)
	late := domain.DateOf(time.Date(2024, time.January, 10, 23, 30, 0, 0, loc))
	if d := expiry.DaysUntil(domain.NewDate(2024, time.January, 11), late); d != 1 {
		t.Fatalf("want 1, got %d", d)
	}
}

func TestEnrich_JoinAndFallback(t *testing.T) {
	batches := []domain.Batch{
		batch("b1", "5010123456789", domain.NewDate(2024, time.January, 12), 6, domain.StatusActive),
		batch("b2", "0000", domain.NewDate(2024, time.January, 11), 40, domain.StatusActive),
	}
	rows := expiry.Enrich(batches, []domain.Product{milk()}, today)
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0].ProductName != "Semi Skimmed Milk 1L" || rows[0].Category != domain.CategoryDairy || rows[0].DaysUntilExpiry != 2 {
		t.Fatalf("bad join: %+v", rows[0])
	}
	u := rows[1]
	if u.ProductName != expiry.UnknownProductName || u.Category != domain.CategoryHousehold || !u.Price.IsZero() {
		t.Fatalf("bad fallback: %+v", u)
	}
}

func TestEnrich_FirstDuplicateWins(t *testing.T) {
	dup := milk()
	dup.Name = "Second Milk"
	rows := expiry.Enrich(
		[]domain.Batch{batch("b1", milk().Barcode, today, 1, domain.StatusActive)},
		[]domain.Product{milk(), dup},
		today,
	)
	if rows[0].ProductName != "Semi Skimmed Milk 1L" {
		t.Fatalf("want first product, got %q", rows[0].ProductName)
	}
}

func TestEnrich_ActiveOnlyButEnrichAllKeepsEverything(t *testing.T) {
	batches := []domain.Batch{
		batch("a", milk().Barcode, today, 1, domain.StatusActive),
		batch("r", milk().Barcode, today, 1, domain.StatusReduced),
		batch("w", milk().Barcode, today, 1, domain.StatusWasted),
		batch("s", milk().Barcode, today, 1, domain.StatusSold),
	}
	products := []domain.Product{milk()}
	if rows := expiry.Enrich(batches, products, today); len(rows) != 1 || rows[0].ID != "a" {
		t.Fatalf("Enrich should keep only active, got %+v", rows)
	}
	if rows := expiry.EnrichAll(batches, products, today); len(rows) != 4 {
		t.Fatalf("EnrichAll should keep all, got %d", len(rows))
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	batches := []domain.Batch{
		batch("b1", milk().Barcode, domain.NewDate(2024, time.January, 12), 6, domain.StatusActive),
		batch("b2", "x", domain.NewDate(2024, time.February, 1), 2, domain.StatusActive),
	}
	products := []domain.Product{milk()}
	first, _ := json.Marshal(expiry.Enrich(batches, products, today))
	second, _ := json.Marshal(expiry.Enrich(batches, products, today))
	if string(first) != string(second) {
		t.Fatalf("enrich not idempotent:\n%s\n%s", first, second)
	}
}
