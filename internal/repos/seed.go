package repos

import (
	"time"

	"github.com/shopspring/decimal"

	"shelfkeeper/internal/domain"
)

// MockProducts is the demo catalogue.
func MockProducts() []domain.Product {
	p := func(barcode, name string, c domain.Category, price string) domain.Product {
		return domain.Product{Barcode: barcode, Name: name, Category: c, Price: decimal.RequireFromString(price)}
	}
	return []domain.Product{
		p("5010123456789", "Semi Skimmed Milk 1L", domain.CategoryDairy, "1.25"),
		p("5000111222333", "Hovis Best of Both Loaf", domain.CategoryBakery, "1.85"),
		p("5020333444555", "Cheddar Cheese Block 350g", domain.CategoryDairy, "3.50"),
		p("5449000000996", "Coca Cola 500ml", domain.CategoryDrinks, "1.50"),
		p("5060001110001", "Chicken Breast Fillets 300g", domain.CategoryMeatFish, "4.50"),
		p("5050666777888", "Greek Yogurt 500g", domain.CategoryDairy, "2.10"),
		p("8000500310427", "Nutella Hazelnut Spread", domain.CategorySnacks, "3.00"),
		p("0000000000001", "Test Sandwich BLT", domain.CategoryProduce, "3.25"),
	}
}

// MockBatches returns demo batches with dates relative to now.
func MockBatches(now time.Time) []domain.Batch {
	today := domain.DateOf(now)
	b := func(id, barcode string, expires, qty, added int) domain.Batch {
		return domain.Batch{
			ID:         id,
			Barcode:    barcode,
			ExpiryDate: today.AddDays(expires),
			Quantity:   qty,
			Status:     domain.StatusActive,
			AddedDate:  today.AddDays(added),
		}
	}
	return []domain.Batch{
		b("b1", "5010123456789", 1, 6, -5),    // milk, tomorrow
		b("b2", "5060001110001", 2, 4, -4),    // chicken
		b("b3", "5000111222333", 4, 10, -2),   // bread
		b("b4", "5020333444555", 15, 12, -10), // cheese
		b("b5", "5449000000996", 90, 24, -20), // cola
		b("b6", "5050666777888", -1, 2, -10),  // yogurt, expired yesterday
	}
}
