package domain

import (
	"github.com/shopspring/decimal"
)

// Category is the closed set of product categories. Values match what the
// label analyzer and the stored rows use.
type Category string

const (
	CategoryDairy     Category = "Dairy"
	CategoryBakery    Category = "Bakery"
	CategoryMeatFish  Category = "Meat & Fish"
	CategoryProduce   Category = "Fresh Produce"
	CategoryDrinks    Category = "Soft Drinks"
	CategoryAlcohol   Category = "Alcohol"
	CategoryCanned    Category = "Canned Goods"
	CategorySnacks    Category = "Snacks"
	CategoryHousehold Category = "Household"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryDairy,
	CategoryBakery,
	CategoryMeatFish,
	CategoryProduce,
	CategoryDrinks,
	CategoryAlcohol,
	CategoryCanned,
	CategorySnacks,
	CategoryHousehold,
}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

type BatchStatus string

const (
	StatusActive  BatchStatus = "active"
	StatusReduced BatchStatus = "reduced"
	StatusWasted  BatchStatus = "wasted"
	StatusSold    BatchStatus = "sold"
)

func (s BatchStatus) Valid() bool {
	switch s {
	case StatusActive, StatusReduced, StatusWasted, StatusSold:
		return true
	}
	return false
}

// CanTransitionTo reports whether a batch in status s may move to next.
// Only active batches move, and never back to active.
func (s BatchStatus) CanTransitionTo(next BatchStatus) bool {
	if s != StatusActive {
		return false
	}
	switch next {
	case StatusReduced, StatusWasted, StatusSold:
		return true
	}
	return false
}

type Product struct {
	Barcode  string          `db:"barcode" json:"barcode"`
	Name     string          `db:"name" json:"name"`
	Category Category        `db:"category" json:"category"`
	Price    decimal.Decimal `db:"price" json:"price"` // selling price
}

type Batch struct {
	ID         string      `db:"id" json:"id"`
	Barcode    string      `db:"barcode" json:"barcode"`
	ExpiryDate Date        `db:"expiry_date" json:"expiryDate"`
	Quantity   int         `db:"quantity" json:"quantity"`
	Status     BatchStatus `db:"status" json:"status"`
	AddedDate  Date        `db:"added_date" json:"addedDate"`
}

type StoreProfile struct {
	StoreName              string `db:"store_name" json:"storeName"`
	OwnerName              string `db:"owner_name" json:"ownerName"`
	Email                  string `db:"email" json:"email"`
	Phone                  string `db:"phone" json:"phone"`
	Currency               string `db:"currency" json:"currency"`
	DefaultMarkdownPercent int    `db:"default_markdown_percent" json:"defaultMarkdownPercent"`
}

// DefaultStoreProfile is served to accounts that never saved a profile.
func DefaultStoreProfile() StoreProfile {
	return StoreProfile{
		StoreName:              "John's Shop",
		OwnerName:              "John Doe",
		Email:                  "john@example.com",
		Phone:                  "07700 900900",
		Currency:               "GBP",
		DefaultMarkdownPercent: 50,
	}
}
