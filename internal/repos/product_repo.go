package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"shelfkeeper/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) ListByUser(ctx context.Context, userID string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
  SELECT barcode, name, category, price
  FROM products
  WHERE user_id = ?
  ORDER BY name
`), userID)
	return out, err
}

// Upsert inserts the product or replaces the stored one with the same barcode.
func (r *ProductRepo) Upsert(ctx context.Context, userID string, p domain.Product) error {
	return upsertProduct(ctx, r.db, userID, p)
}

func upsertProduct(ctx context.Context, ext sqlx.ExtContext, userID string, p domain.Product) error {
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO products(user_id, barcode, name, category, price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, barcode) DO UPDATE SET
		  name = excluded.name,
		  category = excluded.category,
		  price = excluded.price
	`), userID, p.Barcode, p.Name, string(p.Category), p.Price)
	return err
}
