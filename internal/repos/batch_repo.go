package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"shelfkeeper/internal/domain"
)

type BatchRepo struct{ db *sqlx.DB }

func NewBatchRepo(db *sqlx.DB) *BatchRepo { return &BatchRepo{db: db} }

// ListByUser returns every batch of the account, whatever its status.
func (r *BatchRepo) ListByUser(ctx context.Context, userID string) ([]domain.Batch, error) {
	out := []domain.Batch{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, barcode, expiry_date, quantity, status, added_date
		FROM batches
		WHERE user_id = ?
		ORDER BY expiry_date, added_date
	`), userID)
	return out, err
}

func (r *BatchRepo) Insert(ctx context.Context, userID string, b domain.Batch) error {
	return insertBatch(ctx, r.db, userID, b)
}

// UpdateStatus sets the status of one of the account's batches. Unknown ids
// (or ids owned by another account) match no rows and are not an error.
func (r *BatchRepo) UpdateStatus(ctx context.Context, userID, id string, status domain.BatchStatus) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE batches SET status = ?
		WHERE id = ? AND user_id = ?
	`), string(status), id, userID)
	return err
}

func insertBatch(ctx context.Context, ext sqlx.ExtContext, userID string, b domain.Batch) error {
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO batches(id, user_id, barcode, expiry_date, quantity, status, added_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), b.ID, userID, b.Barcode, b.ExpiryDate, b.Quantity, string(b.Status), b.AddedDate)
	return err
}
