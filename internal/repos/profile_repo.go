package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"shelfkeeper/internal/domain"
)

type ProfileRepo struct{ db *sqlx.DB }

func NewProfileRepo(db *sqlx.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// Get returns the stored profile. ok is false when the account has none.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (p domain.StoreProfile, ok bool, err error) {
	err = r.db.GetContext(ctx, &p, r.db.Rebind(`
		SELECT store_name, owner_name, email, phone, currency, default_markdown_percent
		FROM store_profiles
		WHERE user_id = ?
	`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoreProfile{}, false, nil
	}
	if err != nil {
		return domain.StoreProfile{}, false, err
	}
	return p, true, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, userID string, p domain.StoreProfile) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO store_profiles(user_id, store_name, owner_name, email, phone, currency, default_markdown_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		  store_name = excluded.store_name,
		  owner_name = excluded.owner_name,
		  email = excluded.email,
		  phone = excluded.phone,
		  currency = excluded.currency,
		  default_markdown_percent = excluded.default_markdown_percent
	`), userID, p.StoreName, p.OwnerName, p.Email, p.Phone, p.Currency, p.DefaultMarkdownPercent)
	return err
}
