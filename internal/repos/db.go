package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "shelfkeeper/internal/log"
)

const (
	DemoUserID   = "u-demo"
	DemoEmail    = "demo@shelfkeeper.test"
	DemoPassword = "Passw0rd!"
)

// OpenDB opens the store, creates the schema and seeds the demo account.
// driver is "sqlite" or "postgres".
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// every connection to :memory: is a fresh database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := seedDemoData(db, time.Now()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	if db.DriverName() == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return err
		}
	}
	schema := `
-- Users (local stand-in for the auth provider)
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Products, keyed by barcode within an account
CREATE TABLE IF NOT EXISTS products(
  user_id TEXT NOT NULL,
  barcode TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
  PRIMARY KEY (user_id, barcode)
);

-- Batches; barcode is not a foreign key
CREATE TABLE IF NOT EXISTS batches(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  barcode TEXT NOT NULL,
  expiry_date DATE NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  status TEXT NOT NULL CHECK (status IN ('active','reduced','wasted','sold')),
  added_date DATE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_batches_user ON batches(user_id);

-- One profile per account
CREATE TABLE IF NOT EXISTS store_profiles(
  user_id TEXT PRIMARY KEY,
  store_name TEXT NOT NULL DEFAULT '',
  owner_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  currency TEXT NOT NULL DEFAULT 'GBP',
  default_markdown_percent INTEGER NOT NULL DEFAULT 50
);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures the demo account exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(db.Rebind(`
		INSERT INTO users(id,email,name,password_hash)
		VALUES(?,?,?,?)
		ON CONFLICT(email) DO NOTHING
	`), DemoUserID, DemoEmail, "Demo Owner", string(hash))
	return err
}

// seedDemoData loads the mock catalogue into the demo account when it has none.
func seedDemoData(db *sqlx.DB, now time.Time) error {
	var n int
	if err := db.Get(&n, db.Rebind(`SELECT COUNT(*) FROM products WHERE user_id=?`), DemoUserID); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Info(nil, "seed.demo", map[string]any{"user_id": DemoUserID})

	ctx := context.Background()
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range MockProducts() {
		if err := upsertProduct(ctx, tx, DemoUserID, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Barcode, err)
		}
	}
	for _, b := range MockBatches(now) {
		if err := insertBatch(ctx, tx, DemoUserID, b); err != nil {
			return fmt.Errorf("seed batch %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}
