package repos_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"shelfkeeper/internal/domain"
	"shelfkeeper/internal/repos"
)

func openMem(t *testing.T) *repos.Store {
	t.Helper()
	st, err := repos.NewGateway(repos.Options{Backend: repos.BackendSQL, Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenDB_SeedsDemoAccount(t *testing.T) {
	st := openMem(t)
	ctx := context.Background()

	u, err := st.Users.ByEmail(ctx, strings.ToUpper(repos.DemoEmail))
	if err != nil {
		t.Fatalf("demo user: %v", err)
	}
	if strings.Contains(u.Hash, repos.DemoPassword) || !strings.HasPrefix(u.Hash, "$2") {
		t.Fatalf("password not hashed: %s", u.Hash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(repos.DemoPassword)); err != nil {
		t.Fatalf("seed hash does not validate: %v", err)
	}

	products, err := st.Gateway.GetProducts(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != len(repos.MockProducts()) {
		t.Fatalf("want %d products, got %d", len(repos.MockProducts()), len(products))
	}
	batches, err := st.Gateway.GetBatches(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 6 {
		t.Fatalf("want 6 batches, got %d", len(batches))
	}
	// ordered by expiry: the expired yogurt first
	if batches[0].Barcode != "5050666777888" || batches[0].ExpiryDate.IsZero() {
		t.Fatalf("unexpected first batch %+v", batches[0])
	}
}

func TestSQLGateway_RequiresUser(t *testing.T) {
	g := openMem(t).Gateway
	ctx := context.Background()
	if _, err := g.GetProducts(ctx, ""); !errors.Is(err, repos.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
	if err := g.AddBatch(ctx, "", domain.Batch{}); !errors.Is(err, repos.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
	if _, err := g.GetProfile(ctx, ""); !errors.Is(err, repos.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
}

func TestSQLGateway_ScopedToUser(t *testing.T) {
	g := openMem(t).Gateway
	ctx := context.Background()

	p := domain.Product{Barcode: "111", Name: "Oat Milk", Category: domain.CategoryDairy, Price: decimal.RequireFromString("1.80")}
	if err := g.SaveProduct(ctx, "alice", p); err != nil {
		t.Fatal(err)
	}
	today := domain.DateOf(time.Now())
	b := domain.Batch{ID: "alice-1", Barcode: "111", ExpiryDate: today.AddDays(3), Quantity: 2, Status: domain.StatusActive, AddedDate: today}
	if err := g.AddBatch(ctx, "alice", b); err != nil {
		t.Fatal(err)
	}

	bob, err := g.GetBatches(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(bob) != 0 {
		t.Fatalf("bob sees alice's batches: %+v", bob)
	}

	// bob cannot touch alice's batch; the call itself succeeds
	if err := g.UpdateBatchStatus(ctx, "bob", "alice-1", domain.StatusWasted); err != nil {
		t.Fatal(err)
	}
	got, _ := g.GetBatches(ctx, "alice")
	if len(got) != 1 || got[0].Status != domain.StatusActive {
		t.Fatalf("status changed by another account: %+v", got)
	}
	if !got[0].ExpiryDate.Equal(b.ExpiryDate.Time) {
		t.Fatalf("expiry round trip: want %s, got %s", b.ExpiryDate, got[0].ExpiryDate)
	}

	if err := g.UpdateBatchStatus(ctx, "alice", "alice-1", domain.StatusReduced); err != nil {
		t.Fatal(err)
	}
	got, _ = g.GetBatches(ctx, "alice")
	if got[0].Status != domain.StatusReduced {
		t.Fatalf("want reduced, got %s", got[0].Status)
	}
}

func TestSQLGateway_ProductUpsert(t *testing.T) {
	g := openMem(t).Gateway
	ctx := context.Background()
	p := domain.Product{Barcode: "222", Name: "Bread", Category: domain.CategoryBakery, Price: decimal.RequireFromString("1.00")}
	if err := g.SaveProduct(ctx, "u1", p); err != nil {
		t.Fatal(err)
	}
	p.Price = decimal.RequireFromString("1.35")
	if err := g.SaveProduct(ctx, "u1", p); err != nil {
		t.Fatal(err)
	}
	got, err := g.GetProducts(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Price.Equal(decimal.RequireFromString("1.35")) {
		t.Fatalf("upsert failed: %+v", got)
	}
}

func TestSQLGateway_ProfileDefaultAndUpsert(t *testing.T) {
	g := openMem(t).Gateway
	ctx := context.Background()

	p, err := g.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p != domain.DefaultStoreProfile() {
		t.Fatalf("want default profile, got %+v", p)
	}

	p.StoreName = "Corner Shop"
	p.DefaultMarkdownPercent = 30
	if err := g.SaveProfile(ctx, "u1", p); err != nil {
		t.Fatal(err)
	}
	p.Phone = "0123"
	if err := g.SaveProfile(ctx, "u1", p); err != nil {
		t.Fatal(err)
	}
	got, err := g.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Fatalf("want %+v, got %+v", p, got)
	}
}

func TestSQLGateway_BackendFailureWrapped(t *testing.T) {
	st := openMem(t)
	_ = st.DB.Close()
	_, err := st.Gateway.GetBatches(context.Background(), "u1")
	if !errors.Is(err, repos.ErrBackend) {
		t.Fatalf("want ErrBackend, got %v", err)
	}
}

func TestNewGateway_UnknownBackend(t *testing.T) {
	if _, err := repos.NewGateway(repos.Options{Backend: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
