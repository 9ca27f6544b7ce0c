package repos_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shelfkeeper/internal/domain"
	"shelfkeeper/internal/repos"
)

func TestMemoryGateway_SeedsPerAccount(t *testing.T) {
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	g := repos.NewMemoryGateway(repos.MemoryOptions{Now: func() time.Time { return now }})
	ctx := context.Background()

	batches, err := g.GetBatches(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 6 {
		t.Fatalf("want 6 seeded batches, got %d", len(batches))
	}
	if batches[0].ExpiryDate.String() != "2024-01-11" {
		t.Fatalf("milk should expire tomorrow, got %s", batches[0].ExpiryDate)
	}

	if err := g.UpdateBatchStatus(ctx, "a", "b1", domain.StatusSold); err != nil {
		t.Fatal(err)
	}
	other, _ := g.GetBatches(ctx, "b")
	if other[0].Status != domain.StatusActive {
		t.Fatal("accounts share state")
	}
	mine, _ := g.GetBatches(ctx, "a")
	if mine[0].Status != domain.StatusSold {
		t.Fatalf("want sold, got %s", mine[0].Status)
	}
}

func TestMemoryGateway_FailSwitchAndAuth(t *testing.T) {
	g := repos.NewMemoryGateway(repos.MemoryOptions{})
	ctx := context.Background()

	if _, err := g.GetProducts(ctx, ""); !errors.Is(err, repos.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
	g.SetFailing(true)
	if err := g.UpdateBatchStatus(ctx, "a", "b1", domain.StatusWasted); !errors.Is(err, repos.ErrBackend) {
		t.Fatalf("want ErrBackend, got %v", err)
	}
	g.SetFailing(false)
	if _, err := g.GetProducts(ctx, "a"); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryGateway_LatencyHonoursContext(t *testing.T) {
	g := repos.NewMemoryGateway(repos.MemoryOptions{Latency: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := g.GetBatches(ctx, "a")
	if !errors.Is(err, repos.ErrBackend) {
		t.Fatalf("want ErrBackend on cancel, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("latency ignored the context")
	}
}

func TestMemoryGateway_Users(t *testing.T) {
	g := repos.NewMemoryGateway(repos.MemoryOptions{})
	u, err := g.ByEmail(context.Background(), "Demo@ShelfKeeper.test")
	if err != nil || u.ID != repos.DemoUserID {
		t.Fatalf("demo user lookup: %+v %v", u, err)
	}
	if _, err := g.ByEmail(context.Background(), "nobody@x.test"); err == nil {
		t.Fatal("expected miss")
	}
}
