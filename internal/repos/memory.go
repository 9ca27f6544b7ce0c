package repos

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shelfkeeper/internal/domain"
)

type MemoryOptions struct {
	// Latency is added to every call; status updates wait half of it.
	Latency time.Duration
	// Now dates the seeded batches. Defaults to time.Now.
	Now func() time.Time
}

// MemoryGateway is the simulated backend. Each account starts with the demo
// catalogue and batches; nothing survives a restart.
type MemoryGateway struct {
	opts    MemoryOptions
	failing atomic.Bool

	mu       sync.Mutex
	accounts map[string]*memAccount
	users    []domain.User
}

type memAccount struct {
	products []domain.Product
	batches  []domain.Batch
	profile  *domain.StoreProfile
}

func NewMemoryGateway(opts MemoryOptions) *MemoryGateway {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	g := &MemoryGateway{opts: opts, accounts: map[string]*memAccount{}}
	if hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost); err == nil {
		g.users = append(g.users, domain.User{ID: DemoUserID, Email: DemoEmail, Name: "Demo Owner", Hash: string(hash)})
	}
	return g
}

// SetFailing makes every following call fail with ErrBackend until reset.
func (g *MemoryGateway) SetFailing(v bool) { g.failing.Store(v) }

func (g *MemoryGateway) wait(ctx context.Context, d time.Duration) error {
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return backendErr("simulated", ctx.Err())
		case <-t.C:
		}
	}
	if g.failing.Load() {
		return fmt.Errorf("%w: simulated failure", ErrBackend)
	}
	return nil
}

// account returns the state for userID, seeding it on first use. Caller holds g.mu.
func (g *MemoryGateway) account(userID string) *memAccount {
	a, ok := g.accounts[userID]
	if !ok {
		a = &memAccount{products: MockProducts(), batches: MockBatches(g.opts.Now())}
		g.accounts[userID] = a
	}
	return a
}

func (g *MemoryGateway) enter(ctx context.Context, userID string, d time.Duration) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	return g.wait(ctx, d)
}

func (g *MemoryGateway) GetProducts(ctx context.Context, userID string) ([]domain.Product, error) {
	if err := g.enter(ctx, userID, g.opts.Latency); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.account(userID).products), nil
}

func (g *MemoryGateway) SaveProduct(ctx context.Context, userID string, p domain.Product) error {
	if err := g.enter(ctx, userID, g.opts.Latency); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	a := g.account(userID)
	if i := slices.IndexFunc(a.products, func(x domain.Product) bool { return x.Barcode == p.Barcode }); i >= 0 {
		a.products[i] = p
		return nil
	}
	a.products = append(a.products, p)
	return nil
}

func (g *MemoryGateway) GetBatches(ctx context.Context, userID string) ([]domain.Batch, error) {
	if err := g.enter(ctx, userID, g.opts.Latency); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.account(userID).batches), nil
}

func (g *MemoryGateway) AddBatch(ctx context.Context, userID string, b domain.Batch) error {
	if err := g.enter(ctx, userID, g.opts.Latency); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	a := g.account(userID)
	a.batches = append(a.batches, b)
	return nil
}

func (g *MemoryGateway) UpdateBatchStatus(ctx context.Context, userID, id string, status domain.BatchStatus) error {
	if err := g.enter(ctx, userID, g.opts.Latency/2); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	a := g.account(userID)
	for i := range a.batches {
		if a.batches[i].ID == id {
			a.batches[i].Status = status
		}
	}
	return nil
}

func (g *MemoryGateway) GetProfile(ctx context.Context, userID string) (domain.StoreProfile, error) {
	if err := g.enter(ctx, userID, g.opts.Latency); err != nil {
		return domain.StoreProfile{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.account(userID).profile; p != nil {
		return *p, nil
	}
	return domain.DefaultStoreProfile(), nil
}

func (g *MemoryGateway) SaveProfile(ctx context.Context, userID string, p domain.StoreProfile) error {
	if err := g.enter(ctx, userID, g.opts.Latency); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.account(userID).profile = &p
	return nil
}

// ByEmail serves logins for the simulated backend.
func (g *MemoryGateway) ByEmail(_ context.Context, email string) (*domain.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, u := range g.users {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}
