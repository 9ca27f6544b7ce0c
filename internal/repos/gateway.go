package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shelfkeeper/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrBackend         = errors.New("store unavailable")
)

// Gateway is the per-account persistence contract. Every call is scoped to
// userID; an empty userID fails with ErrUnauthenticated.
type Gateway interface {
	GetProducts(ctx context.Context, userID string) ([]domain.Product, error)
	SaveProduct(ctx context.Context, userID string, p domain.Product) error
	GetBatches(ctx context.Context, userID string) ([]domain.Batch, error)
	AddBatch(ctx context.Context, userID string, b domain.Batch) error
	UpdateBatchStatus(ctx context.Context, userID, id string, status domain.BatchStatus) error
	GetProfile(ctx context.Context, userID string) (domain.StoreProfile, error)
	SaveProfile(ctx context.Context, userID string, p domain.StoreProfile) error
}

// UserFinder resolves login identities.
type UserFinder interface {
	ByEmail(ctx context.Context, email string) (*domain.User, error)
}

const (
	BackendSQL       = "sql"
	BackendSimulated = "simulated"
)

type Options struct {
	Backend string
	Driver  string
	DSN     string
	Latency time.Duration
}

// Store bundles the gateway picked by NewGateway with its user lookup.
type Store struct {
	Gateway Gateway
	Users   UserFinder
	DB      *sqlx.DB // nil for the simulated backend
}

func (s *Store) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// NewGateway builds the backend named by opts.Backend.
func NewGateway(opts Options) (*Store, error) {
	switch opts.Backend {
	case BackendSQL, "":
		db, err := OpenDB(opts.Driver, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", opts.Driver, err)
		}
		return &Store{Gateway: NewSQLGateway(db), Users: NewUserRepo(db), DB: db}, nil
	case BackendSimulated:
		mem := NewMemoryGateway(MemoryOptions{Latency: opts.Latency})
		return &Store{Gateway: mem, Users: mem}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}

// SQLGateway implements Gateway over the sqlx repos.
type SQLGateway struct {
	Products *ProductRepo
	Batches  *BatchRepo
	Profiles *ProfileRepo
}

func NewSQLGateway(db *sqlx.DB) *SQLGateway {
	return &SQLGateway{
		Products: NewProductRepo(db),
		Batches:  NewBatchRepo(db),
		Profiles: NewProfileRepo(db),
	}
}

func backendErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}

func (g *SQLGateway) GetProducts(ctx context.Context, userID string) ([]domain.Product, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	out, err := g.Products.ListByUser(ctx, userID)
	if err != nil {
		return nil, backendErr("get products", err)
	}
	return out, nil
}

func (g *SQLGateway) SaveProduct(ctx context.Context, userID string, p domain.Product) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := g.Products.Upsert(ctx, userID, p); err != nil {
		return backendErr("save product", err)
	}
	return nil
}

func (g *SQLGateway) GetBatches(ctx context.Context, userID string) ([]domain.Batch, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	out, err := g.Batches.ListByUser(ctx, userID)
	if err != nil {
		return nil, backendErr("get batches", err)
	}
	return out, nil
}

func (g *SQLGateway) AddBatch(ctx context.Context, userID string, b domain.Batch) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := g.Batches.Insert(ctx, userID, b); err != nil {
		return backendErr("add batch", err)
	}
	return nil
}

func (g *SQLGateway) UpdateBatchStatus(ctx context.Context, userID, id string, status domain.BatchStatus) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := g.Batches.UpdateStatus(ctx, userID, id, status); err != nil {
		return backendErr("update batch status", err)
	}
	return nil
}

func (g *SQLGateway) GetProfile(ctx context.Context, userID string) (domain.StoreProfile, error) {
	if userID == "" {
		return domain.StoreProfile{}, ErrUnauthenticated
	}
	p, ok, err := g.Profiles.Get(ctx, userID)
	if err != nil {
		return domain.StoreProfile{}, backendErr("get profile", err)
	}
	if !ok {
		return domain.DefaultStoreProfile(), nil
	}
	return withProfileDefaults(p), nil
}

func (g *SQLGateway) SaveProfile(ctx context.Context, userID string, p domain.StoreProfile) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := g.Profiles.Upsert(ctx, userID, p); err != nil {
		return backendErr("save profile", err)
	}
	return nil
}

// withProfileDefaults fills blank currency and a zero markdown the way
// stored profiles have always been read back.
func withProfileDefaults(p domain.StoreProfile) domain.StoreProfile {
	def := domain.DefaultStoreProfile()
	if p.Currency == "" {
		p.Currency = def.Currency
	}
	if p.DefaultMarkdownPercent == 0 {
		p.DefaultMarkdownPercent = def.DefaultMarkdownPercent
	}
	return p
}
