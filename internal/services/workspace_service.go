package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shelfkeeper/internal/domain"
	"shelfkeeper/internal/expiry"
	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/repos"
)

var (
	ErrBatchNotFound     = errors.New("batch not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidBatch      = errors.New("invalid batch")
	ErrInvalidProfile    = errors.New("invalid store profile")
)

// UpdateState tracks an optimistic status change.
type UpdateState string

const (
	UpdatePending    UpdateState = "pending"
	UpdateApplied    UpdateState = "applied"
	UpdateRolledBack UpdateState = "rolled_back"
)

// StatusUpdate is the outcome of UpdateBatchStatus. Previous is the batch as
// it was before the change.
type StatusUpdate struct {
	State    UpdateState  `json:"state"`
	BatchID  string       `json:"batchId"`
	Status   string       `json:"status"`
	Previous domain.Batch `json:"previous"`
}

// Snapshot is one account's view of the store.
type Snapshot struct {
	Products []domain.Product
	Batches  []domain.Batch
	Profile  domain.StoreProfile
	LoadedAt time.Time
}

func (s Snapshot) clone() Snapshot {
	s.Products = slices.Clone(s.Products)
	s.Batches = slices.Clone(s.Batches)
	return s
}

type workspace struct {
	mu     sync.Mutex
	loaded bool
	snap   Snapshot
}

// WorkspaceService keeps a snapshot per account and derives every view
// from it. Writes go to the store; see UpdateBatchStatus for ordering.
type WorkspaceService struct {
	Store    repos.Gateway
	Settings *expiry.AlertSettings
	Now      func() time.Time

	mu     sync.Mutex
	spaces map[string]*workspace
}

func NewWorkspaceService(store repos.Gateway, settings *expiry.AlertSettings) *WorkspaceService {
	if settings == nil {
		settings = expiry.Defaults()
	}
	return &WorkspaceService{Store: store, Settings: settings, Now: time.Now, spaces: map[string]*workspace{}}
}

func (s *WorkspaceService) Today() domain.Date {
	if s.Now == nil {
		return domain.DateOf(time.Now())
	}
	return domain.DateOf(s.Now())
}

func (s *WorkspaceService) space(userID string) *workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spaces == nil {
		s.spaces = map[string]*workspace{}
	}
	w, ok := s.spaces[userID]
	if !ok {
		w = &workspace{}
		s.spaces[userID] = w
	}
	return w
}

// Load replaces the account's snapshot with what the store holds.
func (s *WorkspaceService) Load(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, repos.ErrUnauthenticated
	}
	products, err := s.Store.GetProducts(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	batches, err := s.Store.GetBatches(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	profile, err := s.Store.GetProfile(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Products: products, Batches: batches, Profile: profile, LoadedAt: time.Now()}

	w := s.space(userID)
	w.mu.Lock()
	w.snap = snap
	w.loaded = true
	w.mu.Unlock()
	return snap.clone(), nil
}

// Snapshot returns a copy of the account's snapshot, loading it on first use.
func (s *WorkspaceService) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, repos.ErrUnauthenticated
	}
	w := s.space(userID)
	w.mu.Lock()
	if w.loaded {
		snap := w.snap.clone()
		w.mu.Unlock()
		return snap, nil
	}
	w.mu.Unlock()
	return s.Load(ctx, userID)
}

type Dashboard struct {
	Horizon          expiry.Horizon         `json:"horizon"`
	Stats            expiry.Stats           `json:"stats"`
	Batches          []expiry.EnrichedBatch `json:"batches"`
	BundleCandidates []string               `json:"bundleCandidates"`
	HasUrgent        bool                   `json:"hasUrgent"`
	StoreName        string                 `json:"storeName"`
}

func (s *WorkspaceService) Dashboard(ctx context.Context, userID string, h expiry.Horizon) (Dashboard, error) {
	if h == "" {
		h = expiry.HorizonWeek
	}
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	rows := expiry.Enrich(snap.Batches, snap.Products, s.Today())
	return Dashboard{
		Horizon:          h,
		Stats:            expiry.Summarize(rows),
		Batches:          expiry.SelectView(rows, expiry.ViewQuery{Horizon: h}, s.Settings),
		BundleCandidates: expiry.BundleCandidates(rows),
		HasUrgent:        expiry.HasUrgent(rows),
		StoreName:        snap.Profile.StoreName,
	}, nil
}

// InventoryRow adds the urgency tag used to colour the inventory list.
type InventoryRow struct {
	expiry.EnrichedBatch
	Urgency expiry.Urgency `json:"urgency"`
}

func (s *WorkspaceService) Inventory(ctx context.Context, userID string, q expiry.ViewQuery) ([]InventoryRow, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	q.Horizon = ""
	rows := expiry.SelectView(expiry.Enrich(snap.Batches, snap.Products, s.Today()), q, s.Settings)
	out := make([]InventoryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, InventoryRow{EnrichedBatch: r, Urgency: s.Settings.Classify(r.DaysUntilExpiry, r.Category)})
	}
	return out, nil
}

func (s *WorkspaceService) Report(ctx context.Context, userID string) (expiry.Report, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return expiry.Report{}, err
	}
	return expiry.BuildReport(snap.Batches, snap.Products), nil
}

// LookupProduct finds a product by barcode in the snapshot.
func (s *WorkspaceService) LookupProduct(ctx context.Context, userID, barcode string) (domain.Product, bool, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return domain.Product{}, false, err
	}
	for _, p := range snap.Products {
		if p.Barcode == barcode {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

// FindBatch returns the enriched batch with id, whatever its status.
func (s *WorkspaceService) FindBatch(ctx context.Context, userID, id string) (expiry.EnrichedBatch, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return expiry.EnrichedBatch{}, err
	}
	for _, r := range expiry.EnrichAll(snap.Batches, snap.Products, s.Today()) {
		if r.ID == id {
			return r, nil
		}
	}
	return expiry.EnrichedBatch{}, ErrBatchNotFound
}

// NewProduct describes a product seen for the first time at intake.
type NewProduct struct {
	Name     string
	Category domain.Category
	Price    string
}

type IntakeInput struct {
	Barcode    string
	ExpiryDate domain.Date
	Quantity   int
	Product    *NewProduct // required when the barcode is unknown
}

// AddBatch records new stock. An unknown barcode saves the product first,
// then the batch. The batch reaches the snapshot only after the store
// accepted it.
func (s *WorkspaceService) AddBatch(ctx context.Context, userID string, in IntakeInput) (domain.Batch, error) {
	in.Barcode = strings.TrimSpace(in.Barcode)
	if in.Barcode == "" || in.ExpiryDate.IsZero() || in.Quantity < 1 {
		return domain.Batch{}, fmt.Errorf("%w: barcode, expiry date and a positive quantity are required", ErrInvalidBatch)
	}
	_, known, err := s.LookupProduct(ctx, userID, in.Barcode)
	if err != nil {
		return domain.Batch{}, err
	}

	var product *domain.Product
	if !known {
		if in.Product == nil || strings.TrimSpace(in.Product.Name) == "" {
			return domain.Batch{}, fmt.Errorf("%w: name required for a new product", ErrInvalidBatch)
		}
		p := domain.Product{
			Barcode:  in.Barcode,
			Name:     strings.TrimSpace(in.Product.Name),
			Category: in.Product.Category,
			Price:    parsePrice(in.Product.Price),
		}
		if !p.Category.Valid() {
			p.Category = domain.CategoryHousehold
		}
		product = &p
	}

	today := s.Today()
	b := domain.Batch{
		ID:         uuid.NewString(),
		Barcode:    in.Barcode,
		ExpiryDate: in.ExpiryDate,
		Quantity:   in.Quantity,
		Status:     domain.StatusActive,
		AddedDate:  today,
	}

	w := s.space(userID)
	if product != nil {
		if err := s.Store.SaveProduct(ctx, userID, *product); err != nil {
			return domain.Batch{}, err
		}
		w.mu.Lock()
		w.snap.Products = upsertProduct(w.snap.Products, *product)
		w.mu.Unlock()
	}
	if err := s.Store.AddBatch(ctx, userID, b); err != nil {
		return domain.Batch{}, err
	}
	// a reload since the write may already carry the batch
	w.mu.Lock()
	if !slices.ContainsFunc(w.snap.Batches, func(x domain.Batch) bool { return x.ID == b.ID }) {
		w.snap.Batches = append(w.snap.Batches, b)
	}
	w.mu.Unlock()
	return b, nil
}

func upsertProduct(ps []domain.Product, p domain.Product) []domain.Product {
	if i := slices.IndexFunc(ps, func(x domain.Product) bool { return x.Barcode == p.Barcode }); i >= 0 {
		ps = slices.Clone(ps)
		ps[i] = p
		return ps
	}
	return append(ps, p)
}

// parsePrice reads a non-negative price, 0 when unreadable.
func parsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// UpdateBatchStatus applies the change to the snapshot, then writes it to
// the store. A failed write restores the previous batch and returns the
// error along with a rolled_back result.
func (s *WorkspaceService) UpdateBatchStatus(ctx context.Context, userID, id string, status domain.BatchStatus) (StatusUpdate, error) {
	if _, err := s.Snapshot(ctx, userID); err != nil {
		return StatusUpdate{}, err
	}
	w := s.space(userID)

	w.mu.Lock()
	i := slices.IndexFunc(w.snap.Batches, func(b domain.Batch) bool { return b.ID == id })
	if i < 0 {
		w.mu.Unlock()
		return StatusUpdate{}, ErrBatchNotFound
	}
	prev := w.snap.Batches[i]
	if !prev.Status.CanTransitionTo(status) {
		w.mu.Unlock()
		return StatusUpdate{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, prev.Status, status)
	}
	w.snap.Batches[i].Status = status
	w.mu.Unlock()

	res := StatusUpdate{State: UpdatePending, BatchID: id, Status: string(status), Previous: prev}
	if err := s.Store.UpdateBatchStatus(ctx, userID, id, status); err != nil {
		w.mu.Lock()
		if j := slices.IndexFunc(w.snap.Batches, func(b domain.Batch) bool { return b.ID == id }); j >= 0 {
			w.snap.Batches[j] = prev
		}
		w.mu.Unlock()
		applog.Error(nil, "batch.status.rollback", err, map[string]any{"batch_id": id, "status": status})
		res.State = UpdateRolledBack
		res.Status = string(prev.Status)
		return res, err
	}
	res.State = UpdateApplied
	return res, nil
}

func (s *WorkspaceService) Profile(ctx context.Context, userID string) (domain.StoreProfile, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return domain.StoreProfile{}, err
	}
	return snap.Profile, nil
}

// UpdateProfile applies p locally and then saves it. A failed save is
// reported but the local profile keeps the new values.
func (s *WorkspaceService) UpdateProfile(ctx context.Context, userID string, p domain.StoreProfile) (domain.StoreProfile, error) {
	p.StoreName = strings.TrimSpace(p.StoreName)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.StoreName == "" || len(p.Currency) != 3 || p.DefaultMarkdownPercent < 0 || p.DefaultMarkdownPercent > 100 {
		return domain.StoreProfile{}, ErrInvalidProfile
	}
	if _, err := s.Snapshot(ctx, userID); err != nil {
		return domain.StoreProfile{}, err
	}
	w := s.space(userID)
	w.mu.Lock()
	w.snap.Profile = p
	w.mu.Unlock()

	if err := s.Store.SaveProfile(ctx, userID, p); err != nil {
		applog.Error(nil, "profile.save.failed", err, map[string]any{"user_id": userID})
		return p, err
	}
	return p, nil
}
