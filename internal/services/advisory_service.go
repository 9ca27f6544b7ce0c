package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"shelfkeeper/internal/advisory"
	applog "shelfkeeper/internal/log"
)

const FallbackPriceReason = "AI unavailable. Defaulting to 50% off."

var (
	FallbackBundle = advisory.BundleIdea{
		Title:   "Clearance Sale",
		Tagline: "Grab these items at a discount before they're gone!",
	}
	fallbackFactor = decimal.NewFromFloat(0.5)
)

type PriceAdvice struct {
	BatchID        string          `json:"batchId,omitempty"`
	ProductName    string          `json:"productName"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	SuggestedPrice decimal.Decimal `json:"suggestedPrice"`
	Reasoning      string          `json:"reasoning"`
	Fallback       bool            `json:"fallback"`
}

type BundleAdvice struct {
	advisory.BundleIdea
	Items    []string `json:"items"`
	Fallback bool     `json:"fallback"`
}

// AdvisoryService never fails a price or bundle request because the model
// did; it answers with the fixed fallbacks instead.
type AdvisoryService struct {
	Advisor   *advisory.Advisor
	Workspace *WorkspaceService
}

func (s *AdvisoryService) Configured() bool { return s.Advisor.Configured() }

// SuggestPrice prices the batch with id for clearance.
func (s *AdvisoryService) SuggestPrice(ctx context.Context, userID, batchID string) (PriceAdvice, error) {
	b, err := s.Workspace.FindBatch(ctx, userID, batchID)
	if err != nil {
		return PriceAdvice{}, err
	}
	out := PriceAdvice{BatchID: b.ID, ProductName: b.ProductName, OriginalPrice: b.Price}
	sug, err := s.Advisor.SuggestPrice(ctx, advisory.PriceQuery{
		ProductName:     b.ProductName,
		Price:           b.Price,
		DaysUntilExpiry: b.DaysUntilExpiry,
		Category:        b.Category,
	})
	if err != nil {
		if !errors.Is(err, advisory.ErrNotConfigured) {
			applog.Error(nil, "advisory.price.failed", err, map[string]any{"batch_id": batchID})
		}
		out.SuggestedPrice = b.Price.Mul(fallbackFactor)
		out.Reasoning = FallbackPriceReason
		out.Fallback = true
		return out, nil
	}
	out.SuggestedPrice = sug.SuggestedPrice
	out.Reasoning = sug.Reasoning
	return out, nil
}

// SuggestBundle asks for a sale idea for names, or for the account's
// current bundle candidates when names is empty.
func (s *AdvisoryService) SuggestBundle(ctx context.Context, userID string, names []string) (BundleAdvice, error) {
	if len(names) == 0 {
		d, err := s.Workspace.Dashboard(ctx, userID, "")
		if err != nil {
			return BundleAdvice{}, err
		}
		names = d.BundleCandidates
	}
	if len(names) == 0 {
		return BundleAdvice{}, advisory.ErrInvalidInput
	}
	if len(names) > advisory.MaxBundleItems {
		names = names[:advisory.MaxBundleItems]
	}
	idea, err := s.Advisor.SuggestBundle(ctx, names)
	if err != nil {
		if !errors.Is(err, advisory.ErrNotConfigured) {
			applog.Error(nil, "advisory.bundle.failed", err, map[string]any{"items": len(names)})
		}
		return BundleAdvice{BundleIdea: FallbackBundle, Items: names, Fallback: true}, nil
	}
	return BundleAdvice{BundleIdea: idea, Items: names}, nil
}

// AnalyzeLabel has no fallback; callers see ErrNotConfigured or the model error.
func (s *AdvisoryService) AnalyzeLabel(ctx context.Context, image []byte, mimeType string) (advisory.LabelFields, error) {
	return s.Advisor.AnalyzeLabel(ctx, image, mimeType)
}
