// Package advisory asks a generative model for label extraction, bundle
// marketing copy and clearance prices. Answers are requested as JSON under a
// response schema and decoded into plain structs.
package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"shelfkeeper/internal/domain"
)

const (
	DefaultImageMIME = "image/jpeg"
	MaxBundleItems   = 12
)

var (
	ErrNotConfigured = errors.New("advisory: model api key not configured")
	ErrInvalidInput  = errors.New("advisory: invalid input")
	ErrBadResponse   = errors.New("advisory: unusable model response")
)

// LabelFields is what could be read off a product label. Only Barcode is
// guaranteed; ExpiryDate is YYYY-MM-DD when present.
type LabelFields struct {
	Barcode     string `json:"barcode"`
	ExpiryDate  string `json:"expiryDate,omitempty"`
	ProductName string `json:"productName,omitempty"`
	Category    string `json:"category,omitempty"`
}

type BundleIdea struct {
	Title   string `json:"title"`
	Tagline string `json:"tagline"`
}

type PriceQuery struct {
	ProductName     string
	Price           decimal.Decimal
	DaysUntilExpiry int
	Category        domain.Category
}

type PriceSuggestion struct {
	SuggestedPrice decimal.Decimal `json:"suggestedPrice"`
	Reasoning      string          `json:"reasoning"`
}

// Generator returns the model's text answer for contents, constrained to schema.
type Generator interface {
	Generate(ctx context.Context, contents []*genai.Content, schema *genai.Schema) (string, error)
}

// Advisor is safe for concurrent use. A nil generator means no API key was
// configured and every call fails with ErrNotConfigured.
type Advisor struct {
	gen Generator
}

func New(gen Generator) *Advisor { return &Advisor{gen: gen} }

func (a *Advisor) Configured() bool { return a != nil && a.gen != nil }

func (a *Advisor) generate(ctx context.Context, contents []*genai.Content, schema *genai.Schema, out any) error {
	if !a.Configured() {
		return ErrNotConfigured
	}
	text, err := a.gen.Generate(ctx, contents, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// AnalyzeLabel extracts label fields from a product photo.
func (a *Advisor) AnalyzeLabel(ctx context.Context, image []byte, mimeType string) (LabelFields, error) {
	if len(image) == 0 {
		return LabelFields{}, fmt.Errorf("%w: image data required", ErrInvalidInput)
	}
	if mimeType == "" {
		mimeType = DefaultImageMIME
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(labelPrompt),
		}, genai.RoleUser),
	}
	var out LabelFields
	if err := a.generate(ctx, contents, labelSchema, &out); err != nil {
		return LabelFields{}, err
	}
	out.Barcode = strings.TrimSpace(out.Barcode)
	if out.Barcode == "" {
		return LabelFields{}, fmt.Errorf("%w: no barcode", ErrBadResponse)
	}
	if out.ExpiryDate != "" {
		if _, err := domain.ParseDate(out.ExpiryDate); err != nil {
			out.ExpiryDate = ""
		}
	}
	return out, nil
}

// SuggestBundle names a sale for items close to expiry. Only the first
// MaxBundleItems names are sent.
func (a *Advisor) SuggestBundle(ctx context.Context, names []string) (BundleIdea, error) {
	if len(names) == 0 {
		return BundleIdea{}, fmt.Errorf("%w: items required", ErrInvalidInput)
	}
	if len(names) > MaxBundleItems {
		names = names[:MaxBundleItems]
	}
	var out BundleIdea
	if err := a.generate(ctx, genai.Text(bundlePrompt(names)), bundleSchema, &out); err != nil {
		return BundleIdea{}, err
	}
	if out.Title == "" || out.Tagline == "" {
		return BundleIdea{}, fmt.Errorf("%w: empty bundle idea", ErrBadResponse)
	}
	return out, nil
}

func (a *Advisor) SuggestPrice(ctx context.Context, q PriceQuery) (PriceSuggestion, error) {
	if strings.TrimSpace(q.ProductName) == "" || q.Price.IsNegative() {
		return PriceSuggestion{}, fmt.Errorf("%w: product name and price required", ErrInvalidInput)
	}
	var out PriceSuggestion
	if err := a.generate(ctx, genai.Text(pricePrompt(q)), priceSchema, &out); err != nil {
		return PriceSuggestion{}, err
	}
	if out.SuggestedPrice.IsNegative() {
		return PriceSuggestion{}, fmt.Errorf("%w: negative price", ErrBadResponse)
	}
	return out, nil
}
